package kanim

// State interprets a CommandList against an Assets cache. It owns the list,
// a PlaybackClock and the structures derived from both: the active frame
// list, the symbol source table, the tint and the visibility rules.
//
// A State is driven from a single goroutine. Asset completions reach it
// through Assets.Poll on that same goroutine.
type State struct {
	assets *Assets
	cfg    Config
	list   CommandList
	clock  *PlaybackClock
	facing Facing

	set        *AnimationSet
	clip       *AnimationClip
	active     Facing
	bounds     Rect
	sources    SymbolSources
	tint       Tint
	visibility Visibility

	stats ComposeStats

	obs          observers
	cancelAssets func()
	disposed     bool
}

// NewState creates an empty State reading from assets.
func NewState(assets *Assets, cfg Config) *State {
	s := &State{
		assets:  assets,
		cfg:     cfg,
		clock:   NewPlaybackClock(cfg.FrameRate),
		sources: SymbolSources{},
		tint:    DefaultTint(),
	}
	s.visibility = buildVisibility(nil)
	s.cancelAssets = assets.Subscribe(s.onAsset)
	return s
}

// Dispose detaches the State from its Assets. Later completions are ignored.
func (s *State) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.cancelAssets()
}

// Subscribe registers fn for State events. Call the returned function to
// unsubscribe.
func (s *State) Subscribe(fn func(Event)) (cancel func()) {
	return s.obs.subscribe(fn)
}

// Assets returns the cache the State reads from.
func (s *State) Assets() *Assets { return s.assets }

// Clock returns the playback clock. Prefer State.Advance, Step and
// SetPercent, which also raise FrameAdvanced.
func (s *State) Clock() *PlaybackClock { return s.clock }

// Entries returns the command list. The returned slice MUST NOT be mutated.
func (s *State) Entries() []Entry { return s.list.Entries() }

// Len returns the number of commands.
func (s *State) Len() int { return s.list.Len() }

// --- Active queries ---

// ActiveBuild returns the build of the last enabled SetBuild or SetSkin.
func (s *State) ActiveBuild() string {
	cmd, ok := lastEnabled(s.list.entries, func(c Command) bool {
		switch c.(type) {
		case SetBuild, SetSkin:
			return true
		}
		return false
	})
	if !ok {
		return ""
	}
	switch c := cmd.(type) {
	case SetBuild:
		return c.Build
	case SetSkin:
		return c.Build
	}
	return ""
}

// ActiveBank returns the bank of the last enabled SetBank or
// SetBankAndPlayAnimation.
func (s *State) ActiveBank() string {
	cmd, ok := lastEnabled(s.list.entries, func(c Command) bool {
		switch c.(type) {
		case SetBank, SetBankAndPlayAnimation:
			return true
		}
		return false
	})
	if !ok {
		return ""
	}
	switch c := cmd.(type) {
	case SetBank:
		return c.Bank
	case SetBankAndPlayAnimation:
		return c.Bank
	}
	return ""
}

// ActiveAnimation returns the animation of the last enabled PlayAnimation,
// PushAnimation or SetBankAndPlayAnimation.
func (s *State) ActiveAnimation() string {
	cmd, ok := lastEnabled(s.list.entries, func(c Command) bool {
		switch c.(type) {
		case PlayAnimation, PushAnimation, SetBankAndPlayAnimation:
			return true
		}
		return false
	})
	if !ok {
		return ""
	}
	switch c := cmd.(type) {
	case PlayAnimation:
		return c.Anim
	case PushAnimation:
		return c.Anim
	case SetBankAndPlayAnimation:
		return c.Anim
	}
	return ""
}

// SetFacing sets the preferred facing. It is used when the active clip
// offers it; otherwise the auto facing rules apply.
func (s *State) SetFacing(f Facing) {
	if f == s.facing {
		return
	}
	s.facing = f
	s.reloadFrames()
	s.rebuildSources()
}

// Facing returns the preferred facing set by SetFacing.
func (s *State) Facing() Facing { return s.facing }

// ActiveFacing returns the facing being played, or FacingNone.
func (s *State) ActiveFacing() Facing { return s.active }

// Facings returns the facings offered by the active animation.
func (s *State) Facings() []Facing {
	if s.set == nil {
		return nil
	}
	return s.set.Facings
}

// ActiveClip returns the clip being played.
func (s *State) ActiveClip() (*AnimationClip, bool) {
	return s.clip, s.clip != nil
}

// Frames returns the active frame list; empty when nothing is playable.
func (s *State) Frames() []Frame {
	if s.clip == nil {
		return nil
	}
	return s.clip.Frames
}

// CurrentFrame returns the frame under the playback clock.
func (s *State) CurrentFrame() (Frame, bool) {
	frames := s.Frames()
	i := s.clock.Frame()
	if i < 0 || i >= len(frames) {
		return nil, false
	}
	return frames[i], true
}

// BoundingRect returns the bounds of the active clip.
func (s *State) BoundingRect() Rect { return s.bounds }

// SymbolSource returns the source of symbol h. Symbols not referenced by the
// active frames report false.
func (s *State) SymbolSource(h Hash) (SymbolSource, bool) {
	src, ok := s.sources[h]
	return src, ok
}

// SymbolSources returns the whole table. The returned map MUST NOT be mutated.
func (s *State) SymbolSources() SymbolSources { return s.sources }

// Tint returns the current tint state.
func (s *State) Tint() Tint { return s.tint }

// Visible reports whether an element with the given symbol and layer passes
// the show/hide commands.
func (s *State) Visible(symbol, layer Hash) bool {
	return s.visibility.Visible(symbol, layer)
}

// PlaybackIntent returns what the playback commands ask for.
func (s *State) PlaybackIntent() PlaybackIntent {
	return buildPlaybackIntent(s.list.entries, s.ActiveAnimation())
}

// --- Mutation ---

// Append adds an enabled command at the end and reviews it.
func (s *State) Append(cmd Command) {
	s.list.Append(cmd)
	s.review(cmd)
}

// Insert adds an enabled command at index at and reviews it.
func (s *State) Insert(at int, cmd Command) error {
	if err := s.list.Insert(at, cmd); err != nil {
		return err
	}
	s.review(cmd)
	return nil
}

// SetEnabled toggles the command at index i and reviews it.
func (s *State) SetEnabled(i int, enabled bool) error {
	e, err := s.list.At(i)
	if err != nil {
		return err
	}
	if e.Enabled == enabled {
		return nil
	}
	if err := s.list.SetEnabled(i, enabled); err != nil {
		return err
	}
	s.review(e.Command)
	return nil
}

// SetFolded sets the editor fold flag. No review is needed.
func (s *State) SetFolded(i int, folded bool) error {
	return s.list.SetFolded(i, folded)
}

// Delete removes the command at index i. Derived state that depended on it
// is rebuilt.
func (s *State) Delete(i int) error {
	e, err := s.list.Delete(i)
	if err != nil {
		return err
	}
	s.review(e.Command)
	return nil
}

// SetArgs re-parses the command at index i with new arguments and reviews it.
func (s *State) SetArgs(i int, args []any) error {
	if err := s.list.SetArgs(i, args); err != nil {
		return err
	}
	e, _ := s.list.At(i)
	s.review(e.Command)
	return nil
}

// Replace swaps the command at index i, reviewing both the old and the new
// command.
func (s *State) Replace(i int, cmd Command) error {
	old, err := s.list.At(i)
	if err != nil {
		return err
	}
	if err := s.list.Replace(i, cmd); err != nil {
		return err
	}
	if old.Command.Group() != cmd.Group() {
		s.review(old.Command)
	}
	s.review(cmd)
	return nil
}

// Rearrange moves a command; see CommandList.Rearrange for index semantics.
// It returns the final index of the moved command.
func (s *State) Rearrange(from, to int) (int, error) {
	at, err := s.list.Rearrange(from, to)
	if err != nil {
		return 0, err
	}
	if at != from {
		e, _ := s.list.At(at)
		s.review(e.Command)
	}
	return at, nil
}

// Clear removes every command and resets all derived state.
func (s *State) Clear() {
	s.list.Clear()
	s.rebuildAll()
}

// Reset replaces the whole command list and rebuilds everything once.
func (s *State) Reset(entries []Entry) {
	s.list.Clear()
	s.list.entries = append(s.list.entries, entries...)
	s.rebuildAll()
}

func (s *State) rebuildAll() {
	s.reloadFrames()
	s.rebuildSources()
	s.rebuildVisibility()
	s.rebuildTint()
	s.applyPlayback(true)
}

// review refreshes the derived state a command can affect.
func (s *State) review(cmd Command) {
	switch cmd.Group() {
	case GroupSkeleton:
		s.reloadFrames()
		s.rebuildSources()
	case GroupSwap:
		s.rebuildSources()
		s.rebuildVisibility()
	case GroupRender:
		s.rebuildTint()
	case GroupPlayback:
		_, seek := cmd.(SetPercent)
		s.applyPlayback(seek)
	default:
		logf("kanim: ignoring command %s of unknown group %v", cmd.Name(), cmd.Group())
	}
}

// --- Playback ---

// Advance moves the clock by dt milliseconds and raises FrameAdvanced when
// the frame changes.
func (s *State) Advance(dt float64) {
	prev := s.clock.Frame()
	if s.clock.Advance(dt) {
		s.obs.emit(FrameAdvanced{Frame: s.clock.Frame(), Previous: prev})
	}
}

// Step jumps n frames for scrubbing.
func (s *State) Step(n int) {
	prev := s.clock.Frame()
	if s.clock.Step(n) {
		s.obs.emit(FrameAdvanced{Frame: s.clock.Frame(), Previous: prev})
	}
}

// SetPercent seeks to fraction p of the clip and pauses when autoPause is set.
func (s *State) SetPercent(p float64, autoPause bool) {
	prev := s.clock.Frame()
	s.clock.SetPercent(p, autoPause)
	if s.clock.Frame() != prev {
		s.obs.emit(FrameAdvanced{Frame: s.clock.Frame(), Previous: prev})
	}
}

// applyPlayback drives the clock from the playback commands when
// ApplyPlaybackCommands is set. The SetPercent position is only applied when
// seek is true, so toggling Pause or Resume keeps the current frame.
func (s *State) applyPlayback(seek bool) {
	if !s.cfg.ApplyPlaybackCommands {
		return
	}
	in := s.PlaybackIntent()
	if in.Multiplier != nil {
		s.clock.SetSpeed(*in.Multiplier)
	}
	if seek && in.Percent != nil {
		s.SetPercent(*in.Percent, false)
	}
	if in.Paused != nil {
		if *in.Paused {
			s.clock.Pause()
		} else {
			s.clock.Resume()
		}
	}
}

// --- Rebuilds ---

// reloadFrames resolves the active clip from bank, animation and facing.
// Missing data is requested and the clip stays empty until it arrives.
func (s *State) reloadFrames() {
	if build := s.ActiveBuild(); build != "" {
		s.assets.Build(build)
	}

	var set *AnimationSet
	bank, anim := s.ActiveBank(), s.ActiveAnimation()
	if bank != "" && anim != "" {
		if e := s.assets.Animation(SmallHash(bank), anim); e.Ready() {
			set = e.Value
		}
	}

	var clip *AnimationClip
	active := FacingNone
	if set != nil {
		active = set.SelectFacing(s.facing, s.cfg.AutoFacingByBitmask, s.cfg.AutoFacing)
		if active != FacingNone {
			clip, _ = set.Clip(active)
		}
	}

	changed := clip != s.clip
	s.set, s.clip, s.active = set, clip, active
	if !changed {
		return
	}

	total := 0
	bounds := Rect{}
	if clip != nil {
		total = len(clip.Frames)
		bounds = clip.Bounds
	}
	s.clock.SetTotal(total)
	s.obs.emit(FrameListChanged{Bank: SmallHash(bank), Anim: anim, Facing: active, Frames: total})
	if bounds != s.bounds {
		s.bounds = bounds
		s.obs.emit(BoundingRectChanged{Bounds: bounds})
	}
	s.applyPlayback(true)
}

func (s *State) rebuildSources() {
	entries := s.list.entries
	for _, name := range overrideBuilds(entries) {
		s.assets.Build(name)
	}
	s.sources = buildSymbolSources(entries, referencedSymbols(s.Frames()), s.assets.LoadedBuild)
	s.obs.emit(SymbolSourceRebuilt{Sources: s.sources})
}

func (s *State) rebuildTint() {
	s.tint = buildTint(s.list.entries)
	s.obs.emit(TintRebuilt{Tint: s.tint})
}

func (s *State) rebuildVisibility() {
	s.visibility = buildVisibility(s.list.entries)
}

// onAsset reacts to completed loads delivered by Assets.Poll.
func (s *State) onAsset(ev AssetEvent) {
	if s.disposed {
		return
	}
	switch ev.Kind {
	case AssetAnimation:
		bank, anim := s.ActiveBank(), s.ActiveAnimation()
		if bank != "" && ev.Key == AnimationKey(SmallHash(bank), anim) {
			s.reloadFrames()
			s.rebuildSources()
		}
	case AssetBuild:
		if ev.Key == BuildKey(s.ActiveBuild()) || s.usesOverrideBuild(ev.Key) {
			s.rebuildSources()
		}
	}
}

func (s *State) usesOverrideBuild(key string) bool {
	for _, name := range overrideBuilds(s.list.entries) {
		if BuildKey(name) == key {
			return true
		}
	}
	return false
}
