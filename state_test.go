package kanim

import (
	"testing"
)

// newTestState serves bank "wilson" with a 10-frame right-facing "idle"
// and a 4-frame left-facing "idle", build "wilson" (arm, head) and build
// "hat" (head).
func newTestState(t *testing.T, cfg Config) (*State, *fakeLoader) {
	t.Helper()
	l := newFakeLoader()
	l.anims[AnimationKey(SmallHash("wilson"), "idle")] = []AnimationClip{
		testClip("idle", "wilson", FacingRight, 10, element("arm", 0, 2), element("head", 0, 1)),
		testClip("idle", "wilson", FacingLeft, 4, element("arm", 0, 2)),
	}
	l.builds["wilson"] = &BuildData{
		Name:    "wilson",
		Atlases: []string{"wilson-0.png"},
		Images:  []ImageEntry{imageEntry("arm", 0, 1), imageEntry("head", 0, 1)},
	}
	l.builds["hat"] = &BuildData{
		Name:    "hat",
		Atlases: []string{"hat-0.png"},
		Images:  []ImageEntry{imageEntry("head", 0, 1)},
	}
	s := NewState(NewAssets(l), cfg)
	t.Cleanup(s.Dispose)
	return s, l
}

// playWilson appends the commands that select wilson/idle and waits for
// the assets.
func playWilson(t *testing.T, s *State) {
	t.Helper()
	s.Append(SetBank{Bank: "wilson"})
	s.Append(SetBuild{Build: "wilson"})
	s.Append(PlayAnimation{Anim: "idle"})
	settle(t, s.Assets())
}

type eventLog struct {
	events []Event
}

func (l *eventLog) record(ev Event) { l.events = append(l.events, ev) }

func (l *eventLog) count(match func(Event) bool) int {
	n := 0
	for _, ev := range l.events {
		if match(ev) {
			n++
		}
	}
	return n
}

func TestStateActiveQueriesLastWins(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	s.Append(SetBank{Bank: "a"})
	s.Append(SetBuild{Build: "b1"})
	s.Append(PlayAnimation{Anim: "idle"})
	s.Append(SetSkin{Build: "b2"})
	s.Append(SetBankAndPlayAnimation{Bank: "c", Anim: "run"})

	if s.ActiveBank() != "c" || s.ActiveAnimation() != "run" || s.ActiveBuild() != "b2" {
		t.Fatalf("active = %s/%s/%s, want c/run/b2", s.ActiveBank(), s.ActiveAnimation(), s.ActiveBuild())
	}

	if err := s.SetEnabled(4, false); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEnabled(3, false); err != nil {
		t.Fatal(err)
	}
	if s.ActiveBank() != "a" || s.ActiveAnimation() != "idle" || s.ActiveBuild() != "b1" {
		t.Errorf("after disabling = %s/%s/%s, want a/idle/b1", s.ActiveBank(), s.ActiveAnimation(), s.ActiveBuild())
	}

	if err := s.Delete(1); err != nil {
		t.Fatal(err)
	}
	if s.ActiveBuild() != "" {
		t.Errorf("ActiveBuild = %q after deleting the only enabled setter", s.ActiveBuild())
	}
}

func TestStateLoadsFramesAndRaisesEvents(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	var log eventLog
	s.Subscribe(log.record)

	playWilson(t, s)

	if got := len(s.Frames()); got != 10 {
		t.Fatalf("Frames = %d, want 10", got)
	}
	if s.ActiveFacing() != FacingRight {
		t.Errorf("ActiveFacing = %d, want right", s.ActiveFacing())
	}
	if s.Clock().Total() != 10 {
		t.Errorf("clock total = %d, want 10", s.Clock().Total())
	}
	if n := log.count(func(ev Event) bool { fl, ok := ev.(FrameListChanged); return ok && fl.Frames == 10 }); n != 1 {
		t.Errorf("FrameListChanged(10) raised %d times, want 1", n)
	}
	if n := log.count(func(ev Event) bool { _, ok := ev.(BoundingRectChanged); return ok }); n != 1 {
		t.Errorf("BoundingRectChanged raised %d times, want 1", n)
	}
	if s.BoundingRect().Width != 100 {
		t.Errorf("BoundingRect = %+v", s.BoundingRect())
	}
}

func TestStateSymbolSourcesCoverFrames(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	playWilson(t, s)

	for _, name := range []string{"arm", "head"} {
		src, ok := s.SymbolSource(SmallHash(name))
		if !ok {
			t.Errorf("%s missing from symbol sources", name)
		}
		if src.Set {
			t.Errorf("%s = %+v, want none", name, src)
		}
	}
	if _, ok := s.SymbolSource(SmallHash("leg")); ok {
		t.Error("unreferenced symbol present")
	}
}

func TestStateOverrideBuildAppliesWhenLoaded(t *testing.T) {
	s, l := newTestState(t, DefaultConfig())
	playWilson(t, s)

	var log eventLog
	s.Subscribe(log.record)
	s.Append(AddOverrideBuild{Build: "hat"})
	settle(t, s.Assets())

	if n := l.callCount("hat"); n != 1 {
		t.Errorf("hat fetched %d times, want 1", n)
	}
	head, _ := s.SymbolSource(SmallHash("head"))
	if head.Build != "hat" {
		t.Errorf("head source = %+v, want hat", head)
	}
	arm, _ := s.SymbolSource(SmallHash("arm"))
	if arm.Set {
		t.Errorf("arm source = %+v, want none", arm)
	}
	if n := log.count(func(ev Event) bool { _, ok := ev.(SymbolSourceRebuilt); return ok }); n < 2 {
		t.Errorf("SymbolSourceRebuilt raised %d times, want one per review and one per load", n)
	}

	s.Append(ClearOverrideBuild{Build: "hat"})
	if head, _ := s.SymbolSource(SmallHash("head")); head.Set {
		t.Errorf("head source = %+v after ClearOverrideBuild", head)
	}
}

func TestStateFacing(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	playWilson(t, s)

	s.SetFacing(FacingLeft)
	if s.ActiveFacing() != FacingLeft || len(s.Frames()) != 4 {
		t.Fatalf("facing %d with %d frames, want left with 4", s.ActiveFacing(), len(s.Frames()))
	}
	s.SetFacing(FacingUp)
	if s.ActiveFacing() != FacingRight {
		t.Errorf("unavailable facing should fall back to the bitmask walk, got %d", s.ActiveFacing())
	}

	cfg := DefaultConfig()
	cfg.AutoFacingByBitmask = false
	cfg.AutoFacing = false
	s2, _ := newTestState(t, cfg)
	s2.SetFacing(FacingUp)
	playWilson(t, s2)
	if s2.ActiveFacing() != FacingNone || len(s2.Frames()) != 0 {
		t.Errorf("no auto facing: facing %d with %d frames, want none", s2.ActiveFacing(), len(s2.Frames()))
	}
}

func TestStateAdvanceRaisesFrameAdvanced(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	playWilson(t, s)

	var got []FrameAdvanced
	cancel := s.Subscribe(func(ev Event) {
		if fa, ok := ev.(FrameAdvanced); ok {
			got = append(got, fa)
		}
	})
	s.Advance(10)
	s.Advance(30)
	s.Step(2)
	if len(got) != 2 {
		t.Fatalf("FrameAdvanced raised %d times, want 2", len(got))
	}
	if got[0] != (FrameAdvanced{Frame: 1, Previous: 0}) || got[1] != (FrameAdvanced{Frame: 3, Previous: 1}) {
		t.Errorf("events = %+v", got)
	}
	cancel()
	s.Step(1)
	if len(got) != 2 {
		t.Error("cancelled subscriber still called")
	}
}

func TestStateTintRebuilt(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	var log eventLog
	s.Subscribe(log.record)

	s.Append(SetMultColour{Color: Color{1, 0, 0, 1}})
	if s.Tint().Mult != (Color{1, 0, 0, 1}) {
		t.Errorf("Mult = %v", s.Tint().Mult)
	}
	if err := s.SetEnabled(0, false); err != nil {
		t.Fatal(err)
	}
	if s.Tint().Mult != ColorWhite {
		t.Errorf("Mult = %v after disabling", s.Tint().Mult)
	}
	if n := log.count(func(ev Event) bool { _, ok := ev.(TintRebuilt); return ok }); n != 2 {
		t.Errorf("TintRebuilt raised %d times, want 2", n)
	}
	if n := log.count(func(ev Event) bool { _, ok := ev.(SymbolSourceRebuilt); return ok }); n != 0 {
		t.Errorf("render commands rebuilt symbol sources %d times", n)
	}
}

func TestStateRearrangeReviewsMovedCommand(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	s.Append(SetBuild{Build: "a"})
	s.Append(SetBuild{Build: "b"})
	s.Append(SetMultColour{Color: ColorWhite})

	at, err := s.Rearrange(1, 0)
	if err != nil || at != 0 {
		t.Fatalf("Rearrange = %d, %v", at, err)
	}
	if s.ActiveBuild() != "a" {
		t.Errorf("ActiveBuild = %q, want a after moving b before it", s.ActiveBuild())
	}
	if _, err := s.Rearrange(0, 9); err == nil {
		t.Error("out of range Rearrange should fail")
	}
}

func TestStateSetArgsAndReplace(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	s.Append(SetBuild{Build: "a"})
	if err := s.SetArgs(0, []any{"b"}); err != nil {
		t.Fatal(err)
	}
	if s.ActiveBuild() != "b" {
		t.Errorf("ActiveBuild = %q, want b", s.ActiveBuild())
	}
	if err := s.Replace(0, SetMultColour{Color: Color{0, 1, 0, 1}}); err != nil {
		t.Fatal(err)
	}
	if s.ActiveBuild() != "" || s.Tint().Mult.G != 1 {
		t.Errorf("Replace did not review both commands: build %q, mult %v", s.ActiveBuild(), s.Tint().Mult)
	}
}

func TestStateVisibility(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	s.Append(HideSymbol{Symbol: "arm"})
	if s.Visible(SmallHash("arm"), 0) {
		t.Error("arm visible after HideSymbol")
	}
	s.Clear()
	if !s.Visible(SmallHash("arm"), 0) {
		t.Error("arm hidden after Clear")
	}
}

func TestStatePlaybackCommands(t *testing.T) {
	off, _ := newTestState(t, DefaultConfig())
	off.Append(Pause{})
	if off.Clock().Paused() {
		t.Error("playback commands applied without ApplyPlaybackCommands")
	}
	if in := off.PlaybackIntent(); in.Paused == nil || !*in.Paused {
		t.Error("PlaybackIntent should still report Pause")
	}

	cfg := DefaultConfig()
	cfg.ApplyPlaybackCommands = true
	on, _ := newTestState(t, cfg)
	playWilson(t, on)
	on.Append(SetDeltaTimeMultiplier{Multiplier: 2})
	on.Append(SetPercent{Anim: "idle", Percent: 0.5})
	on.Append(Pause{})
	if !on.Clock().Paused() || on.Clock().Speed() != 2 || on.Clock().Frame() != 5 {
		t.Errorf("clock paused=%v speed=%v frame=%d", on.Clock().Paused(), on.Clock().Speed(), on.Clock().Frame())
	}
	on.Append(Resume{})
	if on.Clock().Paused() {
		t.Error("Resume after Pause should leave the clock running")
	}
}

func TestStatePlaybackPercentAppliedWhenClipLoads(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyPlaybackCommands = true
	s, _ := newTestState(t, cfg)
	s.Reset(enabled(
		SetBank{Bank: "wilson"},
		SetBuild{Build: "wilson"},
		PlayAnimation{Anim: "idle"},
		SetPercent{Anim: "idle", Percent: 0.5},
	))
	settle(t, s.Assets())
	if len(s.Frames()) != 10 {
		t.Fatalf("Frames = %d, want 10", len(s.Frames()))
	}
	if f := s.Clock().Frame(); f != 5 {
		t.Errorf("frame = %d after clip load, want 5", f)
	}
}

func TestStatePauseKeepsPosition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyPlaybackCommands = true
	s, _ := newTestState(t, cfg)
	playWilson(t, s)
	s.Append(SetPercent{Anim: "idle", Percent: 0.5})
	s.Append(Pause{})
	s.Step(2)
	s.Append(Resume{})
	if f := s.Clock().Frame(); f != 7 {
		t.Errorf("frame = %d after Resume, want 7", f)
	}
	if err := s.SetEnabled(s.Len()-1, false); err != nil {
		t.Fatal(err)
	}
	if f := s.Clock().Frame(); f != 7 || !s.Clock().Paused() {
		t.Errorf("frame = %d paused = %v after disabling Resume, want 7 and paused", f, s.Clock().Paused())
	}
}

func TestStateResetRebuildsOnce(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	var log eventLog
	s.Subscribe(log.record)
	s.Reset(enabled(
		SetBank{Bank: "wilson"},
		SetBuild{Build: "wilson"},
		PlayAnimation{Anim: "idle"},
		SetAddColour{Color: Color{1, 1, 1, 0.5}},
	))
	settle(t, s.Assets())
	if len(s.Frames()) != 10 {
		t.Errorf("Frames = %d after Reset", len(s.Frames()))
	}
	if n := log.count(func(ev Event) bool { _, ok := ev.(TintRebuilt); return ok }); n != 1 {
		t.Errorf("TintRebuilt raised %d times, want 1", n)
	}
}

func TestStateDisposedIgnoresCompletions(t *testing.T) {
	s, _ := newTestState(t, DefaultConfig())
	s.Append(SetBank{Bank: "wilson"})
	s.Append(PlayAnimation{Anim: "idle"})
	s.Dispose()

	var log eventLog
	s.Subscribe(log.record)
	settle(t, s.Assets())

	if len(s.Frames()) != 0 {
		t.Error("disposed state loaded frames")
	}
	if len(log.events) != 0 {
		t.Errorf("disposed state raised %d events", len(log.events))
	}
}
