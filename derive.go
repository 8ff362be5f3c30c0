package kanim

// SymbolSource says where a symbol's images come from. The zero value means
// "no override": use the active build and the symbol's own hash.
type SymbolSource struct {
	Build  string
	Symbol Hash
	Set    bool
}

// SymbolSources maps every symbol referenced by the active frames to its
// source.
type SymbolSources map[Hash]SymbolSource

// buildFunc returns a loaded build, or false when it is not (yet) loaded.
type buildFunc func(name string) (*Build, bool)

// referencedSymbols collects every symbol hash used by frames.
func referencedSymbols(frames []Frame) map[Hash]struct{} {
	set := make(map[Hash]struct{})
	for _, f := range frames {
		for _, el := range f {
			set[el.Symbol] = struct{}{}
		}
	}
	return set
}

// buildSymbolSources replays entries forward over a table seeded with every
// referenced symbol. Later commands overwrite earlier ones, so each symbol
// ends up with the last applicable override. Overrides that name a build
// which is not loaded are skipped; the caller rebuilds when it arrives.
func buildSymbolSources(entries []Entry, symbols map[Hash]struct{}, builds buildFunc) SymbolSources {
	table := make(SymbolSources, len(symbols))
	for h := range symbols {
		table[h] = SymbolSource{}
	}
	for _, e := range entries {
		if !e.Enabled {
			continue
		}
		switch c := e.Command.(type) {
		case AddOverrideBuild:
			overrideBuild(table, builds, c.Build, true)
		case ClearOverrideBuild:
			overrideBuild(table, builds, c.Build, false)
		case OverrideSymbol:
			overrideSymbol(table, builds, c.Target, c.Build, c.Source)
		case OverrideSkinSymbol:
			overrideSymbol(table, builds, c.Target, c.Build, c.Source)
		case ClearOverrideSymbol:
			if h := SmallHash(c.Target); hasKey(table, h) {
				table[h] = SymbolSource{}
			}
		}
	}
	return table
}

func overrideBuild(table SymbolSources, builds buildFunc, name string, add bool) {
	b, ok := builds(name)
	if !ok {
		return
	}
	for h := range table {
		if !b.Defines(h) {
			continue
		}
		if add {
			table[h] = SymbolSource{Build: name, Symbol: h, Set: true}
		} else {
			table[h] = SymbolSource{}
		}
	}
}

func overrideSymbol(table SymbolSources, builds buildFunc, target, build, source string) {
	t := SmallHash(target)
	if !hasKey(table, t) {
		return
	}
	b, ok := builds(build)
	if !ok {
		return
	}
	src := SmallHash(source)
	if !b.Defines(src) {
		return
	}
	table[t] = SymbolSource{Build: build, Symbol: src, Set: true}
}

func hasKey(table SymbolSources, h Hash) bool {
	_, ok := table[h]
	return ok
}

// overrideBuilds lists every build named by an enabled swap command, in list
// order without duplicates. These must be loaded before the table is final.
func overrideBuilds(entries []Entry) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, e := range entries {
		if !e.Enabled {
			continue
		}
		switch c := e.Command.(type) {
		case AddOverrideBuild:
			add(c.Build)
		case ClearOverrideBuild:
			add(c.Build)
		case OverrideSymbol:
			add(c.Build)
		case OverrideSkinSymbol:
			add(c.Build)
		}
	}
	return names
}

// Tint holds the global and per-symbol color adjustments.
type Tint struct {
	Mult       Color
	Add        Color
	SymbolMult map[Hash]Color
	SymbolAdd  map[Hash]Color
}

// DefaultTint is the identity tint.
func DefaultTint() Tint {
	return Tint{
		Mult:       ColorWhite,
		Add:        ColorNoAdd,
		SymbolMult: map[Hash]Color{},
		SymbolAdd:  map[Hash]Color{},
	}
}

// For returns the effective tint of symbol s:
//
//	mult = Mult * SymbolMult[s]
//	add.rgb = Add.rgb*Add.a + SymbolAdd[s].rgb*SymbolAdd[s].a, add.a = 1
func (t Tint) For(s Hash) (mult, add Color) {
	mult = t.Mult
	if m, ok := t.SymbolMult[s]; ok {
		mult = mult.Mul(m)
	}
	add = Color{t.Add.R * t.Add.A, t.Add.G * t.Add.A, t.Add.B * t.Add.A, 1}
	if a, ok := t.SymbolAdd[s]; ok {
		add.R += a.R * a.A
		add.G += a.G * a.A
		add.B += a.B * a.A
	}
	return mult, add
}

// buildTint scans entries tail-to-head once. The first global colour command
// of each kind wins, and so does the first per-symbol command for each symbol.
func buildTint(entries []Entry) Tint {
	t := DefaultTint()
	var haveMult, haveAdd bool
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.Enabled {
			continue
		}
		switch c := e.Command.(type) {
		case SetMultColour:
			if !haveMult {
				t.Mult, haveMult = c.Color, true
			}
		case SetAddColour:
			if !haveAdd {
				t.Add, haveAdd = c.Color, true
			}
		case SetSymbolMultColour:
			h := SmallHash(c.Symbol)
			if _, ok := t.SymbolMult[h]; !ok {
				t.SymbolMult[h] = c.Color
			}
		case SetSymbolAddColour:
			h := SmallHash(c.Symbol)
			if _, ok := t.SymbolAdd[h]; !ok {
				t.SymbolAdd[h] = c.Color
			}
		}
	}
	return t
}

// visibilityRule is the last show/hide command seen for a hash.
type visibilityRule struct {
	pos    int
	hidden bool
}

// Visibility answers whether an element is drawn under the show/hide commands.
type Visibility struct {
	layers  map[Hash]visibilityRule
	symbols map[Hash]visibilityRule
}

// Visible reports whether an element with the given symbol and layer is
// drawn. The latest command matching either hash decides; with none, it is.
func (v Visibility) Visible(symbol, layer Hash) bool {
	l, lok := v.layers[layer]
	s, sok := v.symbols[symbol]
	switch {
	case lok && sok:
		if l.pos > s.pos {
			return !l.hidden
		}
		return !s.hidden
	case lok:
		return !l.hidden
	case sok:
		return !s.hidden
	}
	return true
}

// buildVisibility replays entries forward, recording the last rule per hash.
func buildVisibility(entries []Entry) Visibility {
	v := Visibility{
		layers:  make(map[Hash]visibilityRule),
		symbols: make(map[Hash]visibilityRule),
	}
	for i, e := range entries {
		if !e.Enabled {
			continue
		}
		switch c := e.Command.(type) {
		case Show:
			v.layers[SmallHash(c.Layer)] = visibilityRule{pos: i}
		case ShowLayer:
			v.layers[SmallHash(c.Layer)] = visibilityRule{pos: i}
		case Hide:
			v.layers[SmallHash(c.Layer)] = visibilityRule{pos: i, hidden: true}
		case HideLayer:
			v.layers[SmallHash(c.Layer)] = visibilityRule{pos: i, hidden: true}
		case ShowSymbol:
			v.symbols[SmallHash(c.Symbol)] = visibilityRule{pos: i}
		case HideSymbol:
			v.symbols[SmallHash(c.Symbol)] = visibilityRule{pos: i, hidden: true}
		}
	}
	return v
}

// PlaybackIntent is what the playback commands in a list ask for. Nil fields
// mean no enabled command of that kind exists.
type PlaybackIntent struct {
	Paused     *bool
	Multiplier *float64
	Percent    *float64
}

// buildPlaybackIntent takes the last enabled Pause/Resume, the last
// SetDeltaTimeMultiplier and the last SetPercent for anim.
func buildPlaybackIntent(entries []Entry, anim string) PlaybackIntent {
	var in PlaybackIntent
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.Enabled {
			continue
		}
		switch c := e.Command.(type) {
		case Pause:
			if in.Paused == nil {
				v := true
				in.Paused = &v
			}
		case Resume:
			if in.Paused == nil {
				v := false
				in.Paused = &v
			}
		case SetDeltaTimeMultiplier:
			if in.Multiplier == nil {
				v := c.Multiplier
				in.Multiplier = &v
			}
		case SetPercent:
			if in.Percent == nil && (c.Anim == "" || c.Anim == anim) {
				v := c.Percent
				in.Percent = &v
			}
		}
	}
	return in
}
