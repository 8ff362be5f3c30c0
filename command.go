package kanim

import (
	"fmt"
)

// CommandGroup classifies a command for the review protocol.
type CommandGroup uint8

const (
	GroupSkeleton CommandGroup = iota // selects bank, build, animation
	GroupSwap                         // visibility and symbol/build overrides
	GroupRender                       // global and per-symbol tints
	GroupPlayback                     // playback intents; no compositing effect
)

func (g CommandGroup) String() string {
	switch g {
	case GroupSkeleton:
		return "skeleton"
	case GroupSwap:
		return "swap"
	case GroupRender:
		return "render"
	case GroupPlayback:
		return "playback"
	default:
		return fmt.Sprintf("CommandGroup(%d)", uint8(g))
	}
}

// Command is one declarative animation command. The set of implementations is
// closed: every command type lives in this file.
type Command interface {
	// Name is the stable name an editor produces, e.g. "OverrideSymbol".
	Name() string
	// Args returns the arguments in editor order.
	Args() []any
	Group() CommandGroup
	isCommand()
}

// --- Skeleton ---

// SetBank selects the animation bank.
type SetBank struct{ Bank string }

// SetBuild selects the build that supplies symbol images.
type SetBuild struct{ Build string }

// SetSkin selects the build like SetBuild.
type SetSkin struct{ Build string }

// PlayAnimation selects the animation within the active bank.
type PlayAnimation struct {
	Anim string
	Loop bool
}

// PushAnimation selects the animation like PlayAnimation.
type PushAnimation struct {
	Anim string
	Loop bool
}

// SetBankAndPlayAnimation sets both the bank and the animation.
type SetBankAndPlayAnimation struct{ Bank, Anim string }

// --- Swap ---

// Show is ShowLayer under its short editor name.
type Show struct{ Layer string }

// Hide is HideLayer under its short editor name.
type Hide struct{ Layer string }

// ShowSymbol undoes an earlier HideSymbol.
type ShowSymbol struct{ Symbol string }

// HideSymbol skips every element of Symbol.
type HideSymbol struct{ Symbol string }

// ShowLayer undoes an earlier HideLayer.
type ShowLayer struct{ Layer string }

// HideLayer skips every element on Layer.
type HideLayer struct{ Layer string }

// OverrideSymbol draws Target using symbol Source of build Build.
type OverrideSymbol struct{ Target, Build, Source string }

// OverrideSkinSymbol behaves like OverrideSymbol.
type OverrideSkinSymbol struct{ Target, Build, Source string }

// ClearOverrideSymbol drops earlier symbol overrides of Target.
type ClearOverrideSymbol struct{ Target string }

// AddOverrideBuild redirects every symbol Build defines to Build.
type AddOverrideBuild struct{ Build string }

// ClearOverrideBuild drops an earlier AddOverrideBuild for Build.
type ClearOverrideBuild struct{ Build string }

// --- Render ---

// SetMultColour multiplies every element by Color.
type SetMultColour struct{ Color Color }

// SetAddColour adds Color to every element.
type SetAddColour struct{ Color Color }

// SetSymbolMultColour multiplies the elements of Symbol by Color.
type SetSymbolMultColour struct {
	Symbol string
	Color  Color
}

// SetSymbolAddColour adds Color to the elements of Symbol.
type SetSymbolAddColour struct {
	Symbol string
	Color  Color
}

// --- Playback ---

// SetPercent seeks Anim to fraction Percent. An empty Anim matches any
// animation.
type SetPercent struct {
	Anim    string
	Percent float64
}

// Pause stops the playback clock.
type Pause struct{}

// Resume restarts the playback clock.
type Resume struct{}

// SetDeltaTimeMultiplier scales the playback speed.
type SetDeltaTimeMultiplier struct{ Multiplier float64 }

func (SetBank) Name() string                 { return "SetBank" }
func (SetBuild) Name() string                { return "SetBuild" }
func (SetSkin) Name() string                 { return "SetSkin" }
func (PlayAnimation) Name() string           { return "PlayAnimation" }
func (PushAnimation) Name() string           { return "PushAnimation" }
func (SetBankAndPlayAnimation) Name() string { return "SetBankAndPlayAnimation" }
func (Show) Name() string                    { return "Show" }
func (Hide) Name() string                    { return "Hide" }
func (ShowSymbol) Name() string              { return "ShowSymbol" }
func (HideSymbol) Name() string              { return "HideSymbol" }
func (ShowLayer) Name() string               { return "ShowLayer" }
func (HideLayer) Name() string               { return "HideLayer" }
func (OverrideSymbol) Name() string          { return "OverrideSymbol" }
func (OverrideSkinSymbol) Name() string      { return "OverrideSkinSymbol" }
func (ClearOverrideSymbol) Name() string     { return "ClearOverrideSymbol" }
func (AddOverrideBuild) Name() string        { return "AddOverrideBuild" }
func (ClearOverrideBuild) Name() string      { return "ClearOverrideBuild" }
func (SetMultColour) Name() string           { return "SetMultColour" }
func (SetAddColour) Name() string            { return "SetAddColour" }
func (SetSymbolMultColour) Name() string     { return "SetSymbolMultColour" }
func (SetSymbolAddColour) Name() string      { return "SetSymbolAddColour" }
func (SetPercent) Name() string              { return "SetPercent" }
func (Pause) Name() string                   { return "Pause" }
func (Resume) Name() string                  { return "Resume" }
func (SetDeltaTimeMultiplier) Name() string  { return "SetDeltaTimeMultiplier" }

func (c SetBank) Args() []any                 { return []any{c.Bank} }
func (c SetBuild) Args() []any                { return []any{c.Build} }
func (c SetSkin) Args() []any                 { return []any{c.Build} }
func (c PlayAnimation) Args() []any           { return []any{c.Anim, c.Loop} }
func (c PushAnimation) Args() []any           { return []any{c.Anim, c.Loop} }
func (c SetBankAndPlayAnimation) Args() []any { return []any{c.Bank, c.Anim} }
func (c Show) Args() []any                    { return []any{c.Layer} }
func (c Hide) Args() []any                    { return []any{c.Layer} }
func (c ShowSymbol) Args() []any              { return []any{c.Symbol} }
func (c HideSymbol) Args() []any              { return []any{c.Symbol} }
func (c ShowLayer) Args() []any               { return []any{c.Layer} }
func (c HideLayer) Args() []any               { return []any{c.Layer} }
func (c OverrideSymbol) Args() []any          { return []any{c.Target, c.Build, c.Source} }
func (c OverrideSkinSymbol) Args() []any      { return []any{c.Target, c.Build, c.Source} }
func (c ClearOverrideSymbol) Args() []any     { return []any{c.Target} }
func (c AddOverrideBuild) Args() []any        { return []any{c.Build} }
func (c ClearOverrideBuild) Args() []any      { return []any{c.Build} }
func (c SetMultColour) Args() []any           { return colorArgs(c.Color) }
func (c SetAddColour) Args() []any            { return colorArgs(c.Color) }
func (c SetSymbolMultColour) Args() []any {
	return append([]any{c.Symbol}, colorArgs(c.Color)...)
}
func (c SetSymbolAddColour) Args() []any {
	return append([]any{c.Symbol}, colorArgs(c.Color)...)
}
func (c SetPercent) Args() []any             { return []any{c.Anim, c.Percent} }
func (Pause) Args() []any                    { return nil }
func (Resume) Args() []any                   { return nil }
func (c SetDeltaTimeMultiplier) Args() []any { return []any{c.Multiplier} }

func colorArgs(c Color) []any { return []any{c.R, c.G, c.B, c.A} }

func (SetBank) Group() CommandGroup                 { return GroupSkeleton }
func (SetBuild) Group() CommandGroup                { return GroupSkeleton }
func (SetSkin) Group() CommandGroup                 { return GroupSkeleton }
func (PlayAnimation) Group() CommandGroup           { return GroupSkeleton }
func (PushAnimation) Group() CommandGroup           { return GroupSkeleton }
func (SetBankAndPlayAnimation) Group() CommandGroup { return GroupSkeleton }
func (Show) Group() CommandGroup                    { return GroupSwap }
func (Hide) Group() CommandGroup                    { return GroupSwap }
func (ShowSymbol) Group() CommandGroup              { return GroupSwap }
func (HideSymbol) Group() CommandGroup              { return GroupSwap }
func (ShowLayer) Group() CommandGroup               { return GroupSwap }
func (HideLayer) Group() CommandGroup               { return GroupSwap }
func (OverrideSymbol) Group() CommandGroup          { return GroupSwap }
func (OverrideSkinSymbol) Group() CommandGroup      { return GroupSwap }
func (ClearOverrideSymbol) Group() CommandGroup     { return GroupSwap }
func (AddOverrideBuild) Group() CommandGroup        { return GroupSwap }
func (ClearOverrideBuild) Group() CommandGroup      { return GroupSwap }
func (SetMultColour) Group() CommandGroup           { return GroupRender }
func (SetAddColour) Group() CommandGroup            { return GroupRender }
func (SetSymbolMultColour) Group() CommandGroup     { return GroupRender }
func (SetSymbolAddColour) Group() CommandGroup      { return GroupRender }
func (SetPercent) Group() CommandGroup              { return GroupPlayback }
func (Pause) Group() CommandGroup                   { return GroupPlayback }
func (Resume) Group() CommandGroup                  { return GroupPlayback }
func (SetDeltaTimeMultiplier) Group() CommandGroup  { return GroupPlayback }

func (SetBank) isCommand()                 {}
func (SetBuild) isCommand()                {}
func (SetSkin) isCommand()                 {}
func (PlayAnimation) isCommand()           {}
func (PushAnimation) isCommand()           {}
func (SetBankAndPlayAnimation) isCommand() {}
func (Show) isCommand()                    {}
func (Hide) isCommand()                    {}
func (ShowSymbol) isCommand()              {}
func (HideSymbol) isCommand()              {}
func (ShowLayer) isCommand()               {}
func (HideLayer) isCommand()               {}
func (OverrideSymbol) isCommand()          {}
func (OverrideSkinSymbol) isCommand()      {}
func (ClearOverrideSymbol) isCommand()     {}
func (AddOverrideBuild) isCommand()        {}
func (ClearOverrideBuild) isCommand()      {}
func (SetMultColour) isCommand()           {}
func (SetAddColour) isCommand()            {}
func (SetSymbolMultColour) isCommand()     {}
func (SetSymbolAddColour) isCommand()      {}
func (SetPercent) isCommand()              {}
func (Pause) isCommand()                   {}
func (Resume) isCommand()                  {}
func (SetDeltaTimeMultiplier) isCommand()  {}

// CommandNames lists every name ParseCommand accepts, in editor menu order.
var CommandNames = []string{
	"SetBank", "SetBuild", "SetSkin", "PlayAnimation", "PushAnimation", "SetBankAndPlayAnimation",
	"Show", "Hide", "ShowSymbol", "HideSymbol", "ShowLayer", "HideLayer",
	"OverrideSymbol", "OverrideSkinSymbol", "ClearOverrideSymbol", "AddOverrideBuild", "ClearOverrideBuild",
	"SetMultColour", "SetAddColour", "SetSymbolMultColour", "SetSymbolAddColour",
	"SetPercent", "Pause", "Resume", "SetDeltaTimeMultiplier",
}

// ParseCommand builds a typed command from an editor-supplied name and
// argument list. Arguments may be string, bool, any Go number, or nil for an
// optional trailing flag.
func ParseCommand(name string, args []any) (Command, error) {
	p := argParser{name: name, args: args}
	var cmd Command
	switch name {
	case "SetBank":
		cmd = SetBank{Bank: p.str(0)}
	case "SetBuild":
		cmd = SetBuild{Build: p.str(0)}
	case "SetSkin":
		cmd = SetSkin{Build: p.str(0)}
	case "PlayAnimation":
		cmd = PlayAnimation{Anim: p.str(0), Loop: p.optBool(1)}
	case "PushAnimation":
		cmd = PushAnimation{Anim: p.str(0), Loop: p.optBool(1)}
	case "SetBankAndPlayAnimation":
		cmd = SetBankAndPlayAnimation{Bank: p.str(0), Anim: p.str(1)}
	case "Show":
		cmd = Show{Layer: p.str(0)}
	case "Hide":
		cmd = Hide{Layer: p.str(0)}
	case "ShowSymbol":
		cmd = ShowSymbol{Symbol: p.str(0)}
	case "HideSymbol":
		cmd = HideSymbol{Symbol: p.str(0)}
	case "ShowLayer":
		cmd = ShowLayer{Layer: p.str(0)}
	case "HideLayer":
		cmd = HideLayer{Layer: p.str(0)}
	case "OverrideSymbol":
		cmd = OverrideSymbol{Target: p.str(0), Build: p.str(1), Source: p.str(2)}
	case "OverrideSkinSymbol":
		cmd = OverrideSkinSymbol{Target: p.str(0), Build: p.str(1), Source: p.str(2)}
	case "ClearOverrideSymbol":
		cmd = ClearOverrideSymbol{Target: p.str(0)}
	case "AddOverrideBuild":
		cmd = AddOverrideBuild{Build: p.str(0)}
	case "ClearOverrideBuild":
		cmd = ClearOverrideBuild{Build: p.str(0)}
	case "SetMultColour":
		cmd = SetMultColour{Color: p.color(0)}
	case "SetAddColour":
		cmd = SetAddColour{Color: p.color(0)}
	case "SetSymbolMultColour":
		cmd = SetSymbolMultColour{Symbol: p.str(0), Color: p.color(1)}
	case "SetSymbolAddColour":
		cmd = SetSymbolAddColour{Symbol: p.str(0), Color: p.color(1)}
	case "SetPercent":
		cmd = SetPercent{Anim: p.str(0), Percent: p.num(1)}
	case "Pause":
		cmd = Pause{}
	case "Resume":
		cmd = Resume{}
	case "SetDeltaTimeMultiplier":
		cmd = SetDeltaTimeMultiplier{Multiplier: p.num(0)}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	if p.err != nil {
		return nil, p.err
	}
	if want := len(cmd.Args()); len(args) > want {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrBadArgs, name, want, len(args))
	}
	return cmd, nil
}

// argParser records the first argument error and returns zero values after it.
type argParser struct {
	name string
	args []any
	err  error
}

func (p *argParser) fail(i int, want string) {
	if p.err != nil {
		return
	}
	if i >= len(p.args) {
		p.err = fmt.Errorf("%w: %s argument %d missing (%s)", ErrBadArgs, p.name, i, want)
		return
	}
	p.err = fmt.Errorf("%w: %s argument %d is %T, want %s", ErrBadArgs, p.name, i, p.args[i], want)
}

func (p *argParser) str(i int) string {
	if i < len(p.args) {
		if s, ok := p.args[i].(string); ok {
			return s
		}
	}
	p.fail(i, "string")
	return ""
}

func (p *argParser) optBool(i int) bool {
	if i >= len(p.args) || p.args[i] == nil {
		return false
	}
	if b, ok := p.args[i].(bool); ok {
		return b
	}
	p.fail(i, "bool")
	return false
}

func (p *argParser) num(i int) float64 {
	if i < len(p.args) {
		if v, ok := toFloat(p.args[i]); ok {
			return v
		}
	}
	p.fail(i, "number")
	return 0
}

func (p *argParser) color(i int) Color {
	return Color{p.num(i), p.num(i + 1), p.num(i + 2), p.num(i + 3)}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
