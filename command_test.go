package kanim

import (
	"errors"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want Command
	}{
		{"SetBank", []any{"wilson"}, SetBank{Bank: "wilson"}},
		{"PlayAnimation", []any{"idle_loop"}, PlayAnimation{Anim: "idle_loop"}},
		{"PlayAnimation", []any{"idle_loop", true}, PlayAnimation{Anim: "idle_loop", Loop: true}},
		{"PushAnimation", []any{"run", nil}, PushAnimation{Anim: "run"}},
		{"SetBankAndPlayAnimation", []any{"wilson", "idle"}, SetBankAndPlayAnimation{Bank: "wilson", Anim: "idle"}},
		{"OverrideSymbol", []any{"swap_object", "axe", "swap_axe"}, OverrideSymbol{Target: "swap_object", Build: "axe", Source: "swap_axe"}},
		{"SetMultColour", []any{1, 0.5, float32(0.25), int64(1)}, SetMultColour{Color: Color{1, 0.5, 0.25, 1}}},
		{"SetSymbolAddColour", []any{"arm", 0.1, 0.2, 0.3, 1}, SetSymbolAddColour{Symbol: "arm", Color: Color{0.1, 0.2, 0.3, 1}}},
		{"SetPercent", []any{"idle", 0.5}, SetPercent{Anim: "idle", Percent: 0.5}},
		{"Pause", nil, Pause{}},
		{"SetDeltaTimeMultiplier", []any{uint8(2)}, SetDeltaTimeMultiplier{Multiplier: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.name, tt.args)
			if err != nil {
				t.Fatalf("ParseCommand: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
			if got.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", got.Name(), tt.name)
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want error
	}{
		{"Teleport", []any{"x"}, ErrUnknownCommand},
		{"setbank", []any{"x"}, ErrUnknownCommand},
		{"SetBank", nil, ErrBadArgs},
		{"SetBank", []any{42}, ErrBadArgs},
		{"SetBank", []any{"a", "b"}, ErrBadArgs},
		{"PlayAnimation", []any{"idle", "yes"}, ErrBadArgs},
		{"SetMultColour", []any{1, 1, 1}, ErrBadArgs},
		{"Resume", []any{true}, ErrBadArgs},
	}
	for _, tt := range tests {
		_, err := ParseCommand(tt.name, tt.args)
		if !errors.Is(err, tt.want) {
			t.Errorf("ParseCommand(%q, %v) error = %v, want %v", tt.name, tt.args, err, tt.want)
		}
	}
}

func TestCommandNamesAllParse(t *testing.T) {
	samples := map[CommandGroup]int{}
	for _, name := range CommandNames {
		_, err := ParseCommand(name, nil)
		if errors.Is(err, ErrUnknownCommand) {
			t.Errorf("%s is listed but not parsed", name)
		}
	}
	// Rebuild each command from its own Args to check both directions agree.
	cmds := []Command{
		SetBank{"b"}, SetBuild{"b"}, SetSkin{"b"}, PlayAnimation{"a", true}, PushAnimation{"a", false},
		SetBankAndPlayAnimation{"b", "a"}, Show{"l"}, Hide{"l"}, ShowSymbol{"s"}, HideSymbol{"s"},
		ShowLayer{"l"}, HideLayer{"l"}, OverrideSymbol{"t", "b", "s"}, OverrideSkinSymbol{"t", "b", "s"},
		ClearOverrideSymbol{"t"}, AddOverrideBuild{"b"}, ClearOverrideBuild{"b"},
		SetMultColour{ColorWhite}, SetAddColour{ColorNoAdd}, SetSymbolMultColour{"s", ColorWhite},
		SetSymbolAddColour{"s", ColorNoAdd}, SetPercent{"a", 0.25}, Pause{}, Resume{},
		SetDeltaTimeMultiplier{1.5},
	}
	if len(cmds) != len(CommandNames) {
		t.Fatalf("%d sample commands for %d names", len(cmds), len(CommandNames))
	}
	for i, c := range cmds {
		if c.Name() != CommandNames[i] {
			t.Errorf("command %d Name() = %q, want %q", i, c.Name(), CommandNames[i])
		}
		got, err := ParseCommand(c.Name(), c.Args())
		if err != nil {
			t.Errorf("%s: %v", c.Name(), err)
			continue
		}
		if got != c {
			t.Errorf("%s: reparsed %#v, want %#v", c.Name(), got, c)
		}
		samples[c.Group()]++
	}
	want := map[CommandGroup]int{GroupSkeleton: 6, GroupSwap: 11, GroupRender: 4, GroupPlayback: 4}
	for g, n := range want {
		if samples[g] != n {
			t.Errorf("group %v has %d commands, want %d", g, samples[g], n)
		}
	}
}
