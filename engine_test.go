package kanim

import (
	"context"
	"errors"
	"testing"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) EmitEvent(ev Event) { s.events = append(s.events, ev) }

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	l := newFakeLoader()
	l.anims[AnimationKey(SmallHash("wilson"), "idle")] = []AnimationClip{
		testClip("idle", "wilson", FacingRight, 10, element("arm", 0, 1)),
	}
	l.builds["wilson"] = &BuildData{Name: "wilson", Images: []ImageEntry{imageEntry("arm", 0, 1)}}
	e, err := NewEngine(l, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameRate = -1
	if _, err := NewEngine(newFakeLoader(), cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestEngineAppliesPreloadConcurrency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreloadConcurrency = 7
	e := newTestEngine(t, cfg)
	if e.Assets().PreloadLimit != 7 {
		t.Errorf("PreloadLimit = %d, want 7", e.Assets().PreloadLimit)
	}
}

func TestEngineTickAdvancesWhenVisible(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	s := e.State()
	s.Append(SetBankAndPlayAnimation{Bank: "wilson", Anim: "idle"})
	s.Append(SetBuild{Build: "wilson"})
	if err := e.Assets().Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	e.SetVisible(false)
	e.Tick(100)
	if len(s.Frames()) != 10 {
		t.Fatalf("Tick must deliver completions while hidden: %d frames", len(s.Frames()))
	}
	if s.Clock().Frame() != 0 {
		t.Errorf("hidden engine advanced to frame %d", s.Clock().Frame())
	}

	e.SetVisible(true)
	e.Tick(40)
	if s.Clock().Frame() != 1 {
		t.Errorf("frame = %d after 40ms, want 1", s.Clock().Frame())
	}
}

func TestEngineAutoFrameTweensOnBoundsChange(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	playWilson(t, e.State())

	if !e.View().Tweening() {
		t.Fatal("bounds change did not start a placement tween")
	}
	if e.ViewportHeight() != 512 {
		t.Errorf("ViewportHeight = %v, want 512", e.ViewportHeight())
	}
	e.Tick(1000)
	if e.View().Tweening() || !approxEqual(e.View().Scale(), 5.12, 1e-4) {
		t.Errorf("after tween: tweening %v scale %v", e.View().Tweening(), e.View().Scale())
	}
}

func TestEngineAutoFrameDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoFrame = false
	e := newTestEngine(t, cfg)
	playWilson(t, e.State())

	if e.View().Tweening() || e.View().Scale() != 1 {
		t.Fatal("view moved although auto framing is off")
	}
	e.AutoFrame()
	if !approxEqual(e.View().Scale(), 5.12, 1e-9) {
		t.Errorf("AutoFrame scale = %v, want 5.12", e.View().Scale())
	}
}

func TestEngineForwardsEventsToSink(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	sink := &recordingSink{}
	e.SetEventSink(sink)

	e.State().Append(SetAddColour{Color: Color{1, 0, 0, 1}})
	if len(sink.events) != 1 {
		t.Fatalf("sink got %d events, want 1", len(sink.events))
	}
	if _, ok := sink.events[0].(TintRebuilt); !ok {
		t.Errorf("event = %T, want TintRebuilt", sink.events[0])
	}

	e.SetEventSink(nil)
	e.State().Append(SetAddColour{Color: ColorWhite})
	if len(sink.events) != 1 {
		t.Error("removed sink still receives events")
	}
}

func TestEngineCloseDetachesState(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	sink := &recordingSink{}
	e.SetEventSink(sink)
	e.State().Append(SetBank{Bank: "wilson"})
	e.State().Append(PlayAnimation{Anim: "idle"})
	sink.events = nil

	e.Close()
	settle(t, e.Assets())
	if len(e.State().Frames()) != 0 || len(sink.events) != 0 {
		t.Error("closed engine reacted to a completion")
	}
}

func TestEngineDrawPassOrder(t *testing.T) {
	tests := []struct {
		name         string
		guide, onTop bool
		want         []drawPass
	}{
		{"no guide", false, false, []drawPass{passAnimation}},
		{"no guide ignores on top", false, true, []drawPass{passAnimation}},
		{"guide below", true, false, []drawPass{passAxisGuide, passAnimation}},
		{"guide on top", true, true, []drawPass{passAnimation, passAxisGuide}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AxisGuide = tt.guide
			cfg.AxisGuideOnTop = tt.onTop
			got := newTestEngine(t, cfg).drawPasses()
			if len(got) != len(tt.want) {
				t.Fatalf("passes = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("passes = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
