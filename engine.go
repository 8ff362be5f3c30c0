package kanim

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

const defaultCommandCap = 256

// EventSink is the interface for optional ECS integration.
// When set on an Engine, State events are forwarded to it.
type EventSink interface {
	EmitEvent(event Event)
}

// autoFrameDuration is the length of the view tween started by auto framing,
// in seconds.
const autoFrameDuration = 0.25

// Engine ties one Assets cache, one State and one View into a render loop.
// It satisfies ebiten.Game, so a previewer can pass it to ebiten.RunGame
// directly or call Update and Draw from its own game.
type Engine struct {
	assets *Assets
	state  *State
	view   *View
	cfg    Config

	visible        bool
	viewportHeight float64
	cmds           []DrawCommand
	sink           EventSink
	cancel         func()
	snapshots      []string
}

// NewEngine validates cfg and creates an engine reading from loader.
func NewEngine(loader Loader, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	assets := NewAssets(loader)
	assets.PreloadLimit = cfg.PreloadConcurrency

	e := &Engine{
		assets:         assets,
		state:          NewState(assets, cfg),
		view:           NewView(),
		cfg:            cfg,
		visible:        true,
		viewportHeight: cfg.Placement.Width,
		cmds:           make([]DrawCommand, 0, defaultCommandCap),
	}
	e.cancel = e.state.Subscribe(e.onStateEvent)
	return e, nil
}

// Assets returns the engine's cache.
func (e *Engine) Assets() *Assets { return e.assets }

// State returns the engine's interpreter.
func (e *Engine) State() *State { return e.state }

// View returns the placement transform.
func (e *Engine) View() *View { return e.view }

// Config returns the settings the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// ViewportHeight returns the height chosen by the last placement, in logical
// pixels. The width is Config.Placement.Width.
func (e *Engine) ViewportHeight() float64 { return e.viewportHeight }

// SetVisible pauses or resumes playback and drawing. Asset loading and
// completion handling continue while hidden.
func (e *Engine) SetVisible(visible bool) { e.visible = visible }

// Visible reports whether the engine draws.
func (e *Engine) Visible() bool { return e.visible }

// Update runs one tick at the ebiten tick rate.
func (e *Engine) Update() error {
	tps := float64(ebiten.TPS())
	e.Tick(1000 / tps)
	return nil
}

// Tick delivers pending asset completions and, when visible, advances the
// clock by dt milliseconds and any view tween by the same time.
func (e *Engine) Tick(dt float64) {
	e.assets.Poll()
	if !e.visible {
		return
	}
	e.state.Advance(dt)
	e.view.Update(float32(dt / 1000))
}

// Draw composes the current frame and submits it to screen.
func (e *Engine) Draw(screen *ebiten.Image) {
	if !e.visible {
		return
	}
	var stats debugStats
	for _, pass := range e.drawPasses() {
		switch pass {
		case passAxisGuide:
			DrawAxisGuide(screen, e.view)
		case passAnimation:
			e.cmds = e.state.Compose(e.view, e.cmds[:0])
			var t0 time.Time
			if e.cfg.Debug {
				t0 = time.Now()
			}
			calls := Submit(screen, e.cmds)
			if e.cfg.Debug {
				stats.compose = e.state.ComposeStats()
				stats.submitTime = time.Since(t0)
				stats.drawCalls = calls
			}
		}
	}
	if e.cfg.Debug {
		debugLog(stats)
	}
	e.flushSnapshots(screen)
}

type drawPass uint8

const (
	passAxisGuide drawPass = iota
	passAnimation
)

var (
	passesNoGuide    = []drawPass{passAnimation}
	passesGuideBelow = []drawPass{passAxisGuide, passAnimation}
	passesGuideOnTop = []drawPass{passAnimation, passAxisGuide}
)

// drawPasses returns the order Draw paints the axis guide and the animation.
func (e *Engine) drawPasses() []drawPass {
	switch {
	case !e.cfg.AxisGuide:
		return passesNoGuide
	case e.cfg.AxisGuideOnTop:
		return passesGuideOnTop
	default:
		return passesGuideBelow
	}
}

// Layout keeps a one-to-one mapping between window and screen pixels.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// AutoFrame fits the view to the active clip's bounds immediately.
func (e *Engine) AutoFrame() {
	e.viewportHeight = e.view.ApplyPlacement(e.state.BoundingRect(), e.cfg.Placement)
}

// SetEventSink sets the optional ECS bridge. Nil removes it.
func (e *Engine) SetEventSink(sink EventSink) {
	e.sink = sink
}

// Close detaches the engine's State from its Assets.
func (e *Engine) Close() {
	e.cancel()
	e.state.Dispose()
}

func (e *Engine) onStateEvent(ev Event) {
	if e.sink != nil {
		e.sink.EmitEvent(ev)
	}
	if !e.cfg.AutoFrame {
		return
	}
	if br, ok := ev.(BoundingRectChanged); ok {
		e.viewportHeight = e.view.TweenTo(br.Bounds, e.cfg.Placement, autoFrameDuration, ease.OutCubic)
	}
}
