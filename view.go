package kanim

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Scroll zoom limits.
const (
	MinViewScale = 0.1
	MaxViewScale = 4.0
)

// viewTween holds active placement tweens for scale and pan.
type viewTween struct {
	scale, panX, panY *gween.Tween
	done              [3]bool
}

// View is the placement transform applied on top of every element: zoom,
// rotation, mirroring and pan. The combined matrix is cached and recomputed
// only after a setter changes something.
//
// Pan is in logical pixels. GlobalScale converts logical pixels to device
// pixels and applies to the whole output, pan included.
type View struct {
	scale       float64
	rotation    float64
	flipH       bool
	flipV       bool
	panX, panY  float64
	globalScale float64

	matrix    [6]float64
	invMatrix [6]float64
	dirty     bool

	tween *viewTween
}

// NewView returns an identity view.
func NewView() *View {
	return &View{scale: 1, globalScale: 1, dirty: true}
}

// Scale returns the zoom factor.
func (v *View) Scale() float64 { return v.scale }

// Rotation returns the rotation in radians.
func (v *View) Rotation() float64 { return v.rotation }

// FlipH reports horizontal mirroring.
func (v *View) FlipH() bool { return v.flipH }

// FlipV reports vertical mirroring.
func (v *View) FlipV() bool { return v.flipV }

// Pan returns the screen position of the view origin in logical pixels.
func (v *View) Pan() (x, y float64) { return v.panX, v.panY }

// GlobalScale returns the logical to device pixel ratio.
func (v *View) GlobalScale() float64 { return v.globalScale }

// SetScale sets the zoom factor. Non-positive values are ignored.
func (v *View) SetScale(s float64) {
	if s > 0 && s != v.scale {
		v.scale = s
		v.dirty = true
	}
}

// SetRotation sets the rotation in radians.
func (v *View) SetRotation(r float64) {
	if r != v.rotation {
		v.rotation = r
		v.dirty = true
	}
}

// SetFlip sets horizontal and vertical mirroring.
func (v *View) SetFlip(h, vert bool) {
	if h != v.flipH || vert != v.flipV {
		v.flipH, v.flipV = h, vert
		v.dirty = true
	}
}

// SetPan moves the view origin to (x, y) in logical pixels.
func (v *View) SetPan(x, y float64) {
	if x != v.panX || y != v.panY {
		v.panX, v.panY = x, y
		v.dirty = true
	}
}

// SetGlobalScale sets the logical to device pixel ratio. Non-positive values
// are ignored.
func (v *View) SetGlobalScale(g float64) {
	if g > 0 && g != v.globalScale {
		v.globalScale = g
		v.dirty = true
	}
}

// Scroll zooms exponentially by a wheel delta, clamped to
// [MinViewScale, MaxViewScale].
func (v *View) Scroll(delta float64) {
	s := v.scale * math.Pow(0.99, delta*0.5)
	v.SetScale(math.Max(MinViewScale, math.Min(MaxViewScale, s)))
}

// ScrollAt zooms like Scroll while keeping the world point under screen
// position (sx, sy), in device pixels, fixed.
func (v *View) ScrollAt(delta, sx, sy float64) {
	wx, wy := v.ScreenToWorld(sx, sy)
	v.Scroll(delta)
	nx, ny := v.WorldToScreen(wx, wy)
	g := v.globalScale
	v.SetPan(v.panX+(sx-nx)/g, v.panY+(sy-ny)/g)
}

// linear returns the rotation, zoom and mirroring part of the matrix.
func (v *View) linear(scale float64) [6]float64 {
	fx, fy := scale, scale
	if v.flipH {
		fx = -fx
	}
	if v.flipV {
		fy = -fy
	}
	return multiplyAffine(rotateAffine(v.rotation), scaleAffine(fx, fy))
}

// Matrix returns the cached view matrix:
//
//	Scale(global) * Translate(pan) * Rotate(rotation) * Scale(scale * flips)
func (v *View) Matrix() [6]float64 {
	if !v.dirty {
		return v.matrix
	}
	v.dirty = false
	m := multiplyAffine(translateAffine(v.panX, v.panY), v.linear(v.scale))
	v.matrix = multiplyAffine(scaleAffine(v.globalScale, v.globalScale), m)
	v.invMatrix = invertAffine(v.matrix)
	return v.matrix
}

// WorldToScreen converts animation space to device pixels.
func (v *View) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(v.Matrix(), wx, wy)
}

// ScreenToWorld converts device pixels to animation space.
func (v *View) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	v.Matrix()
	return transformPoint(v.invMatrix, sx, sy)
}

// placement computes the scale and pan that fit bounds into fit, and the
// viewport height implied by the clamped aspect ratio.
func (v *View) placement(bounds Rect, fit PlacementFit) (scale, panX, panY, height float64) {
	width := fit.Width
	if bounds.Empty() {
		height = width / clampAspect(1, fit)
		return 1, width / 2, height / 2, height
	}
	unit := v.linear(1)
	r := transformRect(unit, bounds)
	height = width / clampAspect(r.Width/r.Height, fit)
	scale = math.Min(width/r.Width, height/r.Height)
	cx, cy := bounds.Center()
	ox, oy := transformPoint(unit, cx, cy)
	return scale, width/2 - ox*scale, height/2 - oy*scale, height
}

func clampAspect(aspect float64, fit PlacementFit) float64 {
	lo, hi := fit.MinAspect, fit.MaxAspect
	if lo <= 0 {
		lo = aspect
	}
	if hi <= 0 {
		hi = aspect
	}
	return math.Max(lo, math.Min(hi, aspect))
}

// ApplyPlacement resets scale and pan so bounds is centered in a viewport of
// fit.Width logical pixels. The viewport aspect follows the bounds, clamped
// to fit's range; the resulting height is returned. Any running tween stops.
func (v *View) ApplyPlacement(bounds Rect, fit PlacementFit) float64 {
	scale, px, py, h := v.placement(bounds, fit)
	v.tween = nil
	v.SetScale(scale)
	v.SetPan(px, py)
	return h
}

// TweenTo animates scale and pan to the ApplyPlacement result over duration
// seconds. The viewport height is returned immediately. Advance with Update.
func (v *View) TweenTo(bounds Rect, fit PlacementFit, duration float32, easeFn ease.TweenFunc) float64 {
	scale, px, py, h := v.placement(bounds, fit)
	if easeFn == nil {
		easeFn = ease.OutQuad
	}
	v.tween = &viewTween{
		scale: gween.New(float32(v.scale), float32(scale), duration, easeFn),
		panX:  gween.New(float32(v.panX), float32(px), duration, easeFn),
		panY:  gween.New(float32(v.panY), float32(py), duration, easeFn),
	}
	return h
}

// Tweening reports whether a TweenTo is in progress.
func (v *View) Tweening() bool { return v.tween != nil }

// Update advances a running tween by dt seconds.
func (v *View) Update(dt float32) {
	t := v.tween
	if t == nil {
		return
	}
	scale, px, py := v.scale, v.panX, v.panY
	step := func(i int, tw *gween.Tween, field *float64) {
		if t.done[i] {
			return
		}
		val, done := tw.Update(dt)
		*field = float64(val)
		t.done[i] = done
	}
	step(0, t.scale, &scale)
	step(1, t.panX, &px)
	step(2, t.panY, &py)
	v.SetScale(scale)
	v.SetPan(px, py)
	if t.done[0] && t.done[1] && t.done[2] {
		v.tween = nil
	}
}
