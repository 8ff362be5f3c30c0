package kanim

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default multiplicative tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorNoAdd is the default additive tint. Alpha is the add weight, so the
// RGB channels contribute nothing.
var ColorNoAdd = Color{0, 0, 0, 1}

// Mul returns the component-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// RGBA converts c to an 8-bit color.NRGBA, clamping each channel to [0, 1].
func (c Color) RGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Facing is a bitmask-encoded direction. A clip may offer several facings in
// a single mask.
type Facing uint8

const (
	FacingRight     Facing = 1 << iota // 1
	FacingUp                           // 2
	FacingLeft                         // 4
	FacingDown                         // 8
	FacingUpRight                      // 16
	FacingUpLeft                       // 32
	FacingDownRight                    // 64
	FacingDownLeft                     // 128

	// FacingNone means no facing could be selected; the frame list is empty.
	FacingNone Facing = 0
	// FacingAll is the mask of every direction.
	FacingAll Facing = 0xFF
)
