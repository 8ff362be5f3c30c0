package kanim

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// AxisGuideColor is the stroke color of the axis guide.
var AxisGuideColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xC0}

// Submit draws cmds onto target in order. Each command is drawn with a color
// matrix that multiplies by Mult and then adds Add. It returns the number of
// draw calls issued.
func Submit(target *ebiten.Image, cmds []DrawCommand) int {
	var op colorm.DrawImageOptions
	op.Filter = ebiten.FilterLinear
	calls := 0
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Atlas == nil || cmd.Atlas.Image == nil {
			continue
		}
		sub := cmd.Atlas.Image.SubImage(cmd.Src).(*ebiten.Image)

		op.GeoM = commandGeoM(cmd.Transform)
		colorm.DrawImage(target, sub, commandColorM(cmd.Mult, cmd.Add), &op)
		calls++
	}
	return calls
}

// commandGeoM converts an affine matrix to ebiten.GeoM.
func commandGeoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}

// commandColorM builds c' = c*mult + add. The add alpha channel carries no
// weight at this point, so alpha is left to mult alone.
func commandColorM(mult, add Color) colorm.ColorM {
	var cm colorm.ColorM
	cm.Scale(mult.R, mult.G, mult.B, mult.A)
	if add.R != 0 || add.G != 0 || add.B != 0 {
		cm.Translate(add.R, add.G, add.B, 0)
	}
	return cm
}

// DrawAxisGuide strokes a cross through the view origin spanning target.
func DrawAxisGuide(target *ebiten.Image, view *View) {
	ox, oy := view.WorldToScreen(0, 0)
	b := target.Bounds()
	x, y := float32(ox), float32(oy)
	vector.StrokeLine(target, float32(b.Min.X), y, float32(b.Max.X), y, 1, AxisGuideColor, false)
	vector.StrokeLine(target, x, float32(b.Min.Y), x, float32(b.Max.Y), 1, AxisGuideColor, false)
}
