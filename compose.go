package kanim

import (
	"image"
	"math"
	"time"
)

// DrawCommand is one element of the current frame, resolved and ready to be
// drawn by Submit.
type DrawCommand struct {
	// Atlas is the loaded atlas page and Src the sub-rectangle in its actual
	// pixels.
	Atlas *Image
	Src   image.Rectangle
	// Transform maps Src pixels to screen pixels.
	Transform [6]float64
	Mult, Add Color

	Symbol Hash
	Layer  Hash
}

// ComposeStats counts what happened to each element of the last composed
// frame.
type ComposeStats struct {
	Drawn int
	// Hidden elements were excluded by show/hide commands.
	Hidden int
	// Unresolved elements had no loaded build or symbol to draw from.
	Unresolved int
	// Missing elements had no image covering the requested index.
	Missing int
	// Pending elements are waiting on their atlas.
	Pending int

	ComposeTime time.Duration
}

// Compose resolves the current frame into draw commands appended to dst.
// Elements are emitted in their stored order, highest Z first, so later
// commands paint over earlier ones. Atlases that are not loaded yet are
// requested and their elements skipped for this frame.
func (s *State) Compose(view *View, dst []DrawCommand) []DrawCommand {
	start := time.Now()
	var stats ComposeStats
	defer func() {
		stats.ComposeTime = time.Since(start)
		s.stats = stats
	}()

	frame, ok := s.CurrentFrame()
	if !ok {
		return dst
	}
	viewM := identityTransform
	if view != nil {
		viewM = view.Matrix()
	}
	active := s.ActiveBuild()

	for i := range frame {
		el := &frame[i]
		if !s.visibility.Visible(el.Symbol, el.Layer) {
			stats.Hidden++
			continue
		}

		name, symbol := active, el.Symbol
		if src, ok := s.sources[el.Symbol]; ok && src.Set {
			name, symbol = src.Build, src.Symbol
		}
		b, ok := s.assets.LoadedBuild(name)
		if !ok {
			stats.Unresolved++
			continue
		}
		entries, ok := b.Symbol(symbol)
		if !ok {
			stats.Unresolved++
			continue
		}
		entry, ok := ResolveEntry(entries, el.Index)
		if !ok {
			stats.Missing++
			continue
		}

		atlas := s.assets.Atlas(name, entry.Sampler)
		if !atlas.Ready() {
			stats.Pending++
			continue
		}

		cmd, ok := composeElement(el, entry, atlas.Value, viewM)
		if !ok {
			stats.Missing++
			continue
		}
		cmd.Mult, cmd.Add = s.tint.For(el.Symbol)
		dst = append(dst, cmd)
		stats.Drawn++
	}
	return dst
}

// ComposeStats returns the counters of the last Compose call.
func (s *State) ComposeStats() ComposeStats { return s.stats }

// composeElement computes the atlas sub-rectangle and the full transform of
// one element. The entry's rectangle is given in authored atlas pixels
// (CW x CH) and is scaled to the atlas as loaded.
func composeElement(el *Element, e ImageEntry, atlas *Image, viewM [6]float64) (DrawCommand, bool) {
	if atlas == nil || e.CW <= 0 || e.CH <= 0 || e.W <= 0 || e.H <= 0 {
		return DrawCommand{}, false
	}
	kx := float64(atlas.Width) / e.CW
	ky := float64(atlas.Height) / e.CH

	src := image.Rect(
		int(math.Round(e.BBX*kx)),
		int(math.Round(e.BBY*ky)),
		int(math.Round((e.BBX+e.W)*kx)),
		int(math.Round((e.BBY+e.H)*ky)),
	).Intersect(image.Rect(0, 0, atlas.Width, atlas.Height))
	if src.Empty() {
		return DrawCommand{}, false
	}

	// Src pixels -> element space, centered on (X, Y) with size (W, H).
	place := multiplyAffine(
		translateAffine(e.X-e.W/2, e.Y-e.H/2),
		scaleAffine(e.W/float64(src.Dx()), e.H/float64(src.Dy())),
	)
	return DrawCommand{
		Atlas:     atlas,
		Src:       src,
		Transform: multiplyAffine(viewM, multiplyAffine(el.Matrix, place)),
		Symbol:    el.Symbol,
		Layer:     el.Layer,
	}, true
}
