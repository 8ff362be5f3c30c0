package kanim

import (
	"sort"
)

// Element is one visual part placed in a frame.
type Element struct {
	Symbol Hash
	// Index is the requested sequence index into the symbol's images.
	Index int
	Layer Hash
	// Matrix is the element affine [a, b, c, d, tx, ty].
	Matrix [6]float64
	Z      float64
}

// Frame is the ordered element list of one animation frame.
type Frame []Element

// AnimationClip is one facing variant of a named animation.
type AnimationClip struct {
	Name   string
	Bank   Hash
	Facing Facing
	Frames []Frame
	Bounds Rect
}

// AnimationSet is every facing variant a loader returned for one
// (bank, animation) pair.
type AnimationSet struct {
	Clips []AnimationClip
	// Facings lists clip facings in loader order without duplicates.
	Facings []Facing
}

// newAnimationSet sorts each frame by descending Z and collects facings.
// Element order within equal Z is kept.
func newAnimationSet(clips []AnimationClip) *AnimationSet {
	set := &AnimationSet{Clips: make([]AnimationClip, len(clips))}
	seen := make(map[Facing]bool)
	for i, c := range clips {
		frames := make([]Frame, len(c.Frames))
		for j, f := range c.Frames {
			sorted := append(Frame(nil), f...)
			sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Z > sorted[b].Z })
			frames[j] = sorted
		}
		c.Frames = frames
		set.Clips[i] = c
		if !seen[c.Facing] {
			seen[c.Facing] = true
			set.Facings = append(set.Facings, c.Facing)
		}
	}
	return set
}

// Clip returns the clip whose facing mask equals f.
func (s *AnimationSet) Clip(f Facing) (*AnimationClip, bool) {
	for i := range s.Clips {
		if s.Clips[i].Facing == f {
			return &s.Clips[i], true
		}
	}
	return nil, false
}

// SelectFacing picks the facing to play. An explicit facing wins when a clip
// offers it. Otherwise byBitmask walks single direction bits 1, 2, 4 ... 128
// and returns the first clip facing that intersects one; otherwise first
// falls back to the first listed facing. FacingNone means nothing is playable.
func (s *AnimationSet) SelectFacing(explicit Facing, byBitmask, first bool) Facing {
	if s == nil || len(s.Facings) == 0 {
		return FacingNone
	}
	if explicit != FacingNone {
		for _, f := range s.Facings {
			if f == explicit {
				return f
			}
		}
	}
	if byBitmask {
		for bit := 0; bit < 8; bit++ {
			mask := Facing(1 << bit)
			for _, f := range s.Facings {
				if f&mask != 0 {
					return f
				}
			}
		}
	}
	if first {
		return s.Facings[0]
	}
	return FacingNone
}
