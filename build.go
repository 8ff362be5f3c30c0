package kanim

import (
	"sort"
)

// ImageEntry is one image of a symbol inside a build.
type ImageEntry struct {
	Symbol Hash
	// Index is the first sequence index this image covers. Indices of one
	// symbol increase strictly but may have gaps.
	Index int
	// Duration is how many sequence indices the image covers, starting at Index.
	Duration int
	// Sampler selects the atlas page within the build.
	Sampler int

	// BBX and BBY locate the image in the atlas. CW and CH are the atlas
	// dimensions the entry was authored against; the loaded atlas may be
	// stored at a different resolution.
	BBX, BBY, CW, CH float64

	// Placement of the image in element space. X and Y are the image center.
	X, Y, W, H float64
}

// BuildData is a build as a Loader returns it.
type BuildData struct {
	Name string
	// Atlases lists atlas file names indexed by sampler.
	Atlases []string
	Images  []ImageEntry
}

// Build is a loaded build with images grouped by symbol. Immutable once
// loaded.
type Build struct {
	Name    string
	Atlases []string
	symbols map[Hash][]ImageEntry
}

// newBuild groups images by symbol and sorts each group by Index.
func newBuild(data *BuildData) *Build {
	b := &Build{
		Name:    data.Name,
		Atlases: append([]string(nil), data.Atlases...),
		symbols: make(map[Hash][]ImageEntry),
	}
	for _, img := range data.Images {
		b.symbols[img.Symbol] = append(b.symbols[img.Symbol], img)
	}
	for _, list := range b.symbols {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	}
	return b
}

// Symbol returns the images of symbol h sorted by Index.
func (b *Build) Symbol(h Hash) ([]ImageEntry, bool) {
	list, ok := b.symbols[h]
	return list, ok
}

// Defines reports whether the build has any image for symbol h.
func (b *Build) Defines(h Hash) bool {
	_, ok := b.symbols[h]
	return ok
}

// SymbolCount returns the number of distinct symbols in the build.
func (b *Build) SymbolCount() int { return len(b.symbols) }

// ResolveEntry finds the image covering the requested sequence index: the
// entry with the largest Index <= index, provided index falls inside its
// duration window. A Duration <= 0 covers its own index only. entries must be
// sorted by Index.
func ResolveEntry(entries []ImageEntry, index int) (ImageEntry, bool) {
	// First entry whose Index is greater than the request.
	i := sort.Search(len(entries), func(i int) bool { return entries[i].Index > index })
	if i == 0 {
		return ImageEntry{}, false
	}
	e := entries[i-1]
	d := e.Duration
	if d <= 0 {
		d = 1
	}
	if index >= e.Index+d {
		return ImageEntry{}, false
	}
	return e, true
}
