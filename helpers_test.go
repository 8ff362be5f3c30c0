package kanim

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// fakeLoader serves canned assets and counts calls per key. When gate is
// non-nil every load blocks until it is closed.
type fakeLoader struct {
	mu      sync.Mutex
	anims   map[string][]AnimationClip
	builds  map[string]*BuildData
	atlases map[string][]byte
	fail    map[string]error
	calls   map[string]int
	gate    chan struct{}
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		anims:   make(map[string][]AnimationClip),
		builds:  make(map[string]*BuildData),
		atlases: make(map[string][]byte),
		fail:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (l *fakeLoader) enter(key string) error {
	l.mu.Lock()
	l.calls[key]++
	gate := l.gate
	err := l.fail[key]
	l.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (l *fakeLoader) callCount(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[key]
}

func (l *fakeLoader) setFail(key string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		delete(l.fail, key)
		return
	}
	l.fail[key] = err
}

func (l *fakeLoader) LoadAnimation(ctx context.Context, bank Hash, anim string) ([]AnimationClip, error) {
	key := AnimationKey(bank, anim)
	if err := l.enter(key); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.anims[key], nil
}

func (l *fakeLoader) LoadBuild(ctx context.Context, name string) (*BuildData, error) {
	key := BuildKey(name)
	if err := l.enter(key); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.builds[key], nil
}

func (l *fakeLoader) LoadAtlas(ctx context.Context, build string, sampler int) ([]byte, error) {
	key := AtlasKey(build, sampler)
	if err := l.enter(key); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.atlases[key], nil
}

func (l *fakeLoader) LoadElement(ctx context.Context, build string, symbol Hash, index int, thumbnail bool) ([]byte, error) {
	if err := l.enter(ElementKey(build, symbol, index)); err != nil {
		return nil, err
	}
	return nil, nil
}

// settle waits for every fetch to finish and delivers the completions.
func settle(t testing.TB, a *Assets) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		if err := a.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		// Delivering completions may start new loads.
		if a.Poll() == 0 {
			return
		}
	}
}

// seedAtlas stores a loaded atlas page without decoding any image data.
func seedAtlas(a *Assets, build string, sampler, w, h int) *Image {
	img := &Image{Width: w, Height: h}
	done := make(chan struct{})
	close(done)
	a.atlases.mu.Lock()
	a.atlases.slots[AtlasKey(build, sampler)] = &cacheSlot[*Image]{
		entry: CacheEntry[*Image]{State: StateLoaded, Value: img},
		done:  done,
	}
	a.atlases.mu.Unlock()
	return img
}

// element builds an element at the origin with an identity matrix.
func element(symbol string, index int, z float64) Element {
	return Element{
		Symbol: SmallHash(symbol),
		Index:  index,
		Layer:  SmallHash(symbol),
		Matrix: identityTransform,
		Z:      z,
	}
}

// testClip returns a clip of n frames, each holding the given elements.
func testClip(name string, bank string, facing Facing, n int, elems ...Element) AnimationClip {
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = append(Frame(nil), elems...)
	}
	return AnimationClip{
		Name:   name,
		Bank:   SmallHash(bank),
		Facing: facing,
		Frames: frames,
		Bounds: Rect{X: -50, Y: -100, Width: 100, Height: 100},
	}
}

// imageEntry builds a 16x16 image of symbol covering [index,
// index+duration), authored against a 64x64 atlas.
func imageEntry(symbol string, index, duration int) ImageEntry {
	return ImageEntry{
		Symbol:   SmallHash(symbol),
		Index:    index,
		Duration: duration,
		CW:       64,
		CH:       64,
		W:        16,
		H:        16,
	}
}
