package kanim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strconv"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"
)

// Loader fetches raw assets. Implementations decide the transport (files,
// archives, IPC). A nil or empty result with a nil error means "not found";
// a non-nil error is a transport failure.
//
// Methods are called from background goroutines and must be safe for
// concurrent use.
type Loader interface {
	LoadAnimation(ctx context.Context, bank Hash, anim string) ([]AnimationClip, error)
	LoadBuild(ctx context.Context, name string) (*BuildData, error)
	LoadAtlas(ctx context.Context, build string, sampler int) ([]byte, error)
	LoadElement(ctx context.Context, build string, symbol Hash, index int, thumbnail bool) ([]byte, error)
}

// AssetKind identifies which cache an AssetEvent comes from.
type AssetKind uint8

const (
	AssetAnimation AssetKind = iota
	AssetBuild
	AssetAtlas
	AssetElement
)

func (k AssetKind) String() string {
	switch k {
	case AssetAnimation:
		return "animation"
	case AssetBuild:
		return "build"
	case AssetAtlas:
		return "atlas"
	case AssetElement:
		return "element"
	default:
		return fmt.Sprintf("AssetKind(%d)", uint8(k))
	}
}

// AssetEvent reports that a cache entry resolved.
type AssetEvent struct {
	Kind  AssetKind
	Key   string
	State LoadState
	Err   error
}

// Image is a decoded atlas page or element image.
type Image struct {
	Image *ebiten.Image
	// Width and Height are the actual pixel size of the decoded image.
	Width, Height int
}

// AnimationKey is the cache key of an animation set.
func AnimationKey(bank Hash, anim string) string {
	return bank.String() + "/" + anim
}

// BuildKey is the cache key of a build.
func BuildKey(name string) string { return name }

// AtlasKey is the cache key of one atlas page of a build.
func AtlasKey(build string, sampler int) string {
	return build + "#" + strconv.Itoa(sampler)
}

// ElementKey is the cache key of a single element image.
func ElementKey(build string, symbol Hash, index int) string {
	return build + "/" + symbol.String() + "/" + strconv.Itoa(index)
}

// Assets is the four-tier asset cache in front of one Loader. Several States
// may share one Assets; it has no package-level state.
//
// Requests never block. Completions are queued and delivered to subscribers by
// Poll, which the owner calls from its own goroutine (Engine.Update does this).
type Assets struct {
	loader Loader

	animations *Cache[*AnimationSet]
	builds     *Cache[*Build]
	atlases    *Cache[*Image]
	elements   *Cache[*Image]
	tracker    *loadTracker

	mu      sync.Mutex
	pending []AssetEvent
	subs    []assetSub
	nextSub int

	// PreloadLimit bounds concurrent fetches in Preload. Zero means 4.
	PreloadLimit int
}

type assetSub struct {
	id int
	fn func(AssetEvent)
}

// NewAssets creates an empty cache in front of loader.
func NewAssets(loader Loader) *Assets {
	ctx := context.Background()
	a := &Assets{loader: loader, tracker: newLoadTracker()}
	a.animations = newCache(ctx, a.tracker, queueEvent[*AnimationSet](a, AssetAnimation))
	a.builds = newCache(ctx, a.tracker, queueEvent[*Build](a, AssetBuild))
	a.atlases = newCache(ctx, a.tracker, queueEvent[*Image](a, AssetAtlas))
	a.elements = newCache(ctx, a.tracker, queueEvent[*Image](a, AssetElement))
	return a
}

func queueEvent[T any](a *Assets, kind AssetKind) func(string, CacheEntry[T]) {
	return func(key string, e CacheEntry[T]) {
		if e.State == StateError {
			logf("kanim: %s %q failed: %v", kind, key, e.Err)
		}
		a.mu.Lock()
		a.pending = append(a.pending, AssetEvent{Kind: kind, Key: key, State: e.State, Err: e.Err})
		a.mu.Unlock()
	}
}

// --- Non-blocking requests ---

// Animation requests the animation set for (bank, anim).
func (a *Assets) Animation(bank Hash, anim string) CacheEntry[*AnimationSet] {
	return a.animations.Request(AnimationKey(bank, anim), a.fetchAnimation(bank, anim))
}

// Build requests the build named name.
func (a *Assets) Build(name string) CacheEntry[*Build] {
	return a.builds.Request(BuildKey(name), a.fetchBuild(name))
}

// Atlas requests atlas page sampler of build.
func (a *Assets) Atlas(build string, sampler int) CacheEntry[*Image] {
	return a.atlases.Request(AtlasKey(build, sampler), a.fetchAtlas(build, sampler))
}

// Element requests the standalone image of one symbol frame. Thumbnails and
// full-size images share a key; the first request decides which is fetched.
func (a *Assets) Element(build string, symbol Hash, index int, thumbnail bool) CacheEntry[*Image] {
	return a.elements.Request(ElementKey(build, symbol, index), a.fetchElement(build, symbol, index, thumbnail))
}

// --- Blocking variants ---

// AwaitAnimation waits for the animation set for (bank, anim).
func (a *Assets) AwaitAnimation(ctx context.Context, bank Hash, anim string) (*AnimationSet, error) {
	e, err := a.animations.Await(ctx, AnimationKey(bank, anim), a.fetchAnimation(bank, anim))
	return e.Value, err
}

// AwaitBuild waits for the build named name.
func (a *Assets) AwaitBuild(ctx context.Context, name string) (*Build, error) {
	e, err := a.builds.Await(ctx, BuildKey(name), a.fetchBuild(name))
	return e.Value, err
}

// AwaitAtlas waits for atlas page sampler of build.
func (a *Assets) AwaitAtlas(ctx context.Context, build string, sampler int) (*Image, error) {
	e, err := a.atlases.Await(ctx, AtlasKey(build, sampler), a.fetchAtlas(build, sampler))
	return e.Value, err
}

// Preload resolves the named builds and every atlas page they reference,
// at most PreloadLimit fetches at a time. Missing builds are not an error;
// transport failures are.
func (a *Assets) Preload(ctx context.Context, builds ...string) error {
	limit := a.PreloadLimit
	if limit <= 0 {
		limit = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, name := range builds {
		g.Go(func() error {
			b, err := a.AwaitBuild(ctx, name)
			if err != nil {
				return ignoreNotFound(err)
			}
			for i := range b.Atlases {
				if _, err := a.AwaitAtlas(ctx, name, i); err != nil {
					if err := ignoreNotFound(err); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// --- Lookups ---

// LoadedBuild returns the build if it is loaded, without requesting it.
func (a *Assets) LoadedBuild(name string) (*Build, bool) {
	e, ok := a.builds.Get(BuildKey(name))
	if !ok || !e.Ready() {
		return nil, false
	}
	return e.Value, true
}

// --- Completion delivery ---

// Subscribe registers fn to receive AssetEvents from Poll. The returned
// function removes the subscription; fn is not called after it returns.
func (a *Assets) Subscribe(fn func(AssetEvent)) (cancel func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextSub++
	id := a.nextSub
	a.subs = append(a.subs, assetSub{id: id, fn: fn})
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i, s := range a.subs {
			if s.id == id {
				a.subs = append(a.subs[:i:i], a.subs[i+1:]...)
				return
			}
		}
	}
}

// Poll delivers queued completions to subscribers on the calling goroutine
// and returns how many events were delivered.
func (a *Assets) Poll() int {
	a.mu.Lock()
	events := a.pending
	a.pending = nil
	a.mu.Unlock()

	for _, ev := range events {
		a.mu.Lock()
		subs := a.subs
		a.mu.Unlock()
		for _, s := range subs {
			if a.subscribed(s.id) {
				s.fn(ev)
			}
		}
	}
	return len(events)
}

func (a *Assets) subscribed(id int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

// Wait blocks until no fetch is in flight. Completions still need Poll.
func (a *Assets) Wait(ctx context.Context) error {
	return a.tracker.wait(ctx)
}

// RetryFailed forgets every failed entry in all four caches so the next
// explicit request reloads it. Nothing is retried automatically.
func (a *Assets) RetryFailed() int {
	return a.animations.RetryFailed() + a.builds.RetryFailed() +
		a.atlases.RetryFailed() + a.elements.RetryFailed()
}

// --- Fetchers ---

func (a *Assets) fetchAnimation(bank Hash, anim string) FetchFunc[*AnimationSet] {
	return func(ctx context.Context) (*AnimationSet, bool, error) {
		clips, err := a.loader.LoadAnimation(ctx, bank, anim)
		if err != nil || len(clips) == 0 {
			return nil, false, err
		}
		return newAnimationSet(clips), true, nil
	}
}

func (a *Assets) fetchBuild(name string) FetchFunc[*Build] {
	return func(ctx context.Context) (*Build, bool, error) {
		data, err := a.loader.LoadBuild(ctx, name)
		if err != nil || data == nil {
			return nil, false, err
		}
		if data.Name == "" {
			data.Name = name
		}
		return newBuild(data), true, nil
	}
}

func (a *Assets) fetchAtlas(build string, sampler int) FetchFunc[*Image] {
	return func(ctx context.Context) (*Image, bool, error) {
		raw, err := a.loader.LoadAtlas(ctx, build, sampler)
		return decodeFetched(raw, err)
	}
}

func (a *Assets) fetchElement(build string, symbol Hash, index int, thumbnail bool) FetchFunc[*Image] {
	return func(ctx context.Context) (*Image, bool, error) {
		raw, err := a.loader.LoadElement(ctx, build, symbol, index, thumbnail)
		return decodeFetched(raw, err)
	}
}

func decodeFetched(raw []byte, err error) (*Image, bool, error) {
	if err != nil || len(raw) == 0 {
		return nil, false, err
	}
	img, err := DecodeImage(raw)
	if err != nil {
		return nil, false, err
	}
	return img, true, nil
}

// DecodeImage decodes PNG or JPEG bytes into an Image.
func DecodeImage(raw []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("kanim: failed to decode image: %w", err)
	}
	b := src.Bounds()
	return &Image{
		Image:  ebiten.NewImageFromImage(src),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}
