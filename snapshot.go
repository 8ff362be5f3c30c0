package kanim

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Snapshot queues a capture of the next drawn frame. The PNG is written to
// Config.SnapshotDir when Draw finishes. An empty label names the file after
// the active animation and frame.
func (e *Engine) Snapshot(label string) {
	if label == "" {
		label = fmt.Sprintf("%s-%s-%d", e.state.ActiveBank(), e.state.ActiveAnimation(), e.state.Clock().Frame())
	}
	e.snapshots = append(e.snapshots, label)
}

// flushSnapshots writes every queued snapshot of screen. Called at the end of
// Engine.Draw.
func (e *Engine) flushSnapshots(screen *ebiten.Image) {
	if len(e.snapshots) == 0 {
		return
	}
	defer func() { e.snapshots = e.snapshots[:0] }()

	dir := e.cfg.SnapshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logf("kanim: snapshot: mkdir %s: %v", dir, err)
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	stamp := time.Now().Format("20060102_150405")
	for _, label := range e.snapshots {
		path := filepath.Join(dir, stamp+"_"+sanitizeLabel(label)+".png")
		if err := writePNG(path, img); err != nil {
			logf("kanim: snapshot: %v", err)
		}
	}
}

// unpremultiply converts premultiplied RGBA pixels, as ebiten reads them, to
// straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.' and replaces everything
// else with '_'. Blank labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
