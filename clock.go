package kanim

import "math"

// DefaultFrameRate is the authored frame rate of clips.
const DefaultFrameRate = 30

// PlaybackClock is a frame-accurate timer independent of the display rate.
// Times are in milliseconds.
type PlaybackClock struct {
	frame     int
	sub       float64 // time spent in the current frame, in [0, interval]
	total     int
	speed     float64
	frameRate float64
	reversed  bool
	paused    bool
}

// NewPlaybackClock creates a playing clock at frame 0 with speed 1.
func NewPlaybackClock(frameRate float64) *PlaybackClock {
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &PlaybackClock{speed: 1, frameRate: frameRate}
}

// Frame returns the current frame index.
func (c *PlaybackClock) Frame() int { return c.frame }

// SubFrameTime returns the time accumulated inside the current frame.
func (c *PlaybackClock) SubFrameTime() float64 { return c.sub }

// Total returns the number of frames the clock cycles through.
func (c *PlaybackClock) Total() int { return c.total }

// Speed returns the playback speed multiplier.
func (c *PlaybackClock) Speed() float64 { return c.speed }

// FrameRate returns frames per second.
func (c *PlaybackClock) FrameRate() float64 { return c.frameRate }

// Reversed reports whether playback runs backward.
func (c *PlaybackClock) Reversed() bool { return c.reversed }

// Paused reports whether Advance is a no-op.
func (c *PlaybackClock) Paused() bool { return c.paused }

// Interval returns the duration of one frame in milliseconds.
func (c *PlaybackClock) Interval() float64 { return 1000 / c.frameRate }

// Pause stops Advance from moving the clock.
func (c *PlaybackClock) Pause() { c.paused = true }

// Resume undoes Pause.
func (c *PlaybackClock) Resume() { c.paused = false }

// SetSpeed sets the speed multiplier. Non-positive values are ignored.
func (c *PlaybackClock) SetSpeed(speed float64) {
	if speed > 0 {
		c.speed = speed
	}
}

// SetFrameRate changes the frame rate. Sub-frame time is rescaled so the
// visible position inside the frame is kept. Non-positive values are ignored.
func (c *PlaybackClock) SetFrameRate(fps float64) {
	if fps <= 0 {
		return
	}
	frac := c.sub / c.Interval()
	c.frameRate = fps
	c.sub = frac * c.Interval()
}

// SetTotal sets the frame count, clamping the current frame into range.
func (c *PlaybackClock) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	c.total = total
	if c.frame >= total {
		c.frame = 0
		c.sub = 0
	}
}

// SetReversed changes direction, mirroring the sub-frame time so the visible
// position does not jump.
func (c *PlaybackClock) SetReversed(reversed bool) {
	if reversed == c.reversed {
		return
	}
	c.reversed = reversed
	c.sub = c.Interval() - c.sub
}

// Reset rewinds to frame 0 and clears the sub-frame time.
func (c *PlaybackClock) Reset() {
	c.frame = 0
	c.sub = 0
}

// Advance accumulates dt milliseconds scaled by speed and moves whole frames,
// wrapping at either end. Wrapping clears the remaining sub-frame time. It
// reports whether the frame changed.
func (c *PlaybackClock) Advance(dt float64) bool {
	if c.paused || c.total == 0 || dt <= 0 {
		return false
	}
	start := c.frame
	interval := c.Interval()
	c.sub += dt * c.speed
	for c.sub > interval {
		c.sub -= interval
		if !c.reversed {
			c.frame++
			if c.frame >= c.total {
				c.frame = 0
				c.sub = 0
			}
		} else {
			c.frame--
			if c.frame < 0 {
				c.frame = c.total - 1
				c.sub = 0
			}
		}
	}
	return c.frame != start
}

// Step jumps n frames (negative steps backward) ignoring timing. The
// sub-frame time resets only if the frame actually changes.
func (c *PlaybackClock) Step(n int) bool {
	if c.total == 0 {
		return false
	}
	next := ((c.frame+n)%c.total + c.total) % c.total
	if next == c.frame {
		return false
	}
	c.frame = next
	c.sub = 0
	return true
}

// SetPercent moves to fraction p of the clip, p clamped to [0, 1]. Forward
// playback floors p*total and keeps the fraction as elapsed time. Reverse
// playback uses the frame ending at p*total, keeping the remainder to its
// ceiling as elapsed time, so SmoothPercent reads back p in both directions.
// The clip ends (p=1 forward, p=0 reversed) land on the last frame played
// with a full interval elapsed; the next Advance wraps.
func (c *PlaybackClock) SetPercent(p float64, autoPause bool) {
	if autoPause {
		c.paused = true
	}
	if c.total == 0 {
		return
	}
	p = math.Max(0, math.Min(1, p))
	f := p * float64(c.total)
	interval := c.Interval()
	if !c.reversed {
		frame := math.Floor(f)
		c.frame = int(frame)
		c.sub = (f - frame) * interval
		if c.frame >= c.total {
			c.frame = c.total - 1
			c.sub = interval
		}
		return
	}
	ceil := math.Ceil(f)
	c.frame = int(ceil) - 1
	c.sub = (ceil - f) * interval
	if c.frame < 0 {
		c.frame = 0
		c.sub = interval
	}
}

// SmoothPercent returns the playback position as a fraction of the clip,
// continuous across frames. It is the inverse of SetPercent.
func (c *PlaybackClock) SmoothPercent() float64 {
	if c.total == 0 {
		return 0
	}
	frac := c.sub / c.Interval()
	if !c.reversed {
		return (float64(c.frame) + frac) / float64(c.total)
	}
	return (float64(c.frame) + 1 - frac) / float64(c.total)
}
