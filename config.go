package kanim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config tunes an Engine and the States it creates. Load it from YAML with
// LoadConfig or start from DefaultConfig.
type Config struct {
	// FrameRate is the clip frame rate in frames per second.
	FrameRate float64 `yaml:"frame_rate"`

	// AutoFacingByBitmask picks the first clip facing that intersects the
	// lowest direction bit when no explicit facing matches.
	AutoFacingByBitmask bool `yaml:"auto_facing_by_bitmask"`
	// AutoFacing falls back to the clip's first facing.
	AutoFacing bool `yaml:"auto_facing"`

	// ApplyPlaybackCommands lets Pause, Resume, SetPercent and
	// SetDeltaTimeMultiplier drive the playback clock.
	ApplyPlaybackCommands bool `yaml:"apply_playback_commands"`

	// AxisGuide draws a cross through the view origin.
	AxisGuide bool `yaml:"axis_guide"`
	// AxisGuideOnTop draws the guide after the animation instead of before.
	AxisGuideOnTop bool `yaml:"axis_guide_on_top"`

	// AutoFrame refits the view whenever the clip bounds change.
	AutoFrame bool         `yaml:"auto_frame"`
	Placement PlacementFit `yaml:"placement"`

	// PreloadConcurrency bounds parallel fetches in Assets.Preload.
	PreloadConcurrency int `yaml:"preload_concurrency"`

	// SnapshotDir is where Engine.Snapshot writes PNG files.
	SnapshotDir string `yaml:"snapshot_dir"`

	// Debug logs per-frame compose statistics to stderr.
	Debug bool `yaml:"debug"`
}

// PlacementFit describes the box View.ApplyPlacement fits bounds into.
type PlacementFit struct {
	Width     float64 `yaml:"width"`
	MinAspect float64 `yaml:"min_aspect"`
	MaxAspect float64 `yaml:"max_aspect"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		FrameRate:           DefaultFrameRate,
		AutoFacingByBitmask: true,
		AutoFacing:          true,
		AxisGuide:           true,
		AutoFrame:           true,
		Placement: PlacementFit{
			Width:     512,
			MinAspect: 0.5,
			MaxAspect: 2,
		},
		PreloadConcurrency: 4,
		SnapshotDir:        "snapshots",
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("kanim: failed to read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("kanim: config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("kanim: failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate must be positive, got %v", ErrInvalidConfig, c.FrameRate)
	}
	p := c.Placement
	if p.Width <= 0 {
		return fmt.Errorf("%w: placement.width must be positive, got %v", ErrInvalidConfig, p.Width)
	}
	if p.MinAspect <= 0 || p.MaxAspect < p.MinAspect {
		return fmt.Errorf("%w: placement aspect range [%v, %v] is empty", ErrInvalidConfig, p.MinAspect, p.MaxAspect)
	}
	if c.PreloadConcurrency < 0 {
		return fmt.Errorf("%w: preload_concurrency must not be negative", ErrInvalidConfig)
	}
	return nil
}
