// Package config holds the board settings and loads them from defaults, an
// optional YAML file and THERMAL_* environment variables.
package config

import (
	"fmt"
	"math"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/state"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CanvasWidth and CanvasHeight size the surface before an image is loaded.
	CanvasWidth  int `koanf:"canvas_width"`
	CanvasHeight int `koanf:"canvas_height"`

	// MaxImageDim caps either side of a loaded background image.
	MaxImageDim int `koanf:"max_image_dim"`

	BrushSize        float64 `koanf:"brush_size"`
	Temperature      float64 `koanf:"temperature"`
	MinTemp          float64 `koanf:"min_temp"`
	MaxTemp          float64 `koanf:"max_temp"`
	MinPointDistance float64 `koanf:"min_point_distance"`
	ClickTolerance   float64 `koanf:"click_tolerance"`

	BlurRadius     float64 `koanf:"blur_radius"`
	HeatOpacity    float64 `koanf:"heat_opacity"`
	PreviewOpacity float64 `koanf:"preview_opacity"`
	SelectedScale  float64 `koanf:"selected_scale"`

	// HeatBlend is how the blurred heat layer meets the background.
	HeatBlend string `koanf:"heat_blend"`

	// BrushStyle is "disc" or "gradient".
	BrushStyle string `koanf:"brush_style"`
	// PlacementMode is "draw" or "point".
	PlacementMode string `koanf:"placement_mode"`

	// ShareAddr, when set, serves the read-only mirror, e.g. ":8470".
	ShareAddr string `koanf:"share_addr"`
	// Advertise announces the mirror over mDNS.
	Advertise bool `koanf:"advertise"`
}

// New returns a Config filled with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		CanvasWidth:      state.SampleCanvasWidth,
		CanvasHeight:     state.SampleCanvasHeight,
		MaxImageDim:      board.DefaultMaxImageDim,
		BrushSize:        30,
		Temperature:      25,
		MinTemp:          state.DefaultRange.Min,
		MaxTemp:          state.DefaultRange.Max,
		MinPointDistance: 10,
		ClickTolerance:   20,
		BlurRadius:       35,
		HeatOpacity:      0.75,
		PreviewOpacity:   0.5,
		SelectedScale:    heatmap.DefaultSelectedScale,
		HeatBlend:        heatmap.BlendColorDodge.String(),
		BrushStyle:       heatmap.BrushDisc.String(),
		PlacementMode:    board.ModeDraw.String(),
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.CanvasWidth <= 0 || c.CanvasHeight <= 0:
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalidConfig, c.CanvasWidth, c.CanvasHeight)
	case c.MaxImageDim <= 0:
		return fmt.Errorf("%w: max_image_dim %d", ErrInvalidConfig, c.MaxImageDim)
	case !finite(c.MinTemp) || !finite(c.MaxTemp) || c.MinTemp >= c.MaxTemp:
		return fmt.Errorf("%w: temperature range [%g, %g]", ErrInvalidConfig, c.MinTemp, c.MaxTemp)
	case !finite(c.Temperature):
		return fmt.Errorf("%w: temperature %g", ErrInvalidConfig, c.Temperature)
	case !(c.BrushSize >= board.MinBrushSize && c.BrushSize <= board.MaxBrushSize):
		return fmt.Errorf("%w: brush_size %g outside [%d, %d]", ErrInvalidConfig, c.BrushSize, board.MinBrushSize, board.MaxBrushSize)
	case !(c.MinPointDistance >= 0):
		return fmt.Errorf("%w: min_point_distance %g", ErrInvalidConfig, c.MinPointDistance)
	case !(c.ClickTolerance > 0):
		return fmt.Errorf("%w: click_tolerance %g", ErrInvalidConfig, c.ClickTolerance)
	case !(c.BlurRadius >= 0):
		return fmt.Errorf("%w: blur_radius %g", ErrInvalidConfig, c.BlurRadius)
	case !unit(c.HeatOpacity) || !unit(c.PreviewOpacity):
		return fmt.Errorf("%w: opacities must be within [0, 1]", ErrInvalidConfig)
	case !(c.SelectedScale >= 1.2 && c.SelectedScale <= 1.5):
		return fmt.Errorf("%w: selected_scale %g outside [1.2, 1.5]", ErrInvalidConfig, c.SelectedScale)
	}
	if _, err := heatmap.ParseBrushStyle(c.BrushStyle); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := heatmap.ParseBlendMode(c.HeatBlend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := board.ParseMode(c.PlacementMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Range is the configured temperature range.
func (c *Config) Range() state.TempRange {
	return state.NewTempRange(c.MinTemp, c.MaxTemp)
}

// Settings converts the paint parameters. Call Validate first.
func (c *Config) Settings() board.Settings {
	mode, _ := board.ParseMode(c.PlacementMode)
	return board.Settings{
		BrushSize:        c.BrushSize,
		Temperature:      c.Temperature,
		MinPointDistance: c.MinPointDistance,
		ClickTolerance:   c.ClickTolerance,
		Mode:             mode,
	}
}

// RenderOptions converts the compositor parameters. Call Validate first.
func (c *Config) RenderOptions() heatmap.Options {
	opts := heatmap.DefaultOptions()
	style, _ := heatmap.ParseBrushStyle(c.BrushStyle)
	opts.BlurRadius = c.BlurRadius
	opts.HeatOpacity = c.HeatOpacity
	opts.PreviewOpacity = c.PreviewOpacity
	if blend, err := heatmap.ParseBlendMode(c.HeatBlend); err == nil {
		opts.HeatBlend = blend
	}
	opts.Renderer = heatmap.NewRenderer(style, c.SelectedScale)
	return opts
}
