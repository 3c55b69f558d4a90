// Package board drives the heatmap from pointer input.
package board

import (
	"fmt"
	"math"
)

// Mode selects what a press on the canvas does.
type Mode uint8

const (
	// ModeDraw records a freehand stroke; a press without movement selects.
	ModeDraw Mode = iota
	// ModePoint places a one-point zone per press.
	ModePoint
)

func (m Mode) String() string {
	if m == ModePoint {
		return "point"
	}
	return "draw"
}

// ParseMode accepts "draw" or "point".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "draw", "":
		return ModeDraw, nil
	case "point":
		return ModePoint, nil
	}
	return ModeDraw, fmt.Errorf("%w: mode %q", ErrInvalidSetting, s)
}

// minStrokePoints is the commit threshold per mode.
func (m Mode) minStrokePoints() int {
	if m == ModePoint {
		return 1
	}
	return 2
}

const (
	MinBrushSize = 5
	MaxBrushSize = 100
)

// Settings are the paint parameters read on every new stroke.
type Settings struct {
	BrushSize        float64
	Temperature      float64
	MinPointDistance float64
	ClickTolerance   float64
	Mode             Mode
}

func DefaultSettings() Settings {
	return Settings{
		BrushSize:        30,
		Temperature:      25,
		MinPointDistance: 10,
		ClickTolerance:   20,
		Mode:             ModeDraw,
	}
}

func clampBrush(v float64) float64 {
	return math.Max(MinBrushSize, math.Min(MaxBrushSize, v))
}
