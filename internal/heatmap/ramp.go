// Package heatmap turns thermal zones into a pseudo-color overlay.
package heatmap

import (
	"image/color"
	"math"

	"ThermalBoard/internal/state"
)

// ColorFor maps a temperature onto the blue-cyan-green-yellow-red ramp using
// the given range. Temperatures outside the range pin to the end colors.
func ColorFor(temperature float64, rng state.TempRange) color.RGBA {
	return RampAt(rng.Normalize(temperature))
}

// RampAt evaluates the ramp at t in [0, 1]; t is clamped first.
func RampAt(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	var r, g, b float64
	switch {
	case t < 0.25:
		r, g, b = 0, t*4*255, 255
	case t < 0.5:
		r, g, b = 0, 255, 255-(t-0.25)*4*255
	case t < 0.75:
		r, g, b = (t-0.5)*4*255, 255, 0
	default:
		r, g, b = 255, 255-(t-0.75)*4*255, 0
	}
	return color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 255}
}

func channel(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// ZoneAlpha is the center opacity of a zone: hotter zones read more opaque.
func ZoneAlpha(temperature float64, rng state.TempRange) float64 {
	return math.Max(0, math.Min(1, 0.2+rng.Normalize(temperature)*0.5))
}
