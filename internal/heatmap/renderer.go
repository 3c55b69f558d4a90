package heatmap

import (
	"fmt"

	"ThermalBoard/internal/state"
)

// BrushStyle picks how each zone point is painted.
type BrushStyle uint8

const (
	// BrushDisc paints flat discs that the compositor blurs afterwards.
	BrushDisc BrushStyle = iota
	// BrushGradient paints radial falloffs.
	BrushGradient
)

func (b BrushStyle) String() string {
	if b == BrushGradient {
		return "gradient"
	}
	return "disc"
}

// ParseBrushStyle accepts "disc" or "gradient".
func ParseBrushStyle(s string) (BrushStyle, error) {
	switch s {
	case "disc", "":
		return BrushDisc, nil
	case "gradient":
		return BrushGradient, nil
	}
	return BrushDisc, fmt.Errorf("%w: brush style %q", ErrUnknownOption, s)
}

// DefaultSelectedScale enlarges the radius of the selected zone.
const DefaultSelectedScale = 1.3

// Renderer paints single zones.
type Renderer struct {
	Style         BrushStyle
	SelectedScale float64
}

func NewRenderer(style BrushStyle, selectedScale float64) Renderer {
	if selectedScale <= 0 {
		selectedScale = DefaultSelectedScale
	}
	return Renderer{Style: style, SelectedScale: selectedScale}
}

// RenderZone paints z onto s with the ramp color of its temperature.
func (r Renderer) RenderZone(s Surface, z state.Zone, selected bool, rng state.TempRange) {
	if len(z.Points) == 0 {
		return
	}
	radius := z.BrushSize
	if radius <= 0 {
		radius = state.DefaultBrushSize
	}
	if selected {
		scale := r.SelectedScale
		if scale <= 0 {
			scale = DefaultSelectedScale
		}
		radius *= scale
	}
	c := ColorFor(z.Temperature, rng)
	alpha := ZoneAlpha(z.Temperature, rng)
	if r.Style == BrushGradient {
		s.DrawGradient(c, alpha, radius, z.Points...)
		return
	}
	s.DrawDisc(c, alpha, radius, z.Points...)
}
