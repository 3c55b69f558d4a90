package state

import (
	"math"
)

// DefaultBrushSize is used for zones that arrive without a radius.
const DefaultBrushSize = 30.0

// Point is a position in surface pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceSq returns the squared distance between p and q.
func (p Point) DistanceSq(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Sqrt(p.DistanceSq(q))
}

// Zone is a committed thermal annotation.
type Zone struct {
	ID          string  `json:"id"`
	Seq         uint64  `json:"seq"`
	Name        string  `json:"name"`
	Points      []Point `json:"points"`
	Temperature float64 `json:"temperature"`
	BrushSize   float64 `json:"brush_size"`
}

// Centroid is the mean of the zone's points.
func (z Zone) Centroid() Point {
	if len(z.Points) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range z.Points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(z.Points))
	return Point{X: sx / n, Y: sy / n}
}

// Fahrenheit converts the zone temperature from Celsius.
func (z Zone) Fahrenheit() float64 {
	return CelsiusToFahrenheit(z.Temperature)
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func (z Zone) clone() Zone {
	pts := make([]Point, len(z.Points))
	copy(pts, z.Points)
	z.Points = pts
	return z
}

// TempRange bounds the temperatures the ramp and the store accept.
type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRange is the 0-100 °C range used at startup.
var DefaultRange = TempRange{Min: 0, Max: 100}

// NewTempRange builds a valid range from raw user input. Non-finite bounds
// fall back to the defaults and an inverted or empty range is repaired by
// moving Min to one degree below Max, or to the next float below Max where
// one degree is lost to rounding.
func NewTempRange(min, max float64) TempRange {
	if !finite(min) {
		min = DefaultRange.Min
	}
	if !finite(max) {
		max = DefaultRange.Max
	}
	if min >= max {
		min = max - 1
		if min >= max {
			min = math.Nextafter(max, math.Inf(-1))
		}
	}
	return TempRange{Min: min, Max: max}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Clamp limits t to [Min, Max]. NaN maps to Min.
func (r TempRange) Clamp(t float64) float64 {
	if math.IsNaN(t) {
		return r.Min
	}
	return math.Max(r.Min, math.Min(r.Max, t))
}

// Normalize maps t onto [0, 1].
func (r TempRange) Normalize(t float64) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	n := (t - r.Min) / span
	return math.Max(0, math.Min(1, n))
}

// Lerp returns the temperature at factor f of the range.
func (r TempRange) Lerp(f float64) float64 {
	return r.Min + (r.Max-r.Min)*f
}
