package state

// Rect is an axis aligned box in surface pixels.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// BoundsOf returns the bounding box of points. ok is false for an empty slice.
func BoundsOf(points []Point) (r Rect, ok bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	r = Rect{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		if p.X < r.MinX {
			r.MinX = p.X
		}
		if p.X > r.MaxX {
			r.MaxX = p.X
		}
		if p.Y < r.MinY {
			r.MinY = p.Y
		}
		if p.Y > r.MaxY {
			r.MaxY = p.Y
		}
	}
	return r, true
}

// Expand grows the box by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{MinX: r.MinX - pad, MinY: r.MinY - pad, MaxX: r.MaxX + pad, MaxY: r.MaxY + pad}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Overlaps reports whether the two boxes intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// Footprint is the area the zone paints when each point's radius is scaled by
// radiusScale.
func (z Zone) Footprint(radiusScale float64) (Rect, bool) {
	r, ok := BoundsOf(z.Points)
	if !ok {
		return Rect{}, false
	}
	return r.Expand(z.BrushSize * radiusScale), true
}
