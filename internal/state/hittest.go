package state

import "math"

// Tolerance returns how close a query must be to one of the zone's points
// for the zone to count as hit.
type Tolerance func(z Zone) float64

// BrushTolerance uses the zone's own radius; hover lookups use it.
func BrushTolerance(z Zone) float64 { return z.BrushSize }

// FixedTolerance uses the same pixel distance for every zone.
func FixedTolerance(px float64) Tolerance {
	return func(Zone) float64 { return px }
}

// Hit is the result of a proximity lookup.
type Hit struct {
	ZoneID   string
	Distance float64
}

// FindNearest returns the zone owning the point closest to p among all points
// of all zones, counting only points strictly closer than the zone's
// tolerance. Equal distances keep the zone met first in store order.
func FindNearest(p Point, zones []Zone, tol Tolerance) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, z := range zones {
		limit := tol(z)
		if limit <= 0 {
			continue
		}
		box, ok := BoundsOf(z.Points)
		if !ok || !box.Expand(limit).Contains(p) {
			continue
		}
		for _, zp := range z.Points {
			d := zp.Distance(p)
			if d < limit && d < best.Distance {
				best = Hit{ZoneID: z.ID, Distance: d}
				found = true
			}
		}
	}
	return best, found
}

// FindNearest runs the lookup against the committed zones.
func (s *SessionState) FindNearest(p Point, tol Tolerance) (Hit, bool) {
	return FindNearest(p, s.zones, tol)
}
