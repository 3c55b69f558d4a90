package state

import (
	"fmt"
	"math"
)

// SessionState holds every zone of the current canvas together with the
// selection, the zone-name counter and the stroke being drawn.
//
// Each mutator marks the background cache dirty. SessionState is not safe for
// concurrent use; callers keep it on the UI goroutine.
type SessionState struct {
	zones    []Zone
	selected string
	counter  int
	active   []Point
	drawing  bool
	rng      TempRange
	dirty    bool
	clock    Clock
}

// NewSessionState returns an empty store using rng for clamping.
func NewSessionState(rng TempRange) *SessionState {
	return &SessionState{
		counter: 1,
		rng:     NewTempRange(rng.Min, rng.Max),
		dirty:   true,
	}
}

// Zones returns a copy of the committed zones in store order.
func (s *SessionState) Zones() []Zone {
	out := make([]Zone, len(s.zones))
	for i, z := range s.zones {
		out[i] = z.clone()
	}
	return out
}

// Zone looks up a zone by id.
func (s *SessionState) Zone(id string) (Zone, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Zone{}, false
	}
	return s.zones[i].clone(), true
}

func (s *SessionState) Len() int { return len(s.zones) }

// PointCount is the total number of points across committed zones.
func (s *SessionState) PointCount() int {
	n := 0
	for _, z := range s.zones {
		n += len(z.Points)
	}
	return n
}

// NextName is the name the next drawn zone will receive.
func (s *SessionState) NextName() string {
	return fmt.Sprintf("Zone %d", s.counter)
}

func (s *SessionState) indexOf(id string) int {
	for i := range s.zones {
		if s.zones[i].ID == id {
			return i
		}
	}
	return -1
}

// Selected returns the selected zone id, if any.
func (s *SessionState) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

func (s *SessionState) IsSelected(id string) bool {
	return id != "" && s.selected == id
}

// Select makes id the selected zone.
func (s *SessionState) Select(id string) error {
	if s.indexOf(id) < 0 {
		return fmt.Errorf("select %q: %w", id, ErrZoneNotFound)
	}
	if s.selected != id {
		s.selected = id
		s.dirty = true
	}
	return nil
}

// ClearSelection deselects; it reports whether anything was selected.
func (s *SessionState) ClearSelection() bool {
	if s.selected == "" {
		return false
	}
	s.selected = ""
	s.dirty = true
	return true
}

func (s *SessionState) Rename(id, name string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("rename %q: %w", id, ErrZoneNotFound)
	}
	s.zones[i].Name = name
	s.dirty = true
	return nil
}

// SetTemperature stores t clamped to the active range and returns the stored value.
func (s *SessionState) SetTemperature(id string, t float64) (float64, error) {
	if math.IsNaN(t) {
		return 0, ErrInvalidTemperature
	}
	i := s.indexOf(id)
	if i < 0 {
		return 0, fmt.Errorf("set temperature %q: %w", id, ErrZoneNotFound)
	}
	s.zones[i].Temperature = s.rng.Clamp(t)
	s.dirty = true
	return s.zones[i].Temperature, nil
}

// NudgeTemperature adds delta to the zone temperature.
func (s *SessionState) NudgeTemperature(id string, delta float64) (float64, error) {
	z, ok := s.Zone(id)
	if !ok {
		return 0, fmt.Errorf("nudge temperature %q: %w", id, ErrZoneNotFound)
	}
	return s.SetTemperature(id, z.Temperature+delta)
}

// Delete removes a zone. Deleting the selected zone clears the selection.
func (s *SessionState) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %q: %w", id, ErrZoneNotFound)
	}
	s.zones = append(s.zones[:i], s.zones[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	s.dirty = true
	return nil
}

// Clear empties the store and restarts zone naming at 1.
func (s *SessionState) Clear() {
	s.zones = nil
	s.selected = ""
	s.counter = 1
	s.active = nil
	s.drawing = false
	s.dirty = true
}

// Restore replaces the zones, e.g. after importing a CSV. Zones without an id
// get one, missing brush sizes fall back to DefaultBrushSize and zones without
// points are dropped. Temperatures are clamped to the active range.
func (s *SessionState) Restore(zones []Zone) {
	s.zones = make([]Zone, 0, len(zones))
	for _, z := range zones {
		if len(z.Points) == 0 {
			continue
		}
		z = z.clone()
		if z.ID == "" {
			z.ID = newZoneID()
		}
		if z.Seq == 0 {
			z.Seq = s.clock.Tick()
		} else {
			s.clock.Update(z.Seq)
		}
		if z.BrushSize <= 0 {
			z.BrushSize = DefaultBrushSize
		}
		z.Temperature = s.rng.Clamp(z.Temperature)
		s.zones = append(s.zones, z)
	}
	s.selected = ""
	s.active = nil
	s.drawing = false
	s.dirty = true
}

// BeginStroke starts a new in-progress stroke at p.
func (s *SessionState) BeginStroke(p Point) {
	s.active = []Point{p}
	s.drawing = true
}

// Drawing reports whether a stroke is in progress.
func (s *SessionState) Drawing() bool { return s.drawing }

// AppendPoint adds p to the in-progress stroke when it lies more than minDist
// away from the last recorded point. It reports whether the buffer grew.
func (s *SessionState) AppendPoint(p Point, minDist float64) bool {
	if !s.drawing {
		return false
	}
	if n := len(s.active); n > 0 && p.DistanceSq(s.active[n-1]) <= minDist*minDist {
		return false
	}
	s.active = append(s.active, p)
	return true
}

// ActivePoints returns a copy of the in-progress stroke.
func (s *SessionState) ActivePoints() []Point {
	out := make([]Point, len(s.active))
	copy(out, s.active)
	return out
}

// CommitStroke turns the in-progress stroke into a zone named after the
// counter and selects it.
func (s *SessionState) CommitStroke(temperature, brushSize float64) (Zone, error) {
	pts := s.active
	s.active = nil
	s.drawing = false
	if len(pts) == 0 {
		return Zone{}, ErrEmptyStroke
	}
	if math.IsNaN(temperature) {
		return Zone{}, ErrInvalidTemperature
	}
	if brushSize <= 0 {
		brushSize = DefaultBrushSize
	}
	z := Zone{
		ID:          newZoneID(),
		Seq:         s.clock.Tick(),
		Name:        s.NextName(),
		Points:      pts,
		Temperature: s.rng.Clamp(temperature),
		BrushSize:   brushSize,
	}
	s.counter++
	s.zones = append(s.zones, z)
	s.selected = z.ID
	s.dirty = true
	return z.clone(), nil
}

// CancelStroke drops the in-progress stroke.
func (s *SessionState) CancelStroke() {
	s.active = nil
	s.drawing = false
}

func (s *SessionState) Range() TempRange { return s.rng }

// SetRange installs a new temperature range after repairing it. Stored zone
// temperatures are left untouched.
func (s *SessionState) SetRange(min, max float64) TempRange {
	s.rng = NewTempRange(min, max)
	s.dirty = true
	return s.rng
}

// Dirty reports whether the background cache is stale.
func (s *SessionState) Dirty() bool { return s.dirty }

func (s *SessionState) MarkDirty() { s.dirty = true }

// MarkClean is called by the compositor once the cache reflects the store.
func (s *SessionState) MarkClean() { s.dirty = false }
