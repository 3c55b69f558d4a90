package state

// sampleZones is the demo data shown at startup.
var sampleZones = []Zone{
	{
		Name:        "Hot Zone",
		Temperature: 95.5,
		BrushSize:   50,
		Points:      []Point{{X: 350, Y: 300}, {X: 400, Y: 320}, {X: 450, Y: 280}},
	},
	{
		Name:        "Warm Area",
		Temperature: 65.2,
		BrushSize:   80,
		Points:      []Point{{X: 550, Y: 450}},
	},
	{
		Name:        "Cool Spot",
		Temperature: 15.8,
		BrushSize:   60,
		Points:      []Point{{X: 200, Y: 200}, {X: 220, Y: 240}},
	},
}

// SampleCanvas is the surface size the samples are laid out for.
const (
	SampleCanvasWidth  = 800
	SampleCanvasHeight = 600
)

// LoadSamples replaces the store with the demo zones and selects the first.
// Sample zones carry their own names, so the counter restarts at 1.
func (s *SessionState) LoadSamples() {
	s.Clear()
	for _, z := range sampleZones {
		z = z.clone()
		z.ID = newZoneID()
		z.Seq = s.clock.Tick()
		z.Temperature = s.rng.Clamp(z.Temperature)
		s.zones = append(s.zones, z)
	}
	s.selected = s.zones[0].ID
	s.dirty = true
}
