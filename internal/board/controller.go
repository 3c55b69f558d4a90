package board

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"time"

	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/logger"
	"ThermalBoard/internal/metrics"
	"ThermalBoard/internal/state"
)

// Tooltip is the hover text for the zone under the pointer.
type Tooltip struct {
	ZoneID string
	Text   string
}

// Stats summarizes the store for the status line.
type Stats struct {
	Zones  int
	Points int
	FPS    int
}

// Controller is the pointer state machine. It owns the session, turns
// pointer input into strokes, funnels every mutation through the session
// and asks for at most one frame at a time.
//
// All methods must be called from the UI goroutine.
type Controller struct {
	session  *state.SessionState
	comp     *heatmap.Compositor
	settings Settings
	frames   *FrameRequester
	fps      FPSCounter
	now      func() time.Time

	maxImageDim int

	log     logger.Logger
	metrics *metrics.Manager

	// OnFrame receives every composited frame. The image is reused.
	OnFrame func(img *image.RGBA)

	listeners []func()
}

// NewController wires a session and compositor to a scheduler.
func NewController(session *state.SessionState, comp *heatmap.Compositor, settings Settings, sched Scheduler, log logger.Logger, m *metrics.Manager) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		session:     session,
		comp:        comp,
		settings:    settings,
		now:         time.Now,
		maxImageDim: DefaultMaxImageDim,
		log:         log,
		metrics:     m,
	}
	c.settings.BrushSize = clampBrush(c.settings.BrushSize)
	c.settings.Temperature = session.Range().Clamp(c.settings.Temperature)
	c.frames = NewFrameRequester(sched, c.Frame)
	return c
}

func (c *Controller) Session() *state.SessionState    { return c.session }
func (c *Controller) Compositor() *heatmap.Compositor { return c.comp }
func (c *Controller) Settings() Settings              { return c.settings }

// Drawing reports whether a stroke is in progress.
func (c *Controller) Drawing() bool { return c.session.Drawing() }

// SetMaxImageDim changes the cap applied by SetImage.
func (c *Controller) SetMaxImageDim(px int) {
	if px > 0 {
		c.maxImageDim = px
	}
}

// AddChangeListener registers fn to run after every committed mutation.
func (c *Controller) AddChangeListener(fn func()) {
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) changed() {
	c.metrics.UpdateStoreSize(c.session.Len(), c.session.PointCount())
	for _, fn := range c.listeners {
		fn()
	}
	c.frames.Request()
}

// Frame composites the current state. The scheduler calls it; it may also
// be called directly to render synchronously.
func (c *Controller) Frame() {
	var preview *heatmap.Preview
	if c.session.Drawing() {
		preview = &heatmap.Preview{
			Points:      c.session.ActivePoints(),
			Temperature: c.settings.Temperature,
			BrushSize:   c.settings.BrushSize,
		}
	}
	img := c.comp.Composite(c.session, preview)
	c.metrics.RecordFrame()
	c.fps.Tick(c.now())
	if c.OnFrame != nil {
		c.OnFrame(img)
	}
}

func (c *Controller) Stats() Stats {
	return Stats{Zones: c.session.Len(), Points: c.session.PointCount(), FPS: c.fps.FPS()}
}

// PointerDown starts a stroke. In point mode the single point is committed
// immediately.
func (c *Controller) PointerDown(p state.Point) {
	if c.session.Drawing() {
		c.finish()
	}
	c.session.BeginStroke(p)
	if c.settings.Mode == ModePoint {
		c.finish()
		return
	}
	c.frames.Request()
}

// PointerMove extends the stroke when the pointer moved far enough.
func (c *Controller) PointerMove(p state.Point) {
	if !c.session.Drawing() {
		return
	}
	if c.session.AppendPoint(p, c.settings.MinPointDistance) {
		c.frames.Request()
	}
}

// PointerUp ends the stroke.
func (c *Controller) PointerUp() { c.finish() }

// PointerLeave behaves like PointerUp so a stroke never outlives the pointer.
func (c *Controller) PointerLeave() { c.finish() }

func (c *Controller) finish() {
	if !c.session.Drawing() {
		return
	}
	ctx := context.Background()
	pts := c.session.ActivePoints()
	if len(pts) < c.settings.Mode.minStrokePoints() {
		c.session.CancelStroke()
		c.metrics.RecordStrokeDiscarded()
		if len(pts) == 1 {
			c.Click(pts[0])
		}
		c.frames.Request()
		return
	}
	z, err := c.session.CommitStroke(c.settings.Temperature, c.settings.BrushSize)
	if err != nil {
		c.log.Warn(ctx, "stroke dropped", logger.Error(err))
		c.frames.Request()
		return
	}
	c.metrics.RecordZoneCommitted()
	c.log.Info(ctx, "zone committed",
		logger.String("id", z.ID),
		logger.String("name", z.Name),
		logger.Int("points", len(z.Points)),
		logger.Float64("temperature", z.Temperature))
	c.changed()
}

// Click selects the zone within the click tolerance of p, or clears the
// selection when nothing is close enough.
func (c *Controller) Click(p state.Point) {
	hit, ok := c.session.FindNearest(p, state.FixedTolerance(c.settings.ClickTolerance))
	if ok {
		if id, sel := c.session.Selected(); sel && id == hit.ZoneID {
			return
		}
		_ = c.session.Select(hit.ZoneID)
		c.changed()
		return
	}
	if c.session.ClearSelection() {
		c.changed()
	}
}

// Hover returns the tooltip for the zone under p. Lookups are suppressed
// while drawing.
func (c *Controller) Hover(p state.Point) (Tooltip, bool) {
	if c.session.Drawing() {
		return Tooltip{}, false
	}
	hit, ok := c.session.FindNearest(p, state.BrushTolerance)
	if !ok {
		return Tooltip{}, false
	}
	z, _ := c.session.Zone(hit.ZoneID)
	return Tooltip{ZoneID: z.ID, Text: TooltipText(z)}, true
}

// TooltipText formats a zone as "name: 12.3°C".
func TooltipText(z state.Zone) string {
	return fmt.Sprintf("%s: %.1f°C", z.Name, z.Temperature)
}

func (c *Controller) RenameZone(id, name string) error {
	if err := c.session.Rename(id, name); err != nil {
		return err
	}
	c.changed()
	return nil
}

// SetZoneTemperature stores t clamped to the range and returns the stored value.
func (c *Controller) SetZoneTemperature(id string, t float64) (float64, error) {
	v, err := c.session.SetTemperature(id, t)
	if err != nil {
		return v, err
	}
	c.changed()
	return v, nil
}

// NudgeZoneTemperature steps a zone temperature by delta degrees.
func (c *Controller) NudgeZoneTemperature(id string, delta float64) (float64, error) {
	v, err := c.session.NudgeTemperature(id, delta)
	if err != nil {
		return v, err
	}
	c.changed()
	return v, nil
}

func (c *Controller) DeleteZone(id string) error {
	if err := c.session.Delete(id); err != nil {
		return err
	}
	c.log.Info(context.Background(), "zone deleted", logger.String("id", id))
	c.changed()
	return nil
}

func (c *Controller) SelectZone(id string) error {
	if err := c.session.Select(id); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) ClearSelection() {
	if c.session.ClearSelection() {
		c.changed()
	}
}

// Clear removes every zone and restarts naming. The background stays.
func (c *Controller) Clear() {
	c.session.Clear()
	c.log.Info(context.Background(), "canvas cleared")
	c.changed()
}

// LoadSamples restores the default canvas with the demo zones.
func (c *Controller) LoadSamples() {
	c.comp.SetBackground(nil)
	c.comp.Resize(state.SampleCanvasWidth, state.SampleCanvasHeight)
	c.session.LoadSamples()
	c.log.Info(context.Background(), "sample data loaded", logger.Int("zones", c.session.Len()))
	c.changed()
}

// ImportZones replaces the store with zones read from an export.
func (c *Controller) ImportZones(zones []state.Zone) {
	c.session.Restore(zones)
	c.log.Info(context.Background(), "zones imported", logger.Int("zones", c.session.Len()))
	c.changed()
}

// SetImage installs img as the background, resizing the surface to the image
// (capped at the maximum dimension) and clearing the store.
func (c *Controller) SetImage(img image.Image) {
	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), c.maxImageDim)
	c.comp.Resize(w, h)
	c.comp.SetBackground(img)
	c.session.Clear()
	c.log.Info(context.Background(), "background loaded",
		logger.Int("width", w), logger.Int("height", h))
	c.changed()
}

// LoadImage decodes r and installs it with SetImage.
func (c *Controller) LoadImage(r io.Reader) error {
	img, err := DecodeImage(r)
	if err != nil {
		c.log.Error(context.Background(), "background load failed", logger.Error(err))
		return err
	}
	c.SetImage(img)
	return nil
}

// SetRange installs a new temperature range. The paint temperature is pulled
// into the range; stored zones keep their values.
func (c *Controller) SetRange(min, max float64) state.TempRange {
	r := c.session.SetRange(min, max)
	c.settings.Temperature = r.Clamp(c.settings.Temperature)
	c.changed()
	return r
}

func (c *Controller) SetBrushSize(v float64) float64 {
	c.settings.BrushSize = clampBrush(v)
	return c.settings.BrushSize
}

// SetTemperature sets the paint temperature for new zones. NaN keeps the
// current value.
func (c *Controller) SetTemperature(v float64) float64 {
	if math.IsNaN(v) {
		return c.settings.Temperature
	}
	c.settings.Temperature = c.session.Range().Clamp(v)
	return c.settings.Temperature
}

func (c *Controller) SetMode(m Mode) {
	if c.session.Drawing() {
		c.finish()
	}
	c.settings.Mode = m
}

// SetRendering swaps compositor options and redraws.
func (c *Controller) SetRendering(opts heatmap.Options) {
	c.comp.SetOptions(opts)
	c.session.MarkDirty()
	c.frames.Request()
}
