package heatmap

import (
	"context"
	"image"
	"image/color"
	"time"

	"ThermalBoard/internal/logger"
	"ThermalBoard/internal/metrics"
	"ThermalBoard/internal/state"
)

// BackgroundColor fills the surface when no image is loaded.
var BackgroundColor = color.RGBA{R: 0x1e, G: 0x1f, B: 0x22, A: 0xff}

// Options tunes the compositor.
type Options struct {
	BlurRadius     float64
	HeatOpacity    float64
	HeatBlend      BlendMode
	PreviewOpacity float64
	Renderer       Renderer
}

// DefaultOptions matches the look of the desktop app.
func DefaultOptions() Options {
	return Options{
		BlurRadius:     35,
		HeatOpacity:    0.75,
		HeatBlend:      BlendColorDodge,
		PreviewOpacity: 0.5,
		Renderer:       NewRenderer(BrushDisc, DefaultSelectedScale),
	}
}

// Preview is the stroke currently being drawn.
type Preview struct {
	Points      []state.Point
	Temperature float64
	BrushSize   float64
}

// Compositor merges the background, the committed zones and the live preview
// into one surface. Background plus zones are kept in a cache that is rebuilt
// only while the session reports itself dirty.
type Compositor struct {
	opts Options

	background image.Image
	surface    *Layer
	cache      *Layer
	heat       *Layer
	preview    *Layer
	scaledBg   *Layer
	cacheValid bool

	metrics *metrics.Manager
	log     logger.Logger
}

// NewCompositor creates a compositor for a w×h surface.
func NewCompositor(w, h int, opts Options, m *metrics.Manager) *Compositor {
	return &Compositor{
		opts:    opts,
		surface: NewLayer(w, h),
		cache:   NewLayer(w, h),
		heat:    NewLayer(w, h),
		preview: NewLayer(w, h),
		metrics: m,
		log:     logger.Nop(),
	}
}

// SetLogger routes rebuild timings to l.
func (c *Compositor) SetLogger(l logger.Logger) {
	if l != nil {
		c.log = l
	}
}

// Size returns the surface dimensions.
func (c *Compositor) Size() (int, int) {
	b := c.surface.Bounds()
	return b.Dx(), b.Dy()
}

// Options returns the active options.
func (c *Compositor) Options() Options { return c.opts }

// SetOptions swaps the options and invalidates the cache.
func (c *Compositor) SetOptions(opts Options) {
	c.opts = opts
	c.cacheValid = false
}

// Resize changes every layer to w×h.
func (c *Compositor) Resize(w, h int) {
	for _, l := range []*Layer{c.surface, c.cache, c.heat, c.preview} {
		l.Resize(w, h)
	}
	c.rescaleBackground()
	c.cacheValid = false
}

// SetBackground installs img (nil for the plain fill) scaled to the surface.
func (c *Compositor) SetBackground(img image.Image) {
	c.background = img
	c.rescaleBackground()
	c.cacheValid = false
}

func (c *Compositor) rescaleBackground() {
	if c.background == nil {
		c.scaledBg = nil
		return
	}
	w, h := c.Size()
	if c.scaledBg == nil {
		c.scaledBg = NewLayer(w, h)
	} else {
		c.scaledBg.Resize(w, h)
	}
	c.scaledBg.DrawImage(c.background)
}

// Composite produces the visible frame. The returned image is owned by the
// compositor and is overwritten by the next call.
func (c *Compositor) Composite(s *state.SessionState, p *Preview) *image.RGBA {
	if s.Dirty() || !c.cacheValid {
		c.rebuild(s)
	} else {
		c.metrics.RecordCacheHit()
	}
	c.surface.CopyFrom(c.cache)

	if p != nil && len(p.Points) > 0 {
		c.preview.Clear()
		z := state.Zone{Points: p.Points, Temperature: p.Temperature, BrushSize: p.BrushSize}
		c.opts.Renderer.RenderZone(c.preview, z, false, s.Range())
		c.surface.Blend(c.preview, BlendNormal, c.opts.PreviewOpacity)
	}
	return c.surface.RGBA()
}

// rebuild repaints background and zones into the cache and marks the
// session clean.
func (c *Compositor) rebuild(s *state.SessionState) {
	start := time.Now()
	if c.scaledBg != nil {
		c.cache.CopyFrom(c.scaledBg)
	} else {
		c.cache.Fill(BackgroundColor)
	}

	zones := s.Zones()
	if len(zones) > 0 {
		c.heat.Clear()
		rng := s.Range()
		for _, z := range zones {
			c.opts.Renderer.RenderZone(c.heat, z, s.IsSelected(z.ID), rng)
		}
		c.heat.Blur(c.opts.BlurRadius)
		c.cache.Blend(c.heat, c.opts.HeatBlend, c.opts.HeatOpacity)
	}

	s.MarkClean()
	c.cacheValid = true
	elapsed := time.Since(start)
	c.metrics.RecordRecomposite(elapsed)
	c.log.Debug(context.Background(), "recomposite",
		logger.Int("zones", len(zones)), logger.Any("took", elapsed))
}

// Snapshot copies the last composited frame.
func (c *Compositor) Snapshot() *image.RGBA {
	src := c.surface.RGBA()
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}
