package heatmap_test

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/metrics"
	"ThermalBoard/internal/state"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func counter(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		var total float64
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestCompositor(t *testing.T) {
	convey.Convey("Given a compositor and a session with sample zones", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg))
		c := heatmap.NewCompositor(state.SampleCanvasWidth, state.SampleCanvasHeight, heatmap.DefaultOptions(), m)
		s := state.NewSessionState(state.DefaultRange)
		s.LoadSamples()

		recomposites := func() float64 { return counter(reg, "thermalboard_render_recomposites_total") }
		hits := func() float64 { return counter(reg, "thermalboard_render_cache_hits_total") }

		convey.Convey("When the first frame is composited", func() {
			img := c.Composite(s, nil)

			convey.Convey("Then the cache is rebuilt once and the session is clean", func() {
				convey.So(recomposites(), convey.ShouldEqual, 1.0)
				convey.So(s.Dirty(), convey.ShouldBeFalse)
			})

			convey.Convey("Then the hot zone brightens the dark background", func() {
				px := img.RGBAAt(400, 300)
				bg := heatmap.BackgroundColor
				convey.So(int(px.R)+int(px.G)+int(px.B), convey.ShouldBeGreaterThan, int(bg.R)+int(bg.G)+int(bg.B))
			})

			convey.Convey("Then areas far from every zone keep the background color", func() {
				convey.So(img.RGBAAt(790, 10), convey.ShouldResemble, heatmap.BackgroundColor)
			})
		})

		convey.Convey("When an imported zone spans far beyond the surface", func() {
			s.Restore([]state.Zone{{
				ID:          "far",
				Name:        "Far",
				Points:      []state.Point{{X: 100, Y: 100}, {X: 1e12, Y: 1e12}},
				Temperature: 90,
				BrushSize:   30,
			}})

			convey.Convey("Then compositing stays on the surface", func() {
				var img *image.RGBA
				convey.So(func() { img = c.Composite(s, nil) }, convey.ShouldNotPanic)
				convey.So(img.RGBAAt(100, 100), convey.ShouldNotResemble, heatmap.BackgroundColor)
			})
		})

		convey.Convey("When idle frames follow without mutations", func() {
			c.Composite(s, nil)
			c.Composite(s, nil)
			c.Composite(s, nil)

			convey.Convey("Then they are served from the cache", func() {
				convey.So(recomposites(), convey.ShouldEqual, 1.0)
				convey.So(hits(), convey.ShouldEqual, 2.0)
			})
		})

		convey.Convey("When a zone is edited between frames", func() {
			c.Composite(s, nil)
			zs := s.Zones()
			_, err := s.SetTemperature(zs[1].ID, 10)
			convey.So(err, convey.ShouldBeNil)
			c.Composite(s, nil)

			convey.Convey("Then the cache is rebuilt", func() {
				convey.So(recomposites(), convey.ShouldEqual, 2.0)
			})
		})

		convey.Convey("When a stroke is being previewed", func() {
			s.Clear()
			base := c.Composite(s, nil).RGBAAt(100, 500)
			preview := &heatmap.Preview{
				Points:      []state.Point{{X: 100, Y: 500}},
				Temperature: 100,
				BrushSize:   20,
			}
			withPreview := c.Composite(s, preview).RGBAAt(100, 500)
			after := c.Composite(s, nil).RGBAAt(100, 500)

			convey.Convey("Then the preview shows on top without a rebuild", func() {
				convey.So(withPreview, convey.ShouldNotResemble, base)
				convey.So(recomposites(), convey.ShouldEqual, 1.0)
			})

			convey.Convey("Then the preview is never baked into the cache", func() {
				convey.So(after, convey.ShouldResemble, base)
				convey.So(after, convey.ShouldResemble, heatmap.BackgroundColor)
			})
		})

		convey.Convey("When a background image is installed", func() {
			s.Clear()
			c.Resize(40, 30)
			green := image.NewRGBA(image.Rect(0, 0, 40, 30))
			draw.Draw(green, green.Bounds(), image.NewUniform(color.RGBA{G: 200, A: 255}), image.Point{}, draw.Src)
			c.SetBackground(green)
			img := c.Composite(s, nil)

			convey.Convey("Then it replaces the plain fill", func() {
				convey.So(img.RGBAAt(5, 5), convey.ShouldResemble, color.RGBA{G: 200, A: 255})
				w, h := c.Size()
				convey.So(w, convey.ShouldEqual, 40)
				convey.So(h, convey.ShouldEqual, 30)
			})

			convey.Convey("Then removing it restores the fill", func() {
				c.SetBackground(nil)
				convey.So(c.Composite(s, nil).RGBAAt(5, 5), convey.ShouldResemble, heatmap.BackgroundColor)
			})
		})

		convey.Convey("When a snapshot is taken", func() {
			c.Composite(s, nil)
			snap := c.Snapshot()
			snap.Pix[0] = 0xAB

			convey.Convey("Then it does not alias the live surface", func() {
				convey.So(c.Composite(s, nil).Pix[0], convey.ShouldNotEqual, uint8(0xAB))
			})
		})
	})
}
