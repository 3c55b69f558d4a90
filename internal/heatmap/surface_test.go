package heatmap_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/state"

	"github.com/smartystreets/goconvey/convey"
)

var red = color.RGBA{R: 255, A: 255}

func alphaAt(l *heatmap.Layer, x, y int) float64 {
	return float64(l.RGBA().RGBAAt(x, y).A)
}

func TestLayerDrawing(t *testing.T) {
	convey.Convey("Given a transparent layer", t, func() {
		l := heatmap.NewLayer(50, 50)

		convey.Convey("When a disc is drawn at half opacity", func() {
			l.DrawDisc(red, 0.5, 10, state.Point{X: 25, Y: 25})

			convey.Convey("Then the inside carries the alpha and the outside stays clear", func() {
				convey.So(alphaAt(l, 25, 25), convey.ShouldAlmostEqual, 128, 1)
				convey.So(alphaAt(l, 2, 2), convey.ShouldEqual, 0.0)
				convey.So(alphaAt(l, 25, 40), convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When overlapping discs of one zone are drawn together", func() {
			l.DrawDisc(red, 0.5, 10, state.Point{X: 22, Y: 25}, state.Point{X: 28, Y: 25})

			convey.Convey("Then the overlap does not intensify", func() {
				convey.So(alphaAt(l, 25, 25), convey.ShouldAlmostEqual, 128, 1)
			})
		})

		convey.Convey("When a disc crosses the layer edge", func() {
			convey.So(func() { l.DrawDisc(red, 1, 20, state.Point{X: 0, Y: 0}) }, convey.ShouldNotPanic)
			convey.So(alphaAt(l, 0, 0), convey.ShouldAlmostEqual, 255, 1)
		})

		convey.Convey("When a zone reaches far off the layer", func() {
			far := state.Point{X: 1e12, Y: 1e12}
			near := state.Point{X: 25, Y: 25}
			convey.So(func() { l.DrawDisc(red, 1, 10, near, far) }, convey.ShouldNotPanic)
			convey.So(alphaAt(l, 25, 25), convey.ShouldAlmostEqual, 255, 1)
			convey.So(alphaAt(l, 49, 49), convey.ShouldEqual, 0.0)

			g := heatmap.NewLayer(50, 50)
			convey.So(func() { g.DrawGradient(red, 1, 10, near, far, state.Point{X: -1e300, Y: 5}) }, convey.ShouldNotPanic)
			convey.So(alphaAt(g, 25, 25), convey.ShouldBeGreaterThan, 200.0)
		})

		convey.Convey("When a gradient is drawn", func() {
			l.DrawGradient(red, 1, 10, state.Point{X: 25.5, Y: 25.5})

			convey.Convey("Then alpha falls off towards the radius", func() {
				center := alphaAt(l, 25, 25)
				mid := alphaAt(l, 30, 25)
				edge := alphaAt(l, 34, 25)
				convey.So(center, convey.ShouldAlmostEqual, 255, 1)
				convey.So(mid, convey.ShouldBeLessThan, center)
				convey.So(edge, convey.ShouldBeLessThan, mid)
				convey.So(edge, convey.ShouldBeGreaterThan, 0.0)
				convey.So(alphaAt(l, 37, 25), convey.ShouldEqual, 0.0)
			})
		})
	})
}

func TestLayerBlur(t *testing.T) {
	convey.Convey("Given an opaque square in the middle of a layer", t, func() {
		l := heatmap.NewLayer(60, 60)
		img := l.RGBA()
		for y := 20; y < 40; y++ {
			for x := 20; x < 40; x++ {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
		sum := func() float64 {
			var s float64
			for i := 3; i < len(img.Pix); i += 4 {
				s += float64(img.Pix[i])
			}
			return s
		}
		before := sum()

		convey.Convey("When it is blurred", func() {
			l.Blur(3)

			convey.Convey("Then the edges soften and coverage is roughly preserved", func() {
				convey.So(alphaAt(l, 18, 30), convey.ShouldBeGreaterThan, 0.0)
				convey.So(alphaAt(l, 20, 30), convey.ShouldBeLessThan, 255.0)
				convey.So(alphaAt(l, 30, 30), convey.ShouldAlmostEqual, 255, 2)
				convey.So(sum(), convey.ShouldAlmostEqual, before, before*0.05)
			})

			convey.Convey("Then the softened edge keeps its color", func() {
				c := img.RGBAAt(18, 30)
				convey.So(c.A, convey.ShouldBeGreaterThan, uint8(0))
				convey.So(float64(c.R), convey.ShouldAlmostEqual, float64(c.A), 2)
				convey.So(float64(c.B), convey.ShouldAlmostEqual, float64(c.A), 2)
			})
		})

		convey.Convey("When blurred with a zero radius", func() {
			l.Blur(0)

			convey.Convey("Then nothing changes", func() {
				convey.So(sum(), convey.ShouldEqual, before)
			})
		})
	})
}

func TestBlend(t *testing.T) {
	opaque := func(c color.RGBA) *heatmap.Layer {
		l := heatmap.NewLayer(1, 1)
		l.Fill(c)
		return l
	}

	convey.Convey("Given a grey backdrop", t, func() {
		grey := color.RGBA{R: 100, G: 100, B: 100, A: 255}

		convey.Convey("Color dodge brightens where the source is bright", func() {
			dst := opaque(grey)
			dst.Blend(opaque(color.RGBA{R: 128, A: 255}), heatmap.BlendColorDodge, 1)
			px := dst.RGBA().RGBAAt(0, 0)
			convey.So(int(px.R), convey.ShouldBeGreaterThan, 190)
			convey.So(int(px.G), convey.ShouldEqual, 100)
			convey.So(int(px.A), convey.ShouldEqual, 255)
		})

		convey.Convey("Opacity mixes the dodge result with the backdrop", func() {
			dst := opaque(grey)
			dst.Blend(opaque(color.RGBA{R: 128, A: 255}), heatmap.BlendColorDodge, 0.5)
			px := dst.RGBA().RGBAAt(0, 0)
			convey.So(int(px.R), convey.ShouldBeBetween, 140, 160)
		})

		convey.Convey("Screen with white yields white", func() {
			dst := opaque(grey)
			dst.Blend(opaque(color.RGBA{R: 255, G: 255, B: 255, A: 255}), heatmap.BlendScreen, 1)
			convey.So(dst.RGBA().RGBAAt(0, 0), convey.ShouldResemble, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		})

		convey.Convey("Normal blending at half opacity onto transparency halves alpha", func() {
			dst := heatmap.NewLayer(1, 1)
			dst.Blend(opaque(red), heatmap.BlendNormal, 0.5)
			px := dst.RGBA().RGBAAt(0, 0)
			convey.So(int(px.A), convey.ShouldEqual, 128)
			convey.So(int(px.R), convey.ShouldEqual, 128)
		})
	})

	convey.Convey("Given blend mode names", t, func() {
		m, err := heatmap.ParseBlendMode("color-dodge")
		convey.So(err, convey.ShouldBeNil)
		convey.So(m, convey.ShouldEqual, heatmap.BlendColorDodge)
		convey.So(m.String(), convey.ShouldEqual, "color-dodge")

		_, err = heatmap.ParseBlendMode("multiply")
		convey.So(errors.Is(err, heatmap.ErrUnknownOption), convey.ShouldBeTrue)
	})
}

func TestLayerResize(t *testing.T) {
	convey.Convey("Given a layer that is resized", t, func() {
		l := heatmap.NewLayer(10, 10)
		l.Resize(30, 20)
		convey.So(l.Bounds(), convey.ShouldResemble, image.Rect(0, 0, 30, 20))
	})
}
