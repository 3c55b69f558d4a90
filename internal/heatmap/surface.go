package heatmap

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"ThermalBoard/internal/state"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Surface is the raster target the renderer and compositor paint on.
type Surface interface {
	Bounds() image.Rectangle
	Clear()
	Fill(c color.Color)
	// DrawImage scales img to cover the whole surface.
	DrawImage(img image.Image)
	// DrawDisc paints the union of flat discs of the given radius, so
	// overlapping discs never exceed alpha.
	DrawDisc(c color.RGBA, alpha, radius float64, centers ...state.Point)
	// DrawGradient paints radial falloffs from alpha at each center to zero at
	// radius, keeping the strongest contribution per pixel.
	DrawGradient(c color.RGBA, alpha, radius float64, centers ...state.Point)
	Blur(radius float64)
	// Blend composites src onto the surface.
	Blend(src Surface, mode BlendMode, opacity float64)
	RGBA() *image.RGBA
}

// Layer is a Surface backed by an *image.RGBA. It reuses its scratch buffers
// between calls and is not safe for concurrent use.
type Layer struct {
	img     *image.RGBA
	maskPix []uint8
	raster  vector.Rasterizer
}

var _ Surface = (*Layer)(nil)

// NewLayer allocates a transparent w×h layer.
func NewLayer(w, h int) *Layer {
	return &Layer{img: image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))}
}

// Resize reallocates the layer when the size changes; contents are lost.
func (l *Layer) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if b := l.img.Bounds(); b.Dx() == w && b.Dy() == h {
		return
	}
	l.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

func (l *Layer) Bounds() image.Rectangle { return l.img.Bounds() }

func (l *Layer) RGBA() *image.RGBA { return l.img }

func (l *Layer) Clear() { clear(l.img.Pix) }

func (l *Layer) Fill(c color.Color) {
	draw.Draw(l.img, l.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// CopyFrom overwrites the layer with src, which must have the same size.
func (l *Layer) CopyFrom(src *Layer) {
	if src.img.Bounds() == l.img.Bounds() {
		copy(l.img.Pix, src.img.Pix)
		return
	}
	draw.Draw(l.img, l.img.Bounds(), src.img, image.Point{}, draw.Src)
}

func (l *Layer) DrawImage(img image.Image) {
	if img == nil {
		return
	}
	if img.Bounds().Size() == l.img.Bounds().Size() {
		draw.Draw(l.img, l.img.Bounds(), img, img.Bounds().Min, draw.Src)
		return
	}
	xdraw.CatmullRom.Scale(l.img, l.img.Bounds(), img, img.Bounds(), draw.Src, nil)
}

// footprint is the integer pixel box covering every disc, clipped to clip.
// Clipping happens before the conversion to int so far off-canvas points
// never size a buffer.
func footprint(radius float64, centers []state.Point, clip image.Rectangle) image.Rectangle {
	box, _ := state.BoundsOf(centers)
	box = box.Expand(radius)
	bound := func(v float64, lo, hi int) int {
		return int(math.Max(float64(lo), math.Min(float64(hi), v)))
	}
	return image.Rect(
		bound(math.Floor(box.MinX), clip.Min.X, clip.Max.X),
		bound(math.Floor(box.MinY), clip.Min.Y, clip.Max.Y),
		bound(math.Ceil(box.MaxX), clip.Min.X, clip.Max.X),
		bound(math.Ceil(box.MaxY), clip.Min.Y, clip.Max.Y),
	)
}

// touches reports whether a disc of radius at p reaches into r.
func touches(p state.Point, radius float64, r image.Rectangle) bool {
	return p.X+radius >= float64(r.Min.X) && p.X-radius <= float64(r.Max.X) &&
		p.Y+radius >= float64(r.Min.Y) && p.Y-radius <= float64(r.Max.Y)
}

func (l *Layer) mask(r image.Rectangle) *image.Alpha {
	n := r.Dx() * r.Dy()
	if cap(l.maskPix) < n {
		l.maskPix = make([]uint8, n)
	}
	pix := l.maskPix[:n]
	clear(pix)
	return &image.Alpha{Pix: pix, Stride: r.Dx(), Rect: image.Rect(0, 0, r.Dx(), r.Dy())}
}

func (l *Layer) paintMask(fp image.Rectangle, m *image.Alpha, c color.RGBA, alpha float64) {
	src := image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: unit(alpha)})
	draw.DrawMask(l.img, fp, src, image.Point{}, m, image.Point{}, draw.Over)
}

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

func (l *Layer) DrawDisc(c color.RGBA, alpha, radius float64, centers ...state.Point) {
	if len(centers) == 0 || radius <= 0 || alpha <= 0 {
		return
	}
	fp := footprint(radius, centers, l.img.Bounds())
	if fp.Empty() {
		return
	}
	m := l.mask(fp)
	z := &l.raster
	z.Reset(fp.Dx(), fp.Dy())
	r := float32(radius)
	k := float32(kappa * radius)
	for _, p := range centers {
		if !touches(p, radius, fp) {
			continue
		}
		cx := float32(p.X) - float32(fp.Min.X)
		cy := float32(p.Y) - float32(fp.Min.Y)
		z.MoveTo(cx+r, cy)
		z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
		z.ClosePath()
	}
	z.Draw(m, m.Bounds(), image.Opaque, image.Point{})
	l.paintMask(fp, m, c, alpha)
}

func (l *Layer) DrawGradient(c color.RGBA, alpha, radius float64, centers ...state.Point) {
	if len(centers) == 0 || radius <= 0 || alpha <= 0 {
		return
	}
	fp := footprint(radius, centers, l.img.Bounds())
	if fp.Empty() {
		return
	}
	m := l.mask(fp)
	for _, p := range centers {
		if !touches(p, radius, fp) {
			continue
		}
		x0 := max(int(math.Floor(p.X-radius)), fp.Min.X)
		x1 := min(int(math.Ceil(p.X+radius)), fp.Max.X)
		y0 := max(int(math.Floor(p.Y-radius)), fp.Min.Y)
		y1 := min(int(math.Ceil(p.Y+radius)), fp.Max.Y)
		for y := y0; y < y1; y++ {
			dy := float64(y) + 0.5 - p.Y
			row := (y - fp.Min.Y) * m.Stride
			for x := x0; x < x1; x++ {
				dx := float64(x) + 0.5 - p.X
				d := math.Sqrt(dx*dx + dy*dy)
				if d >= radius {
					continue
				}
				v := unit(1 - d/radius)
				if i := row + x - fp.Min.X; v > m.Pix[i] {
					m.Pix[i] = v
				}
			}
		}
	}
	l.paintMask(fp, m, c, alpha)
}

// Blur applies a gaussian blur with standard deviation radius. Color is
// weighted by alpha, so transparent pixels do not darken the edges.
func (l *Layer) Blur(radius float64) {
	if radius <= 0 {
		return
	}
	blurred := imaging.Blur(l.img, radius)
	draw.Draw(l.img, l.img.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
}

func (l *Layer) Blend(src Surface, mode BlendMode, opacity float64) {
	if opacity <= 0 {
		return
	}
	s := src.RGBA()
	r := l.img.Bounds().Intersect(s.Bounds())
	if mode == BlendNormal && opacity >= 1 {
		draw.Draw(l.img, r, s, r.Min, draw.Over)
		return
	}
	f := mode.channel()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			so := s.PixOffset(x, y)
			sp := s.Pix[so : so+4 : so+4]
			if sp[3] == 0 {
				continue
			}
			do := l.img.PixOffset(x, y)
			blendPixel(l.img.Pix[do:do+4:do+4], sp, f, math.Min(opacity, 1))
		}
	}
}
