package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"ThermalBoard/internal/state"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	labelSize    = 14
	labelOutline = 2
)

var (
	faceOnce  sync.Once
	labelFace font.Face
)

// face returns Go Regular at label size. basicfont has no degree sign, so it
// is only the fallback when the embedded font fails to load.
func face() font.Face {
	faceOnce.Do(func() {
		labelFace = basicfont.Face7x13
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		ff, err := opentype.NewFace(f, &opentype.FaceOptions{Size: labelSize, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return
		}
		labelFace = ff
	})
	return labelFace
}

// LabelText is the caption drawn at each zone centroid.
func LabelText(z state.Zone) string {
	return fmt.Sprintf("%s: %.1f°C", z.Name, z.Temperature)
}

// Label copies img and writes every zone's caption centered on its centroid,
// white over a black outline.
func Label(img image.Image, zones []state.Zone) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	f := face()
	m := f.Metrics()
	// Vertical center between ascent and descent.
	shift := (m.Ascent - m.Descent) / 2
	black := image.NewUniform(color.Black)
	white := image.NewUniform(color.White)

	for _, z := range zones {
		if len(z.Points) == 0 {
			continue
		}
		text := LabelText(z)
		c := z.Centroid()
		width := font.MeasureString(f, text)
		dot := fixed.Point26_6{
			X: fixed.Int26_6(c.X*64) - width/2,
			Y: fixed.Int26_6(c.Y*64) + shift,
		}
		d := &font.Drawer{Dst: out, Face: f, Src: black}
		for dy := -labelOutline; dy <= labelOutline; dy++ {
			for dx := -labelOutline; dx <= labelOutline; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				d.Dot = dot.Add(fixed.P(dx, dy))
				d.DrawString(text)
			}
		}
		d.Src = white
		d.Dot = dot
		d.DrawString(text)
	}
	return out
}

// WritePNG encodes the labelled snapshot.
func WritePNG(w io.Writer, img image.Image, zones []state.Zone) error {
	if len(zones) == 0 {
		return ErrNoZones
	}
	if err := png.Encode(w, Label(img, zones)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
