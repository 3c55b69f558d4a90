package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

// Report is the content of a PDF export.
type Report struct {
	Title string
	Image image.Image
	Zones []state.Zone
	Range state.TempRange
}

const (
	pdfMargin     = 10.0
	pdfMaxImageH  = 150.0
	pdfRowH       = 7.0
	pdfLegendStep = 64
)

var legendFactors = []float64{0, 0.25, 0.5, 0.75, 1}

// WritePDF renders an A4 report: the labelled heatmap, the color legend and
// a table of zones.
func WritePDF(w io.Writer, r Report) error {
	if len(r.Zones) == 0 {
		return ErrNoZones
	}
	if r.Title == "" {
		r.Title = "Thermal Zone Report"
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	p.SetTitle(r.Title, true)
	p.SetCreator("ThermalBoard", true)
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.AddPage()

	p.SetFont("Helvetica", "B", 16)
	p.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")
	p.Ln(2)

	pageW, _ := p.GetPageSize()
	contentW := pageW - 2*pdfMargin

	if r.Image != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, Label(r.Image, r.Zones)); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader("heatmap", opts, &buf)
		b := r.Image.Bounds()
		iw, ih := contentW, contentW*float64(b.Dy())/float64(b.Dx())
		if ih > pdfMaxImageH {
			iw, ih = iw*pdfMaxImageH/ih, pdfMaxImageH
		}
		y := p.GetY()
		p.ImageOptions("heatmap", pdfMargin+(contentW-iw)/2, y, iw, ih, false, opts, 0, "")
		p.SetY(y + ih + 4)
	}

	legend(p, tr, r.Range, contentW)
	p.Ln(4)
	zoneTable(p, tr, r.Zones)

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func legend(p *gofpdf.Fpdf, tr func(string) string, rng state.TempRange, width float64) {
	y := p.GetY()
	step := width / pdfLegendStep
	for i := 0; i < pdfLegendStep; i++ {
		c := heatmap.RampAt(float64(i) / float64(pdfLegendStep-1))
		p.SetFillColor(int(c.R), int(c.G), int(c.B))
		p.Rect(pdfMargin+float64(i)*step, y, step+0.1, 5, "F")
	}
	p.SetFont("Helvetica", "", 8)
	for _, f := range legendFactors {
		x := pdfMargin + f*width - 10
		p.SetXY(math.Max(pdfMargin, math.Min(x, pdfMargin+width-20)), y+6)
		align := "C"
		switch f {
		case 0:
			align = "L"
		case 1:
			align = "R"
		}
		p.CellFormat(20, 4, tr(fmt.Sprintf("%.0f°C", rng.Lerp(f))), "", 0, align, false, 0, "")
	}
	p.SetXY(pdfMargin, y+10)
}

func zoneTable(p *gofpdf.Fpdf, tr func(string) string, zones []state.Zone) {
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"Zone", 60, "L"},
		{"Temp (°C)", 25, "R"},
		{"Temp (°F)", 25, "R"},
		{"Centroid", 40, "C"},
		{"Points", 18, "R"},
		{"Brush", 22, "R"},
	}
	p.SetFont("Helvetica", "B", 10)
	p.SetFillColor(230, 230, 230)
	for _, c := range cols {
		p.CellFormat(c.w, pdfRowH, tr(c.title), "1", 0, c.align, true, 0, "")
	}
	p.Ln(-1)

	p.SetFont("Helvetica", "", 10)
	for _, z := range zones {
		ct := z.Centroid()
		row := []string{
			z.Name,
			fmt.Sprintf("%.1f", z.Temperature),
			fmt.Sprintf("%.1f", z.Fahrenheit()),
			fmt.Sprintf("%.0f, %.0f", ct.X, ct.Y),
			fmt.Sprintf("%d", len(z.Points)),
			formatBrush(z.BrushSize),
		}
		for i, c := range cols {
			p.CellFormat(c.w, pdfRowH, tr(row[i]), "1", 0, c.align, false, 0, "")
		}
		p.Ln(-1)
	}
}
