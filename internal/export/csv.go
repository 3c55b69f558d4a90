package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"ThermalBoard/internal/state"
)

var (
	summaryHeader = []string{"ZoneID", "ZoneName", "AvgPointX", "AvgPointY", "ZoneTemp_C", "BrushSize"}
	pointsHeader  = []string{"ZoneID", "ZoneName", "PointIndex", "X", "Y", "ZoneTemp_C", "BrushSize"}
)

// quote always wraps s in double quotes so names round-trip unchanged.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// escape quotes s only when a reader would otherwise split or trim it.
func escape(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") || strings.TrimLeft(s, " \t") != s {
		return quote(s)
	}
	return s
}

func formatBrush(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes one row per zone with its rounded centroid.
func WriteCSV(w io.Writer, zones []state.Zone) error {
	if len(zones) == 0 {
		return ErrNoZones
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(summaryHeader, ","))
	for _, z := range zones {
		c := z.Centroid()
		fmt.Fprintf(bw, "%s,%s,%d,%d,%.2f,%s\n",
			escape(z.ID), quote(z.Name),
			int(math.Round(c.X)), int(math.Round(c.Y)),
			z.Temperature, formatBrush(z.BrushSize))
	}
	return bw.Flush()
}

// WritePointsCSV writes one row per stroke point.
func WritePointsCSV(w io.Writer, zones []state.Zone) error {
	if len(zones) == 0 {
		return ErrNoZones
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, strings.Join(pointsHeader, ","))
	for _, z := range zones {
		for i, p := range z.Points {
			fmt.Fprintf(bw, "%s,%s,%d,%d,%d,%.2f,%s\n",
				escape(z.ID), quote(z.Name), i,
				int(math.Round(p.X)), int(math.Round(p.Y)),
				z.Temperature, formatBrush(z.BrushSize))
		}
	}
	return bw.Flush()
}

// ReadCSV parses either export layout back into zones. A summary file yields
// one point per zone at the recorded centroid.
func ReadCSV(r io.Reader) ([]state.Zone, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMalformedCSV)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	switch {
	case slices.Equal(header, summaryHeader):
		cr.FieldsPerRecord = len(summaryHeader)
		return readSummary(cr)
	case slices.Equal(header, pointsHeader):
		cr.FieldsPerRecord = len(pointsHeader)
		return readPoints(cr)
	}
	return nil, fmt.Errorf("%w: unrecognized header %q", ErrMalformedCSV, strings.Join(header, ","))
}

type rowParser struct {
	line int
	err  error
}

func (p *rowParser) float(field, v string) float64 {
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.err = fmt.Errorf("%w: line %d: bad %s %q", ErrMalformedCSV, p.line, field, v)
	}
	return f
}

func readSummary(cr *csv.Reader) ([]state.Zone, error) {
	var zones []state.Zone
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return zones, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		line, _ := cr.FieldPos(0)
		p := rowParser{line: line}
		x := p.float("AvgPointX", rec[2])
		y := p.float("AvgPointY", rec[3])
		temp := p.float("ZoneTemp_C", rec[4])
		brush := p.float("BrushSize", rec[5])
		if p.err != nil {
			return nil, p.err
		}
		zones = append(zones, state.Zone{
			ID:          rec[0],
			Name:        rec[1],
			Points:      []state.Point{{X: x, Y: y}},
			Temperature: temp,
			BrushSize:   brush,
		})
	}
}

func readPoints(cr *csv.Reader) ([]state.Zone, error) {
	type indexed struct {
		idx int
		pt  state.Point
	}
	var (
		zones  []state.Zone
		points [][]indexed
		byID   = make(map[string]int)
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		line, _ := cr.FieldPos(0)
		p := rowParser{line: line}
		idx := p.float("PointIndex", rec[2])
		x := p.float("X", rec[3])
		y := p.float("Y", rec[4])
		temp := p.float("ZoneTemp_C", rec[5])
		brush := p.float("BrushSize", rec[6])
		if p.err != nil {
			return nil, p.err
		}
		i, ok := byID[rec[0]]
		if !ok {
			i = len(zones)
			byID[rec[0]] = i
			zones = append(zones, state.Zone{ID: rec[0], Name: rec[1], Temperature: temp, BrushSize: brush})
			points = append(points, nil)
		}
		points[i] = append(points[i], indexed{idx: int(idx), pt: state.Point{X: x, Y: y}})
	}
	for i := range zones {
		slices.SortStableFunc(points[i], func(a, b indexed) int { return a.idx - b.idx })
		zones[i].Points = make([]state.Point, len(points[i]))
		for j, ip := range points[i] {
			zones[i].Points[j] = ip.pt
		}
	}
	return zones, nil
}
