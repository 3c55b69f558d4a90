// Package export turns the zone store and the composited surface into CSV,
// PNG and PDF files, and reads CSV exports back.
package export

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ThermalBoard/internal/logger"
	"ThermalBoard/internal/metrics"
	"ThermalBoard/internal/state"
)

type Format string

const (
	FormatCSV       Format = "csv"
	FormatPointsCSV Format = "points"
	FormatPNG       Format = "png"
	FormatPDF       Format = "pdf"
)

// DefaultFileName is the suggested file name for each format.
func (f Format) DefaultFileName() string {
	switch f {
	case FormatPointsCSV:
		return "thermal_points.csv"
	case FormatPNG:
		return "heatmap_report.png"
	case FormatPDF:
		return "heatmap_report.pdf"
	}
	return "thermal_data.csv"
}

// ParseFormat accepts a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatPointsCSV, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: no extension on %q", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Snapshot is what an export reads from the board.
type Snapshot struct {
	Zones []state.Zone
	Image image.Image
	Range state.TempRange
}

// Exporter writes snapshots and records each export.
type Exporter struct {
	log     logger.Logger
	metrics *metrics.Manager
}

func NewExporter(log logger.Logger, m *metrics.Manager) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{log: log, metrics: m}
}

// Write encodes snap in format f.
func (e *Exporter) Write(ctx context.Context, w io.Writer, f Format, snap Snapshot) error {
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(w, snap.Zones)
	case FormatPointsCSV:
		err = WritePointsCSV(w, snap.Zones)
	case FormatPNG:
		if snap.Image == nil {
			return fmt.Errorf("png export: no image")
		}
		err = WritePNG(w, snap.Image, snap.Zones)
	case FormatPDF:
		err = WritePDF(w, Report{Image: snap.Image, Zones: snap.Zones, Range: snap.Range})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return err
	}
	e.metrics.RecordExport(string(f))
	e.log.Info(ctx, "export written",
		logger.String("format", string(f)),
		logger.Int("zones", len(snap.Zones)))
	return nil
}

// Save writes snap to path. An empty store leaves no file behind.
func (e *Exporter) Save(ctx context.Context, path string, f Format, snap Snapshot) error {
	if len(snap.Zones) == 0 {
		return ErrNoZones
	}
	file, err := os.Create(path)
	if err != nil {
		e.log.Error(ctx, "export failed", logger.String("path", path), logger.Error(err))
		return err
	}
	if err := e.Write(ctx, file, f, snap); err != nil {
		file.Close()
		os.Remove(path)
		e.log.Error(ctx, "export failed", logger.String("path", path), logger.Error(err))
		return err
	}
	return file.Close()
}

// Load reads zones from a CSV export on disk.
func (e *Exporter) Load(ctx context.Context, path string) ([]state.Zone, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	zones, err := ReadCSV(file)
	if err != nil {
		e.log.Error(ctx, "import failed", logger.String("path", path), logger.Error(err))
		return nil, err
	}
	e.log.Info(ctx, "zones read", logger.String("path", path), logger.Int("zones", len(zones)))
	return zones, nil
}
