package ui

import (
	"context"
	"errors"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/export"
	"ThermalBoard/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const noDataMessage = "No thermal data to export!"

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// dialogs wires file pickers to the controller and the exporter.
type dialogs struct {
	win      fyne.Window
	ctrl     *board.Controller
	exporter *export.Exporter
	log      logger.Logger
}

func (d *dialogs) showError(err error) {
	if errors.Is(err, export.ErrNoZones) {
		dialog.ShowInformation("Export", noDataMessage, d.win)
		return
	}
	dialog.ShowError(err, d.win)
}

func (d *dialogs) openImage() {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			d.showError(err)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		if err := d.ctrl.LoadImage(r); err != nil {
			d.showError(err)
		}
	}, d.win)
	fd.SetFilter(storage.NewExtensionFileFilter(imageExtensions))
	fd.Show()
}

func (d *dialogs) importCSV() {
	fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			d.showError(err)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		zones, err := export.ReadCSV(r)
		if err != nil {
			d.log.Error(context.Background(), "import failed", logger.String("uri", r.URI().String()), logger.Error(err))
			d.showError(err)
			return
		}
		d.ctrl.ImportZones(zones)
	}, d.win)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	fd.Show()
}

var exportChoices = []struct {
	label  string
	format export.Format
}{
	{"Zone summary (CSV)", export.FormatCSV},
	{"Stroke points (CSV)", export.FormatPointsCSV},
	{"Labelled heatmap (PNG)", export.FormatPNG},
	{"Report (PDF)", export.FormatPDF},
}

// exportData asks for a format and then a destination.
func (d *dialogs) exportData() {
	if d.ctrl.Session().Len() == 0 {
		d.showError(export.ErrNoZones)
		return
	}
	labels := make([]string, len(exportChoices))
	for i, c := range exportChoices {
		labels[i] = c.label
	}
	choice := widget.NewRadioGroup(labels, nil)
	choice.Required = true
	choice.SetSelected(labels[0])

	dialog.ShowCustomConfirm("Export", "Next", "Cancel", choice, func(ok bool) {
		if !ok {
			return
		}
		for _, c := range exportChoices {
			if c.label == choice.Selected {
				d.saveAs(c.format)
				return
			}
		}
	}, d.win)
}

func (d *dialogs) saveAs(f export.Format) {
	fd := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			d.showError(err)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := d.exporter.Write(context.Background(), w, f, d.snapshot()); err != nil {
			d.showError(err)
		}
	}, d.win)
	fd.SetFileName(f.DefaultFileName())
	fd.Show()
}

// snapshot renders a fresh frame so the export matches what is on screen.
func (d *dialogs) snapshot() export.Snapshot {
	d.ctrl.Frame()
	s := d.ctrl.Session()
	return export.Snapshot{
		Zones: s.Zones(),
		Image: d.ctrl.Compositor().Snapshot(),
		Range: s.Range(),
	}
}
