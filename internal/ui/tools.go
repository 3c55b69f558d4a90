package ui

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var legendFactors = []float64{0, 0.25, 0.5, 0.75, 1}

// legend is the color ramp with five temperature marks underneath.
type legend struct {
	widget.BaseWidget
	labels []*widget.Label
	bar    *canvas.Raster
}

func newLegend(rng state.TempRange) *legend {
	l := &legend{}
	l.bar = canvas.NewRasterWithPixels(func(x, _, w, _ int) color.Color {
		if w <= 1 {
			return heatmap.RampAt(0)
		}
		return heatmap.RampAt(float64(x) / float64(w-1))
	})
	l.bar.SetMinSize(fyne.NewSize(220, 14))
	for range legendFactors {
		l.labels = append(l.labels, widget.NewLabel(""))
	}
	l.labels[0].Alignment = fyne.TextAlignLeading
	l.labels[len(l.labels)-1].Alignment = fyne.TextAlignTrailing
	for _, lb := range l.labels[1 : len(l.labels)-1] {
		lb.Alignment = fyne.TextAlignCenter
	}
	l.SetRange(rng)
	l.ExtendBaseWidget(l)
	return l
}

// SetRange relabels the marks for rng.
func (l *legend) SetRange(rng state.TempRange) {
	for i, f := range legendFactors {
		l.labels[i].SetText(fmt.Sprintf("%.0f°C", rng.Lerp(f)))
	}
}

func (l *legend) CreateRenderer() fyne.WidgetRenderer {
	marks := make([]fyne.CanvasObject, len(l.labels))
	for i, lb := range l.labels {
		marks[i] = lb
	}
	return widget.NewSimpleRenderer(container.NewVBox(l.bar, container.NewGridWithColumns(len(marks), marks...)))
}

// parseNumber reads a float typed by the user. Empty input yields NaN;
// infinities and "nan" are refused.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "°C"))
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// toolbar holds the paint settings and the canvas actions.
type toolbar struct {
	ctrl *board.Controller

	brush     *widget.Slider
	brushVal  *widget.Label
	temp      *widget.Slider
	tempVal   *widget.Label
	minEntry  *widget.Entry
	maxEntry  *widget.Entry
	mode      *widget.RadioGroup
	style     *widget.Select
	legend    *legend
	container fyne.CanvasObject
}

type toolbarActions struct {
	OpenImage   func()
	ImportCSV   func()
	LoadSamples func()
	Clear       func()
	Export      func()
}

func newToolbar(ctrl *board.Controller, actions toolbarActions) *toolbar {
	t := &toolbar{ctrl: ctrl}
	settings := ctrl.Settings()
	rng := ctrl.Session().Range()

	t.brushVal = widget.NewLabel("")
	t.brush = widget.NewSlider(board.MinBrushSize, board.MaxBrushSize)
	t.brush.Step = 1
	t.brush.SetValue(settings.BrushSize)
	t.brush.OnChanged = func(v float64) {
		t.brushVal.SetText(fmt.Sprintf("%.0fpx", ctrl.SetBrushSize(v)))
	}
	t.brushVal.SetText(fmt.Sprintf("%.0fpx", settings.BrushSize))

	t.tempVal = widget.NewLabel("")
	t.temp = widget.NewSlider(rng.Min, rng.Max)
	t.temp.Step = 0.5
	t.temp.SetValue(settings.Temperature)
	t.temp.OnChanged = func(v float64) {
		t.tempVal.SetText(fmt.Sprintf("%.1f°C", ctrl.SetTemperature(v)))
	}
	t.tempVal.SetText(fmt.Sprintf("%.1f°C", settings.Temperature))

	t.minEntry = widget.NewEntry()
	t.maxEntry = widget.NewEntry()
	t.minEntry.OnSubmitted = func(string) { t.applyRange() }
	t.maxEntry.OnSubmitted = func(string) { t.applyRange() }
	t.showRange(rng)

	t.mode = widget.NewRadioGroup([]string{"Draw", "Point"}, func(s string) {
		m, err := board.ParseMode(strings.ToLower(s))
		if err == nil {
			ctrl.SetMode(m)
		}
	})
	t.mode.Horizontal = true
	t.mode.Required = true
	if settings.Mode == board.ModePoint {
		t.mode.SetSelected("Point")
	} else {
		t.mode.SetSelected("Draw")
	}

	opts := ctrl.Compositor().Options()
	t.style = widget.NewSelect([]string{heatmap.BrushDisc.String(), heatmap.BrushGradient.String()}, func(s string) {
		style, err := heatmap.ParseBrushStyle(s)
		if err != nil {
			return
		}
		o := ctrl.Compositor().Options()
		o.Renderer.Style = style
		ctrl.SetRendering(o)
	})
	t.style.SetSelected(opts.Renderer.Style.String())

	t.legend = newLegend(rng)

	actionsBar := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), actions.OpenImage),
		widget.NewToolbarAction(theme.UploadIcon(), actions.ImportCSV),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), actions.LoadSamples),
		widget.NewToolbarAction(theme.ContentClearIcon(), actions.Clear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.Export),
	)

	sized := func(o fyne.CanvasObject, w float32) fyne.CanvasObject {
		return container.New(layout.NewGridWrapLayout(fyne.NewSize(w, o.MinSize().Height)), o)
	}

	row1 := container.NewHBox(
		actionsBar,
		widget.NewSeparator(),
		widget.NewLabel("Mode:"), t.mode,
		widget.NewSeparator(),
		widget.NewLabel("Brush:"), t.style,
		layout.NewSpacer(),
		t.legend,
	)
	row2 := container.NewHBox(
		widget.NewLabel("Size:"), sized(t.brush, 150), t.brushVal,
		widget.NewSeparator(),
		widget.NewLabel("Temp:"), sized(t.temp, 180), t.tempVal,
		widget.NewSeparator(),
		widget.NewLabel("Range:"), sized(t.minEntry, 70), widget.NewLabel("to"), sized(t.maxEntry, 70),
		widget.NewButton("Apply", t.applyRange),
	)
	t.container = container.NewVBox(row1, row2)
	return t
}

func (t *toolbar) showRange(r state.TempRange) {
	t.minEntry.SetText(strconv.FormatFloat(r.Min, 'f', -1, 64))
	t.maxEntry.SetText(strconv.FormatFloat(r.Max, 'f', -1, 64))
}

// applyRange reads both bounds, installs the repaired range and moves the
// temperature slider into it. Unparseable input restores the current range.
func (t *toolbar) applyRange() {
	lo, errLo := parseNumber(t.minEntry.Text)
	hi, errHi := parseNumber(t.maxEntry.Text)
	if errLo != nil || errHi != nil {
		t.showRange(t.ctrl.Session().Range())
		return
	}
	r := t.ctrl.SetRange(lo, hi)
	t.showRange(r)
	t.syncRange(r)
}

// syncRange refreshes every control that depends on the range.
func (t *toolbar) syncRange(r state.TempRange) {
	paint := t.ctrl.Settings().Temperature
	t.temp.Min, t.temp.Max = r.Min, r.Max
	t.temp.SetValue(paint)
	t.temp.Refresh()
	t.tempVal.SetText(fmt.Sprintf("%.1f°C", paint))
	t.legend.SetRange(r)
}
