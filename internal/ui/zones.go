package ui

import (
	"fmt"
	"math"
	"slices"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// zoneRow edits one zone.
type zoneRow struct {
	widget.BaseWidget
	list *zoneList
	id   string

	name  *widget.Entry
	temp  *widget.Entry
	fahr  *widget.Label
	minus *widget.Button
	plus  *widget.Button
	del   *widget.Button
}

func newZoneRow(l *zoneList) *zoneRow {
	r := &zoneRow{list: l}
	r.name = widget.NewEntry()
	r.name.OnSubmitted = func(s string) { l.rename(r.id, s) }
	r.temp = widget.NewEntry()
	r.temp.OnSubmitted = func(s string) { l.setTemperature(r, s) }
	r.fahr = widget.NewLabel("")
	r.minus = widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() { l.nudge(r.id, -1) })
	r.plus = widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() { l.nudge(r.id, 1) })
	r.del = widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { l.delete(r.id) })
	r.ExtendBaseWidget(r)
	return r
}

func (r *zoneRow) bind(z state.Zone) {
	r.id = z.ID
	r.name.SetText(z.Name)
	r.showTemperature(z)
}

func (r *zoneRow) showTemperature(z state.Zone) {
	r.temp.SetText(fmt.Sprintf("%.1f", z.Temperature))
	r.fahr.SetText(fmt.Sprintf("%.1f°F", z.Fahrenheit()))
}

func (r *zoneRow) CreateRenderer() fyne.WidgetRenderer {
	temp := container.New(layout.NewGridWrapLayout(fyne.NewSize(64, r.temp.MinSize().Height)), r.temp)
	right := container.NewHBox(temp, widget.NewLabel("°C"), r.fahr, r.minus, r.plus, r.del)
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, nil, right, r.name))
}

// zoneList is the table of committed zones in creation order.
type zoneList struct {
	ctrl  *board.Controller
	zones []state.Zone
	list  *widget.List
	// syncing suppresses OnSelected while the selection is mirrored from the
	// board.
	syncing bool
	onError func(error)
}

func newZoneList(ctrl *board.Controller) *zoneList {
	l := &zoneList{ctrl: ctrl}
	l.list = widget.NewList(
		func() int { return len(l.zones) },
		func() fyne.CanvasObject { return newZoneRow(l) },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < len(l.zones) {
				o.(*zoneRow).bind(l.zones[id])
			}
		},
	)
	l.list.OnSelected = func(id widget.ListItemID) {
		if l.syncing || id >= len(l.zones) {
			return
		}
		if err := ctrl.SelectZone(l.zones[id].ID); err != nil {
			l.fail(err)
		}
	}
	l.Reload()
	return l
}

// Reload rereads the store and mirrors the board selection.
func (l *zoneList) Reload() {
	l.zones = l.ctrl.Session().Zones()
	slices.SortStableFunc(l.zones, func(a, b state.Zone) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	l.list.Refresh()

	l.syncing = true
	defer func() { l.syncing = false }()
	sel, ok := l.ctrl.Session().Selected()
	if !ok {
		l.list.UnselectAll()
		return
	}
	for i, z := range l.zones {
		if z.ID == sel {
			l.list.Select(i)
			l.list.ScrollTo(i)
			return
		}
	}
}

func (l *zoneList) fail(err error) {
	if l.onError != nil {
		l.onError(err)
	}
}

func (l *zoneList) rename(id, name string) {
	if err := l.ctrl.RenameZone(id, name); err != nil {
		l.fail(err)
	}
}

// setTemperature applies typed input. Anything that is not a number puts the
// stored value back.
func (l *zoneList) setTemperature(r *zoneRow, s string) {
	z, ok := l.ctrl.Session().Zone(r.id)
	if !ok {
		return
	}
	v, err := parseNumber(s)
	if err != nil || math.IsNaN(v) {
		r.showTemperature(z)
		return
	}
	if _, err := l.ctrl.SetZoneTemperature(r.id, v); err != nil {
		r.showTemperature(z)
		l.fail(err)
	}
}

func (l *zoneList) nudge(id string, delta float64) {
	if _, err := l.ctrl.NudgeZoneTemperature(id, delta); err != nil {
		l.fail(err)
	}
}

func (l *zoneList) delete(id string) {
	if err := l.ctrl.DeleteZone(id); err != nil {
		l.fail(err)
	}
}
