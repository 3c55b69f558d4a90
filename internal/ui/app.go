// Package ui is the Fyne desktop front end of the heatmap board.
package ui

import (
	"context"
	"fmt"
	"time"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/config"
	"ThermalBoard/internal/export"
	"ThermalBoard/internal/heatmap"
	"ThermalBoard/internal/logger"
	"ThermalBoard/internal/metrics"
	boardnet "ThermalBoard/internal/net"
	"ThermalBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const (
	frameInterval = time.Second / 60
	statsInterval = time.Second
)

// Options are the collaborators RunApp wires together.
type Options struct {
	Config  *config.Config
	Log     logger.Logger
	Metrics *metrics.Manager
	// Mirror, when set, receives a snapshot after every change.
	Mirror *boardnet.Mirror
	// ShareURL is shown in the status bar when the mirror is served.
	ShareURL string
}

// NewController builds the session, compositor and controller described by cfg.
func NewController(cfg *config.Config, sched board.Scheduler, log logger.Logger, m *metrics.Manager) *board.Controller {
	session := state.NewSessionState(cfg.Range())
	comp := heatmap.NewCompositor(cfg.CanvasWidth, cfg.CanvasHeight, cfg.RenderOptions(), m)
	comp.SetLogger(log.Named("compositor"))
	ctrl := board.NewController(session, comp, cfg.Settings(), sched, log.Named("controller"), m)
	ctrl.SetMaxImageDim(cfg.MaxImageDim)
	return ctrl
}

// RunApp opens the main window and blocks until it is closed or ctx ends.
func RunApp(ctx context.Context, opts Options) {
	log := opts.Log
	if log == nil {
		log = logger.Get()
	}
	uiLog := log.Named("ui")

	sched := &board.QueueScheduler{}
	ctrl := NewController(opts.Config, sched, log, opts.Metrics)

	a := app.NewWithID("io.thermalboard.app")
	win := a.NewWindow("Thermal Zone Board")
	win.Resize(fyne.NewSize(1280, 820))

	canvasWidget := NewBoardWidget(ctrl)
	zones := newZoneList(ctrl)
	d := &dialogs{
		win:      win,
		ctrl:     ctrl,
		exporter: export.NewExporter(log.Named("export"), opts.Metrics),
		log:      uiLog,
	}
	zones.onError = d.showError

	tb := newToolbar(ctrl, toolbarActions{
		OpenImage:   d.openImage,
		ImportCSV:   d.importCSV,
		LoadSamples: ctrl.LoadSamples,
		Clear: func() {
			dialog.ShowConfirm("Clear", "Remove every zone?", func(ok bool) {
				if ok {
					ctrl.Clear()
				}
			}, win)
		},
		Export: d.exportData,
	})

	status := widget.NewLabel("")
	updateStatus := func() {
		st := ctrl.Stats()
		text := fmt.Sprintf("Zones: %d | Points: %d | FPS: %d | Next: %s",
			st.Zones, st.Points, st.FPS, ctrl.Session().NextName())
		if opts.ShareURL != "" {
			text += " | Sharing at " + opts.ShareURL
		}
		status.SetText(text)
	}

	ctrl.AddChangeListener(zones.Reload)
	ctrl.AddChangeListener(updateStatus)
	if opts.Mirror != nil {
		ctrl.AddChangeListener(func() {
			w, h := ctrl.Compositor().Size()
			opts.Mirror.Publish(boardnet.SnapshotOf(ctrl.Session(), w, h))
		})
	}

	side := container.NewBorder(widget.NewLabelWithStyle("Zones", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}), nil, nil, nil, zones.list)
	split := container.NewHSplit(canvasWidget, side)
	split.Offset = 0.7
	win.SetContent(container.NewBorder(tb.container, status, nil, nil, split))

	runCtx, cancel := context.WithCancel(ctx)
	a.Lifecycle().SetOnStopped(cancel)
	go pumpFrames(runCtx, sched)
	go every(runCtx, statsInterval, updateStatus)
	go func() {
		<-runCtx.Done()
		if ctx.Err() != nil {
			fyne.Do(a.Quit)
		}
	}()

	ctrl.LoadSamples()
	uiLog.Info(ctx, "window ready")
	win.ShowAndRun()
	cancel()
}

// pumpFrames drains the frame queue on the UI goroutine once per display tick.
func pumpFrames(ctx context.Context, sched *board.QueueScheduler) {
	t := time.NewTicker(frameInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if sched.Len() > 0 {
				fyne.DoAndWait(func() { sched.Flush() })
			}
		}
	}
}

func every(ctx context.Context, d time.Duration, fn func()) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fyne.Do(fn)
		}
	}
}
