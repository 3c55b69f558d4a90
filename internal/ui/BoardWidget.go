package ui

import (
	"image"
	"image/color"
	"math"

	"ThermalBoard/internal/board"
	"ThermalBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// BoardWidget shows the composited heatmap and forwards pointer input to the
// controller in surface pixel coordinates.
type BoardWidget struct {
	widget.BaseWidget
	ctrl *board.Controller

	raster  *canvas.Image
	tipBg   *canvas.Rectangle
	tipText *canvas.Text
	tipPos  fyne.Position
	tipShow bool

	pressed bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(ctrl *board.Controller) *BoardWidget {
	b := &BoardWidget{ctrl: ctrl}
	w, h := ctrl.Compositor().Size()
	b.raster = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, w, h)))
	b.raster.FillMode = canvas.ImageFillContain
	b.raster.ScaleMode = canvas.ImageScaleFastest

	b.tipBg = canvas.NewRectangle(color.NRGBA{A: 200})
	b.tipBg.CornerRadius = 4
	b.tipText = canvas.NewText("", color.White)
	b.tipText.TextSize = theme.TextSize() - 1
	b.tipBg.Hide()
	b.tipText.Hide()

	ctrl.OnFrame = b.showFrame
	b.ExtendBaseWidget(b)
	return b
}

// showFrame swaps in the latest composite. The compositor reuses its buffer,
// so the pointer only changes after a resize.
func (b *BoardWidget) showFrame(img *image.RGBA) {
	b.raster.Image = img
	b.raster.Refresh()
}

// toSurface maps a widget position onto the surface, undoing the letterbox
// of ImageFillContain. The point is clamped to the surface; inside reports
// whether pos was over the image at all.
func (b *BoardWidget) toSurface(pos fyne.Position) (p state.Point, inside bool) {
	sw, sh := b.ctrl.Compositor().Size()
	size := b.Size()
	if sw == 0 || sh == 0 || size.Width == 0 || size.Height == 0 {
		return state.Point{}, false
	}
	scale := min(size.Width/float32(sw), size.Height/float32(sh))
	offX := (size.Width - float32(sw)*scale) / 2
	offY := (size.Height - float32(sh)*scale) / 2
	x := float64((pos.X - offX) / scale)
	y := float64((pos.Y - offY) / scale)
	maxX, maxY := float64(sw-1), float64(sh-1)
	inside = x >= 0 && y >= 0 && x <= maxX && y <= maxY
	return state.Point{X: clampCoord(x, maxX), Y: clampCoord(y, maxY)}, inside
}

func clampCoord(v, hi float64) float64 {
	return math.Max(0, math.Min(hi, v))
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p, inside := b.toSurface(e.Position)
	if !inside {
		return
	}
	b.pressed = true
	b.hideTip()
	b.ctrl.PointerDown(p)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !b.pressed {
		return
	}
	b.pressed = false
	b.ctrl.PointerUp()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.pressed {
		p, _ := b.toSurface(e.Position)
		b.ctrl.PointerMove(p)
	}
}

func (b *BoardWidget) DragEnd() {
	if b.pressed {
		b.pressed = false
		b.ctrl.PointerUp()
	}
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	p, inside := b.toSurface(e.Position)
	if b.pressed {
		b.ctrl.PointerMove(p)
		return
	}
	if !inside {
		b.hideTip()
		return
	}
	tip, ok := b.ctrl.Hover(p)
	if !ok {
		b.hideTip()
		return
	}
	b.showTip(tip.Text, e.Position)
}

func (b *BoardWidget) MouseOut() {
	b.hideTip()
	if b.pressed {
		b.pressed = false
		b.ctrl.PointerLeave()
	}
}

func (b *BoardWidget) showTip(text string, at fyne.Position) {
	b.tipText.Text = text
	b.tipPos = at.Add(fyne.NewPos(12, 12))
	b.tipShow = true
	b.Refresh()
}

func (b *BoardWidget) hideTip() {
	if !b.tipShow {
		return
	}
	b.tipShow = false
	b.Refresh()
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardWidgetRenderer{board: b}
}

type boardWidgetRenderer struct {
	board *BoardWidget
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.raster, r.board.tipBg, r.board.tipText}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.board.raster.Resize(size)
	r.board.raster.Move(fyne.NewPos(0, 0))
	r.layoutTip(size)
}

func (r *boardWidgetRenderer) layoutTip(size fyne.Size) {
	b := r.board
	if !b.tipShow {
		b.tipBg.Hide()
		b.tipText.Hide()
		return
	}
	pad := theme.InnerPadding() / 2
	ts := b.tipText.MinSize()
	box := fyne.NewSize(ts.Width+2*pad, ts.Height+pad)
	pos := b.tipPos
	if pos.X+box.Width > size.Width {
		pos.X = size.Width - box.Width
	}
	if pos.Y+box.Height > size.Height {
		pos.Y -= box.Height + 24
	}
	b.tipBg.Resize(box)
	b.tipBg.Move(pos)
	b.tipText.Move(pos.Add(fyne.NewPos(pad, pad/2)))
	b.tipText.Resize(ts)
	b.tipBg.Show()
	b.tipText.Show()
}

func (r *boardWidgetRenderer) Refresh() {
	r.layoutTip(r.board.Size())
	r.board.tipText.Refresh()
	r.board.tipBg.Refresh()
	r.board.raster.Refresh()
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *boardWidgetRenderer) Destroy() {}
