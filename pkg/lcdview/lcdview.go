// Package lcdview is a Fyne widget imitating a 16x2 character LCD.
package lcdview

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gogeiger/pkg/display"
	"github.com/itohio/gogeiger/pkg/lcd"
)

var (
	backlight = color.RGBA{R: 120, G: 170, B: 40, A: 255}
	cellColor = color.RGBA{R: 110, G: 160, B: 35, A: 255}
	inkColor  = color.RGBA{R: 20, G: 40, B: 10, A: 255}
)

// Widget shows two rows of display.Width characters.
type Widget struct {
	widget.BaseWidget

	mu    sync.RWMutex
	lines [lcd.Rows]string
}

// New creates a blank display.
func New() *Widget {
	w := &Widget{}
	w.ExtendBaseWidget(w)
	return w
}

// SetLines replaces the shown text. Call it on the Fyne thread.
func (w *Widget) SetLines(lines [lcd.Rows]string) {
	w.mu.Lock()
	changed := w.lines != lines
	w.lines = lines
	w.mu.Unlock()

	if changed {
		w.Refresh()
	}
}

// Lines returns the shown text.
func (w *Widget) Lines() [lcd.Rows]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lines
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	r := &renderer{
		view:       w,
		background: canvas.NewRectangle(backlight),
	}
	r.objects = append(r.objects, r.background)
	for row := 0; row < lcd.Rows; row++ {
		for col := 0; col < display.Width; col++ {
			cell := canvas.NewRectangle(cellColor)
			glyph := canvas.NewText(" ", inkColor)
			glyph.TextStyle = fyne.TextStyle{Monospace: true, Bold: true}
			glyph.Alignment = fyne.TextAlignCenter
			r.cells[row][col] = cell
			r.glyphs[row][col] = glyph
			r.objects = append(r.objects, cell, glyph)
		}
	}
	r.Refresh()
	return r
}

type renderer struct {
	view *Widget

	background *canvas.Rectangle
	cells      [lcd.Rows][display.Width]*canvas.Rectangle
	glyphs     [lcd.Rows][display.Width]*canvas.Text
	objects    []fyne.CanvasObject
}

const (
	border  = float32(8)
	gap     = float32(2)
	minCell = float32(14)
)

// MinSize returns the minimum size of the widget.
func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(
		2*border+display.Width*(minCell+gap),
		2*border+lcd.Rows*(minCell*1.6+gap),
	)
}

// Layout sizes every character cell to fill the widget.
func (r *renderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	w := (size.Width-2*border)/display.Width - gap
	h := (size.Height-2*border)/lcd.Rows - gap
	for row := 0; row < lcd.Rows; row++ {
		for col := 0; col < display.Width; col++ {
			pos := fyne.NewPos(border+float32(col)*(w+gap), border+float32(row)*(h+gap))
			r.cells[row][col].Move(pos)
			r.cells[row][col].Resize(fyne.NewSize(w, h))
			r.glyphs[row][col].Move(pos)
			r.glyphs[row][col].Resize(fyne.NewSize(w, h))
			r.glyphs[row][col].TextSize = h * 0.7
		}
	}
}

// Refresh copies the text into the glyphs.
func (r *renderer) Refresh() {
	lines := r.view.Lines()
	for row := 0; row < lcd.Rows; row++ {
		for col := 0; col < display.Width; col++ {
			ch := " "
			if col < len(lines[row]) {
				ch = lines[row][col : col+1]
			}
			g := r.glyphs[row][col]
			if g.Text != ch {
				g.Text = ch
				g.Refresh()
			}
		}
	}
}

// Objects returns all canvas objects for rendering.
func (r *renderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *renderer) Destroy() {}
