package trend

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	cpmColor   = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // orange
	voltColor  = color.RGBA{R: 100, G: 200, B: 255, A: 255} // light blue
)

// renderer draws the chart widget.
type renderer struct {
	chart *Widget

	background *canvas.Rectangle
	objects    []fyne.CanvasObject
	lastSize   fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *renderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 200)
}

// Layout arranges the widget components.
func (r *renderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	if r.lastSize != size {
		r.lastSize = size
		r.chart.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the drawing from the current data.
func (r *renderer) Refresh() {
	r.chart.mu.RLock()
	points := r.chart.display
	cpm, volts := r.chart.cpm, r.chart.volts
	xMin, xMax := r.chart.xMin, r.chart.xMax
	r.chart.mu.RUnlock()

	r.objects = []fyne.CanvasObject{r.background}

	size := r.chart.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	const (
		marginLeft   = float32(50)
		marginRight  = float32(50)
		marginTop    = float32(20)
		marginBottom = float32(30)
	)
	plot := fyne.NewPos(marginLeft, marginTop)
	width := size.Width - marginLeft - marginRight
	height := size.Height - marginTop - marginBottom
	if width <= 0 || height <= 0 {
		return
	}

	r.drawGrid(plot, width, height, cpm, volts, xMin, xMax)
	r.drawTrace(plot, width, height, points, xMin, xMax, cpmColor, 1.5, func(p Point) float32 {
		return scaleY(float64(p.CPM), cpm, height)
	})
	r.drawTrace(plot, width, height, points, xMin, xMax, voltColor, 2, func(p Point) float32 {
		return scaleY(float64(p.TubeVolts), volts, height)
	})
	r.drawLegend(plot, width)
}

func (r *renderer) drawGrid(plot fyne.Position, width, height float32, cpm, volts axis, xMin, xMax time.Duration) {
	const rows, cols = 5, 10

	for i := 0; i < rows+1; i++ {
		y := plot.Y + float32(i)*height/rows
		r.line(gridColor, 1, fyne.NewPos(plot.X, y), fyne.NewPos(plot.X+width, y))

		frac := 1 - float64(i)/rows
		left := r.text(formatValue(cpm.min+frac*(cpm.max-cpm.min)), cpmColor, fyne.TextAlignTrailing)
		left.Move(fyne.NewPos(plot.X-45, y-6))
		right := r.text(formatValue(volts.min+frac*(volts.max-volts.min))+"V", voltColor, fyne.TextAlignLeading)
		right.Move(fyne.NewPos(plot.X+width+5, y-6))
	}

	for i := 0; i < cols+1; i++ {
		x := plot.X + float32(i)*width/cols
		r.line(gridColor, 1, fyne.NewPos(x, plot.Y), fyne.NewPos(x, plot.Y+height))

		t := xMin + time.Duration(float64(xMax-xMin)*float64(i)/cols)
		label := r.text(formatTime(t), labelColor, fyne.TextAlignCenter)
		label.Move(fyne.NewPos(x-15, plot.Y+height+5))
	}
}

func (r *renderer) drawTrace(plot fyne.Position, width, height float32, points []Point, xMin, xMax time.Duration, c color.Color, stroke float32, y func(Point) float32) {
	if len(points) < 2 {
		return
	}
	prev := fyne.NewPos(plot.X+scaleX(points[0].Time, xMin, xMax, width), plot.Y+y(points[0]))
	for _, p := range points[1:] {
		next := fyne.NewPos(plot.X+scaleX(p.Time, xMin, xMax, width), plot.Y+y(p))
		r.line(c, stroke, prev, next)
		prev = next
	}
}

func (r *renderer) drawLegend(plot fyne.Position, width float32) {
	cpm := r.text("CPM", cpmColor, fyne.TextAlignLeading)
	cpm.Move(fyne.NewPos(plot.X+10, plot.Y+5))
	volts := r.text("Tube V", voltColor, fyne.TextAlignLeading)
	volts.Move(fyne.NewPos(plot.X+width-60, plot.Y+5))
}

func (r *renderer) line(c color.Color, stroke float32, from, to fyne.Position) {
	l := canvas.NewLine(c)
	l.Position1 = from
	l.Position2 = to
	l.StrokeWidth = stroke
	r.objects = append(r.objects, l)
}

func (r *renderer) text(s string, c color.Color, align fyne.TextAlign) *canvas.Text {
	t := canvas.NewText(s, c)
	t.TextSize = 10
	t.Alignment = align
	r.objects = append(r.objects, t)
	return t
}

// Objects returns all canvas objects for rendering.
func (r *renderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *renderer) Destroy() {}

func formatValue(v float64) string {
	if v >= 100 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatTime(d time.Duration) string {
	if d >= time.Minute {
		return d.Truncate(time.Second).String()
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 0, 64) + "s"
}
