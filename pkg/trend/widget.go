package trend

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// Widget is a Fyne chart of CPM and tube voltage over time. CPM is scaled on
// the left axis, voltage on the right.
type Widget struct {
	widget.BaseWidget

	mu      sync.RWMutex
	display []Point

	window    time.Duration
	maxPoints int

	cpm   axis
	volts axis
	xMin  time.Duration
	xMax  time.Duration
}

// axis is a value range with a margin applied.
type axis struct {
	min, max float64
}

// NewWidget creates an empty chart showing window worth of history with at
// most maxPoints points per trace.
func NewWidget(window time.Duration, maxPoints int) *Widget {
	if maxPoints <= 0 {
		maxPoints = 600
	}
	w := &Widget{
		display:   make([]Point, 0, maxPoints),
		window:    window,
		maxPoints: maxPoints,
	}
	w.updateScale()
	w.ExtendBaseWidget(w)
	w.Refresh()
	return w
}

// UpdateData replaces the plotted history. Call it on the Fyne thread, for
// example through fyne.Do.
func (w *Widget) UpdateData(points []Point) {
	w.mu.Lock()
	w.display = Downsample(w.display, points, w.maxPoints)
	w.updateScale()
	w.mu.Unlock()

	w.Refresh()
}

// updateScale computes axis ranges from the plotted points.
func (w *Widget) updateScale() {
	w.cpm = axis{0, 60}
	w.volts = axis{0, 500}
	w.xMin, w.xMax = 0, w.window
	if len(w.display) == 0 {
		return
	}

	for _, p := range w.display {
		w.cpm.max = max(w.cpm.max, float64(p.CPM))
		w.volts.max = max(w.volts.max, float64(p.TubeVolts), float64(p.Voltage))
	}
	w.cpm.max *= 1.1
	w.volts.max *= 1.1

	w.xMin = w.display[0].Time
	w.xMax = w.display[len(w.display)-1].Time
	if w.xMax-w.xMin < w.window {
		w.xMax = w.xMin + w.window
	}
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &renderer{
		chart:      w,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}

// scaleX maps t onto [0, width].
func scaleX(t, xMin, xMax time.Duration, width float32) float32 {
	span := xMax - xMin
	if span <= 0 {
		return 0
	}
	return float32(float64(t-xMin)/float64(span)) * width
}

// scaleY maps v onto [height, 0]; larger values are drawn higher.
func scaleY(v float64, a axis, height float32) float32 {
	span := a.max - a.min
	if span <= 0 {
		return height
	}
	return height - float32((v-a.min)/span)*height
}
