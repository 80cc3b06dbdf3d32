package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWidget_UpdateScale_Empty(t *testing.T) {
	w := &Widget{window: time.Minute, maxPoints: 10}
	w.updateScale()

	assert.Equal(t, axis{0, 60}, w.cpm)
	assert.Equal(t, axis{0, 500}, w.volts)
	assert.Equal(t, time.Duration(0), w.xMin)
	assert.Equal(t, time.Minute, w.xMax)
}

func TestWidget_UpdateScale(t *testing.T) {
	w := &Widget{window: time.Minute, maxPoints: 10}
	w.display = []Point{
		{Time: 10 * time.Second, CPM: 100, TubeVolts: 380, Voltage: 385},
		{Time: 20 * time.Second, CPM: 200, TubeVolts: 600, Voltage: 400},
	}
	w.updateScale()

	assert.InDelta(t, 220, w.cpm.max, 1e-9)
	assert.InDelta(t, 660, w.volts.max, 1e-9)
	assert.Equal(t, 10*time.Second, w.xMin)
	assert.Equal(t, 70*time.Second, w.xMax, "short history is padded to the window")

	w.display = append(w.display, Point{Time: 100 * time.Second})
	w.updateScale()
	assert.Equal(t, 100*time.Second, w.xMax)
}

func TestScale(t *testing.T) {
	assert.Equal(t, float32(0), scaleX(0, 0, 10*time.Second, 200))
	assert.Equal(t, float32(100), scaleX(5*time.Second, 0, 10*time.Second, 200))
	assert.Equal(t, float32(0), scaleX(5*time.Second, time.Second, time.Second, 200))

	a := axis{0, 100}
	assert.Equal(t, float32(50), scaleY(0, a, 50))
	assert.Equal(t, float32(0), scaleY(100, a, 50))
	assert.Equal(t, float32(25), scaleY(50, a, 50))
	assert.Equal(t, float32(50), scaleY(5, axis{1, 1}, 50))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.5", formatValue(12.5))
	assert.Equal(t, "440", formatValue(440.4))
	assert.Equal(t, "30s", formatTime(30*time.Second))
	assert.Equal(t, "2m30s", formatTime(150*time.Second+300*time.Millisecond))
}
