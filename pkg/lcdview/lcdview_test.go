package lcdview

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidget_Glyphs(t *testing.T) {
	test.NewTempApp(t)

	w := New()
	r, ok := test.WidgetRenderer(w).(*renderer)
	require.True(t, ok)
	assert.Equal(t, " ", r.glyphs[0][0].Text)

	w.SetLines([2]string{"12 400V25% 30cpm", "42     0.18uSv/h"})
	assert.Equal(t, "1", r.glyphs[0][0].Text)
	assert.Equal(t, "V", r.glyphs[0][6].Text)
	assert.Equal(t, "m", r.glyphs[0][15].Text)
	assert.Equal(t, ".", r.glyphs[1][8].Text)
	assert.Equal(t, "h", r.glyphs[1][15].Text)
}

func TestWidget_ShortLines(t *testing.T) {
	test.NewTempApp(t)

	w := New()
	r := test.WidgetRenderer(w).(*renderer)

	w.SetLines([2]string{"ab", ""})
	assert.Equal(t, "b", r.glyphs[0][1].Text)
	assert.Equal(t, " ", r.glyphs[0][2].Text)
	assert.Equal(t, " ", r.glyphs[1][0].Text)
	assert.Equal(t, [2]string{"ab", ""}, w.Lines())
}

func TestWidget_Layout(t *testing.T) {
	test.NewTempApp(t)

	w := New()
	r := test.WidgetRenderer(w).(*renderer)
	r.Layout(fyne.NewSize(16*20+2*border, 2*40+2*border))

	assert.Equal(t, fyne.NewSize(20-gap, 40-gap), r.cells[0][0].Size())
	assert.Equal(t, fyne.NewPos(border+20, border+40), r.cells[1][1].Position())
	assert.Len(t, r.Objects(), 1+2*16*2)
}
