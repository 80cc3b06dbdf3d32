package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	row, col int
	text     string
}

type recorder struct {
	writes []write
	err    error
}

func (r *recorder) WriteText(row, col int, text string) error {
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, write{row: row, col: col, text: text})
	return nil
}

func (r *recorder) Clear() error {
	r.writes = nil
	return nil
}

func TestDose(t *testing.T) {
	tests := []struct {
		name      string
		cpm       uint32
		want      uint32
		wantMilli bool
	}{
		{name: "zero", cpm: 0, want: 0},
		{name: "background", cpm: 30, want: 18},
		{name: "one microsievert", cpm: 159, want: 100},
		{name: "factor cpm", cpm: 15835, want: 10000},
		{name: "largest micro", cpm: 158349, want: 99999},
		{name: "first milli", cpm: 158350, want: 100, wantMilli: true},
		{name: "high", cpm: 200000, want: 126, wantMilli: true},
		{name: "no overflow", cpm: 4_000_000_000, want: 2526049, wantMilli: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, milli := Dose(tt.cpm, 15835)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMilli, milli)
		})
	}
}

func TestDose_ZeroFactor(t *testing.T) {
	got, milli := Dose(100, 0)
	assert.Equal(t, uint32(0), got)
	assert.False(t, milli)
}

func TestLines(t *testing.T) {
	f := NewFormatter(DefaultConfig())

	tests := []struct {
		name       string
		reading    Reading
		wantTop    string
		wantBottom string
	}{
		{
			name:       "startup",
			reading:    Reading{},
			wantTop:    "0  0V  0%  0cpm ",
			wantBottom: "0      0.00uSv/h",
		},
		{
			name:       "background",
			reading:    Reading{Pulses: 12, Voltage: 400, DutyPercent: 25, CPM: 30, Seconds: 42},
			wantTop:    "12 400V25% 30cpm",
			wantBottom: "42     0.18uSv/h",
		},
		{
			name:       "one microsievert",
			reading:    Reading{CPM: 159, Seconds: 7, Voltage: 398, DutyPercent: 9},
			wantTop:    "0  398V9%  159cp",
			wantBottom: "7      1.00uSv/h",
		},
		{
			name:       "two digit whole",
			reading:    Reading{CPM: 1600, Seconds: 100},
			wantTop:    "0  0V  0%  1600c",
			wantBottom: "100   10.10uSv/h",
		},
		{
			name:       "three digit whole",
			reading:    Reading{CPM: 15835, Seconds: 3600},
			wantTop:    "0  0V  0%  15835",
			wantBottom: "3600 100.00uSv/h",
		},
		{
			name:       "milli rescale",
			reading:    Reading{CPM: 200000},
			wantTop:    "0  0V  0%  20000",
			wantBottom: "0      1.26mSv/h",
		},
		{
			name:       "wide pulse count overwritten by voltage",
			reading:    Reading{Pulses: 123456, Voltage: 400, DutyPercent: 25, CPM: 3600},
			wantTop:    "123400V25% 3600c",
			wantBottom: "0     22.73uSv/h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, bottom := f.Lines(tt.reading)
			assert.Len(t, top, Width)
			assert.Len(t, bottom, Width)
			assert.Equal(t, tt.wantTop, top)
			assert.Equal(t, tt.wantBottom, bottom)
		})
	}
}

func TestRender(t *testing.T) {
	f := NewFormatter(DefaultConfig())
	rec := &recorder{}

	require.NoError(t, f.Render(rec, Reading{Pulses: 12, Voltage: 400, DutyPercent: 25, CPM: 30, Seconds: 42}))
	require.Len(t, rec.writes, 2)
	assert.Equal(t, write{row: 0, col: 0, text: "12 400V25% 30cpm"}, rec.writes[0])
	assert.Equal(t, write{row: 1, col: 0, text: "42     0.18uSv/h"}, rec.writes[1])
}

func TestRender_Error(t *testing.T) {
	f := NewFormatter(DefaultConfig())
	rec := &recorder{err: errors.New("bus stuck")}

	err := f.Render(rec, Reading{})
	assert.EqualError(t, err, "bus stuck")
}
