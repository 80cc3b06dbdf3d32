// Package display renders the appliance status onto a two-line, 16-column
// character display using integer arithmetic only.
package display

import "strconv"

// Width is the number of characters per display row.
const Width = 16

// Display is a character display. Row and column are zero based.
type Display interface {
	WriteText(row, col int, text string) error
	Clear() error
}

// Config holds the formatting constants.
type Config struct {
	// DoseFactor is the count rate, in hundredths of CPM, that corresponds to
	// 1 uSv/h for the fitted tube.
	DoseFactor uint32 `yaml:"dose_factor"`
}

// DefaultConfig returns the conversion factor of the SBM-20 style tube the
// appliance was calibrated with.
func DefaultConfig() Config {
	return Config{DoseFactor: 15835}
}

// Reading is the set of quantities shown on the display.
type Reading struct {
	Pulses      uint32
	CPM         uint32
	Seconds     uint32
	Voltage     int32
	DutyPercent uint32
}

// milliThreshold is the largest dose, in hundredths, shown in micro units.
const milliThreshold = 99999

// Dose converts counts per minute into hundredths of a Sv/h unit. When the
// micro value exceeds 999.99 it is rescaled to milli units and milli is true.
func Dose(cpm, factor uint32) (hundredths uint32, milli bool) {
	if factor == 0 {
		return 0, false
	}
	v := uint32(uint64(cpm) * 10000 / uint64(factor))
	if v > milliThreshold {
		return v / 1000, true
	}
	return v, false
}

// Formatter lays out readings into display lines. It holds no state beyond
// its configuration.
type Formatter struct {
	cfg Config
}

// NewFormatter creates a formatter.
func NewFormatter(cfg Config) Formatter {
	return Formatter{cfg: cfg}
}

// Lines returns both rows, each exactly Width characters.
//
// Row 0 anchors pulses at column 0, tube voltage at 3, duty at 7 and CPM at
// 11. Row 1 anchors elapsed seconds at 0 and the dose rate so that its
// decimal point sits at column 8 and the unit at 11. A field that outgrows its
// slot is overwritten by the next one and text past the last column is
// dropped.
func (f Formatter) Lines(r Reading) (string, string) {
	var l line
	l.reset()
	l.putUint(0, r.Pulses)
	l.put(3+l.putInt(3, r.Voltage), "V")
	l.put(7+l.putUint(7, r.DutyPercent), "%")
	l.put(11+l.putUint(11, r.CPM), "cpm")
	top := l.String()

	l.reset()
	l.putUint(0, r.Seconds)

	dose, milli := Dose(r.CPM, f.cfg.DoseFactor)
	whole, frac := dose/100, dose%100
	switch {
	case whole < 10:
		l.putUint(7, whole)
	case whole < 100:
		l.putUint(6, whole)
	default:
		l.putUint(5, whole)
	}
	l.put(8, ".")
	if frac < 10 {
		l.put(9, "0")
		l.putUint(10, frac)
	} else {
		l.putUint(9, frac)
	}
	l.put(11, "uSv/h")
	if milli {
		l.put(11, "m")
	}
	return top, l.String()
}

// Render draws both rows on d. It stops at the first failing write.
func (f Formatter) Render(d Display, r Reading) error {
	top, bottom := f.Lines(r)
	if err := d.WriteText(0, 0, top); err != nil {
		return err
	}
	return d.WriteText(1, 0, bottom)
}

// line is a fixed-width row buffer. Writes are clipped at the right edge.
type line struct {
	buf [Width]byte
	num [20]byte
}

func (l *line) reset() {
	for i := range l.buf {
		l.buf[i] = ' '
	}
}

// put writes s at col and returns the number of bytes of s.
func (l *line) put(col int, s string) int {
	for i := 0; i < len(s); i++ {
		if c := col + i; c >= 0 && c < Width {
			l.buf[c] = s[i]
		}
	}
	return len(s)
}

func (l *line) putBytes(col int, b []byte) int {
	for i, ch := range b {
		if c := col + i; c >= 0 && c < Width {
			l.buf[c] = ch
		}
	}
	return len(b)
}

func (l *line) putUint(col int, v uint32) int {
	return l.putBytes(col, strconv.AppendUint(l.num[:0], uint64(v), 10))
}

func (l *line) putInt(col int, v int32) int {
	return l.putBytes(col, strconv.AppendInt(l.num[:0], int64(v), 10))
}

func (l *line) String() string {
	return string(l.buf[:])
}
