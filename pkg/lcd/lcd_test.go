package lcd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"github.com/itohio/gogeiger/pkg/display"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	assert.Equal(t, [Rows]string{"                ", "                "}, m.Lines())

	require.NoError(t, m.WriteText(0, 0, "12 400V25% 30cpm"))
	require.NoError(t, m.WriteText(1, 12, "Sv/h and more"))
	assert.Equal(t, "12 400V25% 30cpm", m.Lines()[0])
	assert.Equal(t, "            Sv/h", m.Lines()[1])
	assert.Equal(t, uint64(2), m.Generation())

	require.NoError(t, m.Clear())
	assert.Equal(t, "                \n                ", m.String())
	assert.Equal(t, uint64(3), m.Generation())
}

func TestMemory_OutOfBounds(t *testing.T) {
	m := NewMemory()

	for _, pos := range [][2]int{{-1, 0}, {2, 0}, {0, 16}, {1, -1}} {
		err := m.WriteText(pos[0], pos[1], "x")
		assert.ErrorIs(t, err, ErrOutOfBounds, "row %d col %d", pos[0], pos[1])
	}
	assert.Equal(t, uint64(0), m.Generation())
}

func TestSerial_Encoding(t *testing.T) {
	var buf bytes.Buffer
	s := NewSerialWriter(&buf)

	require.NoError(t, s.WriteText(0, 0, "ab"))
	require.NoError(t, s.WriteText(1, 3, "cd"))
	require.NoError(t, s.Clear())
	require.NoError(t, s.WriteText(1, 14, "xyz"))

	want := []byte{
		0xFE, 0x80, 'a', 'b',
		0xFE, 0xC3, 'c', 'd',
		0xFE, 0x01,
		0xFE, 0xCE, 'x', 'y',
	}
	assert.Equal(t, want, buf.Bytes())
	assert.NoError(t, s.Close())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("port gone")
}

func TestSerial_WriteError(t *testing.T) {
	s := NewSerialWriter(failingWriter{})

	err := s.WriteText(0, 0, "x")
	assert.ErrorContains(t, err, "port gone")
	assert.ErrorContains(t, s.Clear(), "port gone")
	assert.ErrorIs(t, s.WriteText(3, 0, "x"), ErrOutOfBounds)
}

func TestSerial_Open_MissingPort(t *testing.T) {
	_, err := Open("/dev/does-not-exist-gogeiger", 0)
	assert.Error(t, err)
}

func TestBackpack_RoundTrip(t *testing.T) {
	mem := NewMemory()
	s := NewSerialWriter(NewBackpack(mem))
	f := display.NewFormatter(display.DefaultConfig())

	require.NoError(t, f.Render(s, display.Reading{Pulses: 12, Voltage: 400, DutyPercent: 25, CPM: 30, Seconds: 42}))
	assert.Equal(t, [Rows]string{"12 400V25% 30cpm", "42     0.18uSv/h"}, mem.Lines())

	require.NoError(t, s.Clear())
	require.NoError(t, s.WriteText(1, 5, "hi"))
	assert.Equal(t, [Rows]string{"                ", "     hi         "}, mem.Lines())
}

func TestBackpack_SplitCommand(t *testing.T) {
	mem := NewMemory()
	b := NewBackpack(mem)

	_, _ = b.Write([]byte{0xFE})
	_, _ = b.Write([]byte{0xC2, 'o'})
	_, _ = b.Write([]byte{'k'})
	assert.Equal(t, "  ok            ", mem.Lines()[1])
}

type brokenDisplay struct{}

func (brokenDisplay) WriteText(int, int, string) error { return errors.New("broken write") }
func (brokenDisplay) Clear() error                     { return errors.New("broken clear") }

func TestMulti(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	m := Multi{a, brokenDisplay{}, b}

	err := m.WriteText(0, 0, "both")
	assert.EqualError(t, err, "broken write")
	assert.Equal(t, "both            ", a.Lines()[0])
	assert.Equal(t, "both            ", b.Lines()[0])

	assert.EqualError(t, m.Clear(), "broken clear")
	assert.Equal(t, "                ", a.Lines()[0])

	assert.NoError(t, Multi{a, b}.WriteText(1, 0, "ok"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", describe(&enumerator.PortDetails{Name: "/dev/ttyS0"}))
	assert.Equal(t, "CH340", describe(&enumerator.PortDetails{IsUSB: true, Product: "CH340"}))
	assert.Equal(t, "1a86:7523", describe(&enumerator.PortDetails{IsUSB: true, VID: "1a86", PID: "7523"}))
}
