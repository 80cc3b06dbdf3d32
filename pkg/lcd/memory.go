// Package lcd provides character display implementations for the appliance
// core: an in-memory framebuffer, a serial LCD backpack and a fan-out.
package lcd

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/itohio/gogeiger/pkg/display"
)

// Rows is the number of display rows.
const Rows = 2

// ErrOutOfBounds is returned for writes starting outside the display.
var ErrOutOfBounds = errors.New("position out of bounds")

// Memory is a framebuffer display. Text past the right edge is dropped.
type Memory struct {
	mu   sync.RWMutex
	rows [Rows][display.Width]byte
	gen  uint64
}

var _ display.Display = (*Memory)(nil)

// NewMemory creates a blank framebuffer.
func NewMemory() *Memory {
	m := &Memory{}
	m.clear()
	return m
}

// WriteText writes text starting at row, col.
func (m *Memory) WriteText(row, col int, text string) error {
	if row < 0 || row >= Rows || col < 0 || col >= display.Width {
		return fmt.Errorf("write at %d,%d: %w", row, col, ErrOutOfBounds)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < len(text) && col+i < display.Width; i++ {
		m.rows[row][col+i] = text[i]
	}
	m.gen++
	return nil
}

// Clear blanks the framebuffer.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
	m.gen++
	return nil
}

func (m *Memory) clear() {
	for r := range m.rows {
		for c := range m.rows[r] {
			m.rows[r][c] = ' '
		}
	}
}

// Lines returns a copy of both rows.
func (m *Memory) Lines() [Rows]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out [Rows]string
	for r := range m.rows {
		out[r] = string(m.rows[r][:])
	}
	return out
}

// Generation increments on every successful write or clear.
func (m *Memory) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen
}

// String returns the rows joined by a newline.
func (m *Memory) String() string {
	lines := m.Lines()
	return strings.Join(lines[:], "\n")
}
