package lcd

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/itohio/gogeiger/pkg/display"
)

const (
	// DefaultBaudRate is the factory rate of common HD44780 serial backpacks.
	DefaultBaudRate = 9600

	// CommandPrefix introduces an HD44780 instruction byte.
	CommandPrefix = 0xFE
	// CmdClear clears the display and homes the cursor.
	CmdClear = 0x01
	// CmdSetDDRAM sets the cursor address; the low 7 bits carry the address.
	CmdSetDDRAM = 0x80
)

// rowOffsets are the DDRAM addresses of the first column of each row.
var rowOffsets = [Rows]byte{0x00, 0x40}

// Port describes an available serial port.
type Port struct {
	Name        string
	Description string // USB product or VID:PID, empty for other ports
}

// Ports returns the serial ports present on the host.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	result := make([]Port, 0, len(details))
	for _, d := range details {
		result = append(result, Port{
			Name:        d.Name,
			Description: describe(d),
		})
	}
	return result, nil
}

func describe(d *enumerator.PortDetails) string {
	switch {
	case !d.IsUSB:
		return ""
	case d.Product != "":
		return d.Product
	default:
		return d.VID + ":" + d.PID
	}
}

// Serial drives an HD44780 character LCD through a serial backpack.
type Serial struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	buf    []byte
	log    logrus.FieldLogger
}

var _ display.Display = (*Serial)(nil)

// Open opens port at baudRate and returns a display writing to it.
func Open(port string, baudRate int) (*Serial, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	conn, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	s := NewSerialWriter(conn)
	s.closer = conn
	s.log = s.log.WithField("port", port)
	return s, nil
}

// NewSerialWriter returns a display that encodes backpack commands into w.
func NewSerialWriter(w io.Writer) *Serial {
	return &Serial{
		w:   w,
		buf: make([]byte, 0, 2+display.Width),
		log: logrus.StandardLogger(),
	}
}

// SetLogger replaces the logger used to report close failures.
func (s *Serial) SetLogger(l logrus.FieldLogger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = l
}

// WriteText moves the cursor to row, col and writes text clipped to the row.
func (s *Serial) WriteText(row, col int, text string) error {
	if row < 0 || row >= Rows || col < 0 || col >= display.Width {
		return fmt.Errorf("write at %d,%d: %w", row, col, ErrOutOfBounds)
	}
	if n := display.Width - col; len(text) > n {
		text = text[:n]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf[:0], CommandPrefix, CmdSetDDRAM|(rowOffsets[row]+byte(col)))
	s.buf = append(s.buf, text...)
	if _, err := s.w.Write(s.buf); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// Clear clears the display.
func (s *Serial) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.w.Write([]byte{CommandPrefix, CmdClear}); err != nil {
		return fmt.Errorf("failed to clear display: %w", err)
	}
	return nil
}

// Close closes the underlying port, if any.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	if err != nil {
		s.log.Errorf("Error closing serial port: %v", err)
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}
