package lcd

import (
	"errors"

	"github.com/itohio/gogeiger/pkg/display"
)

// Multi mirrors every operation onto several displays. A failing display
// does not stop the others; their errors are joined.
type Multi []display.Display

var _ display.Display = Multi(nil)

// WriteText writes to every display.
func (m Multi) WriteText(row, col int, text string) error {
	var errs []error
	for _, d := range m {
		if err := d.WriteText(row, col, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear clears every display.
func (m Multi) Clear() error {
	var errs []error
	for _, d := range m {
		if err := d.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
