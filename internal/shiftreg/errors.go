package shiftreg

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports an invalid Config. No pin was touched.
	ErrConfiguration = errors.New("shiftreg: invalid configuration")

	// ErrHardware reports a failure of the Pin Interface.
	ErrHardware = errors.New("shiftreg: hardware fault")

	// ErrReleased is returned by operations on a closed driver.
	ErrReleased = errors.New("shiftreg: driver released")
)

// InitError is returned by New when a pin could not be set up.
// Pins configured before the failure have been released.
type InitError struct {
	Role string
	Pin  int
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("shiftreg: init %s pin %d: %v", e.Role, e.Pin, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func hardwareFault(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrHardware, op, err)
}
