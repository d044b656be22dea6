//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

// OpenChip returns an error on non-Linux platforms.
func OpenChip(name string) (*Chip, error) {
	return nil, errUnsupported
}

func (c *Chip) ConfigureInput(pin int, pull Pull) error { return errUnsupported }
func (c *Chip) ConfigureOutput(pin int, initial Level) error { return errUnsupported }
func (c *Chip) Write(pin int, level Level) error { return errUnsupported }
func (c *Chip) Read(pin int) (Level, error) { return Low, errUnsupported }
func (c *Chip) Release() error { return nil }

// RPIO is not available on non-Linux platforms.
type RPIO struct{}

// OpenRPIO returns an error on non-Linux platforms.
func OpenRPIO() (*RPIO, error) {
	return nil, errUnsupported
}

func (r *RPIO) ConfigureInput(pin int, pull Pull) error { return errUnsupported }
func (r *RPIO) ConfigureOutput(pin int, initial Level) error { return errUnsupported }
func (r *RPIO) Write(pin int, level Level) error { return errUnsupported }
func (r *RPIO) Read(pin int) (Level, error) { return Low, errUnsupported }
func (r *RPIO) Release() error { return nil }
