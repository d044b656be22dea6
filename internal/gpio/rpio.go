//go:build linux

package gpio

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"
)

// maxBCMPin is the highest GPIO number on the BCM283x register map.
const maxBCMPin = 53

// RPIO drives BCM-numbered pins through /dev/gpiomem register access.
// It is faster per edge than the character device, at the cost of
// working only on Raspberry Pi SoCs.
type RPIO struct {
	mu       sync.Mutex
	pins     []rpio.Pin
	released bool
}

// OpenRPIO maps the GPIO registers.
func OpenRPIO() (*RPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, errors.Wrap(err, "failed to open gpio memory")
	}
	return &RPIO{}, nil
}

func (r *RPIO) pin(pin int) (rpio.Pin, error) {
	if r.released {
		return 0, errors.Errorf("pin %d: gpio memory released", pin)
	}
	if pin < 0 || pin > maxBCMPin {
		return 0, errors.Errorf("pin %d out of range (0..%d)", pin, maxBCMPin)
	}
	return rpio.Pin(pin), nil
}

// ConfigureInput sets the pin as input with the given pull resistor.
func (r *RPIO) ConfigureInput(pin int, pull Pull) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.pin(pin)
	if err != nil {
		return errors.Wrap(err, "failed to configure input")
	}
	p.Input()
	switch pull {
	case PullDown:
		p.PullDown()
	case PullUp:
		p.PullUp()
	default:
		p.PullOff()
	}
	r.pins = append(r.pins, p)
	return nil
}

// ConfigureOutput sets the pin as output. The level is written before the
// direction changes so the line comes up at initial.
func (r *RPIO) ConfigureOutput(pin int, initial Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.pin(pin)
	if err != nil {
		return errors.Wrap(err, "failed to configure output")
	}
	p.Write(rpio.State(initial))
	p.Output()
	p.Write(rpio.State(initial))
	r.pins = append(r.pins, p)
	return nil
}

func (r *RPIO) Write(pin int, level Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.pin(pin)
	if err != nil {
		return errors.Wrap(err, "failed to write")
	}
	if level == High {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (r *RPIO) Read(pin int) (Level, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.pin(pin)
	if err != nil {
		return Low, errors.Wrap(err, "failed to read")
	}
	return LevelOf(p.Read() == rpio.High), nil
}

// Release returns every touched pin to input with pull-down and unmaps
// the registers.
func (r *RPIO) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return nil
	}
	r.released = true

	for _, p := range r.pins {
		p.Input()
		p.PullDown()
	}
	r.pins = nil

	if err := rpio.Close(); err != nil {
		return errors.Wrap(err, "failed to close gpio memory")
	}
	return nil
}
