// Package shiftreg drives a parallel-in/serial-out shift register chain
// (74HC165 and compatibles) over three GPIO lines.
//
// An acquisition is one load pulse followed by Bits clock pulses. The serial
// line is sampled before each clock pulse, so the first bit read is the one
// the device presents right after loading. Every edge is followed by a
// blocking settle delay; correctness depends on real elapsed time.
package shiftreg

import (
	"fmt"
	"sync"
	"time"

	"github.com/sweeney/shiftreg/internal/gpio"
)

// Option customizes a Driver.
type Option func(*Driver)

// WithSleep replaces the settle delay function. Tests use it to avoid real
// delays; production code should keep time.Sleep.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Driver) { d.sleep = sleep }
}

// Driver owns three pins of a Pins implementation for its lifetime.
// Acquisitions and Close are serialized, so Close never interrupts a pulse.
type Driver struct {
	mu       sync.Mutex
	pins     gpio.Pins
	cfg      Config
	settle   time.Duration
	sleep    func(time.Duration)
	released bool
}

// New validates cfg, configures the pins and sets the idle levels
// (load high, clock low). On failure no pins stay configured.
func New(pins gpio.Pins, cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Driver{
		pins:   pins,
		cfg:    cfg,
		settle: cfg.settle(),
		sleep:  time.Sleep,
	}
	for _, o := range opts {
		o(d)
	}

	if err := d.init(); err != nil {
		pins.Release()
		return nil, err
	}
	return d, nil
}

func (d *Driver) init() error {
	// Pull-down keeps a disconnected device reading as zeros.
	if err := d.pins.ConfigureInput(d.cfg.SerialOut, gpio.PullDown); err != nil {
		return &InitError{Role: RoleSerialOut, Pin: d.cfg.SerialOut, Err: hardwareFault("configure input", err)}
	}
	// Load idles high: the device shifts, and latches on the next low pulse.
	if err := d.pins.ConfigureOutput(d.cfg.Load, gpio.High); err != nil {
		return &InitError{Role: RoleLoad, Pin: d.cfg.Load, Err: hardwareFault("configure output", err)}
	}
	if err := d.pins.ConfigureOutput(d.cfg.Clock, gpio.Low); err != nil {
		return &InitError{Role: RoleClock, Pin: d.cfg.Clock, Err: hardwareFault("configure output", err)}
	}
	return nil
}

// pulse drives pin to active, settles, returns it to idle, settles.
// The idle write is attempted even if the first write failed.
func (d *Driver) pulse(pin int, active, idle gpio.Level) error {
	err := d.pins.Write(pin, active)
	if err == nil {
		d.sleep(d.settle)
	}
	if rerr := d.pins.Write(pin, idle); err == nil {
		err = rerr
	}
	d.sleep(d.settle)
	if err != nil {
		return hardwareFault(fmt.Sprintf("pulse pin %d", pin), err)
	}
	return nil
}

func (d *Driver) loadPulse() error {
	return d.pulse(d.cfg.Load, gpio.Low, gpio.High)
}

func (d *Driver) clockPulse() error {
	return d.pulse(d.cfg.Clock, gpio.High, gpio.Low)
}

// Read latches the parallel inputs and shifts in Bits bits.
func (d *Driver) Read() (Sample, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return 0, ErrReleased
	}
	return d.acquire()
}

func (d *Driver) acquire() (Sample, error) {
	if err := d.loadPulse(); err != nil {
		return 0, err
	}

	var s Sample
	for bit := 0; bit < d.cfg.Bits; bit++ {
		level, err := d.pins.Read(d.cfg.SerialOut)
		if err != nil {
			return 0, hardwareFault(fmt.Sprintf("read bit %d", bit), err)
		}
		if level == gpio.High {
			s |= 1 << uint(bit)
		}
		if err := d.clockPulse(); err != nil {
			return 0, err
		}
	}
	return s, nil
}

// ReadBit performs a full acquisition and reports bit (0-indexed).
// The whole word is always clocked through so the next Read starts clean.
func (d *Driver) ReadBit(bit int) (bool, error) {
	if bit < 0 || bit >= d.cfg.Bits {
		return false, fmt.Errorf("bit %d out of range 0..%d", bit, d.cfg.Bits-1)
	}
	s, err := d.Read()
	if err != nil {
		return false, err
	}
	return s.Bit(bit), nil
}

// Info describes the driver's wiring. It does not touch the pins.
func (d *Driver) Info() Info {
	return d.cfg.Info()
}

// Bits returns the configured word width.
func (d *Driver) Bits() int {
	return d.cfg.Bits
}

// Active reports whether the driver still owns its pins.
func (d *Driver) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.released
}

// Close releases the pins. It waits for an acquisition in progress and
// releases exactly once; later calls return nil.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil
	}
	d.released = true
	if err := d.pins.Release(); err != nil {
		return hardwareFault("release", err)
	}
	return nil
}
