//go:build linux

package gpio

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// Consumer is the label the kernel shows for lines requested by this process.
const Consumer = "shiftreg"

// Chip drives lines on a Linux GPIO character device.
type Chip struct {
	mu       sync.Mutex
	chip     *gpiocdev.Chip
	lines    map[int]*gpiocdev.Line
	order    []int
	released bool
}

// OpenChip opens the named gpiochip (e.g. "gpiochip0").
func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{
		chip:  chip,
		lines: make(map[int]*gpiocdev.Line),
	}, nil
}

// ConfigureInput requests the line as an input with the given bias.
func (c *Chip) ConfigureInput(pin int, pull Pull) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return fmt.Errorf("configure input %d: chip released", pin)
	}
	if _, ok := c.lines[pin]; ok {
		return fmt.Errorf("configure input %d: line already requested", pin)
	}

	var (
		line *gpiocdev.Line
		err  error
	)
	switch pull {
	case PullDown:
		line, err = c.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	case PullUp:
		line, err = c.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	default:
		line, err = c.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithBiasDisabled)
	}
	if err != nil {
		return fmt.Errorf("request input %d: %w", pin, err)
	}
	c.add(pin, line)
	return nil
}

// ConfigureOutput requests the line as an output at the initial level.
func (c *Chip) ConfigureOutput(pin int, initial Level) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return fmt.Errorf("configure output %d: chip released", pin)
	}
	if _, ok := c.lines[pin]; ok {
		return fmt.Errorf("configure output %d: line already requested", pin)
	}

	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(int(initial)))
	if err != nil {
		return fmt.Errorf("request output %d: %w", pin, err)
	}
	c.add(pin, line)
	return nil
}

func (c *Chip) add(pin int, line *gpiocdev.Line) {
	c.lines[pin] = line
	c.order = append(c.order, pin)
}

func (c *Chip) line(pin int) (*gpiocdev.Line, error) {
	l, ok := c.lines[pin]
	if !ok || c.released {
		return nil, fmt.Errorf("line %d not configured", pin)
	}
	return l, nil
}

// Write sets an output line.
func (c *Chip) Write(pin int, level Level) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.line(pin)
	if err != nil {
		return err
	}
	if err := l.SetValue(int(level)); err != nil {
		return fmt.Errorf("write line %d: %w", pin, err)
	}
	return nil
}

// Read returns the value of a line.
func (c *Chip) Read(pin int) (Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, err := c.line(pin)
	if err != nil {
		return Low, err
	}
	v, err := l.Value()
	if err != nil {
		return Low, fmt.Errorf("read line %d: %w", pin, err)
	}
	return LevelOf(v != 0), nil
}

// Release reconfigures every requested line to input with pull-down
// (matching Pi boot defaults), then closes the lines and the chip.
func (c *Chip) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil
	}
	c.released = true

	var errs []error
	for _, pin := range c.order {
		l := c.lines[pin]
		if err := l.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line %d: %w", pin, err))
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", pin, err))
		}
	}
	if err := c.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("release errors: %v", errs)
	}
	return nil
}
