// Package gpio provides digital pin access with hardware abstraction.
// Real backends use the Linux GPIO character device (go-gpiocdev) or the
// BCM283x register map (go-rpio). Fakes allow testing without hardware.
package gpio

import (
	"fmt"
	"strings"
)

// Level is the logic level of a digital line.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// LevelOf converts a bool to a Level.
func LevelOf(b bool) Level {
	if b {
		return High
	}
	return Low
}

// Pull is the bias applied to an input line.
type Pull int

const (
	PullNone Pull = iota
	PullDown
	PullUp
)

func (p Pull) String() string {
	switch p {
	case PullDown:
		return "pull-down"
	case PullUp:
		return "pull-up"
	default:
		return "none"
	}
}

// Pins is the capability set a protocol driver needs from the platform.
// Pin identifiers are already resolved (BCM numbers or chip line offsets).
type Pins interface {
	// ConfigureInput sets pin as an input with the given bias.
	ConfigureInput(pin int, pull Pull) error

	// ConfigureOutput sets pin as an output already driven to initial.
	ConfigureOutput(pin int, initial Level) error

	// Write drives an output. The level is applied before Write returns.
	Write(pin int, level Level) error

	// Read samples an input.
	Read(pin int) (Level, error)

	// Release restores every configured pin to a safe state.
	// Safe to call more than once.
	Release() error
}

// Backend names accepted by Open.
const (
	BackendGPIOCDev = "gpiocdev"
	BackendRPIO     = "rpio"
)

// DefaultChip is the gpiochip used on a Raspberry Pi header.
const DefaultChip = "gpiochip0"

// Open returns the Pins implementation for the named backend.
// chip is only used by the gpiocdev backend.
func Open(backend, chip string) (Pins, error) {
	switch strings.ToLower(backend) {
	case "", BackendGPIOCDev:
		if chip == "" {
			chip = DefaultChip
		}
		return OpenChip(chip)
	case BackendRPIO:
		return OpenRPIO()
	default:
		return nil, fmt.Errorf("gpio: unknown backend %q", backend)
	}
}
