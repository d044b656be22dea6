package shiftreg

import (
	"fmt"
	"time"
)

const (
	// DefaultBits is the width of a single 74HC165.
	DefaultBits = 8

	// MaxBits is the widest chain a Sample can hold.
	MaxBits = 64

	// MinSettle is the shortest hold after each edge. It covers the
	// 74HC165 minimum pulse width and propagation delay with margin.
	MinSettle = 10 * time.Microsecond

	// DefaultSettle is used when Config.Settle is zero.
	DefaultSettle = MinSettle
)

// Role names for the three lines.
const (
	RoleSerialOut = "serial-out"
	RoleLoad      = "load"
	RoleClock     = "clock"
)

// Config describes the wiring of one register chain.
type Config struct {
	SerialOut int // device QH output, read by us
	Load      int // device SH/LD, active low
	Clock     int // device CLK, rising edge shifts
	Bits      int
	Settle    time.Duration // 0 means DefaultSettle
}

// DefaultConfig returns the Raspberry Pi wiring (BCM 17/27/22) for one device.
func DefaultConfig() Config {
	return Config{
		SerialOut: 17,
		Load:      27,
		Clock:     22,
		Bits:      DefaultBits,
		Settle:    DefaultSettle,
	}
}

// Validate checks the configuration without touching hardware.
func (c Config) Validate() error {
	if c.Bits < 1 || c.Bits > MaxBits {
		return configError("bits must be 1..%d, got %d", MaxBits, c.Bits)
	}
	if c.Settle != 0 && c.Settle < MinSettle {
		return configError("settle %v is below the device minimum %v", c.Settle, MinSettle)
	}

	seen := make(map[int]string, 3)
	for _, p := range []struct {
		role string
		pin  int
	}{
		{RoleSerialOut, c.SerialOut},
		{RoleLoad, c.Load},
		{RoleClock, c.Clock},
	} {
		if p.pin < 0 {
			return configError("%s pin must not be negative, got %d", p.role, p.pin)
		}
		if other, ok := seen[p.pin]; ok {
			return configError("%s and %s share pin %d", other, p.role, p.pin)
		}
		seen[p.pin] = p.role
	}
	return nil
}

func (c Config) settle() time.Duration {
	if c.Settle == 0 {
		return DefaultSettle
	}
	return c.Settle
}

// Info is a read-only description of a driver.
type Info struct {
	SerialOut int
	Load      int
	Clock     int
	Bits      int
	Settle    time.Duration
}

// Info describes the wiring this Config would produce.
func (c Config) Info() Info {
	return Info{
		SerialOut: c.SerialOut,
		Load:      c.Load,
		Clock:     c.Clock,
		Bits:      c.Bits,
		Settle:    c.settle(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("bits=%d serial-out=%d load=%d clock=%d settle=%v",
		i.Bits, i.SerialOut, i.Load, i.Clock, i.Settle)
}
