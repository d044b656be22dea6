// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

// Validate checks a normalized configuration.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	d := cfg.Device

	switch strings.ToLower(d.Backend) {
	case "gpiocdev", "rpio":
	default:
		return fmt.Errorf("device.backend: unknown backend %q", d.Backend)
	}

	if d.Bits == nil || *d.Bits < 1 || *d.Bits > 64 {
		return fmt.Errorf("device.bits must be 1..64")
	}
	if d.SettleUs < DefaultSettleUs {
		return fmt.Errorf("device.settle_us must be at least %d, got %d", DefaultSettleUs, d.SettleUs)
	}

	pins := []struct {
		name string
		pin  *int
	}{
		{"serial_out", d.Pins.SerialOut},
		{"load", d.Pins.Load},
		{"clock", d.Pins.Clock},
	}
	seen := make(map[int]string, len(pins))
	for _, p := range pins {
		if p.pin == nil {
			return fmt.Errorf("device.pins.%s is required", p.name)
		}
		if *p.pin < 0 {
			return fmt.Errorf("device.pins.%s must not be negative, got %d", p.name, *p.pin)
		}
		if other, ok := seen[*p.pin]; ok {
			return fmt.Errorf("device.pins.%s and device.pins.%s share pin %d", other, p.name, *p.pin)
		}
		seen[*p.pin] = p.name
	}

	if cfg.Loop.IntervalMs <= 0 {
		return fmt.Errorf("loop.interval_ms must be positive, got %d", cfg.Loop.IntervalMs)
	}
	if cfg.Loop.DebounceMs < 0 {
		return fmt.Errorf("loop.debounce_ms must not be negative, got %d", cfg.Loop.DebounceMs)
	}
	if cfg.Loop.HeartbeatMs != nil && *cfg.Loop.HeartbeatMs < 0 {
		return fmt.Errorf("loop.heartbeat_ms must not be negative, got %d", *cfg.Loop.HeartbeatMs)
	}

	if cfg.Influx.URL != "" && (cfg.Influx.Org == "" || cfg.Influx.Bucket == "") {
		return fmt.Errorf("influx: org and bucket are required when url is set")
	}

	return nil
}
