// internal/config/normalize.go
package config

import "strings"

// Defaults applied by Normalize.
const (
	DefaultDeviceName  = "hc165"
	DefaultBackend     = "gpiocdev"
	DefaultChip        = "gpiochip0"
	DefaultSerialOut   = 17
	DefaultLoad        = 27
	DefaultClock       = 22
	DefaultBits        = 8
	DefaultSettleUs    = 10
	DefaultIntervalMs  = 1000
	DefaultHeartbeatMs = 900000
	DefaultMeasurement = "shiftreg"
)

// Default returns a fully normalized configuration with no file.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

// Normalize fills every unset field with its default.
// It MUST be called before Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Device
	if d.Name == "" {
		d.Name = DefaultDeviceName
	}
	d.Backend = strings.ToLower(d.Backend)
	if d.Backend == "" {
		d.Backend = DefaultBackend
	}
	if d.Chip == "" {
		d.Chip = DefaultChip
	}
	if d.Pins.SerialOut == nil {
		d.Pins.SerialOut = intPtr(DefaultSerialOut)
	}
	if d.Pins.Load == nil {
		d.Pins.Load = intPtr(DefaultLoad)
	}
	if d.Pins.Clock == nil {
		d.Pins.Clock = intPtr(DefaultClock)
	}
	// An explicit bits: 0 is left for Validate to reject.
	if d.Bits == nil {
		d.Bits = intPtr(DefaultBits)
	}
	if d.SettleUs == 0 {
		d.SettleUs = DefaultSettleUs
	}

	if cfg.Loop.IntervalMs == 0 {
		cfg.Loop.IntervalMs = DefaultIntervalMs
	}
	if cfg.Loop.HeartbeatMs == nil {
		hb := int64(DefaultHeartbeatMs)
		cfg.Loop.HeartbeatMs = &hb
	}

	if cfg.Influx.Measurement == "" {
		cfg.Influx.Measurement = DefaultMeasurement
	}
}

func intPtr(v int) *int { return &v }
