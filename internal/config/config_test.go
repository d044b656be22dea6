// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
device:
  name: panel
  backend: rpio
  pins: {serial_out: 5, load: 6, clock: 13}
  bits: 16
  settle_us: 25
loop:
  interval_ms: 250
  debounce_ms: 40
  heartbeat_ms: 0
mqtt:
  broker: tcp://broker:1883
  topic_prefix: home/panel
http:
  addr: ":8080"
influx:
  url: http://influx:8086
  org: home
  bucket: inputs
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiftreg.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	Normalize(cfg)
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Device.Name != "panel" {
		t.Errorf("name: got %q, want panel", cfg.Device.Name)
	}
	if cfg.Device.Backend != "rpio" {
		t.Errorf("backend: got %q, want rpio", cfg.Device.Backend)
	}
	if *cfg.Device.Pins.SerialOut != 5 || *cfg.Device.Pins.Load != 6 || *cfg.Device.Pins.Clock != 13 {
		t.Errorf("pins: got %d/%d/%d, want 5/6/13",
			*cfg.Device.Pins.SerialOut, *cfg.Device.Pins.Load, *cfg.Device.Pins.Clock)
	}
	if *cfg.Device.Bits != 16 {
		t.Errorf("bits: got %d, want 16", *cfg.Device.Bits)
	}
	if cfg.Device.SettleUs != 25 {
		t.Errorf("settle: got %d, want 25", cfg.Device.SettleUs)
	}
	if cfg.Loop.IntervalMs != 250 || cfg.Loop.DebounceMs != 40 {
		t.Errorf("loop: got %+v", cfg.Loop)
	}
	if *cfg.Loop.HeartbeatMs != 0 {
		t.Errorf("heartbeat: got %d, want 0 (disabled)", *cfg.Loop.HeartbeatMs)
	}
	if cfg.MQTT.TopicPrefix != "home/panel" {
		t.Errorf("topic prefix: got %q", cfg.MQTT.TopicPrefix)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr: got %q", cfg.HTTP.Addr)
	}
	if cfg.Influx.Measurement != DefaultMeasurement {
		t.Errorf("measurement: got %q, want default", cfg.Influx.Measurement)
	}
	if cfg.Device.Chip != DefaultChip {
		t.Errorf("chip: got %q, want default", cfg.Device.Chip)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("device:\n  bitz: 8\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "bitz") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Device.Bits != nil {
		t.Error("expected unset bits")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if *cfg.Device.Pins.SerialOut != 17 || *cfg.Device.Pins.Load != 27 || *cfg.Device.Pins.Clock != 22 {
		t.Error("default pins should be BCM 17/27/22")
	}
	if *cfg.Device.Bits != 8 {
		t.Errorf("bits: got %d, want 8", *cfg.Device.Bits)
	}
	if cfg.Device.SettleUs != 10 {
		t.Errorf("settle: got %d, want 10", cfg.Device.SettleUs)
	}
	if cfg.Loop.IntervalMs != 1000 {
		t.Errorf("interval: got %d, want 1000", cfg.Loop.IntervalMs)
	}
	if *cfg.Loop.HeartbeatMs != DefaultHeartbeatMs {
		t.Errorf("heartbeat: got %d, want %d", *cfg.Loop.HeartbeatMs, DefaultHeartbeatMs)
	}
}

func TestNormalize_Nil(t *testing.T) {
	Normalize(nil)
}
