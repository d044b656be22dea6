// internal/config/config.go
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration of one register chain and the
// outputs of the acquisition loop.
type Config struct {
	Device DeviceConfig `yaml:"device"`
	Loop   LoopConfig   `yaml:"loop"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
	Influx InfluxConfig `yaml:"influx"`
}

type DeviceConfig struct {
	Name     string     `yaml:"name"`
	Backend  string     `yaml:"backend"`
	Chip     string     `yaml:"chip"`
	Pins     PinsConfig `yaml:"pins"`
	Bits     *int       `yaml:"bits"`
	SettleUs int64      `yaml:"settle_us"`
}

// PinsConfig uses pointers so an absent pin can be told apart from pin 0.
type PinsConfig struct {
	SerialOut *int `yaml:"serial_out"`
	Load      *int `yaml:"load"`
	Clock     *int `yaml:"clock"`
}

type LoopConfig struct {
	IntervalMs  int64  `yaml:"interval_ms"`
	DebounceMs  int64  `yaml:"debounce_ms"`
	HeartbeatMs *int64 `yaml:"heartbeat_ms"` // 0 disables
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	TopicPrefix string `yaml:"topic_prefix"`
	ClientID    string `yaml:"client_id"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type InfluxConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// Load reads and strictly decodes the file at path. Unknown keys are errors.
// The result is not normalized.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse strictly decodes YAML. An empty document yields a zero Config.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
