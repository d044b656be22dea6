package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/shiftreg/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Device        string       `json:"device"`
	Sample        *uint64      `json:"sample"`
	Inputs        []InputJSON  `json:"inputs"`
	Ready         bool         `json:"ready"`
	Acquisitions  int64        `json:"acquisitions"`
	Failures      int64        `json:"failures"`
	LastError     string       `json:"last_error,omitempty"`
	LastAcquired  string       `json:"last_acquired,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        []CountsJSON `json:"event_counts"`
	Config        ConfigJSON   `json:"config"`
}

// InputJSON is the state of one input. Input is 1-indexed.
type InputJSON struct {
	Input int    `json:"input"`
	State string `json:"state"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of one input's change counts.
type CountsJSON struct {
	Input int `json:"input"`
	On    int `json:"on"`
	Off   int `json:"off"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Backend     string `json:"backend"`
	SerialOut   int    `json:"serial_out"`
	Load        int    `json:"load"`
	Clock       int    `json:"clock"`
	Bits        int    `json:"bits"`
	SettleUs    int64  `json:"settle_us"`
	IntervalMs  int64  `json:"interval_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	InfluxURL   string `json:"influx_url,omitempty"`
}

// InputStates returns the state of every input, input 1 first. States are
// UNKNOWN until the first acquisition.
func InputStates(snap Snapshot) []InputJSON {
	out := make([]InputJSON, snap.Config.Bits)
	for i := range out {
		state := "UNKNOWN"
		if s, ok := snap.Input(i + 1); ok {
			state = string(s)
		}
		out[i] = InputJSON{Input: i + 1, State: state}
	}
	return out
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Device:        snap.Config.Device,
		Inputs:        InputStates(snap),
		Ready:         snap.Baselined,
		Acquisitions:  snap.Acquisitions,
		Failures:      snap.Failures,
		LastError:     snap.LastError,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts:        buildCounts(snap.Counts),
		Config: ConfigJSON{
			Backend:     snap.Config.Backend,
			SerialOut:   snap.Config.SerialOut,
			Load:        snap.Config.Load,
			Clock:       snap.Config.Clock,
			Bits:        snap.Config.Bits,
			SettleUs:    snap.Config.SettleUs,
			IntervalMs:  snap.Config.IntervalMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			InfluxURL:   snap.Config.InfluxURL,
		},
	}
	if snap.HasSample {
		v := snap.Sample
		inner.Sample = &v
		inner.LastAcquired = snap.LastAcquired.UTC().Format(time.RFC3339Nano)
	}
	return inner
}

func buildCounts(counts logic.EventCounts) []CountsJSON {
	out := make([]CountsJSON, len(counts))
	for i, c := range counts {
		out[i] = CountsJSON{Input: i + 1, On: c.On, Off: c.Off}
	}
	return out
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
