// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sweeney/shiftreg/internal/logic"
)

// DefaultTopicPrefix is used when no prefix is configured; the device name
// is appended.
const DefaultTopicPrefix = "shiftreg"

// Topics holds the topics a publisher writes to.
type Topics struct {
	Sample string // every acquisition, retained
	Events string // debounced input changes
	System string // lifecycle events and LWT
}

// NewTopics derives the topic set from a prefix such as "shiftreg/hc165".
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	return Topics{
		Sample: prefix + "/sample",
		Events: prefix + "/events",
		System: prefix + "/system",
	}
}

// Publisher publishes acquisitions and events to MQTT.
type Publisher interface {
	// PublishSample sends one acquisition.
	PublishSample(sample Sample) error

	// Publish sends an input change event.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Sample is one acquisition to publish.
type Sample struct {
	Timestamp time.Time
	Value     uint64
	Bits      int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SamplePayload is the MQTT message payload for an acquisition.
type SamplePayload struct {
	Sample SampleInner `json:"sample"`
}

// SampleInner contains the acquisition details. Inputs[0] is input 1.
type SampleInner struct {
	Timestamp string `json:"timestamp"`
	Value     uint64 `json:"value"`
	Bits      int    `json:"bits"`
	Inputs    []bool `json:"inputs"`
}

// FormatSamplePayload creates the JSON payload for an acquisition.
func FormatSamplePayload(s Sample) ([]byte, error) {
	inputs := make([]bool, s.Bits)
	for i := range inputs {
		inputs[i] = s.Value>>uint(i)&1 == 1
	}
	return json.Marshal(SamplePayload{
		Sample: SampleInner{
			Timestamp: s.Timestamp.UTC().Format(time.RFC3339Nano),
			Value:     s.Value,
			Bits:      s.Bits,
			Inputs:    inputs,
		},
	})
}

// EventPayload is the MQTT message payload for an input change.
type EventPayload struct {
	Input EventInner `json:"input"`
}

// EventInner contains the change details. Input is 1-indexed.
type EventInner struct {
	Timestamp string `json:"timestamp"`
	Input     int    `json:"input"`
	State     string `json:"state"`
	Value     uint64 `json:"value"`
}

// FormatPayload creates the JSON payload for an input change event.
func FormatPayload(event logic.Event) ([]byte, error) {
	return json.Marshal(EventPayload{
		Input: EventInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Input:     event.Input(),
			State:     string(event.State),
			Value:     event.Sample,
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
