// Package logic contains pure change detection over successive samples.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the logical state of one input.
type State string

const (
	StateOn  State = "ON"
	StateOff State = "OFF"
)

// Event represents a debounced change of one input.
type Event struct {
	Timestamp time.Time
	Bit       int    // 0-indexed position in the sample
	State     State  // new stable state
	Sample    uint64 // stable sample after the change
}

// Input returns the 1-indexed input number shown to users.
func (e Event) Input() int {
	return e.Bit + 1
}

// ChannelState tracks debounce state for a single input.
type ChannelState struct {
	// Current stable (debounced) state
	Stable State
	// Pending state during debounce
	Pending State
	// Time when pending state was first observed
	PendingSince time.Time
	// Whether we have established a baseline
	Baselined bool
}

// Input is one acquired sample.
type Input struct {
	Sample uint64
	Time   time.Time
}

// BitCounts counts the changes of one input since startup.
type BitCounts struct {
	On  int
	Off int
}

// EventCounts holds one BitCounts per input, bit 0 first.
type EventCounts []BitCounts

// Total returns the number of changes across all inputs.
func (c EventCounts) Total() int {
	n := 0
	for _, b := range c {
		n += b.On + b.Off
	}
	return n
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Sample    uint64
	Counts    EventCounts
}
