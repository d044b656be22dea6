// Package status provides a thread-safe status tracker for the acquisition loop.
// It is read by the HTTP handlers and used to build MQTT status events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/shiftreg/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Device      string
	Backend     string
	SerialOut   int
	Load        int
	Clock       int
	Bits        int
	SettleUs    int64
	IntervalMs  int64
	DebounceMs  int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	InfluxURL   string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Sample       uint64 // last raw acquisition
	HasSample    bool
	LastAcquired time.Time
	Acquisitions int64
	Failures     int64
	LastError    string

	Stable    uint64 // debounced sample
	Baselined bool
	Counts    logic.EventCounts

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Input returns the last acquired state of a 1-indexed input. ok is false
// when n is out of range or nothing has been acquired yet.
func (s Snapshot) Input(n int) (state logic.State, ok bool) {
	if !s.HasSample || n < 1 || n > s.Config.Bits {
		return "", false
	}
	if s.Sample>>uint(n-1)&1 == 1 {
		return logic.StateOn, true
	}
	return logic.StateOff, true
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// RecordSample stores a successful acquisition.
func (t *Tracker) RecordSample(sample uint64, at time.Time) {
	t.mu.Lock()
	t.snap.Sample = sample
	t.snap.HasSample = true
	t.snap.LastAcquired = at
	t.snap.Acquisitions++
	t.mu.Unlock()
}

// RecordFailure counts a failed acquisition.
func (t *Tracker) RecordFailure(err error) {
	t.mu.Lock()
	t.snap.Failures++
	if err != nil {
		t.snap.LastError = err.Error()
	}
	t.mu.Unlock()
}

// Update sets the debounced sample, baseline status and change counts.
func (t *Tracker) Update(stable uint64, baselined bool, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Stable = stable
	t.snap.Baselined = baselined
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Counts != nil {
		s.Counts = append(logic.EventCounts(nil), s.Counts...)
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
