package logic

import "time"

// Detector tracks per-input state and detects debounced changes.
type Detector struct {
	debounceDuration time.Duration
	inputs           []ChannelState
	baselined        bool
	startTime        time.Time
	eventCounts      EventCounts
	lastHeartbeat    time.Time
}

// NewDetector creates a change detector for width inputs. A debounce of
// zero reports every change on the sample it first appears in.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(width int, debounceDuration time.Duration, startTime time.Time) *Detector {
	return &Detector{
		debounceDuration: debounceDuration,
		inputs:           make([]ChannelState, width),
		startTime:        startTime,
		eventCounts:      make(EventCounts, width),
		lastHeartbeat:    startTime,
	}
}

// Width returns the number of inputs tracked.
func (d *Detector) Width() int {
	return len(d.inputs)
}

// Process takes a new sample and returns any events that should be emitted,
// lowest bit first. Events are only returned after every input has a baseline.
func (d *Detector) Process(input Input) []Event {
	var changed []int
	for bit := range d.inputs {
		state := boolToState(input.Sample>>uint(bit)&1 == 1)
		if d.processChannel(&d.inputs[bit], state, input.Time) {
			changed = append(changed, bit)
		}
	}

	if !d.baselined {
		for _, ch := range d.inputs {
			if !ch.Baselined {
				return nil // No events until baseline established
			}
		}
		d.baselined = true
		return nil
	}

	if len(changed) == 0 {
		return nil
	}

	stable, _ := d.CurrentSample()
	events := make([]Event, 0, len(changed))
	for _, bit := range changed {
		state := d.inputs[bit].Stable
		events = append(events, Event{
			Timestamp: input.Time,
			Bit:       bit,
			State:     state,
			Sample:    stable,
		})
		if state == StateOn {
			d.eventCounts[bit].On++
		} else {
			d.eventCounts[bit].Off++
		}
	}
	return events
}

// processChannel handles debounce logic for a single input.
// Returns true if the stable state of an already baselined input changed.
func (d *Detector) processChannel(ch *ChannelState, newState State, now time.Time) bool {
	if !ch.Baselined {
		if ch.Pending != newState {
			// First observation, or state changed during baseline: restart
			ch.Pending = newState
			ch.PendingSince = now
		}
		if now.Sub(ch.PendingSince) >= d.debounceDuration {
			ch.Stable = newState
			ch.Baselined = true
			ch.Pending = ""
		}
		return false
	}

	if newState == ch.Stable {
		// No change from stable state, clear any pending
		ch.Pending = ""
		return false
	}

	if ch.Pending != newState {
		ch.Pending = newState
		ch.PendingSince = now
	}

	if now.Sub(ch.PendingSince) >= d.debounceDuration {
		ch.Stable = newState
		ch.Pending = ""
		return true
	}
	return false
}

func boolToState(b bool) State {
	if b {
		return StateOn
	}
	return StateOff
}

// IsBaselined returns whether the detector has established a baseline.
func (d *Detector) IsBaselined() bool {
	return d.baselined
}

// CurrentSample returns the stable sample and whether it is baselined.
func (d *Detector) CurrentSample() (uint64, bool) {
	var s uint64
	for bit, ch := range d.inputs {
		if ch.Stable == StateOn {
			s |= 1 << uint(bit)
		}
	}
	return s, d.baselined
}

// CurrentState returns the stable state of one input, or "" if unknown.
func (d *Detector) CurrentState(bit int) State {
	if bit < 0 || bit >= len(d.inputs) {
		return ""
	}
	return d.inputs[bit].Stable
}

// EventCountsSnapshot returns a copy of the per-input change counts.
func (d *Detector) EventCountsSnapshot() EventCounts {
	out := make(EventCounts, len(d.eventCounts))
	copy(out, d.eventCounts)
	return out
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet baselined, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if !d.baselined {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	sample, _ := d.CurrentSample()
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Sample:    sample,
		Counts:    d.EventCountsSnapshot(),
	}
}
