package gpio

import (
	"errors"
	"fmt"
	"sync"
)

// OpKind names a call recorded by FakePins.
type OpKind string

const (
	OpConfigureInput  OpKind = "configure-input"
	OpConfigureOutput OpKind = "configure-output"
	OpWrite           OpKind = "write"
	OpRead            OpKind = "read"
	OpRelease         OpKind = "release"
)

// Op is one recorded call on FakePins.
type Op struct {
	Kind  OpKind
	Pin   int
	Level Level
	Pull  Pull
}

// FakePins is a test double that returns scripted input levels and
// records every call.
type FakePins struct {
	mu sync.Mutex

	// Levels contains scripted values for Read.
	// Each call to Read consumes the next level; the last one repeats.
	Levels []Level

	// index tracks current position in Levels
	index int

	// Ops records every call in order.
	Ops []Op

	// ConfigureErrors, if set for a pin, is returned when that pin is configured.
	ConfigureErrors map[int]error

	// ReadError and WriteError, if set, are returned by Read and Write.
	ReadError  error
	WriteError error

	// ReleaseError, if set, is returned by Release after it is recorded.
	ReleaseError error

	// ReleaseCount counts Release calls; DirtyReleases counts the ones made
	// while an output was away from the level it was configured at.
	ReleaseCount  int
	DirtyReleases int

	// OnWrite, if set, runs after every successful Write without the lock held.
	OnWrite func(pin int, level Level)

	idle    map[int]Level
	outputs map[int]Level
}

// NewFakePins creates a FakePins with the given scripted levels.
func NewFakePins(levels ...Level) *FakePins {
	return &FakePins{Levels: levels}
}

func (f *FakePins) ConfigureInput(pin int, pull Pull) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Ops = append(f.Ops, Op{Kind: OpConfigureInput, Pin: pin, Pull: pull})
	if err := f.ConfigureErrors[pin]; err != nil {
		return err
	}
	return nil
}

func (f *FakePins) ConfigureOutput(pin int, initial Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Ops = append(f.Ops, Op{Kind: OpConfigureOutput, Pin: pin, Level: initial})
	if err := f.ConfigureErrors[pin]; err != nil {
		return err
	}
	if f.idle == nil {
		f.idle = make(map[int]Level)
		f.outputs = make(map[int]Level)
	}
	f.idle[pin] = initial
	f.outputs[pin] = initial
	return nil
}

func (f *FakePins) Write(pin int, level Level) error {
	f.mu.Lock()
	if f.WriteError != nil {
		f.mu.Unlock()
		return f.WriteError
	}
	if _, ok := f.outputs[pin]; !ok {
		f.mu.Unlock()
		return fmt.Errorf("write to unconfigured pin %d", pin)
	}
	f.Ops = append(f.Ops, Op{Kind: OpWrite, Pin: pin, Level: level})
	f.outputs[pin] = level
	hook := f.OnWrite
	f.mu.Unlock()

	if hook != nil {
		hook(pin, level)
	}
	return nil
}

// Read returns the next scripted level.
func (f *FakePins) Read(pin int) (Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return Low, f.ReadError
	}
	if len(f.Levels) == 0 {
		return Low, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	f.Ops = append(f.Ops, Op{Kind: OpRead, Pin: pin, Level: level})
	return level, nil
}

// Release records the call and notes whether any output was mid-pulse.
func (f *FakePins) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Ops = append(f.Ops, Op{Kind: OpRelease})
	f.ReleaseCount++
	for pin, level := range f.outputs {
		if level != f.idle[pin] {
			f.DirtyReleases++
			break
		}
	}
	return f.ReleaseError
}

// Count returns how many recorded calls have the given kind.
func (f *FakePins) Count(kind OpKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, op := range f.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Writes returns the levels written to pin, in order.
func (f *FakePins) Writes(pin int) []Level {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Level
	for _, op := range f.Ops {
		if op.Kind == OpWrite && op.Pin == pin {
			out = append(out, op.Level)
		}
	}
	return out
}

// Output returns the level an output pin is currently driven to.
func (f *FakePins) Output(pin int) (Level, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.outputs[pin]
	return l, ok
}

// Reset clears the recorded calls and rewinds Levels.
func (f *FakePins) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.index = 0
	f.Ops = nil
	f.ReleaseCount = 0
	f.DirtyReleases = 0
}
