package gpio

import (
	"fmt"
	"sync"
)

// SimRegister models a chain of parallel-in/serial-out shift registers
// (74HC165 family) wired to three pins. It implements Pins.
//
// While the load line is low the register continuously copies the parallel
// inputs and the serial output shows the highest input, D(width-1). Each
// rising clock edge with load high shifts by one position toward D0. The
// serial input of the chain is tied low, so zeros follow the last bit.
type SimRegister struct {
	SerialOut int
	Load      int
	Clock     int
	Width     int

	mu         sync.Mutex
	inputs     uint64
	shift      uint64
	pos        int
	levels     map[int]Level
	configured map[int]bool
	pull       Pull
	released   bool

	loadPulses  int
	clockPulses int
}

// NewSimRegister creates a simulated chain of width bits.
func NewSimRegister(serialOut, load, clock, width int) *SimRegister {
	return &SimRegister{
		SerialOut:  serialOut,
		Load:       load,
		Clock:      clock,
		Width:      width,
		levels:     make(map[int]Level),
		configured: make(map[int]bool),
	}
}

// SetInputs sets the parallel input lines; bit i is input Di.
func (s *SimRegister) SetInputs(v uint64) {
	s.mu.Lock()
	s.inputs = v
	if s.levels[s.Load] == Low {
		s.parallelLoad()
	}
	s.mu.Unlock()
}

func (s *SimRegister) parallelLoad() {
	s.shift = s.inputs
	s.pos = 0
}

func (s *SimRegister) ConfigureInput(pin int, pull Pull) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pin != s.SerialOut {
		return fmt.Errorf("sim: pin %d is not the serial output", pin)
	}
	s.configured[pin] = true
	s.pull = pull
	return nil
}

func (s *SimRegister) ConfigureOutput(pin int, initial Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pin != s.Load && pin != s.Clock {
		return fmt.Errorf("sim: pin %d is not a control line", pin)
	}
	s.configured[pin] = true
	s.levels[pin] = initial
	if pin == s.Load && initial == Low {
		s.parallelLoad()
	}
	return nil
}

func (s *SimRegister) Write(pin int, level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.configured[pin] || pin == s.SerialOut {
		return fmt.Errorf("sim: write to pin %d not configured as output", pin)
	}
	prev := s.levels[pin]
	s.levels[pin] = level

	switch {
	case pin == s.Load && prev == High && level == Low:
		s.loadPulses++
		s.parallelLoad()
	case pin == s.Clock && prev == Low && level == High:
		if s.levels[s.Load] == High {
			s.clockPulses++
			s.pos++
		}
	}
	return nil
}

func (s *SimRegister) Read(pin int) (Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pin != s.SerialOut || !s.configured[pin] {
		return Low, fmt.Errorf("sim: read from pin %d not configured as input", pin)
	}
	if s.pos >= s.Width {
		return Low, nil
	}
	return LevelOf(s.shift>>uint(s.Width-1-s.pos)&1 == 1), nil
}

func (s *SimRegister) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.released = true
	s.configured = make(map[int]bool)
	return nil
}

// Pulses reports the load and clock pulses the register has seen.
func (s *SimRegister) Pulses() (load, clock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPulses, s.clockPulses
}

// Released reports whether Release was called.
func (s *SimRegister) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// SerialPull returns the bias the serial output was configured with.
func (s *SimRegister) SerialPull() Pull {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pull
}
