package gpio

import "testing"

func newTestSim(t *testing.T, width int) *SimRegister {
	t.Helper()
	s := NewSimRegister(17, 27, 22, width)
	if err := s.ConfigureInput(17, PullDown); err != nil {
		t.Fatalf("configure serial: %v", err)
	}
	if err := s.ConfigureOutput(27, High); err != nil {
		t.Fatalf("configure load: %v", err)
	}
	if err := s.ConfigureOutput(22, Low); err != nil {
		t.Fatalf("configure clock: %v", err)
	}
	return s
}

func pulse(t *testing.T, s *SimRegister, pin int, active, idle Level) {
	t.Helper()
	if err := s.Write(pin, active); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(pin, idle); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestSimRegisterShiftsHighestInputFirst(t *testing.T) {
	s := newTestSim(t, 8)
	s.SetInputs(0b1000_0010) // D7 and D1

	pulse(t, s, 27, Low, High)

	var got []Level
	for i := 0; i < 9; i++ {
		l, err := s.Read(17)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		got = append(got, l)
		pulse(t, s, 22, High, Low)
	}

	want := []Level{High, Low, Low, Low, Low, Low, High, Low, Low}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %v, want %v", i, got[i], want[i])
		}
	}

	load, clock := s.Pulses()
	if load != 1 || clock != 9 {
		t.Errorf("pulses: got load=%d clock=%d, want 1/9", load, clock)
	}
}

func TestSimRegisterClockIgnoredWhileLoading(t *testing.T) {
	s := newTestSim(t, 8)
	s.SetInputs(0xFF)

	s.Write(27, Low)
	pulse(t, s, 22, High, Low)
	s.Write(27, High)

	if _, clock := s.Pulses(); clock != 0 {
		t.Errorf("clock pulses while loading: got %d, want 0", clock)
	}
	if l, _ := s.Read(17); l != High {
		t.Errorf("serial after load: got %v, want HIGH", l)
	}
}

func TestSimRegisterRejectsWrongPins(t *testing.T) {
	s := NewSimRegister(17, 27, 22, 8)
	if err := s.ConfigureInput(27, PullDown); err == nil {
		t.Error("expected error configuring load as input")
	}
	if err := s.ConfigureOutput(17, Low); err == nil {
		t.Error("expected error configuring serial as output")
	}
	if _, err := s.Read(17); err == nil {
		t.Error("expected error reading unconfigured serial line")
	}
}

func TestSimRegisterRelease(t *testing.T) {
	s := newTestSim(t, 8)
	s.Release()
	if !s.Released() {
		t.Error("expected Released")
	}
	if err := s.Write(22, High); err == nil {
		t.Error("expected error writing after release")
	}
}
