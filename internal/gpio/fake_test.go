package gpio

import (
	"errors"
	"testing"
)

func TestFakePinsRead(t *testing.T) {
	f := NewFakePins(High, Low, High)

	want := []Level{High, Low, High, High}
	for i, w := range want {
		got, err := f.Read(3)
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: got %v, want %v", i, got, w)
		}
	}
}

func TestFakePinsNoLevels(t *testing.T) {
	f := NewFakePins()

	if _, err := f.Read(3); err == nil {
		t.Error("expected error with no levels")
	}
}

func TestFakePinsReadError(t *testing.T) {
	f := NewFakePins(High)
	f.ReadError = errors.New("simulated error")

	_, err := f.Read(3)
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakePinsConfigureError(t *testing.T) {
	f := NewFakePins(Low)
	f.ConfigureErrors = map[int]error{27: errors.New("busy")}

	if err := f.ConfigureInput(17, PullDown); err != nil {
		t.Fatalf("pin 17: unexpected error: %v", err)
	}
	if err := f.ConfigureOutput(27, High); err == nil {
		t.Error("pin 27: expected error")
	}
}

func TestFakePinsWriteUnconfigured(t *testing.T) {
	f := NewFakePins(Low)

	if err := f.Write(22, High); err == nil {
		t.Error("expected error writing unconfigured pin")
	}
}

func TestFakePinsRecordsWrites(t *testing.T) {
	f := NewFakePins(Low)
	f.ConfigureOutput(22, Low)
	f.Write(22, High)
	f.Write(22, Low)

	got := f.Writes(22)
	if len(got) != 2 || got[0] != High || got[1] != Low {
		t.Errorf("writes: got %v, want [HIGH LOW]", got)
	}
	if n := f.Count(OpConfigureOutput); n != 1 {
		t.Errorf("configure-output count: got %d, want 1", n)
	}
}

func TestFakePinsDirtyRelease(t *testing.T) {
	f := NewFakePins(Low)
	f.ConfigureOutput(27, High)
	f.Write(27, Low)

	f.Release()
	if f.DirtyReleases != 1 {
		t.Errorf("DirtyReleases: got %d, want 1", f.DirtyReleases)
	}

	f.Write(27, High)
	f.Release()
	if f.DirtyReleases != 1 {
		t.Errorf("DirtyReleases after idle: got %d, want 1", f.DirtyReleases)
	}
	if f.ReleaseCount != 2 {
		t.Errorf("ReleaseCount: got %d, want 2", f.ReleaseCount)
	}
}

func TestFakePinsOnWrite(t *testing.T) {
	f := NewFakePins(Low)
	f.ConfigureOutput(22, Low)

	var seen []Level
	f.OnWrite = func(pin int, level Level) {
		// Hook runs without the lock, so reading state here must not deadlock.
		if l, _ := f.Output(pin); l != level {
			t.Errorf("output during hook: got %v, want %v", l, level)
		}
		seen = append(seen, level)
	}
	f.Write(22, High)

	if len(seen) != 1 || seen[0] != High {
		t.Errorf("hook saw %v", seen)
	}
}

func TestFakePinsReset(t *testing.T) {
	f := NewFakePins(High, Low)
	f.Read(1)
	f.Release()

	f.Reset()

	if len(f.Ops) != 0 || f.ReleaseCount != 0 {
		t.Errorf("after reset: ops=%d releases=%d", len(f.Ops), f.ReleaseCount)
	}
	if l, _ := f.Read(1); l != High {
		t.Errorf("after reset: got %v, want HIGH", l)
	}
}

func TestLevelOf(t *testing.T) {
	if LevelOf(true) != High || LevelOf(false) != Low {
		t.Error("LevelOf mismatch")
	}
	if High.String() != "HIGH" || Low.String() != "LOW" {
		t.Errorf("String: %s %s", High, Low)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("parport", ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}
