//go:build linux

package gpio

import (
	"testing"

	"github.com/warthog618/go-gpiosim"
)

// newSimChip needs the gpio-sim kernel module and root; the test is
// skipped when either is missing.
func newSimChip(t *testing.T) (*gpiosim.Simpleton, *Chip) {
	t.Helper()
	s, err := gpiosim.NewSimpleton(4)
	if err != nil {
		t.Skipf("gpio-sim unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	c, err := OpenChip(s.Name)
	if err != nil {
		t.Fatalf("open chip %s: %v", s.Name, err)
	}
	t.Cleanup(func() { c.Release() })
	return s, c
}

func TestChipInputFollowsLine(t *testing.T) {
	s, c := newSimChip(t)

	if err := c.ConfigureInput(0, PullDown); err != nil {
		t.Fatalf("configure input: %v", err)
	}
	if err := s.SetPull(0, 0); err != nil {
		t.Fatalf("sim pull: %v", err)
	}
	if l, err := c.Read(0); err != nil || l != Low {
		t.Errorf("read: got %v, %v; want LOW", l, err)
	}

	if err := s.SetPull(0, 1); err != nil {
		t.Fatalf("sim pull: %v", err)
	}
	if l, err := c.Read(0); err != nil || l != High {
		t.Errorf("read: got %v, %v; want HIGH", l, err)
	}
}

func TestChipOutputStartsAtInitialLevel(t *testing.T) {
	s, c := newSimChip(t)

	if err := c.ConfigureOutput(1, High); err != nil {
		t.Fatalf("configure output: %v", err)
	}
	if v, err := s.Level(1); err != nil || v != 1 {
		t.Errorf("initial level: got %d, %v; want 1", v, err)
	}

	if err := c.Write(1, Low); err != nil {
		t.Fatalf("write: %v", err)
	}
	if v, err := s.Level(1); err != nil || v != 0 {
		t.Errorf("after write: got %d, %v; want 0", v, err)
	}
}

func TestChipRejectsDoubleRequest(t *testing.T) {
	_, c := newSimChip(t)

	if err := c.ConfigureOutput(2, Low); err != nil {
		t.Fatalf("configure output: %v", err)
	}
	if err := c.ConfigureInput(2, PullDown); err == nil {
		t.Error("expected error requesting line twice")
	}
}

func TestChipReleaseIdempotent(t *testing.T) {
	_, c := newSimChip(t)

	if err := c.ConfigureOutput(3, High); err != nil {
		t.Fatalf("configure output: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Errorf("second release: %v", err)
	}
	if err := c.Write(3, Low); err == nil {
		t.Error("expected error writing after release")
	}
}
