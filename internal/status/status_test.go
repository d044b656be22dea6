package status

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/shiftreg/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testConfig() Config {
	return Config{
		Device:     "hc165",
		Backend:    "gpiocdev",
		SerialOut:  17,
		Load:       27,
		Clock:      22,
		Bits:       8,
		SettleUs:   10,
		IntervalMs: 1000,
		Broker:     "tcp://localhost:1883",
		HTTPAddr:   ":8080",
	}
}

func TestNewTracker(t *testing.T) {
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.HasSample {
		t.Error("new tracker should have no sample")
	}
	if snap.Config.Bits != 8 {
		t.Errorf("Config.Bits: got %d, want 8", snap.Config.Bits)
	}
	if snap.Now.Before(start) {
		t.Error("Now should be set at snapshot time")
	}
}

func TestRecordSample(t *testing.T) {
	tr := NewTracker(start, testConfig())
	at := start.Add(time.Second)

	tr.RecordSample(0x81, at)
	tr.RecordSample(0x82, at.Add(time.Second))

	snap := tr.Snapshot()
	if !snap.HasSample || snap.Sample != 0x82 {
		t.Errorf("Sample: got %#x, %v", snap.Sample, snap.HasSample)
	}
	if snap.Acquisitions != 2 {
		t.Errorf("Acquisitions: got %d, want 2", snap.Acquisitions)
	}
	if !snap.LastAcquired.Equal(at.Add(time.Second)) {
		t.Errorf("LastAcquired: got %v", snap.LastAcquired)
	}
}

func TestRecordFailure(t *testing.T) {
	tr := NewTracker(start, testConfig())
	tr.RecordFailure(errors.New("read bit 3: permission denied"))

	snap := tr.Snapshot()
	if snap.Failures != 1 {
		t.Errorf("Failures: got %d, want 1", snap.Failures)
	}
	if snap.LastError != "read bit 3: permission denied" {
		t.Errorf("LastError: got %q", snap.LastError)
	}
}

func TestSnapshotInput(t *testing.T) {
	tr := NewTracker(start, testConfig())

	if _, ok := tr.Snapshot().Input(1); ok {
		t.Error("expected no input state before first sample")
	}

	tr.RecordSample(0b0000_0101, start)
	snap := tr.Snapshot()

	tests := []struct {
		n     int
		want  logic.State
		valid bool
	}{
		{1, logic.StateOn, true},
		{2, logic.StateOff, true},
		{3, logic.StateOn, true},
		{8, logic.StateOff, true},
		{0, "", false},
		{9, "", false},
	}
	for _, tt := range tests {
		got, ok := snap.Input(tt.n)
		if ok != tt.valid || got != tt.want {
			t.Errorf("Input(%d): got %q, %v; want %q, %v", tt.n, got, ok, tt.want, tt.valid)
		}
	}
}

func TestSnapshotCountsIsCopy(t *testing.T) {
	tr := NewTracker(start, testConfig())
	tr.Update(0, true, logic.EventCounts{{On: 1}})

	snap := tr.Snapshot()
	snap.Counts[0].On = 42

	if tr.Snapshot().Counts[0].On != 1 {
		t.Error("snapshot counts alias tracker state")
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker(start, testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.RecordSample(uint64(j), start)
				tr.Update(uint64(j), true, logic.EventCounts{{On: j}})
				tr.SetMQTTConnected(j%2 == 0)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = FormatJSON(tr.Snapshot())
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot().Acquisitions; got != 400 {
		t.Errorf("Acquisitions: got %d, want 400", got)
	}
}

func TestFormatJSONBeforeFirstSample(t *testing.T) {
	tr := NewTracker(start, testConfig())

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Sample != nil {
		t.Errorf("Sample: got %d, want null", *sj.Status.Sample)
	}
	if len(sj.Status.Inputs) != 8 {
		t.Fatalf("Inputs: got %d, want 8", len(sj.Status.Inputs))
	}
	for _, in := range sj.Status.Inputs {
		if in.State != "UNKNOWN" {
			t.Errorf("input %d: got %q, want UNKNOWN", in.Input, in.State)
		}
	}
	if sj.Status.LastAcquired != "" {
		t.Errorf("LastAcquired: got %q, want empty", sj.Status.LastAcquired)
	}
}

func TestFormatJSON(t *testing.T) {
	tr := NewTracker(start, testConfig())
	tr.RecordSample(0x03, start.Add(time.Second))
	tr.Update(0x03, true, logic.EventCounts{{On: 2, Off: 1}, {On: 1}})
	tr.SetMQTTConnected(true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	s := sj.Status

	if s.Sample == nil || *s.Sample != 3 {
		t.Errorf("Sample: got %v, want 3", s.Sample)
	}
	if s.Inputs[0].State != "ON" || s.Inputs[1].State != "ON" || s.Inputs[2].State != "OFF" {
		t.Errorf("Inputs: got %+v", s.Inputs[:3])
	}
	if !s.Ready || s.Acquisitions != 1 {
		t.Errorf("Ready/Acquisitions: got %v/%d", s.Ready, s.Acquisitions)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT: got %+v", s.MQTT)
	}
	if len(s.Counts) != 2 || s.Counts[0].Input != 1 || s.Counts[0].On != 2 || s.Counts[0].Off != 1 {
		t.Errorf("Counts: got %+v", s.Counts)
	}
	if s.Config.SerialOut != 17 || s.Config.Load != 27 || s.Config.Clock != 22 || s.Config.SettleUs != 10 {
		t.Errorf("Config: got %+v", s.Config)
	}
	if s.Event != "" || s.Reason != "" {
		t.Error("web JSON must not carry event/reason")
	}
	if s.Device != "hc165" {
		t.Errorf("Device: got %q", s.Device)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(start, testConfig())
	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")

	if strings.Contains(string(data), "\n") {
		t.Error("MQTT status event should be compact JSON")
	}

	var sj StatusJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if sj.Status.Event != "SHUTDOWN" || sj.Status.Reason != "SIGTERM" {
		t.Errorf("event/reason: got %q/%q", sj.Status.Event, sj.Status.Reason)
	}
}
