package status

import (
	"strings"
	"testing"
	"time"
)

func TestTrackerUpdateAndSnapshot(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{RTCPollMs: 1000, PanelMs: 1000})

	counts := GestureCounts{Short: 2, Long: 1, Double: 3, Denied: 1}
	tr.Update("10:13:00", "IDLE", "FULL_ACCESS", true, counts, 4, "21.5 C")

	snap := tr.Snapshot()
	if snap.Clock != "10:13:00" {
		t.Errorf("expected clock 10:13:00, got %q", snap.Clock)
	}
	if snap.Setup != "IDLE" {
		t.Errorf("expected setup IDLE, got %q", snap.Setup)
	}
	if snap.Access != "FULL_ACCESS" {
		t.Errorf("expected access FULL_ACCESS, got %q", snap.Access)
	}
	if !snap.Eligible {
		t.Error("expected eligible")
	}
	if snap.Counts != counts {
		t.Errorf("expected counts %+v, got %+v", counts, snap.Counts)
	}
	if snap.Samples != 4 {
		t.Errorf("expected 4 samples, got %d", snap.Samples)
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("expected start time %v, got %v", start, snap.StartTime)
	}
	if snap.Now.IsZero() {
		t.Error("Snapshot should stamp Now")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Now().Add(-90 * time.Second)
	tr := NewTracker(start, Config{})

	up := tr.Snapshot().Uptime()
	if up < 89*time.Second || up > 92*time.Second {
		t.Errorf("expected uptime around 90s, got %v", up)
	}
}

func TestSnapshotLine(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{})
	tr.Update("08:30:15", "HOURS", "LOCKED", false, GestureCounts{Long: 2}, 1, "set HOURS")

	line := tr.Snapshot().Line()
	for _, want := range []string{"clock=08:30:15", "setup=HOURS", "access=LOCKED", "eligible=false", "long=2", "samples=1"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestSnapshotLineBeforeFirstTick(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	line := tr.Snapshot().Line()
	if !strings.Contains(line, "clock=--:--:--") {
		t.Errorf("expected placeholder clock, got %q", line)
	}
}
