// Package status provides a thread-safe status tracker for the timelock
// daemon. The panel worker writes to it every cycle; the heartbeat log and
// the -print-state path read from it. Mode and clock values are plain
// strings here so the package stays a leaf below panel.
package status

import (
	"fmt"
	"sync"
	"time"
)

// GestureCounts tracks gestures handled since startup.
type GestureCounts struct {
	Short  int
	Long   int
	Double int
	// Denied counts double presses rejected while ineligible. Expected,
	// benign user input — reported, never a fault.
	Denied int
}

// Config contains daemon configuration for display.
type Config struct {
	RTCPollMs    int64
	SensorPollMs int64
	PanelMs      int64
	HeartbeatMs  int64
	GuardDelayUs int64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Clock     string // HH:MM:SS, empty until the first tick
	Setup     string
	Access    string
	Eligible  bool
	Counts    GestureCounts
	Samples   int // cached sample kinds
	Display   string
	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Line formats the snapshot as a single heartbeat log line.
func (s Snapshot) Line() string {
	clock := s.Clock
	if clock == "" {
		clock = "--:--:--"
	}
	return fmt.Sprintf("uptime=%s clock=%s setup=%s access=%s eligible=%v short=%d long=%d double=%d denied=%d samples=%d",
		s.Uptime().Round(time.Second), clock, s.Setup, s.Access, s.Eligible,
		s.Counts.Short, s.Counts.Long, s.Counts.Double, s.Counts.Denied, s.Samples)
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

// Update sets the panel-owned fields. Called from the panel worker on every
// cycle.
func (t *Tracker) Update(clock, setup, access string, eligible bool, counts GestureCounts, samples int, display string) {
	t.mu.Lock()
	t.snap.Clock = clock
	t.snap.Setup = setup
	t.snap.Access = access
	t.snap.Eligible = eligible
	t.snap.Counts = counts
	t.snap.Samples = samples
	t.snap.Display = display
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
