// Package panel is the single consumer of all event channels. The
// Controller holds the setup-mode and access-control state machines and the
// latest-sample cache; the Worker drains the channels on a fixed cadence and
// drives the indicator LEDs and the display log.
package panel

import (
	"context"
	"fmt"

	"github.com/CC4K/timelock/internal/button"
	"github.com/CC4K/timelock/internal/clock"
	"github.com/CC4K/timelock/internal/sensors"
	"github.com/CC4K/timelock/internal/status"
)

// SetupMode selects which clock field short presses mutate.
type SetupMode string

const (
	SetupIdle    SetupMode = "IDLE"
	SetupHours   SetupMode = "HOURS"
	SetupMinutes SetupMode = "MINUTES"
	SetupSeconds SetupMode = "SECONDS"
)

// Next advances through the cyclic setup order
// Idle -> Hours -> Minutes -> Seconds -> Idle.
func (m SetupMode) Next() SetupMode {
	switch m {
	case SetupIdle:
		return SetupHours
	case SetupHours:
		return SetupMinutes
	case SetupMinutes:
		return SetupSeconds
	default:
		return SetupIdle
	}
}

// field maps a non-idle setup mode onto its clock field.
func (m SetupMode) field() clock.Field {
	switch m {
	case SetupHours:
		return clock.Hours
	case SetupMinutes:
		return clock.Minutes
	default:
		return clock.Seconds
	}
}

// AccessMode is the access-control state.
type AccessMode string

const (
	Locked     AccessMode = "LOCKED"
	FullAccess AccessMode = "FULL_ACCESS"
)

// Incrementer mutates one clock field. Satisfied by *clock.Clock.
type Incrementer interface {
	Increment(ctx context.Context, f clock.Field) (clock.Fields, error)
}

// Controller is the aggregator state machine. It performs no I/O of its
// own beyond the injected Incrementer; time, events, and samples arrive as
// parameters.
type Controller struct {
	inc Incrementer

	setup    SetupMode
	access   AccessMode
	eligible bool
	fields   clock.Fields
	haveTick bool

	cursor int
	cache  map[sensors.Kind]sensors.Sample

	counts status.GestureCounts
}

// NewController creates a controller in Idle/Locked with an empty cache.
func NewController(inc Incrementer) *Controller {
	return &Controller{
		inc:    inc,
		setup:  SetupIdle,
		access: Locked,
		cache:  make(map[sensors.Kind]sensors.Sample),
	}
}

// HandleTick records the latest clock snapshot and re-derives the
// eligibility predicate: unlocking is permitted only on odd minutes.
func (c *Controller) HandleTick(f clock.Fields) {
	c.fields = f
	c.haveTick = true
	c.eligible = f.Minute%2 == 1
}

// HandleSample overwrites the cache slot for the sample's kind.
func (c *Controller) HandleSample(s sensors.Sample) {
	c.cache[s.Kind] = s
}

// HandleGesture applies one gesture to the transition table. The returned
// string describes the outcome for the log. An error is only returned for a
// failed clock increment, which is fatal.
func (c *Controller) HandleGesture(ctx context.Context, g button.Gesture) (string, error) {
	switch g {
	case button.LongPress:
		c.counts.Long++
		c.setup = c.setup.Next()
		if c.setup == SetupIdle {
			return "setup mode exited", nil
		}
		return fmt.Sprintf("setup -> %s", c.setup), nil

	case button.ShortPress:
		c.counts.Short++
		if c.setup == SetupIdle {
			c.cursor = (c.cursor + 1) % len(sensors.Kinds)
			return fmt.Sprintf("cursor -> %s", sensors.Kinds[c.cursor]), nil
		}
		fields, err := c.inc.Increment(ctx, c.setup.field())
		if err != nil {
			return "", fmt.Errorf("increment %s: %w", c.setup.field(), err)
		}
		// The increment snapshot is as fresh as any tick.
		c.HandleTick(fields)
		return fmt.Sprintf("set %s -> %s", c.setup.field(), fields), nil

	case button.DoublePress:
		c.counts.Double++
		switch {
		case c.access == FullAccess:
			c.access = Locked
			return "access locked", nil
		case c.eligible:
			c.access = FullAccess
			return "access granted", nil
		default:
			// Benign, expected outcome — reported, never a fault.
			c.counts.Denied++
			return "access denied: minute not odd", nil
		}
	}

	return fmt.Sprintf("ignored unknown gesture %q", g), nil
}

// Indicators returns the lock and grant LED levels as a function of
// (AccessMode, eligible): full access lights the grant LED alone, locked
// lights the lock LED, and an odd minute adds the grant LED as an
// unlock-available hint.
func (c *Controller) Indicators() (lock, grant bool) {
	if c.access == FullAccess {
		return false, true
	}
	return true, c.eligible
}

// Display returns the current display line: the selected field while in
// setup mode, the cursor's cached sample under full access, and the cached
// temperature while locked.
func (c *Controller) Display() string {
	if c.setup != SetupIdle {
		return fmt.Sprintf("set %s %s", c.setup, c.clockString())
	}

	kind := sensors.Temperature
	if c.access == FullAccess {
		kind = sensors.Kinds[c.cursor]
	}
	if s, ok := c.cache[kind]; ok {
		return fmt.Sprintf("%s %s", kind, s.Display())
	}
	return fmt.Sprintf("%s --", kind)
}

func (c *Controller) clockString() string {
	if !c.haveTick {
		return "--:--:--"
	}
	return c.fields.String()
}

// Setup returns the current setup mode.
func (c *Controller) Setup() SetupMode { return c.setup }

// Access returns the current access mode.
func (c *Controller) Access() AccessMode { return c.access }

// Eligible reports the eligibility predicate from the latest tick.
func (c *Controller) Eligible() bool { return c.eligible }

// Counts returns gesture counts since startup.
func (c *Controller) Counts() status.GestureCounts { return c.counts }

// Cached returns the number of sample kinds seen so far.
func (c *Controller) Cached() int { return len(c.cache) }

// ClockString returns the latest snapshot as HH:MM:SS, or empty before the
// first tick.
func (c *Controller) ClockString() string {
	if !c.haveTick {
		return ""
	}
	return c.fields.String()
}
