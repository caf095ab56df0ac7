// Package button classifies physical button activity into gestures.
// The Classifier is pure state-machine logic with NO external dependencies
// (no GPIO, OS, or time.Sleep) — time is always injectable via time.Time
// parameters. The Poller drives it from a real pin.
package button

import "time"

// Gesture is a classified button interaction.
type Gesture string

const (
	ShortPress  Gesture = "SHORT_PRESS"
	LongPress   Gesture = "LONG_PRESS"
	DoublePress Gesture = "DOUBLE_PRESS"
)

// Classification thresholds.
const (
	// LongPressMin is the minimum hold duration for a long press.
	LongPressMin = 2000 * time.Millisecond
	// DoubleWindow is how long after a release a second press may start
	// and still count as a double press.
	DoubleWindow = 300 * time.Millisecond
	// Cooldown suppresses input after an emitted gesture, debouncing
	// re-triggers on the same physical press.
	Cooldown = 300 * time.Millisecond
)

type phase int

const (
	phaseIdle phase = iota
	phasePressed
	phaseWindow
	phaseSecondPress
	phaseCooldown
)

// Input is a single sample of the button state.
type Input struct {
	Pressed bool // already inverted from the active-low pin
	Time    time.Time
}

// Classifier turns a stream of button samples into gestures. One gesture is
// emitted per completed physical press sequence.
type Classifier struct {
	longPress time.Duration
	window    time.Duration
	cooldown  time.Duration

	phase phase
	since time.Time // start of the current phase
}

// NewClassifier creates a classifier with the standard thresholds.
func NewClassifier() *Classifier {
	return &Classifier{
		longPress: LongPressMin,
		window:    DoubleWindow,
		cooldown:  Cooldown,
	}
}

// Process feeds one sample into the state machine. It returns the emitted
// gesture and true when a press sequence completes on this sample.
func (c *Classifier) Process(in Input) (Gesture, bool) {
	switch c.phase {
	case phaseIdle:
		if in.Pressed {
			c.phase = phasePressed
			c.since = in.Time
		}

	case phasePressed:
		if !in.Pressed {
			held := in.Time.Sub(c.since)
			if held >= c.longPress {
				c.toCooldown(in.Time)
				return LongPress, true
			}
			// Short so far; wait out the double-press window.
			c.phase = phaseWindow
			c.since = in.Time
		}

	case phaseWindow:
		if in.Pressed {
			// Second press started inside the window; classified on its
			// release regardless of how long it is held.
			c.phase = phaseSecondPress
			c.since = in.Time
		} else if in.Time.Sub(c.since) >= c.window {
			c.toCooldown(in.Time)
			return ShortPress, true
		}

	case phaseSecondPress:
		if !in.Pressed {
			c.toCooldown(in.Time)
			return DoublePress, true
		}

	case phaseCooldown:
		// Ignore everything until the cooldown elapses and the button is
		// released, so a held button cannot re-trigger.
		if !in.Pressed && in.Time.Sub(c.since) >= c.cooldown {
			c.phase = phaseIdle
		}
	}

	return "", false
}

func (c *Classifier) toCooldown(now time.Time) {
	c.phase = phaseCooldown
	c.since = now
}

// Active reports whether a press sequence is in flight. The poller samples
// faster while active to keep duration measurement tight.
func (c *Classifier) Active() bool {
	return c.phase != phaseIdle
}
