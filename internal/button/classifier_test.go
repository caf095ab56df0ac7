package button

import (
	"testing"
	"time"
)

// feed pushes a press-and-release of the given duration into the classifier,
// sampling every step. Returns any gesture emitted plus the time after the
// release.
func feed(t *testing.T, c *Classifier, start time.Time, held time.Duration, step time.Duration) (Gesture, bool, time.Time) {
	t.Helper()
	now := start
	for elapsed := time.Duration(0); elapsed < held; elapsed += step {
		if g, ok := c.Process(Input{Pressed: true, Time: now}); ok {
			t.Fatalf("unexpected gesture %s while held", g)
		}
		now = now.Add(step)
	}
	g, ok := c.Process(Input{Pressed: false, Time: start.Add(held)})
	return g, ok, start.Add(held)
}

// drainWindow samples released until the double-press window has elapsed.
func drainWindow(c *Classifier, from time.Time) (Gesture, bool, time.Time) {
	now := from
	for i := 0; i < 40; i++ {
		now = now.Add(10 * time.Millisecond)
		if g, ok := c.Process(Input{Pressed: false, Time: now}); ok {
			return g, true, now
		}
	}
	return "", false, now
}

func TestLongPress(t *testing.T) {
	c := NewClassifier()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	g, ok, _ := feed(t, c, start, 2500*time.Millisecond, 10*time.Millisecond)
	if !ok {
		t.Fatal("expected a gesture on release")
	}
	if g != LongPress {
		t.Errorf("expected LONG_PRESS, got %s", g)
	}
}

func TestLongPressBoundary(t *testing.T) {
	c := NewClassifier()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Exactly at the threshold counts as long.
	g, ok, _ := feed(t, c, start, 2000*time.Millisecond, 10*time.Millisecond)
	if !ok || g != LongPress {
		t.Errorf("expected LONG_PRESS at 2000ms, got %q (emitted=%v)", g, ok)
	}
}

func TestShortPress(t *testing.T) {
	c := NewClassifier()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	g, ok, after := feed(t, c, start, 150*time.Millisecond, 10*time.Millisecond)
	if ok {
		t.Fatalf("no gesture expected before the window closes, got %s", g)
	}

	// No second press: the window elapses and a short press is emitted.
	g, ok, _ = drainWindow(c, after)
	if !ok {
		t.Fatal("expected a gesture after the window elapsed")
	}
	if g != ShortPress {
		t.Errorf("expected SHORT_PRESS, got %s", g)
	}
}

func TestDoublePress(t *testing.T) {
	c := NewClassifier()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	_, ok, after := feed(t, c, start, 150*time.Millisecond, 10*time.Millisecond)
	if ok {
		t.Fatal("no gesture expected after first release")
	}

	// Second press starts 100ms later, inside the 300ms window.
	secondStart := after.Add(100 * time.Millisecond)
	if g, ok := c.Process(Input{Pressed: false, Time: after.Add(50 * time.Millisecond)}); ok {
		t.Fatalf("unexpected gesture %s inside window", g)
	}
	g, ok, _ := feed(t, c, secondStart, 100*time.Millisecond, 10*time.Millisecond)
	if !ok {
		t.Fatal("expected a gesture on second release")
	}
	if g != DoublePress {
		t.Errorf("expected DOUBLE_PRESS, got %s", g)
	}
}

func TestSecondPressAfterWindowIsSeparate(t *testing.T) {
	c := NewClassifier()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	_, _, after := feed(t, c, start, 150*time.Millisecond, 10*time.Millisecond)

	// Window elapses -> short press.
	g, ok, windowEnd := drainWindow(c, after)
	if !ok || g != ShortPress {
		t.Fatalf("expected SHORT_PRESS after window, got %q (emitted=%v)", g, ok)
	}

	// A press after the cooldown is a fresh sequence, not a double.
	freshStart := windowEnd.Add(Cooldown + 50*time.Millisecond)
	// One released sample to clear the cooldown.
	c.Process(Input{Pressed: false, Time: freshStart})
	_, ok, after2 := feed(t, c, freshStart.Add(10*time.Millisecond), 150*time.Millisecond, 10*time.Millisecond)
	if ok {
		t.Fatal("fresh press should wait out its own window")
	}
	g, ok, _ = drainWindow(c, after2)
	if !ok || g != ShortPress {
		t.Errorf("expected second SHORT_PRESS, got %q (emitted=%v)", g, ok)
	}
}

func TestCooldownSuppressesInput(t *testing.T) {
	c := NewClassifier()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	g, ok, after := feed(t, c, start, 2500*time.Millisecond, 10*time.Millisecond)
	if !ok || g != LongPress {
		t.Fatalf("expected LONG_PRESS, got %q (emitted=%v)", g, ok)
	}

	// Press again immediately: inside the cooldown, nothing may happen.
	within := after.Add(100 * time.Millisecond)
	if g, ok := c.Process(Input{Pressed: true, Time: within}); ok {
		t.Errorf("unexpected gesture %s inside cooldown", g)
	}
	if g, ok := c.Process(Input{Pressed: false, Time: within.Add(50 * time.Millisecond)}); ok {
		t.Errorf("unexpected gesture %s inside cooldown", g)
	}

	// After the cooldown a new sequence works normally.
	fresh := after.Add(Cooldown + 20*time.Millisecond)
	c.Process(Input{Pressed: false, Time: fresh})
	g, ok, _ = feed(t, c, fresh.Add(10*time.Millisecond), 2500*time.Millisecond, 10*time.Millisecond)
	if !ok || g != LongPress {
		t.Errorf("expected LONG_PRESS after cooldown, got %q (emitted=%v)", g, ok)
	}
}

func TestZeroDurationPressIsShort(t *testing.T) {
	c := NewClassifier()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Press and release observed at the same sample time.
	c.Process(Input{Pressed: true, Time: now})
	if g, ok := c.Process(Input{Pressed: false, Time: now}); ok {
		t.Fatalf("zero-duration press classified early as %s", g)
	}
	g, ok, _ := drainWindow(c, now)
	if !ok || g != ShortPress {
		t.Errorf("expected SHORT_PRESS for zero-duration press, got %q (emitted=%v)", g, ok)
	}
}

func TestActive(t *testing.T) {
	c := NewClassifier()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if c.Active() {
		t.Error("new classifier should be idle")
	}
	c.Process(Input{Pressed: true, Time: now})
	if !c.Active() {
		t.Error("classifier should be active while pressed")
	}
}
