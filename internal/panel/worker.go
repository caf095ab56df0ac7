package panel

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/CC4K/timelock/internal/button"
	"github.com/CC4K/timelock/internal/clock"
	"github.com/CC4K/timelock/internal/gpio"
	"github.com/CC4K/timelock/internal/sensors"
	"github.com/CC4K/timelock/internal/status"
)

// DefaultInterval is the aggregation cadence.
const DefaultInterval = time.Second

// Worker drains the three event channels each cycle in fixed priority
// order — ticks, gestures, samples — applies them to the controller, and
// drives the indicator LEDs and display log.
type Worker struct {
	ctrl     *Controller
	ticks    <-chan clock.Fields
	gestures <-chan button.Gesture
	samples  <-chan sensors.Sample

	lockLED  gpio.Output
	grantLED gpio.Output

	tracker   *status.Tracker
	interval  time.Duration
	heartbeat time.Duration

	now         func() time.Time
	lastBeat    time.Time
	lastDisplay string
}

// NewWorker wires the aggregator. A non-positive interval selects
// DefaultInterval; heartbeat <= 0 disables the heartbeat log.
func NewWorker(ctrl *Controller, ticks <-chan clock.Fields, gestures <-chan button.Gesture, samples <-chan sensors.Sample,
	lockLED, grantLED gpio.Output, tracker *status.Tracker, interval, heartbeat time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		ctrl:      ctrl,
		ticks:     ticks,
		gestures:  gestures,
		samples:   samples,
		lockLED:   lockLED,
		grantLED:  grantLED,
		tracker:   tracker,
		interval:  interval,
		heartbeat: heartbeat,
		now:       time.Now,
	}
}

// Run aggregates until the context is cancelled. A failed clock increment
// surfaces as the returned error; everything else is logged and survived.
func (w *Worker) Run(ctx context.Context) error {
	w.lastBeat = w.now()
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := w.cycle(ctx); err != nil {
				return fmt.Errorf("panel: %w", err)
			}
		}
	}
}

// cycle runs one aggregation pass.
func (w *Worker) cycle(ctx context.Context) error {
	w.drainTicks()

	for {
		select {
		case g := <-w.gestures:
			outcome, err := w.ctrl.HandleGesture(ctx, g)
			if err != nil {
				return err
			}
			log.Printf("gesture %s: %s", g, outcome)
			continue
		default:
		}
		break
	}

	for {
		select {
		case s := <-w.samples:
			w.ctrl.HandleSample(s)
			continue
		default:
		}
		break
	}

	lock, grant := w.ctrl.Indicators()
	if err := w.lockLED.Set(lock); err != nil {
		log.Printf("lock led: %v", err)
	}
	if err := w.grantLED.Set(grant); err != nil {
		log.Printf("grant led: %v", err)
	}

	if disp := w.ctrl.Display(); disp != w.lastDisplay {
		w.lastDisplay = disp
		log.Printf("display: %s", disp)
	}

	if w.tracker != nil {
		w.tracker.Update(w.ctrl.ClockString(), string(w.ctrl.Setup()), string(w.ctrl.Access()),
			w.ctrl.Eligible(), w.ctrl.Counts(), w.ctrl.Cached(), w.lastDisplay)

		if w.heartbeat > 0 {
			if now := w.now(); now.Sub(w.lastBeat) >= w.heartbeat {
				w.lastBeat = now
				log.Printf("heartbeat: %s", w.tracker.Snapshot().Line())
			}
		}
	}

	return nil
}

func (w *Worker) drainTicks() {
	for {
		select {
		case f := <-w.ticks:
			w.ctrl.HandleTick(f)
		default:
			return
		}
	}
}
