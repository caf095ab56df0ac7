package button

import (
	"context"
	"fmt"
	"time"

	"github.com/CC4K/timelock/internal/gpio"
)

// Sampling cadence: relaxed while idle, tight while a press sequence is
// being measured.
const (
	IdleInterval   = 100 * time.Millisecond
	ActiveInterval = 10 * time.Millisecond
)

// Poller samples the button pin and publishes classified gestures.
type Poller struct {
	pin gpio.Input
	cls *Classifier
	now func() time.Time
}

// NewPoller creates a poller over the active-low button pin.
func NewPoller(pin gpio.Input) *Poller {
	return &Poller{
		pin: pin,
		cls: NewClassifier(),
		now: time.Now,
	}
}

// Run samples the pin until the context is cancelled, publishing each
// completed gesture. Pin read failures are fatal: the button shares its
// GPIO bank with the rest of the hardware, so a dead pin means a dead node.
func (p *Poller) Run(ctx context.Context, gestures chan<- Gesture) error {
	for {
		level, err := p.pin.Get()
		if err != nil {
			return fmt.Errorf("button read: %w", err)
		}

		// Active-low with pull-up: low level = pressed.
		g, ok := p.cls.Process(Input{Pressed: !level, Time: p.now()})
		if ok {
			select {
			case gestures <- g:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		interval := IdleInterval
		if p.cls.Active() {
			interval = ActiveInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
