package sensors

import (
	"context"
	"log"
	"time"

	"github.com/CC4K/timelock/internal/gpio"
)

// DefaultInterval is the sampling cadence.
const DefaultInterval = 200 * time.Millisecond

// Sampler periodically reads the environment sensor and the light pin and
// publishes typed samples.
type Sampler struct {
	env      EnvironmentReader
	light    gpio.Input
	interval time.Duration
	now      func() time.Time
}

// NewSampler creates a sampler. A non-positive interval selects
// DefaultInterval.
func NewSampler(env EnvironmentReader, light gpio.Input, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{
		env:      env,
		light:    light,
		interval: interval,
		now:      time.Now,
	}
}

// Run samples on the fixed cadence until the context is cancelled.
func (s *Sampler) Run(ctx context.Context, out chan<- Sample) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			for _, sample := range s.sampleOnce(s.now()) {
				select {
				case out <- sample:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// sampleOnce runs one sampling cycle. A failed environment read is not
// fatal: the cycle simply omits temperature, moisture, and pressure, and
// the light sample is still produced.
func (s *Sampler) sampleOnce(now time.Time) []Sample {
	var samples []Sample

	temp, rh, err := s.env.Read()
	if err != nil {
		log.Printf("sensors: environment read failed, skipping cycle: %v", err)
	} else {
		samples = append(samples,
			Sample{Kind: Temperature, Value: temp, Time: now},
			Sample{Kind: Moisture, Value: rh, Time: now},
			Sample{Kind: Pressure, Value: pressureFrom(temp, rh), Time: now},
		)
	}

	level, err := s.light.Get()
	if err != nil {
		log.Printf("sensors: light read failed: %v", err)
		return samples
	}
	// Active-low: low level = bright.
	samples = append(samples, Sample{Kind: Light, Bright: !level, Time: now})

	return samples
}
