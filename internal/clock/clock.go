// Package clock owns the shared RTC resource. A single actor goroutine has
// exclusive use of the ds1302.Transport and serves read and increment
// requests over a channel, so every bus transaction runs to completion
// before the next one starts without a traditional lock. Two independent
// callers hold references: the periodic poller (read-only) and the panel
// (read+write while in setup mode).
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/CC4K/timelock/internal/ds1302"
)

// Field selects which clock register an increment targets.
type Field = ds1302.Register

// Re-exported for callers that never touch the wire layer.
const (
	Seconds = ds1302.Seconds
	Minutes = ds1302.Minutes
	Hours   = ds1302.Hours
)

// Fields is a decimal snapshot of the clock registers.
// Invariant: Hour in [0,23], Minute and Second in [0,59].
type Fields struct {
	Hour   int
	Minute int
	Second int
}

// String formats the snapshot as HH:MM:SS.
func (f Fields) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", f.Hour, f.Minute, f.Second)
}

type request struct {
	increment bool
	field     Field
	reply     chan response
}

type response struct {
	fields Fields
	err    error
}

// Clock serializes access to the RTC transport.
type Clock struct {
	tr  *ds1302.Transport
	req chan request
}

// New creates a Clock over the transport. Run must be started before Read
// or Increment will complete.
func New(tr *ds1302.Transport) *Clock {
	return &Clock{tr: tr, req: make(chan request)}
}

// Run is the actor loop. It disables the chip's write protection once so
// setup-mode increments can land, then serves requests until the context is
// cancelled or a bus transaction fails. A bus failure is fatal: the error is
// delivered to the waiting caller and returned, taking the process down with
// it rather than retrying on an undefined bus state.
func (c *Clock) Run(ctx context.Context) error {
	if err := c.tr.DisableWriteProtect(); err != nil {
		return fmt.Errorf("rtc: disable write protect: %w", err)
	}

	var cached Fields
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-c.req:
			fields, err := c.serve(r, cached)
			if err == nil {
				cached = fields
			}
			r.reply <- response{fields: fields, err: err}
			if err != nil {
				return fmt.Errorf("rtc: %w", err)
			}
		}
	}
}

func (c *Clock) serve(r request, cached Fields) (Fields, error) {
	// Always read first so an increment never writes back a stale value.
	sec, min, hour, err := c.tr.BurstRead()
	if err != nil {
		return cached, fmt.Errorf("burst read: %w", err)
	}
	fields := Fields{Hour: hour, Minute: min, Second: sec}
	if !r.increment {
		return fields, nil
	}

	var cur int
	switch r.field {
	case Seconds:
		cur = fields.Second
	case Minutes:
		cur = fields.Minute
	default:
		cur = fields.Hour
	}
	next := (cur + 1) % r.field.Modulus()

	if err := c.tr.WriteField(r.field, next); err != nil {
		return cached, fmt.Errorf("write %s: %w", r.field, err)
	}

	switch r.field {
	case Seconds:
		fields.Second = next
	case Minutes:
		fields.Minute = next
	default:
		fields.Hour = next
	}
	return fields, nil
}

// Read performs one burst-read transaction and returns the snapshot.
func (c *Clock) Read(ctx context.Context) (Fields, error) {
	return c.do(ctx, request{reply: make(chan response, 1)})
}

// Increment performs a read-then-write transaction pair on the selected
// field, wrapping at the field's modulus, and returns the new snapshot.
func (c *Clock) Increment(ctx context.Context, f Field) (Fields, error) {
	return c.do(ctx, request{increment: true, field: f, reply: make(chan response, 1)})
}

func (c *Clock) do(ctx context.Context, r request) (Fields, error) {
	select {
	case c.req <- r:
	case <-ctx.Done():
		return Fields{}, ctx.Err()
	}
	select {
	case resp := <-r.reply:
		return resp.fields, resp.err
	case <-ctx.Done():
		return Fields{}, ctx.Err()
	}
}

// Poll reads the clock on a fixed cadence and publishes each snapshot on
// ticks. Returns on context cancellation or a fatal bus error.
func (c *Clock) Poll(ctx context.Context, interval time.Duration, ticks chan<- Fields) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			fields, err := c.Read(ctx)
			if err != nil {
				return fmt.Errorf("rtc poll: %w", err)
			}
			select {
			case ticks <- fields:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
