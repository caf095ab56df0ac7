//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Chip wraps the GPIO character device and tracks every requested line so
// Close can release them all.
type Chip struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
}

// OpenChip opens gpiochip0.
func OpenChip() (*Chip, error) {
	c, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	return &Chip{chip: c}, nil
}

// Output requests pin as an output, initially driven low.
func (c *Chip) Output(pin int) (Output, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	c.lines = append(c.lines, line)
	return &realOutput{line: line}, nil
}

// Input requests pin as an input with the internal pull-up enabled,
// matching the active-low button and light sensor wiring.
func (c *Chip) Input(pin int) (Input, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	c.lines = append(c.lines, line)
	return &realInput{line: line}, nil
}

// Data requests pin as the RTC bidirectional data line, starting in output
// mode driven low. Direction changes go through IntoInput/IntoOutput, which
// reconfigure the same kernel line request.
func (c *Chip) Data(pin int) (DataOut, error) {
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request data pin %d: %w", pin, err)
	}
	c.lines = append(c.lines, line)
	return &realDataOut{line: line}, nil
}

// Close reconfigures every requested line back to input (the Pi boot
// default) and releases it, then closes the chip.
func (c *Chip) Close() error {
	var errs []error
	for _, line := range c.lines {
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if err := c.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

type realOutput struct {
	line *gpiocdev.Line
}

func (o *realOutput) Set(v bool) error {
	return o.line.SetValue(boolToLevel(v))
}

type realInput struct {
	line *gpiocdev.Line
}

func (i *realInput) Get() (bool, error) {
	v, err := i.line.Value()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

type realDataOut struct {
	line *gpiocdev.Line
}

func (o *realDataOut) Set(v bool) error {
	return o.line.SetValue(boolToLevel(v))
}

func (o *realDataOut) IntoInput() (DataIn, error) {
	if err := o.line.Reconfigure(gpiocdev.AsInput); err != nil {
		return nil, fmt.Errorf("data line to input: %w", err)
	}
	return &realDataIn{line: o.line}, nil
}

type realDataIn struct {
	line *gpiocdev.Line
}

func (i *realDataIn) Get() (bool, error) {
	v, err := i.line.Value()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (i *realDataIn) IntoOutput() (DataOut, error) {
	if err := i.line.Reconfigure(gpiocdev.AsOutput(0)); err != nil {
		return nil, fmt.Errorf("data line to output: %w", err)
	}
	return &realDataOut{line: i.line}, nil
}

func boolToLevel(v bool) int {
	if v {
		return 1
	}
	return 0
}
