//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

// OpenChip returns an error on non-Linux platforms.
func OpenChip() (*Chip, error) {
	return nil, errUnsupported
}

// Output is not implemented on non-Linux platforms.
func (c *Chip) Output(pin int) (Output, error) {
	return nil, errUnsupported
}

// Input is not implemented on non-Linux platforms.
func (c *Chip) Input(pin int) (Input, error) {
	return nil, errUnsupported
}

// Data is not implemented on non-Linux platforms.
func (c *Chip) Data(pin int) (DataOut, error) {
	return nil, errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (c *Chip) Close() error {
	return nil
}
