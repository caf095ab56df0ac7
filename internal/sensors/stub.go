//go:build !(linux && cgo)

package sensors

import "errors"

// DHT22 is not available on non-Linux platforms.
type DHT22 struct{}

// NewDHT22 returns a stub on non-Linux platforms.
func NewDHT22(pin int) *DHT22 {
	return &DHT22{}
}

// Read is not implemented on non-Linux platforms.
func (d *DHT22) Read() (float64, float64, error) {
	return 0, 0, errors.New("dht22: not supported on this platform (requires Linux)")
}
