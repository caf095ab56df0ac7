//go:build linux && cgo

package sensors

import (
	"fmt"

	dht "github.com/d2r2/go-dht"
)

// DHT22 reads a DHT22 humidity/temperature sensor on a GPIO pin. The
// driver bit-bangs the sensor's single-wire protocol itself; this adapter
// only maps it onto EnvironmentReader.
type DHT22 struct {
	pin int
}

// NewDHT22 creates a reader for the sensor on the given BCM pin.
func NewDHT22(pin int) *DHT22 {
	return &DHT22{pin: pin}
}

// Read performs one measurement with a couple of retries; the DHT22
// protocol is timing-sensitive and individual reads fail routinely.
func (d *DHT22) Read() (float64, float64, error) {
	temp, humidity, _, err := dht.ReadDHTxxWithRetry(dht.DHT22, d.pin, false, 3)
	if err != nil {
		return 0, 0, fmt.Errorf("dht22 pin %d: %w", d.pin, err)
	}
	return float64(temp), float64(humidity), nil
}
