// Package sensors samples the ambient environment: temperature, relative
// humidity, derived pressure, and a binary light level. The humidity/
// temperature device speaks its own wire protocol and is reached only
// through the EnvironmentReader interface; the real implementation wraps a
// DHT22 driver.
package sensors

import (
	"fmt"
	"math"
	"time"
)

// Kind tags a sample variant.
type Kind string

const (
	Temperature Kind = "TEMPERATURE"
	Moisture    Kind = "MOISTURE"
	Light       Kind = "LIGHT"
	Pressure    Kind = "PRESSURE"
)

// Kinds is the display-cursor order.
var Kinds = [4]Kind{Temperature, Moisture, Light, Pressure}

// Sample is one tagged sensor reading. Value carries °C, %RH, or hPa
// depending on Kind; Bright is meaningful for Light only.
type Sample struct {
	Kind   Kind
	Value  float64
	Bright bool
	Time   time.Time
}

// Display formats the sample for the panel.
func (s Sample) Display() string {
	switch s.Kind {
	case Temperature:
		return fmt.Sprintf("%.1f C", s.Value)
	case Moisture:
		return fmt.Sprintf("%.1f %%RH", s.Value)
	case Pressure:
		return fmt.Sprintf("%.1f hPa", s.Value)
	case Light:
		if s.Bright {
			return "BRIGHT"
		}
		return "DARK"
	}
	return "?"
}

// EnvironmentReader is the external humidity/temperature collaborator.
type EnvironmentReader interface {
	// Read returns temperature in °C and relative humidity in percent.
	// A failed read is recoverable: the caller skips the cycle and
	// retries on the next one.
	Read() (tempC, rh float64, err error)
}

// pressureFrom estimates station pressure from temperature and relative
// humidity: standard sea-level pressure less the Magnus-approximated
// partial vapor pressure. Coarse, display-only arithmetic.
func pressureFrom(tempC, rh float64) float64 {
	saturation := 6.1078 * math.Pow(10, 7.5*tempC/(237.3+tempC))
	vapor := saturation * rh / 100
	return 1013.25 - vapor
}
