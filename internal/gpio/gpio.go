// Package gpio provides digital line access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Output drives a single digital output line (active-high).
type Output interface {
	// Set drives the line high (true) or low (false).
	Set(v bool) error
}

// Input reads a single digital input line.
type Input interface {
	// Get returns the raw electrical level: true = high, false = low.
	// Active-low contracts (button, light sensor) are inverted by callers.
	Get() (bool, error)
}

// DataOut is the bidirectional RTC data line while configured as an output.
// The only way to read the line is to convert it to a DataIn first, so no
// code path can sample the line while it is still driving it.
type DataOut interface {
	Set(v bool) error

	// IntoInput reconfigures the line as an input and consumes this handle.
	// The returned DataIn is the sole way to access the line afterwards.
	IntoInput() (DataIn, error)
}

// DataIn is the bidirectional RTC data line while configured as an input.
type DataIn interface {
	Get() (bool, error)

	// IntoOutput reconfigures the line as an output (driven low) and
	// consumes this handle.
	IntoOutput() (DataOut, error)
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinCLK      = 17 // RTC serial clock
	DefaultPinDAT      = 27 // RTC bidirectional data
	DefaultPinRST      = 22 // RTC reset/enable
	DefaultPinButton   = 16 // gesture button, active-low, pulled up
	DefaultPinLight    = 26 // light sensor, active-low = bright
	DefaultPinLockLED  = 5  // lock indicator, active-high
	DefaultPinGrantLED = 6  // access-granted indicator, active-high
	DefaultPinDHT      = 4  // DHT22 humidity/temperature sensor
)
