package sensors

// FakeEnvironment is a test double for the humidity/temperature sensor.
type FakeEnvironment struct {
	// Temp and RH are returned by Read.
	Temp float64
	RH   float64

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Reads counts calls to Read.
	Reads int
}

// Read returns the configured values.
func (f *FakeEnvironment) Read() (float64, float64, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, 0, f.ReadError
	}
	return f.Temp, f.RH, nil
}
