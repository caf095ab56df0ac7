package gpio

import "errors"

// FakeInput is a test double that returns scripted line levels.
type FakeInput struct {
	// Levels contains scripted raw levels to return.
	// Each call to Get() consumes the next level.
	Levels []bool

	// index tracks current position in Levels
	index int

	// ReadError, if set, will be returned by Get()
	ReadError error
}

// NewFakeInput creates a FakeInput with the given levels.
func NewFakeInput(levels []bool) *FakeInput {
	return &FakeInput{Levels: levels}
}

// Get returns the next scripted level.
// If levels are exhausted, returns the last level repeatedly.
func (f *FakeInput) Get() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}

	return level, nil
}

// Reset resets the input to the beginning of its levels.
func (f *FakeInput) Reset() {
	f.index = 0
}

// FakeOutput records every level driven onto the line.
type FakeOutput struct {
	// Level is the last driven level.
	Level bool

	// History contains every driven level in order.
	History []bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// NewFakeOutput creates a FakeOutput driven low.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// Set records the driven level.
func (f *FakeOutput) Set(v bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Level = v
	f.History = append(f.History, v)
	return nil
}
