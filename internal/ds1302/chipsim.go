package ds1302

import (
	"fmt"
	"sync"

	"github.com/CC4K/timelock/internal/gpio"
)

// ChipSim is a test double that behaves like a DS1302 on the other end of
// the three wires. It hands out gpio line implementations for the clock,
// reset, and data pins, decodes command and data bytes from clock edges,
// serves burst reads from its registers, and records every framed
// transaction along with any protocol violations it observes.
//
// Safe for concurrent use; line operations are serialized internally so the
// mutual-exclusion tests can hammer it from multiple goroutines.
type ChipSim struct {
	mu sync.Mutex

	// register file, raw BCD as written
	seconds byte
	minutes byte
	hours   byte

	writeProtected bool

	// line levels
	clk     bool
	rst     bool
	dataOut bool // level driven by the host while the data line is an output
	outBit  bool // bit the chip presents while the data line is an input

	// decode state
	inTxn   bool
	phase   simPhase
	curByte byte
	bitIdx  int
	cur     Transaction
	readBuf []byte
	readIdx int

	transactions []Transaction
	violations   []string
}

type simPhase int

const (
	phaseCommand simPhase = iota
	phaseData
	phaseRead
)

// Transaction is one framed exchange as decoded by the simulated chip.
type Transaction struct {
	// Sent holds the command byte plus any data bytes the host shifted out.
	Sent []byte
	// ServedBits counts bits the chip presented during a burst read.
	ServedBits int
}

// NewChipSim creates a simulated chip with the clock halted at 00:00:00 and
// write protection enabled, as after power-up.
func NewChipSim() *ChipSim {
	return &ChipSim{writeProtected: true}
}

// CLK returns the serial-clock line as seen by the host.
func (s *ChipSim) CLK() gpio.Output { return &simCLK{s} }

// RST returns the reset/enable line as seen by the host.
func (s *ChipSim) RST() gpio.Output { return &simRST{s} }

// DAT returns the bidirectional data line, starting in output mode.
func (s *ChipSim) DAT() gpio.DataOut { return &simDataOut{s} }

// SetTime loads the register file from decimal values.
func (s *ChipSim) SetTime(hour, min, sec int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hours = DecToBCD(hour)
	s.minutes = DecToBCD(min)
	s.seconds = DecToBCD(sec)
}

// Time decodes the register file to decimal values.
func (s *ChipSim) Time() (hour, min, sec int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BCDToDec(s.hours & 0x3F), BCDToDec(s.minutes & 0x7F), BCDToDec(s.seconds & 0x7F)
}

// WriteProtected reports the state of the write-protect bit.
func (s *ChipSim) WriteProtected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeProtected
}

// Transactions returns a copy of every completed transaction in order.
func (s *ChipSim) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Violations returns a copy of every protocol violation observed.
func (s *ChipSim) Violations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.violations))
	copy(out, s.violations)
	return out
}

func (s *ChipSim) violate(format string, args ...interface{}) {
	s.violations = append(s.violations, fmt.Sprintf(format, args...))
}

// onReset handles a level change on the reset line.
func (s *ChipSim) onReset(high bool) {
	if high {
		if s.inTxn {
			s.violate("reset reasserted inside an open transaction")
			return
		}
		if s.clk {
			s.violate("transaction opened with clock high")
		}
		s.inTxn = true
		s.phase = phaseCommand
		s.curByte = 0
		s.bitIdx = 0
		s.cur = Transaction{}
		return
	}

	if !s.inTxn {
		return
	}
	if s.bitIdx%8 != 0 {
		s.violate("transaction closed mid-byte (%d stray bits)", s.bitIdx%8)
	}
	switch {
	case len(s.cur.Sent) == 0:
		s.violate("transaction closed without a command byte")
	case s.phase == phaseData && len(s.cur.Sent) == 1:
		s.violate("write command 0x%02X closed without a data byte", s.cur.Sent[0])
	}
	s.transactions = append(s.transactions, s.cur)
	s.inTxn = false
	s.readBuf = nil
}

// onClockRising samples one host-driven bit while receiving.
func (s *ChipSim) onClockRising() {
	if !s.inTxn || s.phase == phaseRead {
		return
	}
	if s.dataOut {
		s.curByte |= 1 << (s.bitIdx % 8)
	}
	s.bitIdx++
	if s.bitIdx%8 == 0 {
		s.byteComplete()
	}
}

// onClockFalling presents the next burst bit while sending.
func (s *ChipSim) onClockFalling() {
	if !s.inTxn || s.phase != phaseRead {
		return
	}
	byteIdx := s.readIdx / 8
	if byteIdx < len(s.readBuf) {
		s.outBit = (s.readBuf[byteIdx]>>(s.readIdx%8))&0x01 == 1
	} else {
		s.outBit = false
	}
	s.readIdx++
	s.cur.ServedBits++
}

func (s *ChipSim) byteComplete() {
	b := s.curByte
	s.curByte = 0
	s.cur.Sent = append(s.cur.Sent, b)

	if s.phase == phaseCommand {
		switch b {
		case cmdBurstRead:
			// Clock burst frame: seconds, minutes, hours, then the four
			// calendar registers the host clocks through and discards.
			s.readBuf = []byte{s.seconds, s.minutes, s.hours, 0x30, 0x08, 0x06, 0x26}
			s.readIdx = 0
			s.phase = phaseRead
		case cmdWriteProtect, cmdWriteSeconds, cmdWriteMinutes, cmdWriteHours:
			s.phase = phaseData
		default:
			s.violate("unknown command 0x%02X", b)
			s.phase = phaseData
		}
		return
	}

	// Data byte for a write command.
	switch s.cur.Sent[0] {
	case cmdWriteProtect:
		s.writeProtected = b&0x80 != 0
	case cmdWriteSeconds:
		if s.writeProtected {
			s.violate("seconds write while write-protected")
		} else {
			s.seconds = b
		}
	case cmdWriteMinutes:
		if s.writeProtected {
			s.violate("minutes write while write-protected")
		} else {
			s.minutes = b
		}
	case cmdWriteHours:
		if s.writeProtected {
			s.violate("hours write while write-protected")
		} else {
			s.hours = b
		}
	}
}

type simCLK struct{ s *ChipSim }

func (l *simCLK) Set(v bool) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if v == l.s.clk {
		return nil
	}
	l.s.clk = v
	if v {
		l.s.onClockRising()
	} else {
		l.s.onClockFalling()
	}
	return nil
}

type simRST struct{ s *ChipSim }

func (l *simRST) Set(v bool) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if v == l.s.rst {
		return nil
	}
	l.s.rst = v
	l.s.onReset(v)
	return nil
}

type simDataOut struct{ s *ChipSim }

func (d *simDataOut) Set(v bool) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.dataOut = v
	return nil
}

func (d *simDataOut) IntoInput() (gpio.DataIn, error) {
	return &simDataIn{d.s}, nil
}

type simDataIn struct{ s *ChipSim }

func (d *simDataIn) Get() (bool, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return d.s.outBit, nil
}

func (d *simDataIn) IntoOutput() (gpio.DataOut, error) {
	return &simDataOut{d.s}, nil
}
