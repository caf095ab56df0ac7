// Package ds1302 implements the software-bit-banged three-wire protocol of
// the DS1302 real-time-clock chip: byte/bit transfer primitives, transaction
// framing, and BCD conversion. Pin-level I/O failures are unrecoverable at
// this layer — a half-completed frame leaves the chip in an undefined state,
// so errors propagate without retry and callers treat them as fatal.
package ds1302

import (
	"fmt"
	"time"

	"github.com/CC4K/timelock/internal/gpio"
)

// Command bytes. Bit 0 set = read, clear = write; bits 1-5 address the
// register; burst mode addresses all clock registers at once.
const (
	cmdWriteProtect = 0x8E // control register, write
	cmdWriteSeconds = 0x80
	cmdWriteMinutes = 0x82
	cmdWriteHours   = 0x84
	cmdBurstRead    = 0xBF
)

// DefaultGuardDelay is the hold time on each half of every clock edge.
// The DS1302 datasheet asks for 250ns minimum at 5V; 1µs clears it with
// margin. Tunable via New, not a fixed requirement.
const DefaultGuardDelay = time.Microsecond

// Register identifies one writable clock register.
type Register int

const (
	Seconds Register = iota
	Minutes
	Hours
)

// String returns the register name for logs and display.
func (r Register) String() string {
	switch r {
	case Seconds:
		return "SECONDS"
	case Minutes:
		return "MINUTES"
	case Hours:
		return "HOURS"
	}
	return fmt.Sprintf("Register(%d)", int(r))
}

// Modulus returns the wrap point for incrementing the register's value.
func (r Register) Modulus() int {
	if r == Hours {
		return 24
	}
	return 60
}

func (r Register) writeCommand() byte {
	switch r {
	case Seconds:
		return cmdWriteSeconds
	case Minutes:
		return cmdWriteMinutes
	default:
		return cmdWriteHours
	}
}

// mask clears the register-specific high bits: bit 7 of seconds is the
// clock-halt flag (forced 0 to keep the oscillator running), bits 6-7 of
// hours select 12-hour mode (forced 0 for 24h).
func (r Register) mask() byte {
	if r == Hours {
		return 0x3F
	}
	return 0x7F
}

// Transport is the bit-level protocol engine. It drives the serial clock
// and reset lines and owns the bidirectional data line, which spends most
// of its life in output mode and is switched to input only for the read
// phase of a burst.
//
// Transport is not safe for concurrent use; see internal/clock for the
// serialized owner.
type Transport struct {
	clk   gpio.Output
	rst   gpio.Output
	dat   gpio.DataOut
	guard time.Duration
	sleep func(time.Duration)
}

// New creates a Transport over the three wires. A non-positive guard delay
// selects DefaultGuardDelay.
func New(clk, rst gpio.Output, dat gpio.DataOut, guard time.Duration) *Transport {
	if guard <= 0 {
		guard = DefaultGuardDelay
	}
	return &Transport{
		clk:   clk,
		rst:   rst,
		dat:   dat,
		guard: guard,
		sleep: time.Sleep,
	}
}

// open starts a transaction: clock driven low before reset goes high.
func (t *Transport) open() error {
	if err := t.clk.Set(false); err != nil {
		return fmt.Errorf("clock low: %w", err)
	}
	if err := t.rst.Set(true); err != nil {
		return fmt.Errorf("reset high: %w", err)
	}
	return nil
}

// close ends the transaction by dropping reset.
func (t *Transport) close() error {
	if err := t.rst.Set(false); err != nil {
		return fmt.Errorf("reset low: %w", err)
	}
	return nil
}

// sendByte shifts one byte out least-significant-bit first. Each bit:
// clock low, present the bit, guard delay, clock high, guard delay.
func (t *Transport) sendByte(b byte) error {
	for i := 0; i < 8; i++ {
		if err := t.clk.Set(false); err != nil {
			return err
		}
		if err := t.dat.Set((b>>i)&0x01 == 1); err != nil {
			return err
		}
		t.sleep(t.guard)
		if err := t.clk.Set(true); err != nil {
			return err
		}
		t.sleep(t.guard)
	}
	return nil
}

// recvByte shifts one byte in least-significant-bit first. The chip presents
// each bit on the falling clock edge; sample while the clock is low.
func (t *Transport) recvByte(in gpio.DataIn) (byte, error) {
	var b byte
	for i := 0; i < 8; i++ {
		if err := t.clk.Set(false); err != nil {
			return 0, err
		}
		high, err := in.Get()
		if err != nil {
			return 0, err
		}
		if high {
			b |= 1 << i
		}
		if err := t.clk.Set(true); err != nil {
			return 0, err
		}
	}
	return b, nil
}

// DisableWriteProtect clears the write-protect bit in the control register.
// Must run once before any field write after chip power-up.
func (t *Transport) DisableWriteProtect() error {
	if err := t.open(); err != nil {
		return err
	}
	if err := t.sendByte(cmdWriteProtect); err != nil {
		return fmt.Errorf("send command 0x%02X: %w", cmdWriteProtect, err)
	}
	if err := t.sendByte(0x00); err != nil {
		return fmt.Errorf("send write-protect data: %w", err)
	}
	return t.close()
}

// WriteField writes one decimal field value to its register, BCD-packed
// with the register-specific high bits forced to zero.
func (t *Transport) WriteField(reg Register, dec int) error {
	cmd := reg.writeCommand()
	if err := t.open(); err != nil {
		return err
	}
	if err := t.sendByte(cmd); err != nil {
		return fmt.Errorf("send command 0x%02X: %w", cmd, err)
	}
	if err := t.sendByte(DecToBCD(dec) & reg.mask()); err != nil {
		return fmt.Errorf("send %s data: %w", reg, err)
	}
	return t.close()
}

// BurstRead reads seconds, minutes, and hours in one framed transaction.
// The burst frame carries seven register bytes; the trailing four
// (date, month, day, year) are clocked through and discarded so the chip's
// burst pointer completes the frame. Returns decimal values.
func (t *Transport) BurstRead() (sec, min, hour int, err error) {
	if err := t.dat.Set(false); err != nil {
		return 0, 0, 0, fmt.Errorf("data low: %w", err)
	}
	if err := t.open(); err != nil {
		return 0, 0, 0, err
	}
	t.sleep(t.guard)
	if err := t.sendByte(cmdBurstRead); err != nil {
		return 0, 0, 0, fmt.Errorf("send command 0x%02X: %w", cmdBurstRead, err)
	}

	in, err := t.dat.IntoInput()
	if err != nil {
		return 0, 0, 0, err
	}

	var raw [3]byte
	for i := range raw {
		if raw[i], err = t.recvByte(in); err != nil {
			return 0, 0, 0, fmt.Errorf("receive byte %d: %w", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		if _, err := t.recvByte(in); err != nil {
			return 0, 0, 0, fmt.Errorf("discard byte %d: %w", i, err)
		}
	}

	if err := t.close(); err != nil {
		return 0, 0, 0, err
	}

	out, err := in.IntoOutput()
	if err != nil {
		return 0, 0, 0, err
	}
	t.dat = out

	sec = BCDToDec(raw[0] & 0x7F)
	min = BCDToDec(raw[1] & 0x7F)
	hour = BCDToDec(raw[2] & 0x3F)
	return sec, min, hour, nil
}

// SetTime provisions the clock: disables write protection, then writes all
// three fields. Used by the -set-time flag, not by the running workers.
func (t *Transport) SetTime(hour, min, sec int) error {
	if hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 59 {
		return fmt.Errorf("time %02d:%02d:%02d out of range", hour, min, sec)
	}
	if err := t.DisableWriteProtect(); err != nil {
		return err
	}
	if err := t.WriteField(Seconds, sec); err != nil {
		return err
	}
	if err := t.WriteField(Minutes, min); err != nil {
		return err
	}
	return t.WriteField(Hours, hour)
}
