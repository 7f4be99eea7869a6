// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi HD44780 LCD display chipset through
// a PCF8574 I2C GPIO expander backpack.
//
// The backpack exposes no notion of LCD instructions, only eight output
// lines. This driver translates each instruction into the byte writes the
// display's 4-bit electrical interface needs: two (or, during
// initialization, one) data nibbles per instruction, each clocked in by an
// enable pulse, followed by a wait for the controller's internal execution
// time. The wait is either a fixed worst-case delay or a poll of the
// controller's busy flag, selected at construction.
//
// Implements periph.io/x/conn/v3/display.TextDisplay and
// display.DisplayBacklight.
//
// A Dev is not safe for concurrent use. The bus and the controller's
// instruction register are shared mutable resources with no arbitration:
// interleaved nibbles from two callers corrupt the instruction stream.
// Callers that need concurrency must serialize externally.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/lcdi2c/pcf8574"
)

const packageName = "hd44780"

var (
	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)

	// ErrTimeout is returned in busy-poll mode when the busy flag does not
	// clear within Opts.PollLimit reads. The Dev stays usable, but display
	// content is suspect until Init is run again.
	ErrTimeout = errors.New(packageName + ": busy flag did not clear")

	// ErrInvalidParam is returned, before any bus traffic is generated, for
	// arguments outside the controller's addressable range.
	ErrInvalidParam = errors.New(packageName + ": invalid parameter")
)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// Strategy selects how the driver waits for the controller to finish
// executing an instruction before issuing the next one. The strategy is
// fixed at construction so the byte sequence for a given call stream is
// deterministic.
type Strategy int

const (
	// FixedDelay sleeps the instruction's documented worst-case execution
	// time. Always correct, wastes time on fast instructions.
	FixedDelay Strategy = iota
	// BusyPoll reads the instruction register after every instruction until
	// the busy flag clears, bounded by Opts.PollLimit.
	BusyPoll
)

// Opts holds the configuration for a display. The timing fields default to
// the datasheet worst case for a 190kHz internal oscillator; hosts driving
// an unusually slow bus or display can stretch them.
type Opts struct {
	// Rows is the number of display lines: 1, 2 or 4. Defaults to 2.
	Rows int
	// Cols is the number of characters per line, at most 40. Defaults to 16.
	Cols int
	// Strategy selects the instruction synchronization mode.
	Strategy Strategy
	// BacklightOff starts the display with the backlight dark.
	BacklightOff bool
	// Font5x10 selects the 5x10 dot character font. Only valid on one-line
	// displays; the default 5x8 font works everywhere.
	Font5x10 bool

	// PulseWidth is how long the enable line is held high. The datasheet
	// minimum is 450ns; I2C transaction latency usually dwarfs this.
	PulseWidth time.Duration
	// SettleTime is the hold after the enable falling edge before the next
	// transaction may start.
	SettleTime time.Duration
	// ShortDelay is the fixed-delay wait for ordinary instructions,
	// default 52µs.
	ShortDelay time.Duration
	// LongDelay is the fixed-delay wait for clear and home, default 2.16ms.
	LongDelay time.Duration
	// PollLimit bounds the busy-flag reads per instruction in BusyPoll
	// mode, default 128.
	PollLimit int
}

const (
	defaultPulseWidth = time.Microsecond
	defaultSettleTime = time.Microsecond
	defaultShortDelay = 52 * time.Microsecond
	defaultLongDelay  = 2160 * time.Microsecond
	defaultPollLimit  = 128
)

// Status is the contents of the controller's instruction register on the
// read path: the busy flag and the 7-bit address counter.
type Status struct {
	// Busy is set while the controller is still executing the previous
	// instruction.
	Busy bool
	// AddressCounter is the current CGRAM or DDRAM address.
	AddressCounter byte
}

// Dev is an HD44780 display behind a PCF8574 backpack.
type Dev struct {
	port *pcf8574.Dev
	rows int
	cols int

	strategy   Strategy
	pulse      time.Duration
	settle     time.Duration
	shortDelay time.Duration
	longDelay  time.Duration
	pollLimit  int

	// The controller's mode registers are write-only triggers, so the
	// driver remembers what it last set in order to offer partial toggles.
	backlight bool
	on        bool
	cursor    bool
	blink     bool
	increment bool
	shift     bool
	font5x10  bool

	// Cursor position, zero based, tracked for newline handling and for
	// restoring the address counter after CGRAM access.
	row int
	col int
}

// New returns an initialized display on the backpack at the given I2C
// address (typically 0x20-0x27). opts may be nil for a 16x2 display with
// fixed-delay synchronization and the backlight on.
func New(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	rows := opts.Rows
	if rows == 0 {
		rows = 2
	}
	cols := opts.Cols
	if cols == 0 {
		cols = 16
	}
	if rows != 1 && rows != 2 && rows != 4 {
		return nil, fmt.Errorf("%w: %d rows", ErrInvalidParam, rows)
	}
	if cols < 1 || cols > 40 {
		return nil, fmt.Errorf("%w: %d cols", ErrInvalidParam, cols)
	}
	// The controller has 80 bytes of DDRAM. A larger matrix would push row
	// addresses past 0x7f, where they alias the set-DDRAM-address opcode.
	if rows*cols > 80 {
		return nil, fmt.Errorf("%w: %dx%d matrix exceeds 80 DDRAM bytes", ErrInvalidParam, cols, rows)
	}
	if opts.Font5x10 && rows != 1 {
		return nil, fmt.Errorf("%w: 5x10 font needs a one-line display", ErrInvalidParam)
	}
	if opts.Strategy != FixedDelay && opts.Strategy != BusyPoll {
		return nil, fmt.Errorf("%w: strategy %d", ErrInvalidParam, opts.Strategy)
	}
	port, err := pcf8574.New(bus, address)
	if err != nil {
		return nil, wrap(err)
	}
	d := &Dev{
		port:       port,
		rows:       rows,
		cols:       cols,
		strategy:   opts.Strategy,
		pulse:      opts.PulseWidth,
		settle:     opts.SettleTime,
		shortDelay: opts.ShortDelay,
		longDelay:  opts.LongDelay,
		pollLimit:  opts.PollLimit,
		backlight:  !opts.BacklightOff,
		on:         true,
		increment:  true,
		font5x10:   opts.Font5x10,
	}
	if d.pulse == 0 {
		d.pulse = defaultPulseWidth
	}
	if d.settle == 0 {
		d.settle = defaultSettleTime
	}
	if d.shortDelay == 0 {
		d.shortDelay = defaultShortDelay
	}
	if d.longDelay == 0 {
		d.longDelay = defaultLongDelay
	}
	if d.pollLimit == 0 {
		d.pollLimit = defaultPollLimit
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Init drives the controller through the documented initialization by
// instruction sequence and reapplies the cached display, cursor and entry
// settings. New calls it once; callers may run it again at any time, e.g.
// to recover after a bus error left the controller's registers in an
// unknown state.
func (d *Dev) Init() error {
	// The controller ignores everything until 40ms after Vcc rises.
	time.Sleep(50 * time.Millisecond)

	// It powers up expecting 8-bit transfers. Three single "function set,
	// 8-bit" high nibbles walk it into a known state no matter what mode a
	// previous session left it in; only then is the interface switched to
	// 4-bit and paired-nibble instructions become valid. The busy flag is
	// not readable during this sequence, hence the unconditional sleeps.
	if err := d.writeNibble(0x03, false, false); err != nil {
		return err
	}
	time.Sleep(4100 * time.Microsecond)
	if err := d.writeNibble(0x03, false, false); err != nil {
		return err
	}
	time.Sleep(100 * time.Microsecond)
	if err := d.writeNibble(0x03, false, false); err != nil {
		return err
	}
	time.Sleep(100 * time.Microsecond)
	if err := d.writeNibble(0x02, false, false); err != nil {
		return err
	}
	time.Sleep(100 * time.Microsecond)

	function := cmdFunctionSet
	if d.rows > 1 {
		function |= function2Lines
	}
	if d.font5x10 {
		function |= function5x10
	}
	if err := d.writeInstruction(function, false); err != nil {
		return err
	}
	if err := d.writeDisplayControl(); err != nil {
		return err
	}
	if err := d.Clear(); err != nil {
		return err
	}
	return d.writeEntryMode()
}

// writeNibble performs one enable pulse carrying the low 4 bits of nibble.
//
// The controller samples RS and RW when E rises and latches the data when E
// falls, so the full line state is written three times: once with E low so
// the address lines settle, once with E high, once with E low again. A bus
// failure aborts the sequence immediately: a partially clocked nibble
// leaves the instruction register ambiguous and a blind retry could
// corrupt whatever follows.
func (d *Dev) writeNibble(nibble byte, rs, rw bool) error {
	s := pcf8574.PinState{
		Data:      nibble & 0x0f,
		RS:        rs,
		RW:        rw,
		Backlight: d.backlight,
	}
	if err := d.port.WriteState(s); err != nil {
		return wrap(err)
	}
	s.E = true
	if err := d.port.WriteState(s); err != nil {
		return wrap(err)
	}
	time.Sleep(d.pulse)
	s.E = false
	if err := d.port.WriteState(s); err != nil {
		return wrap(err)
	}
	time.Sleep(d.settle)
	return nil
}

// readNibble clocks one receive cycle and returns DB4-DB7 in the low 4
// bits. The data lines are latched high while E is up so the expander's
// quasi-bidirectional pins can be driven by the controller, and the port is
// sampled with a bus read before E falls.
func (d *Dev) readNibble(rs bool) (byte, error) {
	s := pcf8574.PinState{RS: rs, RW: true, Backlight: d.backlight}
	if err := d.port.WriteState(s); err != nil {
		return 0, wrap(err)
	}
	s.E = true
	s.Data = 0x0f
	if err := d.port.WriteState(s); err != nil {
		return 0, wrap(err)
	}
	time.Sleep(d.pulse)
	b, err := d.port.Read()
	if err != nil {
		return 0, wrap(err)
	}
	s.E = false
	s.Data = 0
	if err := d.port.WriteState(s); err != nil {
		return 0, wrap(err)
	}
	time.Sleep(d.settle)
	return b >> 4, nil
}

// writeInstruction clocks value as two nibbles, high first, both with the
// same register select, then waits for the controller to finish executing.
func (d *Dev) writeInstruction(value byte, rs bool) error {
	if err := d.writeNibble(value>>4, rs, false); err != nil {
		return err
	}
	if err := d.writeNibble(value&0x0f, rs, false); err != nil {
		return err
	}
	return d.waitReady(d.execTime(value, rs))
}

// readByte clocks two receive cycles, high nibble first.
func (d *Dev) readByte(rs bool) (byte, error) {
	hi, err := d.readNibble(rs)
	if err != nil {
		return 0, err
	}
	lo, err := d.readNibble(rs)
	if err != nil {
		return 0, err
	}
	return hi<<4 | lo, nil
}

// execTime returns the documented worst-case execution time for an
// instruction. Only clear and home run longer than the short delay.
func (d *Dev) execTime(value byte, rs bool) time.Duration {
	if !rs && (value == cmdClearDisplay || value == cmdReturnHome) {
		return d.longDelay
	}
	return d.shortDelay
}

// waitReady blocks until the controller can accept the next instruction.
func (d *Dev) waitReady(worst time.Duration) error {
	if d.strategy == FixedDelay {
		time.Sleep(worst)
		return nil
	}
	for range d.pollLimit {
		st, err := d.ReadStatus()
		if err != nil {
			return err
		}
		if !st.Busy {
			return nil
		}
	}
	return ErrTimeout
}

// ReadStatus reads the instruction register: the busy flag and the address
// counter. This read is always accepted, even while the controller is busy.
func (d *Dev) ReadStatus() (Status, error) {
	b, err := d.readByte(false)
	if err != nil {
		return Status{}, err
	}
	return Status{Busy: b&busyFlag != 0, AddressCounter: b &^ busyFlag}, nil
}

// ReadData reads one byte from CGRAM or DDRAM at the current address
// counter, which moves per the entry mode.
func (d *Dev) ReadData() (byte, error) {
	b, err := d.readByte(true)
	if err != nil {
		return 0, err
	}
	return b, d.waitReady(d.shortDelay)
}
