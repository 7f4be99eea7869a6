// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pcf8574 models the TI/NXP PCF8574(T) I2C I/O expander as it is
// wired on the common HD44780 LCD backpack (sold as LCD1602, LCD2004).
//
// It is not a general purpose GPIO expander driver. The chip has no
// registers: an I2C write sets all eight quasi-bidirectional outputs at
// once, and an I2C read samples all eight pins. On the backpack those
// outputs are wired straight to the display's control and data lines, so
// this package exposes the expander only as a set of named LCD lines that
// serialize to a single latch byte.
//
// Backpack wiring:
//
//	PCF8574     HD44780
//	=======     =======
//	   P0       RS (register select)
//	   P1       RW (read/write)
//	   P2       E  (clock enable)
//	   P3       Backlight
//	   P4-P7    DB4-DB7 (data bus, 4-bit mode)
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
package pcf8574

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the address with the three strap pins left floating
// high, which is how most backpack modules ship. Strapping A0-A2 selects
// 0x20-0x27; the PCF8574A variant responds on 0x38-0x3f instead.
const DefaultAddress uint16 = 0x27

// Latch bit assignment. Fixed by the backpack wiring; changing wiring
// assumptions means changing only these values.
const (
	bitRS        byte = 0x01
	bitRW        byte = 0x02
	bitE         byte = 0x04
	bitBacklight byte = 0x08
)

// PinState is the logical state of the eight expander lines for one
// transaction. Data carries DB4-DB7 in its low 4 bits. A PinState is built
// transiently per transaction and serialized with Encode.
type PinState struct {
	Data      byte
	RS        bool
	RW        bool
	E         bool
	Backlight bool
}

// Encode returns the latch byte to write to the expander for this state.
func (s PinState) Encode() byte {
	b := (s.Data & 0x0f) << 4
	if s.RS {
		b |= bitRS
	}
	if s.RW {
		b |= bitRW
	}
	if s.E {
		b |= bitE
	}
	if s.Backlight {
		b |= bitBacklight
	}
	return b
}

// Dev is the output latch of one PCF8574 on an I2C bus.
//
// The latch is a single shared byte with no internal arbitration, so a Dev
// is not safe for concurrent use; callers must serialize access.
type Dev struct {
	d    *i2c.Dev
	last PinState
}

// New returns a Dev for the expander at the given address. Valid addresses
// are 0x20-0x27 (PCF8574) and 0x38-0x3f (PCF8574A).
func New(bus i2c.Bus, address uint16) (*Dev, error) {
	if (address < 0x20 || address > 0x27) && (address < 0x38 || address > 0x3f) {
		return nil, fmt.Errorf("pcf8574: invalid address 0x%x", address)
	}
	return &Dev{d: &i2c.Dev{Bus: bus, Addr: address}}, nil
}

// WriteState serializes state and writes it to the output latch. The whole
// latch is written each time, so state must carry every line, not just the
// ones that changed.
func (d *Dev) WriteState(s PinState) error {
	if err := d.d.Tx([]byte{s.Encode()}, nil); err != nil {
		return fmt.Errorf("pcf8574: %w", err)
	}
	d.last = s
	return nil
}

// Read samples the port and returns the raw pin levels. A pin being read
// must have been latched high first; whatever drives it low wins against
// the weak internal pull-up.
func (d *Dev) Read() (byte, error) {
	r := make([]byte, 1)
	if err := d.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf8574: %w", err)
	}
	return r[0], nil
}

// Last returns the last state written to the latch. Callers that need to
// flip a single line without glitching the others start from this.
func (d *Dev) Last() PinState {
	return d.last
}

// Halt releases the display lines: every output high (the chip's reset
// state) with the backlight off.
func (d *Dev) Halt() error {
	if err := d.d.Tx([]byte{0xf7}, nil); err != nil {
		return fmt.Errorf("pcf8574: %w", err)
	}
	d.last = PinState{Data: 0x0f, RS: true, RW: true, E: true}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("PCF8574_%x", d.d.Addr)
}

var _ fmt.Stringer = &Dev{}
