// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3/display"
)

// HD44780 instruction set. Each instruction is identified by its highest
// set bit; the bits below carry that instruction's options.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryMode      byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdShift          byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80

	entryIncrement byte = 0x02
	entryShift     byte = 0x01

	displayOn     byte = 0x04
	displayCursor byte = 0x02
	displayBlink  byte = 0x01

	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04

	function2Lines byte = 0x08
	function5x10   byte = 0x04

	busyFlag byte = 0x80
)

// Clear blanks the display and moves the cursor to the first position.
func (d *Dev) Clear() error {
	d.row, d.col = 0, 0
	return d.writeInstruction(cmdClearDisplay, false)
}

// Home moves the cursor to the first position and undoes any display
// shift. DDRAM contents are unchanged.
func (d *Dev) Home() error {
	d.row, d.col = 0, 0
	return d.writeInstruction(cmdReturnHome, false)
}

// SetEntryMode sets whether the address counter increments or decrements
// after each data access, and whether the display shifts instead of the
// cursor. New sets increment without shift.
func (d *Dev) SetEntryMode(increment, shift bool) error {
	d.increment = increment
	d.shift = shift
	return d.writeEntryMode()
}

func (d *Dev) writeEntryMode() error {
	v := cmdEntryMode
	if d.increment {
		v |= entryIncrement
	}
	if d.shift {
		v |= entryShift
	}
	return d.writeInstruction(v, false)
}

// Display turns the display on or off without disturbing the cursor and
// blink settings. DDRAM contents are preserved while off.
func (d *Dev) Display(on bool) error {
	d.on = on
	return d.writeDisplayControl()
}

// ShowCursor turns the underline cursor on or off.
func (d *Dev) ShowCursor(on bool) error {
	d.cursor = on
	return d.writeDisplayControl()
}

// Blink turns cursor-position blinking on or off.
func (d *Dev) Blink(on bool) error {
	d.blink = on
	return d.writeDisplayControl()
}

// The controller sets all three display control flags in one instruction,
// so every partial toggle re-encodes the byte from the cached flags.
func (d *Dev) writeDisplayControl() error {
	v := cmdDisplayControl
	if d.on {
		v |= displayOn
	}
	if d.cursor {
		v |= displayCursor
	}
	if d.blink {
		v |= displayBlink
	}
	return d.writeInstruction(v, false)
}

// Move shifts the cursor one position forward or backward without writing
// to DDRAM. The cursor stops at the row edges: a shift there steps the
// controller's address counter out of the row's DDRAM window, so the cursor
// is re-addressed to the tracked cell instead of following it into the gap.
func (d *Dev) Move(dir display.CursorDirection) error {
	if err := d.shiftOp(false, dir); err != nil {
		return err
	}
	switch {
	case dir == display.Forward && d.col < d.cols-1:
		d.col++
	case dir == display.Backward && d.col > 0:
		d.col--
	default:
		return d.writeInstruction(cmdSetDDRAMAddr|(d.rowOffset(d.row)+byte(d.col)), false)
	}
	return nil
}

// ShiftDisplay scrolls the entire display one position. The address
// counter and DDRAM contents are unchanged.
func (d *Dev) ShiftDisplay(dir display.CursorDirection) error {
	return d.shiftOp(true, dir)
}

func (d *Dev) shiftOp(wholeDisplay bool, dir display.CursorDirection) error {
	v := cmdShift
	if wholeDisplay {
		v |= shiftDisplay
	}
	switch dir {
	case display.Forward:
		v |= shiftRight
	case display.Backward:
	default:
		return fmt.Errorf("%w: shift direction %d", ErrInvalidParam, dir)
	}
	return d.writeInstruction(v, false)
}

// SetCGRAMAddress points the address counter at the character generator
// RAM. Valid addresses are 0-63: eight glyph slots of eight lines each.
func (d *Dev) SetCGRAMAddress(addr byte) error {
	if addr > 0x3f {
		return fmt.Errorf("%w: CGRAM address 0x%02x", ErrInvalidParam, addr)
	}
	return d.writeInstruction(cmdSetCGRAMAddr|addr, false)
}

// SetDDRAMAddress points the address counter at display data RAM. The
// address must fall inside one of the configured rows; DDRAM rows are not
// contiguous (row 2 of a 20x4 display starts at 0x14, row 3 at 0x54).
func (d *Dev) SetDDRAMAddress(addr byte) error {
	row, col, ok := d.position(addr)
	if !ok {
		return fmt.Errorf("%w: DDRAM address 0x%02x outside %dx%d geometry",
			ErrInvalidParam, addr, d.cols, d.rows)
	}
	d.row, d.col = row, col
	return d.writeInstruction(cmdSetDDRAMAddr|addr, false)
}

// rowOffset returns the DDRAM base address of a zero-based row. Rows 2 and
// 3 continue rows 0 and 1 in DDRAM, which is the standard HD44780 row-wrap
// quirk.
func (d *Dev) rowOffset(row int) byte {
	switch row {
	case 1:
		return 0x40
	case 2:
		return byte(d.cols)
	case 3:
		return byte(0x40 + d.cols)
	default:
		return 0
	}
}

// position maps a DDRAM address back to a zero-based row and column, or
// reports that the address is outside the configured geometry.
func (d *Dev) position(addr byte) (row, col int, ok bool) {
	for r := range d.rows {
		base := d.rowOffset(r)
		if addr >= base && addr < base+byte(d.cols) {
			return r, int(addr - base), true
		}
	}
	return 0, 0, false
}

// MoveTo moves the cursor to the 1-based row and column.
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.rows || col < d.MinCol() || col > d.cols {
		return fmt.Errorf("%w: MoveTo(%d,%d)", ErrInvalidParam, row, col)
	}
	d.row, d.col = row-1, col-1
	return d.writeInstruction(cmdSetDDRAMAddr|(d.rowOffset(d.row)+byte(d.col)), false)
}

// Write writes data bytes to DDRAM at the cursor. A '\n' moves to the start
// of the next row, and writes past the right edge wrap onto the following
// row, since consecutive DDRAM addresses do not follow the visible layout.
// Write assumes the default left-to-right entry mode.
func (d *Dev) Write(p []byte) (int, error) {
	n := 0
	for _, b := range p {
		if b == '\n' {
			if err := d.nextRow(); err != nil {
				return n, err
			}
			n++
			continue
		}
		if err := d.writeInstruction(b, true); err != nil {
			return n, err
		}
		n++
		d.col++
		if d.col >= d.cols {
			if err := d.nextRow(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// nextRow moves to column 0 of the following row, wrapping to the top.
func (d *Dev) nextRow() error {
	return d.MoveTo((d.row+1)%d.rows+1, 1)
}

// WriteByte writes a single data byte at the cursor. Bytes 0-7 display the
// CGRAM glyphs defined with SetGlyph.
func (d *Dev) WriteByte(b byte) error {
	_, err := d.Write([]byte{b})
	return err
}

// WriteString writes text at the cursor.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// Backlight turns the backlight on (any non-zero intensity) or off. The
// backlight line is a plain expander output, not an HD44780 instruction,
// so this rewrites the last latch byte with only the backlight bit changed.
func (d *Dev) Backlight(intensity display.Intensity) error {
	d.backlight = intensity > 0
	s := d.port.Last()
	s.Backlight = d.backlight
	return wrap(d.port.WriteState(s))
}
