// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Not supported by this device. Returns display.ErrNotImplemented.
func (d *Dev) AutoScroll(enabled bool) error {
	return ErrNotImplemented
}

// Return the number of columns the display supports.
func (d *Dev) Cols() int {
	return d.cols
}

// Return the number of rows the display supports.
func (d *Dev) Rows() int {
	return d.rows
}

// Return the min column position.
func (d *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (d *Dev) MinRow() int {
	return 1
}

// Cursor sets the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			d.cursor = false
			d.blink = false
		case display.CursorUnderline:
			d.cursor = true
		case display.CursorBlink:
			d.blink = true
		case display.CursorBlock:
			d.cursor = true
			d.blink = true
		default:
			return fmt.Errorf("%w: cursor mode %d", ErrInvalidParam, mode)
		}
	}
	return d.writeDisplayControl()
}

// Halt clears the display, turns the backlight off, and turns the display
// off. The Dev remains usable.
func (d *Dev) Halt() error {
	_ = d.Clear()
	_ = d.Backlight(0)
	return d.Display(false)
}

// Return info about the display.
func (d *Dev) String() string {
	return fmt.Sprintf("HD44780::%s - Rows: %d, Cols: %d", d.port.String(), d.rows, d.cols)
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
