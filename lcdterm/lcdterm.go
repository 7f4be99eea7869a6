// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdterm implements a character LCD emulator that outputs to
// terminal (stdout) using ANSI color codes.
//
// Useful while you are waiting for your display module to come by mail: it
// implements display.TextDisplay with the same geometry and newline
// behavior as the hd44780 driver, so code written against the interface
// runs unchanged without hardware. The backlit bezel is rendered as
// colored blocks on each side of the character matrix.
package lcdterm

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// Rows and Cols define the emulated geometry. Defaults to 16x2.
	Rows int
	Cols int
	// Bezel is the color rendered around the matrix while the backlight is
	// on. Defaults to an LCD-ish green.
	Bezel color.NRGBA
	// Palette converts colors to ANSI codes.
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is a character LCD emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	rows    int
	cols    int
	palette ansi256.Palette
	bezel   color.NRGBA

	cells     [][]byte
	row, col  int
	on        bool
	backlight bool
	painted   bool
	buf       bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// Permits local testing of display output. opts may be nil.
func New(opts *Opts) *Dev {
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
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	bezel := opts.Bezel
	if bezel == (color.NRGBA{}) {
		bezel = color.NRGBA{R: 0x50, G: 0xc8, B: 0x32, A: 255}
	}
	d := &Dev{
		w:         colorable.NewColorableStdout(),
		rows:      rows,
		cols:      cols,
		palette:   *p,
		bezel:     bezel,
		cells:     make([][]byte, rows),
		on:        true,
		backlight: true,
	}
	for ix := range d.cells {
		d.cells[ix] = blankRow(cols)
	}
	return d
}

func blankRow(cols int) []byte {
	row := make([]byte, cols)
	for ix := range row {
		row[ix] = ' '
	}
	return row
}

func (d *Dev) String() string {
	return fmt.Sprintf("LCDTerm{%dx%d}", d.cols, d.rows)
}

// Not supported by this device. Returns display.ErrNotImplemented.
func (d *Dev) AutoScroll(enabled bool) error {
	return fmt.Errorf("lcdterm: %w", display.ErrNotImplemented)
}

// Clear blanks the matrix and moves the cursor to the first position.
func (d *Dev) Clear() error {
	for ix := range d.cells {
		d.cells[ix] = blankRow(d.cols)
	}
	d.row, d.col = 0, 0
	return d.refresh()
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

// Cursor validates the modes but does not render them; the emulator has no
// blink timer.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		if mode < display.CursorOff || mode > display.CursorBlink {
			return fmt.Errorf("lcdterm: cursor mode %d: %w", mode, display.ErrNotImplemented)
		}
	}
	return nil
}

// Home moves the cursor to the first position.
func (d *Dev) Home() error {
	d.row, d.col = 0, 0
	return nil
}

// Move the cursor forward or backward.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		if d.col < d.cols-1 {
			d.col++
		}
	case display.Backward:
		if d.col > 0 {
			d.col--
		}
	default:
		return fmt.Errorf("lcdterm: %w", display.ErrNotImplemented)
	}
	return nil
}

// MoveTo moves the cursor to the 1-based row and column.
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.rows || col < d.MinCol() || col > d.cols {
		return fmt.Errorf("lcdterm: MoveTo(%d,%d) value out of range", row, col)
	}
	d.row, d.col = row-1, col-1
	return nil
}

// Display turns the emulated display on or off. Cell contents are kept
// while off, matching the real controller.
func (d *Dev) Display(on bool) error {
	d.on = on
	return d.refresh()
}

// Write stores data bytes at the cursor and repaints. A '\n' moves to the
// start of the next row; writes past the right edge wrap onto the
// following row. Bytes below 0x20 (the CGRAM glyph slots on real hardware)
// render as '?'.
func (d *Dev) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			d.nextRow()
			continue
		}
		if b < 0x20 {
			b = '?'
		}
		d.cells[d.row][d.col] = b
		d.col++
		if d.col >= d.cols {
			d.nextRow()
		}
	}
	if err := d.refresh(); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (d *Dev) nextRow() {
	d.col = 0
	d.row = (d.row + 1) % d.rows
}

// Write a string output to the display.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// Backlight renders the bezel lit (any non-zero intensity) or dark.
func (d *Dev) Backlight(intensity display.Intensity) error {
	d.backlight = intensity > 0
	return d.refresh()
}

// Halt clears the display and turns it off.
//
// It clears the terminal rendering so it is not corrupted.
func (d *Dev) Halt() error {
	for ix := range d.cells {
		d.cells[ix] = blankRow(d.cols)
	}
	d.row, d.col = 0, 0
	d.on = false
	d.backlight = false
	if err := d.refresh(); err != nil {
		return err
	}
	_, err := d.w.Write([]byte("\033[0m"))
	return err
}

// refresh repaints the whole frame. After the first paint the cursor is
// moved back up so the frame updates in place.
func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	d.buf.Reset()
	if d.painted {
		fmt.Fprintf(&d.buf, "\033[%dA\r", d.rows)
	}
	bezel := color.NRGBA{A: 255}
	if d.backlight {
		bezel = d.bezel
	}
	side := d.palette.Block(bezel)
	for ix := range d.cells {
		_, _ = io.WriteString(&d.buf, side)
		_, _ = d.buf.WriteString("\033[0m")
		if d.on {
			_, _ = d.buf.Write(d.cells[ix])
		} else {
			_, _ = d.buf.Write(blankRow(d.cols))
		}
		_, _ = io.WriteString(&d.buf, side)
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.painted = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ fmt.Stringer = &Dev{}
