// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Character cell dimensions for the default 5x8 font.
const (
	glyphWidth  = 5
	glyphHeight = 8
)

// SetGlyph stores an 8-line, 5-bit-wide pattern in one of the eight CGRAM
// slots. pattern[0] is the top line; bit 4 of each line is the leftmost
// dot. The glyph is displayed by writing byte(slot) as data.
//
// CGRAM addressing displaces the address counter, so the cursor position is
// restored before returning.
func (d *Dev) SetGlyph(slot int, pattern [8]byte) error {
	if slot < 0 || slot > 7 {
		return fmt.Errorf("%w: CGRAM slot %d", ErrInvalidParam, slot)
	}
	if err := d.SetCGRAMAddress(byte(slot << 3)); err != nil {
		return err
	}
	for _, line := range pattern {
		if err := d.writeInstruction(line&0x1f, true); err != nil {
			return err
		}
	}
	return d.MoveTo(d.row+1, d.col+1)
}

// GlyphFromImage downsamples img to the 5x8 character cell and thresholds
// it to a CGRAM pattern. Pixels at or above half luminance become lit dots.
// Use it to turn any monochrome artwork or pre-rendered rune into a glyph
// for SetGlyph.
func GlyphFromImage(img image.Image) [8]byte {
	cell := image.NewGray(image.Rect(0, 0, glyphWidth, glyphHeight))
	draw.NearestNeighbor.Scale(cell, cell.Bounds(), img, img.Bounds(), draw.Src, nil)
	var pattern [8]byte
	for y := range glyphHeight {
		var line byte
		for x := range glyphWidth {
			if cell.GrayAt(x, y).Y >= 0x80 {
				line |= byte(1) << (glyphWidth - 1 - x)
			}
		}
		pattern[y] = line
	}
	return pattern
}
