// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"image"
	"image/color"
	"testing"
)

// An image already at cell size must threshold dot for dot.
func TestGlyphFromImage(t *testing.T) {
	// A 5x8 heart.
	want := [8]byte{0x0a, 0x1f, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	img := image.NewGray(image.Rect(0, 0, 5, 8))
	for y := range 8 {
		for x := range 5 {
			if want[y]&(byte(1)<<(4-x)) != 0 {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	if got := GlyphFromImage(img); got != want {
		t.Errorf("GlyphFromImage() = %#v, want %#v", got, want)
	}
}

func TestGlyphFromImageEmpty(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	if got := GlyphFromImage(img); got != ([8]byte{}) {
		t.Errorf("GlyphFromImage() = %#v, want all dark", got)
	}
}
