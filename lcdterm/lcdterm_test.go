// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdterm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
)

func getDev(opts *Opts) (*Dev, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	dev := New(opts)
	dev.w = buf
	return dev, buf
}

func TestBasic(t *testing.T) {
	dev, buf := getDev(nil)
	s := dev.String()
	if s != "LCDTerm{16x2}" {
		t.Errorf("String() = %q", s)
	}
	if dev.Rows() != 2 || dev.Cols() != 16 {
		t.Errorf("unexpected geometry %dx%d", dev.Cols(), dev.Rows())
	}
	n, err := dev.WriteString("Hello")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("WriteString() = %d, want 5", n)
	}
	if !strings.Contains(buf.String(), "Hello") {
		t.Error("frame does not contain the written text")
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("frame carries no ANSI codes")
	}
}

func TestWrapAndNewline(t *testing.T) {
	dev, buf := getDev(&Opts{Rows: 2, Cols: 4})
	if _, err := dev.WriteString("ab\ncdefgh"); err != nil {
		t.Fatal(err)
	}
	// 'gh' wrapped back onto row 0 over 'ab'.
	if got := string(dev.cells[0]); got != "gh  " {
		t.Errorf("row 0 = %q, want %q", got, "gh  ")
	}
	if got := string(dev.cells[1]); got != "cdef" {
		t.Errorf("row 1 = %q, want %q", got, "cdef")
	}
	if buf.Len() == 0 {
		t.Error("nothing was painted")
	}
}

func TestMoveTo(t *testing.T) {
	dev, _ := getDev(nil)
	if err := dev.MoveTo(2, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.Write([]byte{'x'}); err != nil {
		t.Fatal(err)
	}
	if dev.cells[1][2] != 'x' {
		t.Errorf("cell (2,3) = %q, want 'x'", dev.cells[1][2])
	}
	if err := dev.MoveTo(3, 1); err == nil {
		t.Error("MoveTo(3,1) on a 2-row display unexpectedly succeeded")
	}
}

func TestGlyphBytesRenderPlaceholder(t *testing.T) {
	dev, _ := getDev(nil)
	if _, err := dev.Write([]byte{0}); err != nil {
		t.Fatal(err)
	}
	if dev.cells[0][0] != '?' {
		t.Errorf("cell (1,1) = %q, want '?'", dev.cells[0][0])
	}
}

func TestDisplayOffBlanks(t *testing.T) {
	dev, buf := getDev(nil)
	if _, err := dev.WriteString("secret"); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := dev.Display(false); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Error("display off still paints cell contents")
	}
	buf.Reset()
	if err := dev.Display(true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "secret") {
		t.Error("display on lost cell contents")
	}
}

func TestInterface(t *testing.T) {
	dev, _ := getDev(nil)
	if err := dev.AutoScroll(true); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("AutoScroll() = %v, want ErrNotImplemented", err)
	}
	if err := dev.Cursor(display.CursorBlock); err != nil {
		t.Error(err)
	}
	if err := dev.Cursor(display.CursorBlink + 1); err == nil {
		t.Error("Cursor() with an out of range mode unexpectedly succeeded")
	}
	if err := dev.Home(); err != nil {
		t.Error(err)
	}
	if err := dev.Move(display.Forward); err != nil {
		t.Error(err)
	}
	if err := dev.Backlight(0); err != nil {
		t.Error(err)
	}
	if err := dev.Halt(); err != nil {
		t.Error(err)
	}
}

// Run the generic text display exerciser. Only the unsupported auto scroll
// calls may error.
func TestTextDisplay(t *testing.T) {
	dev, _ := getDev(nil)
	errs := displaytest.TestTextDisplay(dev, false)
	for _, err := range errs {
		if !errors.Is(err, display.ErrNotImplemented) {
			t.Error(err)
		}
	}
}
