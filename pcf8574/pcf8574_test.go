// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pcf8574

import (
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

// The serialization must match the backpack wiring bit for bit:
// P0=RS, P1=RW, P2=E, P3=backlight, P4-P7=DB4-DB7.
func TestPinStateEncode(t *testing.T) {
	tests := []struct {
		name  string
		state PinState
		want  byte
	}{
		{"AllLow", PinState{}, 0x00},
		{"RS", PinState{RS: true}, 0x01},
		{"RW", PinState{RW: true}, 0x02},
		{"E", PinState{E: true}, 0x04},
		{"Backlight", PinState{Backlight: true}, 0x08},
		{"Data", PinState{Data: 0x0f}, 0xf0},
		{"DataMasked", PinState{Data: 0xff}, 0xf0},
		{"Nibble", PinState{Data: 0x0a}, 0xa0},
		{"Mixed", PinState{Data: 0x05, RS: true, Backlight: true}, 0x59},
		{"AllHigh", PinState{Data: 0x0f, RS: true, RW: true, E: true, Backlight: true}, 0xff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Encode(); got != tt.want {
				t.Errorf("Encode() = %#02x, want %#02x", got, tt.want)
			}
		})
	}
}

func TestNewAddressValidation(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	for _, addr := range []uint16{0x20, 0x27, 0x38, 0x3f} {
		if _, err := New(bus, addr); err != nil {
			t.Errorf("New(0x%x) unexpectedly failed: %s", addr, err)
		}
	}
	for _, addr := range []uint16{0x00, 0x1f, 0x28, 0x37, 0x40} {
		if _, err := New(bus, addr); err == nil {
			t.Errorf("New(0x%x) unexpectedly succeeded", addr)
		}
	}
}

func TestWriteStateRead(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0x59}},
			{Addr: DefaultAddress, R: []byte{0x5d}},
			{Addr: DefaultAddress, W: []byte{0xf7}},
		},
		DontPanic: true,
	}
	dev, err := New(bus, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	s := PinState{Data: 0x05, RS: true, Backlight: true}
	if err := dev.WriteState(s); err != nil {
		t.Fatal(err)
	}
	if dev.Last() != s {
		t.Errorf("Last() = %+v, want %+v", dev.Last(), s)
	}
	b, err := dev.Read()
	if err != nil {
		t.Fatal(err)
	}
	if b != 0x5d {
		t.Errorf("Read() = %#02x, want 0x5d", b)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if bus.Count != len(bus.Ops) {
		t.Errorf("consumed %d of %d expected transactions", bus.Count, len(bus.Ops))
	}
}

// A failed write must not update the cached latch state.
func TestWriteStateError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteState(PinState{Data: 0x0f}); err == nil {
		t.Fatal("expected a bus error")
	}
	if dev.Last() != (PinState{}) {
		t.Errorf("Last() = %+v after failed write, want zero state", dev.Last())
	}
}

func TestString(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, DefaultAddress)
	if err != nil {
		t.Fatal(err)
	}
	if got := dev.String(); got != "PCF8574_27" {
		t.Errorf("String() = %q, want %q", got, "PCF8574_27")
	}
}
