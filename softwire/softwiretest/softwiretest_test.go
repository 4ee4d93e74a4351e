// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwiretest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
)

type clock uint64

func (c *clock) Now() uint64 { return uint64(*c) }

// master drives b by hand with the standard speed slot timing.
type master struct {
	c *clock
	b *Bus
}

func (m *master) wait(d uint64) {
	*m.c += clock(d)
}

func (m *master) reset() bool {
	m.b.Low()
	m.wait(500)
	m.b.High()
	m.wait(100)
	present := m.b.Sample() == gpio.Low
	m.wait(400)
	return present
}

func (m *master) write(b byte) {
	for i := 0; i < 8; i++ {
		low := uint64(70)
		if b&(1<<i) != 0 {
			low = 10
		}
		m.b.Low()
		m.wait(low)
		m.b.High()
		m.wait(80 - low)
	}
}

func (m *master) read() byte {
	var b byte
	for i := 0; i < 8; i++ {
		m.b.Low()
		m.wait(10)
		m.b.High()
		m.wait(10)
		if m.b.Sample() == gpio.High {
			b |= 1 << i
		}
		m.wait(60)
	}
	return b
}

func TestNewROM(t *testing.T) {
	got := NewROM(0x28, 0x070e41ac)
	want := [8]byte{0x28, 0xac, 0x41, 0x0e, 0x07, 0x00, 0x00, 0x74}
	if got != want {
		t.Fatalf("%x", got)
	}
	// Serial numbers are truncated to 48 bits.
	if NewROM(0x01, 0xff<<48|1) != NewROM(0x01, 1) {
		t.Fatal("serial not truncated")
	}
}

func TestBus_presence(t *testing.T) {
	var c clock
	m := &master{c: &c, b: NewBus(&c)}
	if m.reset() {
		t.Fatal("presence without devices")
	}
	m.b.Devices = []*Device{NewDevice(NewROM(0x28, 1))}
	if !m.reset() {
		t.Fatal("no presence")
	}
	if m.b.Resets != 2 {
		t.Fatalf("Resets = %d", m.b.Resets)
	}
	// A short pulse is not a reset.
	m.b.Low()
	m.wait(ResetMin - 1)
	m.b.High()
	if m.b.Resets != 2 {
		t.Fatalf("Resets = %d", m.b.Resets)
	}
	m.b.Stuck = true
	if m.b.Sample() != gpio.Low {
		t.Fatal("stuck bus reads high")
	}
}

func TestDevice_function(t *testing.T) {
	var c clock
	d := NewDevice(NewROM(0x28, 1))
	d.Responses[0xbe] = []byte{0x12, 0x34}
	m := &master{c: &c, b: NewBus(&c, d)}

	m.reset()
	m.write(0xcc)
	if !d.Selected() {
		t.Fatal("Skip ROM must select")
	}
	m.write(0x4e)
	m.write(0x01)
	m.write(0x02)

	m.reset()
	m.write(0xcc)
	m.write(0xbe)
	got := []byte{m.read(), m.read()}
	if diff := cmp.Diff(got, []byte{0x12, 0x34}); diff != "" {
		t.Fatalf("response (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(d.Commands, []byte{0x4e, 0xbe}); diff != "" {
		t.Fatalf("Commands (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(d.Received, []byte{0x01, 0x02}); diff != "" {
		t.Fatalf("Received (-got +want):\n%s", diff)
	}
	// Past the response the line stays released.
	if b := m.read(); b != 0xff {
		t.Fatalf("%#x", b)
	}
}

func TestDevice_readROM(t *testing.T) {
	var c clock
	d := NewDevice(NewROM(0x28, 0x070e41ac))
	m := &master{c: &c, b: NewBus(&c, d)}
	m.reset()
	m.write(0x33)
	var got [8]byte
	for i := range got {
		got[i] = m.read()
	}
	if got != d.ROM {
		t.Fatalf("%x", got)
	}
	if !d.Selected() {
		t.Fatal("Read ROM must select")
	}
}

func TestDevice_match(t *testing.T) {
	var c clock
	a := NewDevice(NewROM(0x28, 1))
	b := NewDevice(NewROM(0x28, 2))
	m := &master{c: &c, b: NewBus(&c, a, b)}
	m.reset()
	m.write(0x55)
	for _, x := range b.ROM {
		m.write(x)
	}
	if a.Selected() || !b.Selected() {
		t.Fatalf("a: %t, b: %t", a.Selected(), b.Selected())
	}
	m.write(0x44)
	if len(a.Commands) != 0 || len(b.Commands) != 1 {
		t.Fatalf("a: %x, b: %x", a.Commands, b.Commands)
	}
	if s := a.String(); s != "Device{2801000000000029}" {
		t.Fatal(s)
	}
	if s := m.b.String(); s != "simbus(2 devices)" {
		t.Fatal(s)
	}
}

func TestDevice_unknownCommand(t *testing.T) {
	var c clock
	d := NewDevice(NewROM(0x28, 1))
	m := &master{c: &c, b: NewBus(&c, d)}
	m.reset()
	m.write(0x99)
	if d.Selected() {
		t.Fatal("unknown ROM command must deselect")
	}
	m.write(0x44)
	if len(d.Commands) != 0 {
		t.Fatalf("%x", d.Commands)
	}
}

func TestTimer(t *testing.T) {
	var tm Timer
	if tm.Step() {
		t.Fatal("Step() while stopped")
	}
	tm.Start(5)
	tm.SetPeriod(7)
	tm.ClearPending()
	n := tm.Run(tickFunc(func() {}), 3)
	if n != 3 || tm.Now() != 21 || tm.Expiries != 3 || tm.Period() != 7 {
		t.Fatalf("n = %d, Now() = %d, Expiries = %d", n, tm.Now(), tm.Expiries)
	}
	tm.Stop()
	if tm.Running() || tm.Run(tickFunc(func() {}), 3) != 0 {
		t.Fatal("Run() after Stop()")
	}
	if tm.Starts != 1 || tm.Cleared != 1 {
		t.Fatalf("Starts = %d, Cleared = %d", tm.Starts, tm.Cleared)
	}
}

type tickFunc func()

func (f tickFunc) Tick() { f() }
