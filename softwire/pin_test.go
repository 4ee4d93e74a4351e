// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import (
	"errors"
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func TestOpenDrain(t *testing.T) {
	p := &gpiotest.Pin{N: "GPIO4", Num: 4, L: gpio.High}
	o := &OpenDrain{P: p}
	o.Low()
	if p.L != gpio.Low || o.Sample() != gpio.Low {
		t.Fatal("expected the line to be driven low")
	}
	o.High()
	if p.Pull() != gpio.Float {
		t.Fatalf("Pull() = %s", p.Pull())
	}
	if err := o.Err(); err != nil {
		t.Fatal(err)
	}
	if s := o.String(); s != "OpenDrain{GPIO4(4)}" {
		t.Fatal(s)
	}
}

type failingPin struct {
	gpiotest.Pin
	n int
}

var errGPIO = errors.New("gpio failure")

func (f *failingPin) Out(l gpio.Level) error {
	f.n++
	return errGPIO
}

func TestOpenDrain_err(t *testing.T) {
	p := &failingPin{Pin: gpiotest.Pin{N: "GPIO4", Num: 4, L: gpio.High}}
	o := &OpenDrain{P: p}
	o.Low()
	o.Low()
	if p.n != 2 {
		t.Fatalf("Out called %d times", p.n)
	}
	if err := o.Err(); !errors.Is(err, errGPIO) {
		t.Fatalf("Err() = %v", err)
	}
	// The error is reported when a transaction is requested.
	d, err := New(o, &nopTimer{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(0x44, nil); !errors.Is(err, ErrBusFault) || !errors.Is(err, errGPIO) {
		t.Fatalf("Write() = %v", err)
	}
	if d.Busy() {
		t.Fatal("must not start")
	}
}

func TestSplit(t *testing.T) {
	tx := &gpiotest.Pin{N: "TX", Num: 1}
	rx := &gpiotest.Pin{N: "RX", Num: 2, L: gpio.High}
	s := &Split{TX: tx, RX: rx}
	s.High()
	if tx.L != gpio.High {
		t.Fatal("expected TX high")
	}
	s.Low()
	if tx.L != gpio.Low {
		t.Fatal("expected TX low")
	}
	if s.Sample() != gpio.High {
		t.Fatal("expected RX to be sampled")
	}
	if err := s.Err(); err != nil {
		t.Fatal(err)
	}
	if str := s.String(); str != "Split{TX(1), RX(2)}" {
		t.Fatal(str)
	}
	f := &failingPin{Pin: gpiotest.Pin{N: "TX", Num: 1}}
	s = &Split{TX: f, RX: rx}
	s.High()
	if err := s.Err(); !errors.Is(err, errGPIO) {
		t.Fatalf("Err() = %v", err)
	}
}

type nopTimer struct{}

func (nopTimer) Start(uint32)     {}
func (nopTimer) SetPeriod(uint32) {}
func (nopTimer) Stop()            {}
func (nopTimer) ClearPending()    {}

func TestSoftTimer(t *testing.T) {
	defer func(f func() time.Time) { now = f }(now)
	clock := time.Unix(1000, 0)
	calls := 0
	now = func() time.Time {
		calls++
		clock = clock.Add(time.Microsecond)
		return clock
	}
	s := NewSoftTimer(DefaultClock)
	if s.Step() {
		t.Fatal("Step() must fail while stopped")
	}
	s.Start(10)
	start := s.last
	if !s.Step() {
		t.Fatal("Step()")
	}
	if d := s.last.Sub(start); d != 10*time.Microsecond {
		t.Fatalf("first expiry after %s", d)
	}
	if clock.Before(s.last) {
		t.Fatal("Step() returned before the deadline")
	}
	// A shorter period applies to the interval that just began.
	s.SetPeriod(3)
	if !s.Step() {
		t.Fatal("Step()")
	}
	if d := s.last.Sub(start); d != 13*time.Microsecond {
		t.Fatalf("second expiry after %s", d)
	}
	s.Stop()
	if s.Step() {
		t.Fatal("Step() must fail once stopped")
	}
	if calls == 0 {
		t.Fatal("clock not used")
	}
}
