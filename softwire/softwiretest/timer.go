// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwiretest

// Ticker is implemented by softwire.Dev.
type Ticker interface {
	Tick()
}

// Timer is a virtual timer. Time only moves when Step is called, by the
// period programmed at that point.
//
// Timer implements softwire.Stepper.
type Timer struct {
	now     uint64
	period  uint32
	running bool

	Starts   int // calls to Start
	Cleared  int // calls to ClearPending
	Expiries int // expiries so far
}

// Start implements softwire.Timer.
func (t *Timer) Start(ticks uint32) {
	t.period = ticks
	t.running = true
	t.Starts++
}

// SetPeriod implements softwire.Timer.
func (t *Timer) SetPeriod(ticks uint32) {
	t.period = ticks
}

// Stop implements softwire.Timer.
func (t *Timer) Stop() {
	t.running = false
}

// ClearPending implements softwire.Timer.
func (t *Timer) ClearPending() {
	t.Cleared++
}

// Step implements softwire.Stepper. It advances the clock to the next
// expiry.
func (t *Timer) Step() bool {
	if !t.running {
		return false
	}
	t.now += uint64(t.period)
	t.Expiries++
	return true
}

// Now returns the virtual time, in ticks.
func (t *Timer) Now() uint64 {
	return t.now
}

// Period returns the programmed period.
func (t *Timer) Period() uint32 {
	return t.period
}

// Running returns true while the timer is armed.
func (t *Timer) Running() bool {
	return t.running
}

// Run calls d.Tick on every expiry until the timer is stopped or limit
// expiries happened. It returns the number of expiries.
func (t *Timer) Run(d Ticker, limit int) int {
	n := 0
	for n < limit && t.Step() {
		d.Tick()
		n++
	}
	return n
}
