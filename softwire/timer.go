// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// Timer is the periodic timer driving a Dev.
//
// The timer must call Dev.Tick once per expiry. Dev reprograms the period
// from inside Tick; the period set there applies to the interval that just
// began. Nothing else may change the period while a transaction is active.
type Timer interface {
	// Start zeroes the counter, sets the period and enables expiries.
	Start(ticks uint32)
	// SetPeriod sets the autoreload value.
	SetPeriod(ticks uint32)
	// Stop disables expiries.
	Stop()
	// ClearPending discards an expiry that is already latched.
	ClearPending()
}

// Stepper is a Timer whose expiries can be awaited by the calling goroutine.
type Stepper interface {
	Timer
	// Step waits for the next expiry. It returns false if the timer is
	// stopped.
	Step() bool
}

// SoftTimer is a Stepper that spins on the host clock.
//
// It is meant for hosts without a usable hardware timer interrupt. Nothing
// prevents the operating system from preempting the spinning goroutine in the
// middle of a slot, so timing is best effort.
type SoftTimer struct {
	tick     time.Duration
	period   uint32
	last     time.Time // start of the current interval
	deadline time.Time
	running  bool
}

// NewSoftTimer returns a SoftTimer ticking at clock.
func NewSoftTimer(clock physic.Frequency) *SoftTimer {
	return &SoftTimer{tick: clock.Period()}
}

// Start implements Timer.
func (s *SoftTimer) Start(ticks uint32) {
	s.period = ticks
	s.last = now()
	s.deadline = s.last.Add(s.interval())
	s.running = true
}

// SetPeriod implements Timer.
func (s *SoftTimer) SetPeriod(ticks uint32) {
	s.period = ticks
	s.deadline = s.last.Add(s.interval())
}

// Stop implements Timer.
func (s *SoftTimer) Stop() {
	s.running = false
}

// ClearPending implements Timer.
func (s *SoftTimer) ClearPending() {
}

// Step implements Stepper.
func (s *SoftTimer) Step() bool {
	if !s.running {
		return false
	}
	for now().Before(s.deadline) {
	}
	// The next interval starts at the expiry, not when Step returned.
	s.last = s.deadline
	s.deadline = s.last.Add(s.interval())
	return true
}

func (s *SoftTimer) interval() time.Duration {
	return time.Duration(s.period) * s.tick
}

var now = time.Now

var _ Stepper = &SoftTimer{}
