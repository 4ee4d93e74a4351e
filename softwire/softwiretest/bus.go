// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwiretest

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Bus timing, in ticks of a 1MHz clock.
const (
	// ResetMin is the shortest low pulse seen as a reset.
	ResetMin = 480
	// PresenceDelay is the time from the end of a reset to the presence
	// pulse.
	PresenceDelay = 15
	// PresenceLen is the length of the presence pulse.
	PresenceLen = 120
	// SampleAt is when devices sample a write slot: a low pulse longer than
	// this writes a 0.
	SampleAt = 15
	// HoldLen is how long a device keeps the line low to send a 0.
	HoldLen = 30
)

// Clock returns the current time in ticks. Timer implements it.
type Clock interface {
	Now() uint64
}

// Bus simulates an open-drain 1-wire line shared by the master and Devices.
//
// Bus implements softwire.Pin. The line is low whenever the master drives it,
// a device answers a reset with a presence pulse or a device sends a 0 bit.
type Bus struct {
	Devices []*Device
	// Stuck holds the line low, as a shorted bus would.
	Stuck bool
	// Resets counts the reset pulses seen.
	Resets int

	clock         Clock
	low           bool
	lowSince      uint64
	presenceStart uint64
	presenceEnd   uint64
}

// NewBus returns a Bus timed by c with devs attached.
func NewBus(c Clock, devs ...*Device) *Bus {
	return &Bus{Devices: devs, clock: c}
}

func (b *Bus) String() string {
	return fmt.Sprintf("simbus(%d devices)", len(b.Devices))
}

// Low drives the line low, starting a slot.
func (b *Bus) Low() {
	if b.low {
		return
	}
	b.low = true
	b.lowSince = b.clock.Now()
	for _, d := range b.Devices {
		d.slotStart()
	}
}

// High releases the line. The length of the low pulse tells a reset from a
// 0 or 1 bit.
func (b *Bus) High() {
	if !b.low {
		return
	}
	b.low = false
	now := b.clock.Now()
	width := now - b.lowSince
	if width >= ResetMin {
		b.Resets++
		b.presenceStart, b.presenceEnd = 0, 0
		for _, d := range b.Devices {
			d.reset()
		}
		if len(b.Devices) != 0 {
			b.presenceStart = now + PresenceDelay
			b.presenceEnd = b.presenceStart + PresenceLen
		}
		return
	}
	for _, d := range b.Devices {
		d.slotEnd(width <= SampleAt)
	}
}

// Sample returns the level of the line.
func (b *Bus) Sample() gpio.Level {
	if b.low || b.Stuck {
		return gpio.Low
	}
	now := b.clock.Now()
	if now >= b.presenceStart && now < b.presenceEnd {
		return gpio.Low
	}
	if now < b.lowSince+HoldLen {
		for _, d := range b.Devices {
			if d.pull {
				return gpio.Low
			}
		}
	}
	return gpio.High
}
