// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package owtrace

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Kind is the kind of an Event.
type Kind uint8

const (
	// Drive is the master driving (Low) or releasing (High) the line.
	Drive Kind = iota
	// Sample is the master reading the line.
	Sample
)

func (k Kind) String() string {
	switch k {
	case Drive:
		return "Drive"
	case Sample:
		return "Sample"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Event is one pin access.
type Event struct {
	At    uint64 // timer ticks
	Kind  Kind
	Level gpio.Level
}

// Trace is a sequence of events in time order.
type Trace []Event

// Pulse is a low pulse driven by the master.
type Pulse struct {
	Start uint64
	Width uint64
}

// Pulses returns the low pulses driven by the master. A pulse still in
// progress at the end of the trace is not returned.
func (t Trace) Pulses() []Pulse {
	var out []Pulse
	low := false
	var since uint64
	for _, e := range t {
		if e.Kind != Drive {
			continue
		}
		switch {
		case e.Level == gpio.Low && !low:
			low, since = true, e.At
		case e.Level == gpio.High && low:
			low = false
			out = append(out, Pulse{Start: since, Width: e.At - since})
		}
	}
	return out
}

// Samples returns the sample events.
func (t Trace) Samples() []Event {
	var out []Event
	for _, e := range t {
		if e.Kind == Sample {
			out = append(out, e)
		}
	}
	return out
}

// End returns the time of the last event.
func (t Trace) End() uint64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].At
}

// Pin is the line driver being recorded; softwire.Pin satisfies it.
type Pin interface {
	High()
	Low()
	Sample() gpio.Level
}

// Recorder is a Pin that forwards to Pin and records every access, time
// stamped by Now.
type Recorder struct {
	Pin   Pin
	Now   func() uint64
	Trace Trace
	// Max limits the number of recorded events; 0 means no limit.
	Max int
}

func (r *Recorder) String() string {
	return fmt.Sprintf("record(%v)", r.Pin)
}

// High implements Pin.
func (r *Recorder) High() {
	r.Pin.High()
	r.add(Drive, gpio.High)
}

// Low implements Pin.
func (r *Recorder) Low() {
	r.Pin.Low()
	r.add(Drive, gpio.Low)
}

// Sample implements Pin.
func (r *Recorder) Sample() gpio.Level {
	l := r.Pin.Sample()
	r.add(Sample, l)
	return l
}

// Err forwards the persistent error of the recorded pin, if it has one.
func (r *Recorder) Err() error {
	if p, ok := r.Pin.(interface{ Err() error }); ok {
		return p.Err()
	}
	return nil
}

// Reset discards the recorded events.
func (r *Recorder) Reset() {
	r.Trace = r.Trace[:0]
}

func (r *Recorder) add(k Kind, l gpio.Level) {
	if r.Max != 0 && len(r.Trace) >= r.Max {
		return
	}
	r.Trace = append(r.Trace, Event{At: r.Now(), Kind: k, Level: l})
}
