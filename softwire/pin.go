// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Pin is the line driver used by Dev.
//
// High releases the line to its idle level, Low drives it low and Sample
// returns the level currently seen on the wire. All three must be cheap and
// non-blocking since they are called from the timer interrupt.
type Pin interface {
	High()
	Low()
	Sample() gpio.Level
}

// errPin is implemented by pins that remember GPIO failures.
type errPin interface {
	Err() error
}

// OpenDrain drives a single bidirectional GPIO. The line is released by
// turning the pin into a floating input and relies on the external pull-up.
//
// OpenDrain implements a persistent error model: the first GPIO error is kept
// and returned by Err.
type OpenDrain struct {
	P   gpio.PinIO
	err error
}

// High releases the line.
func (o *OpenDrain) High() {
	o.keep(o.P.In(gpio.Float, gpio.NoEdge))
}

// Low drives the line low.
func (o *OpenDrain) Low() {
	o.keep(o.P.Out(gpio.Low))
}

// Sample reads the line.
func (o *OpenDrain) Sample() gpio.Level {
	return o.P.Read()
}

// Err returns the first GPIO error encountered, if any.
func (o *OpenDrain) Err() error {
	return o.err
}

func (o *OpenDrain) String() string {
	return fmt.Sprintf("OpenDrain{%s}", o.P)
}

func (o *OpenDrain) keep(err error) {
	if o.err == nil && err != nil {
		o.err = fmt.Errorf("softwire: %s: %w", o.P, err)
	}
}

// Split drives the line through a dedicated output (usually an open-collector
// transistor or a buffer) and samples it on a separate input.
type Split struct {
	TX  gpio.PinOut
	RX  gpio.PinIn
	err error
}

// High releases the line.
func (s *Split) High() {
	s.keep(s.TX.Out(gpio.High))
}

// Low drives the line low.
func (s *Split) Low() {
	s.keep(s.TX.Out(gpio.Low))
}

// Sample reads the line on RX.
func (s *Split) Sample() gpio.Level {
	return s.RX.Read()
}

// Err returns the first GPIO error encountered, if any.
func (s *Split) Err() error {
	return s.err
}

func (s *Split) String() string {
	return fmt.Sprintf("Split{%s, %s}", s.TX, s.RX)
}

func (s *Split) keep(err error) {
	if s.err == nil && err != nil {
		s.err = fmt.Errorf("softwire: %s: %w", s.TX, err)
	}
}

var _ Pin = &OpenDrain{}
var _ Pin = &Split{}
