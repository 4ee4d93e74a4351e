// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Opts contains options to pass to the constructor.
type Opts struct {
	Timing     Timing      // phase durations, DefaultTiming when zero
	MaxData    int         // largest payload of Write and Read, 8..
	MaxDevices int         // capacity of the discovered device table, 1..254
	OnDone     func(error) // called from Tick when a transaction ends
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Timing:     DefaultTiming,
	MaxData:    16,
	MaxDevices: 5,
}

// State is the high level state of a Dev.
type State uint8

// Valid states.
const (
	Idle State = iota
	Transfer
	Search
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Transfer:
		return "Transfer"
	case Search:
		return "Search"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// phase is the step a transaction performs on the next timer expiry.
type phase uint8

const (
	resetLow phase = iota
	resetRelease
	presence
	writeLow
	writeRelease
	readLow
	readRelease
	readSample
	idLow
	idRelease
	idSample
	cmpLow
	cmpRelease
	cmpSample
	dirLow
	dirRelease
)

// New returns a 1-wire master bit-banging p, paced by t.
//
// The caller must arrange for Tick to be called on every expiry of t. The
// line is released before New returns.
func New(p Pin, t Timer, opts *Opts) (*Dev, error) {
	if p == nil || t == nil {
		return nil, errors.New("softwire: pin and timer are required")
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Timing == (Timing{}) {
		o.Timing = DefaultTiming
	}
	if err := o.Timing.validate(); err != nil {
		return nil, err
	}
	if o.MaxData == 0 {
		o.MaxData = DefaultOpts.MaxData
	}
	if o.MaxData < 8 {
		return nil, errors.New("softwire: MaxData must be at least 8")
	}
	if o.MaxDevices == 0 {
		o.MaxDevices = DefaultOpts.MaxDevices
	}
	if o.MaxDevices < 1 || o.MaxDevices > 254 {
		return nil, errors.New("softwire: MaxDevices must be in 1..254")
	}
	d := &Dev{
		pin:     p,
		timer:   t,
		timing:  o.Timing,
		onDone:  o.OnDone,
		maxData: o.MaxData,
		// ROM command, ROM id, function command and payload.
		frame: newFrame(1 + 8 + 1 + o.MaxData),
		roms:  make([]ROM, o.MaxDevices),
	}
	p.High()
	return d, nil
}

// Dev is a tick driven 1-wire master.
//
// Dev is not safe for concurrent use. It is owned by the timer interrupt (or
// the single goroutine emulating it): requests are issued and Tick is called
// from that context only. Other contexts may poll Busy and Err but the
// values can be stale by the time they are used. Use Bus for a blocking,
// goroutine safe onewire.Bus.
type Dev struct {
	pin     Pin
	timer   Timer
	timing  Timing
	onDone  func(error)
	maxData int

	frame   frame
	state   State
	phase   phase
	err     error
	bit     bool // bit of the write slot in progress
	readROM bool // validate the response as a ROM id

	roms   []ROM
	found  int
	search search
}

func (d *Dev) String() string {
	if s, ok := d.pin.(fmt.Stringer); ok {
		return fmt.Sprintf("softwire{%s}", s)
	}
	return "softwire"
}

// Halt implements conn.Resource.
//
// It releases the line. A transaction in flight is never cancelled, ErrBusy
// is returned instead.
func (d *Dev) Halt() error {
	if d.state != Idle {
		return ErrBusy
	}
	d.pin.High()
	return nil
}

// Tick advances the active transaction by one phase. It must be called on
// every timer expiry.
func (d *Dev) Tick() {
	switch d.state {
	case Transfer:
		d.stepTransfer()
	case Search:
		d.stepSearch()
	default:
		d.stop()
	}
}

// Busy returns true while a transaction is in flight.
func (d *Dev) Busy() bool {
	return d.state != Idle
}

// State returns the current high level state.
func (d *Dev) State() State {
	return d.state
}

// Err returns the outcome of the last request: nil on success.
func (d *Dev) Err() error {
	return d.err
}

// Cap returns the size of the transfer buffer.
func (d *Dev) Cap() int {
	return len(d.frame.data)
}

// MaxData returns the largest payload accepted by Write and Read.
func (d *Dev) MaxData() int {
	return d.maxData
}

// start checks that the line is idle, loads the frame and arms the timer for
// the reset pulse.
func (d *Dev) start(s State, readROM bool, rlen int, parts ...[]byte) error {
	if d.state != Idle {
		return ErrBusy
	}
	d.pin.High()
	if p, ok := d.pin.(errPin); ok && p.Err() != nil {
		return fmt.Errorf("%w: %w", ErrBusFault, p.Err())
	}
	if d.pin.Sample() != gpio.High {
		return ErrBusFault
	}
	d.timer.ClearPending()
	if err := d.frame.load(rlen, parts...); err != nil {
		return err
	}
	if s == Search {
		for i := range d.roms {
			d.roms[i] = ROM{}
		}
		d.found = 0
		d.search.reset()
	}
	d.err = nil
	d.readROM = readROM
	d.phase = resetLow
	d.state = s
	d.timer.Start(d.timing.ResetLow)
	return nil
}

// stop ends the transaction: the timer is disarmed and the line released.
// OnDone is called once per transaction, calling stop again is a no-op.
func (d *Dev) stop() {
	d.timer.Stop()
	d.pin.High()
	if d.state == Idle {
		return
	}
	d.state = Idle
	if d.onDone != nil {
		d.onDone(d.err)
	}
}

// fail records err and ends the transaction.
func (d *Dev) fail(err error) {
	d.err = err
	d.stop()
}

// stepReset runs the reset and presence phases. It returns true once a
// presence pulse was seen and the recovery time is armed.
func (d *Dev) stepReset() bool {
	switch d.phase {
	case resetLow:
		d.timer.SetPeriod(d.timing.ResetLow)
		d.pin.Low()
		d.phase = resetRelease
	case resetRelease:
		d.timer.SetPeriod(d.timing.PresenceWait)
		d.pin.High()
		d.phase = presence
	case presence:
		if d.pin.Sample() == gpio.High {
			d.fail(ErrResetFailed)
			return false
		}
		d.timer.SetPeriod(d.timing.ResetRecovery)
		return true
	}
	return false
}

// slotLow opens a write slot for bit.
func (d *Dev) slotLow(bit bool) {
	d.bit = bit
	if bit {
		d.timer.SetPeriod(d.timing.Write1Low)
	} else {
		d.timer.SetPeriod(d.timing.Write0Low)
	}
	d.pin.Low()
}

// slotRelease releases the line for the rest of the write slot.
func (d *Dev) slotRelease() {
	if d.bit {
		d.timer.SetPeriod(d.timing.Write0Low)
	} else {
		d.timer.SetPeriod(d.timing.Write1Low)
	}
	d.pin.High()
}

// readSlotLow opens a read slot.
func (d *Dev) readSlotLow() {
	d.timer.SetPeriod(d.timing.ReadLow)
	d.pin.Low()
}

// readSlotRelease lets the device drive the line until the sample point.
func (d *Dev) readSlotRelease() {
	d.timer.SetPeriod(d.timing.ReadSample)
	d.pin.High()
}

// readSlotSample samples the bit sent by the device.
func (d *Dev) readSlotSample() gpio.Level {
	d.timer.SetPeriod(d.timing.ReadRecovery)
	return d.pin.Sample()
}

var _ conn.Resource = &Dev{}
