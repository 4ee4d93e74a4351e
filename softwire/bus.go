// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/onewire"
)

// NewBus returns a onewire.Bus running d synchronously.
//
// s must be the Timer d was created with. Each call issues a request and then
// alternates s.Step and d.Tick until the transaction completes, so the
// calling goroutine plays the role of the timer interrupt.
func NewBus(d *Dev, s Stepper) *Bus {
	return &Bus{d: d, s: s}
}

// Bus is a blocking onewire.Bus on top of a Dev.
type Bus struct {
	sync.Mutex // lock for the bus while a transaction is in progress
	d          *Dev
	s          Stepper
}

func (b *Bus) String() string {
	return fmt.Sprintf("Bus{%s}", b.d)
}

// Halt implements conn.Resource.
func (b *Bus) Halt() error {
	b.Lock()
	defer b.Unlock()
	return b.d.Halt()
}

// Tx performs a bus transaction: reset, write w, read len(r) bytes.
//
// w must start with a ROM command, as done by onewire.Dev. The line is always
// released to the external pull-up at the end; StrongPullup is not supported
// and behaves like WeakPullup.
func (b *Bus) Tx(w, r []byte, power onewire.Pullup) error {
	b.Lock()
	defer b.Unlock()
	if err := b.d.Transfer(w, len(r)); err != nil {
		return err
	}
	if err := b.run(); err != nil {
		return err
	}
	b.d.Response(r)
	return nil
}

// Search performs a ROM search and returns the addresses of all devices on
// the bus if alarmOnly is false and of all devices in alarm state if
// alarmOnly is true.
//
// At most Opts.MaxDevices addresses are returned. If an error occurs during
// the search the already-discovered devices are returned with the error.
func (b *Bus) Search(alarmOnly bool) ([]onewire.Address, error) {
	b.Lock()
	defer b.Unlock()
	if err := b.d.Discover(alarmOnly); err != nil {
		return nil, err
	}
	err := b.run()
	roms := b.d.Devices()
	out := make([]onewire.Address, len(roms))
	for i, r := range roms {
		out[i] = r.Address()
	}
	return out, err
}

// Dev returns the underlying Dev. It must not be used concurrently with the
// Bus.
func (b *Bus) Dev() *Dev {
	return b.d
}

// run plays the timer until the transaction completes.
func (b *Bus) run() error {
	for b.d.Busy() {
		if !b.s.Step() {
			b.d.fail(errTimerStopped)
			break
		}
		b.d.Tick()
	}
	return b.d.Err()
}

var errTimerStopped = errors.New("softwire: timer stopped during a transaction")

var _ conn.Resource = &Bus{}
var _ onewire.Bus = &Bus{}
