// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwiretest

import (
	"encoding/binary"
	"fmt"

	"github.com/GermanBionicSystems/owtick/common"
)

// NewROM returns the id of a device with the given family code and 48-bit
// serial number, CRC included.
func NewROM(family byte, serial uint64) [8]byte {
	var r [8]byte
	binary.LittleEndian.PutUint64(r[:], serial<<8)
	r[0] = family
	r[7] = common.CRC8(r[:7])
	return r
}

// NewDevice returns a Device with the given id.
func NewDevice(rom [8]byte) *Device {
	return &Device{ROM: rom, Responses: map[byte][]byte{}}
}

// Device is a simulated 1-wire slave.
//
// It implements the ROM commands (Read ROM, Match ROM, Skip ROM, Search ROM
// and Alarm Search). Once selected, the first byte is a function command:
// if Responses has an entry for it the device sends that entry, otherwise it
// records every following byte in Received.
type Device struct {
	ROM       [8]byte
	Alarm     bool            // answer Alarm Search
	Responses map[byte][]byte // function command to response bytes

	Commands []byte // function commands received
	Received []byte // bytes written after a function command

	mode    mode
	acc     byte   // bits being received, LSB first
	nacc    int    // number of bits in acc
	tx      []byte // bytes being sent
	ntx     int    // bits of tx already sent
	match   []byte // id received after Match ROM
	n       int    // search bit number, 0..63
	step    int    // search: 0 send bit, 1 send complement, 2 receive direction
	sending bool   // the current slot is a read slot for this device
	pull    bool   // the device sends a 0 in the current slot
}

type mode uint8

const (
	modeIdle mode = iota
	modeROMCmd
	modeMatch
	modeReadROM
	modeSearch
	modeFunction
	modeSend
	modeReceive
)

func (d *Device) String() string {
	return fmt.Sprintf("Device{%x}", d.ROM)
}

// Selected returns true if the device is listening for a function command
// or exchanging data after one.
func (d *Device) Selected() bool {
	return d.mode == modeFunction || d.mode == modeSend || d.mode == modeReceive
}

func (d *Device) reset() {
	d.mode = modeROMCmd
	d.acc, d.nacc = 0, 0
	d.tx, d.ntx = nil, 0
	d.match = d.match[:0]
	d.n, d.step = 0, 0
	d.sending, d.pull = false, false
}

func (d *Device) romBit(n int) bool {
	return d.ROM[n/8]&(1<<(n%8)) != 0
}

// slotStart is called on the falling edge opening a slot.
func (d *Device) slotStart() {
	d.sending, d.pull = false, false
	switch d.mode {
	case modeReadROM, modeSend:
		bit := d.tx[d.ntx/8]&(1<<(d.ntx%8)) != 0
		d.sending, d.pull = true, !bit
		d.ntx++
		if d.ntx == 8*len(d.tx) {
			if d.mode == modeReadROM {
				d.mode = modeFunction
			} else {
				d.mode = modeIdle
			}
		}
	case modeSearch:
		switch d.step {
		case 0:
			d.sending, d.pull = true, !d.romBit(d.n)
			d.step = 1
		case 1:
			d.sending, d.pull = true, d.romBit(d.n)
			d.step = 2
		}
	}
}

// slotEnd is called when the master releases the line after a slot's low
// pulse. one is the bit value written by the master.
func (d *Device) slotEnd(one bool) {
	if d.sending {
		return
	}
	switch d.mode {
	case modeROMCmd:
		if b, ok := d.shift(one); ok {
			d.romCommand(b)
		}
	case modeMatch:
		if b, ok := d.shift(one); ok {
			d.match = append(d.match, b)
			if len(d.match) == len(d.ROM) {
				if string(d.match) == string(d.ROM[:]) {
					d.mode = modeFunction
				} else {
					d.mode = modeIdle
				}
			}
		}
	case modeSearch:
		if d.step != 2 {
			return
		}
		if one != d.romBit(d.n) {
			d.mode = modeIdle
			return
		}
		d.step = 0
		d.n++
		if d.n == 64 {
			d.mode = modeFunction
		}
	case modeFunction:
		if b, ok := d.shift(one); ok {
			d.Commands = append(d.Commands, b)
			if r, ok := d.Responses[b]; ok && len(r) != 0 {
				d.tx, d.ntx = r, 0
				d.mode = modeSend
			} else {
				d.mode = modeReceive
			}
		}
	case modeReceive:
		if b, ok := d.shift(one); ok {
			d.Received = append(d.Received, b)
		}
	}
}

func (d *Device) romCommand(cmd byte) {
	switch cmd {
	case 0x33:
		d.tx, d.ntx = d.ROM[:], 0
		d.mode = modeReadROM
	case 0x55:
		d.mode = modeMatch
	case 0xcc:
		d.mode = modeFunction
	case 0xf0:
		d.mode = modeSearch
	case 0xec:
		if d.Alarm {
			d.mode = modeSearch
		} else {
			d.mode = modeIdle
		}
	default:
		d.mode = modeIdle
	}
}

// shift accumulates one bit and returns the byte once 8 bits were received.
func (d *Device) shift(one bool) (byte, bool) {
	if one {
		d.acc |= 1 << d.nacc
	}
	d.nacc++
	if d.nacc < 8 {
		return 0, false
	}
	b := d.acc
	d.acc, d.nacc = 0, 0
	return b, true
}
