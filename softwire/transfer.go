// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

// stepTransfer performs one phase of a reset, write, read sequence.
func (d *Dev) stepTransfer() {
	switch d.phase {
	case resetLow, resetRelease, presence:
		if !d.stepReset() {
			return
		}
		if d.frame.wlen > 0 {
			d.phase = writeLow
		} else {
			d.endWrite()
		}
	case writeLow:
		d.slotLow(d.frame.txBit())
		d.phase = writeRelease
	case writeRelease:
		d.slotRelease()
		if d.frame.next(d.frame.wlen) {
			d.endWrite()
		} else {
			d.phase = writeLow
		}
	case readLow:
		d.readSlotLow()
		d.phase = readRelease
	case readRelease:
		d.readSlotRelease()
		d.phase = readSample
	case readSample:
		d.frame.rxBit(d.readSlotSample())
		if d.frame.next(d.frame.rlen) {
			d.endRead()
		} else {
			d.phase = readLow
		}
	default:
		d.stop()
	}
}

// endWrite switches to reading, or completes a write only transaction.
func (d *Dev) endWrite() {
	if d.frame.rlen > 0 {
		d.phase = readLow
		return
	}
	d.state = Done
}

// endRead completes the transaction. The response of a Read ROM command is
// checked and becomes the only entry of the device table.
func (d *Dev) endRead() {
	d.state = Done
	if !d.readROM {
		return
	}
	var r ROM
	copy(r[:], d.frame.response())
	if !r.Valid() {
		d.err = ErrROMID
		return
	}
	for i := range d.roms {
		d.roms[i] = ROM{}
	}
	d.roms[0] = r
	d.found = 1
}
