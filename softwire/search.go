// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import "periph.io/x/conn/v3/gpio"

// search is the bookkeeping of the ROM search (Maxim application note 187).
//
// Bit numbers are 1-based so that 0 means "none".
type search struct {
	rom             ROM        // candidate id, also the path of the previous scan
	n               int        // bit number being resolved, 1..64
	lastDiscrepancy int        // where the previous scan took the 0 branch last
	lastZero        int        // where this scan took the 0 branch last
	id              gpio.Level // id bit read for n
	dir             bool       // branch taken at n
}

// reset prepares for a new discovery.
func (s *search) reset() {
	*s = search{n: 1}
}

// rescan prepares for the next scan, keeping the path of the previous one.
func (s *search) rescan() {
	s.lastDiscrepancy = s.lastZero
	s.lastZero = 0
	s.n = 1
}

// resolve picks the branch at bit n given the id bit and its complement as
// read on the bus. It returns false if no device answered.
func (s *search) resolve(id, cmp gpio.Level) bool {
	switch {
	case id == gpio.High && cmp == gpio.High:
		return false
	case id != cmp:
		// All remaining devices agree.
		s.dir = id == gpio.High
	case s.n < s.lastDiscrepancy:
		// Retrace the previous scan.
		s.dir = s.rom.bit(s.n)
	default:
		// Take the 1 branch where the previous scan took the 0 branch last,
		// and the 0 branch on any new discrepancy.
		s.dir = s.n == s.lastDiscrepancy
	}
	if id == cmp && !s.dir {
		s.lastZero = s.n
	}
	s.rom.setBit(s.n, s.dir)
	return true
}

// stepSearch performs one phase of a ROM search scan.
func (d *Dev) stepSearch() {
	switch d.phase {
	case resetLow, resetRelease, presence:
		if d.stepReset() {
			d.phase = writeLow
		}
	case writeLow:
		d.slotLow(d.frame.txBit())
		d.phase = writeRelease
	case writeRelease:
		d.slotRelease()
		if d.frame.next(d.frame.wlen) {
			d.phase = idLow
		} else {
			d.phase = writeLow
		}
	case idLow:
		d.readSlotLow()
		d.phase = idRelease
	case idRelease:
		d.readSlotRelease()
		d.phase = idSample
	case idSample:
		d.search.id = d.readSlotSample()
		d.phase = cmpLow
	case cmpLow:
		d.readSlotLow()
		d.phase = cmpRelease
	case cmpRelease:
		d.readSlotRelease()
		d.phase = cmpSample
	case cmpSample:
		if !d.search.resolve(d.search.id, d.readSlotSample()) {
			d.fail(ErrROMID)
			return
		}
		d.phase = dirLow
	case dirLow:
		d.slotLow(d.search.dir)
		d.phase = dirRelease
	case dirRelease:
		d.slotRelease()
		if d.search.n < 64 {
			d.search.n++
			d.phase = idLow
			return
		}
		d.endScan()
	default:
		d.stop()
	}
}

// endScan stores the id found by a complete scan and either starts the next
// scan or completes the discovery.
func (d *Dev) endScan() {
	rom := d.search.rom
	if !rom.Valid() {
		d.fail(ErrROMID)
		return
	}
	if d.found < len(d.roms) {
		d.roms[d.found] = rom
		d.found++
	}
	if d.search.lastZero == 0 || d.found == len(d.roms) {
		d.state = Done
		return
	}
	d.search.rescan()
	d.phase = resetLow
}

func (r *ROM) bit(n int) bool {
	n--
	return r[n/8]&(1<<(n%8)) != 0
}

func (r *ROM) setBit(n int, v bool) {
	n--
	if v {
		r[n/8] |= 1 << (n % 8)
	} else {
		r[n/8] &^= 1 << (n % 8)
	}
}
