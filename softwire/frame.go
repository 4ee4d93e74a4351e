// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import "periph.io/x/conn/v3/gpio"

// frame is the transfer buffer.
//
// Bytes [0, wlen) are sent on the bus, the response is stored in
// [wlen, wlen+rlen). wlen+rlen never exceeds len(data); load is the only
// place the regions are sized.
type frame struct {
	data []byte
	wlen int
	rlen int
	pos  int   // byte index within the current region
	bit  uint8 // bit index within data[pos], LSB first
}

func newFrame(capacity int) frame {
	return frame{data: make([]byte, capacity)}
}

// load zeroes the buffer, copies parts in the write region and reserves rlen
// bytes of response. The buffer is not touched if the frame does not fit.
func (f *frame) load(rlen int, parts ...[]byte) error {
	if !f.fits(rlen, parts...) {
		return ErrLength
	}
	f.clear()
	wlen := 0
	for _, p := range parts {
		wlen += len(p)
	}
	n := 0
	for _, p := range parts {
		n += copy(f.data[n:], p)
	}
	f.wlen = wlen
	f.rlen = rlen
	return nil
}

// fits returns true if parts and rlen bytes of response fit the buffer.
func (f *frame) fits(rlen int, parts ...[]byte) bool {
	n := rlen
	for _, p := range parts {
		n += len(p)
	}
	return rlen >= 0 && n <= len(f.data)
}

func (f *frame) clear() {
	for i := range f.data {
		f.data[i] = 0
	}
	f.wlen = 0
	f.rlen = 0
	f.rewind()
}

func (f *frame) rewind() {
	f.pos = 0
	f.bit = 0
}

// txBit returns the bit under the cursor in the write region.
func (f *frame) txBit() bool {
	return f.data[f.pos]&(1<<f.bit) != 0
}

// rxBit stores a sampled bit under the cursor in the response region.
func (f *frame) rxBit(l gpio.Level) {
	i := f.wlen + f.pos
	if l == gpio.High {
		f.data[i] |= 1 << f.bit
	} else {
		f.data[i] &^= 1 << f.bit
	}
}

// next advances the cursor by one bit and returns true once limit bytes have
// been consumed, in which case the cursor is rewound.
func (f *frame) next(limit int) bool {
	f.bit++
	if f.bit < 8 {
		return false
	}
	f.bit = 0
	f.pos++
	if f.pos < limit {
		return false
	}
	f.rewind()
	return true
}

func (f *frame) written() []byte {
	return f.data[:f.wlen]
}

func (f *frame) response() []byte {
	return f.data[f.wlen : f.wlen+f.rlen]
}
