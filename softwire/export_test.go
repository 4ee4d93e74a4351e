// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

// Snapshot is the transaction state visible to tests.
type Snapshot struct {
	Data       []byte
	Wlen, Rlen int
	Pos        int
	Bit        uint8
	Phase      uint8
	State      State
}

func (d *Dev) Snapshot() Snapshot {
	return Snapshot{
		Data:  append([]byte(nil), d.frame.data...),
		Wlen:  d.frame.wlen,
		Rlen:  d.frame.rlen,
		Pos:   d.frame.pos,
		Bit:   d.frame.bit,
		Phase: uint8(d.phase),
		State: d.state,
	}
}

func (d *Dev) LastDiscrepancy() int {
	return d.search.lastDiscrepancy
}

func (d *Dev) LastZero() int {
	return d.search.lastZero
}
