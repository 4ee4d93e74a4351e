// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

// All requests return immediately. On success the transaction is armed and
// progresses on the following calls to Tick; its outcome is then reported by
// Err and OnDone. On failure nothing is left pending and, except for ErrBusy,
// the error is also recorded as Err.

// ReadROM reads the id of the only device on the bus.
//
// The id is checked on completion: ErrROMID is reported on a CRC mismatch,
// otherwise the id becomes the single entry of the device table.
func (d *Dev) ReadROM() error {
	return d.begin(Transfer, true, 8, []byte{ReadROMCmd})
}

// Discover enumerates the devices on the bus with the ROM search and
// replaces the device table with the result. When alarmOnly is true only the
// devices in alarm state answer.
//
// Discovery stops once every device was found or the table is full. On
// error the devices found so far are kept.
func (d *Dev) Discover(alarmOnly bool) error {
	cmd := byte(SearchROMCmd)
	if alarmOnly {
		cmd = AlarmSearchCmd
	}
	return d.begin(Search, false, 0, []byte{cmd})
}

// Write sends the function command fn followed by data to all devices.
func (d *Dev) Write(fn byte, data []byte) error {
	if d.state != Idle {
		return ErrBusy
	}
	if len(data) > d.maxData {
		return d.reject(ErrLength)
	}
	return d.begin(Transfer, false, 0, []byte{SkipROMCmd, fn}, data)
}

// Read sends the function command fn to all devices and reads n bytes of
// response.
func (d *Dev) Read(fn byte, n int) error {
	if d.state != Idle {
		return ErrBusy
	}
	if n < 0 || n > d.maxData {
		return d.reject(ErrLength)
	}
	return d.begin(Transfer, false, n, []byte{SkipROMCmd, fn})
}

// WriteTo sends the function command fn followed by data to the device at
// index idx of the device table.
func (d *Dev) WriteTo(idx int, fn byte, data []byte) error {
	if d.state != Idle {
		return ErrBusy
	}
	if len(data) > d.maxData {
		return d.reject(ErrLength)
	}
	if idx < 0 || idx >= d.found {
		return d.reject(ErrROMID)
	}
	return d.begin(Transfer, false, 0, []byte{MatchROMCmd}, d.roms[idx][:], []byte{fn}, data)
}

// ReadFrom sends the function command fn to the device at index idx of the
// device table and reads n bytes of response.
func (d *Dev) ReadFrom(idx int, fn byte, n int) error {
	if d.state != Idle {
		return ErrBusy
	}
	if n < 0 || n > d.maxData {
		return d.reject(ErrLength)
	}
	if idx < 0 || idx >= d.found {
		return d.reject(ErrROMID)
	}
	return d.begin(Transfer, false, n, []byte{MatchROMCmd}, d.roms[idx][:], []byte{fn})
}

// Transfer issues a reset, sends w as is and reads n bytes of response.
//
// w must start with a ROM command. len(w)+n is limited by Cap.
func (d *Dev) Transfer(w []byte, n int) error {
	return d.begin(Transfer, false, n, w)
}

// Response copies the response of the last transaction into p and returns
// the number of bytes copied.
func (d *Dev) Response(p []byte) int {
	return copy(p, d.frame.response())
}

// Count returns the number of devices in the device table.
func (d *Dev) Count() int {
	return d.found
}

// ROM returns the id at index idx of the device table.
func (d *Dev) ROM(idx int) (ROM, error) {
	if idx < 0 || idx >= d.found {
		return ROM{}, ErrROMID
	}
	return d.roms[idx], nil
}

// Devices returns a copy of the device table.
func (d *Dev) Devices() []ROM {
	out := make([]ROM, d.found)
	copy(out, d.roms)
	return out
}

// begin validates the frame layout and starts the transaction.
func (d *Dev) begin(s State, readROM bool, rlen int, parts ...[]byte) error {
	if d.state != Idle {
		return ErrBusy
	}
	if !d.frame.fits(rlen, parts...) {
		return d.reject(ErrLength)
	}
	if err := d.start(s, readROM, rlen, parts...); err != nil {
		return d.reject(err)
	}
	return nil
}

// reject records err for a request that never started.
func (d *Dev) reject(err error) error {
	d.fail(err)
	return err
}
