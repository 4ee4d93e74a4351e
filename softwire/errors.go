// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

const (
	// ErrBusy is returned when a request is issued while another transaction
	// is in flight. The in-flight transaction is left untouched.
	ErrBusy = requestError("softwire: transaction in progress")
	// ErrLength is returned when the frame does not fit the transfer buffer.
	ErrLength = requestError("softwire: length exceeds buffer capacity")
	// ErrBusFault is returned when the line does not read high before a
	// reset, i.e. something is holding the bus low.
	ErrBusFault = shortedBusError("softwire: bus is held low")
	// ErrResetFailed is reported when no device answered the reset pulse.
	ErrResetFailed = noDevicesError("softwire: no presence pulse")
	// ErrROMID is reported on a ROM id CRC mismatch, an impossible search
	// reading or an out of range device table index.
	ErrROMID = busError("softwire: invalid ROM id")
)

// requestError implements error for caller-side rejections.
type requestError string

func (e requestError) Error() string { return string(e) }

// shortedBusError implements error and onewire.ShortedBusError.
type shortedBusError string

func (e shortedBusError) Error() string   { return string(e) }
func (e shortedBusError) IsShorted() bool { return true }
func (e shortedBusError) BusError() bool  { return true }

// noDevicesError implements error, onewire.NoDevicesError and
// onewire.BusError.
type noDevicesError string

func (e noDevicesError) Error() string   { return string(e) }
func (e noDevicesError) NoDevices() bool { return true }
func (e noDevicesError) BusError() bool  { return true }

// busError implements error and onewire.BusError.
type busError string

func (e busError) Error() string  { return string(e) }
func (e busError) BusError() bool { return true }
