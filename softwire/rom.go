// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import (
	"encoding/binary"
	"fmt"

	"github.com/GermanBionicSystems/owtick/common"
	"periph.io/x/conn/v3/onewire"
)

// ROM commands.
const (
	ReadROMCmd     = 0x33
	MatchROMCmd    = 0x55
	SkipROMCmd     = 0xcc
	SearchROMCmd   = 0xf0
	AlarmSearchCmd = 0xec
)

// ROM is the 64-bit factory id of a device in wire order: family code, 48-bit
// serial number (least significant byte first) and CRC8 of the first 7 bytes.
type ROM [8]byte

// ROMFromAddress converts a periph onewire.Address, which stores the family
// code in its least significant byte.
func ROMFromAddress(a onewire.Address) ROM {
	var r ROM
	binary.LittleEndian.PutUint64(r[:], uint64(a))
	return r
}

// Family returns the device family code.
func (r ROM) Family() byte {
	return r[0]
}

// Serial returns the 48-bit serial number.
func (r ROM) Serial() uint64 {
	var b [8]byte
	copy(b[:], r[1:7])
	return binary.LittleEndian.Uint64(b[:])
}

// CRC returns the stored CRC byte.
func (r ROM) CRC() byte {
	return r[7]
}

// Valid returns true if the stored CRC matches the first 7 bytes.
func (r ROM) Valid() bool {
	return common.CheckCRC8(r[:])
}

// Address returns the id as a periph onewire.Address.
func (r ROM) Address() onewire.Address {
	return onewire.Address(binary.LittleEndian.Uint64(r[:]))
}

// String returns the id as family.serial.crc in hexadecimal.
func (r ROM) String() string {
	return fmt.Sprintf("%02x.%012x.%02x", r.Family(), r.Serial(), r.CRC())
}
