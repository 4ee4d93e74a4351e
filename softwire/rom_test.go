// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire_test

import (
	"testing"

	"github.com/GermanBionicSystems/owtick/softwire"
	"periph.io/x/conn/v3/onewire"
)

func TestROM(t *testing.T) {
	var addr onewire.Address = 0x740000070e41ac28
	r := softwire.ROMFromAddress(addr)
	if r != (softwire.ROM{0x28, 0xac, 0x41, 0x0e, 0x07, 0x00, 0x00, 0x74}) {
		t.Fatalf("%x", r)
	}
	if !r.Valid() {
		t.Fatal("expected valid CRC")
	}
	if r.Family() != 0x28 || r.Serial() != 0x070e41ac || r.CRC() != 0x74 {
		t.Fatalf("%#x %#x %#x", r.Family(), r.Serial(), r.CRC())
	}
	if r.Address() != addr {
		t.Fatalf("%#x", uint64(r.Address()))
	}
	if s := r.String(); s != "28.0000070e41ac.74" {
		t.Fatal(s)
	}
	r[3] ^= 0x10
	if r.Valid() {
		t.Fatal("expected invalid CRC")
	}
	// CRC8 of seven zeros is zero.
	if !(softwire.ROM{}).Valid() {
		t.Fatal("all zero id has a valid CRC")
	}
}
