// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"testing"

	"periph.io/x/conn/v3/onewire"
)

func TestCRC8(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result byte
	}{
		{bytes: nil, result: 0x00},
		{bytes: []byte{0x28, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, result: 0x9e},
		{bytes: []byte{0x28, 0xac, 0x41, 0x0e, 0x07, 0x00, 0x00}, result: 0x74},
		// Maxim application note 27 example.
		{bytes: []byte{0x02, 0x1c, 0xb8, 0x01, 0x00, 0x00, 0x00}, result: 0xa2},
	}
	for _, test := range tests {
		res := CRC8(test.bytes)
		if res != test.result {
			t.Errorf("CRC8(%#v)!=%#02x received %#02x", test.bytes, test.result, res)
		}
		// periph ships the same polynomial for its own 1-wire stack.
		if ref := onewire.CalcCRC(test.bytes); ref != res {
			t.Errorf("CRC8(%#v)=%#02x but onewire.CalcCRC=%#02x", test.bytes, res, ref)
		}
	}
}

func TestCheckCRC8(t *testing.T) {
	var tests = []struct {
		buf []byte
		ok  bool
	}{
		{buf: nil, ok: false},
		{buf: []byte{0x00}, ok: true},
		{buf: []byte{0x28, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x9e}, ok: true},
		{buf: []byte{0x28, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x9f}, ok: false},
		{buf: []byte{0x28, 0x01, 0x02, 0x03, 0x04, 0x05, 0x07, 0x9e}, ok: false},
	}
	for _, test := range tests {
		if ok := CheckCRC8(test.buf); ok != test.ok {
			t.Errorf("CheckCRC8(%#v)=%t, want %t", test.buf, ok, test.ok)
		}
	}
}
