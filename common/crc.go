// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, the Dallas/Maxim CRC8 that protects 1-wire ROM ids.
package common

// CRC8 calculates the Dallas/Maxim 8-bit CRC (x⁸+x⁵+x⁴+1) of the byte slice
// parameter and returns the calculated value.
//
// Bits are processed least significant first with the reflected polynomial
// 0x8C, an initial value of 0 and no final XOR.
func CRC8(bytes []byte) byte {
	var crc byte
	for _, val := range bytes {
		for range 8 {
			mix := (crc ^ val) & 0x01
			crc >>= 1
			if mix != 0 {
				crc ^= 0x8c
			}
			val >>= 1
		}
	}
	return crc
}

// CheckCRC8 returns true when the last byte of buf is the CRC8 of the bytes
// preceding it. An empty buffer never checks.
func CheckCRC8(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	return CRC8(buf[:len(buf)-1]) == buf[len(buf)-1]
}
