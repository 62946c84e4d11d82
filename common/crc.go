// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions used across multiple packages. For
// example, a CRC8 calculation
package common

const (
	crc8Polynomial byte = 0x31 // x^8 + x^5 + x^4 + 1
	crc8Init       byte = 0xff
)

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. CRC bytes are used in sensors from TI and Sensirion.
func CRC8(bytes []byte) byte {
	crc := crc8Init
	for _, val := range bytes {
		crc ^= val
		for range 8 {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (crc << 1) ^ crc8Polynomial
			}
		}
	}
	return crc
}

// ValidWord reports whether crc is the checksum the sensor would transmit
// after the 16-bit word msb:lsb.
func ValidWord(msb, lsb, crc byte) bool {
	return CRC8([]byte{msb, lsb}) == crc
}
