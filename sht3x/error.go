// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht3x

import (
	"errors"
	"fmt"
)

// ErrNoData is matched by errors.Is for every failure that means no reading
// was produced this cycle. The caller can simply try again on the next one.
var ErrNoData = errors.New("sht3x: no data")

// CommunicationError is returned when the bus transaction failed. Op is the
// step that failed, either "command" or "read".
type CommunicationError struct {
	Op  string
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("sht3x: %s failed: %v", e.Op, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

func (e *CommunicationError) Is(target error) bool {
	return target == ErrNoData
}

// DataIntegrityError is returned when a received word did not match its
// checksum. The whole response is discarded.
type DataIntegrityError struct {
	Temperature bool
	Humidity    bool
}

func (e *DataIntegrityError) Error() string {
	switch {
	case e.Temperature && e.Humidity:
		return "sht3x: crc mismatch on temperature and humidity words"
	case e.Temperature:
		return "sht3x: crc mismatch on temperature word"
	case e.Humidity:
		return "sht3x: crc mismatch on humidity word"
	}
	return "sht3x: crc mismatch"
}

func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrNoData
}

// InvalidVariantError is returned by the tolerance functions for a variant
// that has no accuracy table.
type InvalidVariantError struct {
	Variant Variant
}

func (e *InvalidVariantError) Error() string {
	return fmt.Sprintf("sht3x: invalid sensor variant %d", uint8(e.Variant))
}
