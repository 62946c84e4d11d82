// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sht3x controls the Sensirion SHT30, SHT31 and SHT35 temperature and
// humidity sensors over I²C.
//
// Measurements are taken in single shot mode. Every measurement returns a
// temperature word and a humidity word, each followed by a CRC-8 checksum. A
// measurement is only returned when both checksums match; the pair is sampled
// atomically by the sensor so a partially valid response is discarded.
//
// # Datasheet
//
// https://sensirion.com/media/documents/213E6A3B/63A5A569/Datasheet_SHT3x_DIS.pdf
//
// # Accuracy
//
// The accuracy band depends on the sensor variant and on the measured value
// itself. TemperatureTolerance and HumidityTolerance return the ± band for a
// value.
//
// SHT30
//
//	±0.2 °C between 0 °C and 65 °C, ±2 %RH between 10 %RH and 90 %RH
//
// SHT31
//
//	±0.2 °C between 0 °C and 90 °C, ±2 %RH over the full range
//
// SHT35
//
//	±0.1 °C between 20 °C and 60 °C, ±1.5 %RH up to 80 %RH
//
// All variants measure -40…125 °C and 0…100 %RH with 16 bit resolution.
package sht3x
