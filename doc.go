// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sht3x is the root of the SHT3x temperature and humidity driver
// and its tooling.
//
// The driver lives in package sht3x, the shared Sensirion checksum in
// package common. Readings can be printed with package console, rendered
// for a display with package panel and published with package telemetry.
// Package ch347bus provides an I²C bus over a CH347 USB bridge.
//
// A command line tool is available in cmd/sht3x.
package sht3x
