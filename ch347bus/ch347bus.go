// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ch347bus exposes the I²C port of a WCH CH347 USB bridge as a
// periph i2c.Bus, so sensors can be read from a desktop without a board
// level I²C controller.
//
// The bridge must be in mode 1 (HID) and the hidraw node of interface 1
// must be accessible to the user.
package ch347bus

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/serfreeman1337/go-ch347"
	"github.com/sstallion/go-hid"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	vendorID  uint16 = 0x1a86
	productID uint16 = 0x55dc
	// Interface 0 is the UART, 1 is SPI+I2C+GPIO.
	i2cInterface = 1
	productName  = "HID To UART+SPI+I2C"
)

// hidWithTimeout retries reads interrupted by signals.
type hidWithTimeout struct {
	*hid.Device
}

func (d *hidWithTimeout) Read(p []byte) (n int, err error) {
	for {
		n, err = d.Device.ReadWithTimeout(p, time.Second)
		if err == nil || err.Error() != "Interrupted system call" {
			return
		}
	}
}

// Bus is a CH347 I²C port.
type Bus struct {
	mu  sync.Mutex
	dev io.Closer
	io  transferer
}

// transferer is the I²C part of ch347.IO.
type transferer interface {
	I2C(addr uint16, w, r []byte) error
}

// devicePath returns the hidraw path of the first CH347 I²C interface.
func devicePath() (string, error) {
	var path string
	err := hid.Enumerate(vendorID, productID, func(info *hid.DeviceInfo) error {
		if path == "" && info.ProductStr == productName && info.InterfaceNbr == i2cInterface {
			path = info.Path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.New("ch347bus: no CH347 found")
	}
	return path, nil
}

// Open opens the first CH347 found.
func Open() (*Bus, error) {
	path, err := devicePath()
	if err != nil {
		return nil, err
	}
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("ch347bus: %w", err)
	}
	c := &ch347.IO{Dev: &hidWithTimeout{dev}}
	if err := c.SetI2C(ch347.I2CMode3); err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("ch347bus: %w", err)
	}
	return &Bus{dev: dev, io: c}, nil
}

func (b *Bus) String() string {
	return "ch347"
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7f {
		return fmt.Errorf("ch347bus: invalid address %#x", addr)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.io.I2C(addr, w, r); err != nil {
		return fmt.Errorf("ch347bus: %w", err)
	}
	return nil
}

// SetSpeed implements i2c.Bus. The clock is fixed when the bus is opened.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return errors.New("ch347bus: speed cannot be changed")
}

// Close implements i2c.BusCloser.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dev.Close()
}

var _ i2c.BusCloser = &Bus{}
var _ transferer = &ch347.IO{}
