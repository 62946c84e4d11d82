// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sht3x

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/sht3x/common"
)

const (
	// DefaultAddress is used when the ADDR pin is tied to ground.
	DefaultAddress uint16 = 0x44
	// AlternateAddress is used when the ADDR pin is tied to VDD.
	AlternateAddress uint16 = 0x45
)

// Mode is a single shot measurement command. The sensor either holds SCL low
// until the conversion completes (clock stretching), or NACKs the read and
// the host has to wait for the conversion time.
type Mode int

const (
	HighStretch Mode = iota
	MediumStretch
	LowStretch
	High
	Medium
	Low
)

type devCommand [2]byte

var modeCommands = [...]devCommand{
	HighStretch:   {0x2c, 0x06},
	MediumStretch: {0x2c, 0x0d},
	LowStretch:    {0x2c, 0x10},
	High:          {0x24, 0x00},
	Medium:        {0x24, 0x0b},
	Low:           {0x24, 0x16},
}

// Maximum conversion time per repeatability, from the datasheet.
var modeDurations = [...]time.Duration{
	HighStretch:   15500 * time.Microsecond,
	MediumStretch: 6500 * time.Microsecond,
	LowStretch:    4500 * time.Microsecond,
	High:          15500 * time.Microsecond,
	Medium:        6500 * time.Microsecond,
	Low:           4500 * time.Microsecond,
}

var modeNames = [...]string{
	HighStretch:   "high repeatability, clock stretching",
	MediumStretch: "medium repeatability, clock stretching",
	LowStretch:    "low repeatability, clock stretching",
	High:          "high repeatability",
	Medium:        "medium repeatability",
	Low:           "low repeatability",
}

func (m Mode) valid() bool {
	return m >= HighStretch && m <= Low
}

// Command returns the two command bytes sent to start a measurement. Both are
// zero for an unknown mode.
func (m Mode) Command() (msb, lsb byte) {
	if !m.valid() {
		return 0, 0
	}
	c := modeCommands[m]
	return c[0], c[1]
}

// ClockStretching reports whether the sensor holds the bus during conversion.
func (m Mode) ClockStretching() bool {
	return m.valid() && m <= LowStretch
}

// Duration returns the maximum conversion time of the mode, or 0 for an
// unknown mode.
func (m Mode) Duration() time.Duration {
	if !m.valid() {
		return 0
	}
	return modeDurations[m]
}

func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

var (
	cmdSoftReset   = devCommand{0x30, 0xa2}
	cmdReadStatus  = devCommand{0xf3, 0x2d}
	cmdClearStatus = devCommand{0x30, 0x41}
)

const (
	// Two data bytes and a CRC for temperature, then the same for humidity.
	responseSize = 6

	temperatureOffset float64 = -45.0
	temperatureScalar float64 = 175.0
	humidityScalar    float64 = 100.0
	scaleDivisor      float64 = 65535.0

	resetDuration = 1500 * time.Microsecond
)

// Opts holds the configuration options for the device.
type Opts struct {
	// Mode is the measurement command. Default is HighStretch.
	Mode Mode
	// Variant selects the accuracy tables used by Read. Default is SHT30.
	Variant Variant
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Mode:    HighStretch,
	Variant: SHT30,
}

// Measurement is one temperature and humidity pair.
type Measurement struct {
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
}

// Celsius returns the temperature in °C.
func (m Measurement) Celsius() float64 {
	return float64(m.Temperature-physic.ZeroCelsius) / float64(physic.Kelvin)
}

// PercentRH returns the relative humidity in %.
func (m Measurement) PercentRH() float64 {
	return float64(m.Humidity) / float64(physic.PercentRH)
}

// WithTolerance returns the measurement together with its accuracy band for
// the variant.
func (m Measurement) WithTolerance(v Variant) (Reading, error) {
	tt, err := TemperatureTolerance(m.Celsius(), v)
	if err != nil {
		return Reading{}, err
	}
	ht, err := HumidityTolerance(m.PercentRH(), v)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Measurement: m, TemperatureTolerance: tt, HumidityTolerance: ht}, nil
}

// Reading is a measurement with its accuracy band.
type Reading struct {
	Measurement
	// ± °C
	TemperatureTolerance float64
	// ± %RH
	HumidityTolerance float64
}

func (r Reading) String() string {
	return fmt.Sprintf("%.2f°C ±%.2f°C %.2f%%rH ±%.2f%%rH",
		r.Celsius(), r.TemperatureTolerance, r.PercentRH(), r.HumidityTolerance)
}

// StatusWord is the content of the status register.
type StatusWord uint16

const (
	StatusAlertPending     StatusWord = 1 << 15
	StatusHeaterEnabled    StatusWord = 1 << 13
	StatusHumidityAlert    StatusWord = 1 << 11
	StatusTemperatureAlert StatusWord = 1 << 10
	StatusResetDetected    StatusWord = 1 << 4
	// Last command was not processed, invalid or failed its checksum.
	StatusCommandFailed StatusWord = 1 << 1
	// Set if there was a CRC error on the last write command.
	StatusWriteCRCFailure StatusWord = 1 << 0
)

var statusNames = []struct {
	flag StatusWord
	name string
}{
	{StatusAlertPending, "AlertPending"},
	{StatusHeaterEnabled, "HeaterEnabled"},
	{StatusHumidityAlert, "HumidityAlert"},
	{StatusTemperatureAlert, "TemperatureAlert"},
	{StatusResetDetected, "ResetDetected"},
	{StatusCommandFailed, "CommandFailed"},
	{StatusWriteCRCFailure, "WriteCRCFailure"},
}

func (s StatusWord) String() string {
	out := ""
	for _, n := range statusNames {
		if s&n.flag == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += n.name
	}
	if out == "" {
		return "0"
	}
	return out
}

// Dev represents a SHT3x temperature/humidity sensor.
type Dev struct {
	d        *i2c.Dev
	opts     Opts
	mu       sync.Mutex
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewI2C returns a new SHT3x sensor on the bus. addr must be DefaultAddress
// or AlternateAddress. The Opts can be nil.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if addr != DefaultAddress && addr != AlternateAddress {
		return nil, fmt.Errorf("sht3x: invalid address %#x", addr)
	}
	if !opts.Mode.valid() {
		return nil, fmt.Errorf("sht3x: invalid mode %d", int(opts.Mode))
	}
	if !opts.Variant.Valid() {
		return nil, &InvalidVariantError{Variant: opts.Variant}
	}
	return &Dev{d: &i2c.Dev{Bus: b, Addr: addr}, opts: *opts}, nil
}

// sendCommand writes the two command bytes. There is no retry.
func (dev *Dev) sendCommand(cmd devCommand) error {
	if err := dev.d.Tx(cmd[:], nil); err != nil {
		return &CommunicationError{Op: "command", Err: err}
	}
	return nil
}

// readResponse fills r or fails. The bus reports a short transfer as an error.
func (dev *Dev) readResponse(r []byte) error {
	if err := dev.d.Tx(nil, r); err != nil {
		return &CommunicationError{Op: "read", Err: err}
	}
	return nil
}

// Measure triggers a measurement and returns it once both words passed their
// checksum. On failure the error matches ErrNoData.
func (dev *Dev) Measure() (Measurement, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.measure()
}

func (dev *Dev) measure() (Measurement, error) {
	if err := dev.sendCommand(modeCommands[dev.opts.Mode]); err != nil {
		return Measurement{}, err
	}
	if !dev.opts.Mode.ClockStretching() {
		time.Sleep(dev.opts.Mode.Duration())
	}
	var r [responseSize]byte
	if err := dev.readResponse(r[:]); err != nil {
		return Measurement{}, err
	}
	return decode(r)
}

// decode validates and converts a measurement response.
func decode(r [responseSize]byte) (Measurement, error) {
	badT := !common.ValidWord(r[0], r[1], r[2])
	badH := !common.ValidWord(r[3], r[4], r[5])
	if badT || badH {
		return Measurement{}, &DataIntegrityError{Temperature: badT, Humidity: badH}
	}
	return Measurement{
		Temperature: countToTemperature(uint16(r[0])<<8 | uint16(r[1])),
		Humidity:    countToHumidity(uint16(r[3])<<8 | uint16(r[4])),
	}, nil
}

// convert the raw count to a temperature. T = -45 + 175 * count / 65535
func countToTemperature(count uint16) physic.Temperature {
	f := temperatureOffset + float64(count)*temperatureScalar/scaleDivisor
	return physic.ZeroCelsius + physic.Temperature(f*float64(physic.Kelvin))
}

// convert the raw count to a humidity value. RH = 100 * count / 65535
func countToHumidity(count uint16) physic.RelativeHumidity {
	f := float64(count) * humidityScalar / scaleDivisor
	return physic.RelativeHumidity(f * float64(physic.PercentRH))
}

// Read takes a measurement and adds the accuracy band of the configured
// variant.
func (dev *Dev) Read() (Reading, error) {
	m, err := dev.Measure()
	if err != nil {
		return Reading{}, err
	}
	return m.WithTolerance(dev.opts.Variant)
}

// Sense reads temperature and humidity from the device and writes the value to
// the specified env variable. Implements physic.SenseEnv.
func (dev *Dev) Sense(env *physic.Env) error {
	env.Temperature = 0
	env.Pressure = 0
	env.Humidity = 0
	m, err := dev.Measure()
	if err != nil {
		return err
	}
	env.Temperature = m.Temperature
	env.Humidity = m.Humidity
	return nil
}

// SenseContinuous continuously reads from the device and writes the value to
// the returned channel. Cycles that fail are skipped. To terminate the
// continuous read, call Halt().
//
// If interval is less than the conversion time of the mode, an error is
// returned.
func (dev *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		return nil, errors.New("sht3x: SenseContinuous already running")
	}
	if interval < dev.opts.Mode.Duration() {
		return nil, errors.New("sht3x: sample interval is < measurement duration")
	}
	dev.shutdown = make(chan struct{})
	ch := make(chan physic.Env, 16)
	dev.wg.Add(1)
	go dev.senseContinuous(interval, dev.shutdown, ch)
	return ch, nil
}

func (dev *Dev) senseContinuous(interval time.Duration, shutdown <-chan struct{}, ch chan<- physic.Env) {
	defer dev.wg.Done()
	defer close(ch)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			env := physic.Env{}
			if err := dev.Sense(&env); err != nil {
				continue
			}
			select {
			case ch <- env:
			case <-shutdown:
				return
			}
		}
	}
}

// Precision returns the smallest change in readings the device can produce.
// Implements physic.SenseEnv.
func (dev *Dev) Precision(env *physic.Env) {
	env.Temperature = physic.Temperature(math.Round(temperatureScalar / scaleDivisor * float64(physic.Kelvin)))
	env.Humidity = physic.RelativeHumidity(math.Round(humidityScalar / scaleDivisor * float64(physic.PercentRH)))
	env.Pressure = 0
}

// Reset issues a soft reset to the device.
func (dev *Dev) Reset() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if err := dev.sendCommand(cmdSoftReset); err != nil {
		return fmt.Errorf("sht3x: reset: %w", err)
	}
	time.Sleep(resetDuration)
	return nil
}

// Status returns the status register.
func (dev *Dev) Status() (StatusWord, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	var r [3]byte
	if err := dev.d.Tx(cmdReadStatus[:], r[:]); err != nil {
		return 0, fmt.Errorf("sht3x: status: %w", err)
	}
	if !common.ValidWord(r[0], r[1], r[2]) {
		return 0, &DataIntegrityError{}
	}
	return StatusWord(uint16(r[0])<<8 | uint16(r[1])), nil
}

// ClearStatus clears the alert and reset flags of the status register.
func (dev *Dev) ClearStatus() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if err := dev.sendCommand(cmdClearStatus); err != nil {
		return fmt.Errorf("sht3x: clear status: %w", err)
	}
	return nil
}

// Halt terminates a SenseContinuous operation if running. Implements
// conn.Resource.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	shutdown := dev.shutdown
	dev.shutdown = nil
	dev.mu.Unlock()
	if shutdown != nil {
		close(shutdown)
		dev.wg.Wait()
	}
	return nil
}

// String returns a string representation of the device.
func (dev *Dev) String() string {
	return fmt.Sprintf("sht3x{%s}", dev.d)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
