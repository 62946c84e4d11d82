// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package console prints temperature and humidity readings to a terminal
// (stdout) using ANSI color codes.
//
// Each line starts with a colored block that goes from blue when cold to red
// when hot, followed by the values and their accuracy band.
package console

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/GermanBionicSystems/sht3x/sht3x"
)

// Opts represents the options available for the reporter.
type Opts struct {
	Palette *ansi256.Palette
	// Cold and Hot are the temperatures in °C mapped to the ends of the color
	// scale. Defaults are 0 and 40.
	Cold, Hot float64

	_ struct{}
}

// Reporter writes one line per reading.
type Reporter struct {
	w         io.Writer
	palette   ansi256.Palette
	cold, hot float64

	buf bytes.Buffer
}

// New returns a Reporter that writes to the console.
func New(opts *Opts) *Reporter {
	return NewWriter(colorable.NewColorableStdout(), opts)
}

// NewWriter returns a Reporter that writes to w.
func NewWriter(w io.Writer, opts *Opts) *Reporter {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	r := &Reporter{w: w, palette: *p, cold: opts.Cold, hot: opts.Hot}
	if r.hot <= r.cold {
		r.cold, r.hot = 0, 40
	}
	return r
}

func (r *Reporter) String() string {
	return "console"
}

// Report writes the reading taken at ts.
func (r *Reporter) Report(ts time.Time, rd sht3x.Reading) error {
	r.buf.Reset()
	_, _ = r.buf.WriteString("\r\033[0m")
	_, _ = io.WriteString(&r.buf, r.palette.Block(r.temperatureColor(rd.Celsius())))
	_, _ = fmt.Fprintf(&r.buf, "\033[0m %s %s\n", ts.Format(time.TimeOnly), rd)
	_, err := r.buf.WriteTo(r.w)
	return err
}

// Missed writes a line for a cycle that produced no reading.
func (r *Reporter) Missed(ts time.Time, err error) error {
	r.buf.Reset()
	_, _ = fmt.Fprintf(&r.buf, "\r\033[0m  %s no reading: %v\n", ts.Format(time.TimeOnly), err)
	_, werr := r.buf.WriteTo(r.w)
	return werr
}

// temperatureColor linearly maps celsius from blue at r.cold to red at r.hot.
func (r *Reporter) temperatureColor(celsius float64) color.NRGBA {
	f := (celsius - r.cold) / (r.hot - r.cold)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return color.NRGBA{R: uint8(255 * f), G: 0, B: uint8(255 * (1 - f)), A: 255}
}
