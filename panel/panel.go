// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package panel renders temperature and humidity readings into an image that
// can be sent to any display.Drawer, such as a small OLED or e-paper module,
// or saved as a PNG.
package panel

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/sht3x/sht3x"
)

// Opts represents the options available for the panel.
type Opts struct {
	// Foreground and Background default to white on black, which suits
	// monochrome OLEDs.
	Foreground color.Color
	Background color.Color
	// FontSize is the size of the value lines in points. The tolerance lines
	// use half of it. Default is a size that fills the height.
	FontSize float64
}

// Panel draws readings at a fixed size.
type Panel struct {
	w, h  int
	fg    color.Color
	bg    color.Color
	large font.Face
	small font.Face
}

// New returns a Panel that renders images of width x height pixels.
func New(width, height int, opts *Opts) (*Panel, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("panel: invalid size %dx%d", width, height)
	}
	if opts == nil {
		opts = &Opts{}
	}
	p := &Panel{w: width, h: height, fg: opts.Foreground, bg: opts.Background}
	if p.fg == nil {
		p.fg = color.White
	}
	if p.bg == nil {
		p.bg = color.Black
	}
	size := opts.FontSize
	if size <= 0 {
		// Two value lines and two tolerance lines.
		size = float64(height) / 3.5
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}
	p.large = truetype.NewFace(f, &truetype.Options{Size: size})
	p.small = truetype.NewFace(f, &truetype.Options{Size: size / 2})
	return p, nil
}

// Bounds returns the size of the rendered images.
func (p *Panel) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.w, p.h)
}

// Render draws the reading. Values are left aligned, tolerances right
// aligned below each value.
func (p *Panel) Render(r sht3x.Reading) image.Image {
	dc := gg.NewContext(p.w, p.h)
	dc.SetColor(p.bg)
	dc.Clear()
	dc.SetColor(p.fg)

	row := float64(p.h) / 2
	dc.SetFontFace(p.large)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f°C", r.Celsius()), 1, row*0.5, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%.1f%%", r.PercentRH()), 1, row*1.5, 0, 0.5)

	dc.SetFontFace(p.small)
	right := float64(p.w - 1)
	dc.DrawStringAnchored(fmt.Sprintf("±%.2f", r.TemperatureTolerance), right, row*0.5, 1, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("±%.1f", r.HumidityTolerance), right, row*1.5, 1, 0.5)
	return dc.Image()
}

// Draw renders the reading and sends it to the display.
func (p *Panel) Draw(dst display.Drawer, r sht3x.Reading) error {
	img := p.Render(r)
	if err := dst.Draw(dst.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return nil
}

// SavePNG renders the reading into a PNG file.
func (p *Panel) SavePNG(path string, r sht3x.Reading) error {
	if err := gg.SavePNG(path, p.Render(r)); err != nil {
		return fmt.Errorf("panel: %w", err)
	}
	return nil
}
