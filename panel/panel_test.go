// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package panel

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/sht3x/sht3x"
)

var reading = sht3x.Reading{
	Measurement: sht3x.Measurement{
		Temperature: physic.ZeroCelsius + 23*physic.Kelvin,
		Humidity:    50 * physic.PercentRH,
	},
	TemperatureTolerance: 0.2,
	HumidityTolerance:    2,
}

// fakeDrawer records the last image drawn.
type fakeDrawer struct {
	bounds image.Rectangle
	img    image.Image
	err    error
}

func (f *fakeDrawer) String() string          { return "fake" }
func (f *fakeDrawer) Halt() error             { return nil }
func (f *fakeDrawer) ColorModel() color.Model { return color.GrayModel }
func (f *fakeDrawer) Bounds() image.Rectangle { return f.bounds }

func (f *fakeDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if f.err != nil {
		return f.err
	}
	f.img = src
	return nil
}

var _ display.Drawer = &fakeDrawer{}

func litPixels(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0x8000 {
				n++
			}
		}
	}
	return n
}

func TestNew(t *testing.T) {
	if _, err := New(0, 64, nil); err == nil {
		t.Error("expected error for zero width")
	}
	p, err := New(128, 64, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bounds() != image.Rect(0, 0, 128, 64) {
		t.Errorf("bounds %v", p.Bounds())
	}
}

func TestRender(t *testing.T) {
	p, err := New(128, 64, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := p.Render(reading)
	if img.Bounds() != p.Bounds() {
		t.Fatalf("image bounds %v", img.Bounds())
	}
	if n := litPixels(img); n == 0 {
		t.Error("nothing was drawn")
	}
	// Corners stay background.
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Error("top left corner is not background")
	}
}

func TestDraw(t *testing.T) {
	p, _ := New(128, 32, nil)
	d := &fakeDrawer{bounds: image.Rect(0, 0, 128, 32)}
	if err := p.Draw(d, reading); err != nil {
		t.Fatal(err)
	}
	if d.img == nil || litPixels(d.img) == 0 {
		t.Error("display received an empty image")
	}
	d.err = errors.New("bus error")
	if err := p.Draw(d, reading); err == nil {
		t.Error("expected error")
	}
}

func TestSavePNG(t *testing.T) {
	p, _ := New(64, 32, nil)
	path := filepath.Join(t.TempDir(), "reading.png")
	if err := p.SavePNG(path, reading); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("png size %v", img.Bounds())
	}
}
