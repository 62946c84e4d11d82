// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sht3x reads an SHT3x sensor periodically and prints each reading with its
// accuracy band. Readings can also be published over MQTT and rendered to a
// PNG file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/sht3x/ch347bus"
	"github.com/GermanBionicSystems/sht3x/console"
	"github.com/GermanBionicSystems/sht3x/panel"
	"github.com/GermanBionicSystems/sht3x/sht3x"
	"github.com/GermanBionicSystems/sht3x/telemetry"
)

// reporter consumes the readings of the loop.
type reporter interface {
	Report(ts time.Time, r sht3x.Reading) error
}

// reader is the part of sht3x.Dev the loop uses.
type reader interface {
	Read() (sht3x.Reading, error)
}

// SampleDue reports whether a new sample should be taken at now, given the
// time of the previous one. A zero last means no sample was taken yet.
func SampleDue(now, last time.Time, interval time.Duration) bool {
	return now.After(last.Add(interval))
}

// cycle takes one reading and hands it to every reporter. A failed reading
// is logged and skipped. Reporter errors are logged and do not stop the
// other reporters.
func cycle(dev reader, missed func(time.Time, error) error, reporters []reporter, now time.Time) bool {
	r, err := dev.Read()
	if err != nil {
		if errors.Is(err, sht3x.ErrNoData) {
			glog.Warningf("no reading: %v", err)
		} else {
			glog.Errorf("read: %v", err)
		}
		if missed != nil {
			if err := missed(now, err); err != nil {
				glog.Warningf("report: %v", err)
			}
		}
		return false
	}
	for _, rep := range reporters {
		if err := rep.Report(now, r); err != nil {
			glog.Warningf("report: %v", err)
		}
	}
	return true
}

// run samples every interval until ctx is done or count readings were
// produced. count <= 0 means forever.
func run(ctx context.Context, dev reader, missed func(time.Time, error) error, reporters []reporter, interval time.Duration, count int) {
	poll := interval / 10
	if poll < 10*time.Millisecond {
		poll = 10 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	var last time.Time
	n := 0
	for {
		now := time.Now()
		if SampleDue(now, last, interval) {
			last = now
			if cycle(dev, missed, reporters, now) {
				n++
				if count > 0 && n >= count {
					return
				}
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// pngReporter renders each reading over the same file.
type pngReporter struct {
	p    *panel.Panel
	path string
}

func (r *pngReporter) Report(ts time.Time, rd sht3x.Reading) error {
	return r.p.SavePNG(r.path, rd)
}

func parseMode(s string) (sht3x.Mode, error) {
	modes := map[string]sht3x.Mode{
		"high-stretch":   sht3x.HighStretch,
		"medium-stretch": sht3x.MediumStretch,
		"low-stretch":    sht3x.LowStretch,
		"high":           sht3x.High,
		"medium":         sht3x.Medium,
		"low":            sht3x.Low,
	}
	m, ok := modes[s]
	if !ok {
		return 0, fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// parseAddress accepts a 7 bit I²C address.
func parseAddress(a uint) (uint16, error) {
	if a > 0x7f {
		return 0, fmt.Errorf("invalid address %#x", a)
	}
	return uint16(a), nil
}

func openBus(name string, useCH347 bool) (i2c.BusCloser, error) {
	if useCH347 {
		return ch347bus.Open()
	}
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return i2creg.Open(name)
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mainImpl() error {
	busName := flag.String("bus", envDefault("SHT3X_BUS", ""), "I²C bus to use")
	useCH347 := flag.Bool("ch347", false, "use a CH347 USB bridge instead of a host I²C bus")
	addr := flag.Uint("addr", uint(sht3x.DefaultAddress), "I²C address, 0x44 or 0x45")
	variant := flag.Uint("variant", uint(sht3x.SHT30), "sensor variant: 0, 1 or 5")
	modeName := flag.String("mode", "high-stretch", "measurement mode: {high,medium,low}[-stretch]")
	interval := flag.Duration("interval", 2*time.Second, "time between measurements")
	count := flag.Int("count", 0, "stop after this many readings, 0 for no limit")
	mqttURL := flag.String("mqtt", envDefault("SHT3X_MQTT", ""), "MQTT broker URL, e.g. mqtt://host:1883/topic")
	pngPath := flag.String("png", "", "render the last reading to this PNG file")
	if err := flag.Set("logtostderr", "true"); err != nil {
		return err
	}
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	mode, err := parseMode(*modeName)
	if err != nil {
		return err
	}
	if *variant > 255 {
		return fmt.Errorf("invalid variant %d", *variant)
	}
	devAddr, err := parseAddress(*addr)
	if err != nil {
		return err
	}
	opts := &sht3x.Opts{Mode: mode, Variant: sht3x.Variant(*variant)}

	bus, err := openBus(*busName, *useCH347)
	if err != nil {
		return err
	}
	defer bus.Close()

	dev, err := sht3x.NewI2C(bus, devAddr, opts)
	if err != nil {
		return err
	}
	defer dev.Halt()
	glog.Infof("%s on %s: %s, %s", dev, bus, mode, opts.Variant)

	con := console.New(nil)
	reporters := []reporter{con}
	if *mqttURL != "" {
		pub, err := telemetry.New(*mqttURL)
		if err != nil {
			return err
		}
		defer pub.Close()
		glog.Infof("publishing to %s", pub.Topic())
		reporters = append(reporters, pub)
	}
	if *pngPath != "" {
		p, err := panel.New(128, 64, nil)
		if err != nil {
			return err
		}
		reporters = append(reporters, &pngReporter{p: p, path: *pngPath})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	run(ctx, dev, con.Missed, reporters, *interval, *count)
	return nil
}

func main() {
	defer glog.Flush()
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "sht3x: %s.\n", err)
		glog.Flush()
		os.Exit(1)
	}
}
