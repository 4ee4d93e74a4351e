// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// owscan enumerates the devices on a bit-banged 1-wire bus.
//
// Without -pin it runs against a simulated bus, which is handy to look at the
// waveform with -trace or -png.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/GermanBionicSystems/owtick/owtrace"
	"github.com/GermanBionicSystems/owtick/softwire"
	"github.com/GermanBionicSystems/owtick/softwire/softwiretest"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/onewire"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var log = logrus.New()

// line is what a scan runs on: a pin, the timer pacing it and the time base
// used to stamp the trace.
type line struct {
	pin    softwire.Pin
	timer  softwire.Stepper
	timing softwire.Timing
	now    func() uint64
}

// openGPIO returns a line on real GPIOs, paced by a SoftTimer.
func openGPIO(tx, rx string, clock physic.Frequency) (*line, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	p := gpioreg.ByName(tx)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", tx)
	}
	var pin softwire.Pin = &softwire.OpenDrain{P: p}
	if rx != "" {
		r := gpioreg.ByName(rx)
		if r == nil {
			return nil, fmt.Errorf("unknown pin %q", rx)
		}
		pin = &softwire.Split{TX: p, RX: r}
	}
	t, err := softwire.NewTiming(clock)
	if err != nil {
		return nil, err
	}
	tick := clock.Period()
	start := time.Now()
	log.WithFields(logrus.Fields{"pin": pin, "clock": clock}).Debug("opened")
	return &line{
		pin:    pin,
		timer:  softwire.NewSoftTimer(clock),
		timing: t,
		now:    func() uint64 { return uint64(time.Since(start) / tick) },
	}, nil
}

// openSim returns a line on a simulated bus with n devices. Every other
// device is in alarm state.
func openSim(n int) *line {
	timer := &softwiretest.Timer{}
	bus := softwiretest.NewBus(timer)
	families := []byte{0x28, 0x10, 0x22, 0x3b}
	for i := 0; i < n; i++ {
		d := softwiretest.NewDevice(softwiretest.NewROM(families[i%len(families)], 0x1000+uint64(i)*0x3a5))
		d.Alarm = i%2 == 1
		bus.Devices = append(bus.Devices, d)
		log.WithFields(logrus.Fields{"rom": softwire.ROM(d.ROM), "alarm": d.Alarm}).Debug("simulated device")
	}
	return &line{pin: bus, timer: timer, timing: softwire.DefaultTiming, now: timer.Now}
}

func printROM(w io.Writer, r softwire.ROM) {
	fmt.Fprintf(w, "%s  family %#02x  serial %d\n", r, r.Family(), r.Serial())
}

// imageOpts shrinks the waveform so a whole search fits a PNG.
func imageOpts(t owtrace.Trace) *owtrace.ImageOpts {
	o := owtrace.DefaultImageOpts
	if len(t) != 0 {
		if span := t.End() - t[0].At; span > 30000 {
			o.Scale = 30000 / float64(span)
			o.Grid = uint64(100 / o.Scale)
		}
	}
	return &o
}

func mainImpl() error {
	pinName := flag.String("pin", "", "GPIO driving the bus; empty to use a simulated bus")
	rxName := flag.String("rx", "", "separate GPIO sampling the bus, -pin is then used as output only")
	clock := softwire.DefaultClock
	flag.Var(&clock, "clock", "software timer clock")
	sim := flag.Int("sim", 3, "number of simulated devices")
	alarm := flag.Bool("alarm", false, "only list the devices in alarm state")
	rom := flag.Bool("rom", false, "read the id of the only device with Read ROM instead of searching")
	tx := flag.String("tx", "", "raw frame to send in hex, starting with a ROM command (e.g. cc44)")
	n := flag.Int("n", 0, "bytes to read back after -tx")
	trace := flag.Bool("trace", false, "print the waveform")
	scale := flag.Uint64("scale", owtrace.DefaultTextOpts.Scale, "ticks per character of -trace")
	pngPath := flag.String("png", "", "write the waveform to this PNG file")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()

	log.Formatter = new(logrus.TextFormatter)
	log.Level = logrus.InfoLevel
	if *verbose {
		log.Level = logrus.DebugLevel
	}
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *sim < 0 || *sim > 254 {
		return errors.New("-sim must be in 0..254")
	}
	if *n < 0 {
		return errors.New("-n must not be negative")
	}
	var w []byte
	if *tx != "" {
		var err error
		if w, err = hex.DecodeString(*tx); err != nil {
			return fmt.Errorf("-tx: %w", err)
		}
	}
	if *rom && w != nil {
		return errors.New("use only one of -rom and -tx")
	}

	var l *line
	if *pinName != "" {
		var err error
		if l, err = openGPIO(*pinName, *rxName, clock); err != nil {
			return err
		}
	} else {
		l = openSim(*sim)
	}

	rec := &owtrace.Recorder{Pin: l.pin, Now: l.now, Max: 1 << 20}
	opts := softwire.DefaultOpts
	opts.Timing = l.timing
	if *sim > opts.MaxDevices {
		opts.MaxDevices = *sim
	}
	d, err := softwire.New(rec, l.timer, &opts)
	if err != nil {
		return err
	}
	bus := softwire.NewBus(d, l.timer)
	defer bus.Halt()
	log.WithField("bus", bus).Debug("ready")

	stdout := colorable.NewColorableStdout()
	start := time.Now()
	switch {
	case w != nil:
		r := make([]byte, *n)
		if err := bus.Tx(w, r, onewire.WeakPullup); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%x\n", r)
	case *rom:
		var r softwire.ROM
		if err := bus.Tx([]byte{softwire.ReadROMCmd}, r[:], onewire.WeakPullup); err != nil {
			return err
		}
		if !r.Valid() {
			return fmt.Errorf("%w: %s", softwire.ErrROMID, r)
		}
		printROM(stdout, r)
	default:
		addrs, err := bus.Search(*alarm)
		for _, a := range addrs {
			printROM(stdout, softwire.ROMFromAddress(a))
		}
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"found": len(addrs), "alarm": *alarm}).Info("search done")
	}
	log.WithFields(logrus.Fields{"events": len(rec.Trace), "duration": time.Since(start)}).Debug("bus idle")

	if *trace {
		o := owtrace.TextOpts{Scale: *scale}
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			o.Palette = ansi256.Default
		}
		if err := rec.Trace.Text(stdout, &o); err != nil {
			return err
		}
	}
	if *pngPath != "" {
		f, err := os.Create(*pngPath)
		if err != nil {
			return err
		}
		err = rec.Trace.PNG(f, imageOpts(rec.Trace))
		if err2 := f.Close(); err == nil {
			err = err2
		}
		if err != nil {
			return err
		}
		log.WithField("file", *pngPath).Info("waveform written")
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		log.WithError(err).Error("owscan")
		os.Exit(1)
	}
}
