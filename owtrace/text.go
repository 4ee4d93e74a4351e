// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package owtrace

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"periph.io/x/conn/v3/gpio"
)

// TextOpts represents the options available for Text.
type TextOpts struct {
	Scale uint64 // ticks per column
	Width int    // columns per row
	// Palette, when set, draws the waveform with colored blocks instead of
	// ASCII. Use it only on terminals supporting ANSI 256 colors.
	Palette *ansi256.Palette

	_ struct{}
}

// DefaultTextOpts is 10 ticks per column, 100 columns per row, plain ASCII.
var DefaultTextOpts = TextOpts{Scale: 10, Width: 100}

var (
	highColor = color.NRGBA{0x30, 0xc0, 0x30, 0xff}
	lowColor  = color.NRGBA{0x10, 0x20, 0x10, 0xff}
)

// Text writes the waveform to w.
//
// Each row starts with the time of its first column. The first line of a row
// is the level driven by the master: a column is low if the master drove the
// line low at any point during it. The second line shows the value read by
// every sample.
func (t Trace) Text(w io.Writer, opts *TextOpts) error {
	o := DefaultTextOpts
	if opts != nil {
		o = *opts
	}
	if o.Scale == 0 {
		o.Scale = DefaultTextOpts.Scale
	}
	if o.Width <= 0 {
		o.Width = DefaultTextOpts.Width
	}
	if len(t) == 0 {
		return nil
	}
	low, samples := t.columns(o.Scale)
	start := t[0].At

	// This code is designed to write the whole trace in one call.
	var buf bytes.Buffer
	for row := 0; row < len(low); row += o.Width {
		end := row + o.Width
		if end > len(low) {
			end = len(low)
		}
		fmt.Fprintf(&buf, "%10d ", start+uint64(row)*o.Scale)
		for _, l := range low[row:end] {
			switch {
			case o.Palette != nil && l:
				_, _ = io.WriteString(&buf, o.Palette.Block(lowColor))
			case o.Palette != nil:
				_, _ = io.WriteString(&buf, o.Palette.Block(highColor))
			case l:
				_ = buf.WriteByte('_')
			default:
				_ = buf.WriteByte('-')
			}
		}
		if o.Palette != nil {
			_, _ = buf.WriteString("\033[0m")
		}
		_, _ = buf.WriteString("\n           ")
		for _, s := range samples[row:end] {
			if s == 0 {
				s = ' '
			}
			_ = buf.WriteByte(s)
		}
		_ = buf.WriteByte('\n')
	}
	_, err := buf.WriteTo(w)
	return err
}

// columns returns, for each column of scale ticks, whether the master drove
// the line low and the last sampled value ('0', '1' or 0 for none).
func (t Trace) columns(scale uint64) ([]bool, []byte) {
	start := t[0].At
	col := func(at uint64) int {
		return int((at - start) / scale)
	}
	n := col(t.End()) + 1
	low := make([]bool, n)
	samples := make([]byte, n)
	mark := func(from, to uint64) {
		if to <= from {
			low[col(from)] = true
			return
		}
		for c := col(from); c <= col(to-1); c++ {
			low[c] = true
		}
	}
	level := gpio.High
	var since uint64
	for _, e := range t {
		switch e.Kind {
		case Drive:
			if e.Level == level {
				continue
			}
			if e.Level == gpio.Low {
				since = e.At
			} else {
				mark(since, e.At)
			}
			level = e.Level
		case Sample:
			if e.Level == gpio.High {
				samples[col(e.At)] = '1'
			} else {
				samples[col(e.At)] = '0'
			}
		}
	}
	if level == gpio.Low {
		mark(since, t.End())
	}
	return low, samples
}
