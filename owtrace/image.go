// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package owtrace

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/gpio"
)

// ImageOpts represents the options available for Image.
type ImageOpts struct {
	Scale    float64 // pixels per tick
	Height   int     // image height in pixels
	FontSize float64 // label size in points
	Grid     uint64  // ticks between time labels, 0 for none

	_ struct{}
}

// DefaultImageOpts draws 1 pixel per tick with a label every 500 ticks.
var DefaultImageOpts = ImageOpts{Scale: 1, Height: 120, FontSize: 10, Grid: 500}

// maxWidth keeps images within what common viewers accept.
const maxWidth = 1 << 15

// Image draws the waveform.
//
// The line driven by the master is drawn in black, samples are dots placed
// high or low depending on the value read, and labels give the time in
// ticks.
func (t Trace) Image(opts *ImageOpts) (image.Image, error) {
	o := DefaultImageOpts
	if opts != nil {
		o = *opts
	}
	if o.Scale <= 0 {
		o.Scale = DefaultImageOpts.Scale
	}
	if o.Height <= 0 {
		o.Height = DefaultImageOpts.Height
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultImageOpts.FontSize
	}
	if len(t) == 0 {
		return nil, errors.New("owtrace: empty trace")
	}
	const margin = 20
	start := t[0].At
	span := float64(t.End() - start)
	w := int(span*o.Scale) + 2*margin
	if w > maxWidth {
		return nil, fmt.Errorf("owtrace: image would be %d pixels wide, reduce Scale", w)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(w, o.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: o.FontSize}))

	yHigh := float64(margin)
	yLow := float64(o.Height - 2*margin)
	x := func(at uint64) float64 {
		return margin + float64(at-start)*o.Scale
	}
	y := func(l gpio.Level) float64 {
		if l == gpio.High {
			return yHigh
		}
		return yLow
	}

	if o.Grid != 0 {
		dc.SetRGB(0.85, 0.85, 0.85)
		dc.SetLineWidth(1)
		for at := start; at <= t.End(); at += o.Grid {
			dc.DrawLine(x(at), yHigh-5, x(at), yLow+5)
			dc.Stroke()
			dc.SetRGB(0.4, 0.4, 0.4)
			dc.DrawStringAnchored(fmt.Sprintf("%d", at-start), x(at), float64(o.Height-margin/2), 0.5, 0)
			dc.SetRGB(0.85, 0.85, 0.85)
		}
	}

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1.5)
	level := gpio.High
	dc.MoveTo(x(start), y(level))
	for _, e := range t {
		if e.Kind != Drive || e.Level == level {
			continue
		}
		dc.LineTo(x(e.At), y(level))
		dc.LineTo(x(e.At), y(e.Level))
		level = e.Level
	}
	dc.LineTo(x(t.End()), y(level))
	dc.Stroke()

	for _, s := range t.Samples() {
		if s.Level == gpio.High {
			dc.SetRGB(0.1, 0.6, 0.1)
		} else {
			dc.SetRGB(0.8, 0.1, 0.1)
		}
		dc.DrawCircle(x(s.At), y(s.Level), 3)
		dc.Fill()
	}
	return dc.Image(), nil
}

// PNG draws the waveform and encodes it as PNG to w.
func (t Trace) PNG(w io.Writer, opts *ImageOpts) error {
	img, err := t.Image(opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}
