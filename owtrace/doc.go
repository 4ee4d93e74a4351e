// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package owtrace records what a 1-wire master does with its pin and renders
// it as a logic analyzer style waveform, either on a terminal using ANSI
// colors or as a PNG image.
//
// Useful to check slot timing against the simulator before hooking up a real
// bus.
package owtrace
