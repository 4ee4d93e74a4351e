// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package owtick is a container for a timer driven 1-wire bus master.
//
// The master itself lives in softwire, a simulated bus for tests in
// softwire/softwiretest, waveform capture and rendering in owtrace, and a
// command line scanner in cmd/owscan.
package owtick
