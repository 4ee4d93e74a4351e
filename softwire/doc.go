// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package softwire implements a 1-wire bus master that bit-bangs a GPIO from
// a periodic timer interrupt.
//
// Every timer expiry calls Dev.Tick, which performs exactly one phase of the
// transaction (drive low, release, or sample) and reprograms the timer for the
// next phase. Requests such as Write, Read or Discover return immediately;
// the host is never stalled for the duration of a slot.
//
// Bus wraps a Dev into a blocking periph.io/x/conn/v3/onewire.Bus, so the
// regular periph 1-wire tooling (onewire.Dev, onewiretest.Record) can drive
// it.
//
// Datasheet
//
// https://www.analog.com/en/resources/technical-articles/1wire-communication-through-software.html
//
// https://www.analog.com/en/resources/app-notes/1wire-search-algorithm.html
package softwire
