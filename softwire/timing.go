// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package softwire

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Timing contains the duration of every bus phase, in timer ticks.
//
// A write-0 slot holds the line low for Write0Low and then releases it for
// Write1Low. A write-1 slot is the mirror image, so both slots have the same
// length.
type Timing struct {
	ResetLow      uint32 // reset pulse
	PresenceWait  uint32 // reset release to presence sample
	ResetRecovery uint32 // presence sample to first slot
	Write0Low     uint32 // low time of a 0 bit
	Write1Low     uint32 // low time of a 1 bit
	ReadLow       uint32 // low time opening a read slot
	ReadSample    uint32 // release to sample in a read slot
	ReadRecovery  uint32 // sample to end of read slot
}

// DefaultTiming is the standard speed timing for a timer ticking at 1MHz.
var DefaultTiming = Timing{
	ResetLow:      500,
	PresenceWait:  100,
	ResetRecovery: 400,
	Write0Low:     70,
	Write1Low:     10,
	ReadLow:       10,
	ReadSample:    10,
	ReadRecovery:  60,
}

// DefaultClock is the timer clock DefaultTiming is expressed in.
const DefaultClock = physic.MegaHertz

// NewTiming returns DefaultTiming converted to ticks of a timer running at
// clock.
func NewTiming(clock physic.Frequency) (Timing, error) {
	if clock <= 0 {
		return Timing{}, errors.New("softwire: invalid timer clock")
	}
	tick := clock.Period()
	if tick <= 0 || tick > time.Microsecond {
		return Timing{}, fmt.Errorf("softwire: timer clock %s is below %s", clock, DefaultClock)
	}
	d := DefaultTiming
	out := Timing{}
	for _, f := range []struct {
		src uint32
		dst *uint32
	}{
		{d.ResetLow, &out.ResetLow},
		{d.PresenceWait, &out.PresenceWait},
		{d.ResetRecovery, &out.ResetRecovery},
		{d.Write0Low, &out.Write0Low},
		{d.Write1Low, &out.Write1Low},
		{d.ReadLow, &out.ReadLow},
		{d.ReadSample, &out.ReadSample},
		{d.ReadRecovery, &out.ReadRecovery},
	} {
		// Frequency is in µHz; ticks = µs * Hz / 1e6.
		ticks := uint64(f.src) * uint64(clock/physic.Hertz) / 1000000
		if ticks == 0 || ticks > 0xffffffff {
			return Timing{}, fmt.Errorf("softwire: %dµs does not fit a %s timer", f.src, clock)
		}
		*f.dst = uint32(ticks)
	}
	return out, nil
}

func (t *Timing) validate() error {
	for _, v := range []uint32{t.ResetLow, t.PresenceWait, t.ResetRecovery, t.Write0Low, t.Write1Low, t.ReadLow, t.ReadSample, t.ReadRecovery} {
		if v == 0 {
			return errors.New("softwire: timing values must be non-zero")
		}
	}
	if t.Write1Low >= t.Write0Low {
		return errors.New("softwire: Write1Low must be shorter than Write0Low")
	}
	return nil
}
