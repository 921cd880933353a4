// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uwatecmemomouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

// TestClockSkewHalvesDelta reproduces the Memomouse-specific halved
// clock-skew correction: ticks = sysTime - (devTime-timestamp)/2.
func TestClockSkewHalvesDelta(t *testing.T) {
	data := make([]byte, 18)
	devTime := uint32(1000)
	timestamp := uint32(900)
	sysTime := int64(2_000_000_000)
	data[11] = byte(timestamp)
	data[12] = byte(timestamp >> 8)
	data[13] = byte(timestamp >> 16)
	data[14] = byte(timestamp >> 24)

	p := New(godc.NewContext(nil, nil), devTime, sysTime)
	p.SetData(data)

	dt, status := p.GetDateTime()
	require.Equal(t, godc.StatusSuccess, status)

	wantTicks := sysTime - int64(devTime-timestamp)/2
	wantYear, wantMonth, wantDay, wantHour, wantMinute, wantSecond := bin.LocalTime(wantTicks)
	assert.Equal(t, wantYear, dt.Year)
	assert.Equal(t, wantMonth, dt.Month)
	assert.Equal(t, wantDay, dt.Day)
	assert.Equal(t, wantHour, dt.Hour)
	assert.Equal(t, wantMinute, dt.Minute)
	assert.Equal(t, wantSecond, dt.Second)
}

// TestSamplesForeachDecodesWarningBits verifies that warning bits in a
// single sample's low 6 bits decode to events and that the first sample
// is stamped at 20 seconds.
func TestSamplesForeachDecodesWarningBits(t *testing.T) {
	// The 22-byte air-model header plus 18 leading bytes precede the
	// first sample.
	data := make([]byte, 22+18)
	data[3] = 0x00 // air, non-nitrox, non-oxygen model

	depth := uint16(64) // depth field 64 -> 10m after scaling
	warnings := uint16(0x01 | 0x04)
	v := (depth << 6) | warnings
	data = append(data, byte(v>>8), byte(v))

	p := New(godc.NewContext(nil, nil), 0, 0)
	p.SetData(data)

	var kinds []sample.Kind
	var events []sample.EventType
	var times []int
	status := p.SamplesForeach(func(s sample.Sample) bool {
		kinds = append(kinds, s.Kind)
		times = append(times, s.Time)
		if s.Kind == sample.KindEvent {
			events = append(events, s.Event.Type)
		}
		return true
	})

	require.Equal(t, godc.StatusSuccess, status)
	require.Contains(t, kinds, sample.KindDepth)
	require.Contains(t, kinds, sample.KindTime)
	assert.Contains(t, events, sample.EventDecoStop)
	assert.Contains(t, events, sample.EventAscent)
	for _, tm := range times {
		assert.Equal(t, 20, tm)
	}
}
