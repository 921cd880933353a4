// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cressileonardo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

func header() []byte {
	h := make([]byte, headerSize)
	h[0x06], h[0x07] = 0x3C, 0x00 // divetime raw = 60 -> *20 = 1200s
	h[0x19] = 0x28                // O2 = 40%
	h[0x20], h[0x21] = 0x64, 0x00 // maxdepth raw = 100 -> 10.0m
	h[0x22] = 0x14                // min temperature = 20C
	h[8], h[9], h[10], h[11], h[12] = 0x18, 0x03, 0x0F, 0x0A, 0x1E
	return h
}

func TestHeaderFields(t *testing.T) {
	p := New(godc.NewContext(nil, nil))
	p.SetData(header())

	dt, st := p.GetDateTime()
	require.Equal(t, godc.StatusSuccess, st)
	assert.Equal(t, sample.DateTime{Year: 2024, Month: 3, Day: 15, Hour: 10, Minute: 30}, dt)

	var divetime int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &divetime))
	assert.Equal(t, 1200, divetime)

	var maxdepth float64
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldMaxDepth, 0, &maxdepth))
	assert.Equal(t, 10.0, maxdepth)

	var gm sample.GasMix
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldGasMix, 0, &gm))
	assert.Equal(t, sample.GasMix{Oxygen: 0.40, Helium: 0, Nitrogen: 0.60}, gm)

	var tmin float64
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldTemperatureMinimum, 0, &tmin))
	assert.Equal(t, 20.0, tmin)
}

func TestSamplesForeachMonotonic(t *testing.T) {
	data := header()
	data = append(data, 0x10, 0x00) // depth=0x10=16 -> 1.6m, no ascent
	data = append(data, 0x20, 0x40) // ascent bits set, depth=0x20

	p := New(godc.NewContext(nil, nil))
	p.SetData(data)

	var times []int
	require.Equal(t, godc.StatusSuccess, p.SamplesForeach(func(s sample.Sample) bool {
		if s.Kind == sample.KindTime {
			times = append(times, s.Time)
		}
		return true
	}))
	assert.Equal(t, []int{20, 40}, times)
}

func TestSetDataIdempotent(t *testing.T) {
	p := New(godc.NewContext(nil, nil))
	h := header()
	p.SetData(h)
	p.SetData(h)

	var a, b int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &a))
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &b))
	assert.Equal(t, a, b)
}

func TestUndersizedDataFormat(t *testing.T) {
	p := New(godc.NewContext(nil, nil))
	p.SetData(make([]byte, 10))
	_, st := p.GetDateTime()
	assert.Equal(t, godc.StatusDataFormat, st)
}
