// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package suuntocommon2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

func testLayout() Layout {
	return Layout{HeaderSize: 10, DateOffset: 0, IntervalOffset: 6, GasMixOffset: 7, TempOffset: 8}
}

type fakeDevice struct {
	mixes []sample.GasMix
}

func (f fakeDevice) GasMix(index int) (sample.GasMix, bool) {
	if index < 0 || index >= len(f.mixes) {
		return sample.GasMix{}, false
	}
	return f.mixes[index], true
}

func header(l Layout) []byte {
	b := make([]byte, l.HeaderSize)
	b[l.DateOffset+0] = 0x24 // year digit 4 -> BCD 24
	b[l.DateOffset+1] = 0x03
	b[l.DateOffset+2] = 0x15
	b[l.DateOffset+3] = 0x10
	b[l.DateOffset+4] = 0x30
	b[l.DateOffset+5] = 0x00
	b[l.IntervalOffset] = 10
	b[l.GasMixOffset] = 0
	b[l.TempOffset] = 18
	return b
}

func TestGetDateTime(t *testing.T) {
	l := testLayout()
	p := New(godc.NewContext(nil, nil), l, nil)
	p.SetData(header(l))

	dt, st := p.GetDateTime()
	require.Equal(t, godc.StatusSuccess, st)
	assert.Equal(t, 3, dt.Month)
	assert.Equal(t, 15, dt.Day)
	assert.Equal(t, 10, dt.Hour)
}

func TestSamplesAndFieldCache(t *testing.T) {
	l := testLayout()
	dev := fakeDevice{mixes: []sample.GasMix{{Oxygen: 0.21, Nitrogen: 0.79}, {Oxygen: 0.32, Nitrogen: 0.68}}}
	data := header(l)
	// +20 (2.0m), gas change to mix 1, +10 (1.0m), sentinel.
	data = append(data, 20, eventGasMix, 1, 10, sentinel)

	p := New(godc.NewContext(nil, nil), l, dev)
	p.SetData(data)

	var depths []float64
	var mixes []int
	err := p.SamplesForeach(func(s sample.Sample) bool {
		if s.Kind == sample.KindDepth {
			depths = append(depths, s.Depth)
		}
		if s.Kind == sample.KindGasChange {
			mixes = append(mixes, s.GasChange.Mix)
		}
		return true
	})
	require.Equal(t, godc.StatusSuccess, err)
	assert.Equal(t, []float64{0, 2.0, 3.0}, depths)
	assert.Equal(t, []int{0, 1}, mixes)

	var divetime int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &divetime))
	assert.Equal(t, 20, divetime)

	var maxdepth float64
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldMaxDepth, 0, &maxdepth))
	assert.Equal(t, 3.0, maxdepth)
}

func TestMissingSentinelIsDataFormat(t *testing.T) {
	l := testLayout()
	data := header(l)
	data = append(data, 20, 10) // no sentinel

	p := New(godc.NewContext(nil, nil), l, nil)
	p.SetData(data)

	st := p.SamplesForeach(func(sample.Sample) bool { return true })
	assert.Equal(t, godc.StatusDataFormat, st)
}

func TestSetDataIdempotent(t *testing.T) {
	l := testLayout()
	data := header(l)
	data = append(data, sentinel)
	p := New(godc.NewContext(nil, nil), l, nil)
	p.SetData(data)
	p.SetData(data)

	var divetime int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &divetime))
	assert.Equal(t, 0, divetime)
}
