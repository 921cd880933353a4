// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package oceanicvtpro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

func bcd(v int) byte {
	return byte((v/10)<<4 | (v % 10))
}

// buildData lays out a minimal VT Pro blob: empty pages up to offset
// 5*pageSize/2, one non-empty half-page sample at a fixed 60s interval
// (interval code 3), and a one-page footer.
func buildData(samples [][]byte, intervalCode byte) []byte {
	offset := 5 * pageSize / 2
	d := make([]byte, offset+len(samples)*halfPage+pageSize)
	d[0x27] = intervalCode << 4
	for i, s := range samples {
		copy(d[offset+i*halfPage:], s)
	}
	return d
}

func TestSamplesForeachFixedInterval(t *testing.T) {
	sampleRecord := make([]byte, halfPage)
	sampleRecord[0] = bcd(1) // minute = 1
	sampleRecord[1] = bcd(0) // hour-ish nibble = 0
	sampleRecord[3] = 33     // depth raw
	sampleRecord[6] = 50     // temperature raw (°F)

	data := buildData([][]byte{sampleRecord}, 3) // interval code 3 => 60s

	p := New(godc.NewContext(nil, nil))
	p.SetData(data)

	var kinds []sample.Kind
	status := p.SamplesForeach(func(s sample.Sample) bool {
		kinds = append(kinds, s.Kind)
		return true
	})
	require.Equal(t, godc.StatusSuccess, status)
	assert.Contains(t, kinds, sample.KindTime)
	assert.Contains(t, kinds, sample.KindDepth)
	assert.Contains(t, kinds, sample.KindTemperature)
	assert.Contains(t, kinds, sample.KindVendor)
}

func TestSetDataResetsCache(t *testing.T) {
	sampleRecord := make([]byte, halfPage)
	sampleRecord[0] = bcd(1)

	p := New(godc.NewContext(nil, nil))
	p.SetData(buildData([][]byte{sampleRecord}, 3))
	var dt int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &dt))
	assert.Equal(t, 60, dt)

	p.SetData(make([]byte, 7*pageSize/2))
	status := p.GetField(godc.FieldDiveTime, 0, &dt)
	require.Equal(t, godc.StatusSuccess, status)
	assert.Equal(t, 0, dt)
}
