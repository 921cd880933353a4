// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package divesystemidive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

func sampleRecord(timestamp uint32, depth10 uint16) []byte {
	r := make([]byte, sampleSize)
	r[2] = byte(timestamp)
	r[3] = byte(timestamp >> 8)
	r[4] = byte(timestamp >> 16)
	r[5] = byte(timestamp >> 24)
	r[6] = byte(depth10)
	r[7] = byte(depth10 >> 8)
	r[23], r[24] = 0xFF, 0xFF // tts = 0xFFFF -> no deco sample
	return r
}

func TestBackwardsTimestampIsDataFormat(t *testing.T) {
	data := make([]byte, headerSize)
	data = append(data, sampleRecord(10, 50)...)
	data = append(data, sampleRecord(9, 50)...)

	p := New(godc.NewContext(nil, nil))
	p.SetData(data)

	st := p.SamplesForeach(func(sample.Sample) bool { return true })
	assert.Equal(t, godc.StatusDataFormat, st)
}

func TestDiveTimeMatchesFinalSample(t *testing.T) {
	data := make([]byte, headerSize)
	data = append(data, sampleRecord(10, 50)...)
	data = append(data, sampleRecord(20, 80)...)

	p := New(godc.NewContext(nil, nil))
	p.SetData(data)

	var divetime int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &divetime))
	assert.Equal(t, 20, divetime)

	var maxdepth float64
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldMaxDepth, 0, &maxdepth))
	assert.Equal(t, 8.0, maxdepth)
}
