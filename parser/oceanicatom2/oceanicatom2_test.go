// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package oceanicatom2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

func bcd(v int) byte {
	return byte((v/10)<<4 | (v % 10))
}

// buildAtom2Data lays out a minimal Atom2 blob: a header with a fixed
// 30s interval code, one normal sample record, a 0xBB surface-interval
// record, and a one-page footer recording max depth.
func buildAtom2Data(normal []byte, surface []byte, maxDepthRaw int) []byte {
	p := New(godc.NewContext(nil, nil), Atom2, 123456, time.Now()).(*parser)
	total := p.headerSize + pageSize/2 + pageSize + p.footerSize
	d := make([]byte, total)
	d[0x17] = 2 // interval code 2 => 30s

	copy(d[p.headerSize:], normal)
	copy(d[p.headerSize+pageSize/2:], surface)

	footer := len(d) - p.footerSize
	d[footer+4] = byte(maxDepthRaw)
	d[footer+5] = byte(maxDepthRaw >> 8)
	return d
}

func TestSamplesForeachSurfaceIntervalInsertsZeroDepthSamples(t *testing.T) {
	normal := make([]byte, pageSize/2)
	normal[0] = 0x01 // arbitrary non-zero, non-special sample type byte position

	surface := make([]byte, pageSize)
	surface[0] = 0xBB
	surface[1] = bcd(1)  // minutes = 1 -> 60s
	surface[2] = bcd(30) // seconds = 30 -> total surftime = 90s

	data := buildAtom2Data(normal, surface, 0)

	p := New(godc.NewContext(nil, nil), Atom2, 123456, time.Now())
	p.SetData(data)

	var depthTimes []int
	status := p.SamplesForeach(func(s sample.Sample) bool {
		if s.Kind == sample.KindDepth && s.Depth == 0 {
			depthTimes = append(depthTimes, s.Time)
		}
		return true
	})
	require.Equal(t, godc.StatusSuccess, status)
	assert.GreaterOrEqual(t, len(depthTimes), 3)
}

func TestGetFieldGasMixCountDefault(t *testing.T) {
	p := New(godc.NewContext(nil, nil), Atom2, 1, time.Now())
	pa := p.(*parser)
	data := make([]byte, pa.headerSize+pa.footerSize+pageSize/2)
	p.SetData(data)

	var count int
	status := p.GetField(godc.FieldGasMixCount, 0, &count)
	require.Equal(t, godc.StatusSuccess, status)
	assert.Equal(t, 3, count)
}

func TestGetDateTimeOC1Branch(t *testing.T) {
	p := New(godc.NewContext(nil, nil), OC1A, 1, time.Now())
	data := make([]byte, 40)
	data[0] = bcd(15) // minute
	data[1] = bcd(9)  // hour (AM)
	data[3] = 0x15    // day/month nibble bits
	data[5] = 0x20    // year high bits
	data[7] = 0x40    // year high bits
	p.SetData(data)

	dt, status := p.GetDateTime()
	require.Equal(t, godc.StatusSuccess, status)
	assert.Equal(t, 15, dt.Minute)
	assert.Equal(t, 9, dt.Hour)
}
