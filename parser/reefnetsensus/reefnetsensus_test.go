// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reefnetsensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func le32(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }

func TestProDiveTimeAndMaxDepth(t *testing.T) {
	header := make([]byte, 10)
	copy(header[4:6], le16(10)) // interval = 10s

	samples := append(append([]byte{}, le16(100)...), le16(50)...) // two samples, depths 100 & 50 (low 9 bits)
	footer := []byte{0xFF, 0xFF}

	data := append(append(header, samples...), footer...)

	p := New(godc.NewContext(nil, nil), Pro, 0, 0)
	p.SetData(data)

	var divetime int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &divetime))
	assert.Equal(t, 20, divetime) // 2 samples * 10s interval

	var maxdepth float64
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldMaxDepth, 0, &maxdepth))
	assert.Greater(t, maxdepth, 0.0)

	var mode sample.DiveMode
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveMode, 0, &mode))
	assert.Equal(t, sample.DiveModeGauge, mode)
}

func TestUltraThresholdExcludesShallowSamples(t *testing.T) {
	header := make([]byte, 16)
	copy(header[8:10], le16(5))   // interval
	copy(header[10:12], le16(50)) // threshold

	below := append(le16(0), le16(10)...) // depth 10 < threshold, excluded from divetime
	above := append(le16(0), le16(60)...) // depth 60 >= threshold
	footer := []byte{0xFF, 0xFF, 0xFF, 0xFF}

	data := append(append(append(header, below...), above...), footer...)

	p := New(godc.NewContext(nil, nil), Ultra, 0, 0)
	p.SetData(data)

	var divetime int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldDiveTime, 0, &divetime))
	assert.Equal(t, 5, divetime) // only the one sample above threshold counts

	_ = le32 // silence unused in case GetDateTime assertions are added later
}

func TestSamplesForeachProEmitsTimeDepthTemperature(t *testing.T) {
	header := make([]byte, 10)
	copy(header[4:6], le16(20))
	record := le16(100)
	footer := []byte{0xFF, 0xFF}
	data := append(append(header, record...), footer...)

	p := New(godc.NewContext(nil, nil), Pro, 0, 0)
	p.SetData(data)

	var kinds []sample.Kind
	status := p.SamplesForeach(func(s sample.Sample) bool {
		kinds = append(kinds, s.Kind)
		return true
	})
	require.Equal(t, godc.StatusSuccess, status)
	assert.Contains(t, kinds, sample.KindTime)
	assert.Contains(t, kinds, sample.KindTemperature)
	assert.Contains(t, kinds, sample.KindDepth)
}
