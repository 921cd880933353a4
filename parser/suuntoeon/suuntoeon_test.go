// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package suuntoeon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

// A blob with no 0x80 sentinel before end-of-data must fail GetField
// with DataFormat.
func TestMissingEndMarker(t *testing.T) {
	data := make([]byte, 20)
	data[3] = 10 // interval
	for i := 11; i < len(data); i++ {
		data[i] = 1 // plain delta-depth bytes, never 0x80
	}

	p := New(godc.NewContext(nil, nil), true)
	p.SetData(data)

	var divetime int
	st := p.GetField(godc.FieldDiveTime, 0, &divetime)
	assert.Equal(t, godc.StatusDataFormat, st)
}

func TestEonSpyderSamplesMonotonic(t *testing.T) {
	data := make([]byte, 16)
	data[3] = 10
	data[11] = 5 // depth delta +5
	data[12] = 0x80
	data[13] = 0
	data[14] = 0

	p := New(godc.NewContext(nil, nil), true)
	p.SetData(data)

	var times []int
	st := p.SamplesForeach(func(s sample.Sample) bool {
		if s.Kind == sample.KindTime {
			times = append(times, s.Time)
		}
		return true
	})
	assert.Equal(t, godc.StatusSuccess, st)
	assert.Greater(t, len(times), 0)
	assert.IsNonDecreasing(t, times)
}
