// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shearwaterpredator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
)

// A footer with imperial units and a max-depth field of 100 must
// report 100 * 0.3048 meters.
func TestPetrelImperialDepth(t *testing.T) {
	data := make([]byte, 3*blockSize)
	data[8] = unitsImperial
	footer := len(data) - 2*blockSize // petrel always uses the three-block footer
	data[footer+4] = 0
	data[footer+5] = 100

	p := New(godc.NewContext(nil, nil), 0x12345678, true)
	p.SetData(data)

	var maxdepth float64
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldMaxDepth, 0, &maxdepth))
	assert.InDelta(t, 100*0.3048, maxdepth, 1e-9)
}

func TestPredatorTwoBlockFooterWithoutSentinel(t *testing.T) {
	data := make([]byte, 2*blockSize)
	data[8] = unitsMetric
	footer := len(data) - blockSize
	data[footer+4] = 0
	data[footer+5] = 20 // maxdepth = 20 metric

	p := New(godc.NewContext(nil, nil), 1, false)
	p.SetData(data)

	var maxdepth float64
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldMaxDepth, 0, &maxdepth))
	assert.Equal(t, 20.0, maxdepth)
}
