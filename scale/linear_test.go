// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearOf(t *testing.T) {
	s := NewLinear([]float64{0, 40})
	assert.Equal(t, 0.0, s.Of(0))
	assert.Equal(t, 0.5, s.Of(20))
	assert.Equal(t, 1.0, s.Of(40))
}

func TestTicksAreNiceAndInRange(t *testing.T) {
	s := NewLinear([]float64{0, 37.5})
	major, minor := s.Ticks(6)
	require.NotEmpty(t, major)
	assert.LessOrEqual(t, len(major), 6)
	for _, x := range major {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 37.5)
	}
	for _, x := range minor {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 37.5)
	}
	// 37.5/5 rounds up to a step of 10.
	assert.Equal(t, []float64{0, 10, 20, 30}, major)
}

func TestTicksDegenerateDomain(t *testing.T) {
	s := NewLinear([]float64{5, 5})
	major, minor := s.Ticks(6)
	assert.Equal(t, []float64{5}, major)
	assert.Empty(t, minor)
}

func TestNiceStep(t *testing.T) {
	assert.Equal(t, 1.0, niceStep(1.2))
	assert.Equal(t, 2.0, niceStep(1.8))
	assert.Equal(t, 5.0, niceStep(4.0))
	assert.Equal(t, 10.0, niceStep(8.0))
	assert.Equal(t, 0.5, niceStep(0.4))
}
