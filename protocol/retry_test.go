// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
)

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	attempts := 0
	v, err := Do(5, 0, IsTransientStatus, func(attempt int) (int, error) {
		attempts++
		if attempt < 2 {
			return 0, godc.StatusTimeout
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsRetryBudget(t *testing.T) {
	attempts := 0
	_, err := Do(3, 0, IsTransientStatus, func(int) (struct{}, error) {
		attempts++
		return struct{}{}, godc.StatusProtocol
	})
	assert.Equal(t, godc.StatusProtocol, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonTransient(t *testing.T) {
	attempts := 0
	_, err := Do(9, 0, IsTransientStatus, func(int) (struct{}, error) {
		attempts++
		return struct{}{}, godc.StatusDataFormat
	})
	assert.Equal(t, godc.StatusDataFormat, err)
	assert.Equal(t, 1, attempts)
}

func TestIsTransientStatus(t *testing.T) {
	assert.True(t, IsTransientStatus(godc.StatusTimeout))
	assert.True(t, IsTransientStatus(godc.StatusProtocol))
	assert.False(t, IsTransientStatus(godc.StatusIO))
	assert.False(t, IsTransientStatus(nil))
}
