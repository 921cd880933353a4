// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHour12to24(t *testing.T) {
	assert.Equal(t, 0, Hour12to24(12, false))
	assert.Equal(t, 12, Hour12to24(12, true))
	assert.Equal(t, 9, Hour12to24(9, false))
	assert.Equal(t, 21, Hour12to24(9, true))
}

func TestRecoverDecade(t *testing.T) {
	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	// A digit at or below the current year's digit stays in this decade.
	assert.Equal(t, 2024, RecoverDecade(4, now))
	assert.Equal(t, 2020, RecoverDecade(0, now))
	// A digit beyond it steps back exactly one decade, never more.
	assert.Equal(t, 2015, RecoverDecade(5, now))
	assert.Equal(t, 2019, RecoverDecade(9, now))
}

func TestUTCTime(t *testing.T) {
	year, month, day, hour, minute, second := UTCTime(0)
	assert.Equal(t, [6]int{1970, 1, 1, 0, 0, 0}, [6]int{year, month, day, hour, minute, second})
}

// TestClockSkewMonotone pins the invariant that the clock-skew
// conversion systime-(devtime-t) is monotone in the dive timestamp t.
func TestClockSkewMonotone(t *testing.T) {
	devTime := int64(50000)
	sysTime := int64(1700000000)
	prev := int64(-1 << 62)
	for _, ts := range []int64{0, 1, 100, 49999, 50000} {
		abs := sysTime - (devTime - ts)
		assert.GreaterOrEqual(t, abs, prev)
		prev = abs
	}
}
