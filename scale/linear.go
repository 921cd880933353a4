// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scale

import "math"

// Linear maps an input domain (elapsed seconds, meters of depth,
// degrees of temperature) linearly onto [0, 1].
type Linear struct {
	min, width float64
}

// NewLinear returns a new linear scale spanning the range of input.
func NewLinear(input []float64) Linear {
	min, max := minmax(input)
	return Linear{min, max - min}
}

func (s Linear) Of(x float64) float64 {
	return (x - s.min) / s.width
}

// Ticks returns about n major tick positions at "nice" values (1, 2,
// or 5 times a power of ten apart), plus minor ticks at the midpoints
// between them. Ticks outside the scale's domain are omitted. The step
// is width/(n-1) rounded to the nearest nice value, so when it rounds
// down more than n major ticks are returned.
func (s Linear) Ticks(n int) (major, minor []float64) {
	if n < 2 {
		panic("n must be >= 2")
	}
	if s.width <= 0 {
		return []float64{s.min}, nil
	}

	step := niceStep(s.width / float64(n-1))
	max := s.min + s.width
	for x := math.Ceil(s.min/step) * step; x <= max+step/1e6; x += step {
		major = append(major, x)
		if mid := x + step/2; mid <= max {
			minor = append(minor, mid)
		}
	}
	return
}

// niceStep rounds a raw tick interval to a nearby 1, 2, 5 or 10 times
// a power of ten, switching at 1.5, 3 and 7; it can round down (1.2
// becomes 1).
func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm < 1.5:
		return mag
	case norm < 3:
		return 2 * mag
	case norm < 7:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func minmax(xs []float64) (min float64, max float64) {
	min, max = xs[0], xs[0]
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return
}
