// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scale

// OutputScale maps the unit interval onto a pixel range, optionally
// cropping or clamping values that fall outside it. Inverted ranges
// (min > max) are allowed; a depth axis uses one so that deeper values
// render lower on the image.
type OutputScale struct {
	min, max float64
	clamp    int
}

const (
	clampCrop = iota
	clampNone
	clampClamp
)

// NewOutputScale returns an OutputScale spanning [min, max] that crops
// out-of-range inputs.
func NewOutputScale(min, max float64) OutputScale {
	return OutputScale{min, max, clampCrop}
}

// Crop makes out-of-range inputs report !ok.
func (s *OutputScale) Crop() {
	s.clamp = clampCrop
}

// Unclamp lets out-of-range inputs extrapolate past the output range.
func (s *OutputScale) Unclamp() {
	s.clamp = clampNone
}

// Clamp pins out-of-range inputs to the nearer end of the output range.
func (s *OutputScale) Clamp() {
	s.clamp = clampClamp
}

// Of maps x in [0, 1] onto the output range. ok is false only in crop
// mode, for inputs outside the unit interval.
func (s OutputScale) Of(x float64) (float64, bool) {
	if s.clamp == clampCrop {
		if x < 0 || x > 1 {
			return 0, false
		}
	} else if s.clamp == clampClamp {
		if x < 0 {
			x = 0
		} else if x > 1 {
			x = 1
		}
	}
	return x*(s.max-s.min) + s.min, true
}
