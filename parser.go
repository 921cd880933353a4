// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package godc

import "github.com/divecomputer/godc/sample"

// FieldKind selects a typed header field from GetField. Index
// selects among multi-valued fields (gas mixes, tanks, strings); it is
// ignored for single-valued fields.
type FieldKind int

const (
	FieldDiveTime FieldKind = iota
	FieldMaxDepth
	FieldAvgDepth
	FieldTemperatureMinimum
	FieldTemperatureMaximum
	FieldTemperatureSurface
	FieldGasMixCount
	FieldGasMix
	FieldTankCount
	FieldTank
	FieldDiveMode
	FieldSalinity
	FieldAtmospheric
	FieldString
)

// Visitor observes one sample per call during SamplesForeach. Returning
// false stops emission early.
type Visitor func(sample.Sample) bool

// Parser turns one dive blob into structured header fields and a sample
// stream. Concrete implementations are unexported types returned only by
// the New* factories in package parser and its family subpackages; the
// set of families is closed, so there is no base struct or vtable to
// extend.
type Parser interface {
	// SetData installs a new borrowed byte slice and invalidates the
	// field cache. Never fails.
	SetData(data []byte)

	// GetDateTime decodes the record's embedded timestamp.
	GetDateTime() (sample.DateTime, Status)

	// GetField decodes a typed header field into value, which must be a
	// pointer of the type documented for kind. Returns StatusUnsupported
	// when the family records no such field.
	GetField(kind FieldKind, index int, value interface{}) Status

	// SamplesForeach emits the sample stream in non-decreasing TIME
	// order. A nil visitor walks the stream without emitting samples;
	// some families fill their field cache during that walk.
	SamplesForeach(visitor Visitor) Status
}
