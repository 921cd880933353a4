// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package godc

// DiveCallback receives one downloaded dive's raw blob and its fingerprint
// slice (carved from the blob at a family-specific offset). Returning false
// stops enumeration early and is reported as StatusSuccess, not an error.
type DiveCallback func(data []byte, fingerprint []byte) bool

// Device is the uniform per-vendor download abstraction. Lifecycle is
// Open, then any sequence of SetFingerprint/Foreach, then exactly one
// Close; a second Close is undefined behavior.
type Device interface {
	// Open establishes the underlying transport session.
	Open() Status

	// Close releases the transport. Must be called exactly once.
	Close() Status

	// SetFingerprint installs the stop-enumeration marker: Foreach stops
	// as soon as a dive's own fingerprint slice equals fp.
	SetFingerprint(fp []byte) Status

	// Foreach enumerates dives newest-first, invoking cb for each one,
	// and emits Event notifications on Events() in the process.
	Foreach(cb DiveCallback) Status

	// Events returns the bus this device emits WAITING/PROGRESS/DEVINFO
	// /CLOCK/VENDOR notifications on.
	Events() *EventBus
}
