// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diveparser wires command-line flags to the parser registry's
// New* factories so cmd/divedump, cmd/diveplot, and cmd/divestat share
// one flag surface instead of each hand-rolling its own family switch.
// It is the one place parser.Options is populated from user input.
package diveparser

import (
	"flag"
	"fmt"
	"time"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/parser"
	"github.com/divecomputer/godc/parser/suuntocommon2"
)

// Flags holds the flag.Value pointers registered by Register. Build
// resolves them into a concrete godc.Parser once flag.Parse has run.
type Flags struct {
	family  *string
	model   *int
	serial  *int
	devTime *int64
	sysTime *int64
	spyder  *bool
	petrel  *bool
	variant *string
}

// Register adds the family-selection flags to fs and returns a handle
// used to build the resulting parser after fs.Parse.
func Register(fs *flag.FlagSet) *Flags {
	return &Flags{
		family:  fs.String("family", "", "dive computer family: one of cressileonardo, divesystemidive, suuntoeon, suuntoeonsteel, shearwaterpredator, uwatecmemomouse, reefnetsensus, oceanicvtpro, oceanicatom2, uwatecsmart, suuntocommon2"),
		model:   fs.Int("model", 0, "model code, for families with a model table (oceanicatom2, uwatecsmart)"),
		serial:  fs.Int("serial", 0, "device serial number, for families that need it (shearwaterpredator, oceanicatom2)"),
		devTime: fs.Int64("devtime", 0, "device clock value sampled at download time, for clock-skew families"),
		sysTime: fs.Int64("systime", 0, "host clock (unix seconds) sampled at download time, defaults to now"),
		spyder:  fs.Bool("spyder", false, "select the Suunto Eon Spyder layout variant"),
		petrel:  fs.Bool("petrel", false, "select the Shearwater Petrel sample layout"),
		variant: fs.String("variant", "pro", "Reefnet Sensus variant: pro or ultra"),
	}
}

// options resolves the registered flags into a parser.Options, falling
// back to parser.DefaultOptions' calibration constants and wall clock
// where no flag overrides them.
func (f *Flags) options() parser.Options {
	opts := parser.DefaultOptions()
	opts.DevTime = uint32(*f.devTime)
	opts.Model = *f.model
	opts.Serial = uint32(*f.serial)
	opts.SysTime = opts.Now
	if *f.sysTime != 0 {
		opts.SysTime = time.Unix(*f.sysTime, 0)
		opts.Now = opts.SysTime
	}
	return opts
}

// Build constructs the godc.Parser named by -family from the resolved
// parser.Options, injecting ctx into the factory. For suuntocommon2 it
// uses a generic single-gas layout since the family's real per-model
// memory layout isn't flag-expressible; pass a custom
// suuntocommon2.Layout programmatically for anything else.
func (f *Flags) Build(ctx godc.Context) (godc.Parser, error) {
	opts := f.options()

	switch *f.family {
	case "cressileonardo":
		return parser.NewCressiLeonardo(ctx), nil
	case "divesystemidive":
		return parser.NewDiveSystemIDive(ctx), nil
	case "suuntoeon":
		return parser.NewSuuntoEon(ctx, *f.spyder), nil
	case "suuntoeonsteel":
		return parser.NewSuuntoEonSteel(ctx, opts.Model), nil
	case "shearwaterpredator":
		return parser.NewShearwaterPredator(ctx, opts.Serial, *f.petrel), nil
	case "uwatecmemomouse":
		return parser.NewUwatecMemomouse(ctx, opts.DevTime, opts.SysTime.Unix()), nil
	case "reefnetsensus":
		variant := parser.ReefnetSensusPro
		if *f.variant == "ultra" {
			variant = parser.ReefnetSensusUltra
		} else if *f.variant != "pro" {
			return nil, fmt.Errorf("unknown reefnetsensus variant %q", *f.variant)
		}
		return parser.NewReefnetSensus(ctx, variant, opts.DevTime, opts.SysTime.Unix()), nil
	case "oceanicvtpro":
		return parser.NewOceanicVTPro(ctx), nil
	case "oceanicatom2":
		return parser.NewOceanicAtom2(ctx, opts.Model, int(opts.Serial), opts.Now), nil
	case "uwatecsmart":
		return parser.NewUwatecSmart(ctx, opts.Model, opts.DevTime, opts.SysTime.Unix()), nil
	case "suuntocommon2":
		layout := suuntocommon2.Layout{HeaderSize: 10, DateOffset: 0, IntervalOffset: 6, GasMixOffset: 7, TempOffset: 8}
		return parser.NewSuuntoCommon2(ctx, layout, nil), nil
	case "":
		return nil, fmt.Errorf("missing -family")
	default:
		return nil, fmt.Errorf("unknown family %q", *f.family)
	}
}
