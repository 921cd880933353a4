// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"time"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/parser/cressileonardo"
	"github.com/divecomputer/godc/parser/divesystemidive"
	"github.com/divecomputer/godc/parser/oceanicatom2"
	"github.com/divecomputer/godc/parser/oceanicvtpro"
	"github.com/divecomputer/godc/parser/reefnetsensus"
	"github.com/divecomputer/godc/parser/shearwaterpredator"
	"github.com/divecomputer/godc/parser/suuntocommon2"
	"github.com/divecomputer/godc/parser/suuntoeon"
	"github.com/divecomputer/godc/parser/suuntoeonsteel"
	"github.com/divecomputer/godc/parser/uwatecmemomouse"
	"github.com/divecomputer/godc/parser/uwatecsmart"
)

// NewCressiLeonardo constructs a Cressi Leonardo/Edy parser.
func NewCressiLeonardo(ctx godc.Context) godc.Parser {
	return cressileonardo.New(ctx)
}

// NewDiveSystemIDive constructs a DiveSystem iDive parser.
func NewDiveSystemIDive(ctx godc.Context) godc.Parser {
	return divesystemidive.New(ctx)
}

// NewSuuntoEon constructs a Suunto Eon parser. spyder selects the Eon
// Spyder date/temperature layout variant.
func NewSuuntoEon(ctx godc.Context, spyder bool) godc.Parser {
	return suuntoeon.New(ctx, spyder)
}

// NewSuuntoEonSteel constructs a Suunto EonSteel/EON Core parser for
// the given model code.
func NewSuuntoEonSteel(ctx godc.Context, model int) godc.Parser {
	return suuntoeonsteel.New(ctx, model)
}

// NewShearwaterPredator constructs a Shearwater parser. petrel selects
// the Petrel 32-byte sample layout over the Predator layout.
func NewShearwaterPredator(ctx godc.Context, serial uint32, petrel bool) godc.Parser {
	return shearwaterpredator.New(ctx, serial, petrel)
}

// NewUwatecMemomouse constructs a Uwatec Memomouse parser. devTime and
// sysTime are the device-clock/host-clock pair sampled at download time,
// used to convert the Memomouse's clockless relative timestamps into an
// absolute dive time.
func NewUwatecMemomouse(ctx godc.Context, devTime uint32, sysTime int64) godc.Parser {
	return uwatecmemomouse.New(ctx, devTime, sysTime)
}

// NewReefnetSensus constructs a Reefnet Sensus Pro or Ultra parser,
// selected by variant, using the device/host clock pair sampled at
// download time to resolve the relative dive timestamp.
func NewReefnetSensus(ctx godc.Context, variant reefnetsensus.Variant, devTime uint32, sysTime int64) godc.Parser {
	return reefnetsensus.New(ctx, variant, devTime, sysTime)
}

// ReefnetSensusPro and ReefnetSensusUltra re-export the variant
// constants so callers don't need to import the subpackage directly.
const (
	ReefnetSensusPro   = reefnetsensus.Pro
	ReefnetSensusUltra = reefnetsensus.Ultra
)

// NewOceanicVTPro constructs an Oceanic VT Pro/Aladin parser.
func NewOceanicVTPro(ctx godc.Context) godc.Parser {
	return oceanicvtpro.New(ctx)
}

// NewOceanicAtom2 constructs an Oceanic Atom2-family parser for the
// given two-byte model code and device serial. now is the host clock
// fed to the below-2010 decade-recovery heuristic; model constants are
// re-exported below.
func NewOceanicAtom2(ctx godc.Context, model, serial int, now time.Time) godc.Parser {
	return oceanicatom2.New(ctx, model, serial, now)
}

// Oceanic Atom2-family model codes, re-exported so callers don't need
// to import the subpackage directly.
const (
	OceanicAtom1     = oceanicatom2.Atom1
	OceanicAtom2     = oceanicatom2.Atom2
	OceanicAtom3     = oceanicatom2.Atom3
	OceanicEpica     = oceanicatom2.Epica
	OceanicEpicB     = oceanicatom2.EpicB
	OceanicGeo       = oceanicatom2.Geo
	OceanicGeo20     = oceanicatom2.GEO20
	OceanicDataMask  = oceanicatom2.DataMask
	OceanicCompuMask = oceanicatom2.CompuMask
	OceanicOC1A      = oceanicatom2.OC1A
	OceanicOC1B      = oceanicatom2.OC1B
	OceanicOC1C      = oceanicatom2.OC1C
	OceanicVEO20     = oceanicatom2.VEO20
	OceanicVEO30     = oceanicatom2.VEO30
	OceanicF10       = oceanicatom2.F10
	OceanicF11       = oceanicatom2.F11
	OceanicVT4       = oceanicatom2.VT4
	OceanicVT41      = oceanicatom2.VT41
	OceanicA300CS    = oceanicatom2.A300CS
	OceanicVTX       = oceanicatom2.VTX
	OceanicTX1       = oceanicatom2.TX1
)

// NewUwatecSmart constructs a Uwatec Smart/Galileo parser for the given
// model code and device/host clock pair.
func NewUwatecSmart(ctx godc.Context, model int, devTime uint32, sysTime int64) godc.Parser {
	return uwatecsmart.New(ctx, model, devTime, sysTime)
}

// Uwatec Smart/Galileo model codes, re-exported so callers don't need to
// import the subpackage directly.
const (
	UwatecSmartPro      = uwatecsmart.SmartPro
	UwatecGalileo       = uwatecsmart.Galileo
	UwatecAladinTec     = uwatecsmart.AladinTec
	UwatecAladinTec2G   = uwatecsmart.AladinTec2G
	UwatecSmartCom      = uwatecsmart.SmartCom
	UwatecAladin2G      = uwatecsmart.Aladin2G
	UwatecSmartTec      = uwatecsmart.SmartTec
	UwatecGalileoTrimix = uwatecsmart.GalileoTrimix
	UwatecSmartZ        = uwatecsmart.SmartZ
	UwatecMeridian      = uwatecsmart.Meridian
	UwatecChromis       = uwatecsmart.Chromis
)

// NewSuuntoCommon2 constructs a Suunto Common2-family parser (Vyper2,
// D9, Vyper Air, HelO2, Cobra2, Zoop) from the device's memory layout
// and a vtable used for the extra out-of-blob reads (gas mixes, tank
// info) the family keeps in device memory rather than in the dive
// record itself.
func NewSuuntoCommon2(ctx godc.Context, layout suuntocommon2.Layout, dev suuntocommon2.DeviceReader) godc.Parser {
	return suuntocommon2.New(ctx, layout, dev)
}
