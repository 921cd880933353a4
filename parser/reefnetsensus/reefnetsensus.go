// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reefnetsensus implements the godc.Parser for the Reefnet
// Sensus Pro and Sensus Ultra families. The two devices differ only in
// header layout, sample record width, and the pressure unit their raw
// depth field is expressed in; a Variant flag picks the right offsets
// and scale instead of duplicating the package.
package reefnetsensus

import (
	"bytes"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

// Variant selects the Pro or Ultra record layout.
type Variant int

const (
	Pro Variant = iota
	Ultra
)

const (
	gravity = 9.80665
	atm     = 101325.0
	bar     = 100000.0
	// fswPerUnit is the Pascal-per-foot-of-seawater constant the Pro's
	// raw depth field is expressed in, derived the same way the
	// hydrostatic gradient is (density * gravity * 0.3048m).
	fswPerUnit = 1025.0 * gravity * 0.3048
)

var (
	proFooter   = []byte{0xFF, 0xFF}
	proHeader   = []byte{0x00, 0x00, 0x00, 0x00}
	ultraFooter = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	ultraHeader = []byte{0x00, 0x00, 0x00, 0x00}
)

type cache struct {
	populated bool
	divetime  int
	maxdepth  int
}

type parser struct {
	ctx         godc.Context
	variant     Variant
	atmospheric float64
	hydrostatic float64
	devTime     uint32
	sysTime     int64
	data        []byte
	cache       cache
}

// New constructs a Reefnet Sensus parser. devTime and sysTime are the
// device-clock/host-clock pair sampled at download time, used to convert
// the Sensus's relative timestamps into an absolute dive time.
func New(ctx godc.Context, variant Variant, devTime uint32, sysTime int64) godc.Parser {
	return &parser{
		ctx:         ctx,
		variant:     variant,
		atmospheric: atm,
		hydrostatic: 1025.0 * gravity,
		devTime:     devTime,
		sysTime:     sysTime,
	}
}

// SetCalibration overrides the default atmospheric pressure and
// hydrostatic gradient used to convert raw depth readings to meters.
func (p *parser) SetCalibration(atmospheric, hydrostatic float64) {
	p.atmospheric = atmospheric
	p.hydrostatic = hydrostatic
}

func (p *parser) SetData(data []byte) {
	p.data = data
	p.cache = cache{}
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	var tsOffset int
	if p.variant == Ultra {
		tsOffset = 4
	} else {
		tsOffset = 6
	}
	if len(p.data) < tsOffset+4 {
		return sample.DateTime{}, godc.StatusDataFormat
	}
	timestamp := bin.U32LE(p.data, tsOffset)
	ticks := p.sysTime - int64(p.devTime-timestamp)
	year, month, day, hour, minute, second := bin.LocalTime(ticks)
	return sample.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}, godc.StatusSuccess
}

func (p *parser) cacheFields() godc.Status {
	if p.cache.populated {
		return godc.StatusSuccess
	}
	d := p.data

	if p.variant == Ultra {
		if len(d) < 20 {
			return godc.StatusDataFormat
		}
		interval := int(bin.U16LE(d, 8))
		threshold := int(bin.U16LE(d, 10))

		maxdepth, nsamples := 0, 0
		offset := 16
		for offset+4 <= len(d) && !bytes.Equal(d[offset:offset+4], ultraFooter) {
			depth := int(bin.U16LE(d, offset+2))
			if depth >= threshold {
				if depth > maxdepth {
					maxdepth = depth
				}
				nsamples++
			}
			offset += 4
		}
		p.cache = cache{populated: true, divetime: nsamples * interval, maxdepth: maxdepth}
		return godc.StatusSuccess
	}

	if len(d) < 12 {
		return godc.StatusDataFormat
	}
	interval := int(bin.U16LE(d, 4))

	maxdepth, nsamples := 0, 0
	offset := 10
	for offset+2 <= len(d) && !bytes.Equal(d[offset:offset+2], proFooter) {
		value := int(bin.U16LE(d, offset))
		depth := value & 0x01FF
		if depth > maxdepth {
			maxdepth = depth
		}
		nsamples++
		offset += 2
	}
	p.cache = cache{populated: true, divetime: nsamples * interval, maxdepth: maxdepth}
	return godc.StatusSuccess
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	minSize := 12
	if p.variant == Ultra {
		minSize = 20
	}
	if len(p.data) < minSize {
		return godc.StatusDataFormat
	}
	if st := p.cacheFields(); st != godc.StatusSuccess {
		return st
	}

	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = p.cache.divetime
	case godc.FieldMaxDepth:
		var pressurePa float64
		if p.variant == Ultra {
			pressurePa = float64(p.cache.maxdepth) * bar / 1000.0
		} else {
			pressurePa = float64(p.cache.maxdepth) * fswPerUnit
		}
		*(value.(*float64)) = (pressurePa - p.atmospheric) / p.hydrostatic
	case godc.FieldGasMixCount:
		*(value.(*int)) = 0
	case godc.FieldDiveMode:
		*(value.(*sample.DiveMode)) = sample.DiveModeGauge
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	d := p.data

	if p.variant == Ultra {
		offset := 0
		for offset+4 <= len(d) {
			if !bytes.Equal(d[offset:offset+4], ultraHeader) {
				offset++
				continue
			}
			if offset+16 > len(d) {
				return godc.StatusDataFormat
			}
			time := 0
			interval := int(bin.U16LE(d, offset+8))
			offset += 16
			for offset+4 <= len(d) && !bytes.Equal(d[offset:offset+4], ultraFooter) {
				time += interval
				if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: time}) {
					return godc.StatusSuccess
				}

				temperature := float64(bin.U16LE(d, offset))
				if visit != nil && !visit(sample.Sample{Kind: sample.KindTemperature, Time: time, Temperature: temperature/100.0 - 273.15}) {
					return godc.StatusSuccess
				}

				depth := float64(bin.U16LE(d, offset+2))
				meters := (depth*bar/1000.0 - p.atmospheric) / p.hydrostatic
				if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: time, Depth: meters}) {
					return godc.StatusSuccess
				}
				offset += 4
			}
			return godc.StatusSuccess
		}
		return godc.StatusSuccess
	}

	offset := 0
	for offset+4 <= len(d) {
		if !bytes.Equal(d[offset:offset+4], proHeader) {
			offset++
			continue
		}
		if offset+10 > len(d) {
			return godc.StatusDataFormat
		}
		time := 0
		interval := int(bin.U16LE(d, offset+4))
		offset += 10
		for offset+2 <= len(d) && !bytes.Equal(d[offset:offset+2], proFooter) {
			value := int(bin.U16LE(d, offset))
			depth := value & 0x01FF
			temperature := (value & 0xFE00) >> 9

			time += interval
			if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: time}) {
				return godc.StatusSuccess
			}

			tempC := (float64(temperature) - 32.0) * (5.0 / 9.0)
			if visit != nil && !visit(sample.Sample{Kind: sample.KindTemperature, Time: time, Temperature: tempC}) {
				return godc.StatusSuccess
			}

			meters := (float64(depth)*fswPerUnit - p.atmospheric) / p.hydrostatic
			if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: time, Depth: meters}) {
				return godc.StatusSuccess
			}
			offset += 2
		}
		return godc.StatusSuccess
	}
	return godc.StatusSuccess
}
