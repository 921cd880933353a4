// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shearwaterpredator implements the godc.Parser for the
// Shearwater Predator and Petrel families. Both share one record
// layout with a flavor flag: Predator samples are 0x10 bytes, Petrel
// samples are 0x20 bytes and add a CNS field; both carry a two- or
// three-block footer depending on flavor and the 0xFFFD end-of-record
// sentinel.
package shearwaterpredator

import (
	"fmt"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

const (
	blockSize          = 0x80
	sampleSizePredator = 0x10
	sampleSizePetrel   = 0x20
	maxGasMixes        = 10

	unitsMetric   = 0
	unitsImperial = 1

	feet = 0.3048
)

type cache struct {
	populated bool
	gasmixes  []sample.GasMix
}

type parser struct {
	ctx    godc.Context
	petrel bool
	serial uint32
	data   []byte
	cache  cache
}

// New constructs a Shearwater parser. petrel selects the Petrel sample
// layout (32-byte samples with CNS) over the Predator layout.
func New(ctx godc.Context, serial uint32, petrel bool) godc.Parser {
	return &parser{ctx: ctx, serial: serial, petrel: petrel}
}

func (p *parser) SetData(data []byte) {
	p.data = data
	p.cache = cache{}
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	if len(p.data) < 2*blockSize {
		return sample.DateTime{}, godc.StatusDataFormat
	}
	ticks := int64(bin.U32BE(p.data, 12))
	year, month, day, hour, minute, second := bin.UTCTime(ticks)
	return sample.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}, godc.StatusSuccess
}

// footerOffset performs the petrel-or-sentinel two/three-block footer
// detection shared by GetField and SamplesForeach.
func (p *parser) footerOffset() (int, godc.Status) {
	if len(p.data) < 2*blockSize {
		return 0, godc.StatusDataFormat
	}
	footer := len(p.data) - blockSize
	if p.petrel || bin.U16BE(p.data, footer) == 0xFFFD {
		if len(p.data) < 3*blockSize {
			return 0, godc.StatusDataFormat
		}
		footer -= blockSize
	}
	return footer, godc.StatusSuccess
}

func (p *parser) cacheFields() godc.Status {
	if p.cache.populated {
		return godc.StatusSuccess
	}
	d := p.data
	var mixes []sample.GasMix
	for i := 0; i < maxGasMixes; i++ {
		o2 := int(d[20+i])
		he := int(d[30+i])
		if o2 == 0 && he == 0 {
			continue
		}
		mixes = append(mixes, sample.GasMix{
			Oxygen:   float64(o2) / 100.0,
			Helium:   float64(he) / 100.0,
			Nitrogen: 1.0 - float64(o2)/100.0 - float64(he)/100.0,
		})
	}
	p.cache = cache{populated: true, gasmixes: mixes}
	return godc.StatusSuccess
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	footer, st := p.footerOffset()
	if st != godc.StatusSuccess {
		return st
	}
	units := p.data[8]
	if st := p.cacheFields(); st != godc.StatusSuccess {
		return st
	}
	d := p.data

	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = int(bin.U16BE(d, footer+6)) * 60
	case godc.FieldMaxDepth:
		depth := float64(bin.U16BE(d, footer+4))
		if units == unitsImperial {
			depth *= feet
		}
		*(value.(*float64)) = depth
	case godc.FieldGasMixCount:
		*(value.(*int)) = len(p.cache.gasmixes)
	case godc.FieldGasMix:
		if index < 0 || index >= len(p.cache.gasmixes) {
			return godc.StatusInvalidArgs
		}
		*(value.(*sample.GasMix)) = p.cache.gasmixes[index]
	case godc.FieldSalinity:
		density := int(bin.U16BE(d, 83))
		sal := value.(*sample.Salinity)
		sal.Fresh = density == 1000
		sal.Density = density
	case godc.FieldAtmospheric:
		*(value.(*float64)) = float64(bin.U16BE(d, 47)) / 1000.0
	case godc.FieldString:
		s := value.(*string)
		switch index {
		case 0:
			*s = fmt.Sprintf("%.1f", float64(d[9])/10.0)
		case 1:
			*s = fmt.Sprintf("%08x", p.serial)
		case 2:
			*s = fmt.Sprintf("%02x", d[19])
		default:
			return godc.StatusUnsupported
		}
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	footer, st := p.footerOffset()
	if st != godc.StatusSuccess {
		return st
	}
	d := p.data
	units := d[8]

	sampleSize := sampleSizePredator
	if p.petrel {
		sampleSize = sampleSizePetrel
	}

	o2prev, heprev := 0, 0
	time := 0
	for offset := blockSize; offset < footer; offset += sampleSize {
		if offset+sampleSize > len(d) {
			break
		}
		if isZero(d[offset : offset+sampleSize]) {
			continue
		}

		time += 10
		if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: time}) {
			return godc.StatusSuccess
		}

		depth := float64(bin.U16BE(d, offset))
		if units == unitsImperial {
			depth = depth * feet / 10.0
		} else {
			depth = depth / 10.0
		}
		if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: time, Depth: depth}) {
			return godc.StatusSuccess
		}

		temperature := float64(d[offset+13])
		if units == unitsImperial {
			temperature = (temperature - 32.0) * (5.0 / 9.0)
		}
		if visit != nil && !visit(sample.Sample{Kind: sample.KindTemperature, Time: time, Temperature: temperature}) {
			return godc.StatusSuccess
		}

		ppo2 := float64(d[offset+6]) / 100.0
		if visit != nil && !visit(sample.Sample{Kind: sample.KindPPO2, Time: time, PPO2: ppo2}) {
			return godc.StatusSuccess
		}

		if p.petrel {
			cns := float64(d[offset+22]) / 100.0
			if visit != nil && !visit(sample.Sample{Kind: sample.KindCNS, Time: time, CNS: cns}) {
				return godc.StatusSuccess
			}
		}

		o2 := int(d[offset+7])
		he := int(d[offset+8])
		if o2 != o2prev || he != heprev {
			ev := sample.Sample{Kind: sample.KindEvent, Time: time}
			ev.Event.Type = sample.EventGasChange
			ev.Event.Value = o2 | he<<16
			if visit != nil && !visit(ev) {
				return godc.StatusSuccess
			}
			o2prev, heprev = o2, he
		}

		decostop := int(bin.U16BE(d, offset+2))
		s := sample.Sample{Kind: sample.KindDeco, Time: time}
		if decostop != 0 {
			s.Deco.Type = sample.DecoStop
			depthUnit := float64(decostop)
			if units == unitsImperial {
				depthUnit *= feet
			}
			s.Deco.Depth = depthUnit
		} else {
			s.Deco.Type = sample.DecoNDL
		}
		s.Deco.Time = int(d[offset+9]) * 60
		if visit != nil && !visit(s) {
			return godc.StatusSuccess
		}
	}
	return godc.StatusSuccess
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
