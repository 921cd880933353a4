// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package suuntoeon implements the godc.Parser for the Suunto
// Solution/Eon family and its Spyder variant. Both share one record
// layout; spyder selects BCD-free date fields and a signed-byte minimum
// temperature, so one parser with a flag covers both rather than two
// separate types.
package suuntoeon

import (
	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

type cache struct {
	populated bool
	divetime  int
	maxdepth  int // delta units, feet after scaling
	marker    int
	nitrox    bool
}

type parser struct {
	ctx    godc.Context
	spyder bool
	data   []byte
	cache  cache
}

// New constructs a Suunto Eon (spyder=false) or Eon Spyder (spyder=true)
// parser.
func New(ctx godc.Context, spyder bool) godc.Parser {
	return &parser{ctx: ctx, spyder: spyder}
}

func (p *parser) SetData(data []byte) {
	p.data = data
	p.cache = cache{}
}

// cacheFields walks the delta-encoded sample stream once to find
// nsamples, maxdepth and the end marker offset. If no 0x80 sentinel
// precedes end-of-data, this (and therefore every field query) fails
// with DataFormat.
func (p *parser) cacheFields() godc.Status {
	if p.cache.populated {
		return godc.StatusSuccess
	}
	d := p.data
	if len(d) < 13 {
		return godc.StatusDataFormat
	}

	nitrox := !p.spyder && d[4]&0x80 != 0

	interval := int(d[3])
	nsamples := 0
	depth, maxdepth := 0, 0
	offset := 11
	for offset < len(d) && d[offset] != 0x80 {
		v := d[offset]
		offset++
		if v < 0x7d || v > 0x82 {
			depth += int(int8(v))
			if depth > maxdepth {
				maxdepth = depth
			}
			nsamples++
		}
	}

	marker := offset
	if marker+2 >= len(d) || d[marker] != 0x80 {
		return godc.StatusDataFormat
	}

	p.cache = cache{
		populated: true,
		divetime:  nsamples * interval,
		maxdepth:  maxdepth,
		marker:    marker,
		nitrox:    nitrox,
	}
	return godc.StatusSuccess
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	if len(p.data) < 6+5 {
		return sample.DateTime{}, godc.StatusDataFormat
	}
	d := p.data[6:]
	var dt sample.DateTime
	if p.spyder {
		dt.Year = int(d[0]) + yearCentury(int(d[0]), 90)
		dt.Month, dt.Day, dt.Hour, dt.Minute = int(d[1]), int(d[2]), int(d[3]), int(d[4])
	} else {
		y := bin.BCD2Dec(d[0])
		dt.Year = y + yearCentury(y, 85)
		dt.Month, dt.Day, dt.Hour, dt.Minute = bin.BCD2Dec(d[1]), bin.BCD2Dec(d[2]), bin.BCD2Dec(d[3]), bin.BCD2Dec(d[4])
	}
	return dt, godc.StatusSuccess
}

func yearCentury(twoDigit, cutoff int) int {
	if twoDigit < cutoff {
		return 2000
	}
	return 1900
}

const feet = 0.3048

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	if st := p.cacheFields(); st != godc.StatusSuccess {
		return st
	}
	d := p.data

	oxygen := 21
	beginPressure, endPressure := 0, 0
	if p.cache.nitrox {
		oxygen = int(d[0x05])
	} else {
		beginPressure = int(d[5]) * 2
		endPressure = int(d[p.cache.marker+2]) * 2
	}

	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = p.cache.divetime
	case godc.FieldMaxDepth:
		*(value.(*float64)) = float64(p.cache.maxdepth) * feet
	case godc.FieldGasMixCount:
		*(value.(*int)) = 1
	case godc.FieldGasMix:
		gm := value.(*sample.GasMix)
		gm.Helium = 0
		gm.Oxygen = float64(oxygen) / 100.0
		gm.Nitrogen = 1.0 - gm.Oxygen - gm.Helium
	case godc.FieldTankCount:
		if beginPressure == 0 && endPressure == 0 {
			*(value.(*int)) = 0
		} else {
			*(value.(*int)) = 1
		}
	case godc.FieldTank:
		tank := value.(*sample.Tank)
		*tank = sample.Tank{
			Type:          sample.TankVolumeNone,
			GasMix:        0,
			BeginPressure: float64(beginPressure),
			EndPressure:   float64(endPressure),
		}
	case godc.FieldTemperatureMinimum:
		if p.spyder {
			*(value.(*float64)) = float64(int8(d[p.cache.marker+1]))
		} else {
			*(value.(*float64)) = float64(d[p.cache.marker+1]) - 40
		}
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	if st := p.cacheFields(); st != godc.StatusSuccess {
		return st
	}
	d := p.data

	emitTime := func(t int) bool {
		return visit == nil || visit(sample.Sample{Kind: sample.KindTime, Time: t})
	}
	emitDepth := func(t int, ft float64) bool {
		return visit == nil || visit(sample.Sample{Kind: sample.KindDepth, Time: t, Depth: ft})
	}

	if !emitTime(0) {
		return godc.StatusSuccess
	}
	if !emitDepth(0, 0) {
		return godc.StatusSuccess
	}

	depth := 0
	time := 0
	interval := int(d[3])
	complete := true
	offset := 11
	for offset < len(d) && d[offset] != 0x80 {
		v := d[offset]
		offset++

		if complete {
			time += interval
			if !emitTime(time) {
				return godc.StatusSuccess
			}
			complete = false
		}

		if v < 0x7d || v > 0x82 {
			depth += int(int8(v))
			if !emitDepth(time, float64(depth)*feet) {
				return godc.StatusSuccess
			}
			complete = true
			continue
		}

		evType := sample.EventNone
		switch v {
		case 0x7d:
			evType = sample.EventSurface
		case 0x7e:
			evType = sample.EventDecoStop
		case 0x7f:
			evType = sample.EventCeiling
		case 0x81:
			evType = sample.EventAscent
		}
		if evType != sample.EventNone && visit != nil {
			ev := sample.Sample{Kind: sample.KindEvent, Time: time}
			ev.Event.Type = evType
			if !visit(ev) {
				return godc.StatusSuccess
			}
		}
	}

	if complete {
		time += interval
		if !emitTime(time) {
			return godc.StatusSuccess
		}
	}
	emitDepth(time, 0)

	return godc.StatusSuccess
}
