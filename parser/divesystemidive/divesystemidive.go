// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package divesystemidive implements the godc.Parser for the DiveSystem
// iDive family. Samples are fixed 0x2A-byte records carrying an
// absolute per-sample timestamp; the parser asserts strict timestamp
// monotonicity and aborts the whole traversal on the first backwards
// tick.
package divesystemidive

import (
	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

const (
	headerSize  = 0x32
	sampleSize  = 0x2A
	maxGasMixes = 8
	// epoch is 2008-01-01 00:00:00 UTC; header timestamps count
	// seconds from it.
	epoch = 1199145600
)

type cache struct {
	populated bool
	divetime  int
	maxdepth  int // tenths of a meter
	gasmixes  []sample.GasMix
}

type parser struct {
	ctx   godc.Context
	data  []byte
	cache cache
}

// New constructs a DiveSystem iDive parser.
func New(ctx godc.Context) godc.Parser {
	return &parser{ctx: ctx}
}

func (p *parser) SetData(data []byte) {
	p.data = data
	p.cache = cache{}
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	if len(p.data) < headerSize {
		return sample.DateTime{}, godc.StatusDataFormat
	}
	ticks := int64(bin.U32LE(p.data, 7)) + epoch
	year, month, day, hour, minute, second := bin.LocalTime(ticks)
	return sample.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}, godc.StatusSuccess
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	if len(p.data) < headerSize {
		return godc.StatusDataFormat
	}
	if !p.cache.populated {
		if st := p.SamplesForeach(nil); st != godc.StatusSuccess {
			return st
		}
	}
	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = p.cache.divetime
	case godc.FieldMaxDepth:
		*(value.(*float64)) = float64(p.cache.maxdepth) / 10.0
	case godc.FieldGasMixCount:
		*(value.(*int)) = len(p.cache.gasmixes)
	case godc.FieldGasMix:
		if index < 0 || index >= len(p.cache.gasmixes) {
			return godc.StatusInvalidArgs
		}
		*(value.(*sample.GasMix)) = p.cache.gasmixes[index]
	case godc.FieldAtmospheric:
		*(value.(*float64)) = float64(bin.U16LE(p.data, 11)) / 1000.0
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	d := p.data

	type mix struct{ o2, he int }
	var mixes []mix

	time := 0
	maxdepth := 0
	o2prev, heprev := -1, -1

	for off := headerSize; off+sampleSize <= len(d); off += sampleSize {
		timestamp := int(bin.U32LE(d, off+2))
		if timestamp <= time {
			return godc.StatusDataFormat
		}
		time = timestamp
		if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: time}) {
			break
		}

		depth := int(bin.U16LE(d, off+6))
		if depth > maxdepth {
			maxdepth = depth
		}
		if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: time, Depth: float64(depth) / 10.0}) {
			break
		}

		temperature := int(int16(bin.U16LE(d, off+8)))
		if visit != nil && !visit(sample.Sample{Kind: sample.KindTemperature, Time: time, Temperature: float64(temperature) / 10.0}) {
			break
		}

		o2 := int(d[off+10])
		he := int(d[off+11])
		if o2 != o2prev || he != heprev {
			i := 0
			for ; i < len(mixes); i++ {
				if mixes[i].o2 == o2 && mixes[i].he == he {
					break
				}
			}
			if i == len(mixes) {
				if len(mixes) >= maxGasMixes {
					p.ctx.Log().Warnf("gas mix table overflow (%d/%d He=%d O2=%d)", len(mixes), maxGasMixes, he, o2)
					return godc.StatusDataFormat
				}
				mixes = append(mixes, mix{o2, he})
			}
			ev := sample.Sample{Kind: sample.KindEvent, Time: time}
			ev.Event.Type = sample.EventGasChange
			ev.Event.Value = o2 | he<<16
			if visit != nil && !visit(ev) {
				break
			}
			o2prev, heprev = o2, he
		}

		deco := int(bin.U16LE(d, off+21))
		tts := int(bin.U16LE(d, off+23))
		if tts != 0xFFFF {
			s := sample.Sample{Kind: sample.KindDeco, Time: time}
			if deco != 0 {
				s.Deco.Type = sample.DecoStop
				s.Deco.Depth = float64(deco) / 10.0
			} else {
				s.Deco.Type = sample.DecoNDL
			}
			s.Deco.Time = tts
			if visit != nil && !visit(s) {
				break
			}
		}

		cns := int(bin.U16LE(d, off+29))
		if visit != nil && !visit(sample.Sample{Kind: sample.KindCNS, Time: time, CNS: float64(cns) / 100.0}) {
			break
		}
	}

	gasmixes := make([]sample.GasMix, len(mixes))
	for i, m := range mixes {
		gasmixes[i] = sample.GasMix{
			Oxygen:   float64(m.o2) / 100.0,
			Helium:   float64(m.he) / 100.0,
			Nitrogen: 1.0 - float64(m.o2)/100.0 - float64(m.he)/100.0,
		}
	}
	p.cache = cache{populated: true, divetime: time, maxdepth: maxdepth, gasmixes: gasmixes}

	return godc.StatusSuccess
}
