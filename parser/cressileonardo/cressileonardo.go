// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cressileonardo implements the godc.Parser for the Cressi
// Leonardo/Edy family. It is the simplest family in the repo: a fixed
// 82-byte header, no BCD, no clock skew, a single gas mix, and 2-byte
// fixed-interval samples.
package cressileonardo

import (
	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

// headerSize is the fixed header length preceding the sample stream.
const headerSize = 82

const sampleInterval = 20 // seconds

type parser struct {
	ctx  godc.Context
	data []byte
}

// New constructs a Cressi Leonardo parser. The family needs no clock
// pair or model code, so the context is the only parameter.
func New(ctx godc.Context) godc.Parser {
	return &parser{ctx: ctx}
}

// SetData installs the dive record. Every operation fails with
// DataFormat until a record of at least headerSize bytes has been
// supplied.
func (p *parser) SetData(data []byte) {
	p.data = data
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	if len(p.data) < headerSize {
		return sample.DateTime{}, godc.StatusDataFormat
	}
	d := p.data
	return sample.DateTime{
		Year:   int(d[8]) + 2000,
		Month:  int(d[9]),
		Day:    int(d[10]),
		Hour:   int(d[11]),
		Minute: int(d[12]),
	}, godc.StatusSuccess
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	if len(p.data) < headerSize {
		return godc.StatusDataFormat
	}
	d := p.data
	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = int(le16(d, 0x06)) * sampleInterval
	case godc.FieldMaxDepth:
		*(value.(*float64)) = float64(le16(d, 0x20)) / 10.0
	case godc.FieldGasMixCount:
		*(value.(*int)) = 1
	case godc.FieldGasMix:
		gm := value.(*sample.GasMix)
		gm.Helium = 0
		gm.Oxygen = float64(d[0x19]) / 100.0
		gm.Nitrogen = 1.0 - gm.Oxygen - gm.Helium
	case godc.FieldTemperatureMinimum:
		*(value.(*float64)) = float64(d[0x22])
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	if len(p.data) < headerSize {
		return godc.StatusDataFormat
	}
	d := p.data
	t := 0
	for off := headerSize; off+2 <= len(d); off += 2 {
		v := le16(d, off)
		depth := v & 0x07FF
		ascent := (v & 0xC000) >> 14

		t += sampleInterval
		if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: t}) {
			return godc.StatusSuccess
		}

		s := sample.Sample{Kind: sample.KindDepth, Time: t, Depth: float64(depth) / 10.0}
		if visit != nil && !visit(s) {
			return godc.StatusSuccess
		}

		if ascent != 0 {
			ev := sample.Sample{Kind: sample.KindEvent, Time: t}
			ev.Event.Type = sample.EventAscent
			ev.Event.Value = int(ascent)
			if visit != nil && !visit(ev) {
				return godc.StatusSuccess
			}
		}
	}
	return godc.StatusSuccess
}

func le16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}
