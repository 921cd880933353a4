// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package oceanicvtpro implements the godc.Parser for the Oceanic
// VT Pro/Aladin family. Samples are packed two to a 16-byte memory page
// (half-page records); the sample interval is either fixed (coded in a
// header nibble) or, for depth-triggered logging, recovered by counting
// consecutive half-pages that share a BCD minute timestamp and
// distributing their times uniformly within that minute.
package oceanicvtpro

import (
	"bytes"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

// pageSize is the Oceanic memory page size.
const pageSize = 16
const halfPage = pageSize / 2

const feet = 0.3048

type cache struct {
	populated bool
	divetime  int
	maxdepth  float64
}

type parser struct {
	ctx   godc.Context
	data  []byte
	cache cache
}

// New constructs an Oceanic VT Pro parser.
func New(ctx godc.Context) godc.Parser {
	return &parser{ctx: ctx}
}

func (p *parser) SetData(data []byte) {
	p.data = data
	p.cache = cache{}
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	d := p.data
	if len(d) < 8 {
		return sample.DateTime{}, godc.StatusDataFormat
	}

	var year int
	if len(d) < 40 {
		year = bin.BCD2Dec(d[4]&0x0F) + 2000
	} else {
		year = bin.BCD2Dec(((d[32+3]&0xC0)>>2)+((d[32+2]&0xF0)>>4)) + 2000
	}
	month := int(d[4]&0xF0) >> 4
	day := bin.BCD2Dec(d[3])
	hour := bin.BCD2Dec(d[1] & 0x7F)
	minute := bin.BCD2Dec(d[0])

	hour = bin.Hour12to24(hour, d[1]&0x80 != 0)

	return sample.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: 0}, godc.StatusSuccess
}

func (p *parser) cacheFields() godc.Status {
	if p.cache.populated {
		return godc.StatusSuccess
	}
	divetime, maxdepth := 0, 0.0
	status := p.SamplesForeach(func(s sample.Sample) bool {
		if s.Kind == sample.KindTime && s.Time > divetime {
			divetime = s.Time
		}
		if s.Kind == sample.KindDepth && s.Depth > maxdepth {
			maxdepth = s.Depth
		}
		return true
	})
	if status != godc.StatusSuccess {
		return status
	}
	p.cache = cache{populated: true, divetime: divetime, maxdepth: maxdepth}
	return godc.StatusSuccess
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	d := p.data
	if len(d) < 7*pageSize/2 {
		return godc.StatusDataFormat
	}
	if st := p.cacheFields(); st != godc.StatusSuccess {
		return st
	}
	footer := len(d) - pageSize

	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = p.cache.divetime
	case godc.FieldMaxDepth:
		*(value.(*float64)) = float64(int(d[footer])+int(d[footer+1]&0x0F)<<8) * feet
	case godc.FieldGasMixCount:
		*(value.(*int)) = 1
	case godc.FieldGasMix:
		gm := value.(*sample.GasMix)
		gm.Helium = 0
		if d[footer+3] != 0 {
			gm.Oxygen = float64(d[footer+3]) / 100.0
		} else {
			gm.Oxygen = 0.21
		}
		gm.Nitrogen = 1.0 - gm.Oxygen - gm.Helium
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	d := p.data
	if len(d) < 7*pageSize/2 {
		return godc.StatusDataFormat
	}

	var interval int
	switch (d[0x27] >> 4) & 0x07 {
	case 0:
		interval = 2
	case 1:
		interval = 15
	case 2:
		interval = 30
	case 3:
		interval = 60
	default:
		interval = 0
	}

	zero := make([]byte, halfPage)
	time := 0
	timestamp, count, i := 0, 0, 0

	end := len(d) - pageSize
	offset := 5 * pageSize / 2
	for offset+halfPage <= end {
		if bytes.Equal(d[offset:offset+halfPage], zero) {
			offset += halfPage
			continue
		}

		current := bin.BCD2Dec(d[offset+1]&0x0F)*60 + bin.BCD2Dec(d[offset])
		if current < timestamp {
			return godc.StatusDataFormat
		}

		if current != timestamp || count == 0 {
			i = 0
			if interval != 0 {
				count = 60 / interval
			} else {
				count = 1
				idx := offset + halfPage
				for idx+halfPage <= end {
					if bytes.Equal(d[idx:idx+halfPage], zero) {
						idx += halfPage
						continue
					}
					next := bin.BCD2Dec(d[idx+1]&0x0F)*60 + bin.BCD2Dec(d[idx])
					if next != current {
						break
					}
					idx += halfPage
					count++
				}
			}
		} else {
			i++
		}

		if interval != 0 {
			if current > timestamp+1 {
				return godc.StatusDataFormat
			}
			if i >= count {
				offset += halfPage
				continue
			}
		}

		timestamp = current

		if interval != 0 {
			time += interval
		} else {
			time = timestamp*60 + int(float64(i+1)*60.0/float64(count)+0.5)
		}

		if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: time}) {
			return godc.StatusSuccess
		}

		vendor := sample.Sample{Kind: sample.KindVendor, Time: time, Vendor: d[offset : offset+halfPage]}
		if visit != nil && !visit(vendor) {
			return godc.StatusSuccess
		}

		depth := float64(d[offset+3]) * feet
		if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: time, Depth: depth}) {
			return godc.StatusSuccess
		}

		temperature := (float64(d[offset+6]) - 32.0) * (5.0 / 9.0)
		if visit != nil && !visit(sample.Sample{Kind: sample.KindTemperature, Time: time, Temperature: temperature}) {
			return godc.StatusSuccess
		}

		offset += halfPage
	}

	return godc.StatusSuccess
}
