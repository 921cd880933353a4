// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uwatecmemomouse implements the godc.Parser for the Uwatec
// Memomouse family. The Memomouse has no real-time clock; its relative
// dive timestamp is converted via the device/host clock-skew formula
// with a halved delta, because the Memomouse clock ticks twice per
// second.
package uwatecmemomouse

import (
	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

type parser struct {
	ctx     godc.Context
	devTime uint32
	sysTime int64 // unix seconds
	data    []byte
}

// New constructs a Memomouse parser from the device/host clock pair
// recorded at download time.
func New(ctx godc.Context, devTime uint32, sysTime int64) godc.Parser {
	return &parser{ctx: ctx, devTime: devTime, sysTime: sysTime}
}

func (p *parser) SetData(data []byte) {
	p.data = data
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	if len(p.data) < 11+4 {
		return sample.DateTime{}, godc.StatusDataFormat
	}
	timestamp := bin.U32LE(p.data, 11)
	ticks := p.sysTime - int64(p.devTime-timestamp)/2
	year, month, day, hour, minute, second := bin.LocalTime(ticks)
	return sample.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}, godc.StatusSuccess
}

func modelFlags(model byte) (isNitrox, isOxygen bool) {
	isNitrox = model&0xF0 == 0xF0
	isOxygen = model&0xF0 == 0xA0
	return
}

func headerSize(isNitrox, isOxygen bool) int {
	h := 22
	if isNitrox {
		h += 2
	}
	if isOxygen {
		h += 3
	}
	return h
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	d := p.data
	if len(d) < 18 {
		return godc.StatusDataFormat
	}
	isNitrox, isOxygen := modelFlags(d[3])
	header := headerSize(isNitrox, isOxygen)

	switch kind {
	case godc.FieldDiveTime:
		minutes := 0
		if d[4]&0x04 != 0 {
			minutes += 100
		}
		minutes += bin.BCD2Dec(d[5])
		*(value.(*int)) = minutes * 60
	case godc.FieldMaxDepth:
		raw := (bin.U16BE(d, 6) & 0xFFC0) >> 6
		*(value.(*float64)) = float64(raw) * 10.0 / 64.0
	case godc.FieldGasMixCount:
		*(value.(*int)) = 1
	case godc.FieldGasMix:
		gm := value.(*sample.GasMix)
		gm.Helium = 0
		if len(d) >= header+18 {
			idx := header + 18 + 23
			switch {
			case isOxygen:
				gm.Oxygen = float64(d[idx]) / 100.0
			case isNitrox:
				if d[idx]&0x0F != 0 {
					gm.Oxygen = (20.0 + 2*float64(d[idx]&0x0F)) / 100.0
				} else {
					gm.Oxygen = 0.21
				}
			default:
				gm.Oxygen = 0.21
			}
		} else {
			gm.Oxygen = 0.21
		}
		gm.Nitrogen = 1.0 - gm.Oxygen - gm.Helium
	case godc.FieldTemperatureMinimum:
		*(value.(*float64)) = float64(int8(d[15])) / 4.0
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	d := p.data
	if len(d) < 18 {
		return godc.StatusDataFormat
	}
	isNitrox, isOxygen := modelFlags(d[3])
	header := headerSize(isNitrox, isOxygen)

	time := 20
	offset := header + 18
	for offset+2 <= len(d) {
		v := bin.U16BE(d, offset)
		depth := (v & 0xFFC0) >> 6
		warnings := v & 0x3F
		offset += 2

		if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: time}) {
			return godc.StatusSuccess
		}
		if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: time, Depth: float64(depth) * 10.0 / 64.0}) {
			return godc.StatusSuccess
		}

		for i := 0; i < 6; i++ {
			if warnings&(1<<uint(i)) == 0 {
				continue
			}
			ev := sample.Sample{Kind: sample.KindEvent, Time: time}
			switch i {
			case 0:
				ev.Event.Type = sample.EventDecoStop
			case 1:
				ev.Event.Type = sample.EventRBT
			case 2:
				ev.Event.Type = sample.EventAscent
			case 3:
				ev.Event.Type = sample.EventCeiling
			case 4:
				ev.Event.Type = sample.EventWorkload
			case 5:
				ev.Event.Type = sample.EventTransmitter
			}
			if visit != nil && !visit(ev) {
				return godc.StatusSuccess
			}
		}

		if time%60 == 0 {
			start := offset
			if offset+1 > len(d) {
				return godc.StatusDataFormat
			}
			offset++
			if isOxygen {
				if offset+1 > len(d) {
					return godc.StatusDataFormat
				}
				offset++
			}
			if visit != nil {
				vendor := sample.Sample{Kind: sample.KindVendor, Time: time, Vendor: d[start:offset]}
				if !visit(vendor) {
					return godc.StatusSuccess
				}
			}
		}

		time += 20
	}
	return godc.StatusSuccess
}
