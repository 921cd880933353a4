// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package oceanicatom2 implements the godc.Parser for the Oceanic
// Atom2 family. The family spans dozens of firmware variants sharing
// one half-page sample format; header/footer size, date-field bit
// layout, and gas-mix count all branch on the model code passed to New,
// while the surface-interval (0xBB) and tank-switch (0xAA) sample
// markers and the header/footer framing are uniform across the family.
package oceanicatom2

import (
	"time"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

// Model codes, the family's two-byte model identifiers.
const (
	Atom1     = 0x4250
	Epica     = 0x4257
	VT3       = 0x4258
	T3A       = 0x4259
	Atom2     = 0x4342
	Geo       = 0x4344
	Manta     = 0x4345
	DataMask  = 0x4347
	CompuMask = 0x4348
	OC1A      = 0x434E
	F10       = 0x434D
	Wisdom2   = 0x4350
	Insight2  = 0x4353
	Element2  = 0x4357
	VEO20     = 0x4359
	VEO30     = 0x435A
	Zen       = 0x4441
	ZenAir    = 0x4442
	AtmosAI2  = 0x4443
	ProPlus21 = 0x4444
	GEO20     = 0x4446
	VT4       = 0x4447
	OC1B      = 0x4449
	Voyager2G = 0x444B
	Atom3     = 0x444C
	DG03      = 0x444D
	OCS       = 0x4450
	OC1C      = 0x4451
	VT41      = 0x4452
	EpicB     = 0x4453
	T3B       = 0x4455
	Atom31    = 0x4456
	A300AI    = 0x4457
	Wisdom3   = 0x4458
	A300      = 0x445A
	TX1       = 0x4542
	Amphos    = 0x4545
	AmphosAir = 0x4546
	ProPlus3  = 0x4548
	F11       = 0x4549
	OCI       = 0x454B
	A300CS    = 0x454C
	VTX       = 0x4557
)

const (
	diveModeNormal = iota
	diveModeGauge
	diveModeFreedive
)

const pageSize = 16
const feet = 0.3048
const psiPerBar = 14.5037738

type cache struct {
	populated bool
	divetime  int
	maxdepth  float64
}

type parser struct {
	ctx        godc.Context
	model      int
	serial     int
	headerSize int
	footerSize int
	now        time.Time
	data       []byte
	cache      cache
}

// New constructs an Oceanic Atom2-family parser for the given model
// code and device serial. now is the host clock used by the below-2010
// decade-recovery heuristic; tests pin it instead of calling time.Now.
func New(ctx godc.Context, model, serial int, now time.Time) godc.Parser {
	headerSize := 9 * pageSize / 2
	footerSize := 2 * pageSize / 2
	switch model {
	case DataMask, CompuMask, Geo, GEO20, VEO20, VEO30, OCS, ProPlus3, A300, Manta, Insight2, Zen:
		headerSize -= pageSize
	case VT4, VT41:
		headerSize += pageSize
	case TX1:
		headerSize += 2 * pageSize
	case Atom1:
		headerSize -= 2 * pageSize
	case F10:
		headerSize = 3 * pageSize
		footerSize = pageSize / 2
	case F11:
		headerSize = 5 * pageSize
		footerSize = pageSize / 2
	case A300CS, VTX:
		headerSize = 5 * pageSize
	}
	return &parser{ctx: ctx, model: model, serial: serial, headerSize: headerSize, footerSize: footerSize, now: now}
}

func (p *parser) SetData(data []byte) {
	p.data = data
	p.cache = cache{}
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	header := 8
	if p.model == F10 || p.model == F11 {
		header = 32
	}
	d := p.data
	if len(d) < header {
		return sample.DateTime{}, godc.StatusDataFormat
	}

	pm := d[1]&0x80 != 0
	var year, month, day, hour, minute int

	switch p.model {
	case OC1A, OC1B, OC1C, OCS, VT4, VT41, Atom3, Atom31, A300AI, OCI:
		year = int((d[5]&0xE0)>>5) + int((d[7]&0xE0)>>2) + 2000
		month = int(d[3] & 0x0F)
		day = int((d[0]&0x80)>>3) + int((d[3]&0xF0)>>4)
		hour = bin.BCD2Dec(d[1] & 0x1F)
		minute = bin.BCD2Dec(d[0] & 0x7F)
	case VT3, VEO20, VEO30, DG03:
		year = int((d[3]&0xE0)>>1) + int(d[4]&0x0F) + 2000
		month = int(d[4]&0xF0) >> 4
		day = int(d[3] & 0x1F)
		hour = bin.BCD2Dec(d[1] & 0x1F)
		minute = bin.BCD2Dec(d[0])
	case ZenAir, Amphos, AmphosAir, Voyager2G:
		year = int(d[3]&0x0F) + 2000
		month = int(d[7]&0xF0) >> 4
		day = int((d[3]&0x80)>>3) + int((d[5]&0xF0)>>4)
		hour = bin.BCD2Dec(d[1] & 0x1F)
		minute = bin.BCD2Dec(d[0])
	case F10, F11:
		year = bin.BCD2Dec(d[6]) + 2000
		month = bin.BCD2Dec(d[7])
		day = bin.BCD2Dec(d[8])
		hour = bin.BCD2Dec(d[13] & 0x7F)
		minute = bin.BCD2Dec(d[12])
		pm = d[13]&0x80 != 0
	case TX1:
		year = bin.BCD2Dec(d[13]) + 2000
		month = bin.BCD2Dec(d[14])
		day = bin.BCD2Dec(d[15])
		hour = int(d[11])
		minute = int(d[10])
	case A300CS, VTX:
		year = int(d[10]) + 2000
		month = int(d[8])
		day = int(d[9])
		hour = bin.BCD2Dec(d[1] & 0x1F)
		minute = bin.BCD2Dec(d[0])
	default:
		year = bin.BCD2Dec(((d[3]&0xC0)>>2)+(d[4]&0x0F)) + 2000
		month = int(d[4]&0xF0) >> 4
		if p.model == T3A || p.model == T3B || p.model == GEO20 || p.model == ProPlus3 {
			day = int(d[3] & 0x3F)
		} else {
			day = bin.BCD2Dec(d[3] & 0x3F)
		}
		hour = bin.BCD2Dec(d[1] & 0x1F)
		minute = bin.BCD2Dec(d[0])
	}

	hour = bin.Hour12to24(hour, pm)

	if year < 2010 {
		year = bin.RecoverDecade(year%10, p.now)
	}

	return sample.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: 0}, godc.StatusSuccess
}

func (p *parser) diveMode() int {
	d := p.data
	switch p.model {
	case F10, F11:
		return diveModeFreedive
	case T3B, VT3, DG03:
		return int((d[2] & 0xC0) >> 6)
	case VEO20, VEO30:
		return int((d[1] & 0x60) >> 5)
	default:
		return diveModeNormal
	}
}

func (p *parser) headerOffset() int {
	if p.model == VT4 || p.model == VT41 || p.model == A300AI {
		return 3 * pageSize
	}
	return p.headerSize - pageSize/2
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
	if len(d) < p.headerSize+p.footerSize {
		return godc.StatusDataFormat
	}
	header := p.headerOffset()
	footer := len(d) - p.footerSize
	mode := p.diveMode()

	if st := p.cacheFields(); st != godc.StatusSuccess {
		return st
	}

	switch kind {
	case godc.FieldDiveTime:
		if p.model == F10 || p.model == F11 {
			*(value.(*int)) = bin.BCD2Dec(d[2]) + bin.BCD2Dec(d[3])*60 + bin.BCD2Dec(d[1])*3600
		} else {
			*(value.(*int)) = p.cache.divetime
		}
	case godc.FieldMaxDepth:
		if p.model == F10 || p.model == F11 {
			*(value.(*float64)) = float64(bin.U16LE(d, 4)) / 16.0 * feet
		} else {
			*(value.(*float64)) = float64(bin.U16LE(d, footer+4)) / 16.0 * feet
		}
	case godc.FieldGasMixCount:
		switch {
		case mode == diveModeFreedive:
			*(value.(*int)) = 0
		case p.model == DataMask || p.model == CompuMask:
			*(value.(*int)) = 1
		case p.model == VT4 || p.model == VT41 || p.model == OCI || p.model == A300AI:
			*(value.(*int)) = 4
		case p.model == TX1:
			*(value.(*int)) = 6
		case p.model == A300CS || p.model == VTX:
			switch {
			case d[0x39]&0x04 != 0:
				*(value.(*int)) = 1
			case d[0x39]&0x08 != 0:
				*(value.(*int)) = 2
			case d[0x39]&0x10 != 0:
				*(value.(*int)) = 3
			default:
				*(value.(*int)) = 4
			}
		default:
			*(value.(*int)) = 3
		}
	case godc.FieldGasMix:
		gm := value.(*sample.GasMix)
		var oxygen, helium int
		switch {
		case p.model == DataMask || p.model == CompuMask:
			oxygen = int(d[header+3])
		case p.model == OCI:
			oxygen = int(d[0x28+index])
		case p.model == A300CS || p.model == VTX:
			oxygen = int(d[0x2A+index])
		case p.model == TX1:
			oxygen = int(d[0x3E+index])
			helium = int(d[0x48+index])
		default:
			oxygen = int(d[header+4+index])
		}
		gm.Helium = float64(helium) / 100.0
		if oxygen != 0 {
			gm.Oxygen = float64(oxygen) / 100.0
		} else {
			gm.Oxygen = 0.21
		}
		gm.Nitrogen = 1.0 - gm.Oxygen - gm.Helium
	case godc.FieldSalinity:
		if p.model != A300CS && p.model != VTX {
			return godc.StatusUnsupported
		}
		sal := value.(*sample.Salinity)
		sal.Fresh = d[0x18]&0x80 != 0
		sal.Density = 0
	case godc.FieldDiveMode:
		switch mode {
		case diveModeNormal:
			*(value.(*sample.DiveMode)) = sample.DiveModeOpenCircuit
		case diveModeGauge:
			*(value.(*sample.DiveMode)) = sample.DiveModeGauge
		case diveModeFreedive:
			*(value.(*sample.DiveMode)) = sample.DiveModeFreedive
		default:
			return godc.StatusDataFormat
		}
	case godc.FieldString:
		if index != 0 {
			return godc.StatusUnsupported
		}
		*(value.(*string)) = intToSerialString(p.serial)
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func intToSerialString(serial int) string {
	digits := [6]byte{}
	v := serial
	for i := 5; i >= 0; i-- {
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits[:])
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	d := p.data
	if len(d) < p.headerSize+p.footerSize {
		return godc.StatusDataFormat
	}
	header := p.headerOffset()
	mode := p.diveMode()

	interval := 1
	if mode != diveModeFreedive {
		idx := 0x17
		if p.model == A300CS || p.model == VTX {
			idx = 0x1f
		}
		switch d[idx] & 0x03 {
		case 0:
			interval = 2
		case 1:
			interval = 15
		case 2:
			interval = 30
		case 3:
			interval = 60
		}
	}

	sampleSize := pageSize / 2
	switch {
	case mode == diveModeFreedive:
		if p.model == F10 || p.model == F11 {
			sampleSize = 2
		} else {
			sampleSize = 4
		}
	case p.model == OC1A || p.model == OC1B || p.model == OC1C || p.model == OCI ||
		p.model == TX1 || p.model == A300CS || p.model == VTX:
		sampleSize = pageSize
	}

	haveTemperature, havePressure := true, true
	switch {
	case mode == diveModeFreedive:
		haveTemperature, havePressure = false, false
	case p.model == VEO30 || p.model == OCS || p.model == Element2 || p.model == VEO20 ||
		p.model == A300 || p.model == Zen || p.model == Geo || p.model == GEO20 || p.model == Manta:
		havePressure = false
	}

	temperature := 0
	if haveTemperature {
		temperature = int(d[header+7])
	}

	tank, pressure := 0, 0
	if havePressure {
		idx := 2
		if p.model == A300CS || p.model == VTX {
			idx = 16
		}
		pressure = int(d[header+idx]) + int(d[header+idx+1])<<8
		if pressure == 10000 {
			havePressure = false
		}
	}

	return p.walk(visit, header, interval, sampleSize, mode, haveTemperature, havePressure, temperature, tank, pressure)
}

func isFill(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}

func (p *parser) walk(visit godc.Visitor, header, interval, sampleSize, mode int, haveTemperature, havePressure bool, temperature, tank, pressure int) godc.Status {
	d := p.data
	elapsed := 0
	complete := true
	footerStart := len(d) - p.footerSize
	offset := p.headerSize

	for offset+sampleSize <= footerStart {
		if isFill(d[offset:offset+sampleSize], 0x00) || isFill(d[offset:offset+sampleSize], 0xFF) {
			offset += sampleSize
			continue
		}

		if complete {
			elapsed += interval
			if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: elapsed}) {
				return godc.StatusSuccess
			}
			complete = false
		}

		sampleType := int(d[offset])
		if mode == diveModeFreedive {
			sampleType = 0
		}

		length := sampleSize
		if sampleType == 0xBB {
			length = pageSize
			if offset+length > len(d)-pageSize {
				return godc.StatusDataFormat
			}
		}

		if visit != nil && !visit(sample.Sample{Kind: sample.KindVendor, Time: elapsed, Vendor: d[offset : offset+length]}) {
			return godc.StatusSuccess
		}

		switch sampleType {
		case 0xAA:
			switch {
			case p.model == DataMask || p.model == CompuMask:
				tank = 0
				pressure = (int(d[offset+7])<<8 + int(d[offset+6])) & 0x0FFF
			case p.model == A300CS || p.model == VTX:
				tank = int(d[offset+1]&0x03) - 1
				pressure = (int(d[offset+7])<<8 + int(d[offset+6])) & 0x0FFF
			default:
				tank = int(d[offset+1]&0x03) - 1
				if p.model == Atom2 || p.model == Epica || p.model == EpicB {
					pressure = ((int(d[offset+3])<<8 + int(d[offset+4])) & 0x0FFF) * 2
				} else {
					pressure = ((int(d[offset+4])<<8 + int(d[offset+5])) & 0x0FFF) * 2
				}
			}
		case 0xBB:
			surftime := 60*bin.BCD2Dec(d[offset+1]) + bin.BCD2Dec(d[offset+2])
			nsamples := surftime / interval
			for i := 0; i < nsamples; i++ {
				if complete {
					elapsed += interval
					if visit != nil && !visit(sample.Sample{Kind: sample.KindTime, Time: elapsed}) {
						return godc.StatusSuccess
					}
				}
				if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: elapsed, Depth: 0}) {
					return godc.StatusSuccess
				}
				complete = true
			}
		default:
			if haveTemperature {
				temperature = p.decodeTemperature(d, offset, temperature)
				tempC := (float64(temperature) - 32.0) * (5.0 / 9.0)
				if visit != nil && !visit(sample.Sample{Kind: sample.KindTemperature, Time: elapsed, Temperature: tempC}) {
					return godc.StatusSuccess
				}
			}

			if havePressure {
				pressure = p.decodePressure(d, offset, pressure)
				s := sample.Sample{Kind: sample.KindPressure, Time: elapsed, TankIndex: tank, Pressure: float64(pressure) / psiPerBar}
				if visit != nil && !visit(s) {
					return godc.StatusSuccess
				}
			}

			depth := p.decodeDepth(d, offset, mode)
			depthM := float64(depth) / 16.0 * feet
			if visit != nil && !visit(sample.Sample{Kind: sample.KindDepth, Time: elapsed, Depth: depthM}) {
				return godc.StatusSuccess
			}

			if p.model == A300CS || p.model == VTX {
				deco := int(d[offset+15]&0x70) >> 4
				s := sample.Sample{Kind: sample.KindDeco, Time: elapsed}
				if deco != 0 {
					s.Deco.Type = sample.DecoStop
					s.Deco.Depth = float64(deco) * 10 * feet
				} else {
					s.Deco.Type = sample.DecoNDL
				}
				s.Deco.Time = int(bin.U16LE(d, offset+6) & 0x03FF)
				if visit != nil && !visit(s) {
					return godc.StatusSuccess
				}
			}

			complete = true
		}

		offset += length
	}

	return godc.StatusSuccess
}

// decodeTemperature covers the model groups whose temperature fields
// sit at distinct byte offsets; models outside these groups fall back
// to the generic signed-nibble adjustment, which is what the majority
// of the family (including the plain Atom2) actually uses.
func (p *parser) decodeTemperature(d []byte, offset, prev int) int {
	switch {
	case p.model == Geo || p.model == Atom1 || p.model == Element2:
		return int(d[offset+6])
	case p.model == GEO20 || p.model == VEO20 || p.model == VEO30 || p.model == OC1A ||
		p.model == OC1B || p.model == OC1C || p.model == OCI || p.model == A300:
		return int(d[offset+3])
	case p.model == OCS || p.model == TX1:
		return int(d[offset+1])
	case p.model == VT4 || p.model == VT41 || p.model == Atom3 || p.model == Atom31 || p.model == A300AI:
		return int((d[offset+7]&0xF0)>>4) | int((d[offset+7]&0x0C)<<2) | int((d[offset+5]&0x0C)<<4)
	case p.model == A300CS || p.model == VTX:
		return int(d[offset+11])
	default:
		var sign bool
		switch {
		case p.model == DG03 || p.model == ProPlus3:
			sign = (^d[offset+5])&0x04 != 0
		case p.model == Voyager2G || p.model == Amphos || p.model == AmphosAir:
			sign = d[offset+5]&0x04 != 0
		case p.model == Atom2 || p.model == ProPlus21 || p.model == Epica || p.model == EpicB ||
			p.model == AtmosAI2 || p.model == Wisdom2 || p.model == Wisdom3:
			sign = d[offset+0]&0x80 != 0
		default:
			sign = (^d[offset+0])&0x80 != 0
		}
		delta := int(d[offset+7]&0x0C) >> 2
		if sign {
			return prev - delta
		}
		return prev + delta
	}
}

func (p *parser) decodePressure(d []byte, offset, prev int) int {
	switch {
	case p.model == OC1A || p.model == OC1B || p.model == OC1C || p.model == OCI:
		return (int(d[offset+10]) + int(d[offset+11])<<8) & 0x0FFF
	case p.model == VT4 || p.model == VT41 || p.model == Atom3 || p.model == Atom31 ||
		p.model == ZenAir || p.model == A300AI || p.model == DG03 || p.model == ProPlus3 || p.model == AmphosAir:
		return (int(d[offset]&0x03)<<8 + int(d[offset+1])) * 5
	case p.model == TX1 || p.model == A300CS || p.model == VTX:
		return int(bin.U16LE(d, offset+4))
	default:
		return prev - int(d[offset+1])
	}
}

func (p *parser) decodeDepth(d []byte, offset, mode int) int {
	switch {
	case mode == diveModeFreedive:
		return int(bin.U16LE(d, offset))
	case p.model == GEO20 || p.model == VEO20 || p.model == VEO30 || p.model == OC1A ||
		p.model == OC1B || p.model == OC1C || p.model == OCI || p.model == A300:
		return (int(d[offset+4]) + int(d[offset+5])<<8) & 0x0FFF
	case p.model == Atom1:
		return int(d[offset+3]) * 16
	default:
		return (int(d[offset+2]) + int(d[offset+3])<<8) & 0x0FFF
	}
}
