// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package suuntocommon2 implements the godc.Parser for the Suunto
// "Common2" memory family (Vyper2, D9, Vyper Air, HelO2, Cobra2, Zoop),
// the parser half of the ring-buffer family whose device-side traversal
// lives in device/suuntocommon2. The family's dive blob is the
// [data...] region device/suuntocommon2.Foreach already strips of its
// 4-byte prev/next pointer pair: a fixed header (BCD date/time, sample
// interval, starting gas index) followed by a delta-coded depth sample
// stream terminated by a sentinel byte, in the same spirit as the
// classic Suunto Eon encoding (parser/suuntoeon) but with event and
// end-of-record byte values reserved at the high end of the range
// instead of Eon's 0x7d..0x82 band, and gas mixes resolved indirectly
// through the device's own configured gas-mix table rather than stored
// inline per dive.
package suuntocommon2

import (
	"time"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

const (
	sentinel      = 0xFF
	eventGasMix   = 0xFE
	eventDecoStop = 0xFD
	eventAscent   = 0xFC
)

// Layout describes the fixed offsets of one Common2-family dive blob
// (post prev/next stripping). TempOffset is -1 when the model doesn't
// report a minimum temperature.
type Layout struct {
	HeaderSize     int
	DateOffset     int // 6 bytes: BCD year, month, day, hour, minute, second
	IntervalOffset int // 1 byte, seconds between depth samples
	GasMixOffset   int // 1 byte, index into the device's gas-mix table used at dive start
	TempOffset     int // 1 byte signed °C, or -1 if unsupported
}

// DeviceReader resolves the device-wide configuration a Common2 dive
// blob references only by index: gas mixes are set once per device, not
// stored inline in every dive record.
type DeviceReader interface {
	// GasMix returns the device's index'th configured gas mix. ok is
	// false past the last configured mix.
	GasMix(index int) (sample.GasMix, bool)
}

type cache struct {
	populated bool
	divetime  int
	maxdepth  float64
}

type parser struct {
	ctx    godc.Context
	layout Layout
	dev    DeviceReader
	data   []byte
	cache  cache
}

// New constructs a Suunto Common2 parser for the given blob layout and
// device vtable. dev may be nil, in which case gas-mix queries fall
// back to a single 21% air mix.
func New(ctx godc.Context, layout Layout, dev DeviceReader) godc.Parser {
	return &parser{ctx: ctx, layout: layout, dev: dev}
}

func (p *parser) SetData(data []byte) {
	p.data = data
	p.cache = cache{}
}

func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	d := p.data
	off := p.layout.DateOffset
	if len(d) < off+6 {
		return sample.DateTime{}, godc.StatusDataFormat
	}
	for i := 0; i < 6; i++ {
		if !bin.IsValidBCD(d[off+i]) {
			return sample.DateTime{}, godc.StatusDataFormat
		}
	}
	return sample.DateTime{
		Year:   bin.RecoverDecade(bin.BCD2Dec(d[off])%10, nowFunc()),
		Month:  bin.BCD2Dec(d[off+1]),
		Day:    bin.BCD2Dec(d[off+2]),
		Hour:   bin.BCD2Dec(d[off+3]),
		Minute: bin.BCD2Dec(d[off+4]),
		Second: bin.BCD2Dec(d[off+5]),
	}, godc.StatusSuccess
}

// nowFunc is the clock used for decade recovery; it is a variable so a
// test can pin it.
var nowFunc = time.Now

func (p *parser) gasMix(index int) sample.GasMix {
	if p.dev != nil {
		if gm, ok := p.dev.GasMix(index); ok {
			return gm
		}
	}
	return sample.GasMix{Oxygen: 0.21, Helium: 0, Nitrogen: 0.79}
}

// cacheFields walks the sample stream once to derive divetime and
// maxdepth.
func (p *parser) cacheFields() godc.Status {
	if p.cache.populated {
		return godc.StatusSuccess
	}
	var divetime int
	var maxdepth float64
	st := p.walk(func(s sample.Sample) bool {
		if s.Kind == sample.KindTime {
			divetime = s.Time
		}
		if s.Kind == sample.KindDepth && s.Depth > maxdepth {
			maxdepth = s.Depth
		}
		return true
	})
	if st != godc.StatusSuccess {
		return st
	}
	p.cache = cache{populated: true, divetime: divetime, maxdepth: maxdepth}
	return godc.StatusSuccess
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	if len(p.data) < p.layout.HeaderSize {
		return godc.StatusDataFormat
	}
	if st := p.cacheFields(); st != godc.StatusSuccess {
		return st
	}
	d := p.data
	l := p.layout

	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = p.cache.divetime
	case godc.FieldMaxDepth:
		*(value.(*float64)) = p.cache.maxdepth
	case godc.FieldGasMixCount:
		*(value.(*int)) = 1
	case godc.FieldGasMix:
		if index != 0 {
			return godc.StatusInvalidArgs
		}
		*(value.(*sample.GasMix)) = p.gasMix(int(d[l.GasMixOffset]))
	case godc.FieldTemperatureMinimum:
		if l.TempOffset < 0 {
			return godc.StatusUnsupported
		}
		*(value.(*float64)) = float64(int8(d[l.TempOffset]))
	case godc.FieldString:
		return godc.StatusUnsupported
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	if len(p.data) < p.layout.HeaderSize {
		return godc.StatusDataFormat
	}
	return p.walk(visit)
}

// walk decodes the delta-coded depth stream once; both SamplesForeach
// and cacheFields share this traversal (cacheFields fills the cache
// through its own visitor; a nil visitor only walks the stream).
func (p *parser) walk(visit godc.Visitor) godc.Status {
	d := p.data
	l := p.layout
	interval := int(d[l.IntervalOffset])
	if interval <= 0 {
		interval = 10
	}
	startMix := int(d[l.GasMixOffset])

	emit := func(s sample.Sample) bool {
		return visit == nil || visit(s)
	}

	if !emit(sample.Sample{Kind: sample.KindTime, Time: 0}) {
		return godc.StatusSuccess
	}
	if !emit(sample.Sample{Kind: sample.KindDepth, Time: 0, Depth: 0}) {
		return godc.StatusSuccess
	}
	gc := sample.Sample{Kind: sample.KindGasChange, Time: 0}
	gm := p.gasMix(startMix)
	gc.GasChange.Oxygen, gc.GasChange.Helium, gc.GasChange.Mix = gm.Oxygen, gm.Helium, startMix
	if !emit(gc) {
		return godc.StatusSuccess
	}

	depth := 0.0
	t := 0
	currentMix := startMix
	offset := l.HeaderSize
	for offset < len(d) && d[offset] != sentinel {
		v := d[offset]
		offset++

		switch v {
		case eventGasMix:
			if offset >= len(d) {
				return godc.StatusDataFormat
			}
			currentMix = int(d[offset])
			offset++
			gm := p.gasMix(currentMix)
			gc := sample.Sample{Kind: sample.KindGasChange, Time: t}
			gc.GasChange.Oxygen, gc.GasChange.Helium, gc.GasChange.Mix = gm.Oxygen, gm.Helium, currentMix
			if !emit(gc) {
				return godc.StatusSuccess
			}
			continue
		case eventDecoStop:
			ev := sample.Sample{Kind: sample.KindEvent, Time: t}
			ev.Event.Type = sample.EventDecoStop
			if !emit(ev) {
				return godc.StatusSuccess
			}
			continue
		case eventAscent:
			ev := sample.Sample{Kind: sample.KindEvent, Time: t}
			ev.Event.Type = sample.EventAscent
			if !emit(ev) {
				return godc.StatusSuccess
			}
			continue
		}

		t += interval
		depth += float64(int8(v)) / 10.0
		if depth < 0 {
			depth = 0
		}
		if !emit(sample.Sample{Kind: sample.KindTime, Time: t}) {
			return godc.StatusSuccess
		}
		if !emit(sample.Sample{Kind: sample.KindDepth, Time: t, Depth: depth}) {
			return godc.StatusSuccess
		}
	}

	if offset >= len(d) {
		return godc.StatusDataFormat
	}

	return godc.StatusSuccess
}
