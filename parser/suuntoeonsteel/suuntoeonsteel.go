// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package suuntoeonsteel implements the godc.Parser for the Suunto
// EonSteel/EON Core family. The dive blob is a small self-describing
// container ("SBEM"): one stream of entries, each carrying a type
// number plus a human-readable type descriptor string
// ("<PTH>.../<FRM>.../<MOD>...") the first time that type is seen,
// followed by a run of type-tagged records. Decoding requires
// remembering each type's descriptor across the whole traversal, so
// both the field cache and the sample walk replay the same traversal
// rather than indexing into a fixed layout.
package suuntoeonsteel

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/sample"
)

const maxType = 512

var errTruncated = errors.New("suuntoeonsteel: truncated entry")

type typeDesc struct {
	desc, format, mod string
}

type eonVisitor func(typ uint16, desc *typeDesc, data []byte)

type cache struct {
	populated      bool
	divetimeMs     int
	maxdepth       float64
	avgdepth       float64
	gasmix         []sample.GasMix
	atmospheric    float64
	hasAtmospheric bool
	strings        []string
}

type parser struct {
	ctx   godc.Context
	model int
	types [maxType]typeDesc
	data  []byte
	cache cache
}

// New constructs a Suunto EonSteel/EON Core parser. model distinguishes
// the EON Steel from the EON Core and DX lines; the log container is
// self-describing, so the model only matters to callers that want it
// echoed back, not to the decoder.
func New(ctx godc.Context, model int) godc.Parser {
	return &parser{ctx: ctx, model: model}
}

func (p *parser) SetData(data []byte) {
	p.data = data
	for i := range p.types {
		p.types[i] = typeDesc{}
	}
	p.cache = cache{}
	p.populateCache()
}

// GetDateTime decodes the dive's start time. The container itself
// carries no timestamp field; the download layer recovers the time
// from the dive's file name and prepends it as a 4-byte little-endian
// Unix pre-header ahead of the "SBEM" marker.
func (p *parser) GetDateTime() (sample.DateTime, godc.Status) {
	if len(p.data) < 4 {
		return sample.DateTime{}, godc.StatusUnsupported
	}
	ticks := int64(binary.LittleEndian.Uint32(p.data))
	year, month, day, hour, minute, second := bin.UTCTime(ticks)
	return sample.DateTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}, godc.StatusSuccess
}

func (p *parser) GetField(kind godc.FieldKind, index int, value interface{}) godc.Status {
	c := p.cache
	switch kind {
	case godc.FieldDiveTime:
		*(value.(*int)) = c.divetimeMs / 1000
	case godc.FieldMaxDepth:
		*(value.(*float64)) = c.maxdepth
	case godc.FieldAvgDepth:
		if c.avgdepth == 0 {
			return godc.StatusUnsupported
		}
		*(value.(*float64)) = c.avgdepth
	case godc.FieldGasMixCount:
		*(value.(*int)) = len(c.gasmix)
	case godc.FieldGasMix:
		if index < 0 || index >= len(c.gasmix) {
			return godc.StatusUnsupported
		}
		gm := value.(*sample.GasMix)
		*gm = c.gasmix[index]
		gm.Nitrogen = 1.0 - gm.Oxygen - gm.Helium
	case godc.FieldAtmospheric:
		if !c.hasAtmospheric {
			return godc.StatusUnsupported
		}
		*(value.(*float64)) = c.atmospheric
	case godc.FieldString:
		if index < 0 || index >= len(c.strings) {
			return godc.StatusUnsupported
		}
		*(value.(*string)) = c.strings[index]
	default:
		return godc.StatusUnsupported
	}
	return godc.StatusSuccess
}

func (p *parser) SamplesForeach(visit godc.Visitor) godc.Status {
	w := &sampleWalk{}
	p.traverseData(func(typ uint16, desc *typeDesc, data []byte) {
		if w.stopped {
			return
		}
		w.handle(typ, data, p.cache.gasmix, visit)
	})
	return godc.StatusSuccess
}

// recordType parses one "<PTH>name\n<FRM>format\n<MOD>mod" type
// descriptor and stores it for typ, overwriting any prior descriptor
// (entries periodically redeclare the types they use).
func (p *parser) recordType(typ uint16, name string) {
	if int(typ) >= maxType {
		return
	}
	var desc typeDesc
	for _, part := range strings.Split(name, "\n") {
		if len(part) < 5 || part[0] != '<' || part[4] != '>' {
			return
		}
		value := part[5:]
		switch part[1] {
		case 'P', 'G':
			desc.desc = value
		case 'F':
			desc.format = value
		case 'M':
			desc.mod = value
		default:
			return
		}
	}
	p.types[typ] = desc
}

// traverseEntry decodes one container entry starting at buf[0] and
// returns the number of bytes it consumed.
func (p *parser) traverseEntry(buf []byte, visit eonVisitor) (int, error) {
	if len(buf) < 2 {
		return 0, errTruncated
	}
	if buf[0] != 0 {
		return 0, fmt.Errorf("suuntoeonsteel: bad dive entry (%#02x)", buf[0])
	}
	textlen := int(buf[1])
	nameOff := 2
	if textlen == 0xff {
		if len(buf) < nameOff+4 {
			return 0, errTruncated
		}
		textlen = int(binary.LittleEndian.Uint32(buf[nameOff:]))
		nameOff += 4
	}
	if len(buf) < nameOff+2 {
		return 0, errTruncated
	}
	typ := binary.LittleEndian.Uint16(buf[nameOff:])
	descOff := nameOff + 2
	dataOff := nameOff + textlen
	if descOff >= len(buf) || dataOff > len(buf) {
		return 0, errTruncated
	}
	if buf[descOff] != '<' {
		return 0, errTruncated
	}
	descLen := textlen - 3
	if descLen < 0 || descOff+descLen > len(buf) {
		return 0, errTruncated
	}
	p.recordType(typ, string(buf[descOff:descOff+descLen]))

	end := dataOff
	for end < len(buf) && buf[end] != 0 {
		recType := uint16(buf[end])
		end++
		if recType == 0xff {
			if end+2 > len(buf) {
				return 0, errTruncated
			}
			recType = binary.LittleEndian.Uint16(buf[end:])
			end += 2
		}
		if end >= len(buf) {
			return 0, errTruncated
		}
		length := int(buf[end])
		end++
		if length == 0xff {
			if end+4 > len(buf) {
				return 0, errTruncated
			}
			length = int(binary.LittleEndian.Uint32(buf[end:]))
			end += 4
		}
		if end+length > len(buf) {
			return 0, errTruncated
		}
		if int(recType) < maxType && p.types[recType].desc != "" {
			visit(recType, &p.types[recType], buf[end:end+length])
		}
		end += length
	}
	return end, nil
}

// traverseData walks every entry of the "SBEM" container once,
// invoking visit for each type-tagged record whose type has already
// been named by a descriptor earlier in the stream.
func (p *parser) traverseData(visit eonVisitor) {
	data := p.data
	if len(data) < 12 || string(data[4:8]) != "SBEM" {
		return
	}
	data = data[12:]
	for len(data) > 4 {
		n, err := p.traverseEntry(data, visit)
		if err != nil || n <= 0 {
			return
		}
		data = data[n:]
	}
}

func (p *parser) populateCache() {
	c := cache{}
	p.traverseData(func(typ uint16, desc *typeDesc, data []byte) {
		switch typ {
		case 0x0001:
			if len(data) >= 4 {
				c.divetimeMs += int(binary.LittleEndian.Uint16(data))
				setMaxDepth(&c, binary.LittleEndian.Uint16(data[2:]))
			}
		case 0x0002:
			if len(data) >= 2 {
				c.divetimeMs += int(binary.LittleEndian.Uint16(data))
			}
		case 0x0003:
			if len(data) >= 2 {
				setMaxDepth(&c, binary.LittleEndian.Uint16(data))
			}
		case 0x000d:
			c.gasmix = append(c.gasmix, sample.GasMix{})
		case 0x000e:
			if len(data) >= 1 && len(c.gasmix) > 0 {
				c.gasmix[len(c.gasmix)-1].Oxygen = float64(data[0]) / 100.0
			}
		case 0x000f:
			if len(data) >= 1 && len(c.gasmix) > 0 {
				c.gasmix[len(c.gasmix)-1].Helium = float64(data[0]) / 100.0
			}
		case 0x0011:
			if len(data) > 0 {
				c.strings = append(c.strings, cString(data))
			}
		default:
			if typ > 255 {
				traverseDynamicField(&c, desc.desc, data)
			}
		}
	})
	c.populated = true
	p.cache = c
}

func setMaxDepth(c *cache, raw uint16) {
	if raw == 0xffff {
		return
	}
	depth := float64(raw) / 100.0
	if depth > c.maxdepth {
		c.maxdepth = depth
	}
}

// traverseDynamicField resolves the "sml.DeviceLog.Device.*" and
// "sml.DeviceLog.Header.*" descriptor paths used for device and dive
// metadata strings; every other dynamic type is ignored.
func traverseDynamicField(c *cache, name string, data []byte) {
	const smlPrefix = "sml.DeviceLog."
	if !strings.HasPrefix(name, smlPrefix) {
		return
	}
	name = name[len(smlPrefix):]
	switch {
	case strings.HasPrefix(name, "Device."):
		traverseDeviceField(c, name[len("Device."):], data)
	case strings.HasPrefix(name, "Header."):
		traverseHeaderField(c, name[len("Header."):], data)
	}
}

func traverseDeviceField(c *cache, name string, data []byte) {
	switch name {
	case "SerialNumber":
		c.strings = append(c.strings, cString(data))
	case "Info.HW":
		c.strings = append(c.strings, cString(data))
	case "Info.SW":
		c.strings = append(c.strings, cString(data))
	case "Info.BatteryAtStart":
		c.strings = append(c.strings, cString(data))
	case "Info.BatteryAtEnd":
		c.strings = append(c.strings, cString(data))
	}
}

func traverseHeaderField(c *cache, name string, data []byte) {
	switch name {
	case "Depth.Max":
		if len(data) < 4 {
			return
		}
		d := le32Float(data)
		if d > c.maxdepth {
			c.maxdepth = d
		}
	case "Depth.Avg":
		if len(data) < 4 {
			return
		}
		c.avgdepth = le32Float(data)
	case "Diving.SurfacePressure":
		if len(data) < 4 {
			return
		}
		pascals := binary.LittleEndian.Uint32(data)
		c.atmospheric = float64(pascals) / 100000.0
		c.hasAtmospheric = true
	case "DateTime", "Diving.Algorithm", "Diving.DiveMode":
		c.strings = append(c.strings, cString(data))
	case "Diving.Conservatism":
		if len(data) < 1 {
			return
		}
		c.strings = append(c.strings, fmt.Sprintf("P%d", int(int8(data[0]))))
	}
}

func le32Float(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// sampleWalk carries the running elapsed time and the event sub-type
// latched by the preceding type record: each notification, warning and
// alarm arrives split across a type record and a following value
// record.
type sampleWalk struct {
	elapsed                                       int
	stopped                                       bool
	stateType, notifyType, warningType, alarmType byte
}

func (w *sampleWalk) emit(visit godc.Visitor, s sample.Sample) bool {
	s.Time = w.elapsed
	if visit == nil {
		return true
	}
	if !visit(s) {
		w.stopped = true
		return false
	}
	return true
}

func (w *sampleWalk) handle(typ uint16, data []byte, gasmix []sample.GasMix, visit godc.Visitor) {
	switch typ {
	case 0x0001:
		if len(data) < 14 {
			return
		}
		w.time(binary.LittleEndian.Uint16(data), visit)
		w.depth(binary.LittleEndian.Uint16(data[2:]), visit)
		w.temperature(int16(binary.LittleEndian.Uint16(data[4:])), visit)
		w.deco(int16(binary.LittleEndian.Uint16(data[8:])), binary.LittleEndian.Uint16(data[10:]), binary.LittleEndian.Uint16(data[12:]), visit)
	case 0x0002:
		if len(data) < 2 {
			return
		}
		w.time(binary.LittleEndian.Uint16(data), visit)
	case 0x0003:
		if len(data) < 2 {
			return
		}
		w.depth(binary.LittleEndian.Uint16(data), visit)
	case 0x000a:
		if len(data) < 3 {
			return
		}
		w.pressure(data[0], binary.LittleEndian.Uint16(data[1:]), visit)
	case 0x0013:
		if len(data) > 0 {
			w.stateType = data[0]
		}
	case 0x0015:
		if len(data) > 0 {
			w.notifyType = data[0]
		}
	case 0x0016:
		if len(data) > 0 {
			w.notifyValue(data[0], visit)
		}
	case 0x0017:
		if len(data) > 0 {
			w.warningType = data[0]
		}
	case 0x0018:
		if len(data) > 0 {
			w.warningValue(data[0], visit)
		}
	case 0x0019:
		if len(data) > 0 {
			w.alarmType = data[0]
		}
	case 0x001a:
		if len(data) > 0 {
			w.alarmValue(data[0], visit)
		}
	case 0x001c:
		if len(data) < 2 {
			return
		}
		w.bookmark(binary.LittleEndian.Uint16(data), visit)
	case 0x001d:
		if len(data) < 2 {
			return
		}
		w.gasSwitch(binary.LittleEndian.Uint16(data), gasmix, visit)
	}
}

func (w *sampleWalk) time(delta uint16, visit godc.Visitor) {
	w.elapsed += int(delta) / 1000
	w.emit(visit, sample.Sample{Kind: sample.KindTime})
}

func (w *sampleWalk) depth(raw uint16, visit godc.Visitor) {
	if raw == 0xffff {
		return
	}
	w.emit(visit, sample.Sample{Kind: sample.KindDepth, Depth: float64(raw) / 100.0})
}

func (w *sampleWalk) temperature(raw int16, visit godc.Visitor) {
	if raw < -3000 {
		return
	}
	w.emit(visit, sample.Sample{Kind: sample.KindTemperature, Temperature: float64(raw) / 10.0})
}

func (w *sampleWalk) deco(ndl int16, tts, ceiling uint16, visit godc.Visitor) {
	s := sample.Sample{Kind: sample.KindDeco}
	if ndl < 0 {
		s.Deco.Type = sample.DecoStop
		if tts != 0xffff {
			s.Deco.Time = int(tts)
		}
		if ceiling != 0xffff {
			s.Deco.Depth = float64(ceiling) / 100.0
		}
	} else {
		s.Deco.Type = sample.DecoNDL
		s.Deco.Time = int(ndl)
	}
	w.emit(visit, s)
}

func (w *sampleWalk) pressure(idx byte, raw uint16, visit godc.Visitor) {
	if raw == 0xffff {
		return
	}
	w.emit(visit, sample.Sample{Kind: sample.KindPressure, TankIndex: int(idx) - 1, Pressure: float64(raw) / 100.0})
}

func (w *sampleWalk) bookmark(idx uint16, visit godc.Visitor) {
	s := sample.Sample{Kind: sample.KindEvent}
	s.Event.Type = sample.EventBookmark
	s.Event.Value = int(idx)
	w.emit(visit, s)
}

func (w *sampleWalk) gasSwitch(idx uint16, gasmix []sample.GasMix, visit godc.Visitor) {
	if idx < 1 || int(idx) > len(gasmix) {
		return
	}
	mix := gasmix[idx-1]
	s := sample.Sample{Kind: sample.KindGasChange}
	s.GasChange.Oxygen = mix.Oxygen
	s.GasChange.Helium = mix.Helium
	s.GasChange.Mix = int(idx) - 1
	w.emit(visit, s)
}

// notifyEvents, warningEvents and alarmEvents translate the EonSteel's
// notification/warning/alarm sub-type bytes into the shared EventType
// taxonomy. Several sub-types (tissue level, air time, deep stop) have
// no equivalent in that taxonomy and are dropped.
var notifyEvents = [16]sample.EventType{
	sample.EventNone, sample.EventNone, sample.EventNone, sample.EventNone,
	sample.EventNone, sample.EventNone, sample.EventSafetyStop, sample.EventSafetyStop,
	sample.EventCeiling, sample.EventNone, sample.EventNone, sample.EventNone,
	sample.EventNone, sample.EventNone, sample.EventNone, sample.EventNone,
}

var warningEvents = [14]sample.EventType{
	sample.EventNone, sample.EventViolation, sample.EventSafetyStop, sample.EventNone,
	sample.EventNone, sample.EventNone, sample.EventNone, sample.EventNone,
	sample.EventNone, sample.EventNone, sample.EventCeiling, sample.EventCeiling,
	sample.EventCeiling, sample.EventWarning,
}

var alarmEvents = [7]sample.EventType{
	sample.EventCeiling, sample.EventAscent, sample.EventNone, sample.EventViolation,
	sample.EventCeiling, sample.EventAlarm, sample.EventAlarm,
}

func (w *sampleWalk) notifyValue(value byte, visit godc.Visitor) {
	if int(w.notifyType) >= len(notifyEvents) {
		return
	}
	emitTaggedEvent(w, notifyEvents[w.notifyType], value, visit)
}

func (w *sampleWalk) warningValue(value byte, visit godc.Visitor) {
	if int(w.warningType) >= len(warningEvents) {
		return
	}
	emitTaggedEvent(w, warningEvents[w.warningType], value, visit)
}

func (w *sampleWalk) alarmValue(value byte, visit godc.Visitor) {
	if int(w.alarmType) >= len(alarmEvents) {
		return
	}
	emitTaggedEvent(w, alarmEvents[w.alarmType], value, visit)
}

func emitTaggedEvent(w *sampleWalk, eventType sample.EventType, value byte, visit godc.Visitor) {
	if eventType == sample.EventNone {
		return
	}
	s := sample.Sample{Kind: sample.KindEvent}
	s.Event.Type = eventType
	if value != 0 {
		s.Event.Value = 1
	}
	w.emit(visit, s)
}
