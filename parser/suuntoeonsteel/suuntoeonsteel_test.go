// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package suuntoeonsteel

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/sample"
)

// buildEntry lays out one SBEM container entry: a type descriptor
// declaration for typ, followed by one sub-record of that type
// carrying payload.
func buildEntry(typ uint16, desc string, payload []byte) []byte {
	descLen := len(desc)
	textlen := descLen + 3

	buf := []byte{0, byte(textlen)}
	typeBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(typeBytes, typ)
	buf = append(buf, typeBytes...)
	buf = append(buf, []byte(desc)...)
	buf = append(buf, 0) // implicit terminator byte consumed by textlen

	buf = append(buf, byte(typ), byte(len(payload)))
	buf = append(buf, payload...)
	buf = append(buf, 0) // end-of-records terminator

	return buf
}

func buildContainer(timestamp uint32, entry []byte) []byte {
	head := make([]byte, 12)
	binary.LittleEndian.PutUint32(head, timestamp)
	copy(head[4:8], "SBEM")
	return append(head, entry...)
}

func u16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func TestGetDateTimeFromPreHeader(t *testing.T) {
	p := New(godc.NewContext(nil, nil), 0)
	p.SetData(buildContainer(1700000000, buildEntry(0x0002, "<PTH>sml.DeviceLog.Time", u16(1000))))

	dt, status := p.GetDateTime()
	require.Equal(t, godc.StatusSuccess, status)
	assert.Equal(t, 2023, dt.Year)
}

func TestSamplesForeachDepth(t *testing.T) {
	depthPayload := u16(250) // 2.50m
	data := buildContainer(1700000000, buildEntry(0x0003, "<PTH>sml.DeviceLog.Data.Depth", depthPayload))

	p := New(godc.NewContext(nil, nil), 0)
	p.SetData(data)

	var depths []float64
	status := p.SamplesForeach(func(s sample.Sample) bool {
		if s.Kind == sample.KindDepth {
			depths = append(depths, s.Depth)
		}
		return true
	})
	require.Equal(t, godc.StatusSuccess, status)
	require.Len(t, depths, 1)
	assert.InDelta(t, 2.5, depths[0], 1e-9)
}

func TestGasMixCache(t *testing.T) {
	entry := buildEntry(0x000d, "<PTH>sml.DeviceLog.Gas.State", []byte{1})
	data := buildContainer(1700000000, entry)

	p := New(godc.NewContext(nil, nil), 0)
	p.SetData(data)

	var count int
	require.Equal(t, godc.StatusSuccess, p.GetField(godc.FieldGasMixCount, 0, &count))
	assert.Equal(t, 1, count)
}

func TestTruncatedEntryReturnsNoSamplesWithoutPanic(t *testing.T) {
	data := buildContainer(1700000000, []byte{0, 10})
	p := New(godc.NewContext(nil, nil), 0)
	p.SetData(data)

	var divetime int
	status := p.GetField(godc.FieldDiveTime, 0, &divetime)
	require.Equal(t, godc.StatusSuccess, status)
	assert.Equal(t, 0, divetime)
}
