// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package divesystemidive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/bin"
	"github.com/divecomputer/godc/transport"
)

// frame builds one DiveSystem response frame: START, length byte,
// payload (payload already includes the command echo byte and the
// trailing ACK/NAK byte), CRC-CCITT over start+length+payload.
func frame(payload []byte) []byte {
	f := make([]byte, 0, len(payload)+4)
	f = append(f, start, byte(len(payload)))
	f = append(f, payload...)
	crc := bin.CRCCCITT(f)
	f = append(f, byte(crc>>8), byte(crc))
	return f
}

func TestForeachSingleDiveNoSamples(t *testing.T) {
	id := append([]byte{cmdID}, make([]byte, szID)...)
	id = append(id, ack)

	rng := make([]byte, szRange)
	// first = last = 1
	rng[0], rng[1] = 1, 0
	rng[2], rng[3] = 1, 0
	rngFrame := append([]byte{cmdRange}, rng...)
	rngFrame = append(rngFrame, ack)

	header := append([]byte{cmdHeader}, make([]byte, szHeader)...)
	// nsamples = 0 at stripped offset 1 (raw index 2, 2 bytes LE)
	header[2], header[3] = 0, 0
	// non-zero fingerprint bytes at stripped offset 7 (raw index 8..11) so
	// the default zero device fingerprint doesn't spuriously match and
	// short-circuit before the callback runs
	header[8], header[9], header[10], header[11] = 0xAA, 0xBB, 0xCC, 0xDD
	header = append(header, ack)

	fake := transport.NewFake(frame(id), frame(rngFrame), frame(header))

	dev := New(godc.NewContext(nil, nil), "fake", fake)
	require.Equal(t, godc.StatusSuccess, dev.Open())

	var callbacks int
	status := dev.Foreach(func(data, fingerprint []byte) bool {
		callbacks++
		return true
	})
	require.Equal(t, godc.StatusSuccess, status)
	assert.Equal(t, 1, callbacks)
}

// A BUSY NAK is transient: the transfer retries the same command once
// per attempt (with a single sleep between attempts, supplied by the
// retry combinator) until the device answers with an ACK.
func TestTransferRetriesBusyNAK(t *testing.T) {
	busyNAK := []byte{cmdID, busy, nak}

	id := append([]byte{cmdID}, make([]byte, szID)...)
	id = append(id, ack)

	fake := transport.NewFake(frame(busyNAK), frame(id))

	dev := New(godc.NewContext(nil, nil), "fake", fake).(*device)
	answer, err := dev.transfer([]byte{cmdID, 0xED}, szID)
	require.NoError(t, err)
	assert.Len(t, answer, szID)
	// The command was sent twice: once answered BUSY, once answered ACK.
	assert.Len(t, fake.Written, 2)
	assert.Equal(t, fake.Written[0], fake.Written[1])
}

func TestSetFingerprintRejectsWrongSize(t *testing.T) {
	fake := transport.NewFake()
	dev := New(godc.NewContext(nil, nil), "fake", fake)
	assert.Equal(t, godc.StatusInvalidArgs, dev.SetFingerprint([]byte{1, 2, 3}))
	assert.Equal(t, godc.StatusSuccess, dev.SetFingerprint([]byte{1, 2, 3, 4}))
	assert.Equal(t, godc.StatusSuccess, dev.SetFingerprint(nil))
}
