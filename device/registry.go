// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package device collects the godc.Device constructors for the two
// families fully implemented at the transport layer. The remaining nine
// families are decode-only: their thin open/read/dump wrappers live
// outside this library, which implements their parser half.
package device

import (
	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/device/divesystemidive"
	"github.com/divecomputer/godc/device/suuntocommon2"
	"github.com/divecomputer/godc/transport"
)

// NewDiveSystemIDive constructs a DiveSystem iDive device bound to the
// named serial port.
func NewDiveSystemIDive(ctx godc.Context, portName string, port transport.Port) godc.Device {
	return divesystemidive.New(ctx, portName, port)
}

// NewSuuntoCommon2 constructs a Suunto Common2 device for the given
// memory layout, communicating through packet.
func NewSuuntoCommon2(ctx godc.Context, layout suuntocommon2.Layout, packet suuntocommon2.Packet) godc.Device {
	return suuntocommon2.New(ctx, layout, packet)
}
