// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package godc

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Context is the process-wide logging and cancellation carrier injected
// into every device and parser. It is immutable after construction;
// WithField/WithFields return a new Context rather than mutating the
// receiver, mirroring logrus.Entry's own value-returning API.
type Context struct {
	log    *logrus.Entry
	cancel context.Context
}

// NewContext builds a Context from a logrus logger and a cancellation
// context.Context. Pass context.Background() when cancellation is not
// needed.
func NewContext(logger *logrus.Logger, cancel context.Context) Context {
	if logger == nil {
		logger = logrus.New()
	}
	if cancel == nil {
		cancel = context.Background()
	}
	return Context{log: logrus.NewEntry(logger), cancel: cancel}
}

// WithField returns a copy of c whose logger carries an additional field,
// in the style of logrus.Entry.WithField.
func (c Context) WithField(key string, value interface{}) Context {
	c.log = c.log.WithField(key, value)
	return c
}

// WithFields returns a copy of c whose logger carries additional fields.
func (c Context) WithFields(fields logrus.Fields) Context {
	c.log = c.log.WithFields(fields)
	return c
}

// Log returns the *logrus.Entry attached to c.
func (c Context) Log() *logrus.Entry {
	if c.log == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return c.log
}

// Cancelled reports whether the context's cancellation signal has fired.
// The device layer checks this at each packet boundary.
func (c Context) Cancelled() bool {
	if c.cancel == nil {
		return false
	}
	select {
	case <-c.cancel.Done():
		return true
	default:
		return false
	}
}

// Done returns the underlying cancellation channel, for select loops that
// need to race it against I/O.
func (c Context) Done() <-chan struct{} {
	if c.cancel == nil {
		return nil
	}
	return c.cancel.Done()
}
