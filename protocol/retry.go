// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package protocol holds the generic retry combinator shared by the
// framed device protocol implementations (DiveSystem and Suunto
// Common2), so neither carries its own ad-hoc retry counter.
package protocol

import (
	"time"

	"github.com/divecomputer/godc"
)

// Do runs fn up to maxAttempts times, retrying only while the error it
// returns satisfies isTransient, sleeping sleepBetween before each retry.
// It returns fn's last error if every attempt is exhausted.
//
// fn's result type is left to the caller (DiveSystem's receive loop
// needs a decoded frame; Suunto Common2's packet loop fills a
// caller-supplied buffer and returns struct{}), so Do is generic over T
// rather than returning
// godc.Status directly.
func Do[T any](maxAttempts int, sleepBetween time.Duration, isTransient func(error) bool, fn func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, err := fn(attempt)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !isTransient(err) {
			return zero, err
		}
		if attempt < maxAttempts-1 {
			time.Sleep(sleepBetween)
		}
	}
	return zero, lastErr
}

// IsTransientStatus adapts godc.Status's IsTransient to the
// isTransient predicate Do expects, for callers whose fn returns a
// godc.Status-typed error.
func IsTransientStatus(err error) bool {
	st, ok := err.(godc.Status)
	return ok && st.IsTransient()
}
