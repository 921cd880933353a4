// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import "time"

// LocalTime converts Unix epoch seconds into the broken-down local
// time fields a parser's GetDateTime returns.
func LocalTime(ticks int64) (year, month, day, hour, minute, second int) {
	t := time.Unix(ticks, 0).Local()
	return t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()
}

// UTCTime converts Unix epoch seconds into broken-down UTC time fields,
// used by families that store their own UTC offset.
func UTCTime(ticks int64) (year, month, day, hour, minute, second int) {
	t := time.Unix(ticks, 0).UTC()
	return t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()
}

// Hour12to24 extends a 12-hour clock reading to 24-hour form given an
// AM/PM flag.
func Hour12to24(hour int, pm bool) int {
	h := hour % 12
	if pm {
		h += 12
	}
	return h
}

// RecoverDecade recovers a year's decade from the host clock for
// records that store only the final decimal digit: choose the closest
// decade such that the stored digit matches and the resulting year is
// <= now, never stepping back more than one decade.
func RecoverDecade(digit int, now time.Time) int {
	currentYear := now.Year()
	decade := currentYear - currentYear%10
	year := decade + digit
	if year > currentYear {
		year -= 10
	}
	return year
}
