// Package timefmt converts between wall-clock instants and the canonical
// stored time representation, and renders localized date/time labels.
//
// Stored times are fixed to UTC+9 and serialized as "2006-01-02 15:04:05":
// lexicographic order matches chronological order and there is no zone
// suffix to upset collation.
package timefmt

import (
	"errors"
	"fmt"
	"time"
)

// StoredLayout is the canonical stored time layout.
const StoredLayout = "2006-01-02 15:04:05"

// ErrInvalidTimestamp reports a stored time that does not parse.
// Callers keep the affected message but omit it from date-grouping.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Locale holds the fixed formatting configuration for rendered labels.
type Locale struct {
	// AM and PM are the meridiem markers.
	AM string
	PM string

	// DateLayout is the Go layout for calendar date labels.
	DateLayout string
}

// LocaleKorean renders labels the way the chat's original audience reads them.
var LocaleKorean = Locale{AM: "오전", PM: "오후", DateLayout: "2006년 1월 2일"}

// LocaleEnglish is an alternative label locale.
var LocaleEnglish = Locale{AM: "AM", PM: "PM", DateLayout: "January 2, 2006"}

// Codec encodes and decodes stored times for one zone/locale configuration.
type Codec struct {
	loc    *time.Location
	locale Locale
}

// New returns the default codec: UTC+9 storage, Korean labels.
func New() Codec {
	return Codec{
		loc:    time.FixedZone("KST", 9*60*60),
		locale: LocaleKorean,
	}
}

// NewWithLocale returns a codec with the default zone and the given locale.
func NewWithLocale(locale Locale) Codec {
	c := New()
	c.locale = locale
	return c
}

// Encode shifts an instant to the fixed reference offset and serializes it.
func (c Codec) Encode(t time.Time) string {
	return t.In(c.loc).Format(StoredLayout)
}

// Decode parses a stored time string.
func (c Codec) Decode(stored string) (time.Time, error) {
	t, err := time.ParseInLocation(StoredLayout, stored, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, stored)
	}
	return t, nil
}

// FormatDate renders the localized calendar date label for an instant.
// A zero instant renders empty.
func (c Codec) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(c.loc).Format(c.locale.DateLayout)
}

// FormatTime renders the localized 12-hour clock label for an instant:
// the meridiem marker, a single space, then hour:minute.
// A zero instant renders empty.
func (c Codec) FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	local := t.In(c.loc)
	marker := c.locale.AM
	if local.Hour() >= 12 {
		marker = c.locale.PM
	}
	hour := local.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %d:%02d", marker, hour, local.Minute())
}
