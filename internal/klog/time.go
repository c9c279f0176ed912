package klog

import (
	"encoding/json"
	"fmt"
)

// DayShift says which day a time belongs to, relative to its record's date.
type DayShift int

const (
	Yesterday DayShift = -1
	Today     DayShift = 0
	Tomorrow  DayShift = 1
)

// TimeFormat is the clock notation used when rendering a time.
type TimeFormat string

const (
	TwentyFourHour TimeFormat = "24h"
	TwelveHour     TimeFormat = "12h"
)

const minutesPerDay = 24 * 60

// Time is a time of day, optionally shifted by one day in either direction.
type Time struct {
	hour   int
	minute int
	shift  DayShift
	format TimeFormat
}

// NewTime returns a 24-hour time on the record's own day.
func NewTime(hour, minute int) (Time, error) {
	return NewShiftedTime(hour, minute, Today, TwentyFourHour)
}

// NewShiftedTime validates and builds a time. A time of 24:00 is stored as
// 0:00 on the following day; 24:00 tomorrow cannot be represented.
func NewShiftedTime(hour, minute int, shift DayShift, format TimeFormat) (Time, error) {
	if err := ValidateTime(hour, minute, shift); err != nil {
		return Time{}, err
	}
	if format == "" {
		format = TwentyFourHour
	}
	if format != TwentyFourHour && format != TwelveHour {
		return Time{}, newError(ErrInvalidTime, "", "unknown time format %q", format)
	}
	if hour == 24 {
		hour = 0
		shift++
	}
	return Time{hour: hour, minute: minute, shift: shift, format: format}, nil
}

// ValidateTime reports whether hour, minute and shift form a representable time.
func ValidateTime(hour, minute int, shift DayShift) error {
	input := fmt.Sprintf("%d:%02d", hour, minute)
	switch shift {
	case Yesterday, Today, Tomorrow:
	default:
		return newError(ErrInvalidTime, input, "day shift %d out of range", shift)
	}
	if hour == 24 && minute == 0 {
		if shift == Tomorrow {
			return newError(ErrInvalidTime, input+">", "24:00 cannot be shifted to the next day")
		}
		return nil
	}
	if hour < 0 || hour > 23 {
		return newError(ErrInvalidTime, input, "hour %d out of range", hour)
	}
	if minute < 0 || minute > 59 {
		return newError(ErrInvalidTime, input, "minute %d out of range", minute)
	}
	return nil
}

func (t Time) Hour() int          { return t.hour }
func (t Time) Minute() int        { return t.minute }
func (t Time) Shift() DayShift    { return t.shift }
func (t Time) Format() TimeFormat { return t.format }

// WithFormat returns a copy of t rendered in f.
func (t Time) WithFormat(f TimeFormat) Time {
	t.format = f
	return t
}

// MinutesSinceMidnight counts minutes from midnight of the record's day;
// negative for yesterday, 1440 and up for tomorrow.
func (t Time) MinutesSinceMidnight() int {
	return t.hour*60 + t.minute + int(t.shift)*minutesPerDay
}

// DurationSinceMidnight is MinutesSinceMidnight as a Duration.
func (t Time) DurationSinceMidnight() Duration {
	return DurationFromMinutes(t.MinutesSinceMidnight())
}

func (t Time) Equal(other Time) bool {
	return t.MinutesSinceMidnight() == other.MinutesSinceMidnight()
}

func (t Time) AfterOrEqual(other Time) bool {
	return t.MinutesSinceMidnight() >= other.MinutesSinceMidnight()
}

func (t Time) String() string { return t.Render("") }

// Render formats t, using override instead of the time's own format when set.
func (t Time) Render(override TimeFormat) string {
	format := t.format
	if override != "" {
		format = override
	}

	hour, period := t.hour, ""
	if format == TwelveHour {
		switch {
		case hour == 0:
			hour, period = 12, "am"
		case hour == 12:
			period = "pm"
		case hour > 12:
			hour, period = hour-12, "pm"
		default:
			period = "am"
		}
	}

	prefix, suffix := "", ""
	switch t.shift {
	case Yesterday:
		prefix = "<"
	case Tomorrow:
		suffix = ">"
	}
	return fmt.Sprintf("%s%d:%02d%s%s", prefix, hour, t.minute, period, suffix)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hour     int        `json:"hour"`
		Minute   int        `json:"minute"`
		DayShift DayShift   `json:"dayShift"`
		Format   TimeFormat `json:"format"`
	}{t.hour, t.minute, t.shift, t.format})
}
