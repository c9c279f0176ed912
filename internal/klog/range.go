package klog

import (
	"encoding/json"
	"strings"
)

// RangeDashFormat is the spacing around the dash of a range.
type RangeDashFormat int

const (
	Spaces RangeDashFormat = iota
	NoSpaces
)

func (f RangeDashFormat) dash() string {
	if f == NoSpaces {
		return "-"
	}
	return " - "
}

// Range is a span between two times of the same record. A range without an
// end is open.
type Range struct {
	start        Time
	end          Time
	hasEnd       bool
	format       RangeDashFormat
	placeholders int
}

// NewRange returns the closed range start-end. It fails when end is before start.
func NewRange(start, end Time) (Range, error) {
	return NewOpenRange(start).WithEnd(end)
}

// NewOpenRange returns a range that has started but not ended yet.
func NewOpenRange(start Time) Range {
	return Range{start: start, placeholders: 1}
}

// WithEnd returns a copy of r ending at end. r itself is never modified.
func (r Range) WithEnd(end Time) (Range, error) {
	if !end.AfterOrEqual(r.start) {
		return r, newError(ErrInvalidRange, r.start.String()+" - "+end.String(),
			"end of range cannot be before its start")
	}
	r.end, r.hasEnd = end, true
	return r, nil
}

// WithoutEnd returns an open copy of r.
func (r Range) WithoutEnd() Range {
	r.end, r.hasEnd = Time{}, false
	return r
}

// WithFormat returns a copy of r using the given dash spacing.
func (r Range) WithFormat(f RangeDashFormat) Range {
	r.format = f
	return r
}

// WithPlaceholderCount sets how many "?" render the missing end. Values
// below one are treated as one.
func (r Range) WithPlaceholderCount(n int) Range {
	r.placeholders = max(n, 1)
	return r
}

func (r Range) Start() Time             { return r.start }
func (r Range) End() (Time, bool)       { return r.end, r.hasEnd }
func (r Range) Open() bool              { return !r.hasEnd }
func (r Range) Format() RangeDashFormat { return r.format }
func (r Range) PlaceholderCount() int   { return max(r.placeholders, 1) }

// InMinutes is the length of the range, or 0 while it is open.
func (r Range) InMinutes() int {
	if r.Open() {
		return 0
	}
	return r.end.MinutesSinceMidnight() - r.start.MinutesSinceMidnight()
}

func (r Range) Duration() Duration { return DurationFromMinutes(r.InMinutes()) }

func (r Range) String() string {
	end := strings.Repeat("?", r.PlaceholderCount())
	if r.hasEnd {
		end = r.end.String()
	}
	return r.start.String() + r.format.dash() + end
}

func (r Range) isEntryValue() {}

func (r Range) MarshalJSON() ([]byte, error) {
	var end *Time
	if r.hasEnd {
		end = &r.end
	}
	return json.Marshal(struct {
		Start            Time            `json:"start"`
		End              *Time           `json:"end"`
		Format           RangeDashFormat `json:"format"`
		PlaceholderCount int             `json:"openRangePlaceholderCharCount"`
	}{r.start, end, r.format, r.PlaceholderCount()})
}
