package klog

import (
	"encoding/json"
	"fmt"
)

// Indentation is one level of entry indentation.
type Indentation string

const (
	FourSpaces  Indentation = "    "
	ThreeSpaces Indentation = "   "
	TwoSpaces   Indentation = "  "
	Tab         Indentation = "\t"
)

// ParseIndentation reports whether s is exactly one allowed indentation level.
func ParseIndentation(s string) (Indentation, bool) {
	switch Indentation(s) {
	case FourSpaces, ThreeSpaces, TwoSpaces, Tab:
		return Indentation(s), true
	}
	return "", false
}

// EntryValue is either a Duration or a Range.
type EntryValue interface {
	fmt.Stringer
	InMinutes() int
	isEntryValue()
}

// Entry is a single line item of a record.
type Entry struct {
	Value   EntryValue
	Summary *Summary
}

// Duration returns the time the entry accounts for. An open range counts as
// zero. The result never shares state with the entry.
func (e Entry) Duration() Duration {
	switch v := e.Value.(type) {
	case Duration:
		return DurationFromMinutes(v.InMinutes())
	case Range:
		if v.Open() {
			return NewDuration(0, 0)
		}
		return v.Duration()
	}
	return Duration{}
}

func (e Entry) InMinutes() int {
	if e.Value == nil {
		return 0
	}
	return e.Value.InMinutes()
}

// Range returns the entry's range, if its value is one.
func (e Entry) Range() (Range, bool) {
	r, ok := e.Value.(Range)
	return r, ok
}

// IsOpen reports whether the entry holds an open range.
func (e Entry) IsOpen() bool {
	r, ok := e.Range()
	return ok && r.Open()
}

// Render formats the entry on one line prefixed by indent; wrapped summary
// lines are indented twice. An entry without a value renders as 0m.
func (e Entry) Render(indent Indentation) string {
	out := string(indent) + e.value().String()
	if e.Summary != nil {
		out += " " + e.Summary.Render(indent, false)
	}
	return out
}

func (e Entry) String() string { return e.Render(FourSpaces) }

func (e Entry) MarshalJSON() ([]byte, error) {
	kind := "duration"
	if _, ok := e.Value.(Range); ok {
		kind = "range"
	}
	return json.Marshal(struct {
		Type    string     `json:"type"`
		Value   EntryValue `json:"value"`
		Minutes int        `json:"minutes"`
		Summary *Summary   `json:"summary"`
	}{kind, e.value(), e.InMinutes(), e.Summary})
}

// value is e.Value, with a missing value read as a zero duration.
func (e Entry) value() EntryValue {
	if e.Value == nil {
		return e.Duration()
	}
	return e.Value
}
