package klog

import (
	"encoding/json"
	"strconv"
)

// Sign is the explicit sign written in front of a duration.
type Sign string

const (
	NoSign Sign = ""
	Plus   Sign = "+"
	Minus  Sign = "-"
)

// DurationOptions control how a duration is rendered. They never affect its value.
type DurationOptions struct {
	// ExplicitPositive renders positive values with a leading "+".
	ExplicitPositive bool `json:"explicitPositive"`
	// ZeroSign is the sign shown when the value is zero.
	ZeroSign Sign `json:"zeroSign"`
}

// Duration is a signed amount of minutes.
type Duration struct {
	value int
	opts  DurationOptions
}

// NewDuration returns hours*60+minutes minutes.
func NewDuration(hours, minutes int) Duration {
	return Duration{value: hours*60 + minutes}
}

// DurationFromMinutes returns a duration of total minutes.
func DurationFromMinutes(total int) Duration {
	return Duration{value: total}
}

// WithOptions returns a copy of d using opts for rendering.
func (d Duration) WithOptions(opts DurationOptions) Duration {
	d.opts = opts
	return d
}

// Options returns the rendering options of d.
func (d Duration) Options() DurationOptions { return d.opts }

// Hours is the whole-hour component; it shares the sign of the total.
func (d Duration) Hours() int { return d.value / 60 }

// Minutes is the minute component; it shares the sign of the total.
func (d Duration) Minutes() int { return d.value % 60 }

// InMinutes returns the total number of minutes.
func (d Duration) InMinutes() int { return d.value }

// Sign returns the sign rendered in front of d.
func (d Duration) Sign() Sign {
	switch {
	case d.value == 0:
		return d.opts.ZeroSign
	case d.value < 0:
		return Minus
	case d.opts.ExplicitPositive:
		return Plus
	default:
		return NoSign
	}
}

// Add returns d+other, keeping the options of d.
func (d Duration) Add(other Duration) Duration {
	return Duration{value: d.value + other.value, opts: d.opts}
}

// Sub returns d-other, keeping the options of d.
func (d Duration) Sub(other Duration) Duration {
	return Duration{value: d.value - other.value, opts: d.opts}
}

// Equal compares the values of two durations, ignoring options.
func (d Duration) Equal(other Duration) bool { return d.value == other.value }

func (d Duration) String() string {
	sign := string(d.Sign())
	if d.value == 0 {
		return sign + "0m"
	}
	out := sign
	if h := abs(d.Hours()); h != 0 {
		out += strconv.Itoa(h) + "h"
	}
	if m := abs(d.Minutes()); m != 0 {
		out += strconv.Itoa(m) + "m"
	}
	return out
}

func (d Duration) isEntryValue() {}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Hours   int `json:"hours"`
		Minutes int `json:"minutes"`
		DurationOptions
	}{d.Hours(), d.Minutes(), d.opts})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
