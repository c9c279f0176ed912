package klog

import (
	"encoding/json"
	"strings"
	"time"
)

// DateFormat is the divider used when rendering a record's date.
type DateFormat int

const (
	Dashes DateFormat = iota
	Slashes
)

// Layout returns the time layout matching the date format.
func (f DateFormat) Layout() string {
	if f == Slashes {
		return "2006/01/02"
	}
	return "2006-01-02"
}

// ZeroShouldTotalPolicy decides whether a should-total of 0m is rendered.
type ZeroShouldTotalPolicy int

const (
	OmitZeroShouldTotal ZeroShouldTotalPolicy = iota
	ShowZeroShouldTotal
)

// RenderOptions tune record rendering.
type RenderOptions struct {
	// Indentation overrides the record's own entry indentation.
	Indentation     Indentation
	ZeroShouldTotal ZeroShouldTotalPolicy
}

// Record holds the entries of one day.
type Record struct {
	Date        time.Time
	Entries     []Entry
	Summary     *Summary
	ShouldTotal *Duration
	DateFormat  DateFormat
	// Indentation is used for entries when rendering; empty means four spaces.
	Indentation Indentation
}

// NewRecord returns an empty record for date.
func NewRecord(date time.Time) *Record {
	return &Record{Date: date}
}

// OpenEntry returns the first entry holding an open range, or nil.
func (r *Record) OpenEntry() *Entry {
	if i := r.openIndex(); i >= 0 {
		return &r.Entries[i]
	}
	return nil
}

func (r *Record) openIndex() int {
	for i, e := range r.Entries {
		if e.IsOpen() {
			return i
		}
	}
	return -1
}

// DateString formats the date with the record's divider.
func (r *Record) DateString() string {
	return r.Date.Format(r.DateFormat.Layout())
}

// InMinutes sums the minutes of all entries.
func (r *Record) InMinutes() int {
	total := 0
	for _, e := range r.Entries {
		total += e.InMinutes()
	}
	return total
}

func (r *Record) Duration() Duration { return DurationFromMinutes(r.InMinutes()) }

// ShouldTotalDiff is the actual total minus the should-total. Without a
// should-total it is the actual total.
func (r *Record) ShouldTotalDiff() Duration {
	actual := r.Duration()
	if r.ShouldTotal == nil {
		return actual
	}
	return actual.Sub(*r.ShouldTotal)
}

// Start appends an open range beginning at t.
func (r *Record) Start(t Time, summary *Summary) error {
	if open := r.OpenEntry(); open != nil {
		return newError(ErrAlreadyOpen, open.Value.String(),
			"records can only have one open range at a time")
	}
	r.Entries = append(r.Entries, Entry{Value: NewOpenRange(t), Summary: summary})
	return nil
}

// End closes the open range at t. The record is unchanged on failure.
func (r *Record) End(t Time) error {
	i := r.openIndex()
	if i < 0 {
		return newError(ErrNoOpenEntry, r.DateString(), "record does not have any currently open ranges")
	}
	rng := r.Entries[i].Value.(Range)
	closed, err := rng.WithEnd(t)
	if err != nil {
		return err
	}
	r.Entries[i].Value = closed
	return nil
}

func (r *Record) String() string { return r.Render(RenderOptions{}) }

// Render formats the record as Klog text without a trailing newline.
func (r *Record) Render(opts RenderOptions) string {
	var b strings.Builder
	b.WriteString(r.DateString())
	if r.ShouldTotal != nil && (r.ShouldTotal.InMinutes() != 0 || opts.ZeroShouldTotal == ShowZeroShouldTotal) {
		b.WriteString(" (" + r.ShouldTotal.String() + "!)")
	}
	if r.Summary != nil {
		b.WriteString("\n" + r.Summary.Render("", false))
	}

	indent := opts.Indentation
	if indent == "" {
		indent = r.Indentation
	}
	if indent == "" {
		indent = FourSpaces
	}
	for _, e := range r.Entries {
		b.WriteString("\n" + e.Render(indent))
	}
	return b.String()
}

// RenderRecords formats records separated by blank lines.
func RenderRecords(records []*Record, opts RenderOptions) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, r.Render(opts))
	}
	return strings.Join(parts, "\n\n")
}

func (r *Record) MarshalJSON() ([]byte, error) {
	entries := r.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(struct {
		Date            string     `json:"date"`
		DateFormat      DateFormat `json:"dateFormat"`
		Summary         *Summary   `json:"summary"`
		ShouldTotal     *Duration  `json:"shouldTotal"`
		Entries         []Entry    `json:"entries"`
		TotalMinutes    int        `json:"totalMinutes"`
		ShouldTotalDiff int        `json:"shouldTotalDiffMinutes"`
	}{r.Date.Format("2006-01-02"), r.DateFormat, r.Summary, r.ShouldTotal, entries, r.InMinutes(), r.ShouldTotalDiff().InMinutes()})
}
