// Package grammar matches Klog source text and produces a concrete parse
// tree: one Node per matched rule, with the exact source text it covers.
// It knows nothing about what the text means; semantic checks (calendar
// dates, indentation levels, time validity) belong to the AST builder.
package grammar

import "fmt"

// Rule names an entry point of the grammar.
type Rule string

const (
	RuleFile      Rule = "file"
	RuleRecord    Rule = "record"
	RuleEntry     Rule = "entry"
	RuleDate      Rule = "date"
	RuleTimeRange Rule = "timeRange"
	RuleTime      Rule = "time"
	RuleDuration  Rule = "duration"
)

// Kind is the closed set of parse tree node kinds.
type Kind int

const (
	KindFile               Kind = iota // children: Record*
	KindRecord                         // RecordHead, RecordSummary?, Entry*
	KindRecordHead                     // Date, ShouldTotal?
	KindDate                           // Digits, Divider, Digits, Divider, Digits
	KindDigits                         // leaf
	KindDivider                        // leaf: "-" or "/"
	KindShouldTotal                    // Duration
	KindRecordSummary                  // SummaryLine+
	KindSummaryLine                    // leaf, trailing whitespace trimmed
	KindEntry                          // Indent, ClosedRange|OpenRange|Duration*, EntrySummary?
	KindIndent                         // leaf: leading whitespace
	KindEntrySummary                   // SummaryLine, Continuation*
	KindContinuation                   // Indent, SummaryLine
	KindClosedRange                    // Time*, Spacing, Spacing, Time*
	KindOpenRange                      // Time*, Spacing, Spacing, Placeholder
	KindSpacing                        // leaf, possibly empty
	KindPlaceholder                    // leaf: one or more "?"
	KindBackwardShifted                // Time12h|Time24h
	KindForwardShifted                 // Time12h|Time24h
	KindTime12h                        // Digits, Digits, Period
	KindTime24h                        // Digits, Digits
	KindPeriod                         // leaf: am/pm in any case
	KindDurationHour                   // Sign, Digits
	KindDurationMinute                 // Sign, Digits
	KindDurationHourMinute             // Sign, Digits, Digits
	KindSign                           // leaf: "", "+" or "-"
)

var kindNames = [...]string{
	KindFile:               "file",
	KindRecord:             "record",
	KindRecordHead:         "recordHead",
	KindDate:               "date",
	KindDigits:             "digits",
	KindDivider:            "divider",
	KindShouldTotal:        "shouldTotal",
	KindRecordSummary:      "recordSummary",
	KindSummaryLine:        "summaryLine",
	KindEntry:              "entry",
	KindIndent:             "indent",
	KindEntrySummary:       "entrySummary",
	KindContinuation:       "continuation",
	KindClosedRange:        "timeRange_closed",
	KindOpenRange:          "timeRange_open",
	KindSpacing:            "spacing",
	KindPlaceholder:        "placeholder",
	KindBackwardShifted:    "backwardsShiftedTime",
	KindForwardShifted:     "forwardsShiftedTime",
	KindTime12h:            "time_twelveHour",
	KindTime24h:            "time_twentyFourHour",
	KindPeriod:             "period",
	KindDurationHour:       "duration_hour",
	KindDurationMinute:     "duration_minute",
	KindDurationHourMinute: "duration_hourMinute",
	KindSign:               "sign",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position is a location in the source. Line and Column are 1-based;
// columns count bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Node is a matched rule.
type Node struct {
	Kind     Kind
	Text     string
	Pos      Position
	Children []*Node
}

// Child returns the i-th child, or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// MatchError describes where and why the input did not match the grammar.
type MatchError struct {
	Pos      Position
	Expected string
	Found    string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("line %d, col %d: expected %s, found %s", e.Pos.Line, e.Pos.Column, e.Expected, e.Found)
}
