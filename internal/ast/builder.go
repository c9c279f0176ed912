package ast

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/klg/internal/grammar"
	"github.com/Tiliavir/klg/internal/klog"
)

// Build converts a parse tree into an AST node. Any semantic violation aborts
// the whole build and is returned as a *klog.Error.
func Build(n *grammar.Node) (Node, error) {
	if n == nil {
		return nil, shapeError(n, "node")
	}
	switch n.Kind {
	case grammar.KindFile:
		return buildFile(n)
	case grammar.KindRecord:
		return buildRecord(n)
	case grammar.KindEntry:
		return buildEntry(n)
	case grammar.KindDate:
		return buildDate(n)
	case grammar.KindClosedRange, grammar.KindOpenRange:
		return buildRange(n)
	case grammar.KindTime12h, grammar.KindTime24h, grammar.KindBackwardShifted, grammar.KindForwardShifted:
		return buildTime(n)
	case grammar.KindDurationHour, grammar.KindDurationMinute, grammar.KindDurationHourMinute:
		return buildDuration(n)
	}
	return nil, shapeError(n, "buildable node")
}

func buildFile(n *grammar.Node) (*FileNode, error) {
	file := &FileNode{Type: TypeFile, Records: []*RecordNode{}}
	for _, child := range n.Children {
		if child == nil || child.Kind != grammar.KindRecord {
			return nil, shapeError(child, "record")
		}
		rec, err := buildRecord(child)
		if err != nil {
			return nil, err
		}
		file.Records = append(file.Records, rec)
	}
	return file, nil
}

func buildRecord(n *grammar.Node) (*RecordNode, error) {
	head := n.Child(0)
	if head == nil || head.Kind != grammar.KindRecordHead {
		return nil, shapeError(n, "record head")
	}
	date, err := buildDate(head.Child(0))
	if err != nil {
		return nil, err
	}
	rec := &RecordNode{Type: TypeRecord, Date: date.Date, DateFormat: date.Format, Entries: []*EntryNode{}}

	if total := head.Child(1); total != nil {
		if total.Kind != grammar.KindShouldTotal {
			return nil, shapeError(total, "should-total")
		}
		d, err := buildDuration(total.Child(0))
		if err != nil {
			return nil, err
		}
		rec.ShouldTotal = d
	}

	for _, child := range n.Children[1:] {
		if child == nil {
			return nil, shapeError(n, "record summary or entry")
		}
		switch child.Kind {
		case grammar.KindRecordSummary:
			summary, err := joinLines(child)
			if err != nil {
				return nil, err
			}
			rec.Summary = &summary
		case grammar.KindEntry:
			entry, err := buildEntry(child)
			if err != nil {
				return nil, err
			}
			if rec.Indentation == "" {
				rec.Indentation = entry.Indentation
			} else if entry.Indentation != rec.Indentation {
				return nil, nodeError(klog.ErrIndentation, child.Child(0),
					"entries of one record must share the same indentation")
			}
			rec.Entries = append(rec.Entries, entry)
		default:
			return nil, shapeError(child, "record summary or entry")
		}
	}
	return rec, nil
}

func buildEntry(n *grammar.Node) (*EntryNode, error) {
	indentNode := n.Child(0)
	if indentNode == nil || indentNode.Kind != grammar.KindIndent {
		return nil, shapeError(n, "entry indentation")
	}
	indent, ok := klog.ParseIndentation(indentNode.Text)
	if !ok {
		return nil, nodeError(klog.ErrIndentation, indentNode,
			"entries must be indented by two, three or four spaces or one tab")
	}

	var value ValueNode
	switch v := n.Child(1); {
	case v == nil:
		return nil, shapeError(n, "entry value")
	case v.Kind == grammar.KindClosedRange || v.Kind == grammar.KindOpenRange:
		r, err := buildRange(v)
		if err != nil {
			return nil, err
		}
		value = r
	default:
		d, err := buildDuration(v)
		if err != nil {
			return nil, err
		}
		value = d
	}
	entry := &EntryNode{Type: TypeEntry, Indentation: indent, Value: value}

	if s := n.Child(2); s != nil {
		summary, err := buildEntrySummary(s, indent)
		if err != nil {
			return nil, err
		}
		entry.Summary = &summary
	}
	return entry, nil
}

// buildEntrySummary joins the first summary line with its continuation
// lines, which must be indented exactly twice the entry indentation.
func buildEntrySummary(s *grammar.Node, indent klog.Indentation) (string, error) {
	if s.Kind != grammar.KindEntrySummary {
		return "", shapeError(s, "entry summary")
	}
	first := s.Child(0)
	if first == nil || first.Kind != grammar.KindSummaryLine {
		return "", shapeError(s, "summary line")
	}
	lines := []string{first.Text}
	for _, cont := range s.Children[1:] {
		parts, ok := children(cont, grammar.KindContinuation, 2)
		if !ok {
			return "", shapeError(s, "continuation line")
		}
		if parts[0].Text != string(indent)+string(indent) {
			return "", nodeError(klog.ErrIndentation, parts[0],
				"summary continuation lines must be indented twice the entry indentation")
		}
		lines = append(lines, parts[1].Text)
	}
	return strings.Join(lines, "\n"), nil
}

func buildDate(n *grammar.Node) (*DateNode, error) {
	parts, ok := children(n, grammar.KindDate, 5)
	if !ok {
		return nil, shapeError(n, "date")
	}
	first, second := parts[1].Text, parts[3].Text
	if first != second {
		return nil, nodeError(klog.ErrInvalidDate, n, "date dividers must not be mixed")
	}
	format := klog.Dashes
	if first == "/" {
		format = klog.Slashes
	}
	date, err := time.Parse(format.Layout(), n.Text)
	if err != nil {
		e := nodeError(klog.ErrInvalidDate, n, "no such calendar date")
		e.Cause = err
		return nil, e
	}
	return &DateNode{Type: TypeDate, Date: date, Format: format}, nil
}

func buildRange(n *grammar.Node) (*TimeRangeNode, error) {
	if n == nil {
		return nil, shapeError(n, "time range")
	}
	parts, ok := children(n, n.Kind, 4)
	if !ok {
		return nil, shapeError(n, "time range")
	}
	start, err := buildTime(parts[0])
	if err != nil {
		return nil, err
	}
	r := &TimeRangeNode{Type: TypeTimeRange, Format: klog.NoSpaces, Start: start}
	if parts[1].Text != "" || parts[2].Text != "" {
		r.Format = klog.Spaces
	}

	switch n.Kind {
	case grammar.KindOpenRange:
		r.Open = true
		r.PlaceholderCount = len(parts[3].Text)
	case grammar.KindClosedRange:
		end, err := buildTime(parts[3])
		if err != nil {
			return nil, err
		}
		r.End = end
	default:
		return nil, shapeError(n, "time range")
	}
	return r, nil
}

func buildTime(n *grammar.Node) (*TimeNode, error) {
	if n == nil {
		return nil, shapeError(n, "time")
	}
	shift := klog.Today
	clock := n
	switch n.Kind {
	case grammar.KindBackwardShifted:
		shift, clock = klog.Yesterday, n.Child(0)
	case grammar.KindForwardShifted:
		shift, clock = klog.Tomorrow, n.Child(0)
	}
	if clock == nil {
		return nil, shapeError(n, "clock time")
	}

	t := &TimeNode{Type: TypeTime, Shift: shift}
	var parts []*grammar.Node
	switch clock.Kind {
	case grammar.KindTime24h:
		p, ok := children(clock, clock.Kind, 2)
		if !ok {
			return nil, shapeError(clock, "hour and minute")
		}
		parts, t.Format = p, klog.TwentyFourHour
	case grammar.KindTime12h:
		p, ok := children(clock, clock.Kind, 3)
		if !ok {
			return nil, shapeError(clock, "hour, minute and period")
		}
		parts, t.Format = p, klog.TwelveHour
	default:
		return nil, shapeError(clock, "clock time")
	}

	hour, err := number(parts[0], "hour")
	if err != nil {
		return nil, err
	}
	minute, err := number(parts[1], "minute")
	if err != nil {
		return nil, err
	}
	t.Hour, t.Minute = hour, minute
	if t.Format == klog.TwelveHour {
		period := strings.ToLower(parts[2].Text)
		if period != "am" && period != "pm" {
			return nil, nodeError(klog.ErrSyntax, parts[2], "expected am or pm, found %q", parts[2].Text)
		}
		t.Hour = to24h(hour, period == "pm")
	}

	if err := klog.ValidateTime(t.Hour, t.Minute, t.Shift); err != nil {
		return nil, nodeError(klog.ErrInvalidTime, n, "%s", messageOf(err))
	}
	return t, nil
}

func to24h(hour int, pm bool) int {
	switch {
	case hour == 12 && !pm:
		return 0
	case hour == 12:
		return 12
	case pm:
		return hour + 12
	}
	return hour
}

// maxDurationHours keeps hours*60+59 within int.
const maxDurationHours = (math.MaxInt - 59) / 60

func buildDuration(n *grammar.Node) (*DurationNode, error) {
	if n == nil {
		return nil, shapeError(n, "duration")
	}
	want := 2
	if n.Kind == grammar.KindDurationHourMinute {
		want = 3
	}
	parts, ok := children(n, n.Kind, want)
	if !ok {
		return nil, shapeError(n, "duration")
	}
	sign := klog.Sign(parts[0].Text)
	switch sign {
	case klog.NoSign, klog.Plus, klog.Minus:
	default:
		return nil, nodeError(klog.ErrSyntax, parts[0], "expected sign, found %q", parts[0].Text)
	}
	value, err := number(parts[1], "duration")
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case grammar.KindDurationMinute:
	case grammar.KindDurationHour:
		if value > maxDurationHours {
			return nil, nodeError(klog.ErrSyntax, n, "duration out of range")
		}
		value *= 60
	case grammar.KindDurationHourMinute:
		minutes, err := number(parts[2], "minute")
		if err != nil {
			return nil, err
		}
		if minutes > 59 {
			return nil, nodeError(klog.ErrSyntax, parts[2], "minutes must be below 60")
		}
		if value > maxDurationHours {
			return nil, nodeError(klog.ErrSyntax, n, "duration out of range")
		}
		value = value*60 + minutes
	default:
		return nil, shapeError(n, "duration")
	}
	if sign == klog.Minus {
		value = -value
	}
	return &DurationNode{Type: TypeDuration, Value: value, Sign: sign}, nil
}

// children returns the first count children of n when n has the given kind
// and none of them is missing.
func children(n *grammar.Node, kind grammar.Kind, count int) ([]*grammar.Node, bool) {
	if n == nil || n.Kind != kind || len(n.Children) < count {
		return nil, false
	}
	for _, c := range n.Children[:count] {
		if c == nil {
			return nil, false
		}
	}
	return n.Children[:count], true
}

// number parses a digits leaf. Signs and other characters are rejected.
func number(n *grammar.Node, what string) (int, error) {
	if n.Text == "" {
		return 0, nodeError(klog.ErrSyntax, n, "expected %s digits, found nothing", what)
	}
	for _, r := range n.Text {
		if r < '0' || r > '9' {
			return 0, nodeError(klog.ErrSyntax, n, "expected %s digits, found %q", what, n.Text)
		}
	}
	v, err := strconv.Atoi(n.Text)
	if err != nil {
		e := nodeError(klog.ErrSyntax, n, "%s out of range", what)
		e.Cause = err
		return 0, e
	}
	return v, nil
}

func joinLines(n *grammar.Node) (string, error) {
	lines := make([]string, 0, len(n.Children))
	for _, l := range n.Children {
		if l == nil {
			return "", shapeError(n, "summary line")
		}
		lines = append(lines, l.Text)
	}
	return strings.Join(lines, "\n"), nil
}

func nodeError(kind error, n *grammar.Node, format string, args ...any) *klog.Error {
	return klog.NewError(kind, n.Text, n.Pos.Line, n.Pos.Column, format, args...)
}

func shapeError(n *grammar.Node, expected string) *klog.Error {
	if n == nil {
		return klog.NewError(klog.ErrSyntax, "", 0, 0, "expected %s, found nothing", expected)
	}
	return nodeError(klog.ErrSyntax, n, "expected %s, found %s", expected, n.Kind)
}

func messageOf(err error) string {
	if e, ok := err.(*klog.Error); ok && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
