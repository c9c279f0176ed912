package parser

import (
	"github.com/pkg/errors"

	"github.com/Tiliavir/klg/internal/ast"
	"github.com/Tiliavir/klg/internal/klog"
)

// TimeFromAST builds a time keeping its 12/24-hour notation.
func TimeFromAST(n *ast.TimeNode) (klog.Time, error) {
	return klog.NewShiftedTime(n.Hour, n.Minute, n.Shift, n.Format)
}

// DurationFromAST builds a duration that renders with the sign it was written with.
func DurationFromAST(n *ast.DurationNode) klog.Duration {
	opts := klog.DurationOptions{ExplicitPositive: n.Sign == klog.Plus}
	if n.Value == 0 {
		opts.ZeroSign = n.Sign
	}
	return klog.DurationFromMinutes(n.Value).WithOptions(opts)
}

// RangeFromAST builds a range keeping dash spacing and placeholder count.
func RangeFromAST(n *ast.TimeRangeNode) (klog.Range, error) {
	start, err := TimeFromAST(n.Start)
	if err != nil {
		return klog.Range{}, err
	}
	r := klog.NewOpenRange(start).WithFormat(n.Format)
	if n.Open {
		return r.WithPlaceholderCount(n.PlaceholderCount), nil
	}
	if n.End == nil {
		return klog.Range{}, klog.NewError(klog.ErrSyntax, start.String(), 0, 0, "closed range without an end")
	}
	end, err := TimeFromAST(n.End)
	if err != nil {
		return klog.Range{}, err
	}
	return r.WithEnd(end)
}

func EntryFromAST(n *ast.EntryNode) (klog.Entry, error) {
	var entry klog.Entry
	switch v := n.Value.(type) {
	case *ast.DurationNode:
		entry.Value = DurationFromAST(v)
	case *ast.TimeRangeNode:
		r, err := RangeFromAST(v)
		if err != nil {
			return klog.Entry{}, err
		}
		entry.Value = r
	default:
		return klog.Entry{}, klog.NewError(klog.ErrSyntax, "", 0, 0, "entry without a value")
	}
	if n.Summary != nil {
		entry.Summary = klog.NewSummary(*n.Summary)
	}
	return entry, nil
}

// RecordFromAST builds a record. At most one entry may be an open range.
func RecordFromAST(n *ast.RecordNode) (*klog.Record, error) {
	rec := klog.NewRecord(n.Date)
	rec.DateFormat = n.DateFormat
	rec.Indentation = n.Indentation
	if n.ShouldTotal != nil {
		total := DurationFromAST(n.ShouldTotal)
		rec.ShouldTotal = &total
	}
	if n.Summary != nil {
		rec.Summary = klog.NewSummary(*n.Summary)
	}

	for _, en := range n.Entries {
		entry, err := EntryFromAST(en)
		if err != nil {
			return nil, errors.Wrapf(err, "record %s", rec.DateString())
		}
		if entry.IsOpen() && rec.OpenEntry() != nil {
			return nil, klog.NewError(klog.ErrAlreadyOpen, rec.DateString(), 0, 0,
				"records can only have one open range at a time")
		}
		rec.Entries = append(rec.Entries, entry)
	}
	return rec, nil
}

// RecordsFromAST builds every record of a file, in source order.
func RecordsFromAST(n *ast.FileNode) ([]*klog.Record, error) {
	records := make([]*klog.Record, 0, len(n.Records))
	for _, rn := range n.Records {
		rec, err := RecordFromAST(rn)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
