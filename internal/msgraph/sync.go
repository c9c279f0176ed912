package msgraph

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/klogfile"
	"github.com/Tiliavir/klg/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	DryRun bool
	// Tag is appended to the summary of every imported event. Empty adds none.
	Tag string
	// Timezone is the IANA zone the event times are given in. Empty means UTC.
	Timezone string
	// Out receives one progress line per event. Nil means stdout.
	Out io.Writer
}

var invalidTagChars = regexp.MustCompile(`[^\p{L}\d_-]+`)

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		loc = l
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// buildSummary renders "subject #tag" plus a #location tag when the event has one.
func buildSummary(event CalendarEvent, tag string) *klog.Summary {
	parts := []string{}
	if s := strings.TrimSpace(strings.ReplaceAll(event.Subject, "\n", " ")); s != "" {
		parts = append(parts, s)
	}
	if t := invalidTagChars.ReplaceAllString(tag, "-"); t != "" {
		parts = append(parts, "#"+t)
	}
	if loc := strings.TrimSpace(event.Location.DisplayName); loc != "" {
		parts = append(parts, `#location="`+strings.ReplaceAll(loc, `"`, "'")+`"`)
	}
	if len(parts) == 0 {
		return nil
	}
	return klog.NewSummary(strings.Join(parts, " "))
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled {
		return true
	}
	if event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs == "free" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// MapEventToEntry converts a Graph CalendarEvent into a closed range entry and
// the date of the record it belongs to. An event ending on the next day gets
// a shifted end time.
func MapEventToEntry(event CalendarEvent, timezone, tag string) (klog.Entry, time.Time, error) {
	startTime, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return klog.Entry{}, time.Time{}, fmt.Errorf("parsing start time: %w", err)
	}
	endTime, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return klog.Entry{}, time.Time{}, fmt.Errorf("parsing end time: %w", err)
	}

	date := timecalc.Date(startTime)
	start, err := timecalc.ClockTime(startTime, date, klog.TwentyFourHour)
	if err != nil {
		return klog.Entry{}, time.Time{}, fmt.Errorf("mapping start time: %w", err)
	}
	end, err := timecalc.ClockTime(endTime, date, klog.TwentyFourHour)
	if err != nil {
		return klog.Entry{}, time.Time{}, fmt.Errorf("mapping end time: %w", err)
	}
	rng, err := klog.NewRange(start, end)
	if err != nil {
		return klog.Entry{}, time.Time{}, fmt.Errorf("mapping event range: %w", err)
	}
	return klog.Entry{Value: rng, Summary: buildSummary(event, tag)}, date, nil
}

func firstLine(s *klog.Summary) string {
	if s == nil {
		return ""
	}
	return s.Lines()[0]
}

// findImported returns the index of an entry in rec that starts at the same
// time as entry and has the same first summary line, or -1.
func findImported(rec *klog.Record, entry klog.Entry) int {
	if rec == nil {
		return -1
	}
	want, _ := entry.Range()
	for i, e := range rec.Entries {
		r, ok := e.Range()
		if ok && r.Start().Equal(want.Start()) && firstLine(e.Summary) == firstLine(entry.Summary) {
			return i
		}
	}
	return -1
}

// SyncEvents merges Graph events into records. Existing imports are matched by
// start time and summary; a changed end time is updated in place. With
// DryRun, records are left untouched.
func SyncEvents(records *[]*klog.Record, events []CalendarEvent, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	for _, event := range events {
		if shouldSkip(event) {
			slog.Debug("skipping event", "subject", event.Subject, "showAs", event.ShowAs)
			continue
		}

		entry, date, err := MapEventToEntry(event, opts.Timezone, opts.Tag)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}
		dur := fmt.Sprintf(" (%s)", entry.Duration())

		rec := klogfile.RecordFor(records, date, false)
		if i := findImported(rec, entry); i >= 0 {
			existing, _ := rec.Entries[i].Range()
			existingEnd, closed := existing.End()
			newRange, _ := entry.Range()
			newEnd, _ := newRange.End()
			if closed && existingEnd.Equal(newEnd) {
				fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", event.Subject)
				result.Skipped++
				continue
			}
			updated, err := existing.WithEnd(newEnd)
			if err != nil {
				fmt.Fprintf(out, "  ! Error updating %q: %v\n", event.Subject, err)
				result.Errors++
				continue
			}
			if !opts.DryRun {
				rec.Entries[i].Value = updated
			}
			fmt.Fprintf(out, "  ↑ Updated:  %s%s\n", event.Subject, dur)
			result.Updated++
			continue
		}

		if !opts.DryRun {
			rec = klogfile.RecordFor(records, date, true)
			rec.Entries = append(rec.Entries, entry)
		}
		fmt.Fprintf(out, "  ✓ Imported: %s%s\n", event.Subject, dur)
		result.Imported++
	}

	return result, nil
}
