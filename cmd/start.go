package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/klogfile"
	"github.com/Tiliavir/klg/internal/timecalc"
)

var (
	startAt      string
	startSummary string
	startResume  bool
)

var startCmd = &cobra.Command{
	Use:   "start [summary...]",
	Short: "Start an open time range in today's record",
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startSummary, "summary", "", "Entry summary; positional arguments are used when empty")
	startCmd.Flags().BoolVar(&startResume, "resume", false, "Reopen the last time range of today's record instead of starting a new one")
	startCmd.Flags().StringVar(&startAt, "at", "", "Start time (H:MM or H:MMam/pm); defaults to now")
}

func runStart(cmd *cobra.Command, args []string) error {
	now, err := parseAt(startAt, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ws := openWorkspace()

	if startResume {
		rec := klogfile.RecordFor(&ws.records, timecalc.Date(now), false)
		if rec == nil {
			fmt.Fprintln(os.Stderr, "Nothing to resume: no record for today")
			os.Exit(1)
		}
		entry, err := resumeRecord(rec)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		ws.save()
		fmt.Printf("Resumed %s in record %s\n", entry.Value, rec.DateString())
		return nil
	}

	// Auto-stop a range that is still running.
	if open := klogfile.FindOpen(ws.records); open != nil {
		fmt.Fprintf(os.Stderr, "Warning: auto-stopping open range in record %s\n", open.DateString())
		if err := stopRecord(open, now, ws.timeFormat, ""); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	today := timecalc.Date(now)
	rec := klogfile.RecordFor(&ws.records, today, true)
	start, err := timecalc.ClockTime(now, today, ws.timeFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var summary *klog.Summary
	text := startSummary
	if text == "" {
		text = strings.Join(args, " ")
	}
	if text = strings.TrimSpace(text); text != "" {
		summary = klog.NewSummary(text)
	}
	if err := rec.Start(start, summary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ws.save()
	fmt.Printf("Started at %s in record %s\n", start, rec.DateString())
	return nil
}

// stopRecord closes the open range of rec at now, appending text to its
// summary. A stop on the day after the record uses a shifted end time.
func stopRecord(rec *klog.Record, now time.Time, format klog.TimeFormat, text string) error {
	end, err := timecalc.ClockTime(now, rec.Date, format)
	if err != nil {
		return fmt.Errorf("cannot stop range of record %s: %w", rec.DateString(), err)
	}
	open := rec.OpenEntry()
	if open == nil {
		return klog.NewError(klog.ErrNoOpenEntry, rec.DateString(), 0, 0, "nothing to stop")
	}
	previous := open.Summary
	mergeSummary(open, text)
	if err := rec.End(end); err != nil {
		open.Summary = previous
		return err
	}
	return nil
}

// resumeRecord reopens the last closed time range of rec.
func resumeRecord(rec *klog.Record) (*klog.Entry, error) {
	if open := rec.OpenEntry(); open != nil {
		return nil, klog.NewError(klog.ErrAlreadyOpen, open.Value.String(), 0, 0,
			"records can only have one open range at a time")
	}
	for i := len(rec.Entries) - 1; i >= 0; i-- {
		if r, ok := rec.Entries[i].Range(); ok {
			rec.Entries[i].Value = r.WithoutEnd()
			return &rec.Entries[i], nil
		}
	}
	return nil, fmt.Errorf("record %s has no time range to resume", rec.DateString())
}

// mergeSummary appends text as a new summary line of e.
func mergeSummary(e *klog.Entry, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if e.Summary == nil {
		e.Summary = klog.NewSummary(text)
		return
	}
	e.Summary = klog.NewSummary(e.Summary.Text() + "\n" + text)
}

// parseAt resolves a --at value to a point in time on the day of now.
func parseAt(at string, now time.Time) (time.Time, error) {
	if at == "" {
		return now, nil
	}
	for _, layout := range []string{"15:04", "3:04pm", "3:04PM"} {
		if t, err := time.ParseInLocation(layout, at, now.Location()); err == nil {
			return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --at value %q: expected H:MM or H:MMam/pm", at)
}
