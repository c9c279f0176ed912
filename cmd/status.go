package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/klogfile"
	"github.com/Tiliavir/klg/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the open range or today's total",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()
	ws := openWorkspace()

	if rec := klogfile.FindOpen(ws.records); rec != nil {
		open := rec.OpenEntry()
		rng, _ := open.Range()
		fmt.Println("Running:")
		fmt.Printf("  Record: %s\n", rec.DateString())
		if open.Summary != nil {
			fmt.Printf("  Summary: %s\n", open.Summary.Lines()[0])
		}
		fmt.Printf("  Since: %s\n", sinceLabel(rec, rng.Start(), now))
		fmt.Printf("  Elapsed: %s\n", formatElapsed(timecalc.Elapsed(rng.Start(), rec.Date, now)))
		return nil
	}

	fmt.Println("No open range.")
	rec := klogfile.RecordFor(&ws.records, timecalc.Date(now), false)
	if rec == nil {
		fmt.Println("Today: nothing logged.")
		return nil
	}
	fmt.Println(todayLine(rec))
	return nil
}

// sinceLabel renders the start of a running range, naming the record date
// when the range did not start today.
func sinceLabel(rec *klog.Record, start klog.Time, now time.Time) string {
	if timecalc.SameDay(rec.Date, now) {
		return start.String()
	}
	return fmt.Sprintf("%s (record %s)", start, rec.DateString())
}

// todayLine summarises a record's total and, if set, its should-total diff.
func todayLine(rec *klog.Record) string {
	line := fmt.Sprintf("Today: %s logged.", rec.Duration())
	if rec.ShouldTotal != nil {
		diff := rec.ShouldTotalDiff().WithOptions(klog.DurationOptions{ExplicitPositive: true})
		line += fmt.Sprintf(" Should-total %s, diff %s.", rec.ShouldTotal, diff)
	}
	return line
}
