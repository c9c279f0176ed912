package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/klogfile"
)

var (
	stopSummary string
	stopAt      string
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Close the currently open time range",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopSummary, "summary", "", "Append a line to the entry summary")
	stopCmd.Flags().StringVar(&stopAt, "at", "", "End time (H:MM or H:MMam/pm); defaults to now")
}

func runStop(cmd *cobra.Command, args []string) error {
	now, err := parseAt(stopAt, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ws := openWorkspace()

	rec := klogfile.FindOpen(ws.records)
	if rec == nil {
		fmt.Fprintln(os.Stderr, "No open range to stop.")
		os.Exit(1)
	}
	index := -1
	for i, e := range rec.Entries {
		if e.IsOpen() {
			index = i
			break
		}
	}

	if err := stopRecord(rec, now, ws.timeFormat, stopSummary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ws.save()

	entry := rec.Entries[index]
	fmt.Printf("Stopped: %s\n", strings.TrimSpace(entry.Render("")))
	fmt.Printf("Elapsed: %s\n", formatElapsed(entry.InMinutes()))
	return nil
}

// formatElapsed renders minutes as "1h 05m", or "45m" below one hour.
func formatElapsed(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
