package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/klogfile"
	"github.com/Tiliavir/klg/internal/timecalc"
)

var (
	listToday bool
	listWeek  bool
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print records as Klog text",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show today's records (default)")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's records")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Show all records")
}

func runList(cmd *cobra.Command, args []string) error {
	ws := openWorkspace()

	records := ws.records
	if !listAll {
		from, to := listRange(time.Now(), listWeek)
		records = klogfile.InRange(records, from, to)
	}

	printList(records, ws.render)
	return nil
}

// listRange returns the record dates covered by today or, with week, the ISO week.
func listRange(now time.Time, week bool) (time.Time, time.Time) {
	if week {
		monday, sunday := timecalc.WeekRange(now)
		return timecalc.Date(monday), timecalc.Date(sunday)
	}
	today := timecalc.Date(now)
	return today, today
}

func printList(records []*klog.Record, opts klog.RenderOptions) {
	if len(records) == 0 {
		fmt.Println("No entries found.")
		return
	}
	fmt.Println(klog.RenderRecords(records, opts))
}
