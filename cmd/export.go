package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/klogfile"
)

var (
	exportFormat string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export this week's records to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, klg")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export all records instead of this week")
}

func runExport(cmd *cobra.Command, args []string) error {
	ws := openWorkspace()

	records := ws.records
	if !exportAll {
		from, to := listRange(time.Now(), true)
		records = klogfile.InRange(records, from, to)
	}

	switch exportFormat {
	case "json":
		if records == nil {
			records = []*klog.Record{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	case "klg":
		printList(records, ws.render)
	default: // csv
		fmt.Print(csvRows(records))
	}

	return nil
}

// csvRows renders one row per entry. Open ranges have an empty end.
func csvRows(records []*klog.Record) string {
	var b strings.Builder
	b.WriteString("date,start,end,duration_minutes,tags,summary\n")
	for _, rec := range records {
		for _, e := range rec.Entries {
			start, end := "", ""
			if r, ok := e.Range(); ok {
				start = r.Start().String()
				if t, closed := r.End(); closed {
					end = t.String()
				}
			}
			summary, tags := "", []string{}
			if e.Summary != nil {
				summary = e.Summary.Text()
				for _, t := range e.Summary.Tags() {
					tags = append(tags, t.Name)
				}
			}
			fmt.Fprintf(&b, "%s,%s,%s,%d,%s,%s\n",
				csvEscape(rec.Date.Format("2006-01-02")),
				csvEscape(start),
				csvEscape(end),
				e.InMinutes(),
				csvEscape(strings.Join(tags, " ")),
				csvEscape(summary),
			)
		}
	}
	return b.String()
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
