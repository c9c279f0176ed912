package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/klogfile"
	"github.com/Tiliavir/klg/internal/timecalc"
)

var (
	reportWeek   bool
	reportFormat string
	reportTag    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show weekly totals per day and per tag",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report for this week (default)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
	reportCmd.Flags().StringVar(&reportTag, "tag", "", "Only count entries tagged with this tag (without #)")
}

type dayTotal struct {
	Date            string `json:"date"`
	Minutes         int    `json:"duration_minutes"`
	ShouldTotalDiff *int   `json:"should_total_diff_minutes,omitempty"`
}

type tagTotal struct {
	Tag     string `json:"tag"`
	Minutes int    `json:"duration_minutes"`
}

type weekReport struct {
	Week         string     `json:"week"`
	Days         []dayTotal `json:"days"`
	Tags         []tagTotal `json:"tags"`
	TotalMinutes int        `json:"total_minutes"`
}

func runReport(cmd *cobra.Command, args []string) error {
	now := time.Now()
	ws := openWorkspace()

	from, to := listRange(now, true)
	report := buildReport(klogfile.InRange(ws.records, from, to), timecalc.ISOWeekLabel(now), strings.TrimPrefix(reportTag, "#"))

	switch reportFormat {
	case "csv":
		fmt.Println("kind,name,duration_minutes")
		for _, d := range report.Days {
			fmt.Printf("day,%s,%d\n", d.Date, d.Minutes)
		}
		for _, t := range report.Tags {
			fmt.Printf("tag,%s,%d\n", csvEscape(t.Tag), t.Minutes)
		}
		fmt.Printf("total,,%d\n", report.TotalMinutes)
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	default: // md
		fmt.Printf("Week %s\n", report.Week)
		fmt.Println("--------------------------------")
		for _, d := range report.Days {
			line := fmt.Sprintf("%-20s%s", d.Date, klog.DurationFromMinutes(d.Minutes))
			if d.ShouldTotalDiff != nil {
				line += fmt.Sprintf(" (%s)", signed(*d.ShouldTotalDiff))
			}
			fmt.Println(line)
		}
		if len(report.Tags) > 0 {
			fmt.Println("--------------------------------")
			for _, t := range report.Tags {
				fmt.Printf("%-20s%s\n", "#"+t.Tag, klog.DurationFromMinutes(t.Minutes))
			}
		}
		fmt.Println("--------------------------------")
		fmt.Printf("%-20s%s\n", "Total", klog.DurationFromMinutes(report.TotalMinutes))
	}

	return nil
}

// buildReport aggregates records by date and by tag. An entry counts for the
// tags of its own summary and of its record's summary, each tag once. With a
// non-empty tag only entries carrying that tag are counted and should-total
// diffs are left out.
func buildReport(records []*klog.Record, label, tag string) weekReport {
	report := weekReport{Week: label, Days: []dayTotal{}, Tags: []tagTotal{}}
	days := map[string]int{}
	diffs := map[string]int{}
	tags := map[string]int{}

	for _, rec := range records {
		date := rec.Date.Format("2006-01-02")
		if tag == "" {
			days[date] += rec.InMinutes()
			if rec.ShouldTotal != nil {
				diffs[date] += rec.ShouldTotalDiff().InMinutes()
			}
			report.TotalMinutes += rec.InMinutes()
		}

		for _, e := range rec.Entries {
			summaries := []*klog.Summary{rec.Summary, e.Summary}
			if tag != "" {
				if !hasTag(summaries, tag) {
					continue
				}
				days[date] += e.InMinutes()
				report.TotalMinutes += e.InMinutes()
			}
			seen := map[string]bool{}
			for _, s := range summaries {
				if s == nil {
					continue
				}
				for _, t := range s.Tags() {
					if !seen[t.Name] {
						seen[t.Name] = true
						tags[t.Name] += e.InMinutes()
					}
				}
			}
		}
	}

	for date, minutes := range days {
		d := dayTotal{Date: date, Minutes: minutes}
		if diff, ok := diffs[date]; ok {
			d.ShouldTotalDiff = &diff
		}
		report.Days = append(report.Days, d)
	}
	sort.Slice(report.Days, func(i, j int) bool { return report.Days[i].Date < report.Days[j].Date })

	for name, minutes := range tags {
		report.Tags = append(report.Tags, tagTotal{Tag: name, Minutes: minutes})
	}
	sort.Slice(report.Tags, func(i, j int) bool { return report.Tags[i].Tag < report.Tags[j].Tag })
	return report
}

func hasTag(summaries []*klog.Summary, tag string) bool {
	for _, s := range summaries {
		if s != nil && s.HasTag(tag) {
			return true
		}
	}
	return false
}

func signed(minutes int) string {
	return klog.DurationFromMinutes(minutes).WithOptions(klog.DurationOptions{ExplicitPositive: true}).String()
}
