package cmd

import (
	"testing"
	"time"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/parser"
)

const weekFixture = `2026-02-23 (8h!)
Work #acme
    9:00 - 12:30 coding #dev
    1h30m #dev #acme
    13:00 - ? #open

2026-02-24
    2h #review`

func parseFixture(t *testing.T, src string) []*klog.Record {
	t.Helper()
	records, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return records
}

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCsvRows(t *testing.T) {
	got := csvRows(parseFixture(t, weekFixture))
	want := "date,start,end,duration_minutes,tags,summary\n" +
		"2026-02-23,9:00,12:30,210,dev,coding #dev\n" +
		"2026-02-23,,,90,dev acme,#dev #acme\n" +
		"2026-02-23,13:00,,0,open,#open\n" +
		"2026-02-24,,,120,review,#review\n"
	if got != want {
		t.Errorf("csvRows:\n got %q\nwant %q", got, want)
	}
}

func TestCsvRowsEmpty(t *testing.T) {
	if got := csvRows(nil); got != "date,start,end,duration_minutes,tags,summary\n" {
		t.Errorf("csvRows(nil) = %q", got)
	}
}

func TestBuildReport(t *testing.T) {
	report := buildReport(parseFixture(t, weekFixture), "2026-W09", "")

	if report.Week != "2026-W09" {
		t.Errorf("Week = %q", report.Week)
	}
	if report.TotalMinutes != 420 {
		t.Errorf("TotalMinutes = %d, want 420", report.TotalMinutes)
	}

	if len(report.Days) != 2 {
		t.Fatalf("Days = %+v, want 2 entries", report.Days)
	}
	first, second := report.Days[0], report.Days[1]
	if first.Date != "2026-02-23" || first.Minutes != 300 {
		t.Errorf("Days[0] = %+v", first)
	}
	if first.ShouldTotalDiff == nil || *first.ShouldTotalDiff != -180 {
		t.Errorf("Days[0].ShouldTotalDiff = %v, want -180", first.ShouldTotalDiff)
	}
	if second.Date != "2026-02-24" || second.Minutes != 120 || second.ShouldTotalDiff != nil {
		t.Errorf("Days[1] = %+v", second)
	}

	want := []tagTotal{
		{Tag: "acme", Minutes: 300},
		{Tag: "dev", Minutes: 300},
		{Tag: "open", Minutes: 0},
		{Tag: "review", Minutes: 120},
	}
	if len(report.Tags) != len(want) {
		t.Fatalf("Tags = %+v, want %+v", report.Tags, want)
	}
	for i := range want {
		if report.Tags[i] != want[i] {
			t.Errorf("Tags[%d] = %+v, want %+v", i, report.Tags[i], want[i])
		}
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := buildReport(nil, "2026-W09", "")
	if report.Days == nil || report.Tags == nil {
		t.Error("empty report should carry non-nil slices")
	}
	if report.TotalMinutes != 0 {
		t.Errorf("TotalMinutes = %d", report.TotalMinutes)
	}
}

func TestBuildReportTagFilter(t *testing.T) {
	report := buildReport(parseFixture(t, weekFixture), "2026-W09", "dev")

	if report.TotalMinutes != 300 {
		t.Errorf("TotalMinutes = %d, want 300", report.TotalMinutes)
	}
	if len(report.Days) != 1 || report.Days[0].Date != "2026-02-23" || report.Days[0].Minutes != 300 {
		t.Fatalf("Days = %+v", report.Days)
	}
	if report.Days[0].ShouldTotalDiff != nil {
		t.Error("filtered report must not carry should-total diffs")
	}
	want := []tagTotal{{Tag: "acme", Minutes: 300}, {Tag: "dev", Minutes: 300}}
	if len(report.Tags) != len(want) || report.Tags[0] != want[0] || report.Tags[1] != want[1] {
		t.Errorf("Tags = %+v, want %+v", report.Tags, want)
	}

	// Record summary tags apply to every entry of the record.
	acme := buildReport(parseFixture(t, weekFixture), "2026-W09", "acme")
	if acme.TotalMinutes != 300 {
		t.Errorf("acme TotalMinutes = %d, want 300", acme.TotalMinutes)
	}
}

func TestSigned(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{90, "+1h30m"},
		{-75, "-1h15m"},
		{0, "0m"},
	}
	for _, tt := range tests {
		if got := signed(tt.minutes); got != tt.want {
			t.Errorf("signed(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestSyncWindow(t *testing.T) {
	now := time.Date(2026, 2, 25, 14, 0, 0, 0, time.UTC)

	from, to, err := syncWindow(now, "", "", "")
	if err != nil || !from.Equal(time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)) || to.Day() != 25 {
		t.Errorf("default window = %v..%v, %v", from, to, err)
	}

	from, to, err = syncWindow(now, "2026-02-20", "", "")
	if err != nil || from.Day() != 20 || to.Day() != 20 {
		t.Errorf("--date window = %v..%v, %v", from, to, err)
	}

	from, to, err = syncWindow(now, "", "2026-02-20", "2026-02-22")
	if err != nil || from.Day() != 20 || to.Day() != 22 {
		t.Errorf("--from/--to window = %v..%v, %v", from, to, err)
	}

	errCases := []struct{ date, from, to string }{
		{"bad", "", ""},
		{"", "", "2026-02-22"},
		{"", "2026-02-22", "2026-02-20"},
		{"", "20-02-2026", ""},
	}
	for _, tt := range errCases {
		if _, _, err := syncWindow(now, tt.date, tt.from, tt.to); err == nil {
			t.Errorf("syncWindow(%q, %q, %q) expected error", tt.date, tt.from, tt.to)
		}
	}
}
