package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/klg/internal/klog"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{30, "30m"},
		{59, "59m"},
		{60, "1h 00m"},
		{90, "1h 30m"},
		{605, "10h 05m"},
	}
	for _, tt := range tests {
		got := formatElapsed(tt.minutes)
		if got != tt.want {
			t.Errorf("formatElapsed(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestParseAt(t *testing.T) {
	now := time.Date(2026, 2, 27, 16, 45, 12, 0, time.UTC)
	tests := []struct {
		at      string
		want    time.Time
		wantErr bool
	}{
		{"", now, false},
		{"9:30", time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC), false},
		{"17:05", time.Date(2026, 2, 27, 17, 5, 0, 0, time.UTC), false},
		{"5:05pm", time.Date(2026, 2, 27, 17, 5, 0, 0, time.UTC), false},
		{"noon", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseAt(tt.at, now)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAt(%q) = %v, want error", tt.at, got)
			}
			continue
		}
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("parseAt(%q) = %v, %v, want %v", tt.at, got, err, tt.want)
		}
	}
}

func TestStopRecord(t *testing.T) {
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	start, _ := klog.NewTime(22, 0)

	rec := klog.NewRecord(day)
	if err := rec.Start(start, klog.NewSummary("deploy")); err != nil {
		t.Fatal(err)
	}

	// Stopping before the start fails and leaves the summary alone.
	err := stopRecord(rec, time.Date(2026, 2, 27, 21, 0, 0, 0, time.UTC), klog.TwentyFourHour, "oops")
	if !errors.Is(err, klog.ErrInvalidRange) {
		t.Fatalf("stopRecord error = %v, want invalid range", err)
	}
	if got := rec.Entries[0].Summary.Text(); got != "deploy" {
		t.Errorf("summary after failed stop = %q", got)
	}

	// Stopping after midnight shifts the end to the next day.
	if err := stopRecord(rec, time.Date(2026, 2, 28, 0, 30, 0, 0, time.UTC), klog.TwentyFourHour, "done"); err != nil {
		t.Fatalf("stopRecord: %v", err)
	}
	want := "2026-02-27\n    22:00 - 0:30> deploy\n        done"
	if got := rec.String(); got != want {
		t.Errorf("record = %q, want %q", got, want)
	}

	if err := stopRecord(rec, time.Date(2026, 2, 28, 1, 0, 0, 0, time.UTC), klog.TwentyFourHour, ""); !errors.Is(err, klog.ErrNoOpenEntry) {
		t.Errorf("second stop error = %v, want no open entry", err)
	}
}

func TestMergeSummary(t *testing.T) {
	e := klog.Entry{Value: klog.DurationFromMinutes(5)}
	mergeSummary(&e, "  ")
	if e.Summary != nil {
		t.Fatal("blank text must not create a summary")
	}
	mergeSummary(&e, "first")
	mergeSummary(&e, "second")
	if got := e.Summary.Text(); got != "first\nsecond" {
		t.Errorf("summary = %q", got)
	}
}

func TestResumeRecord(t *testing.T) {
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	nine, _ := klog.NewTime(9, 0)
	ten, _ := klog.NewTime(10, 0)
	closed, err := klog.NewRange(nine, ten)
	if err != nil {
		t.Fatal(err)
	}

	rec := klog.NewRecord(day)
	rec.Entries = []klog.Entry{
		{Value: closed, Summary: klog.NewSummary("coding")},
		{Value: klog.DurationFromMinutes(30), Summary: klog.NewSummary("review")},
	}

	entry, err := resumeRecord(rec)
	if err != nil {
		t.Fatalf("resumeRecord: %v", err)
	}
	if entry.Summary.Text() != "coding" || !entry.IsOpen() {
		t.Errorf("resumed entry = %v", entry)
	}
	if got, want := rec.String(), "2026-02-27\n    9:00 - ? coding\n    30m review"; got != want {
		t.Errorf("record = %q, want %q", got, want)
	}

	if _, err := resumeRecord(rec); !errors.Is(err, klog.ErrAlreadyOpen) {
		t.Errorf("second resume error = %v, want already open", err)
	}

	empty := klog.NewRecord(day)
	empty.Entries = []klog.Entry{{Value: klog.DurationFromMinutes(15)}}
	if _, err := resumeRecord(empty); err == nil {
		t.Error("resuming a record without ranges should fail")
	}
}

func TestSinceLabel(t *testing.T) {
	rec := klog.NewRecord(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC))
	start, _ := klog.NewTime(22, 15)

	if got := sinceLabel(rec, start, time.Date(2026, 2, 27, 23, 0, 0, 0, time.UTC)); got != "22:15" {
		t.Errorf("same day label = %q", got)
	}
	if got := sinceLabel(rec, start, time.Date(2026, 2, 28, 1, 0, 0, 0, time.UTC)); got != "22:15 (record 2026-02-27)" {
		t.Errorf("next day label = %q", got)
	}
}
