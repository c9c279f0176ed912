package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/timecalc"
)

func TestClockTime(t *testing.T) {
	record := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		now     time.Time
		format  klog.TimeFormat
		want    string
		wantErr bool
	}{
		{"same day", time.Date(2026, 2, 27, 8, 32, 10, 0, time.Local), klog.TwentyFourHour, "8:32", false},
		{"next day", time.Date(2026, 2, 28, 0, 15, 0, 0, time.Local), klog.TwentyFourHour, "0:15>", false},
		{"day before", time.Date(2026, 2, 26, 23, 0, 0, 0, time.Local), klog.TwentyFourHour, "<23:00", false},
		{"twelve hour", time.Date(2026, 2, 27, 17, 5, 0, 0, time.Local), klog.TwelveHour, "5:05pm", false},
		{"two days later", time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local), klog.TwentyFourHour, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timecalc.ClockTime(tt.now, record, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ClockTime = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ClockTime: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ClockTime = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	got := timecalc.Date(time.Date(2026, 2, 27, 22, 30, 0, 0, time.FixedZone("X", 5*3600)))
	want := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date = %v, want %v", got, want)
	}
}

func TestElapsed(t *testing.T) {
	record := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	start, err := klog.NewShiftedTime(22, 30, klog.Today, klog.TwentyFourHour)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 2, 28, 1, 0, 45, 0, time.Local)
	if got := timecalc.Elapsed(start, record, now); got != 150 {
		t.Errorf("Elapsed = %d, want 150", got)
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}
}

func TestISOWeekLabel(t *testing.T) {
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	got := timecalc.ISOWeekLabel(fri)
	if got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}
