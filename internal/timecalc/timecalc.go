package timecalc

import (
	"fmt"
	"time"

	"github.com/Tiliavir/klg/internal/klog"
)

// Date returns the calendar date of t as midnight UTC, the form record dates use.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ClockTime converts the wall clock now into a time relative to recordDate:
// the day before is shifted to yesterday, the day after to tomorrow.
// Seconds are truncated.
func ClockTime(now, recordDate time.Time, format klog.TimeFormat) (klog.Time, error) {
	days := int(Date(now).Sub(Date(recordDate)).Hours() / 24)
	var shift klog.DayShift
	switch days {
	case -1:
		shift = klog.Yesterday
	case 0:
		shift = klog.Today
	case 1:
		shift = klog.Tomorrow
	default:
		return klog.Time{}, fmt.Errorf("%s is %d days away from record %s", now.Format("2006-01-02 15:04"),
			days, recordDate.Format("2006-01-02"))
	}
	return klog.NewShiftedTime(now.Hour(), now.Minute(), shift, format)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	sunday = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 0, t.Location())
	return monday, sunday
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Elapsed returns the whole minutes between the start of an open range on
// recordDate and now.
func Elapsed(start klog.Time, recordDate, now time.Time) int {
	began := Date(recordDate).Add(time.Duration(start.MinutesSinceMidnight()) * time.Minute)
	current := Date(now).Add(time.Duration(now.Hour()*60+now.Minute()) * time.Minute)
	return int(current.Sub(began).Minutes())
}
