package klog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/klg/internal/klog"
)

func mustTime(t *testing.T, hour, minute int, shift klog.DayShift) klog.Time {
	t.Helper()
	tm, err := klog.NewShiftedTime(hour, minute, shift, klog.TwentyFourHour)
	require.NoError(t, err)
	return tm
}

func TestNewRange(t *testing.T) {
	tests := []struct {
		name        string
		start, end  klog.Time
		wantErr     bool
		wantMinutes int
	}{
		{"same day", mustTime(t, 8, 30, klog.Today), mustTime(t, 17, 0, klog.Today), false, 510},
		{"empty", mustTime(t, 8, 30, klog.Today), mustTime(t, 8, 30, klog.Today), false, 0},
		{"from yesterday", mustTime(t, 23, 0, klog.Yesterday), mustTime(t, 2, 0, klog.Today), false, 180},
		{"into tomorrow", mustTime(t, 22, 0, klog.Today), mustTime(t, 1, 15, klog.Tomorrow), false, 195},
		{"end before start", mustTime(t, 15, 0, klog.Today), mustTime(t, 14, 0, klog.Today), true, 0},
		{"tomorrow before yesterday", mustTime(t, 1, 0, klog.Tomorrow), mustTime(t, 23, 0, klog.Yesterday), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := klog.NewRange(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, klog.ErrInvalidRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMinutes, r.InMinutes())
			assert.False(t, r.Open())
		})
	}
}

func TestRangeWithEndLeavesReceiverUnchanged(t *testing.T) {
	open := klog.NewOpenRange(mustTime(t, 10, 0, klog.Today))

	_, err := open.WithEnd(mustTime(t, 9, 0, klog.Today))
	require.ErrorIs(t, err, klog.ErrInvalidRange)
	assert.True(t, open.Open())

	closed, err := open.WithEnd(mustTime(t, 11, 0, klog.Today))
	require.NoError(t, err)
	assert.True(t, open.Open())
	assert.Equal(t, 60, closed.InMinutes())
	end, ok := closed.End()
	assert.True(t, ok)
	assert.Equal(t, "11:00", end.String())

	reopened := closed.WithoutEnd()
	assert.True(t, reopened.Open())
	assert.Equal(t, 0, reopened.InMinutes())
}

func TestRangeString(t *testing.T) {
	start := mustTime(t, 2, 0, klog.Today).WithFormat(klog.TwelveHour)
	open := klog.NewOpenRange(start)

	assert.Equal(t, "2:00am - ?", open.String())
	assert.Equal(t, "2:00am-???", open.WithFormat(klog.NoSpaces).WithPlaceholderCount(3).String())
	assert.Equal(t, 1, open.WithPlaceholderCount(0).PlaceholderCount())

	closed, err := klog.NewRange(mustTime(t, 23, 30, klog.Yesterday), mustTime(t, 1, 30, klog.Today))
	require.NoError(t, err)
	assert.Equal(t, "<23:30 - 1:30", closed.String())
	assert.Equal(t, 120, closed.Duration().InMinutes())
}
