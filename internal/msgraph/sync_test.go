package msgraph_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/klg/internal/klog"
	"github.com/Tiliavir/klg/internal/msgraph"
)

func makeEvent(id, subject, start, end string) msgraph.CalendarEvent {
	return msgraph.CalendarEvent{
		ID:          id,
		Subject:     subject,
		Sensitivity: "normal",
		ShowAs:      "busy",
		Start:       msgraph.DateTimeTimeZone{DateTime: start, TimeZone: "UTC"},
		End:         msgraph.DateTimeTimeZone{DateTime: end, TimeZone: "UTC"},
	}
}

func syncOpts(out *bytes.Buffer) msgraph.SyncOptions {
	return msgraph.SyncOptions{Tag: "meeting", Timezone: "UTC", Out: out}
}

func TestMapEventToEntry(t *testing.T) {
	event := makeEvent("ext-id-1", "Sprint Planning", "2026-02-27T09:00:00.0000000", "2026-02-27T10:30:00.0000000")

	entry, date, err := msgraph.MapEventToEntry(event, "UTC", "meeting")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), date)
	assert.Equal(t, "    9:00 - 10:30 Sprint Planning #meeting", entry.String())
	assert.Equal(t, 90, entry.InMinutes())
	assert.True(t, entry.Summary.HasTag("meeting"))
}

func TestMapEventToEntry_WithLocation(t *testing.T) {
	event := makeEvent("ext-id-2", "1:1", "2026-02-27T14:00:00", "2026-02-27T14:30:00")
	event.Location.DisplayName = `Room "Blue"`

	entry, _, err := msgraph.MapEventToEntry(event, "", "team sync")
	require.NoError(t, err)
	assert.Equal(t, `1:1 #team-sync #location="Room 'Blue'"`, entry.Summary.Text())
	assert.Equal(t, []klog.Tag{klog.NewTag("team-sync"), klog.NewValueTag("location", `"Room 'Blue'"`)}, entry.Summary.Tags())
}

func TestMapEventToEntry_AcrossMidnight(t *testing.T) {
	event := makeEvent("late", "Release", "2026-02-27T23:00:00", "2026-02-28T01:15:00")

	entry, date, err := msgraph.MapEventToEntry(event, "UTC", "")
	require.NoError(t, err)
	assert.Equal(t, 27, date.Day())
	assert.Equal(t, "    23:00 - 1:15> Release", entry.String())
	assert.Equal(t, 135, entry.InMinutes())
}

func TestMapEventToEntry_Timezone(t *testing.T) {
	event := makeEvent("tz", "Standup", "2026-02-27T09:00:00Z", "2026-02-27T09:15:00Z")
	_, _, err := msgraph.MapEventToEntry(event, "Not/AZone", "")
	require.NoError(t, err, "RFC3339 times carry their own offset")

	event = makeEvent("tz", "Standup", "2026-02-27T09:00:00", "2026-02-27T09:15:00")
	_, _, err = msgraph.MapEventToEntry(event, "Not/AZone", "")
	assert.Error(t, err)
}

func TestSyncEvents_Import(t *testing.T) {
	var out bytes.Buffer
	var records []*klog.Record
	events := []msgraph.CalendarEvent{
		makeEvent("e1", "Planning", "2026-02-27T09:00:00", "2026-02-27T10:00:00"),
		makeEvent("e2", "Review", "2026-02-27T15:00:00", "2026-02-27T16:30:00"),
		makeEvent("e3", "Retro", "2026-02-28T11:00:00", "2026-02-28T12:00:00"),
	}

	result, err := msgraph.SyncEvents(&records, events, syncOpts(&out))
	require.NoError(t, err)

	assert.Equal(t, msgraph.SyncResult{Imported: 3}, result)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-02-27\n    9:00 - 10:00 Planning #meeting\n    15:00 - 16:30 Review #meeting", records[0].String())
	assert.Equal(t, 60, records[1].InMinutes())
	assert.Contains(t, out.String(), "✓ Imported: Review (1h30m)")
}

func TestSyncEvents_Idempotent(t *testing.T) {
	var out bytes.Buffer
	var records []*klog.Record
	events := []msgraph.CalendarEvent{makeEvent("e1", "Planning", "2026-02-27T09:00:00", "2026-02-27T10:00:00")}

	r1, err := msgraph.SyncEvents(&records, events, syncOpts(&out))
	require.NoError(t, err)
	r2, err := msgraph.SyncEvents(&records, events, syncOpts(&out))
	require.NoError(t, err)

	assert.Equal(t, 1, r1.Imported)
	assert.Equal(t, msgraph.SyncResult{Skipped: 1}, r2)
	require.Len(t, records, 1)
	assert.Len(t, records[0].Entries, 1)
}

func TestSyncEvents_Update(t *testing.T) {
	var out bytes.Buffer
	var records []*klog.Record
	event := makeEvent("e1", "Planning", "2026-02-27T09:00:00", "2026-02-27T10:00:00")

	_, err := msgraph.SyncEvents(&records, []msgraph.CalendarEvent{event}, syncOpts(&out))
	require.NoError(t, err)

	event.End.DateTime = "2026-02-27T10:45:00"
	r2, err := msgraph.SyncEvents(&records, []msgraph.CalendarEvent{event}, syncOpts(&out))
	require.NoError(t, err)

	assert.Equal(t, msgraph.SyncResult{Updated: 1}, r2)
	require.Len(t, records[0].Entries, 1)
	assert.Equal(t, 105, records[0].InMinutes())
}

func TestSyncEvents_SkipFiltered(t *testing.T) {
	base := makeEvent("e", "Filtered", "2026-02-27T09:00:00", "2026-02-27T10:00:00")
	tests := []struct {
		name  string
		event func() msgraph.CalendarEvent
	}{
		{"cancelled", func() msgraph.CalendarEvent { e := base; e.IsCancelled = true; return e }},
		{"all day", func() msgraph.CalendarEvent { e := base; e.IsAllDay = true; return e }},
		{"private", func() msgraph.CalendarEvent { e := base; e.Sensitivity = "private"; return e }},
		{"free", func() msgraph.CalendarEvent { e := base; e.ShowAs = "free"; return e }},
		{"no end", func() msgraph.CalendarEvent { e := base; e.End.DateTime = ""; return e }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var records []*klog.Record
			r, err := msgraph.SyncEvents(&records, []msgraph.CalendarEvent{tt.event()}, syncOpts(&out))
			require.NoError(t, err)
			assert.Equal(t, msgraph.SyncResult{}, r)
			assert.Empty(t, records)
		})
	}
}

func TestSyncEvents_DryRun(t *testing.T) {
	var out bytes.Buffer
	var records []*klog.Record
	opts := syncOpts(&out)
	opts.DryRun = true

	result, err := msgraph.SyncEvents(&records, []msgraph.CalendarEvent{
		makeEvent("e1", "Planning", "2026-02-27T09:00:00", "2026-02-27T10:00:00"),
	}, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, records)
}

func TestSyncEvents_KeepsManualEntries(t *testing.T) {
	var out bytes.Buffer
	manual := klog.NewRecord(time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC))
	manual.Entries = []klog.Entry{{Value: klog.DurationFromMinutes(30), Summary: klog.NewSummary("email")}}
	records := []*klog.Record{manual}

	_, err := msgraph.SyncEvents(&records, []msgraph.CalendarEvent{
		makeEvent("e1", "Planning", "2026-02-27T09:00:00", "2026-02-27T10:00:00"),
		makeEvent("bad", "Broken", "yesterday", "2026-02-27T10:00:00"),
	}, syncOpts(&out))
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Len(t, manual.Entries, 2)
	assert.Equal(t, "email", manual.Entries[0].Summary.Text())
	assert.Contains(t, out.String(), `! Error mapping event "Broken"`)
}

func TestGetCalendarView(t *testing.T) {
	var calls int
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/me/calendarView", r.URL.Path)
		assert.Equal(t, `outlook.timezone="Europe/Berlin"`, r.Header.Get("Prefer"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`{"value":[{"id":"b","subject":"Second"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"value":[{"id":"a","subject":"First","start":{"dateTime":"2026-02-27T09:00:00"}}],` +
			`"@odata.nextLink":"` + srv.URL + `/me/calendarView?page=2"}`))
	}))
	defer srv.Close()

	client := msgraph.NewClientWithHTTP(srv.Client(), srv.URL)
	from := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	events, err := client.GetCalendarView(context.Background(), from, from.AddDate(0, 0, 1), "Europe/Berlin")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, events, 2)
	assert.Equal(t, "First", events[0].Subject)
	assert.Equal(t, "2026-02-27T09:00:00", events[0].Start.DateTime)
	assert.Equal(t, "b", events[1].ID)
}

func TestGetCalendarViewError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := msgraph.NewClientWithHTTP(srv.Client(), srv.URL).GetCalendarView(context.Background(), time.Now(), time.Now(), "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "401"))
}
