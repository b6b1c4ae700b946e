package microsoft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/avail/internal/provider"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Client{
		httpClient: srv.Client(),
		baseURL:    srv.URL,
		account:    "work",
	}
}

func TestListEvents(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `outlook.timezone="UTC"`, r.Header.Get("Prefer"))
		assert.Contains(t, r.URL.Path, "/me/calendars/cal-1/calendarView")
		assert.Equal(t, "2022-10-05T00:00:00Z", r.URL.Query().Get("startDateTime"))

		fmt.Fprint(w, `{
			"value": [
				{
					"id": "ev-1",
					"subject": "Standup",
					"start": {"dateTime": "2022-10-05T09:00:00.0000000", "timeZone": "UTC"},
					"end": {"dateTime": "2022-10-05T09:30:00.0000000", "timeZone": "UTC"},
					"isAllDay": false
				},
				{
					"id": "ev-2",
					"subject": "Offsite",
					"start": {"dateTime": "2022-10-06T00:00:00.0000000", "timeZone": "UTC"},
					"end": {"dateTime": "2022-10-07T00:00:00.0000000", "timeZone": "UTC"},
					"isAllDay": true
				}
			]
		}`)
	}))

	from := time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	events, err := client.ListEvents(context.Background(), "cal-1", from, to)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "work", events[0].AccountID)
	assert.Equal(t, "cal-1", events[0].CalendarID)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, time.Date(2022, time.October, 5, 9, 0, 0, 0, time.UTC), events[0].Start)
	assert.False(t, events[0].AllDay)
	assert.True(t, events[1].AllDay)
}

func TestListEventsPaging(t *testing.T) {
	var client *Client
	client = testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `{"value": [{"id": "ev-2", "subject": "Second",
				"start": {"dateTime": "2022-10-06T10:00:00.0000000", "timeZone": "UTC"},
				"end": {"dateTime": "2022-10-06T11:00:00.0000000", "timeZone": "UTC"}}]}`)
			return
		}
		fmt.Fprintf(w, `{"value": [{"id": "ev-1", "subject": "First",
			"start": {"dateTime": "2022-10-05T10:00:00.0000000", "timeZone": "UTC"},
			"end": {"dateTime": "2022-10-05T11:00:00.0000000", "timeZone": "UTC"}}],
			"@odata.nextLink": "%s/me/calendars/cal-1/calendarView?page=2"}`, client.baseURL)
	}))

	from := time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC)

	events, err := client.ListEvents(context.Background(), "cal-1", from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "First", events[0].Title)
	assert.Equal(t, "Second", events[1].Title)
}

func TestListEventsRetriesThrottling(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"value": []}`)
	}))

	from := time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC)

	_, err := client.ListEvents(context.Background(), "cal-1", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListEventsClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	from := time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC)

	_, err := client.ListEvents(context.Background(), "missing", from, from.AddDate(0, 0, 1))
	require.Error(t, err)

	var fetchErr *provider.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, "work", fetchErr.AccountID)
	assert.Equal(t, "missing", fetchErr.CalendarID)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateEvent(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/me/calendars/cal-1/events")

		var req graphEventRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "HOLD - Interview", req.Subject)
		assert.Equal(t, "2022-10-05T14:00:00", req.Start.DateTime)
		assert.Equal(t, "UTC", req.Start.TimeZone)

		fmt.Fprint(w, `{"id": "new-ev"}`)
	}))

	start := time.Date(2022, time.October, 5, 14, 0, 0, 0, time.UTC)

	id, err := client.CreateEvent(context.Background(), "cal-1", "HOLD - Interview", start, start.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "new-ev", id)
}

func TestCreateEventFailure(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	start := time.Date(2022, time.October, 5, 14, 0, 0, 0, time.UTC)

	_, err := client.CreateEvent(context.Background(), "cal-1", "HOLD", start, start.Add(time.Hour))
	require.Error(t, err)

	var writeErr *provider.WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "cal-1", writeErr.CalendarID)
}

func TestListCalendars(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/me/calendars")
		fmt.Fprint(w, `{"value": [
			{"id": "cal-1", "name": "Calendar", "canEdit": true},
			{"id": "cal-2", "name": "Holidays", "canEdit": false}
		]}`)
	}))

	calendars, err := client.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 2)

	assert.Equal(t, provider.CalendarInfo{ID: "cal-1", Name: "Calendar", CanEdit: true}, calendars[0])
	assert.Equal(t, provider.CalendarInfo{ID: "cal-2", Name: "Holidays", CanEdit: false}, calendars[1])
}

func TestParseGraphTime(t *testing.T) {
	got, ok := parseGraphTime("2022-10-05T14:30:00.0000000")
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, time.October, 5, 14, 30, 0, 0, time.UTC), got)

	got, ok = parseGraphTime("2022-10-05T14:30:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, time.October, 5, 14, 30, 0, 0, time.UTC), got)

	_, ok = parseGraphTime("not-a-time")
	assert.False(t, ok)
}
