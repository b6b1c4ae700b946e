package ics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/avail/internal/provider"
)

const singleEventICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:single-1
SUMMARY:Dentist
DTSTART:20221005T140000Z
DTEND:20221005T150000Z
END:VEVENT
END:VCALENDAR
`

const recurringEventICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:weekly-1
SUMMARY:Team sync
DTSTART:20221003T130000Z
DTEND:20221003T133000Z
RRULE:FREQ=WEEKLY;BYDAY=MO,WE
EXDATE:20221010T130000Z
END:VEVENT
END:VCALENDAR
`

const allDayEventICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:allday-1
SUMMARY:Public holiday
DTSTART;VALUE=DATE:20221005
DTEND;VALUE=DATE:20221006
END:VEVENT
END:VCALENDAR
`

func window(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	from := time.Date(2022, time.October, 3, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 14)
}

func serveFeed(t *testing.T, payload string) *Feed {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(srv.Close)

	feed := NewFeed("holidays", "Holidays", srv.URL)
	feed.httpClient = srv.Client()
	return feed
}

func TestListEventsSingle(t *testing.T) {
	feed := serveFeed(t, singleEventICS)
	from, to := window(t)

	events, err := feed.ListEvents(context.Background(), FeedCalendarID, from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "holidays", events[0].AccountID)
	assert.Equal(t, FeedCalendarID, events[0].CalendarID)
	assert.Equal(t, "Dentist", events[0].Title)
	assert.True(t, events[0].Start.Equal(time.Date(2022, time.October, 5, 14, 0, 0, 0, time.UTC)))
	assert.True(t, events[0].End.Equal(time.Date(2022, time.October, 5, 15, 0, 0, 0, time.UTC)))
	assert.False(t, events[0].AllDay)
}

func TestListEventsExpandsRecurrence(t *testing.T) {
	feed := serveFeed(t, recurringEventICS)
	from, to := window(t)

	events, err := feed.ListEvents(context.Background(), FeedCalendarID, from, to)
	require.NoError(t, err)

	var starts []time.Time
	for _, ev := range events {
		assert.Equal(t, "Team sync", ev.Title)
		assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
		starts = append(starts, ev.Start)
	}

	// Mondays and Wednesdays over two weeks, minus the excluded Oct 10.
	want := []time.Time{
		time.Date(2022, time.October, 3, 13, 0, 0, 0, time.UTC),
		time.Date(2022, time.October, 5, 13, 0, 0, 0, time.UTC),
		time.Date(2022, time.October, 12, 13, 0, 0, 0, time.UTC),
	}

	require.Len(t, starts, len(want))
	for i, w := range want {
		assert.True(t, starts[i].Equal(w), "occurrence %d: got %v want %v", i, starts[i], w)
	}
}

func TestListEventsAllDay(t *testing.T) {
	feed := serveFeed(t, allDayEventICS)
	from, to := window(t)

	events, err := feed.ListEvents(context.Background(), FeedCalendarID, from, to)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, events[0].AllDay)
	assert.Equal(t, time.Date(2022, time.October, 5, 0, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2022, time.October, 6, 0, 0, 0, 0, time.UTC), events[0].End)
}

func TestListEventsWindowFilter(t *testing.T) {
	feed := serveFeed(t, singleEventICS)

	from := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	events, err := feed.ListEvents(context.Background(), FeedCalendarID, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListEventsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	feed := NewFeed("holidays", "Holidays", srv.URL)
	from, to := window(t)

	_, err := feed.ListEvents(context.Background(), FeedCalendarID, from, to)
	require.Error(t, err)

	var fetchErr *provider.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestCreateEventReadOnly(t *testing.T) {
	feed := NewFeed("holidays", "Holidays", "http://example.invalid/feed.ics")

	now := time.Now()
	_, err := feed.CreateEvent(context.Background(), FeedCalendarID, "HOLD", now, now.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrReadOnly))

	var writeErr *provider.WriteError
	assert.True(t, errors.As(err, &writeErr))
}

func TestListCalendars(t *testing.T) {
	feed := NewFeed("holidays", "Holidays", "http://example.invalid/feed.ics")

	calendars, err := feed.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 1)
	assert.Equal(t, provider.CalendarInfo{ID: FeedCalendarID, Name: "Holidays", CanEdit: false}, calendars[0])
}
