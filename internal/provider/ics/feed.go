package ics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/teemow/avail/internal/provider"
)

// FeedCalendarID is the calendar identifier an ICS feed exposes; a feed is a
// single calendar.
const FeedCalendarID = "feed"

// maxOccurrencesPerEvent caps recurrence expansion so a malformed rule cannot
// blow up a fetch.
const maxOccurrencesPerEvent = 5000

// Feed is a read-only provider for one ICS subscription URL.
type Feed struct {
	httpClient *http.Client
	url        string
	account    string
	name       string
}

var _ provider.Provider = (*Feed)(nil)
var _ provider.CalendarLister = (*Feed)(nil)

// NewFeed creates a provider for an ICS feed URL.
func NewFeed(account, name, url string) *Feed {
	return &Feed{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		account:    account,
		name:       name,
	}
}

// Account returns the account name this feed is associated with.
func (f *Feed) Account() string {
	return f.account
}

// ListEvents fetches the feed and returns the event occurrences in [from, to).
// The calendarID is ignored; a feed has exactly one calendar.
func (f *Feed) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]provider.SourceEvent, error) {
	body, err := f.fetch(ctx)
	if err != nil {
		return nil, &provider.FetchError{
			AccountID:  f.account,
			CalendarID: FeedCalendarID,
			Err:        err,
		}
	}

	events, err := expand(f.account, body, from, to)
	if err != nil {
		return nil, &provider.FetchError{
			AccountID:  f.account,
			CalendarID: FeedCalendarID,
			Err:        err,
		}
	}
	return events, nil
}

// CreateEvent always fails; ICS subscriptions cannot be written to.
func (f *Feed) CreateEvent(ctx context.Context, calendarID, title string, start, end time.Time) (string, error) {
	return "", &provider.WriteError{
		AccountID:  f.account,
		CalendarID: FeedCalendarID,
		Err:        provider.ErrReadOnly,
	}
}

// ListCalendars returns the single calendar the feed represents.
func (f *Feed) ListCalendars(ctx context.Context) ([]provider.CalendarInfo, error) {
	return []provider.CalendarInfo{
		{
			ID:      FeedCalendarID,
			Name:    f.name,
			CanEdit: false,
		},
	}, nil
}

func (f *Feed) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return body, nil
}

// parseCalendar is split out so expansion tests can run on inline fixtures.
func parseCalendar(body []byte) (*ical.Calendar, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return cal, nil
}
