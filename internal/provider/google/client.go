package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/avail/internal/provider"
)

// Client talks to the Google Calendar API on behalf of one account.
type Client struct {
	svc     *calendar.Service
	account string
}

var _ provider.Provider = (*Client)(nil)
var _ provider.CalendarLister = (*Client)(nil)

// NewClient creates a Calendar client for an account using the given token
// source.
func NewClient(ctx context.Context, account string, ts oauth2.TokenSource) (*Client, error) {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1; the Calendar API intermittently stalls on HTTP/2
	// connection reuse.
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:     svc,
		account: account,
	}, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ListEvents lists the event occurrences in [from, to) on a calendar.
// Recurring events are expanded server-side via SingleEvents.
func (c *Client) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]provider.SourceEvent, error) {
	var events []provider.SourceEvent

	pageToken := ""
	for {
		call := c.svc.Events.List(calendarID).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, &provider.FetchError{
				AccountID:  c.account,
				CalendarID: calendarID,
				Err:        fmt.Errorf("failed to list events: %w", err),
			}
		}

		for _, item := range page.Items {
			ev, ok := toSourceEvent(c.account, calendarID, item)
			if ok {
				events = append(events, ev)
			}
		}

		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateEvent creates a blocking event covering [start, end) and returns its
// event ID.
func (c *Client) CreateEvent(ctx context.Context, calendarID, title string, start, end time.Time) (string, error) {
	event := &calendar.Event{
		Summary: title,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
		},
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", &provider.WriteError{
			AccountID:  c.account,
			CalendarID: calendarID,
			Err:        fmt.Errorf("failed to create event: %w", err),
		}
	}

	return created.Id, nil
}

// ListCalendars lists all calendars accessible on the account.
func (c *Client) ListCalendars(ctx context.Context) ([]provider.CalendarInfo, error) {
	var calendars []provider.CalendarInfo

	pageToken := ""
	for {
		call := c.svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, &provider.FetchError{
				AccountID: c.account,
				Err:       fmt.Errorf("failed to list calendars: %w", err),
			}
		}

		for _, entry := range page.Items {
			calendars = append(calendars, provider.CalendarInfo{
				ID:      entry.Id,
				Name:    calendarName(entry),
				CanEdit: canEdit(entry.AccessRole),
			})
		}

		if page.NextPageToken == "" {
			return calendars, nil
		}
		pageToken = page.NextPageToken
	}
}
