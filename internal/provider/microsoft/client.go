package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/oauth2"

	"github.com/teemow/avail/internal/provider"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

// graphPageSize keeps calendarView paging well under Graph's maximum.
const graphPageSize = 250

// Client talks to the Microsoft Graph API on behalf of one account.
type Client struct {
	httpClient *http.Client
	baseURL    string
	account    string
}

var _ provider.Provider = (*Client)(nil)
var _ provider.CalendarLister = (*Client)(nil)

// NewClient creates a Graph client for an account using the given token
// source.
func NewClient(ctx context.Context, account string, ts oauth2.TokenSource) *Client {
	return &Client{
		httpClient: oauth2.NewClient(ctx, ts),
		baseURL:    defaultBaseURL,
		account:    account,
	}
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// ListEvents lists the event occurrences in [from, to) on a calendar via the
// calendarView endpoint, which expands recurring events server-side.
func (c *Client) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]provider.SourceEvent, error) {
	query := url.Values{}
	query.Set("startDateTime", from.UTC().Format(time.RFC3339))
	query.Set("endDateTime", to.UTC().Format(time.RFC3339))
	query.Set("$select", "subject,start,end,isAllDay")
	query.Set("$top", fmt.Sprint(graphPageSize))

	next := fmt.Sprintf("%s/me/calendars/%s/calendarView?%s", c.baseURL, url.PathEscape(calendarID), query.Encode())

	var events []provider.SourceEvent
	for next != "" {
		var page eventPage
		if err := c.get(ctx, next, &page); err != nil {
			return nil, &provider.FetchError{
				AccountID:  c.account,
				CalendarID: calendarID,
				Err:        err,
			}
		}

		for _, item := range page.Value {
			ev, ok := toSourceEvent(c.account, calendarID, item)
			if ok {
				events = append(events, ev)
			}
		}

		next = page.NextLink
	}

	return events, nil
}

// CreateEvent creates a blocking event covering [start, end) and returns its
// event ID.
func (c *Client) CreateEvent(ctx context.Context, calendarID, title string, start, end time.Time) (string, error) {
	body := graphEventRequest{
		Subject: title,
		Start:   graphDateTime{DateTime: start.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
		End:     graphDateTime{DateTime: end.UTC().Format("2006-01-02T15:04:05"), TimeZone: "UTC"},
	}

	endpoint := fmt.Sprintf("%s/me/calendars/%s/events", c.baseURL, url.PathEscape(calendarID))

	var created graphEvent
	if err := c.post(ctx, endpoint, body, &created); err != nil {
		return "", &provider.WriteError{
			AccountID:  c.account,
			CalendarID: calendarID,
			Err:        err,
		}
	}

	return created.ID, nil
}

// ListCalendars lists all calendars accessible on the account.
func (c *Client) ListCalendars(ctx context.Context) ([]provider.CalendarInfo, error) {
	next := c.baseURL + "/me/calendars?$select=id,name,canEdit"

	var calendars []provider.CalendarInfo
	for next != "" {
		var page calendarPage
		if err := c.get(ctx, next, &page); err != nil {
			return nil, &provider.FetchError{
				AccountID: c.account,
				Err:       err,
			}
		}

		for _, cal := range page.Value {
			calendars = append(calendars, provider.CalendarInfo{
				ID:      cal.ID,
				Name:    cal.Name,
				CanEdit: cal.CanEdit,
			})
		}

		next = page.NextLink
	}

	return calendars, nil
}

// get performs a Graph GET with retries on throttling and transient server
// errors, decoding the JSON response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			// Keep event times in UTC regardless of mailbox settings.
			req.Header.Set("Prefer", `outlook.timezone="UTC"`)

			return c.do(req, out)
		},
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("graph returned %s: %s", resp.Status, bytes.TrimSpace(data))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return err
		}
		return retry.Unrecoverable(err)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}
