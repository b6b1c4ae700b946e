package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SourceEvent is a single calendar event as reported by a provider.
// The engine only reads these; it never mutates or stores them.
//
// For all-day events Start and End carry the event's civil dates at midnight
// UTC and AllDay is true; the normalizer projects them into the reference
// timezone. For timed events Start and End are exact instants.
type SourceEvent struct {
	AccountID  string
	CalendarID string
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
}

// CalendarInfo describes one calendar available on an account.
type CalendarInfo struct {
	ID      string
	Name    string
	CanEdit bool
}

// Provider is the capability set every calendar backend implements.
// Implementations are scoped to a single account.
type Provider interface {
	// ListEvents returns the concrete event occurrences in [from, to).
	// Recurring events arrive pre-expanded into individual occurrences.
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]SourceEvent, error)

	// CreateEvent creates a blocking event covering [start, end) and returns
	// the provider's identifier for it.
	CreateEvent(ctx context.Context, calendarID, title string, start, end time.Time) (string, error)
}

// CalendarLister is implemented by providers that can enumerate the
// calendars on their account. Used by the calendar cache refresh.
type CalendarLister interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
}

// ErrReadOnly is returned by CreateEvent on providers that cannot write
// events, such as ICS feed subscriptions.
var ErrReadOnly = errors.New("provider is read-only")

// FetchError reports a failed event or calendar fetch for one calendar.
// Fetch failures are recoverable at the granularity of a single calendar;
// the engine downgrades them to warnings.
type FetchError struct {
	AccountID  string
	CalendarID string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for calendar %s on account %s: %v", e.CalendarID, e.AccountID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// WriteError reports a failed event creation.
type WriteError struct {
	AccountID  string
	CalendarID string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed for calendar %s on account %s: %v", e.CalendarID, e.AccountID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
