package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/teemow/avail/internal/availability"
	"github.com/teemow/avail/internal/interval"
	"github.com/teemow/avail/internal/logging"
	"github.com/teemow/avail/internal/provider"
)

// fetchConcurrency caps parallel calendar fetches. Microsoft Graph throttles
// mailboxes at four concurrent requests, and the other backends have no
// reason to go wider.
const fetchConcurrency = 4

// ErrNoData means every calendar fetch failed, so no availability statement
// can be made at all.
var ErrNoData = errors.New("no calendar data could be fetched")

// Source is one calendar to include in the search, together with the
// provider that can read it.
type Source struct {
	AccountID  string
	CalendarID string
	Provider   provider.Provider
}

// Warning records a calendar whose fetch failed. The search continues
// without its events.
type Warning struct {
	AccountID  string
	CalendarID string
	Err        error
}

// Result is the outcome of an availability search.
type Result struct {
	Slots    []availability.Slot
	Warnings []Warning
}

// Engine runs availability searches over a set of calendar sources.
type Engine struct {
	logger *slog.Logger
	loc    *time.Location
}

// New creates an engine reporting times in loc.
func New(logger *slog.Logger, loc *time.Location) *Engine {
	return &Engine{
		logger: logging.WithOperation(logger, "availability"),
		loc:    loc,
	}
}

// FindAvailability fetches events from all sources concurrently, folds them
// into a single busy timeline, and returns the free slots satisfying the
// constraints. Individual fetch failures become warnings; only when every
// fetch fails is the search aborted with ErrNoData.
//
// Constraints are validated before any fetch is issued.
func (e *Engine) FindAvailability(ctx context.Context, sources []Source, c availability.Constraints) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	from := c.Daily.Min.On(c.Window.Start.In(e.loc))
	to := c.Daily.Max.On(c.Window.End.In(e.loc))

	events, warnings := e.fetchAll(ctx, sources, from, to)
	if len(sources) > 0 && len(warnings) == len(sources) {
		return nil, ErrNoData
	}

	timeline := e.buildTimeline(events)

	slots, err := availability.Find(timeline, c)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("availability search finished",
		slog.Int("sources", len(sources)),
		slog.Int("events", len(events)),
		slog.Int("busy_intervals", len(timeline)),
		slog.Int("slots", len(slots)),
		slog.Int("warnings", len(warnings)))

	return &Result{Slots: slots, Warnings: warnings}, nil
}

// fetchAll reads every source in parallel, at most fetchConcurrency at a
// time. Results keep the order of sources so the merged timeline is
// deterministic regardless of fetch timing.
func (e *Engine) fetchAll(ctx context.Context, sources []Source, from, to time.Time) ([]provider.SourceEvent, []Warning) {
	type fetchResult struct {
		events []provider.SourceEvent
		err    error
	}

	p := pool.NewWithResults[fetchResult]().WithMaxGoroutines(fetchConcurrency)
	for _, src := range sources {
		p.Go(func() fetchResult {
			started := time.Now()
			events, err := src.Provider.ListEvents(ctx, src.CalendarID, from, to)
			if err != nil {
				return fetchResult{err: err}
			}

			e.logger.Debug("fetched calendar",
				logging.Account(src.AccountID),
				logging.Calendar(src.CalendarID),
				slog.Int("events", len(events)),
				logging.Duration(time.Since(started)))
			return fetchResult{events: events}
		})
	}

	var events []provider.SourceEvent
	var warnings []Warning
	for i, res := range p.Wait() {
		if res.err != nil {
			src := sources[i]
			e.logger.Warn("calendar fetch failed, continuing without it",
				logging.Account(src.AccountID),
				logging.Calendar(src.CalendarID),
				logging.Err(res.err))
			warnings = append(warnings, Warning{
				AccountID:  src.AccountID,
				CalendarID: src.CalendarID,
				Err:        res.err,
			})
			continue
		}
		events = append(events, res.events...)
	}

	return events, warnings
}

// buildTimeline normalizes raw events into the reference timezone and merges
// them into a sorted, non-overlapping busy timeline.
func (e *Engine) buildTimeline(events []provider.SourceEvent) interval.Timeline {
	intervals, dropped := interval.Normalize(events, e.loc)
	if dropped > 0 {
		e.logger.Warn("dropped events with invalid times", slog.Int("count", dropped))
	}
	return interval.Merge(intervals)
}
