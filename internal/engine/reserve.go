package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/avail/internal/availability"
	"github.com/teemow/avail/internal/logging"
	"github.com/teemow/avail/internal/provider"
)

// verifyTimeout bounds the re-check fetch. The verification runs detached
// from the original search deadline so a long availability search cannot
// starve it; the short timeout keeps the race window small.
const verifyTimeout = 30 * time.Second

// writeTimeout bounds the hold-event write once the slot has been verified.
const writeTimeout = 30 * time.Second

// ErrSlotNoLongerAvailable means the re-check before writing found the
// chosen slot overlapped by a busy interval that appeared since the search.
// No hold event has been created.
var ErrSlotNoLongerAvailable = fmt.Errorf("slot is no longer available")

// ReservationRejectedError means the slot was still free but the provider
// refused the hold-event write.
type ReservationRejectedError struct {
	Err error
}

func (e *ReservationRejectedError) Error() string {
	return fmt.Sprintf("hold event rejected: %v", e.Err)
}

func (e *ReservationRejectedError) Unwrap() error {
	return e.Err
}

// HoldTarget names the calendar that receives the hold event.
type HoldTarget struct {
	AccountID  string
	CalendarID string
	Provider   provider.Provider
}

// ReservationRecord describes a successfully created hold event.
type ReservationRecord struct {
	EventID    string
	AccountID  string
	CalendarID string
	Slot       availability.Slot
}

// Reserve places a hold event over slot after verifying against fresh
// calendar data that the slot is still free. The verification re-fetches the
// slot's day from every source under its own short timeout, independent of
// the search invocation's deadline, and re-runs the search restricted to
// that day; the reservation proceeds only if a currently free slot fully
// contains the requested one.
//
// Verification is fail-safe: if any source cannot be re-fetched the
// reservation is aborted, because a stale view must never produce a
// double-booking. Nothing is written before the slot is confirmed.
func (e *Engine) Reserve(ctx context.Context, sources []Source, target HoldTarget, title string, slot availability.Slot, c availability.Constraints) (*ReservationRecord, error) {
	if !slot.Start.Before(slot.End) {
		return nil, fmt.Errorf("%w: slot start %s is not before end %s",
			availability.ErrInvalidConstraints, slot.Start, slot.End)
	}

	day := midnight(slot.Start.In(e.loc))
	from := day
	to := day.AddDate(0, 0, 1)

	verifyCtx, cancelVerify := context.WithTimeout(context.WithoutCancel(ctx), verifyTimeout)
	defer cancelVerify()

	events, warnings := e.fetchAll(verifyCtx, sources, from, to)
	if len(warnings) > 0 {
		w := warnings[0]
		return nil, &provider.FetchError{
			AccountID:  w.AccountID,
			CalendarID: w.CalendarID,
			Err:        fmt.Errorf("cannot verify slot: %w", w.Err),
		}
	}

	timeline := e.buildTimeline(events)

	// The whole day is re-checked, not just the daily bounds, so holds near
	// the envelope edges are verified against every conflicting event.
	recheck := availability.Constraints{
		Window:          availability.Window{Start: day, End: day},
		Daily:           availability.DailyBounds{Min: availability.Clock{}, Max: availability.Clock{Hour: 24}},
		IncludeWeekends: true,
		MinDuration:     time.Minute,
	}

	free, err := availability.Find(timeline, recheck)
	if err != nil {
		return nil, err
	}

	if !contains(free, slot) {
		e.logger.Info("slot taken since search, refusing to create hold",
			slog.Time("start", slot.Start),
			slog.Time("end", slot.End))
		return nil, ErrSlotNoLongerAvailable
	}

	// The slot is confirmed; the write must not be torn down by a cancelled
	// parent context half way through.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	eventID, err := target.Provider.CreateEvent(writeCtx, target.CalendarID, title, slot.Start, slot.End)
	if err != nil {
		return nil, &ReservationRejectedError{Err: err}
	}

	e.logger.Info("created hold event",
		logging.Account(target.AccountID),
		logging.Calendar(target.CalendarID),
		slog.String("event_id", eventID),
		slog.Time("start", slot.Start),
		slog.Time("end", slot.End))

	return &ReservationRecord{
		EventID:    eventID,
		AccountID:  target.AccountID,
		CalendarID: target.CalendarID,
		Slot:       slot,
	}, nil
}

// contains reports whether some free slot fully covers the requested one.
func contains(free []availability.Slot, want availability.Slot) bool {
	for _, s := range free {
		if !s.Start.After(want.Start) && !s.End.Before(want.End) {
			return true
		}
	}
	return false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
