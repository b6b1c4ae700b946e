package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/avail/internal/availability"
	"github.com/teemow/avail/internal/config"
	"github.com/teemow/avail/internal/engine"
	"github.com/teemow/avail/internal/logging"
	"github.com/teemow/avail/internal/store"
)

// nowRounding is the granularity the start of a search beginning today is
// rounded up to.
const nowRounding = 30 * time.Minute

type findOptions struct {
	start           string
	end             string
	window          string
	min             string
	max             string
	duration        string
	timezone        string
	includeWeekends bool
	createHold      bool
	slotIndex       int
	holdTitle       string
}

func newFindCmd() *cobra.Command {
	var opts findOptions

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find free slots across the selected calendars",
		Long: `Fetch events from every selected calendar, merge them into one busy
timeline and print the free slots matching the given constraints.

With --create-hold-event the chosen slot (--slot, 1-based) is re-verified
against fresh calendar data and a HOLD event is created on the nominated
hold calendar.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "First day of the search window, MM/DD/YYYY (default: today)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Last day of the search window, MM/DD/YYYY (default: start plus --window)")
	cmd.Flags().StringVar(&opts.window, "window", "", "Length of the search window, e.g. 1w, 3d (default from config)")
	cmd.Flags().StringVar(&opts.min, "min", "", "Earliest time of day to consider, e.g. 9:00am (default from config)")
	cmd.Flags().StringVar(&opts.max, "max", "", "Latest time of day to consider, e.g. 5:00pm (default from config)")
	cmd.Flags().StringVar(&opts.duration, "duration", "", "Minimum slot length, e.g. 30m, 1h (default from config)")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "", "Reference timezone, e.g. Europe/Berlin (default from config)")
	cmd.Flags().BoolVar(&opts.includeWeekends, "include-weekends", false, "Include Saturdays and Sundays")
	cmd.Flags().BoolVar(&opts.createHold, "create-hold-event", false, "Create a HOLD event on the chosen slot")
	cmd.Flags().IntVar(&opts.slotIndex, "slot", 1, "1-based index of the slot to hold")
	cmd.Flags().StringVar(&opts.holdTitle, "hold-title", "", "Suffix for the hold event title, e.g. \"Interview\"")

	return cmd
}

func runFind(ctx context.Context, opts findOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	logger := logging.Setup(verbose)

	constraints, err := buildConstraints(opts, cfg, loc, time.Now().In(loc))
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	selected, err := st.SelectedCalendars()
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		return fmt.Errorf("no calendars selected, run \"avail calendars select\" first")
	}

	accounts, err := st.Accounts()
	if err != nil {
		return err
	}

	providers, err := buildProviders(ctx, cfg, accounts, selected)
	if err != nil {
		return err
	}

	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	sources := make([]engine.Source, 0, len(selected))
	for _, cal := range selected {
		sources = append(sources, engine.Source{
			AccountID:  names[cal.AccountID],
			CalendarID: cal.ID,
			Provider:   providers[cal.AccountID],
		})
	}

	eng := engine.New(logger, loc)

	result, err := eng.FindAvailability(ctx, sources, constraints)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: skipped calendar %s on %s: %v\n", w.CalendarID, w.AccountID, w.Err)
	}

	slots := clipToNow(result.Slots, time.Now().In(loc), constraints.MinDuration)
	if len(slots) == 0 {
		fmt.Println("No free slots found.")
		return nil
	}

	fmt.Print(availability.Render(slots))

	if !opts.createHold {
		return nil
	}
	return createHold(ctx, eng, st, cfg, sources, slots, opts, constraints)
}

func createHold(ctx context.Context, eng *engine.Engine, st *store.Store, cfg *config.Config, sources []engine.Source, slots []availability.Slot, opts findOptions, constraints availability.Constraints) error {
	if opts.slotIndex < 1 || opts.slotIndex > len(slots) {
		return fmt.Errorf("slot %d does not exist, found %d slots", opts.slotIndex, len(slots))
	}
	slot := slots[opts.slotIndex-1]

	holdCal, err := st.HoldCalendar()
	if err != nil {
		return fmt.Errorf("no hold calendar nominated, run \"avail calendars hold\" first: %w", err)
	}
	if !holdCal.CanEdit {
		return fmt.Errorf("hold calendar %s is read-only", holdCal.Name)
	}

	accounts, err := st.Accounts()
	if err != nil {
		return err
	}
	var holdAccount *store.Account
	for _, a := range accounts {
		if a.ID == holdCal.AccountID {
			holdAccount = &a
			break
		}
	}
	if holdAccount == nil {
		return fmt.Errorf("hold calendar %s references an unknown account", holdCal.Name)
	}

	p, err := buildProvider(ctx, cfg, *holdAccount)
	if err != nil {
		return err
	}

	title := "HOLD"
	if opts.holdTitle != "" {
		title = "HOLD - " + opts.holdTitle
	}

	record, err := eng.Reserve(ctx, sources, engine.HoldTarget{
		AccountID:  holdAccount.Name,
		CalendarID: holdCal.ID,
		Provider:   p,
	}, title, slot, constraints)
	if err != nil {
		return err
	}

	fmt.Printf("Created %q on %s from %s to %s.\n",
		title, holdCal.Name,
		record.Slot.Start.Format("Mon Jan 02 03:04 PM"),
		record.Slot.End.Format("03:04 PM"))
	return nil
}

// buildConstraints resolves flags against configured defaults.
func buildConstraints(opts findOptions, cfg *config.Config, loc *time.Location, now time.Time) (availability.Constraints, error) {
	var c availability.Constraints

	min, err := config.ParseClock(orDefault(opts.min, cfg.Defaults.Min))
	if err != nil {
		return c, err
	}
	max, err := config.ParseClock(orDefault(opts.max, cfg.Defaults.Max))
	if err != nil {
		return c, err
	}

	duration, err := config.ParseShorthand(orDefault(opts.duration, cfg.Defaults.Duration))
	if err != nil {
		return c, err
	}

	start := midnight(now)
	if opts.start != "" {
		start, err = config.ParseDate(opts.start, loc)
		if err != nil {
			return c, err
		}
	}

	var end time.Time
	if opts.end != "" {
		end, err = config.ParseDate(opts.end, loc)
		if err != nil {
			return c, err
		}
	} else {
		window, err := config.ParseShorthand(orDefault(opts.window, cfg.Defaults.Window))
		if err != nil {
			return c, err
		}
		days := int(window / (24 * time.Hour))
		if days < 1 {
			days = 1
		}
		end = start.AddDate(0, 0, days-1)
	}

	c = availability.Constraints{
		Window:          availability.Window{Start: start, End: end},
		Daily:           availability.DailyBounds{Min: min, Max: max},
		IncludeWeekends: opts.includeWeekends,
		MinDuration:     duration,
	}
	return c, c.Validate()
}

// clipToNow removes or trims slots that are already in the past. A slot
// starting before now begins at now rounded up to the next half hour
// instead; it survives only if it still meets the minimum duration.
// Rounding works on the local wall clock, not the UTC epoch, so zones with
// a fractional offset still land on :00/:30.
func clipToNow(slots []availability.Slot, now time.Time, minDuration time.Duration) []availability.Slot {
	day := midnight(now)
	elapsed := now.Sub(day).Truncate(nowRounding)
	if day.Add(elapsed).Before(now) {
		elapsed += nowRounding
	}
	cutoff := day.Add(elapsed)

	var out []availability.Slot
	for _, s := range slots {
		if !s.Start.Before(cutoff) {
			out = append(out, s)
			continue
		}
		if s.End.Sub(cutoff) >= minDuration {
			out = append(out, availability.Slot{Start: cutoff, End: s.End})
		}
	}
	return out
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
