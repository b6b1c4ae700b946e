package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/avail/internal/config"
	"github.com/teemow/avail/internal/provider"
	"github.com/teemow/avail/internal/store"
)

func newCalendarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "Manage the calendars considered by the availability search",
	}

	cmd.AddCommand(newCalendarsRefreshCmd())
	cmd.AddCommand(newCalendarsListCmd())
	cmd.AddCommand(newCalendarsSelectCmd())
	cmd.AddCommand(newCalendarsHoldCmd())
	return cmd
}

func newCalendarsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the calendar lists of all linked accounts",
		Long: `Fetch the calendar list of every linked account and update the local
cache. Selection and hold-calendar choices of calendars that still exist
are preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			accounts, err := st.Accounts()
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return fmt.Errorf("no accounts linked, run \"avail accounts add\" first")
			}

			for _, account := range accounts {
				p, err := buildProvider(cmd.Context(), cfg, account)
				if err != nil {
					return err
				}
				lister, ok := p.(provider.CalendarLister)
				if !ok {
					continue
				}

				infos, err := lister.ListCalendars(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list calendars for %s: %w", account.Name, err)
				}

				calendars := make([]store.Calendar, 0, len(infos))
				for _, info := range infos {
					calendars = append(calendars, store.Calendar{
						AccountID: account.ID,
						ID:        info.ID,
						Name:      info.Name,
						CanEdit:   info.CanEdit,
					})
				}
				if err := st.ReplaceCalendars(account.ID, calendars); err != nil {
					return err
				}

				fmt.Printf("Refreshed %d calendars for %s account %s.\n", len(calendars), account.Platform, account.Name)
			}
			return nil
		},
	}
}

func newCalendarsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached calendars and their selection state",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			accounts, err := st.Accounts()
			if err != nil {
				return err
			}

			for _, account := range accounts {
				calendars, err := st.Calendars(account.ID)
				if err != nil {
					return err
				}

				fmt.Printf("%s (%s)\n", account.Name, account.Platform)
				if len(calendars) == 0 {
					fmt.Println("  no calendars cached, run \"avail calendars refresh\"")
					continue
				}
				for _, cal := range calendars {
					marker := " "
					if cal.Selected {
						marker = "x"
					}
					flags := ""
					if cal.HoldEvent {
						flags += " [hold]"
					}
					if !cal.CanEdit {
						flags += " [read-only]"
					}
					fmt.Printf("  [%s] %s\t%s%s\n", marker, cal.ID, cal.Name, flags)
				}
			}
			return nil
		},
	}
}

// resolveAccount finds the account a calendar subcommand refers to.
func resolveAccount(st *store.Store, name, platformName string) (*store.Account, error) {
	platform, err := store.ParsePlatform(platformName)
	if err != nil {
		return nil, err
	}
	return st.AccountByName(name, platform)
}

func newCalendarsSelectCmd() *cobra.Command {
	var platformName string
	var unselect bool

	cmd := &cobra.Command{
		Use:   "select <account> <calendar-id>",
		Short: "Include or exclude a calendar in the availability search",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			account, err := resolveAccount(st, args[0], platformName)
			if err != nil {
				return err
			}

			if err := st.SetSelected(account.ID, args[1], !unselect); err != nil {
				return err
			}

			verb := "Selected"
			if unselect {
				verb = "Unselected"
			}
			fmt.Printf("%s calendar %s on %s.\n", verb, args[1], account.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Account platform: google, microsoft or ics")
	cmd.Flags().BoolVar(&unselect, "unselect", false, "Exclude the calendar instead")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}

func newCalendarsHoldCmd() *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "hold <account> <calendar-id>",
		Short: "Nominate the calendar that receives hold events",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			account, err := resolveAccount(st, args[0], platformName)
			if err != nil {
				return err
			}

			calendars, err := st.Calendars(account.ID)
			if err != nil {
				return err
			}
			for _, cal := range calendars {
				if cal.ID == args[1] && !cal.CanEdit {
					return fmt.Errorf("calendar %s is read-only and cannot hold events", cal.Name)
				}
			}

			if err := st.SetHoldCalendar(account.ID, args[1]); err != nil {
				return err
			}

			fmt.Printf("Hold events will be created on %s (%s).\n", args[1], account.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Account platform: google, microsoft or ics")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}
