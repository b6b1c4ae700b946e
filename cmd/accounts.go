package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/avail/internal/auth"
	"github.com/teemow/avail/internal/config"
	"github.com/teemow/avail/internal/store"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage linked calendar accounts",
	}

	cmd.AddCommand(newAccountsAddCmd())
	cmd.AddCommand(newAccountsRemoveCmd())
	cmd.AddCommand(newAccountsListCmd())
	return cmd
}

func newAccountsAddCmd() *cobra.Command {
	var platformName, feedURL string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Link a calendar account",
		Long: `Link a calendar account. Google and Microsoft accounts go through an
interactive OAuth flow; ICS accounts only need the subscription URL
(--url). After linking, run "avail calendars refresh" to load the
account's calendars.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			platform, err := store.ParsePlatform(platformName)
			if err != nil {
				return err
			}
			if platform == store.PlatformICS && feedURL == "" {
				return fmt.Errorf("ICS accounts require --url")
			}
			if platform != store.PlatformICS && feedURL != "" {
				return fmt.Errorf("--url is only valid for ICS accounts")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if platform != store.PlatformICS {
				if err := auth.Login(cmd.Context(), platform, name, cfg, os.Stdin, os.Stdout); err != nil {
					return err
				}
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if _, err := st.AddAccount(name, platform, feedURL); err != nil {
				return err
			}

			fmt.Printf("Linked %s account %s. Run \"avail calendars refresh\" to load its calendars.\n", platform, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Account platform: google, microsoft or ics")
	cmd.Flags().StringVar(&feedURL, "url", "", "ICS feed URL (ics accounts only)")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}

func newAccountsRemoveCmd() *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Unlink a calendar account and forget its calendars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			platform, err := store.ParsePlatform(platformName)
			if err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.RemoveAccount(name, platform); err != nil {
				return err
			}
			if err := auth.DeleteToken(platform, name); err != nil {
				return err
			}

			fmt.Printf("Removed %s account %s.\n", platform, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Account platform: google, microsoft or ics")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List linked accounts",
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
			if len(accounts) == 0 {
				fmt.Println("No accounts linked.")
				return nil
			}

			for _, a := range accounts {
				status := ""
				if a.Platform != store.PlatformICS && !auth.HasToken(a.Platform, a.Name) {
					status = " (not authenticated)"
				}
				fmt.Printf("%s\t%s%s\n", a.Platform, a.Name, status)
			}
			return nil
		},
	}
}
