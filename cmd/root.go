package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the avail application
var rootCmd = &cobra.Command{
	Use:   "avail",
	Short: "Find free time across all your calendars",
	Long: `avail computes your availability across multiple calendar accounts
(Google, Microsoft and ICS feed subscriptions), merges every busy event into
a single timeline and prints the free slots matching your constraints.

It can also place a HOLD event on a chosen slot, after re-checking against
fresh calendar data that the slot is still free.`,
	SilenceUsage: true,
}

var verbose bool

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "avail version %s\n" .Version}}`)

	// If no subcommand is provided, run the find command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "find")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newCalendarsCmd())
}
