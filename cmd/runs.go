package cmd

import (
	"github.com/spf13/cobra"
)

var (
	runsChannel string
	runsLimit   int
)

// runsCmd prints the sync run history.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent sync runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.channels.ListRuns(cmd.Context(), runsChannel, runsLimit)
		if err != nil {
			return err
		}
		return printJSON(runs)
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsChannel, "channel", "", "Channel name (e.g. booking.com); empty lists every channel")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs")
	RootCmd.AddCommand(runsCmd)
}
