package cmd

import (
	"fmt"
	"strconv"

	"channel-manager/core/queue"

	"github.com/spf13/cobra"
)

var (
	queueListStatus string
	queueListLimit  int
)

// queueCmd is the parent command for the outbound sync queue.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and operate the outbound sync queue",
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending and failed counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.processor.Status(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(st)
	},
}

var queueDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Process one batch of pending items now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.processor.Drain(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var queueRequeueCmd = &cobra.Command{
	Use:   "requeue <id>",
	Short: "Give a failed item one more attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		item, err := a.processor.Requeue(cmd.Context(), uint(id))
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest queue items",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.processor.ListItems(cmd.Context(), queue.Status(queueListStatus), queueListLimit)
		if err != nil {
			return err
		}
		return printJSON(items)
	},
}

func init() {
	queueListCmd.Flags().StringVar(&queueListStatus, "status", "", "Filter by status (pending, completed, failed)")
	queueListCmd.Flags().IntVar(&queueListLimit, "limit", 50, "Maximum number of items")

	queueCmd.AddCommand(queueStatusCmd, queueDrainCmd, queueRequeueCmd, queueListCmd)
	RootCmd.AddCommand(queueCmd)
}
