package cmd

import (
	"fmt"
	"time"

	"channel-manager/core/booking"
	"channel-manager/feature/channels"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	pushChannelID uint
	pushRoomType  string
	pushDate      string
	pushCount     int
	pushRate      string
)

// pushCmd is the parent command for outbound pushes.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push availability or rates to a channel",
}

var pushAvailabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Push the number of sellable rooms for a room type and date",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPush(cmd, func(a *app, target pushTarget) bool {
			return a.channels.PushAvailability(cmd.Context(), target.channel, pushRoomType, target.date, pushCount)
		})
	},
}

var pushRatesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Push the nightly rate for a room type and date",
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := decimal.NewFromString(pushRate)
		if err != nil {
			return fmt.Errorf("invalid --rate %q: %w", pushRate, err)
		}
		return runPush(cmd, func(a *app, target pushTarget) bool {
			return a.channels.PushRates(cmd.Context(), target.channel, pushRoomType, target.date, rate)
		})
	},
}

type pushTarget struct {
	channel channels.Target
	date    time.Time
}

func runPush(cmd *cobra.Command, push func(*app, pushTarget) bool) error {
	if pushChannelID == 0 || pushRoomType == "" {
		return fmt.Errorf("--channel-id and --room-type are required")
	}
	date, err := booking.ParseDate(pushDate)
	if err != nil {
		return fmt.Errorf("invalid --date %q: %w", pushDate, err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ch, err := a.channels.Channel(cmd.Context(), pushChannelID)
	if err != nil {
		return err
	}
	ok := push(a, pushTarget{channel: ch.Target(), date: date})
	return printJSON(map[string]bool{"ok": ok})
}

func init() {
	for _, c := range []*cobra.Command{pushAvailabilityCmd, pushRatesCmd} {
		c.Flags().UintVar(&pushChannelID, "channel-id", 0, "Channel ID")
		c.Flags().StringVar(&pushRoomType, "room-type", "", "Room type")
		c.Flags().StringVar(&pushDate, "date", "", "Date (YYYY-MM-DD)")
	}
	pushAvailabilityCmd.Flags().IntVar(&pushCount, "count", 0, "Sellable rooms")
	pushRatesCmd.Flags().StringVar(&pushRate, "rate", "", "Nightly rate")
	_ = pushRatesCmd.MarkFlagRequired("rate")

	pushCmd.AddCommand(pushAvailabilityCmd, pushRatesCmd)
	RootCmd.AddCommand(pushCmd)
}
