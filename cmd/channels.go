package cmd

import (
	"channel-manager/core/channel"

	"github.com/spf13/cobra"
)

var (
	channelName        string
	channelDisplayName string
	channelCredentials channel.Config
)

// channelsCmd is the parent command for channel accounts.
var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Manage channel accounts",
}

var channelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active channel accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		chans, err := a.channels.ActiveChannels(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(chans)
	},
}

var channelsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a channel account",
	Long: `Registers a channel account. The name must be one of the built-in providers
(agoda, airbnb, booking.com, expedia).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.channels.CreateChannel(cmd.Context(), channelName, channelDisplayName, channelCredentials)
		if err != nil {
			return err
		}
		return printJSON(ch)
	},
}

func init() {
	f := channelsAddCmd.Flags()
	f.StringVar(&channelName, "name", "", "Provider name")
	f.StringVar(&channelDisplayName, "display-name", "", "Display name")
	f.StringVar(&channelCredentials.APIKey, "api-key", "", "API key or user name")
	f.StringVar(&channelCredentials.APISecret, "api-secret", "", "API secret or password")
	f.StringVar(&channelCredentials.PropertyID, "property-id", "", "Property identifier on the channel")
	f.StringVar(&channelCredentials.HotelID, "hotel-id", "", "Secondary hotel identifier")
	f.StringVar(&channelCredentials.Endpoint, "endpoint", "", "Override the provider base URL")
	_ = channelsAddCmd.MarkFlagRequired("name")

	channelsCmd.AddCommand(channelsListCmd, channelsAddCmd)
	RootCmd.AddCommand(channelsCmd)
}
