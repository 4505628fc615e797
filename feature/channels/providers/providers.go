// Package providers registers the built-in channel providers.
package providers

import (
	"channel-manager/core/channel"
	"channel-manager/feature/channels/providers/agoda"
	"channel-manager/feature/channels/providers/airbnb"
	"channel-manager/feature/channels/providers/bookingcom"
	"channel-manager/feature/channels/providers/expedia"
)

// Register adds every built-in provider to reg.
func Register(reg *channel.Registry) {
	reg.Register(bookingcom.Name, bookingcom.New)
	reg.Register(agoda.Name, agoda.New)
	reg.Register(expedia.Name, expedia.New)
	reg.Register(airbnb.Name, airbnb.New)
}

// NewRegistry returns a registry holding every built-in provider.
func NewRegistry() *channel.Registry {
	reg := channel.NewRegistry()
	Register(reg)
	return reg
}
