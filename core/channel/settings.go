package channel

import "time"

// Settings holds options shared by every provider.
type Settings struct {
	// Timeout bounds each outbound provider call.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
	// SyncInterval schedules inbound syncs of every active channel. Zero disables them.
	SyncInterval time.Duration `mapstructure:"sync_interval" default:"0s"`
	// SyncWindowDays is the size of the scheduled sync window starting today.
	SyncWindowDays int `mapstructure:"sync_window_days" default:"30"`
}
