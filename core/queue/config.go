package queue

import "time"

// Config holds configuration for the queue processor.
type Config struct {
	// Interval is the time between scheduled drains.
	Interval time.Duration `mapstructure:"interval" default:"60s"`
	// BatchSize caps how many pending items one drain processes.
	BatchSize int `mapstructure:"batch_size" default:"100"`
	// MaxRetries is the number of failed attempts after which an item is failed.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
}

const (
	DefaultInterval   = 60 * time.Second
	DefaultBatchSize  = 100
	DefaultMaxRetries = 3
)

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}
