package scheduler

import "time"

// Config controls the cron schedule and per-run timeout.
type Config struct {
	// Schedule is a standard 5-field cron expression.
	Schedule   string
	JobTimeout time.Duration
	Disabled   bool
}

func DefaultConfig() Config {
	return Config{
		Schedule:   "0 2 * * *",
		JobTimeout: 10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Schedule == "" {
		c.Schedule = defaults.Schedule
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
