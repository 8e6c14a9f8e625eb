package config

import (
	"time"

	appLog "afisha/internal/log"
)

// Location resolves the configured timezone, falling back to time.Local when
// the name is empty or unknown to the tz database.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", c.Timezone)
		return time.Local
	}
	return loc
}
