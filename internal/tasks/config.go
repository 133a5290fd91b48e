package tasks

import (
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	DefaultWorkers            = 2
	DefaultReleaseAfter       = 15 * time.Minute
	DefaultCleanupInterval    = time.Hour
	DefaultGracePeriod        = 24 * time.Hour
	DefaultAuditRetentionDays = 90
)

// Config sizes the queue and carries the parameters of the periodic sweeps.
// Zero fields fall back to the Default* constants.
type Config struct {
	Workers         int
	ReleaseAfter    time.Duration // stuck tasks go back to the queue after this
	CleanupInterval time.Duration // how often backlite purges finished tasks

	// GracePeriod keeps freshly created empty booklists, which may still be
	// receiving items.
	GracePeriod        time.Duration
	AuditRetentionDays int
}

func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = DefaultReleaseAfter
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	if c.AuditRetentionDays <= 0 {
		c.AuditRetentionDays = DefaultAuditRetentionDays
	}
	return c
}

// SweepTasks returns one task per cleanup queue, parameterised from c.
func (c Config) SweepTasks() []backlite.Task {
	c = c.withDefaults()
	return []backlite.Task{
		CleanupBooklistsTask{GracePeriodMinutes: int(c.GracePeriod / time.Minute)},
		CleanupAuditEventsTask{RetentionDays: c.AuditRetentionDays},
	}
}
