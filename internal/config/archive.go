package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvArchiveEnabled   = "SCRIBE_ARCHIVE_ENABLED"
	EnvArchiveQueueSize = "SCRIBE_ARCHIVE_QUEUE_SIZE"
)

// ArchiveConfig enables the Postgres report history.
type ArchiveConfig struct {
	Enabled   bool `toml:"enabled"`
	QueueSize int  `toml:"queue_size"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ArchiveConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if c.QueueSize < 1 {
		return fmt.Errorf("invalid queue_size: %d", c.QueueSize)
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *ArchiveConfig) Merge(overlay *ArchiveConfig) {
	c.Enabled = overlay.Enabled
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
}

func (c *ArchiveConfig) loadDefaults() {
	if c.QueueSize == 0 {
		c.QueueSize = 256
	}
}

func (c *ArchiveConfig) loadEnv() {
	if v := os.Getenv(EnvArchiveEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(EnvArchiveQueueSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueueSize = n
		}
	}
}
