package persistence

import (
	"os"

	"github.com/okian/scoreboard/pkg/logger"
)

// Option applies a configuration option to the Codec.
type Option func(*Codec)

// WithLogger sets the logger used for save/load events and skipped lines.
func WithLogger(l logger.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFileMode sets the permission bits of the data file.
func WithFileMode(mode os.FileMode) Option {
	return func(c *Codec) {
		if mode != 0 {
			c.mode = mode
		}
	}
}
