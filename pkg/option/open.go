package option

import (
	"github.com/rstms/cdrom-kit/pkg/logging"
)

// OpenOptions control how a volume is mounted.
type OpenOptions struct {
	// StrictBounds rejects directory records whose extent ends past the volume's last sector.
	StrictBounds bool
	Logger       *logging.Logger
}

type OpenOption func(*OpenOptions)

// DefaultOpenOptions returns the options used when none are given.
func DefaultOpenOptions() *OpenOptions {
	return &OpenOptions{
		StrictBounds: true,
		Logger:       logging.DefaultLogger(),
	}
}

func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}

// WithStrictBounds sets whether extents are checked against the volume size. Disable it to read
// images that were truncated after mastering.
func WithStrictBounds(strict bool) OpenOption {
	return func(o *OpenOptions) {
		o.StrictBounds = strict
	}
}
