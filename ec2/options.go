package ec2

import (
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/localfs"
)

// DefaultPollInterval is the fixed delay between WaitForState polls.
const DefaultPollInterval = 5 * time.Second

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	logger       *slog.Logger
	pollInterval time.Duration
	keyDir       string
	fs           localfs.Filesystem
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithPollInterval sets the delay between WaitForState polls.
// Non-positive values are ignored.
func WithPollInterval(interval time.Duration) Option {
	return func(o *managerOptions) {
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

// WithKeyDir sets the directory CreateKeyPair writes .pem files to.
// Default is the current working directory.
func WithKeyDir(dir string) Option {
	return func(o *managerOptions) {
		o.keyDir = dir
	}
}

// WithFilesystem sets the filesystem used for key-pair material.
func WithFilesystem(fs localfs.Filesystem) Option {
	return func(o *managerOptions) {
		o.fs = fs
	}
}
