package s3

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/localfs"
)

// DefaultPartSize is the multipart upload part size. Files smaller than one part
// are sent with a single PutObject.
const DefaultPartSize int64 = 8 * 1024 * 1024

// Option configures a Manager.
type Option func(*managerOptions)

type managerOptions struct {
	logger   *slog.Logger
	fs       localfs.Filesystem
	partSize int64
	region   string
}

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *managerOptions) {
		o.logger = logger
	}
}

// WithFilesystem sets the local filesystem transfers read from and write to.
func WithFilesystem(fs localfs.Filesystem) Option {
	return func(o *managerOptions) {
		o.fs = fs
	}
}

// WithPartSize sets the multipart upload part size.
// Values below the S3 minimum of 5 MiB are ignored.
func WithPartSize(partSize int64) Option {
	return func(o *managerOptions) {
		if partSize >= manager.MinUploadPartSize {
			o.partSize = partSize
		}
	}
}

// WithRegion sets the region new buckets are created in.
// It defaults to the configuration's region.
func WithRegion(region string) Option {
	return func(o *managerOptions) {
		o.region = region
	}
}
