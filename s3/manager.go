package s3

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/awsconfig"
	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/awsapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/localfs"
)

// Manager performs S3 bucket and object operations.
//
// A Manager owns its SDK client for its whole lifetime and holds no mutable
// state after construction. Transfers run sequentially on the calling goroutine.
type Manager struct {
	api      awsapi.S3API
	uploader *manager.Uploader
	logger   *slog.Logger
	fs       localfs.Filesystem
	region   string
}

// New creates a Manager from a resolved configuration.
// Construction never contacts AWS; missing credentials fail on the first call.
func New(cfg *awsconfig.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, awserrors.Invalid("s3.new", "", "configuration is required")
	}

	client := s3.NewFromConfig(cfg.AWS, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	opts = append([]Option{WithLogger(cfg.Logger), WithRegion(cfg.AWS.Region)}, opts...)
	return NewWithClient(client, opts...), nil
}

// NewWithClient creates a Manager over a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(api awsapi.S3API, opts ...Option) *Manager {
	o := &managerOptions{
		partSize: DefaultPartSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = localfs.NewOS()
	}

	uploader := manager.NewUploader(api, func(u *manager.Uploader) {
		u.PartSize = o.partSize
		// Parts go up one at a time.
		u.Concurrency = 1
	})

	return &Manager{
		api:      api,
		uploader: uploader,
		logger:   o.logger,
		fs:       o.fs,
		region:   o.region,
	}
}

// fail wraps a remote failure and logs it with the operation and resource.
func (m *Manager) fail(ctx context.Context, op, resource string, err error) error {
	wrapped := awserrors.FromAWS(op, resource, err)
	if m.logger != nil {
		m.logger.ErrorContext(ctx, "s3 operation failed",
			"op", op,
			"resource", resource,
			"error", err)
	}
	return wrapped
}

func (m *Manager) info(ctx context.Context, msg string, args ...any) {
	if m.logger != nil {
		m.logger.InfoContext(ctx, msg, args...)
	}
}

func objectRef(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
