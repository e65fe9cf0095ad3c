package ec2

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/awsconfig"
	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/awsapi"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/localfs"
)

// Manager performs EC2 instance operations.
//
// A Manager owns its SDK clients for its whole lifetime and never mutates them
// after construction. It keeps no view of remote state: every query re-fetches.
// It adds no locking of its own; the underlying SDK clients are safe for
// concurrent use.
type Manager struct {
	api    awsapi.EC2API
	iam    awsapi.IAMAPI
	logger *slog.Logger

	fs           localfs.Filesystem
	keyDir       string
	pollInterval time.Duration

	// sleep blocks between WaitForState polls
	sleep func(context.Context, time.Duration) error
}

// New creates a Manager from a resolved configuration.
// Construction never contacts AWS; missing credentials fail on the first call.
func New(cfg *awsconfig.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, awserrors.Invalid("ec2.new", "", "configuration is required")
	}

	ec2Client := ec2.NewFromConfig(cfg.AWS, func(o *ec2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	iamClient := iam.NewFromConfig(cfg.AWS, func(o *iam.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	// The configuration's logger is the default; an explicit option overrides it.
	opts = append([]Option{WithLogger(cfg.Logger)}, opts...)
	return NewWithClients(ec2Client, iamClient, opts...), nil
}

// NewWithClients creates a Manager over custom API implementations.
// This is primarily used for testing with mocked clients.
func NewWithClients(api awsapi.EC2API, iamAPI awsapi.IAMAPI, opts ...Option) *Manager {
	o := &managerOptions{
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = localfs.NewOS()
	}

	return &Manager{
		api:          api,
		iam:          iamAPI,
		logger:       o.logger,
		fs:           o.fs,
		keyDir:       o.keyDir,
		pollInterval: o.pollInterval,
		sleep:        sleepContext,
	}
}

// fail wraps a remote failure and logs it with the operation and resource.
func (m *Manager) fail(ctx context.Context, op, resource string, err error) error {
	wrapped := awserrors.FromAWS(op, resource, err)
	if m.logger != nil {
		m.logger.ErrorContext(ctx, "ec2 operation failed",
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

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
