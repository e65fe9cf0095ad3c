package awsconfig

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
)

type options struct {
	accessKeyID     string
	secretAccessKey string
	sessionToken    string
	region          string
	profile         string
	endpoint        string
	usePathStyle    bool
	logger          *slog.Logger
	awsConfig       *aws.Config
}

// Option configures how the AWS configuration is resolved.
type Option func(*options)

// WithCredentials sets explicit static credentials. They take precedence over
// every ambient source, but only when both values are non-empty.
func WithCredentials(accessKeyID, secretAccessKey string) Option {
	return func(o *options) {
		o.accessKeyID = accessKeyID
		o.secretAccessKey = secretAccessKey
	}
}

// WithSessionToken adds a session token to explicit credentials.
func WithSessionToken(token string) Option {
	return func(o *options) {
		o.sessionToken = token
	}
}

// WithRegion sets the AWS region.
// If not specified, the region comes from the environment or shared profile, then DefaultRegion.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithProfile selects a named shared configuration profile.
func WithProfile(profile string) Option {
	return func(o *options) {
		o.profile = profile
	}
}

// WithEndpoint sets a custom endpoint URL for every service.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithPathStyle forces path-style S3 addressing.
func WithPathStyle(usePathStyle bool) Option {
	return func(o *options) {
		o.usePathStyle = usePathStyle
	}
}

// WithLogger sets the logger inherited by managers built from this configuration.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAWSConfig bypasses configuration loading and uses cfg as-is.
func WithAWSConfig(cfg *aws.Config) Option {
	return func(o *options) {
		o.awsConfig = cfg
	}
}
