// Package awsconfig resolves the AWS configuration shared by the EC2 and S3
// managers. Resolution happens once, at construction time, and never contacts
// AWS: when no credentials are available the failure surfaces on the first
// remote call instead.
//
// Credentials are taken from the first source that supplies them:
//
//  1. explicit access key and secret key (WithCredentials)
//  2. environment (AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY)
//  3. shared profile (~/.aws/credentials, ~/.aws/config)
//  4. instance or container role metadata
package awsconfig

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

// DefaultRegion is used when neither the caller nor the environment names a region.
const DefaultRegion = "us-east-1"

// Source identifies where credentials were resolved from.
type Source string

const (
	// SourceExplicit means both WithCredentials values were given.
	SourceExplicit Source = "explicit"

	// SourceEnvironment means AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are set.
	SourceEnvironment Source = "environment"

	// SourceSharedProfile means the selected profile in ~/.aws/config or
	// ~/.aws/credentials supplies keys, a role, SSO or a credential process.
	SourceSharedProfile Source = "shared-profile"

	// SourceInstanceMetadata is the fallback: the instance or container role,
	// resolved on the first call.
	SourceInstanceMetadata Source = "instance-metadata"

	// SourceCustom means WithAWSConfig supplied a ready configuration.
	SourceCustom Source = "custom"
)

// Config is the resolved configuration handed to the managers.
type Config struct {
	// AWS is the SDK configuration used to build service clients
	AWS aws.Config

	// Source is the credential source selected during resolution
	Source Source

	// Endpoint overrides the service endpoint (LocalStack, S3-compatible stores)
	Endpoint string

	// UsePathStyle forces path-style S3 addressing
	UsePathStyle bool

	// Logger is inherited by the managers unless they are given their own
	Logger *slog.Logger
}

// Load resolves the AWS configuration from the given options and the ambient environment.
//
// Example:
//
//	cfg, err := awsconfig.Load(ctx,
//	    awsconfig.WithCredentials(accessKey, secretKey),
//	    awsconfig.WithRegion("eu-west-1"),
//	)
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.awsConfig != nil {
		cfg := o.awsConfig.Copy()
		if o.region != "" {
			cfg.Region = o.region
		}
		if cfg.Region == "" {
			cfg.Region = DefaultRegion
		}
		cfg.RetryMaxAttempts = 1
		return o.result(cfg, SourceCustom), nil
	}

	source := detectSource(ctx, o)

	// Every remote call is attempted exactly once.
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(1),
	}
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if source == SourceExplicit {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKeyID, o.secretAccessKey, o.sessionToken),
		))
	}
	if o.endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(o.endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, awserrors.NewError("awsconfig.load", err).WithMessage("failed to load AWS config")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	result := o.result(cfg, source)
	if result.Logger != nil {
		result.Logger.DebugContext(ctx, "resolved aws configuration",
			"region", cfg.Region,
			"credential_source", string(source),
			"endpoint", o.endpoint)
	}
	return result, nil
}

func (o *options) result(cfg aws.Config, source Source) *Config {
	return &Config{
		AWS:          cfg,
		Source:       source,
		Endpoint:     o.endpoint,
		UsePathStyle: o.usePathStyle,
		Logger:       o.logger,
	}
}

// detectSource walks the precedence order without contacting AWS.
// Only local files and environment variables are inspected.
func detectSource(ctx context.Context, o *options) Source {
	if o.accessKeyID != "" && o.secretAccessKey != "" {
		return SourceExplicit
	}

	env, err := config.NewEnvConfig()
	if err != nil {
		return SourceInstanceMetadata
	}
	if env.Credentials.HasKeys() {
		return SourceEnvironment
	}

	profile := o.profile
	if profile == "" {
		profile = env.SharedConfigProfile
	}
	if profile == "" {
		profile = "default"
	}
	shared, err := config.LoadSharedConfigProfile(ctx, profile, func(lo *config.LoadSharedConfigOptions) {
		if env.SharedCredentialsFile != "" {
			lo.CredentialsFiles = []string{env.SharedCredentialsFile}
		}
		if env.SharedConfigFile != "" {
			lo.ConfigFiles = []string{env.SharedConfigFile}
		}
	})
	if err == nil && (shared.Credentials.HasKeys() ||
		shared.RoleARN != "" ||
		shared.CredentialProcess != "" ||
		shared.SSOSessionName != "" ||
		shared.SSOAccountID != "") {
		return SourceSharedProfile
	}

	return SourceInstanceMetadata
}
