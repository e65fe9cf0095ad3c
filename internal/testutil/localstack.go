package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/awsconfig"
)

const localStackImage = "localstack/localstack:3.8"

// LocalStack wraps a running LocalStack container serving S3 and EC2.
type LocalStack struct {
	container *localstack.LocalStackContainer
	endpoint  string
	region    string
}

// StartLocalStack starts a LocalStack container and registers its termination
// with t.Cleanup. The test is skipped in short mode.
func StartLocalStack(t *testing.T) *LocalStack {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := localstack.Run(ctx,
		localStackImage,
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3,ec2,iam"}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("failed to start LocalStack container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate LocalStack container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &LocalStack{
		container: container,
		endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		region:    awsconfig.DefaultRegion,
	}
}

// Endpoint returns the LocalStack endpoint URL.
func (l *LocalStack) Endpoint() string {
	return l.endpoint
}

// Config returns a resolved configuration pointing at the container with
// static test credentials and path-style addressing.
func (l *LocalStack) Config(t *testing.T) *awsconfig.Config {
	t.Helper()

	base := aws.Config{
		Region:       l.region,
		Credentials:  credentials.NewStaticCredentialsProvider("test", "test", ""),
		BaseEndpoint: aws.String(l.endpoint),
	}
	cfg, err := awsconfig.Load(context.Background(),
		awsconfig.WithAWSConfig(&base),
		awsconfig.WithEndpoint(l.endpoint),
		awsconfig.WithPathStyle(true),
	)
	if err != nil {
		t.Fatalf("failed to load LocalStack config: %v", err)
	}
	return cfg
}
