package awsconfig

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every ambient credential source so tests see only what they set up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		"AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY",
		"AWS_SESSION_TOKEN",
		"AWS_PROFILE",
		"AWS_DEFAULT_PROFILE",
		"AWS_REGION",
		"AWS_DEFAULT_REGION",
		"AWS_ENDPOINT_URL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	return dir
}

func TestLoad_CredentialPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T, dir string)
		opts       []Option
		wantSource Source
		wantKey    string
	}{
		{
			name: "explicit credentials win over environment",
			setup: func(t *testing.T, _ string) {
				t.Setenv("AWS_ACCESS_KEY_ID", "ENVKEY")
				t.Setenv("AWS_SECRET_ACCESS_KEY", "envsecret")
			},
			opts:       []Option{WithCredentials("EXPLICITKEY", "explicitsecret")},
			wantSource: SourceExplicit,
			wantKey:    "EXPLICITKEY",
		},
		{
			name: "half explicit credentials fall back to environment",
			setup: func(t *testing.T, _ string) {
				t.Setenv("AWS_ACCESS_KEY_ID", "ENVKEY")
				t.Setenv("AWS_SECRET_ACCESS_KEY", "envsecret")
			},
			opts:       []Option{WithCredentials("EXPLICITKEY", "")},
			wantSource: SourceEnvironment,
			wantKey:    "ENVKEY",
		},
		{
			name: "shared profile when environment is empty",
			setup: func(t *testing.T, dir string) {
				creds := "[dev]\naws_access_key_id = PROFILEKEY\naws_secret_access_key = profilesecret\n"
				require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials"), []byte(creds), 0o600))
			},
			opts:       []Option{WithProfile("dev")},
			wantSource: SourceSharedProfile,
			wantKey:    "PROFILEKEY",
		},
		{
			name:       "instance metadata as last resort",
			setup:      func(t *testing.T, _ string) {},
			wantSource: SourceInstanceMetadata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolateEnv(t)
			tt.setup(t, dir)
			ctx := context.Background()

			cfg, err := Load(ctx, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, cfg.Source)

			if tt.wantKey != "" {
				creds, err := cfg.AWS.Credentials.Retrieve(ctx)
				require.NoError(t, err)
				assert.Equal(t, tt.wantKey, creds.AccessKeyID)
			}
		})
	}
}

func TestLoad_Region(t *testing.T) {
	t.Run("default region", func(t *testing.T) {
		isolateEnv(t)
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DefaultRegion, cfg.AWS.Region)
	})

	t.Run("environment region", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("AWS_REGION", "ap-south-1")
		cfg, err := Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ap-south-1", cfg.AWS.Region)
	})

	t.Run("explicit region wins", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("AWS_REGION", "ap-south-1")
		cfg, err := Load(context.Background(), WithRegion("eu-west-1"))
		require.NoError(t, err)
		assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	})
}

func TestLoad_SingleAttempt(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(context.Background(), WithCredentials("K", "S"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.AWS.RetryMaxAttempts)
}

func TestLoad_EndpointAndPathStyle(t *testing.T) {
	isolateEnv(t)
	cfg, err := Load(context.Background(),
		WithCredentials("test", "test"),
		WithEndpoint("http://localhost:4566"),
		WithPathStyle(true),
	)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566", cfg.Endpoint)
	assert.Equal(t, "http://localhost:4566", aws.ToString(cfg.AWS.BaseEndpoint))
	assert.True(t, cfg.UsePathStyle)
}

func TestLoad_CustomAWSConfig(t *testing.T) {
	custom := aws.Config{Region: "sa-east-1", RetryMaxAttempts: 7}
	cfg, err := Load(context.Background(), WithAWSConfig(&custom))
	require.NoError(t, err)
	assert.Equal(t, SourceCustom, cfg.Source)
	assert.Equal(t, "sa-east-1", cfg.AWS.Region)
	assert.Equal(t, 1, cfg.AWS.RetryMaxAttempts)
	assert.Equal(t, 7, custom.RetryMaxAttempts, "caller's config must not be mutated")
}

func TestLoad_LogsResolution(t *testing.T) {
	isolateEnv(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := Load(context.Background(), WithCredentials("K", "S"), WithLogger(logger))
	require.NoError(t, err)
	assert.Same(t, logger, cfg.Logger)
	assert.Contains(t, buf.String(), "credential_source=explicit")
}
