package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/awsconfig"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/ec2"
	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/s3"
)

const (
	envPrefix         = "EC2S3"
	defaultConfigFile = "ec2s3/config.yaml"
)

// app holds the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger

	newEC2 func(*awsconfig.Config, ...ec2.Option) (*ec2.Manager, error)
	newS3  func(*awsconfig.Config, ...s3.Option) (*s3.Manager, error)
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		v:      viper.New(),
		out:    out,
		errOut: errOut,
		newEC2: ec2.New,
		newS3:  s3.New,
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ec2s3",
		Short:         "Manage EC2 instances and S3 buckets",
		Long:          `ec2s3 lists, starts, stops and terminates EC2 instances and moves files and folders in and out of S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default $XDG_CONFIG_HOME/"+defaultConfigFile+")")
	pf.String("access-key", "", "AWS access key id")
	pf.String("secret-key", "", "AWS secret access key")
	pf.String("region", "", "AWS region")
	pf.String("profile", "", "shared config profile")
	pf.String("endpoint", "", "custom endpoint URL (LocalStack, S3-compatible stores)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlags(pf)

	root.AddCommand(newEC2Command(a), newS3Command(a))
	return root
}

// initConfig reads the config file and environment, and builds the logger.
func (a *app) initConfig() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
	} else if file, err := xdg.SearchConfigFile(defaultConfigFile); err == nil {
		a.v.SetConfigFile(file)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString("log-level"))); err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", "path", used)
	}
	return nil
}

func (a *app) awsConfig(ctx context.Context) (*awsconfig.Config, error) {
	opts := []awsconfig.Option{
		awsconfig.WithCredentials(a.v.GetString("access-key"), a.v.GetString("secret-key")),
		awsconfig.WithRegion(a.v.GetString("region")),
		awsconfig.WithProfile(a.v.GetString("profile")),
		awsconfig.WithLogger(a.logger),
	}
	if endpoint := a.v.GetString("endpoint"); endpoint != "" {
		opts = append(opts, awsconfig.WithEndpoint(endpoint), awsconfig.WithPathStyle(true))
	}
	return awsconfig.Load(ctx, opts...)
}

func (a *app) ec2(ctx context.Context, opts ...ec2.Option) (*ec2.Manager, error) {
	cfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return a.newEC2(cfg, opts...)
}

func (a *app) s3(ctx context.Context, opts ...s3.Option) (*s3.Manager, error) {
	cfg, err := a.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return a.newS3(cfg, opts...)
}
