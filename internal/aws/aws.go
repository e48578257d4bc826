// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/smithy-go/logging"
)

// options holds optional overrides for AWS config loading.
type options struct {
	profile     string
	region      string
	endpointURL string
	accessKey   string
	secretKey   string
	token       string
	maxAttempts int
	logger      logging.Logger
	logMode     awsv2.ClientLogMode
}

// Option customizes how AWS config is loaded.
// Default behavior (no options) inherits the shell environment and shared
// config chain (AWS_PROFILE, ~/.aws/config, ~/.aws/credentials, IMDS, etc.).
type Option func(*options)

// WithProfile sets the shared config profile. Defaults to AWS_PROFILE/env chain.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override. Defaults to env/profile/metadata chain.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpointURL points every service client at a single base endpoint, for
// LocalStack and similar emulators.
func WithEndpointURL(url string) Option {
	return func(o *options) { o.endpointURL = url }
}

// WithStaticCredentials replaces the credential chain with fixed keys. An
// empty access key leaves the chain alone.
func WithStaticCredentials(accessKey, secretKey, token string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
		o.token = token
	}
}

// WithMaxAttempts overrides the SDK's standard retryer attempt count. Zero
// keeps the SDK default.
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// WithLogger routes SDK logging to logger with the given log mode.
func WithLogger(logger logging.Logger, mode awsv2.ClientLogMode) Option {
	return func(o *options) {
		o.logger = logger
		o.logMode = mode
	}
}

// LoadAWSConfig loads AWS SDK v2 config. By default it inherits the shell's
// AWS setup (AWS_PROFILE, shared config, env, IMDS). Options can override
// profile, region, endpoint, credentials and retries without changing callers.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	loadOpts, err := o.loadOptions()
	if err != nil {
		return awsv2.Config{}, err
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return awsv2.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func (o options) loadOptions() ([]func(*config.LoadOptions) error, error) {
	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	if o.endpointURL != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(o.endpointURL))
	}
	if o.accessKey != "" || o.secretKey != "" {
		if o.accessKey == "" || o.secretKey == "" {
			return nil, fmt.Errorf("access key and secret key must be given together")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, o.token),
		))
	}
	if o.maxAttempts > 0 {
		maxAttempts := o.maxAttempts
		loadOpts = append(loadOpts, config.WithRetryer(func() awsv2.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), maxAttempts)
		}))
	}
	if o.logger != nil {
		loadOpts = append(loadOpts,
			config.WithLogger(o.logger),
			config.WithClientLogMode(o.logMode),
		)
	}
	return loadOpts, nil
}
