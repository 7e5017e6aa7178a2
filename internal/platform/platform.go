/*
Copyright © 2025 Ian Shuley

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package platform provides service composition for the CLI application.
// It loads the AWS configuration once and hands the domain packages the
// clients they need through their narrow interfaces.
package platform

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"ansible-aws/internal/events"
	"ansible-aws/internal/keypair"
	"ansible-aws/internal/launcher"
	"ansible-aws/internal/secrets"
	"ansible-aws/pkg/config"
)

// SecretsManager is everything the CLI does with Secrets Manager
type SecretsManager interface {
	secrets.API
	keypair.SecretsAPI
}

// EC2 is everything the CLI does with EC2
type EC2 interface {
	launcher.EC2API
	keypair.EC2API
}

// Platform represents the complete service composition for the CLI application.
type Platform struct {
	Config config.Config

	// AWS is the resolved SDK configuration the clients were built from
	AWS aws.Config

	SecretsManager SecretsManager
	EC2            EC2
	EventBridge    events.API
	S3             launcher.S3API
}

// Option is a function that can modify a Platform instance
type Option func(*Platform) error

// New loads the default AWS configuration for cfg.Region and creates the
// service clients.
func New(ctx context.Context, cfg config.Config) (*Platform, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Platform{
		Config:         cfg,
		AWS:            awsCfg,
		SecretsManager: secretsmanager.NewFromConfig(awsCfg),
		EC2:            ec2.NewFromConfig(awsCfg),
		EventBridge:    eventbridge.NewFromConfig(awsCfg),
		S3:             s3.NewFromConfig(awsCfg),
	}, nil
}

// NewWithOptions creates a Platform and applies opts in order
func NewWithOptions(ctx context.Context, cfg config.Config, opts ...Option) (*Platform, error) {
	platform, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := platform.Apply(opts...); err != nil {
		return nil, err
	}
	return platform, nil
}

// Apply runs opts against the platform
func (p *Platform) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return fmt.Errorf("failed to apply platform option: %w", err)
		}
	}
	return nil
}

// WithSecretsManager replaces the Secrets Manager client
func WithSecretsManager(client SecretsManager) Option {
	return func(p *Platform) error {
		if client == nil {
			return fmt.Errorf("secrets manager client is nil")
		}
		p.SecretsManager = client
		return nil
	}
}

// WithEC2 replaces the EC2 client
func WithEC2(client EC2) Option {
	return func(p *Platform) error {
		if client == nil {
			return fmt.Errorf("ec2 client is nil")
		}
		p.EC2 = client
		return nil
	}
}

// WithEventBridge replaces the EventBridge client
func WithEventBridge(client events.API) Option {
	return func(p *Platform) error {
		if client == nil {
			return fmt.Errorf("eventbridge client is nil")
		}
		p.EventBridge = client
		return nil
	}
}

// WithS3 replaces the S3 client
func WithS3(client launcher.S3API) Option {
	return func(p *Platform) error {
		if client == nil {
			return fmt.Errorf("s3 client is nil")
		}
		p.S3 = client
		return nil
	}
}

// Exporter returns the secrets exporter for the configured prefix
func (p *Platform) Exporter() *secrets.Exporter {
	return secrets.NewExporter(p.SecretsManager, p.Config.SecretPrefix)
}

// Publisher returns the event publisher for the configured source and bus
func (p *Platform) Publisher() *events.Publisher {
	return events.NewPublisher(p.EventBridge, p.Config.EventSource, p.Config.EventBusName)
}

// Launcher returns a worker launcher using cfg
func (p *Platform) Launcher(cfg launcher.Config) *launcher.Launcher {
	return launcher.New(cfg, p.EC2, p.S3)
}

// Rotator returns a key pair rotator using cfg
func (p *Platform) Rotator(cfg keypair.Config) *keypair.Rotator {
	return keypair.New(cfg, p.EC2, p.SecretsManager)
}
