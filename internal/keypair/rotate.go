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
// Package keypair rotates the EC2 key pair used by the Ansible worker and
// publishes the new private key to Secrets Manager.
package keypair

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
	log "github.com/sirupsen/logrus"

	"ansible-aws/pkg/config"
	apperrors "ansible-aws/pkg/errors"
)

// errCodeNotFound is returned by DeleteKeyPair for an unknown key name
const errCodeNotFound = "InvalidKeyPair.NotFound"

// Config holds the rotation settings read from the environment
type Config struct {
	KeyPairName string `env:"KEYPAIR_NAME" envDefault:""`
	SecretName  string `env:"SECRET_NAME" envDefault:"ansible-key-pairs"`
}

// LoadConfig parses the rotation settings from the environment. The region
// comes from the shared configuration.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that a key pair and a secret are named
func (c Config) Validate() error {
	if c.KeyPairName == "" {
		return apperrors.NewValidationError("KEYPAIR_NAME", "key pair name is required")
	}
	if c.SecretName == "" {
		return apperrors.NewValidationError("SECRET_NAME", "secret name is required")
	}
	return nil
}

// EC2API is the subset of the EC2 client used for rotation
type EC2API interface {
	DeleteKeyPair(ctx context.Context, params *ec2.DeleteKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error)
	CreateKeyPair(ctx context.Context, params *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error)
}

// SecretsAPI is the subset of the Secrets Manager client used for rotation
type SecretsAPI interface {
	UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error)
}

// Rotator replaces the key pair and stores its private key
type Rotator struct {
	cfg     Config
	ec2     EC2API
	secrets SecretsAPI
}

// New creates a rotator
func New(cfg Config, ec2Client EC2API, secretsClient SecretsAPI) *Rotator {
	return &Rotator{cfg: cfg, ec2: ec2Client, secrets: secretsClient}
}

// Rotate deletes the current key pair, creates a new one and stores its
// base64 encoded key material in the configured secret.
func (r *Rotator) Rotate(ctx context.Context) error {
	if err := r.cfg.Validate(); err != nil {
		return err
	}

	logger := log.WithFields(log.Fields{
		"key_pair": r.cfg.KeyPairName,
		"secret":   r.cfg.SecretName,
	})
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.WithField("request_id", lc.AwsRequestID)
	}

	if err := r.deleteKeyPair(ctx, logger); err != nil {
		return fmt.Errorf("failed to delete old key pair: %w", err)
	}

	logger.Info("creating new key pair")
	out, err := r.ec2.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName: aws.String(r.cfg.KeyPairName),
	})
	if err != nil {
		return fmt.Errorf("failed to create new key pair: %w", apperrors.NewCloudError("ec2", "CreateKeyPair", err))
	}

	logger.Info("updating secret")
	encoded := base64.StdEncoding.EncodeToString([]byte(aws.ToString(out.KeyMaterial)))
	_, err = r.secrets.UpdateSecret(ctx, &secretsmanager.UpdateSecretInput{
		SecretId:     aws.String(r.cfg.SecretName),
		SecretString: aws.String(encoded),
	})
	if err != nil {
		return fmt.Errorf("failed to update secret: %w", apperrors.NewCloudError("secretsmanager", "UpdateSecret", err))
	}

	logger.WithField("fingerprint", aws.ToString(out.KeyFingerprint)).Info("key pair rotated")
	return nil
}

func (r *Rotator) deleteKeyPair(ctx context.Context, logger *log.Entry) error {
	logger.Info("deleting old key pair")

	_, err := r.ec2.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{
		KeyName: aws.String(r.cfg.KeyPairName),
	})
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeNotFound {
		logger.Info("key pair does not exist")
		return nil
	}
	return apperrors.NewCloudError("ec2", "DeleteKeyPair", err)
}
