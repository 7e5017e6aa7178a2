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

// Package config loads ansible-aws settings from the environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	apperrors "ansible-aws/pkg/errors"
)

// DefaultEnvFile is read before the process environment is parsed
const DefaultEnvFile = ".env"

// Config holds the settings shared by every command
type Config struct {
	Region       string `env:"REGION" envDefault:"us-east-1"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	SecretPrefix string `env:"SECRET_PREFIX" envDefault:"ansible-"`
	SecretsPath  string `env:"SECRETS_PATH" envDefault:"/tmp/ansible/secrets.yaml"`
	EventSource  string `env:"EVENT_SOURCE" envDefault:"ansible"`
	EventBusName string `env:"EVENT_BUS_NAME" envDefault:""`
}

// Load reads envFile (when present) into the environment and parses Config.
// Variables already set in the environment take precedence over the file.
func Load(envFile string) (Config, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	log.WithField("path", path).Debug("loaded environment file")
	return nil
}

// Parse fills target from environment variables using its env struct tags
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("failed to parse ENV: %w", err)
	}
	return nil
}

// Validate checks the settings that have no usable zero value
func (c Config) Validate() error {
	if strings.TrimSpace(c.Region) == "" {
		return apperrors.NewValidationError("REGION", "must not be empty")
	}
	if c.SecretPrefix == "" {
		return apperrors.NewValidationError("SECRET_PREFIX", "must not be empty")
	}
	if strings.TrimSpace(c.SecretsPath) == "" {
		return apperrors.NewValidationError("SECRETS_PATH", "must not be empty")
	}
	if strings.TrimSpace(c.EventSource) == "" {
		return apperrors.NewValidationError("EVENT_SOURCE", "must not be empty")
	}
	return nil
}
