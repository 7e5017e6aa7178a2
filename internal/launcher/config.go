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
// Package launcher starts and cleans up the EC2 worker that runs Ansible
package launcher

import (
	"time"

	"ansible-aws/pkg/config"
	apperrors "ansible-aws/pkg/errors"
)

// WorkerName is the Name tag of the Ansible worker instance
const WorkerName = "ansible"

// DefaultPollInterval is used when the configured interval is not positive
const DefaultPollInterval = 5 * time.Second

// Config holds the launcher settings read from the environment
type Config struct {
	ImageID            string        `env:"IMAGE_ID" envDefault:""`
	AmiSearchTerm      string        `env:"AMI_SEARCH_TERM" envDefault:"amzn2-ami-hvm-*-x86_64-gp2"`
	AmiOwnerAlias      string        `env:"AMI_OWNER_ALIAS" envDefault:"amazon"`
	InstanceType       string        `env:"INSTANCE_TYPE" envDefault:"t2.micro"`
	InstanceProfileArn string        `env:"PROFILE_ARN" envDefault:""`
	Bucket             string        `env:"USERDATA_BUCKET" envDefault:""`
	Key                string        `env:"USERDATA_KEY" envDefault:""`
	SubnetID           string        `env:"SUBNET_ID" envDefault:""`
	SecurityGroupIDs   []string      `env:"SECURITY_GROUP_IDS" envSeparator:","`
	KeyPairName        string        `env:"KEYPAIR_NAME" envDefault:""`
	JobTimeoutSecs     int           `env:"JOB_TIMEOUT_SECS" envDefault:"3500"`
	PollInterval       time.Duration `env:"POLL_INTERVAL" envDefault:"5s"`
}

// LoadConfig parses the launcher settings from the environment. The region
// comes from the shared configuration, not from these settings.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval <= 0 {
		return Config{}, apperrors.NewValidationError("POLL_INTERVAL", "poll interval must be positive")
	}
	return cfg, nil
}

// HasUserData reports whether user data should be read from S3
func (c Config) HasUserData() bool {
	return len(c.Bucket) > 0 && len(c.Key) > 0
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

// JobTimeout is the age after which a worker counts as stale
func (c Config) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutSecs) * time.Second
}
