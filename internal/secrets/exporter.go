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
// Package secrets exports prefixed AWS Secrets Manager entries to the YAML
// vars file consumed by Ansible.
package secrets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"

	"ansible-aws/internal"
	"ansible-aws/pkg/config"
	apperrors "ansible-aws/pkg/errors"
)

const (
	secureFilePermissions = 0600
	serviceName           = "secretsmanager"
)

// API is the subset of the Secrets Manager client used by the exporter
type API interface {
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Exporter reads every secret whose name carries prefix
type Exporter struct {
	client API
	prefix string
}

// NewExporter creates an exporter for secrets named "<prefix><name>"
func NewExporter(client API, prefix string) *Exporter {
	return &Exporter{client: client, prefix: prefix}
}

// Prefix returns the name prefix the exporter filters on
func (e *Exporter) Prefix() string {
	return e.prefix
}

// Matches reports whether a secret name is exported
func (e *Exporter) Matches(name string) bool {
	return strings.HasPrefix(name, e.prefix)
}

// ListSecretIDs pages through ListSecrets and returns the ARNs of matching
// secrets in listing order.
func (e *Exporter) ListSecretIDs(ctx context.Context) ([]string, error) {
	var ids []string

	paginator := secretsmanager.NewListSecretsPaginator(e.client, &secretsmanager.ListSecretsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewCloudError(serviceName, "ListSecrets", err)
		}
		for _, entry := range page.SecretList {
			if !e.Matches(aws.ToString(entry.Name)) {
				continue
			}
			ids = append(ids, aws.ToString(entry.ARN))
		}
	}

	return ids, nil
}

// Secrets fetches and decodes every matching secret, keyed by name without
// the prefix.
func (e *Exporter) Secrets(ctx context.Context) (map[string]any, error) {
	ids, err := e.ListSecretIDs(ctx)
	if err != nil {
		return nil, err
	}

	secrets := make(map[string]any, len(ids))
	for _, id := range ids {
		out, err := e.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(id),
		})
		if err != nil {
			return nil, apperrors.NewCloudError(serviceName, "GetSecretValue", err)
		}

		name := strings.TrimPrefix(aws.ToString(out.Name), e.prefix)
		if out.SecretString == nil {
			log.WithField("secret", aws.ToString(out.Name)).Warn("skipping secret without a string value")
			continue
		}

		value, err := DecodeValue(*out.SecretString)
		if err != nil {
			return nil, fmt.Errorf("failed to decode secret %s: %w", aws.ToString(out.Name), err)
		}
		secrets[name] = value
	}

	return secrets, nil
}

// Export writes the matching secrets to path and returns the exported names
func (e *Exporter) Export(ctx context.Context, path string) ([]string, error) {
	secrets, err := e.Secrets(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(secrets))
	for name := range secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		log.WithField("secret", name).Info("exporting secret to secrets.yaml")
	}

	data, err := MarshalYAML(secrets)
	if err != nil {
		return nil, err
	}

	if err := config.EnsureDirectory(path); err != nil {
		return nil, err
	}

	lock, err := internal.LockFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	if err := internal.AtomicWriteFile(path, data, secureFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return names, nil
}
