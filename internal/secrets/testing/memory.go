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

// Package testing provides test doubles for the secrets domain
package testing

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// DefaultPageSize is the number of secrets returned per ListSecrets page
const DefaultPageSize = 100

type secretEntry struct {
	name   string
	arn    string
	value  *string
	binary []byte
}

// MemoryClient is an in-memory Secrets Manager holding secrets by name.
// ListSecrets pages through names in sorted order.
type MemoryClient struct {
	mu       sync.RWMutex
	secrets  map[string]*secretEntry
	pageSize int

	// ListCalls counts ListSecrets requests
	ListCalls int
}

// NewMemoryClient creates an empty client
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		secrets:  make(map[string]*secretEntry),
		pageSize: DefaultPageSize,
	}
}

// SetPageSize changes the ListSecrets page size
func (c *MemoryClient) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > 0 {
		c.pageSize = n
	}
}

// Put stores a string secret
func (c *MemoryClient) Put(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secrets[name] = &secretEntry{name: name, arn: arnFor(name), value: aws.String(value)}
}

// PutBinary stores a secret that only has a binary value
func (c *MemoryClient) PutBinary(name string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secrets[name] = &secretEntry{name: name, arn: arnFor(name), binary: value}
}

// Value returns the string value of a secret
func (c *MemoryClient) Value(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.secrets[name]
	if !ok || entry.value == nil {
		return "", false
	}
	return *entry.value, true
}

func (c *MemoryClient) ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ListCalls++

	names := make([]string, 0, len(c.secrets))
	for name := range c.secrets {
		names = append(names, name)
	}
	sort.Strings(names)

	start := 0
	if token := aws.ToString(params.NextToken); token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(names) {
			return nil, fmt.Errorf("invalid next token %q", token)
		}
		start = n
	}

	end := start + c.pageSize
	if end > len(names) {
		end = len(names)
	}

	out := &secretsmanager.ListSecretsOutput{}
	for _, name := range names[start:end] {
		entry := c.secrets[name]
		out.SecretList = append(out.SecretList, types.SecretListEntry{
			Name: aws.String(entry.name),
			ARN:  aws.String(entry.arn),
		})
	}
	if end < len(names) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (c *MemoryClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, err := c.lookup(aws.ToString(params.SecretId))
	if err != nil {
		return nil, err
	}
	return &secretsmanager.GetSecretValueOutput{
		Name:         aws.String(entry.name),
		ARN:          aws.String(entry.arn),
		SecretString: entry.value,
		SecretBinary: entry.binary,
	}, nil
}

func (c *MemoryClient) UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.lookup(aws.ToString(params.SecretId))
	if err != nil {
		return nil, err
	}
	entry.value = params.SecretString
	entry.binary = params.SecretBinary
	return &secretsmanager.UpdateSecretOutput{Name: aws.String(entry.name), ARN: aws.String(entry.arn)}, nil
}

// lookup resolves a secret id given as name or ARN
func (c *MemoryClient) lookup(id string) (*secretEntry, error) {
	if entry, ok := c.secrets[id]; ok {
		return entry, nil
	}
	for _, entry := range c.secrets {
		if entry.arn == id {
			return entry, nil
		}
	}
	return nil, &types.ResourceNotFoundException{Message: aws.String("secret not found: " + id)}
}

func arnFor(name string) string {
	return "arn:aws:secretsmanager:us-east-1:123456789012:secret:" + name
}
