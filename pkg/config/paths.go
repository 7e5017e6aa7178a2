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

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultSecretsPath is where Ansible expects the exported secrets
	DefaultSecretsPath = "/tmp/ansible/secrets.yaml"

	secureDirectoryPermissions = 0700
)

// EnsureDirectory creates the parent directory of path if it doesn't exist
func EnsureDirectory(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, secureDirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
