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
package cmd

import (
	"regexp"
	"strings"

	apperrors "ansible-aws/pkg/errors"
)

// ValidationConfig controls what validation rules are applied to an input string
type ValidationConfig struct {
	EntityType          string // "secret prefix", "key pair name", etc. for error messages
	AllowEmpty          bool   // Whether empty strings are allowed
	AllowPathSeparators bool   // Whether "/" is allowed (Secrets Manager names use it for hierarchy)
	AllowShellMetachars bool   // Whether shell metacharacters are allowed
}

// ValidateSecureInput rejects flag values that are empty, carry control
// characters or look like unexpanded shell syntax.
func ValidateSecureInput(input string, config ValidationConfig) error {
	if !config.AllowEmpty && strings.TrimSpace(input) == "" {
		return apperrors.NewValidationError(config.EntityType, "cannot be empty")
	}

	for _, r := range input {
		if r < 32 || r == 127 {
			return apperrors.NewValidationError(config.EntityType, "cannot contain control characters")
		}
	}

	if strings.Contains(input, "..") || strings.Contains(input, "\\") ||
		(!config.AllowPathSeparators && strings.Contains(input, "/")) {
		return apperrors.NewValidationError(config.EntityType, "cannot contain path traversal sequences")
	}

	if !config.AllowShellMetachars {
		if err := validateShellMetacharacters(input, config); err != nil {
			return err
		}
	}

	return nil
}

func validateShellMetacharacters(input string, config ValidationConfig) error {
	shellMetachars := []string{
		"$", // Variable and command substitution
		"`", // Backtick command substitution
		";", // Command separator
		"|", // Pipe
		"&", // Background process/AND
		">", // Redirection
		"<", // Redirection
		"*", // Globbing
		"?", // Globbing
		"[", // Globbing
		"]", // Globbing
		"{", // Brace expansion
		"}", // Brace expansion
		"~", // Home directory expansion
		"!", // History expansion (bash)
		"#", // Comments
	}

	for _, char := range shellMetachars {
		if strings.Contains(input, char) {
			return apperrors.NewValidationError(config.EntityType, "cannot contain shell metacharacters (found: "+char+")")
		}
	}
	return nil
}

var instanceIDPattern = regexp.MustCompile(`^i-[0-9a-f]{8}([0-9a-f]{9})?$`)

// ValidateInstanceID checks the EC2 instance id format (i- plus 8 or 17 hex digits)
func ValidateInstanceID(id string) error {
	if !instanceIDPattern.MatchString(id) {
		return apperrors.NewValidationError("instance id", "must look like i-0123456789abcdef0")
	}
	return nil
}

// SecretPrefixValidationConfig validates the --prefix flag of export-secrets
var SecretPrefixValidationConfig = ValidationConfig{
	EntityType:          "secret prefix",
	AllowPathSeparators: true,
}

// KeyPairNameValidationConfig validates the --name flag of rotate-keypair
var KeyPairNameValidationConfig = ValidationConfig{
	EntityType: "key pair name",
}

// SecretNameValidationConfig validates secret names given on the command line
var SecretNameValidationConfig = ValidationConfig{
	EntityType:          "secret name",
	AllowPathSeparators: true,
}
