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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	// Test with field
	err := NewValidationError("prefix", "must not be empty")

	expected := "validation error on prefix: must not be empty"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	// Test without field
	err2 := NewValidationError("", "invalid format")
	expected2 := "validation error: invalid format"
	if err2.Error() != expected2 {
		t.Errorf("Expected %q, got %q", expected2, err2.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("image", "amzn2-ami-hvm-*")

	expected := "image not found: amzn2-ami-hvm-*"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	err2 := NewNotFoundError("instance", "")
	if err2.Error() != "instance not found" {
		t.Errorf("Expected %q, got %q", "instance not found", err2.Error())
	}
}

func TestCloudErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("AccessDeniedException")
	err := NewCloudError("secretsmanager", "ListSecrets", cause)

	expected := "secretsmanager ListSecrets failed: AccessDeniedException"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, cause) {
		t.Error("Expected CloudError to unwrap to its cause")
	}

	var target *CloudError
	wrapped := fmt.Errorf("export failed: %w", err)
	if !errors.As(wrapped, &target) {
		t.Fatal("Expected errors.As to find CloudError")
	}
	if target.Operation != "ListSecrets" {
		t.Errorf("Expected operation ListSecrets, got %s", target.Operation)
	}
}
