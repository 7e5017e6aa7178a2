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

// Package errors defines the typed errors returned across ansible-aws.
package errors

import "fmt"

// ValidationError represents input or configuration validation failures
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NotFoundError represents a missing resource
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// CloudError wraps a failed call to an AWS service
type CloudError struct {
	Service   string
	Operation string
	Err       error
}

func (e *CloudError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Operation, e.Err)
}

func (e *CloudError) Unwrap() error {
	return e.Err
}

// Helper functions for common cases
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

func NewCloudError(service, operation string, err error) *CloudError {
	return &CloudError{Service: service, Operation: operation, Err: err}
}
