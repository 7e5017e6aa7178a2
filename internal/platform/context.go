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

package platform

import (
	"context"
	"fmt"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey int

const (
	// platformKey is the context key for storing Platform instances
	platformKey contextKey = iota
)

// WithPlatform attaches the platform to a command context
func WithPlatform(ctx context.Context, platform *Platform) context.Context {
	return context.WithValue(ctx, platformKey, platform)
}

// FromContext retrieves the Platform instance from the context.
// Returns an error if no platform is found in the context.
func FromContext(ctx context.Context) (*Platform, error) {
	platform, ok := ctx.Value(platformKey).(*Platform)
	if !ok || platform == nil {
		return nil, fmt.Errorf("no platform found in context")
	}
	return platform, nil
}

// MustFromContext is FromContext for commands whose PersistentPreRunE
// always installs a platform. It panics otherwise.
func MustFromContext(ctx context.Context) *Platform {
	platform, err := FromContext(ctx)
	if err != nil {
		panic(fmt.Sprintf("platform not found in context: %v", err))
	}
	return platform
}

// WithTimeout bounds ctx by a duration string such as "15m"
func WithTimeout(ctx context.Context, timeout string) (context.Context, context.CancelFunc, error) {
	duration, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid timeout duration: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, duration)
	return timeoutCtx, cancel, nil
}
