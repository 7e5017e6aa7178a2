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

// Package version reports build metadata injected with -ldflags
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the released version, "dev" for local builds
	Version = "dev"

	// GitCommit is the commit the binary was built from
	GitCommit = "unknown"

	// BuildDate is when the binary was built
	BuildDate = "unknown"

	// GoVersion is the Go version used to build
	GoVersion = runtime.Version()
)

// BuildInfo returns comprehensive build information
func BuildInfo() string {
	return fmt.Sprintf(`ansible-aws %s
Git Commit: %s
Built: %s
Go Version: %s
Platform: %s/%s`,
		Version,
		GitCommit,
		BuildDate,
		GoVersion,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// Short returns just the version string
func Short() string {
	if Version == "dev" {
		commit := GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		return fmt.Sprintf("%s-%s", Version, commit)
	}
	return Version
}
