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
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// cliBin is built at the repository root with `go build -o ansible-aws .`
const cliBin = "../ansible-aws"

// TestHelper runs the CLI binary in an isolated environment: its own HOME,
// working directory and .env file, with no AWS credentials from the host.
type TestHelper struct {
	t          *testing.T
	tempDir    string
	binaryPath string
	env        map[string]string
}

// NewTestHelper creates a helper, skipping the test when the binary is missing
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	binaryPath, err := filepath.Abs(cliBin)
	if err != nil {
		t.Fatalf("failed to resolve binary path: %v", err)
	}
	if _, err := os.Stat(binaryPath); err != nil {
		t.Skipf("CLI binary not built (%s): build it at the repository root first", binaryPath)
	}

	tempDir := t.TempDir()
	return &TestHelper{
		t:          t,
		tempDir:    tempDir,
		binaryPath: binaryPath,
		env: map[string]string{
			"AWS_CONFIG_FILE":             filepath.Join(tempDir, "aws-config"),
			"AWS_SHARED_CREDENTIALS_FILE": filepath.Join(tempDir, "aws-credentials"),
			"AWS_EC2_METADATA_DISABLED":   "true",
			"SECRETS_PATH":                filepath.Join(tempDir, "ansible", "secrets.yaml"),
		},
	}
}

// SetEnv adds a variable to the command environment
func (h *TestHelper) SetEnv(key, value string) {
	h.env[key] = value
}

// WriteEnvFile writes a .env file into the working directory
func (h *TestHelper) WriteEnvFile(content string) {
	h.t.Helper()
	if err := os.WriteFile(filepath.Join(h.tempDir, ".env"), []byte(content), 0600); err != nil {
		h.t.Fatalf("failed to write .env: %v", err)
	}
}

// GetTempDir returns the isolated working directory
func (h *TestHelper) GetTempDir() string {
	return h.tempDir
}

// RunCommand executes the CLI with args and returns its combined output
func (h *TestHelper) RunCommand(args ...string) ([]byte, error) {
	h.t.Helper()

	cmd := exec.Command(h.binaryPath, args...)
	cmd.Dir = h.tempDir
	cmd.Env = h.cleanEnv()
	return cmd.CombinedOutput()
}

func (h *TestHelper) cleanEnv() []string {
	env := []string{
		"HOME=" + h.tempDir,
		"PATH=" + os.Getenv("PATH"),
	}
	for k, v := range h.env {
		env = append(env, k+"="+v)
	}
	return env
}
