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
package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"ansible-aws/cmd"
)

func TestMainHelp(t *testing.T) {
	// main() calls cmd.Execute(), which exits on error; --help always succeeds
	originalStdout := os.Stdout
	originalArgs := os.Args

	defer func() {
		os.Stdout = originalStdout
		os.Args = originalArgs
	}()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w
	os.Args = []string{"ansible-aws", "--help"}

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		io.Copy(&buf, r)
	}()

	cmd.Execute()

	w.Close()
	<-done

	output := buf.String()
	for _, want := range []string{"ansible-aws", "Usage:", "export-secrets", "report-events", "launch", "rotate-keypair"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected help output to contain %q, got:\n%s", want, output)
		}
	}
}
