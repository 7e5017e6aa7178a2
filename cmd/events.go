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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ansible-aws/internal/callback"
	"ansible-aws/internal/platform"
)

var (
	eventsInput   string
	eventsTimeout string
)

// eventsCmd consumes the lifecycle stream of an Ansible run
var eventsCmd = &cobra.Command{
	Use:   "report-events",
	Short: "Publish Ansible run events to EventBridge",
	Long: `Read the Ansible lifecycle as JSON Lines (one callback per line, named by
the "event" field) and publish run start, per-host report and run end
events to EventBridge. Hosts are annotated with the id of the running EC2
instance whose Name tag matches the inventory hostname.

The input is a recorded stream of Ansible callback events, one JSON object
per line. The regular ansible-playbook output is not accepted.`,
	Example: `  ansible-aws report-events --input run.jsonl
  ansible-aws report-events --input run.jsonl --timeout 30m
  cat run.jsonl | ansible-aws report-events`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, err := platform.WithTimeout(cmd.Context(), eventsTimeout)
		if err != nil {
			return err
		}
		defer cancel()

		in, closeInput, err := openInput(eventsInput, cmd.InOrStdin())
		if err != nil {
			return err
		}
		defer closeInput()

		return reportEvents(ctx, in, appFromCommand(cmd))
	},
}

func reportEvents(ctx context.Context, in io.Reader, app *platform.Platform) error {
	plugin, err := callback.NewPlugin(ctx, app.EC2, app.Publisher())
	if err != nil {
		return err
	}

	if err := callback.Consume(ctx, in, plugin); err != nil {
		return fmt.Errorf("failed to report run %s: %w", plugin.RunID(), err)
	}
	return nil
}

// openInput opens path, or returns stdin for "-"
func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsInput, "input", "i", "-", "lifecycle stream file, - for stdin")
	eventsCmd.Flags().StringVar(&eventsTimeout, "timeout", "2h", "maximum duration of the run")
	rootCmd.AddCommand(eventsCmd)
}
