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

	"github.com/spf13/cobra"

	"ansible-aws/internal/launcher"
	"ansible-aws/internal/platform"
)

var launchCleanup string

// launchCmd starts or cleans up the Ansible worker instance
var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch the Ansible worker instance, or terminate it with --cleanup",
	Long: `Start the EC2 instance that runs Ansible. Stale workers older than
JOB_TIMEOUT_SECS are terminated first; nothing is launched when no instance
is running or a worker already exists. The image, instance type, network
and user data come from the environment (IMAGE_ID, AMI_SEARCH_TERM,
INSTANCE_TYPE, SUBNET_ID, USERDATA_BUCKET, ...).`,
	Example: `  ansible-aws launch
  ansible-aws launch --cleanup i-0123456789abcdef0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := launcher.LoadConfig()
		if err != nil {
			return err
		}
		return launch(cmd.Context(), cmd.OutOrStdout(), appFromCommand(cmd), cfg, launchCleanup)
	},
}

func launch(ctx context.Context, w io.Writer, app *platform.Platform, cfg launcher.Config, cleanupID string) error {
	l := app.Launcher(cfg)

	if cleanupID != "" {
		if err := ValidateInstanceID(cleanupID); err != nil {
			return err
		}
		if err := l.Cleanup(ctx, cleanupID); err != nil {
			return err
		}
		fmt.Fprintf(w, "Terminated %s\n", cleanupID)
		return nil
	}

	id, err := l.Startup(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		fmt.Fprintln(w, "No worker launched")
		return nil
	}
	fmt.Fprintf(w, "Launched %s\n", id)
	return nil
}

func init() {
	launchCmd.Flags().StringVar(&launchCleanup, "cleanup", "", "terminate this worker instance instead of launching")
	rootCmd.AddCommand(launchCmd)
}
