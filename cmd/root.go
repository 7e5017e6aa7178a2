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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ansible-aws/internal/platform"
	"ansible-aws/pkg/config"
)

var (
	regionFlag   string
	envFileFlag  string
	logLevelFlag string
)

// newPlatform builds the service composition; tests swap in fakes
var newPlatform = platform.New

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ansible-aws",
	Short: "AWS glue for running Ansible: secrets export, run events, worker lifecycle.",
	Long: `ansible-aws connects Ansible runs to AWS.

Features:
	• Export prefixed Secrets Manager entries to an Ansible vars file
	• Report play and task outcomes to EventBridge
	• Launch and clean up the EC2 worker that runs Ansible
	• Rotate the worker key pair and store it in Secrets Manager

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initializePlatform loads configuration and injects the platform into the
// command context. It runs before every command.
func initializePlatform(cmd *cobra.Command, args []string) error {
	if skipPlatform(cmd) {
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := configureLogging(cfg.LogLevel); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := newPlatform(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create platform: %w", err)
	}

	cmd.SetContext(platform.WithPlatform(ctx, app))
	return nil
}

func skipPlatform(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "version", rootCmd.Name():
		return true
	}
	return cmd.Parent() != nil && cmd.Parent().Name() == "completion"
}

// loadConfig reads the env file and environment, then applies flag overrides
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(envFileFlag)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = regionFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&regionFlag, "region", "", "AWS region (overrides REGION)")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", config.DefaultEnvFile, "optional file of KEY=value settings")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.PersistentPreRunE = initializePlatform
}

// appFromCommand returns the platform installed by initializePlatform
func appFromCommand(cmd *cobra.Command) *platform.Platform {
	return platform.MustFromContext(cmd.Context())
}

func logger() *log.Entry {
	return log.WithField("component", "cli")
}
