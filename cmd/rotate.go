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

	"ansible-aws/internal/keypair"
	"ansible-aws/internal/platform"
)

var (
	rotateKeyPairName string
	rotateSecretName  string
)

// rotateCmd replaces the worker key pair
var rotateCmd = &cobra.Command{
	Use:   "rotate-keypair",
	Short: "Recreate the worker EC2 key pair and store it in Secrets Manager",
	Long: `Delete the EC2 key pair (KEYPAIR_NAME), create it again and store the new
private key, base64 encoded, in the secret SECRET_NAME
(default "ansible-key-pairs"). A missing key pair is not an error.`,
	Example: `  ansible-aws rotate-keypair
  ansible-aws rotate-keypair --name ansible-worker --secret ansible-key-pairs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := keypair.LoadConfig()
		if err != nil {
			return err
		}
		return rotateKeyPair(cmd.Context(), cmd.OutOrStdout(), appFromCommand(cmd), cfg, rotateKeyPairName, rotateSecretName)
	},
}

func rotateKeyPair(ctx context.Context, w io.Writer, app *platform.Platform, cfg keypair.Config, name, secret string) error {
	if name != "" {
		if err := ValidateSecureInput(name, KeyPairNameValidationConfig); err != nil {
			return err
		}
		cfg.KeyPairName = name
	}
	if secret != "" {
		if err := ValidateSecureInput(secret, SecretNameValidationConfig); err != nil {
			return err
		}
		cfg.SecretName = secret
	}

	if err := app.Rotator(cfg).Rotate(ctx); err != nil {
		return err
	}

	fmt.Fprintf(w, "Rotated key pair %s (secret %s)\n", cfg.KeyPairName, cfg.SecretName)
	return nil
}

func init() {
	rotateCmd.Flags().StringVar(&rotateKeyPairName, "name", "", "key pair name (default KEYPAIR_NAME)")
	rotateCmd.Flags().StringVar(&rotateSecretName, "secret", "", "secret receiving the private key (default SECRET_NAME)")
	rootCmd.AddCommand(rotateCmd)
}
