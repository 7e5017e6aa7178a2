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

	"ansible-aws/internal/platform"
	"ansible-aws/internal/secrets"
)

var (
	exportOutput string
	exportPrefix string
)

// exportCmd writes prefixed secrets to the Ansible vars file
var exportCmd = &cobra.Command{
	Use:   "export-secrets",
	Short: "Export prefixed Secrets Manager entries to a YAML vars file",
	Long: `Export every Secrets Manager secret whose name starts with the prefix
(SECRET_PREFIX, default "ansible-") to a YAML document keyed by the name
without the prefix. JSON values are written as structured YAML.`,
	Example: `  ansible-aws export-secrets
  ansible-aws export-secrets --output ./group_vars/all/secrets.yaml
  ansible-aws export-secrets --prefix prod/ansible-`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportSecrets(cmd.Context(), cmd.OutOrStdout(), appFromCommand(cmd), exportOutput, exportPrefix)
	},
}

func exportSecrets(ctx context.Context, w io.Writer, app *platform.Platform, output, prefix string) error {
	if output == "" {
		output = app.Config.SecretsPath
	}

	exporter := app.Exporter()
	if prefix != "" {
		if err := ValidateSecureInput(prefix, SecretPrefixValidationConfig); err != nil {
			return err
		}
		exporter = secrets.NewExporter(app.SecretsManager, prefix)
	}

	names, err := exporter.Export(ctx, output)
	if err != nil {
		return fmt.Errorf("failed to export secrets: %w", err)
	}

	fmt.Fprintf(w, "Exported %d secrets to %s\n", len(names), output)
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "destination file (default SECRETS_PATH)")
	exportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "secret name prefix (default SECRET_PREFIX)")
	rootCmd.AddCommand(exportCmd)
}
