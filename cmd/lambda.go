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

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"ansible-aws/internal/keypair"
	"ansible-aws/internal/launcher"
	"ansible-aws/internal/platform"
)

const (
	lambdaLauncher      = "launcher"
	lambdaRotateKeyPair = "rotate-keypair"
)

// startLambda hands a handler to the Lambda runtime; tests replace it
var startLambda = lambda.Start

// lambdaCmd serves one of the functions as an AWS Lambda handler
var lambdaCmd = &cobra.Command{
	Use:       "lambda <launcher|rotate-keypair>",
	Short:     "Serve a function as an AWS Lambda handler",
	Long:      `Run inside the Lambda runtime. "launcher" takes {"method", "instance_id"} payloads; "rotate-keypair" ignores its payload.`,
	Example:   `  ansible-aws lambda launcher`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{lambdaLauncher, lambdaRotateKeyPair},
	RunE: func(cmd *cobra.Command, args []string) error {
		handler, err := lambdaHandler(appFromCommand(cmd), args[0])
		if err != nil {
			return err
		}
		logger().WithField("function", args[0]).Info("starting lambda handler")
		startLambda(handler)
		return nil
	},
}

// lambdaHandler builds the handler of the named function from the environment
func lambdaHandler(app *platform.Platform, name string) (any, error) {
	switch name {
	case lambdaLauncher:
		cfg, err := launcher.LoadConfig()
		if err != nil {
			return nil, err
		}
		return launcherHandler(app.Launcher(cfg)), nil
	case lambdaRotateKeyPair:
		cfg, err := keypair.LoadConfig()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return rotateHandler(app.Rotator(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown lambda function %q", name)
	}
}

func launcherHandler(l *launcher.Launcher) func(context.Context, launcher.Payload) error {
	return func(ctx context.Context, p launcher.Payload) error {
		return l.Run(ctx, p)
	}
}

func rotateHandler(r *keypair.Rotator) func(context.Context) error {
	return func(ctx context.Context) error {
		return r.Rotate(ctx)
	}
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}
