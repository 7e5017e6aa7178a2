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
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ansible-aws/internal/platform"
	secretstest "ansible-aws/internal/secrets/testing"
	"ansible-aws/pkg/config"
)

type fakeEC2 struct {
	instances  []ec2types.Instance
	terminated []string
	keyPairs   []string
}

func (f *fakeEC2) DescribeInstances(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	for _, filter := range params.Filters {
		if aws.ToString(filter.Name) == "tag:Name" {
			return &ec2.DescribeInstancesOutput{}, nil
		}
	}
	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{{Instances: f.instances}},
	}, nil
}

func (f *fakeEC2) DescribeImages(context.Context, *ec2.DescribeImagesInput, ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	return &ec2.DescribeImagesOutput{}, nil
}

func (f *fakeEC2) DescribeInstanceStatus(context.Context, *ec2.DescribeInstanceStatusInput, ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error) {
	return &ec2.DescribeInstanceStatusOutput{}, nil
}

func (f *fakeEC2) RunInstances(context.Context, *ec2.RunInstancesInput, ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	return &ec2.RunInstancesOutput{}, nil
}

func (f *fakeEC2) TerminateInstances(_ context.Context, params *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	f.terminated = append(f.terminated, params.InstanceIds...)
	return &ec2.TerminateInstancesOutput{}, nil
}

func (f *fakeEC2) AssociateIamInstanceProfile(context.Context, *ec2.AssociateIamInstanceProfileInput, ...func(*ec2.Options)) (*ec2.AssociateIamInstanceProfileOutput, error) {
	return &ec2.AssociateIamInstanceProfileOutput{}, nil
}

func (f *fakeEC2) DeleteKeyPair(_ context.Context, params *ec2.DeleteKeyPairInput, _ ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error) {
	f.keyPairs = append(f.keyPairs, "delete:"+aws.ToString(params.KeyName))
	return &ec2.DeleteKeyPairOutput{}, nil
}

func (f *fakeEC2) CreateKeyPair(_ context.Context, params *ec2.CreateKeyPairInput, _ ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	f.keyPairs = append(f.keyPairs, "create:"+aws.ToString(params.KeyName))
	return &ec2.CreateKeyPairOutput{KeyName: params.KeyName, KeyMaterial: aws.String("private")}, nil
}

type fakeEventBridge struct {
	detailTypes []string
}

func (f *fakeEventBridge) PutEvents(_ context.Context, params *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	for _, e := range params.Entries {
		f.detailTypes = append(f.detailTypes, aws.ToString(e.DetailType))
	}
	return &eventbridge.PutEventsOutput{}, nil
}

type fakeS3 struct{}

func (fakeS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(""))}, nil
}

type testApp struct {
	*platform.Platform
	sm  *secretstest.MemoryClient
	ec2 *fakeEC2
	eb  *fakeEventBridge
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	sm := secretstest.NewMemoryClient()
	e := &fakeEC2{}
	eb := &fakeEventBridge{}

	app := &platform.Platform{
		Config: config.Config{
			Region:       "us-east-1",
			LogLevel:     "info",
			SecretPrefix: "ansible-",
			SecretsPath:  t.TempDir() + "/ansible/secrets.yaml",
			EventSource:  "ansible",
		},
	}
	err := app.Apply(
		platform.WithSecretsManager(sm),
		platform.WithEC2(e),
		platform.WithEventBridge(eb),
		platform.WithS3(fakeS3{}),
	)
	if err != nil {
		t.Fatalf("Failed to build test platform: %v", err)
	}

	return &testApp{Platform: app, sm: sm, ec2: e, eb: eb}
}
