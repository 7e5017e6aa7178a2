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
package launcher

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"

	apperrors "ansible-aws/pkg/errors"
)

// MethodCleanup selects instance termination instead of startup
const MethodCleanup = "cleanup"

// Payload triggers a launcher run
type Payload struct {
	Method     string `json:"method"`
	InstanceID string `json:"instance_id"`
}

// EC2API is the subset of the EC2 client used by the launcher
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
	AssociateIamInstanceProfile(ctx context.Context, params *ec2.AssociateIamInstanceProfileInput, optFns ...func(*ec2.Options)) (*ec2.AssociateIamInstanceProfileOutput, error)
}

// S3API is the subset of the S3 client used to read user data
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Launcher manages the lifecycle of the worker instance
type Launcher struct {
	cfg Config
	ec2 EC2API
	s3  S3API
	now func() time.Time
}

// New creates a launcher
func New(cfg Config, ec2Client EC2API, s3Client S3API) *Launcher {
	return &Launcher{
		cfg: cfg,
		ec2: ec2Client,
		s3:  s3Client,
		now: time.Now,
	}
}

// Run terminates payload.InstanceID for the cleanup method and starts a
// worker otherwise.
func (l *Launcher) Run(ctx context.Context, p Payload) error {
	logger := log.WithField("method", p.Method)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.WithField("request_id", lc.AwsRequestID)
	}
	logger.Info("launcher invoked")

	if strings.EqualFold(p.Method, MethodCleanup) {
		return l.Cleanup(ctx, p.InstanceID)
	}

	_, err := l.Startup(ctx)
	return err
}

// Cleanup terminates a finished worker
func (l *Launcher) Cleanup(ctx context.Context, instanceID string) error {
	if instanceID == "" {
		return apperrors.NewValidationError("instance_id", "cleanup requires an instance id")
	}
	return l.terminate(ctx, instanceID)
}

// Startup launches a worker when instances are running and none exists yet.
// It returns the id of the new instance, or "" when the launch was skipped.
func (l *Launcher) Startup(ctx context.Context) (string, error) {
	if err := l.purgeStaleInstances(ctx); err != nil {
		return "", fmt.Errorf("failed to purge stale instances: %w", err)
	}

	running, err := l.describeInstances(ctx, stateFilter())
	if err != nil {
		return "", fmt.Errorf("failed to get ec2 instances: %w", err)
	}
	if len(running) == 0 {
		log.Info("there are no instances running, skipping ansible execution")
		return "", nil
	}

	workers, err := l.workers(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list instances: %w", err)
	}
	if len(workers) > 0 {
		log.WithField("instances", instanceIDs(workers)).Info("worker already running")
		return "", nil
	}

	imageID := l.cfg.ImageID
	if imageID == "" {
		imageID, err = l.latestImageID(ctx)
		if err != nil {
			return "", err
		}
	}

	var userData []byte
	if l.cfg.HasUserData() {
		userData, err = l.readUserData(ctx)
		if err != nil {
			return "", err
		}
	}

	instanceID, err := l.createInstance(ctx, imageID, userData)
	if err != nil {
		return "", err
	}

	if err := l.waitForRunning(ctx, instanceID); err != nil {
		return instanceID, err
	}

	if l.cfg.InstanceProfileArn != "" {
		if err := l.associateProfile(ctx, instanceID); err != nil {
			return instanceID, err
		}
	}

	log.WithField("instance_id", instanceID).Info("worker launched")
	return instanceID, nil
}

func (l *Launcher) purgeStaleInstances(ctx context.Context) error {
	workers, err := l.workers(ctx)
	if err != nil {
		return err
	}

	var stale []string
	for _, i := range workers {
		if l.now().Sub(aws.ToTime(i.LaunchTime)) > l.cfg.JobTimeout() {
			stale = append(stale, aws.ToString(i.InstanceId))
		}
	}
	if len(stale) == 0 {
		return nil
	}

	log.WithField("instances", stale).Warn("terminating stale workers")
	return l.terminate(ctx, stale...)
}

func (l *Launcher) workers(ctx context.Context) ([]types.Instance, error) {
	return l.describeInstances(ctx, stateFilter(), types.Filter{
		Name:   aws.String("tag:Name"),
		Values: []string{WorkerName},
	})
}

func (l *Launcher) describeInstances(ctx context.Context, filters ...types.Filter) ([]types.Instance, error) {
	var instances []types.Instance

	paginator := ec2.NewDescribeInstancesPaginator(l.ec2, &ec2.DescribeInstancesInput{Filters: filters})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewCloudError("ec2", "DescribeInstances", err)
		}
		for _, r := range page.Reservations {
			instances = append(instances, r.Instances...)
		}
	}

	return instances, nil
}

func (l *Launcher) latestImageID(ctx context.Context) (string, error) {
	out, err := l.ec2.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Filters: imageFilters(map[string]string{
			"name":                             l.cfg.AmiSearchTerm,
			"architecture":                     "x86_64",
			"virtualization-type":              "hvm",
			"block-device-mapping.volume-type": "gp2",
		}),
	})
	if err != nil {
		return "", apperrors.NewCloudError("ec2", "DescribeImages", err)
	}

	imageID := filterLatestImageID(filterByOwnerAlias(l.cfg.AmiOwnerAlias, out.Images))
	if imageID == "" {
		return "", apperrors.NewNotFoundError("image", l.cfg.AmiSearchTerm)
	}
	return imageID, nil
}

func (l *Launcher) readUserData(ctx context.Context) ([]byte, error) {
	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.cfg.Bucket),
		Key:    aws.String(l.cfg.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download user data from %s/%s: %w", l.cfg.Bucket, l.cfg.Key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user data from %s/%s: %w", l.cfg.Bucket, l.cfg.Key, err)
	}
	return data, nil
}

func (l *Launcher) createInstance(ctx context.Context, imageID string, userData []byte) (string, error) {
	log.WithField("image_id", imageID).Info("creating ansible worker")

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(imageID),
		InstanceType: types.InstanceType(l.cfg.InstanceType),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		TagSpecifications: []types.TagSpecification{
			{
				ResourceType: types.ResourceTypeInstance,
				Tags: []types.Tag{
					{Key: aws.String("Name"), Value: aws.String(WorkerName)},
				},
			},
		},
		UserData:         nilIfEmpty(base64.StdEncoding.EncodeToString(userData)),
		SubnetId:         nilIfEmpty(l.cfg.SubnetID),
		KeyName:          nilIfEmpty(l.cfg.KeyPairName),
		SecurityGroupIds: l.cfg.SecurityGroupIDs,
	}

	out, err := l.ec2.RunInstances(ctx, input)
	if err != nil {
		return "", apperrors.NewCloudError("ec2", "RunInstances", err)
	}
	if len(out.Instances) == 0 {
		return "", fmt.Errorf("failed to create EC2 instance: no instance returned")
	}
	return aws.ToString(out.Instances[0].InstanceId), nil
}

func (l *Launcher) waitForRunning(ctx context.Context, instanceID string) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to wait for EC2 instance %s: %w", instanceID, ctx.Err())
		case <-time.After(l.cfg.pollInterval()):
		}

		out, err := l.ec2.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
			InstanceIds:         []string{instanceID},
			IncludeAllInstances: aws.Bool(true),
		})
		if err != nil {
			log.WithError(err).WithField("instance_id", instanceID).Warn("failed to describe instance status")
			continue
		}
		if len(out.InstanceStatuses) == 0 || out.InstanceStatuses[0].InstanceState == nil {
			continue
		}

		switch state := out.InstanceStatuses[0].InstanceState.Name; state {
		case types.InstanceStateNameRunning:
			return nil
		case types.InstanceStateNameTerminated, types.InstanceStateNameShuttingDown:
			return fmt.Errorf("failed to wait for EC2 instance %s: state %s", instanceID, state)
		}
	}
}

func (l *Launcher) associateProfile(ctx context.Context, instanceID string) error {
	_, err := l.ec2.AssociateIamInstanceProfile(ctx, &ec2.AssociateIamInstanceProfileInput{
		IamInstanceProfile: &types.IamInstanceProfileSpecification{
			Arn: aws.String(l.cfg.InstanceProfileArn),
		},
		InstanceId: aws.String(instanceID),
	})
	if err != nil {
		return apperrors.NewCloudError("ec2", "AssociateIamInstanceProfile", err)
	}
	return nil
}

func (l *Launcher) terminate(ctx context.Context, instanceIDs ...string) error {
	_, err := l.ec2.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: instanceIDs,
	})
	if err != nil {
		return apperrors.NewCloudError("ec2", "TerminateInstances", err)
	}
	log.WithField("instances", instanceIDs).Info("terminated instances")
	return nil
}

func stateFilter() types.Filter {
	return types.Filter{
		Name:   aws.String("instance-state-name"),
		Values: []string{"running", "pending"},
	}
}

func imageFilters(m map[string]string) []types.Filter {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	filters := make([]types.Filter, 0, len(names))
	for _, name := range names {
		filters = append(filters, types.Filter{
			Name:   aws.String(name),
			Values: []string{m[name]},
		})
	}
	return filters
}

func filterByOwnerAlias(ownerAlias string, images []types.Image) []types.Image {
	var filtered []types.Image
	for _, i := range images {
		if aws.ToString(i.ImageOwnerAlias) == ownerAlias {
			filtered = append(filtered, i)
		}
	}
	return filtered
}

// filterLatestImageID returns the id of the newest image. Images with an
// unparseable CreationDate are ignored.
func filterLatestImageID(images []types.Image) string {
	var (
		selected string
		latest   time.Time
	)
	for _, i := range images {
		t, err := time.Parse(time.RFC3339, aws.ToString(i.CreationDate))
		if err != nil {
			log.WithError(err).WithField("image_id", aws.ToString(i.ImageId)).Debug("ignoring image")
			continue
		}
		if selected == "" || t.After(latest) {
			selected = aws.ToString(i.ImageId)
			latest = t
		}
	}
	return selected
}

func instanceIDs(instances []types.Instance) []string {
	ids := make([]string, 0, len(instances))
	for _, i := range instances {
		ids = append(ids, aws.ToString(i.InstanceId))
	}
	return ids
}

func nilIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
