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
// Package inventory maps EC2 Name tags to the ids of running instances
package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	log "github.com/sirupsen/logrus"

	apperrors "ansible-aws/pkg/errors"
)

// NameTag is the tag whose value is matched against inventory hostnames
const NameTag = "Name"

// API is the subset of the EC2 client used to enumerate instances
type API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// Lookup returns a Name tag -> instance id map of all running instances.
// Instances without a Name tag are left out; when names collide the
// instance listed last wins.
func Lookup(ctx context.Context, client API) (map[string]string, error) {
	instances := make(map[string]string)

	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{string(types.InstanceStateNameRunning)},
			},
		},
	}

	paginator := ec2.NewDescribeInstancesPaginator(client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewCloudError("ec2", "DescribeInstances", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				name := TagValue(instance.Tags, NameTag)
				if name == "" {
					continue
				}
				instances[name] = aws.ToString(instance.InstanceId)
			}
		}
	}

	log.WithField("count", len(instances)).Debug("indexed running instances")
	return instances, nil
}

// TagValue returns the value of key in tags, or "" when absent
func TagValue(tags []types.Tag, key string) string {
	value := ""
	for _, t := range tags {
		if aws.ToString(t.Key) == key {
			value = aws.ToString(t.Value)
		}
	}
	return value
}
