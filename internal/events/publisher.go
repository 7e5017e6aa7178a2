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
// Package events publishes Ansible run lifecycle events to EventBridge
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	log "github.com/sirupsen/logrus"

	apperrors "ansible-aws/pkg/errors"
)

// Detail types of the events published for a run
const (
	DetailTypeRunStart  = "ansible-run-start"
	DetailTypeRunReport = "ansible-run-report"
	DetailTypeRunEnd    = "ansible-run-end"
)

// DefaultSource is the event source when none is configured
const DefaultSource = "ansible"

// API is the subset of the EventBridge client used to publish events
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Publisher sends one event per call
type Publisher struct {
	client  API
	source  string
	busName string
}

// NewPublisher creates a publisher. An empty busName targets the default bus.
func NewPublisher(client API, source, busName string) *Publisher {
	if source == "" {
		source = DefaultSource
	}
	return &Publisher{
		client:  client,
		source:  source,
		busName: busName,
	}
}

// Source returns the event source stamped on every entry
func (p *Publisher) Source() string {
	return p.source
}

// Put JSON-encodes payload and publishes it as a single entry
func (p *Publisher) Put(ctx context.Context, detailType string, payload any) error {
	detail, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s detail: %w", detailType, err)
	}

	entry := types.PutEventsRequestEntry{
		Source:     aws.String(p.source),
		DetailType: aws.String(detailType),
		Detail:     aws.String(string(detail)),
	}
	if p.busName != "" {
		entry.EventBusName = aws.String(p.busName)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return apperrors.NewCloudError("eventbridge", "PutEvents", err)
	}

	if out.FailedEntryCount > 0 {
		return fmt.Errorf("failed to publish %s event: %s", detailType, entryFailure(out.Entries))
	}

	log.WithFields(log.Fields{
		"detail_type": detailType,
		"source":      p.source,
	}).Debug("published event")
	return nil
}

func entryFailure(entries []types.PutEventsResultEntry) string {
	var reasons []string
	for _, e := range entries {
		if e.ErrorCode == nil {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage)))
	}
	if len(reasons) == 0 {
		return "entry rejected"
	}
	return strings.Join(reasons, "; ")
}
