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
package callback

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ansible-aws/internal/events"
	"ansible-aws/internal/inventory"
	"ansible-aws/internal/report"
)

// Publisher publishes one event detail
type Publisher interface {
	Put(ctx context.Context, detailType string, payload any) error
}

// Plugin is the Handler that reports a run to the event bus
type Plugin struct {
	runID     string
	tracker   *report.Tracker
	publisher Publisher
}

// NewPlugin assigns a fresh run id and snapshots the running instances used
// to annotate host reports.
func NewPlugin(ctx context.Context, ec2 inventory.API, publisher Publisher) (*Plugin, error) {
	instances, err := inventory.Lookup(ctx, ec2)
	if err != nil {
		return nil, fmt.Errorf("failed to query running instances: %w", err)
	}
	return NewPluginWithInstances(uuid.NewString(), instances, publisher), nil
}

// NewPluginWithInstances builds a plugin from a known run id and lookup
func NewPluginWithInstances(runID string, instances map[string]string, publisher Publisher) *Plugin {
	log.WithFields(log.Fields{
		"run_id":    runID,
		"instances": len(instances),
	}).Info("starting run")

	return &Plugin{
		runID:     runID,
		tracker:   report.NewTracker(runID, instances),
		publisher: publisher,
	}
}

// RunID returns the id shared by every event of the run
func (p *Plugin) RunID() string {
	return p.runID
}

// Tracker exposes the accumulated host reports
func (p *Plugin) Tracker() *report.Tracker {
	return p.tracker
}

func (p *Plugin) PlayStart(ctx context.Context, play Play) error {
	return p.publisher.Put(ctx, events.DetailTypeRunStart, events.NewRunStart(p.runID, play.Name, play.Properties))
}

func (p *Plugin) RunnerOK(ctx context.Context, res RunnerResult) error {
	state := report.StateOK
	if res.Result.Changed {
		state = report.StateChanged
	}
	p.update(state, res)
	return nil
}

// RunnerFailed counts the failure whether or not the task ignores errors
func (p *Plugin) RunnerFailed(ctx context.Context, res RunnerResult, ignoreErrors bool) error {
	p.update(report.StateFailed, res)
	return nil
}

func (p *Plugin) RunnerSkipped(ctx context.Context, res RunnerResult) error {
	p.update(report.StateSkipped, res)
	return nil
}

func (p *Plugin) RunnerUnreachable(ctx context.Context, res RunnerResult) error {
	p.update(report.StateUnreachable, res)
	return nil
}

// Stats publishes one report per host followed by the run end event
func (p *Plugin) Stats(ctx context.Context, stats map[string]any) error {
	for _, r := range p.tracker.Reports() {
		if err := p.publisher.Put(ctx, events.DetailTypeRunReport, r); err != nil {
			return fmt.Errorf("failed to publish report for %s: %w", r.Host, err)
		}
	}

	if err := p.publisher.Put(ctx, events.DetailTypeRunEnd, events.RunEnd(p.runID, stats)); err != nil {
		return err
	}

	log.WithField("run_id", p.runID).Info("run reported")
	return nil
}

func (p *Plugin) update(state report.State, res RunnerResult) {
	p.tracker.Update(state, report.Outcome{
		Host:   res.Host,
		Task:   res.Task.Name,
		Action: res.Task.Action,
		Args:   res.Task.Args,
	})
}
