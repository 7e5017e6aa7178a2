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
package report

import (
	"sort"

	log "github.com/sirupsen/logrus"
)

// Outcome is a task result as delivered by the lifecycle stream
type Outcome struct {
	Host   string
	Task   string
	Action string
	Args   map[string]any
}

// Tracker owns the reports of one run. It is not safe for concurrent use;
// lifecycle callbacks arrive sequentially.
type Tracker struct {
	runID     string
	instances map[string]string
	reports   map[string]*HostReport
}

// NewTracker creates a tracker annotating hosts through instances, a
// hostname -> instance id lookup.
func NewTracker(runID string, instances map[string]string) *Tracker {
	if instances == nil {
		instances = map[string]string{}
	}
	return &Tracker{
		runID:     runID,
		instances: instances,
		reports:   make(map[string]*HostReport),
	}
}

// RunID returns the id shared by every report of the run
func (t *Tracker) RunID() string {
	return t.runID
}

// Update applies one task outcome to the report of its host
func (t *Tracker) Update(state State, outcome Outcome) *HostReport {
	r, ok := t.reports[outcome.Host]
	if !ok {
		r = NewHostReport(t.runID, outcome.Host)
		t.reports[outcome.Host] = r
	}

	if state == StateUnreachable {
		r.Unreachable = true
		log.WithField("host", outcome.Host).Debug("host unreachable")
		return r
	}

	r.Unreachable = false
	r.InstanceID = t.instances[outcome.Host]
	r.IncStat(state, 1)
	r.AddTask(state, outcome.Task, outcome.Action, StripPrivateArgs(outcome.Args, PrivateArgPrefix))

	log.WithFields(log.Fields{
		"host":  outcome.Host,
		"state": state,
		"task":  outcome.Task,
	}).Debug("recorded task outcome")
	return r
}

// Report returns the report of host, if any
func (t *Tracker) Report(host string) (*HostReport, bool) {
	r, ok := t.reports[host]
	return r, ok
}

// Reports returns every report ordered by host name
func (t *Tracker) Reports() []*HostReport {
	reports := make([]*HostReport, 0, len(t.reports))
	for _, r := range t.reports {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Host < reports[j].Host
	})
	return reports
}
