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
// Package report accumulates per-host task outcomes for a single Ansible run
package report

import (
	"strings"
)

// State is the outcome of one task on one host
type State string

const (
	StateOK          State = "ok"
	StateChanged     State = "changed"
	StateFailed      State = "failed"
	StateSkipped     State = "skipped"
	StateUnreachable State = "unreachable"
)

// PrivateArgPrefix marks task arguments Ansible injects for its own use
const PrivateArgPrefix = "_"

// TaskEntry is one task outcome recorded for a host
type TaskEntry struct {
	State  State          `json:"state"`
	Name   string         `json:"name"`
	Action string         `json:"action"`
	Args   map[string]any `json:"args"`
}

// HostReport is the record published for every host at the end of a run
type HostReport struct {
	RunID       string        `json:"run_id"`
	Host        string        `json:"host"`
	InstanceID  string        `json:"instance_id"`
	Unreachable bool          `json:"unreachable"`
	Stats       map[State]int `json:"stats"`
	Tasks       []TaskEntry   `json:"tasks"`
}

// NewHostReport returns an empty report. Hosts count as unreachable until
// a task result arrives for them.
func NewHostReport(runID, host string) *HostReport {
	return &HostReport{
		RunID:       runID,
		Host:        host,
		Unreachable: true,
		Stats: map[State]int{
			StateOK:      0,
			StateChanged: 0,
			StateFailed:  0,
			StateSkipped: 0,
		},
		Tasks: []TaskEntry{},
	}
}

// IncStat adds count to the counter for state. Negative counts are ignored.
func (r *HostReport) IncStat(state State, count int) {
	if count < 0 {
		return
	}
	r.Stats[state] += count
}

// AddTask records a task outcome
func (r *HostReport) AddTask(state State, name, action string, args map[string]any) {
	if args == nil {
		args = map[string]any{}
	}
	r.Tasks = append(r.Tasks, TaskEntry{
		State:  state,
		Name:   name,
		Action: action,
		Args:   args,
	})
}

// StripPrivateArgs returns a copy of args without keys starting with prefix
func StripPrivateArgs(args map[string]any, prefix string) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if strings.HasPrefix(k, prefix) {
			continue
		}
		out[k] = v
	}
	return out
}
