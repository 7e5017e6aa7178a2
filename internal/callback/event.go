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
// Package callback consumes the Ansible execution lifecycle and turns it
// into run events.
package callback

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Lifecycle callback names carried in the event field
const (
	EventPlayStart         = "v2_playbook_on_play_start"
	EventRunnerOK          = "v2_runner_on_ok"
	EventRunnerFailed      = "v2_runner_on_failed"
	EventRunnerSkipped     = "v2_runner_on_skipped"
	EventRunnerUnreachable = "v2_runner_on_unreachable"
	EventStats             = "v2_playbook_on_stats"
)

// Task describes the task a runner result belongs to
type Task struct {
	Name   string         `mapstructure:"name"`
	Action string         `mapstructure:"action"`
	Args   map[string]any `mapstructure:"args"`
}

// Result is the module result of a runner event
type Result struct {
	Changed bool `mapstructure:"changed"`
}

// Play is the play of a play start event
type Play struct {
	Name       string         `mapstructure:"name"`
	Properties map[string]any `mapstructure:"properties"`
}

// RunnerResult is the outcome of one task on one host
type RunnerResult struct {
	Host   string
	Task   Task
	Result Result
}

// Event is one line of the lifecycle stream
type Event struct {
	Event        string         `mapstructure:"event"`
	Host         string         `mapstructure:"host"`
	Task         Task           `mapstructure:"task"`
	Result       Result         `mapstructure:"result"`
	Play         Play           `mapstructure:"play"`
	Stats        map[string]any `mapstructure:"stats"`
	IgnoreErrors bool           `mapstructure:"ignore_errors"`
}

// RunnerResult returns the runner part of the event
func (e Event) RunnerResult() RunnerResult {
	return RunnerResult{
		Host:   e.Host,
		Task:   e.Task,
		Result: e.Result,
	}
}

// DecodeEvent parses one JSON object of the lifecycle stream
func DecodeEvent(line []byte) (Event, error) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, fmt.Errorf("failed to parse event: %w", err)
	}

	var ev Event
	if err := mapstructure.Decode(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if ev.Event == "" {
		return Event{}, fmt.Errorf("event name is missing")
	}
	return ev, nil
}
