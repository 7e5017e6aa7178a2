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
package events

import (
	"strings"
)

// RunStart is the detail of an ansible-run-start event
type RunStart struct {
	Name       string         `json:"name"`
	RunID      string         `json:"run_id"`
	Properties map[string]any `json:"properties"`
}

// NewRunStart builds the run start detail for a play
func NewRunStart(runID, playName string, properties map[string]any) RunStart {
	if properties == nil {
		properties = map[string]any{}
	}
	return RunStart{
		Name:       strings.TrimSpace(playName),
		RunID:      runID,
		Properties: properties,
	}
}

// RunEnd builds the detail of an ansible-run-end event: the aggregate
// playbook stats with the run id added.
func RunEnd(runID string, stats map[string]any) map[string]any {
	out := make(map[string]any, len(stats)+1)
	for k, v := range stats {
		out[k] = v
	}
	out["run_id"] = runID
	return out
}
