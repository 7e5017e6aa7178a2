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
	"testing"
)

func TestTrackerUpdate(t *testing.T) {
	tracker := NewTracker("run-1", map[string]string{"web1": "i-web1"})

	tracker.Update(StateOK, Outcome{Host: "web1", Task: "ping", Action: "ping"})
	tracker.Update(StateChanged, Outcome{
		Host:   "web1",
		Task:   "install",
		Action: "apt",
		Args:   map[string]any{"name": "nginx", "_ansible_no_log": false},
	})
	r := tracker.Update(StateFailed, Outcome{Host: "web1", Task: "start", Action: "service"})

	if r.Unreachable {
		t.Error("Expected host with results to be reachable")
	}
	if r.InstanceID != "i-web1" {
		t.Errorf("Expected instance id %q, got %q", "i-web1", r.InstanceID)
	}
	if r.RunID != "run-1" {
		t.Errorf("Expected run id %q, got %q", "run-1", r.RunID)
	}

	expected := map[State]int{StateOK: 1, StateChanged: 1, StateFailed: 1, StateSkipped: 0}
	for state, count := range expected {
		if r.Stats[state] != count {
			t.Errorf("Expected %s=%d, got %d", state, count, r.Stats[state])
		}
	}

	if len(r.Tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(r.Tasks))
	}
	if _, ok := r.Tasks[1].Args["_ansible_no_log"]; ok {
		t.Error("Expected private args to be stripped")
	}
	if r.Tasks[1].Args["name"] != "nginx" {
		t.Errorf("Expected name arg to survive, got %v", r.Tasks[1].Args)
	}
}

func TestTrackerUnreachable(t *testing.T) {
	tracker := NewTracker("run-1", nil)

	r := tracker.Update(StateUnreachable, Outcome{Host: "db1", Task: "gather"})
	if !r.Unreachable {
		t.Error("Expected host to be unreachable")
	}
	if len(r.Tasks) != 0 {
		t.Errorf("Expected no tasks for unreachable host, got %d", len(r.Tasks))
	}
	for state, count := range r.Stats {
		if count != 0 {
			t.Errorf("Expected %s=0, got %d", state, count)
		}
	}
	if _, ok := r.Stats[StateUnreachable]; ok {
		t.Error("Unreachable must not be counted")
	}

	// a later result clears the flag; an unknown host gets no instance id
	r = tracker.Update(StateSkipped, Outcome{Host: "db1", Task: "optional"})
	if r.Unreachable {
		t.Error("Expected host to become reachable")
	}
	if r.InstanceID != "" {
		t.Errorf("Expected empty instance id, got %q", r.InstanceID)
	}

	r = tracker.Update(StateUnreachable, Outcome{Host: "db1"})
	if !r.Unreachable || r.Stats[StateSkipped] != 1 || len(r.Tasks) != 1 {
		t.Errorf("Unexpected report after second unreachable: %+v", r)
	}
}

func TestTrackerReportsSorted(t *testing.T) {
	tracker := NewTracker("run-1", nil)
	for _, host := range []string{"web2", "app1", "web1"} {
		tracker.Update(StateOK, Outcome{Host: host})
	}

	reports := tracker.Reports()
	if len(reports) != 3 {
		t.Fatalf("Expected 3 reports, got %d", len(reports))
	}
	for i, host := range []string{"app1", "web1", "web2"} {
		if reports[i].Host != host {
			t.Errorf("Expected report %d to be %q, got %q", i, host, reports[i].Host)
		}
	}

	if _, ok := tracker.Report("missing"); ok {
		t.Error("Expected no report for unknown host")
	}
}
