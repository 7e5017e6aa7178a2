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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ansible-aws/internal/events"
	"ansible-aws/internal/report"
)

type published struct {
	detailType string
	payload    any
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) Put(_ context.Context, detailType string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{detailType: detailType, payload: payload})
	return nil
}

const stream = `
{"event": "v2_playbook_on_play_start", "play": {"name": " site ", "properties": {"hosts": "all"}}}
{"event": "v2_runner_on_ok", "host": "web1", "task": {"name": "ping", "action": "ping", "args": {}}, "result": {"changed": false}}

{"event": "v2_runner_on_ok", "host": "web1", "task": {"name": "install", "action": "apt", "args": {"name": "nginx", "_ansible_check_mode": false}}, "result": {"changed": true}}
{"event": "v2_runner_on_failed", "host": "db1", "task": {"name": "migrate", "action": "command"}, "ignore_errors": true}
{"event": "v2_runner_on_unreachable", "host": "cache1", "task": {"name": "gather"}}
{"event": "v2_playbook_on_task_start", "task": {"name": "noise"}}
{"event": "v2_playbook_on_stats", "stats": {"processed": {"web1": 1, "db1": 1}}}
`

func TestConsumeFullRun(t *testing.T) {
	pub := &fakePublisher{}
	plugin := NewPluginWithInstances("run-1", map[string]string{"web1": "i-web1"}, pub)

	require.NoError(t, Consume(context.Background(), strings.NewReader(stream), plugin))

	require.Len(t, pub.events, 5)

	assert.Equal(t, events.DetailTypeRunStart, pub.events[0].detailType)
	start := pub.events[0].payload.(events.RunStart)
	assert.Equal(t, "site", start.Name)
	assert.Equal(t, "run-1", start.RunID)
	assert.Equal(t, map[string]any{"hosts": "all"}, start.Properties)

	var hosts []string
	for _, e := range pub.events[1:4] {
		assert.Equal(t, events.DetailTypeRunReport, e.detailType)
		hosts = append(hosts, e.payload.(*report.HostReport).Host)
	}
	assert.Equal(t, []string{"cache1", "db1", "web1"}, hosts)

	cache := pub.events[1].payload.(*report.HostReport)
	assert.True(t, cache.Unreachable)
	assert.Empty(t, cache.Tasks)

	db := pub.events[2].payload.(*report.HostReport)
	assert.False(t, db.Unreachable)
	assert.Equal(t, 1, db.Stats[report.StateFailed])
	assert.Equal(t, "", db.InstanceID)

	web := pub.events[3].payload.(*report.HostReport)
	assert.Equal(t, "i-web1", web.InstanceID)
	assert.Equal(t, 1, web.Stats[report.StateOK])
	assert.Equal(t, 1, web.Stats[report.StateChanged])
	require.Len(t, web.Tasks, 2)
	assert.Equal(t, map[string]any{"name": "nginx"}, web.Tasks[1].Args)

	assert.Equal(t, events.DetailTypeRunEnd, pub.events[4].detailType)
	end := pub.events[4].payload.(map[string]any)
	assert.Equal(t, "run-1", end["run_id"])
	assert.Contains(t, end, "processed")
}

func TestConsumeMalformedLine(t *testing.T) {
	input := "{\"event\": \"v2_runner_on_ok\", \"host\": \"web1\"}\n{not json}\n"
	plugin := NewPluginWithInstances("run-1", nil, &fakePublisher{})

	err := Consume(context.Background(), strings.NewReader(input), plugin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestConsumeMissingEventName(t *testing.T) {
	plugin := NewPluginWithInstances("run-1", nil, &fakePublisher{})

	err := Consume(context.Background(), strings.NewReader(`{"host": "web1"}`), plugin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestConsumePublishError(t *testing.T) {
	pubErr := errors.New("bus down")
	plugin := NewPluginWithInstances("run-1", nil, &fakePublisher{err: pubErr})

	err := Consume(context.Background(), strings.NewReader(`{"event": "v2_playbook_on_play_start", "play": {"name": "site"}}`), plugin)
	assert.ErrorIs(t, err, pubErr)
}

func TestConsumeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plugin := NewPluginWithInstances("run-1", nil, &fakePublisher{})
	err := Consume(ctx, strings.NewReader(`{"event": "v2_runner_on_ok", "host": "web1"}`), plugin)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatchRunnerWithoutHost(t *testing.T) {
	plugin := NewPluginWithInstances("run-1", nil, &fakePublisher{})

	err := Dispatch(context.Background(), plugin, Event{Event: EventRunnerSkipped})
	require.Error(t, err)
	_, ok := plugin.Tracker().Report("")
	assert.False(t, ok)
}

func TestDispatchIgnoresUnknown(t *testing.T) {
	pub := &fakePublisher{}
	plugin := NewPluginWithInstances("run-1", nil, pub)

	require.NoError(t, Dispatch(context.Background(), plugin, Event{Event: "v2_on_any"}))
	assert.Empty(t, pub.events)
	assert.Empty(t, plugin.Tracker().Reports())
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"event": "v2_runner_on_ok", "host": "web1", "task": {"name": "t", "action": "shell", "args": {"_raw_params": "ls"}}, "result": {"changed": true, "stdout": "x"}, "ignore_errors": false}`))
	require.NoError(t, err)

	assert.Equal(t, EventRunnerOK, ev.Event)
	assert.Equal(t, "web1", ev.Host)
	assert.Equal(t, "shell", ev.Task.Action)
	assert.Equal(t, "ls", ev.Task.Args["_raw_params"])
	assert.True(t, ev.Result.Changed)
}

func TestNewPluginRunID(t *testing.T) {
	a, err := NewPlugin(context.Background(), emptyInventory{}, &fakePublisher{})
	require.NoError(t, err)
	b, err := NewPlugin(context.Background(), emptyInventory{}, &fakePublisher{})
	require.NoError(t, err)

	assert.Len(t, a.RunID(), 36)
	assert.NotEqual(t, a.RunID(), b.RunID())
}
