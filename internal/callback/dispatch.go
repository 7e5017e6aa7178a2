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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	apperrors "ansible-aws/pkg/errors"
)

// maxLineSize bounds a single lifecycle line; play properties and task
// args can be large.
const maxLineSize = 4 * 1024 * 1024

// Handler receives the lifecycle callbacks of a run in order
type Handler interface {
	PlayStart(ctx context.Context, play Play) error
	RunnerOK(ctx context.Context, res RunnerResult) error
	RunnerFailed(ctx context.Context, res RunnerResult, ignoreErrors bool) error
	RunnerSkipped(ctx context.Context, res RunnerResult) error
	RunnerUnreachable(ctx context.Context, res RunnerResult) error
	Stats(ctx context.Context, stats map[string]any) error
}

// Dispatch routes ev to the matching Handler method. Unknown events are
// ignored.
func Dispatch(ctx context.Context, h Handler, ev Event) error {
	switch ev.Event {
	case EventPlayStart:
		return h.PlayStart(ctx, ev.Play)
	case EventStats:
		return h.Stats(ctx, ev.Stats)
	case EventRunnerOK, EventRunnerFailed, EventRunnerSkipped, EventRunnerUnreachable:
		if ev.Host == "" {
			return apperrors.NewValidationError("host", "runner event without host")
		}
	default:
		log.WithField("event", ev.Event).Debug("ignoring lifecycle event")
		return nil
	}

	res := ev.RunnerResult()
	switch ev.Event {
	case EventRunnerOK:
		return h.RunnerOK(ctx, res)
	case EventRunnerFailed:
		return h.RunnerFailed(ctx, res, ev.IgnoreErrors)
	case EventRunnerSkipped:
		return h.RunnerSkipped(ctx, res)
	default:
		return h.RunnerUnreachable(ctx, res)
	}
}

// Consume reads a JSON Lines lifecycle stream and dispatches every event
func Consume(ctx context.Context, r io.Reader, h Handler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		ev, err := DecodeEvent(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := Dispatch(ctx, h, ev); err != nil {
			return fmt.Errorf("line %d: %s: %w", lineNo, ev.Event, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read lifecycle stream: %w", err)
	}
	return nil
}
