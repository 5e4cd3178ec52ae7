// Copyright 2026 The Cadenza Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// WorkerOptions configure a Worker.
type WorkerOptions struct {
	Logger *slog.Logger
}

// Worker hosts registered workflow and activity code for a client scope and
// blocks serving proxy-originated invocations. Registration must finish
// before Run.
type Worker struct {
	client  *Client
	logger  *slog.Logger
	started atomic.Bool
}

// NewWorker builds a worker over an assembled client.
func NewWorker(c *Client, opts *WorkerOptions) (*Worker, error) {
	if c == nil {
		return nil, fmt.Errorf("cadenza: worker requires a client")
	}
	if opts == nil {
		opts = &WorkerOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = c.logger
	}
	return &Worker{client: c, logger: defaultLogger(logger)}, nil
}

// RegisterWorkflow binds a workflow definition to this worker's client
// scope.
func (w *Worker) RegisterWorkflow(def WorkflowDefinition) error {
	if w.started.Load() {
		return fmt.Errorf("cadenza: cannot register workflow %q after the worker started", def.Name)
	}
	return w.client.RegisterWorkflow(def)
}

// RegisterActivity binds an activity implementation to this worker's client
// scope.
func (w *Worker) RegisterActivity(name string, fn any) error {
	if w.started.Load() {
		return fmt.Errorf("cadenza: cannot register activity %q after the worker started", name)
	}
	return w.client.RegisterActivity(name, fn)
}

// Run serves until ctx is cancelled or the connection fails. When the client
// was built with NewClient (loops not yet running), Run drives them; a
// dialed client's loops are already running and Run just blocks on ctx.
func (w *Worker) Run(ctx context.Context) error {
	w.started.Store(true)
	w.logger.Info("worker started", "client_id", w.client.ClientID())
	defer w.logger.Info("worker stopped", "client_id", w.client.ClientID())

	if w.client.cancel != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-w.client.runErr:
			return err
		}
	}
	return w.client.Run(ctx)
}
