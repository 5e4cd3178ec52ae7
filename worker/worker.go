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

// Package worker hosts registered workflow and activity code and serves
// engine-originated invocations until stopped.
package worker

import "github.com/cadenzaproj/cadenza/internal"

// Worker serves workflow invokes, signals, queries, and local activity calls
// arriving over a client's connection.
//
// Register everything before Run; registration after the worker starts is an
// error. Run blocks until the context is cancelled or the connection becomes
// unhealthy.
//
// Example:
//
//	w, err := worker.New(c, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.RegisterWorkflow(client.WorkflowDefinition{
//		Name:  "order-fulfillment",
//		Entry: OrderWorkflow,
//		Signals: map[string]any{
//			"cancel-order": OnCancelOrder,
//		},
//	}); err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
type Worker = internal.Worker

// Options contains configuration for creating a new Worker.
type Options = internal.WorkerOptions

// New creates a worker bound to the client's connection and registry.
func New(c *internal.Client, options *Options) (*Worker, error) {
	return internal.NewWorker(c, options)
}
