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
	"sync"

	"github.com/cadenzaproj/cadenza/api"
	"github.com/cadenzaproj/cadenza/api/serde"
)

type instanceKey struct {
	clientID  string
	contextID int64
}

// liveInstance pairs a running context with the registration that produced
// it, so signal and query handlers can be resolved after Invoke.
type liveInstance struct {
	wc  *WorkflowContext
	reg *WorkflowRegistration
}

// Dispatcher routes proxy-originated requests to registered workflow code.
// The live-instance table is mutated under its lock; handlers always run
// outside it.
type Dispatcher struct {
	conn     *Conn
	registry *Registry
	codec    serde.BinarySerde
	logger   *slog.Logger

	mu        sync.Mutex
	instances map[instanceKey]*liveInstance
}

// NewDispatcher builds a dispatcher over the registry. Conn is installed
// later via Bind because the two reference each other.
func NewDispatcher(registry *Registry, codec serde.BinarySerde, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		codec:     codec,
		logger:    defaultLogger(logger),
		instances: make(map[instanceKey]*liveInstance),
	}
}

// Bind attaches the connection workflow contexts issue their calls on.
func (d *Dispatcher) Bind(conn *Conn) {
	d.conn = conn
}

// LiveInstances returns the number of currently running workflow instances.
func (d *Dispatcher) LiveInstances() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.instances)
}

// HandleRequest implements InboundHandler.
func (d *Dispatcher) HandleRequest(ctx context.Context, req *api.Message) *api.Message {
	switch req.Type {
	case api.WorkflowInvokeRequest:
		return d.invokeWorkflow(ctx, req)
	case api.WorkflowSignalInvokeRequest:
		return d.invokeSignal(ctx, req)
	case api.WorkflowQueryInvokeRequest:
		return d.invokeQuery(ctx, req)
	case api.ActivityInvokeLocalRequest:
		return d.invokeLocalActivity(ctx, req)
	default:
		d.logger.Error("unexpected inbound request type", "type", req.Type.String())
		return req.NewErrorReply(api.NewError(api.ErrorBadRequest, "unexpected inbound request type %s", req.Type))
	}
}

// invokeWorkflow runs one workflow execution end to end: instantiate,
// subscribe declared signals, run the entry method, translate the outcome.
// The live-instance entry is removed exactly once, whatever the outcome.
func (d *Dispatcher) invokeWorkflow(ctx context.Context, req *api.Message) *api.Message {
	v := api.AsWorkflowInvoke(req)
	clientID := req.ClientID()

	reg, ok := d.registry.LookupWorkflow(clientID, v.WorkflowType())
	if !ok {
		return req.NewErrorReply(api.NewError(api.ErrorEntityNotExists, "workflow type %q is not registered", v.WorkflowType()))
	}

	key := instanceKey{clientID: clientID, contextID: v.ContextID()}
	replaying := req.ReplayStatus() == api.ReplayStatusReplaying
	wc := newWorkflowContext(d.conn, clientID, v.ContextID(), v.WorkflowType(), v.Execution(), replaying, d.codec, d.logger)

	d.mu.Lock()
	if _, exists := d.instances[key]; exists {
		d.mu.Unlock()
		return req.NewErrorReply(api.NewError(api.ErrorAlreadyExists, "context %d is already running", v.ContextID()))
	}
	d.instances[key] = &liveInstance{wc: wc, reg: reg}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.instances, key)
		d.mu.Unlock()
	}()

	for _, name := range reg.SignalNames() {
		if err := wc.signalSubscribe(ctx, name); err != nil {
			return req.NewErrorReply(toWireError(fmt.Errorf("subscribe signal %q: %w", name, err)))
		}
	}

	result, err := d.runEntry(ctx, reg, wc, v.Args())

	reply := req.NewReply()
	rv := api.AsWorkflowInvokeReply(reply)
	switch {
	case err == nil:
		rv.SetResult(result)
	default:
		if can, ok := AsContinueAsNew(err); ok {
			rv.SetContinueAsNew(can.Args, can.Options)
			break
		}
		reply.SetError(toWireError(err))
	}
	return reply
}

// runEntry invokes the entry method with panic containment: a panicking
// workflow faults its own execution, never the worker.
func (d *Dispatcher) runEntry(ctx context.Context, reg *WorkflowRegistration, wc *WorkflowContext, args [][]byte) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("workflow entry panicked", "workflow_type", reg.Name, "panic", r)
			err = newKindError(api.ErrorInternalService, "workflow %q panicked: %v", reg.Name, r)
		}
	}()
	return reg.Entry(ctx, wc, args)
}

// invokeSignal delivers a signal to a live instance. Signals legitimately
// race ahead of the Invoke that creates the context, so an unknown context
// is a successful no-op, not an error.
func (d *Dispatcher) invokeSignal(ctx context.Context, req *api.Message) *api.Message {
	v := api.AsWorkflowSignalInvoke(req)
	key := instanceKey{clientID: req.ClientID(), contextID: v.ContextID()}

	d.mu.Lock()
	inst, ok := d.instances[key]
	d.mu.Unlock()
	if !ok {
		d.logger.Debug("signal for unknown context ignored", "context_id", v.ContextID(), "signal", v.SignalName())
		return req.NewReply()
	}

	handler, ok := inst.reg.Signals[v.SignalName()]
	if !ok {
		return req.NewErrorReply(api.NewError(api.ErrorEntityNotExists, "workflow %q handles no signal named %q", inst.reg.Name, v.SignalName()))
	}

	if err := d.runSignal(ctx, handler, inst, v); err != nil {
		return req.NewErrorReply(toWireError(err))
	}
	return req.NewReply()
}

func (d *Dispatcher) runSignal(ctx context.Context, handler SignalFunc, inst *liveInstance, v api.WorkflowSignalInvoke) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newKindError(api.ErrorInternalService, "signal %q handler panicked: %v", v.SignalName(), r)
		}
	}()
	return handler(ctx, inst.wc, v.Payload())
}

// invokeQuery answers a synchronous query against a live instance. Unlike
// signals, querying a context that is not live is an error.
func (d *Dispatcher) invokeQuery(ctx context.Context, req *api.Message) *api.Message {
	v := api.AsWorkflowQueryInvoke(req)
	key := instanceKey{clientID: req.ClientID(), contextID: v.ContextID()}

	d.mu.Lock()
	inst, ok := d.instances[key]
	d.mu.Unlock()
	if !ok {
		return req.NewErrorReply(api.NewError(api.ErrorEntityNotExists, "no live context %d", v.ContextID()))
	}

	handler, ok := inst.reg.Queries[v.QueryName()]
	if !ok {
		return req.NewErrorReply(api.NewError(api.ErrorEntityNotExists, "workflow %q handles no query named %q", inst.reg.Name, v.QueryName()))
	}

	result, err := d.runQuery(ctx, handler, inst, v)
	if err != nil {
		return req.NewErrorReply(toWireError(err))
	}
	reply := req.NewReply()
	api.AsResultReply(reply).SetResult(result)
	return reply
}

func (d *Dispatcher) runQuery(ctx context.Context, handler QueryFunc, inst *liveInstance, v api.WorkflowQueryInvoke) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newKindError(api.ErrorInternalService, "query %q handler panicked: %v", v.QueryName(), r)
		}
	}()
	return handler(ctx, inst.wc, v.Arg())
}

// invokeLocalActivity runs a locally registered activity type inside its
// owning instance, synchronously.
func (d *Dispatcher) invokeLocalActivity(ctx context.Context, req *api.Message) *api.Message {
	v := api.AsActivityInvokeLocal(req)
	key := instanceKey{clientID: req.ClientID(), contextID: v.ContextID()}

	d.mu.Lock()
	inst, ok := d.instances[key]
	d.mu.Unlock()
	if !ok {
		return req.NewErrorReply(api.NewError(api.ErrorEntityNotExists, "no live context %d", v.ContextID()))
	}

	fn, ok := inst.wc.lookupLocalActivity(v.ActivityTypeID())
	if !ok {
		return req.NewErrorReply(api.NewError(api.ErrorEntityNotExists, "context %d has no local activity type %d", v.ContextID(), v.ActivityTypeID()))
	}

	result, err := d.runActivity(ctx, fn, v)
	if err != nil {
		return req.NewErrorReply(toWireError(err))
	}
	reply := req.NewReply()
	api.AsResultReply(reply).SetResult(result)
	return reply
}

func (d *Dispatcher) runActivity(ctx context.Context, fn ActivityFunc, v api.ActivityInvokeLocal) (result []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newKindError(api.ErrorInternalService, "local activity %d panicked: %v", v.ActivityTypeID(), r)
		}
	}()
	return fn(ctx, v.Args())
}
