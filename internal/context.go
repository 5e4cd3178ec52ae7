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
	"encoding/binary"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/cadenzaproj/cadenza/api"
	"github.com/cadenzaproj/cadenza/api/serde"
)

// WorkflowContext is the per-instance object workflow code interacts with.
// Everything observable about the outside world goes through a protocol
// request, never the local clock or local entropy, so a replayed run sees
// exactly what the original run saw.
//
// One decision is "in motion" per instance at a time: a second concurrent
// context operation fails with ParallelOperation before it reaches the
// transport. This is the determinism guard, not a performance limit.
type WorkflowContext struct {
	conn         *Conn
	clientID     string
	contextID    int64
	workflowType string
	execution    api.WorkflowExecution
	codec        serde.BinarySerde
	logger       *slog.Logger

	// pendingOps must only ever be 0 or 1.
	pendingOps atomic.Int32
	replaying  atomic.Bool

	localMu         sync.Mutex
	nextLocalTypeID int64
	localActivities map[int64]ActivityFunc

	randMu sync.Mutex
	rng    *rand.Rand
}

func newWorkflowContext(conn *Conn, clientID string, contextID int64, workflowType string, e api.WorkflowExecution, replaying bool, codec serde.BinarySerde, logger *slog.Logger) *WorkflowContext {
	wc := &WorkflowContext{
		conn:            conn,
		clientID:        clientID,
		contextID:       contextID,
		workflowType:    workflowType,
		execution:       e,
		codec:           codec,
		logger:          defaultLogger(logger).With("workflow_type", workflowType, "context_id", contextID),
		localActivities: make(map[int64]ActivityFunc),
	}
	wc.replaying.Store(replaying)
	return wc
}

// ContextID returns the engine-assigned ID of this live instance.
func (wc *WorkflowContext) ContextID() int64 { return wc.contextID }

// Execution identifies the run this context belongs to.
func (wc *WorkflowContext) Execution() api.WorkflowExecution { return wc.execution }

// WorkflowType returns the registered type name.
func (wc *WorkflowContext) WorkflowType() string { return wc.workflowType }

// Logger returns the instance-scoped logger.
func (wc *WorkflowContext) Logger() *slog.Logger { return wc.logger }

// Serde returns the payload codec this instance converts arguments and
// results with.
func (wc *WorkflowContext) Serde() serde.BinarySerde { return wc.codec }

// IsReplaying reports whether the engine was replaying recorded history on
// the most recent reply. For logging and metrics only; workflow logic must
// not branch on it.
func (wc *WorkflowContext) IsReplaying() bool { return wc.replaying.Load() }

// beginOp claims the instance's single operation slot.
func (wc *WorkflowContext) beginOp() error {
	if wc.pendingOps.Add(1) > 1 {
		wc.pendingOps.Add(-1)
		return newKindError(api.ErrorParallelOperation, "workflow %q issued a second concurrent operation", wc.workflowType)
	}
	return nil
}

// endOp releases the slot. Runs unconditionally after beginOp succeeded.
func (wc *WorkflowContext) endOp() {
	wc.pendingOps.Add(-1)
}

// call issues one context-scoped protocol request under the single-flight
// guard and folds the reply's replay status into the instance flag.
func (wc *WorkflowContext) call(ctx context.Context, req *api.Message) (*api.Message, error) {
	if err := wc.beginOp(); err != nil {
		return nil, err
	}
	defer wc.endOp()

	reply, err := wc.conn.Call(ctx, req)
	if reply != nil {
		wc.noteReplay(reply)
	}
	return reply, err
}

func (wc *WorkflowContext) noteReplay(reply *api.Message) {
	switch reply.ReplayStatus() {
	case api.ReplayStatusReplaying:
		wc.replaying.Store(true)
	case api.ReplayStatusNotReplaying:
		wc.replaying.Store(false)
	}
}

// CurrentTime returns the execution's recorded current time. Workflow code
// never reads the system clock.
func (wc *WorkflowContext) CurrentTime(ctx context.Context) (time.Time, error) {
	reply, err := wc.call(ctx, api.NewWorkflowGetTime(wc.contextID).Message)
	if err != nil {
		return time.Time{}, err
	}
	return api.AsWorkflowGetTimeReply(reply).Time(), nil
}

// Sleep pauses the workflow for at least d. The engine may resume the
// workflow later than requested, never earlier.
func (wc *WorkflowContext) Sleep(ctx context.Context, d time.Duration) error {
	_, err := wc.call(ctx, api.NewWorkflowSleep(wc.contextID, d).Message)
	return err
}

// GetVersion introduces a versioned change point. The first execution
// through it records maxSupported under changeID; every replay returns the
// recorded version. The engine's answer is authoritative.
func (wc *WorkflowContext) GetVersion(ctx context.Context, changeID string, minSupported, maxSupported int32) (int32, error) {
	if minSupported > maxSupported {
		return 0, newKindError(api.ErrorBadRequest, "change %q: minSupported %d exceeds maxSupported %d", changeID, minSupported, maxSupported)
	}
	reply, err := wc.call(ctx, api.NewWorkflowGetVersion(wc.contextID, changeID, minSupported, maxSupported).Message)
	if err != nil {
		return 0, err
	}
	return api.AsWorkflowGetVersionReply(reply).Version(), nil
}

// safeValue runs fn, recovering panics into a nil value. A panic here must
// not fault the workflow: the original run and a replay could then diverge
// on whether the fault happened.
func (wc *WorkflowContext) safeValue(fn func() []byte) (value []byte) {
	defer func() {
		if r := recover(); r != nil {
			wc.logger.Warn("side effect function panicked, substituting nil", "panic", r)
			value = nil
		}
	}()
	return fn()
}

// SideEffect records a locally computed value in workflow history. fn runs
// on every call, replay included; its result is only proposed. The reply's
// value is authoritative: fresh on first execution, historical on replay.
func (wc *WorkflowContext) SideEffect(ctx context.Context, fn func() []byte) ([]byte, error) {
	value := wc.safeValue(fn)
	reply, err := wc.call(ctx, api.NewWorkflowSideEffect(wc.contextID, value).Message)
	if err != nil {
		return nil, err
	}
	return api.AsWorkflowSideEffect(reply).Value(), nil
}

// MutableSideEffect is SideEffect keyed by id, so independently updated
// values can coexist in one workflow.
func (wc *WorkflowContext) MutableSideEffect(ctx context.Context, id string, fn func() []byte) ([]byte, error) {
	value := wc.safeValue(fn)
	reply, err := wc.call(ctx, api.NewWorkflowMutableSideEffect(wc.contextID, id, value).Message)
	if err != nil {
		return nil, err
	}
	return api.AsWorkflowSideEffect(reply).Value(), nil
}

// NewGUID returns a UUID that is stable across replay.
func (wc *WorkflowContext) NewGUID(ctx context.Context) (uuid.UUID, error) {
	value, err := wc.SideEffect(ctx, func() []byte {
		u, err := uuid.NewV4()
		if err != nil {
			return nil
		}
		return u.Bytes()
	})
	if err != nil {
		return uuid.Nil, err
	}
	u, err := uuid.FromBytes(value)
	if err != nil {
		return uuid.Nil, newKindError(api.ErrorInternalService, "recorded GUID is not a UUID: %v", err)
	}
	return u, nil
}

// rand returns the instance generator, seeded lazily. The seed travels
// through a side effect so a replayed instance reproduces the original
// sequence.
func (wc *WorkflowContext) rand(ctx context.Context) (*rand.Rand, error) {
	wc.randMu.Lock()
	defer wc.randMu.Unlock()
	if wc.rng != nil {
		return wc.rng, nil
	}
	value, err := wc.SideEffect(ctx, func() []byte {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(time.Now().UnixNano()))
		return b[:]
	})
	if err != nil {
		return nil, err
	}
	var seed int64
	if len(value) >= 8 {
		seed = int64(binary.LittleEndian.Uint64(value))
	}
	wc.rng = rand.New(rand.NewSource(seed))
	return wc.rng, nil
}

// NextRandomInt returns the next value of the instance's deterministic
// generator, recorded in history.
func (wc *WorkflowContext) NextRandomInt(ctx context.Context) (int64, error) {
	rng, err := wc.rand(ctx)
	if err != nil {
		return 0, err
	}
	value, err := wc.SideEffect(ctx, func() []byte {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(rng.Int63()))
		return b[:]
	})
	if err != nil {
		return 0, err
	}
	if len(value) < 8 {
		return 0, newKindError(api.ErrorInternalService, "recorded random value is %d bytes, want 8", len(value))
	}
	return int64(binary.LittleEndian.Uint64(value)), nil
}

// NextRandomFloat64 returns the next [0,1) value of the instance's
// deterministic generator, recorded in history.
func (wc *WorkflowContext) NextRandomFloat64(ctx context.Context) (float64, error) {
	n, err := wc.NextRandomInt(ctx)
	if err != nil {
		return 0, err
	}
	// Same mapping math/rand uses for Float64 over 63 bits.
	return float64(n>>10) / (1 << 53), nil
}

// NextRandomBytes fills n bytes from the instance's deterministic generator,
// recorded in history.
func (wc *WorkflowContext) NextRandomBytes(ctx context.Context, n int) ([]byte, error) {
	rng, err := wc.rand(ctx)
	if err != nil {
		return nil, err
	}
	value, err := wc.SideEffect(ctx, func() []byte {
		b := make([]byte, n)
		rng.Read(b)
		return b
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// ExecuteActivity schedules a remote activity and waits for its result.
func (wc *WorkflowContext) ExecuteActivity(ctx context.Context, activityType string, opts api.ActivityOptions, args [][]byte) ([]byte, error) {
	reply, err := wc.call(ctx, api.NewActivityExecute(wc.contextID, activityType, opts, args).Message)
	if err != nil {
		return nil, err
	}
	return api.AsResultReply(reply).Result(), nil
}

// RegisterLocalActivityType assigns an instance-scoped monotonic ID to fn so
// the engine can route the invocation back to this instance.
func (wc *WorkflowContext) RegisterLocalActivityType(fn ActivityFunc) int64 {
	wc.localMu.Lock()
	defer wc.localMu.Unlock()
	wc.nextLocalTypeID++
	id := wc.nextLocalTypeID
	wc.localActivities[id] = fn
	return id
}

// RemoveLocalActivityType releases an ID. Long-lived instances would leak
// the table otherwise.
func (wc *WorkflowContext) RemoveLocalActivityType(id int64) {
	wc.localMu.Lock()
	defer wc.localMu.Unlock()
	delete(wc.localActivities, id)
}

func (wc *WorkflowContext) lookupLocalActivity(id int64) (ActivityFunc, bool) {
	wc.localMu.Lock()
	defer wc.localMu.Unlock()
	fn, ok := wc.localActivities[id]
	return fn, ok
}

// ExecuteLocalActivity runs fn in-process, routed through the engine so the
// invocation lands in history. The type registration lives exactly as long
// as the call.
func (wc *WorkflowContext) ExecuteLocalActivity(ctx context.Context, fn ActivityFunc, args [][]byte) ([]byte, error) {
	id := wc.RegisterLocalActivityType(fn)
	defer wc.RemoveLocalActivityType(id)

	reply, err := wc.call(ctx, api.NewActivityExecuteLocal(wc.contextID, id, args).Message)
	if err != nil {
		return nil, err
	}
	return api.AsResultReply(reply).Result(), nil
}

// signalSubscribe declares to the engine that this instance handles the
// named signal. Called once per declared signal before the entry method
// runs.
func (wc *WorkflowContext) signalSubscribe(ctx context.Context, signalName string) error {
	_, err := wc.call(ctx, api.NewWorkflowSignalSubscribe(wc.contextID, signalName).Message)
	return err
}
