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
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/cadenzaproj/cadenza/api"
)

// Canonical handler shapes. Registration-time wrapping converts user-typed
// functions into these; dispatch never reflects.
type (
	// EntryFunc is a workflow's entry method over serialized args/result.
	EntryFunc func(ctx context.Context, wc *WorkflowContext, args [][]byte) ([]byte, error)

	// SignalFunc handles one named signal delivery.
	SignalFunc func(ctx context.Context, wc *WorkflowContext, payload []byte) error

	// QueryFunc answers one named synchronous query. It must not mutate
	// workflow state.
	QueryFunc func(ctx context.Context, wc *WorkflowContext, arg []byte) ([]byte, error)

	// ActivityFunc is an activity implementation over serialized
	// args/result.
	ActivityFunc func(ctx context.Context, args [][]byte) ([]byte, error)
)

// WorkflowRegistration binds a workflow type name to its entry method and
// its named signal and query handlers.
type WorkflowRegistration struct {
	Name    string
	Entry   EntryFunc
	Signals map[string]SignalFunc
	Queries map[string]QueryFunc

	// signalNames kept in sorted-insertion order for deterministic
	// subscription.
	signalNames []string
	fingerprint uintptr
}

// SignalNames returns the declared signal names in deterministic order.
func (r *WorkflowRegistration) SignalNames() []string {
	return r.signalNames
}

type activityRegistration struct {
	name        string
	fn          ActivityFunc
	fingerprint uintptr
}

// Registry is the process-wide table of workflow and activity type
// registrations, keyed by client scope and type name. Lock scope is map
// mutation only.
type Registry struct {
	mu         sync.RWMutex
	workflows  map[string]*WorkflowRegistration
	activities map[string]*activityRegistration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workflows:  make(map[string]*WorkflowRegistration),
		activities: make(map[string]*activityRegistration),
	}
}

func registrationKey(clientID, typeName string) string {
	return clientID + "::" + typeName
}

// funcFingerprint derives a comparable identity for a handler
// implementation. It must be taken from the application's original function:
// closures produced by one wrap call site all share a code pointer, so a
// wrapped handler cannot identify the implementation behind it.
func funcFingerprint(fn any) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}

// RegisterWorkflow binds reg under the client scope. Re-registering the same
// implementation under the same name is a no-op; a different implementation
// under an existing name is a conflict. Callers that wrap user functions
// must set the fingerprint from the unwrapped entry; it is derived from
// reg.Entry only when left zero.
func (r *Registry) RegisterWorkflow(clientID string, reg WorkflowRegistration) error {
	if reg.Name == "" {
		return newKindError(api.ErrorBadRequest, "workflow registration requires a type name")
	}
	if reg.Entry == nil {
		return newKindError(api.ErrorBadRequest, "workflow %q registration requires an entry method", reg.Name)
	}
	if reg.fingerprint == 0 {
		reg.fingerprint = funcFingerprint(reg.Entry)
	}
	reg.signalNames = sortedNames(reg.Signals)

	key := registrationKey(clientID, reg.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.workflows[key]; ok {
		if existing.fingerprint == reg.fingerprint {
			return nil
		}
		return newKindError(api.ErrorAlreadyExists, "workflow type %q is already registered with a different implementation", reg.Name)
	}
	r.workflows[key] = &reg
	return nil
}

// LookupWorkflow resolves a workflow type within the client scope.
func (r *Registry) LookupWorkflow(clientID, typeName string) (*WorkflowRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.workflows[registrationKey(clientID, typeName)]
	return reg, ok
}

// RegisterActivity binds an activity implementation under the client scope,
// with the same idempotence and conflict semantics as workflows. fingerprint
// identifies the original implementation; pass zero to derive it from fn
// when fn is not a wrapper.
func (r *Registry) RegisterActivity(clientID, typeName string, fn ActivityFunc, fingerprint uintptr) error {
	if typeName == "" {
		return newKindError(api.ErrorBadRequest, "activity registration requires a type name")
	}
	if fn == nil {
		return newKindError(api.ErrorBadRequest, "activity %q registration requires an implementation", typeName)
	}
	fp := fingerprint
	if fp == 0 {
		fp = funcFingerprint(fn)
	}

	key := registrationKey(clientID, typeName)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.activities[key]; ok {
		if existing.fingerprint == fp {
			return nil
		}
		return newKindError(api.ErrorAlreadyExists, "activity type %q is already registered with a different implementation", typeName)
	}
	r.activities[key] = &activityRegistration{name: typeName, fn: fn, fingerprint: fp}
	return nil
}

// LookupActivity resolves an activity type within the client scope.
func (r *Registry) LookupActivity(clientID, typeName string) (ActivityFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.activities[registrationKey(clientID, typeName)]
	if !ok {
		return nil, false
	}
	return reg.fn, true
}

// UnregisterClient removes every binding in the client scope.
func (r *Registry) UnregisterClient(clientID string) {
	prefix := clientID + "::"
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.workflows {
		if strings.HasPrefix(key, prefix) {
			delete(r.workflows, key)
		}
	}
	for key := range r.activities {
		if strings.HasPrefix(key, prefix) {
			delete(r.activities, key)
		}
	}
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
