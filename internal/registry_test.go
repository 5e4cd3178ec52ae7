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
	"testing"
)

func noopEntry(ctx context.Context, wc *WorkflowContext, args [][]byte) ([]byte, error) {
	return nil, nil
}

func otherEntry(ctx context.Context, wc *WorkflowContext, args [][]byte) ([]byte, error) {
	return []byte("other"), nil
}

func noopActivity(ctx context.Context, args [][]byte) ([]byte, error) {
	return nil, nil
}

func otherActivity(ctx context.Context, args [][]byte) ([]byte, error) {
	return []byte("other"), nil
}

func TestRegisterWorkflowIdempotence(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterWorkflow("c1", WorkflowRegistration{Name: "order", Entry: noopEntry}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.RegisterWorkflow("c1", WorkflowRegistration{Name: "order", Entry: noopEntry}); err != nil {
		t.Fatalf("re-register same implementation: %v", err)
	}

	err := r.RegisterWorkflow("c1", WorkflowRegistration{Name: "order", Entry: otherEntry})
	if err == nil {
		t.Fatal("re-register with different implementation succeeded, want conflict")
	}
	if code := errorCode(err); code != CodeAlreadyExists {
		t.Errorf("conflict error code = %q, want %q", code, CodeAlreadyExists)
	}
}

func TestRegisterWorkflowValidation(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name string
		reg  WorkflowRegistration
	}{
		{name: "missing type name", reg: WorkflowRegistration{Entry: noopEntry}},
		{name: "missing entry", reg: WorkflowRegistration{Name: "order"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.RegisterWorkflow("c1", tt.reg)
			if err == nil {
				t.Fatal("register succeeded, want error")
			}
			if code := errorCode(err); code != CodeBadRequest {
				t.Errorf("error code = %q, want %q", code, CodeBadRequest)
			}
		})
	}
}

func TestLookupWorkflowScoping(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterWorkflow("c1", WorkflowRegistration{Name: "order", Entry: noopEntry}); err != nil {
		t.Fatal(err)
	}

	if _, ok := r.LookupWorkflow("c1", "order"); !ok {
		t.Error("lookup in owning scope failed")
	}
	if _, ok := r.LookupWorkflow("c2", "order"); ok {
		t.Error("lookup leaked across client scopes")
	}
	if _, ok := r.LookupWorkflow("c1", "payment"); ok {
		t.Error("lookup found unregistered type")
	}
}

func TestSignalNamesDeterministic(t *testing.T) {
	r := NewRegistry()
	reg := WorkflowRegistration{
		Name:  "order",
		Entry: noopEntry,
		Signals: map[string]SignalFunc{
			"zulu":  func(ctx context.Context, wc *WorkflowContext, p []byte) error { return nil },
			"alpha": func(ctx context.Context, wc *WorkflowContext, p []byte) error { return nil },
			"mike":  func(ctx context.Context, wc *WorkflowContext, p []byte) error { return nil },
		},
	}
	if err := r.RegisterWorkflow("c1", reg); err != nil {
		t.Fatal(err)
	}

	got, _ := r.LookupWorkflow("c1", "order")
	want := []string{"alpha", "mike", "zulu"}
	names := got.SignalNames()
	if len(names) != len(want) {
		t.Fatalf("SignalNames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("SignalNames() = %v, want %v", names, want)
		}
	}
}

func TestRegisterActivityConflict(t *testing.T) {
	r := NewRegistry()

	if err := r.RegisterActivity("c1", "charge", noopActivity, 0); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.RegisterActivity("c1", "charge", noopActivity, 0); err != nil {
		t.Fatalf("re-register same implementation: %v", err)
	}
	if err := r.RegisterActivity("c1", "charge", otherActivity, 0); err == nil {
		t.Fatal("re-register with different implementation succeeded, want conflict")
	}

	if _, ok := r.LookupActivity("c1", "charge"); !ok {
		t.Error("lookup failed after register")
	}
}

func TestUnregisterClient(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterWorkflow("c1", WorkflowRegistration{Name: "order", Entry: noopEntry}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterWorkflow("c2", WorkflowRegistration{Name: "order", Entry: noopEntry}); err != nil {
		t.Fatal(err)
	}
	if err := r.RegisterActivity("c1", "charge", noopActivity, 0); err != nil {
		t.Fatal(err)
	}

	r.UnregisterClient("c1")

	if _, ok := r.LookupWorkflow("c1", "order"); ok {
		t.Error("c1 workflow survived unregister")
	}
	if _, ok := r.LookupActivity("c1", "charge"); ok {
		t.Error("c1 activity survived unregister")
	}
	if _, ok := r.LookupWorkflow("c2", "order"); !ok {
		t.Error("unregister of c1 removed c2's workflow")
	}
}
