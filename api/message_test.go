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

package api

import (
	"errors"
	"testing"
)

func TestNewReplyEchoesCorrelation(t *testing.T) {
	req := NewMessage(WorkflowQueryRequest)
	req.SetRequestID(42)
	req.SetClientID("client-abc")

	reply := req.NewReply()
	if reply.Type != WorkflowQueryReply {
		t.Errorf("reply type: got %v, want %v", reply.Type, WorkflowQueryReply)
	}
	if reply.RequestID() != 42 {
		t.Errorf("reply request ID: got %d, want 42", reply.RequestID())
	}
	if reply.ClientID() != "client-abc" {
		t.Errorf("reply client ID: got %q", reply.ClientID())
	}
	if reply.Error() != nil {
		t.Error("fresh reply should carry no error")
	}
}

func TestErrorReplyRoundTrip(t *testing.T) {
	req := NewMessage(WorkflowExecuteRequest)
	req.SetRequestID(7)

	reply := req.NewErrorReply(NewError(ErrorEntityNotExists, "workflow %q not found", "w-1"))
	data, err := Encode(reply)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	we := got.Error()
	if we == nil {
		t.Fatal("decoded reply lost its error")
	}
	if we.Kind != ErrorEntityNotExists {
		t.Errorf("kind: got %v", we.Kind)
	}
	if we.Message != `workflow "w-1" not found` {
		t.Errorf("message: got %q", we.Message)
	}
	if !IsKind(we, ErrorEntityNotExists) {
		t.Error("IsKind should match")
	}
	if !errors.Is(we, &Error{Kind: ErrorEntityNotExists}) {
		t.Error("errors.Is by kind should match")
	}
	if errors.Is(we, &Error{Kind: ErrorTimeout}) {
		t.Error("errors.Is should not match a different kind")
	}
}

func TestSetErrorNilClears(t *testing.T) {
	m := NewMessage(WorkflowExecuteReply)
	m.SetError(NewError(ErrorInternalService, "boom"))
	m.SetError(nil)
	if m.Error() != nil {
		t.Error("SetError(nil) should clear the error property")
	}
}

func TestReplayStatusProperty(t *testing.T) {
	m := NewMessage(WorkflowSleepReply)
	if m.ReplayStatus() != ReplayStatusUnspecified {
		t.Error("absent replay status should be Unspecified")
	}
	m.SetReplayStatus(ReplayStatusReplaying)
	if m.ReplayStatus() != ReplayStatusReplaying {
		t.Errorf("replay status: got %v", m.ReplayStatus())
	}
}
