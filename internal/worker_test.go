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
	"errors"
	"testing"
	"time"

	"github.com/cadenzaproj/cadenza/api"
)

func TestNewWorkerRequiresClient(t *testing.T) {
	if _, err := NewWorker(nil, nil); err == nil {
		t.Error("NewWorker(nil) succeeded")
	}
}

func TestWorkerRunDrivesAssembledClient(t *testing.T) {
	local, peer := NewPipeChannel()
	startScriptedEngine(t, peer, func(req *api.Message) *api.Message {
		return req.NewReply()
	})

	c, err := NewClient(ClientOptions{Channel: local})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	w, err := NewWorker(c, nil)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The worker owns the loops here, so the connection must be answering
	// calls while Run blocks.
	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()
	if _, err := c.Conn().Call(callCtx, api.NewHeartbeat().Message); err != nil {
		t.Fatalf("Call while worker running: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want nil or context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestWorkerRunReturnsWhenDialedConnectionDies(t *testing.T) {
	local, peer := NewPipeChannel()
	startScriptedEngine(t, peer, func(req *api.Message) *api.Message {
		return req.NewReply()
	})

	c, err := Dial(context.Background(), ClientOptions{Channel: local})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	w, err := NewWorker(c, nil)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	local.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Run returned nil after the channel closed under it")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not observe the dead connection")
	}
}
