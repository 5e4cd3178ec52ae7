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
	"time"

	"github.com/cadenzaproj/cadenza/api"
)

// newTestConn wires a conn to one end of a pipe and runs its receive loop.
// handle plays the proxy on the far end; returning nil swallows the request.
func newTestConn(t *testing.T, cfg ConnConfig, handle func(req *api.Message) *api.Message) (*Conn, Channel) {
	t.Helper()

	local, peer := NewPipeChannel()
	cfg.Channel = local
	conn, err := NewConn(cfg)
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(func() { conn.Close() })
	go conn.Serve(ctx)

	if handle != nil {
		go func() {
			for {
				frame, err := peer.Recv(ctx)
				if err != nil {
					return
				}
				req, err := api.Decode(frame)
				if err != nil {
					return
				}
				reply := handle(req)
				if reply == nil {
					continue
				}
				out, err := api.Encode(reply)
				if err != nil {
					return
				}
				if peer.Send(ctx, out) != nil {
					return
				}
			}
		}()
	}
	return conn, peer
}

func TestCallRoundTrip(t *testing.T) {
	conn, _ := newTestConn(t, ConnConfig{}, func(req *api.Message) *api.Message {
		return req.NewReply()
	})

	req := api.NewHeartbeat()
	reply, err := conn.Call(context.Background(), req.Message)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if reply.Type != api.HeartbeatReply {
		t.Errorf("reply type = %v, want %v", reply.Type, api.HeartbeatReply)
	}
	if reply.RequestID() != req.RequestID() {
		t.Errorf("reply request ID = %d, want %d", reply.RequestID(), req.RequestID())
	}
}

func TestCallCorrelatesOutOfOrderReplies(t *testing.T) {
	requests := make(chan *api.Message, 2)
	conn, peer := newTestConn(t, ConnConfig{}, func(req *api.Message) *api.Message {
		requests <- req
		return nil
	})

	// Answer both requests in reverse arrival order.
	go func() {
		first := <-requests
		second := <-requests
		for _, req := range []*api.Message{second, first} {
			out, err := api.Encode(req.NewReply())
			if err != nil {
				return
			}
			if peer.Send(context.Background(), out) != nil {
				return
			}
		}
	}()

	errs := make(chan error, 2)
	ids := make(chan [2]int64, 2)
	for range 2 {
		go func() {
			req := api.NewHeartbeat()
			reply, err := conn.Call(context.Background(), req.Message)
			if err != nil {
				errs <- err
				return
			}
			ids <- [2]int64{req.RequestID(), reply.RequestID()}
			errs <- nil
		}()
	}
	for range 2 {
		if err := <-errs; err != nil {
			t.Fatalf("Call: %v", err)
		}
	}
	for range 2 {
		pair := <-ids
		if pair[0] != pair[1] {
			t.Errorf("call for request %d received reply %d", pair[0], pair[1])
		}
	}
}

func TestCallTimesOut(t *testing.T) {
	conn, _ := newTestConn(t, ConnConfig{}, func(req *api.Message) *api.Message {
		return nil
	})

	req := api.NewHeartbeat()
	req.SetTimeout(30 * time.Millisecond)
	_, err := conn.Call(context.Background(), req.Message)
	if err == nil {
		t.Fatal("Call succeeded, want timeout")
	}
	if code := errorCode(err); code != CodeTimeout {
		t.Errorf("error code = %q, want %q", code, CodeTimeout)
	}
}

func TestCallHonorsContextCancellation(t *testing.T) {
	conn, _ := newTestConn(t, ConnConfig{}, func(req *api.Message) *api.Message {
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := conn.Call(ctx, api.NewHeartbeat().Message)
	if err == nil {
		t.Fatal("Call succeeded, want cancellation")
	}
	if code := errorCode(err); code != CodeCancelled {
		t.Errorf("error code = %q, want %q", code, CodeCancelled)
	}
}

func TestCallLiftsWireError(t *testing.T) {
	conn, _ := newTestConn(t, ConnConfig{}, func(req *api.Message) *api.Message {
		return req.NewErrorReply(api.NewError(api.ErrorEntityNotExists, "no such workflow"))
	})

	reply, err := conn.Call(context.Background(), api.NewHeartbeat().Message)
	if err == nil {
		t.Fatal("Call succeeded, want structured error")
	}
	if code := errorCode(err); code != CodeEntityNotExists {
		t.Errorf("error code = %q, want %q", code, CodeEntityNotExists)
	}
	if reply == nil {
		t.Error("reply dropped, want it returned alongside the error")
	}
}

func TestCancelRequest(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "target still pending", want: true},
		{name: "target already completed", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, _ := newTestConn(t, ConnConfig{}, func(req *api.Message) *api.Message {
				reply := req.NewReply()
				api.AsCancelReply(reply).SetWasCancelled(tt.want)
				return reply
			})

			got, err := conn.CancelRequest(context.Background(), 42)
			if err != nil {
				t.Fatalf("CancelRequest: %v", err)
			}
			if got != tt.want {
				t.Errorf("CancelRequest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkUnhealthyFailsPendingAndNewCalls(t *testing.T) {
	conn, _ := newTestConn(t, ConnConfig{}, func(req *api.Message) *api.Message {
		return nil
	})

	pending := make(chan error, 1)
	go func() {
		_, err := conn.Call(context.Background(), api.NewHeartbeat().Message)
		pending <- err
	}()
	time.Sleep(10 * time.Millisecond)

	conn.MarkUnhealthy("test")

	select {
	case err := <-pending:
		if code := errorCode(err); code != CodeConnectionUnhealthy {
			t.Errorf("pending call error code = %q, want %q", code, CodeConnectionUnhealthy)
		}
	case <-time.After(time.Second):
		t.Fatal("pending call did not resolve after MarkUnhealthy")
	}

	start := time.Now()
	_, err := conn.Call(context.Background(), api.NewHeartbeat().Message)
	if err == nil {
		t.Fatal("new call succeeded on unhealthy connection")
	}
	if code := errorCode(err); code != CodeConnectionUnhealthy {
		t.Errorf("new call error code = %q, want %q", code, CodeConnectionUnhealthy)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("new call took %v, want fast failure", elapsed)
	}
	if conn.Healthy() {
		t.Error("Healthy() = true after MarkUnhealthy")
	}
}

func TestHeartbeatLossMarksUnhealthy(t *testing.T) {
	conn, _ := newTestConn(t, ConnConfig{HeartbeatInterval: 10 * time.Millisecond}, func(req *api.Message) *api.Message {
		return nil
	})

	err := conn.RunHeartbeats(context.Background())
	if err == nil {
		t.Fatal("RunHeartbeats returned nil, want unhealthy error")
	}
	if code := errorCode(err); code != CodeConnectionUnhealthy {
		t.Errorf("error code = %q, want %q", code, CodeConnectionUnhealthy)
	}
	if conn.Healthy() {
		t.Error("connection still healthy after repeated heartbeat loss")
	}
}

func TestServeTreatsMalformedFrameAsFatal(t *testing.T) {
	local, peer := NewPipeChannel()
	conn, err := NewConn(ConnConfig{Channel: local})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}

	served := make(chan error, 1)
	go func() { served <- conn.Serve(context.Background()) }()

	if err := peer.Send(context.Background(), []byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case err := <-served:
		if err == nil {
			t.Fatal("Serve returned nil after malformed frame")
		}
	case <-time.After(time.Second):
		t.Fatal("Serve kept running after malformed frame")
	}
	if conn.Healthy() {
		t.Error("connection still healthy after malformed frame")
	}
}

type replyHandler struct{}

func (replyHandler) HandleRequest(ctx context.Context, req *api.Message) *api.Message {
	return req.NewReply()
}

func TestServeDispatchesInboundRequests(t *testing.T) {
	local, peer := NewPipeChannel()
	conn, err := NewConn(ConnConfig{Channel: local, Handler: replyHandler{}})
	if err != nil {
		t.Fatalf("NewConn: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go conn.Serve(ctx)

	req := api.NewHeartbeat()
	req.SetRequestID(7)
	frame, err := api.Encode(req.Message)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := peer.Send(ctx, frame); err != nil {
		t.Fatalf("Send: %v", err)
	}

	recvCtx, recvCancel := context.WithTimeout(ctx, time.Second)
	defer recvCancel()
	out, err := peer.Recv(recvCtx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	reply, err := api.Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if reply.Type != api.HeartbeatReply {
		t.Errorf("reply type = %v, want %v", reply.Type, api.HeartbeatReply)
	}
	if reply.RequestID() != 7 {
		t.Errorf("reply request ID = %d, want 7", reply.RequestID())
	}
}
