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
	"sync/atomic"
	"time"

	"github.com/cadenzaproj/cadenza/api"
)

// Defaults applied when the config leaves the corresponding field zero.
const (
	defaultRequestTimeout    = 30 * time.Second
	defaultHeartbeatInterval = 5 * time.Second

	// maxMissedHeartbeats consecutive unanswered probes mark the
	// connection unhealthy.
	maxMissedHeartbeats = 3
)

// InboundHandler consumes requests originated by the proxy and produces the
// reply to send back. It must not block on the connection's receive loop.
type InboundHandler interface {
	HandleRequest(ctx context.Context, req *api.Message) *api.Message
}

// ConnConfig configures a Conn.
type ConnConfig struct {
	Channel Channel

	// Handler receives proxy-originated requests. Required before Serve.
	Handler InboundHandler

	// RequestTimeout bounds Calls whose request carries no explicit
	// timeout. Zero means 30s.
	RequestTimeout time.Duration

	// HeartbeatInterval is the liveness probe period. Zero means 5s.
	HeartbeatInterval time.Duration

	Logger *slog.Logger
}

// Conn multiplexes request/reply conversations over one duplex channel.
//
// Request IDs are monotonic and unique for the connection's lifetime. Every
// outbound request registers a pending entry that exactly one of these
// releases: the correlated reply, the call timeout, caller cancellation, or
// the connection turning unhealthy. Pending entries are resolved outside the
// table lock.
type Conn struct {
	channel Channel
	handler InboundHandler
	logger  *slog.Logger

	requestTimeout    time.Duration
	heartbeatInterval time.Duration

	nextRequestID atomic.Int64

	mu      sync.Mutex
	pending map[int64]chan *api.Message

	unhealthy     atomic.Bool
	unhealthyOnce sync.Once
	unhealthyCh   chan struct{}
}

// NewConn wraps a channel. The caller drives the connection by running
// Serve and RunHeartbeats, usually in an errgroup.
func NewConn(cfg ConnConfig) (*Conn, error) {
	if cfg.Channel == nil {
		return nil, fmt.Errorf("cadenza: conn requires a channel")
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	return &Conn{
		channel:           cfg.Channel,
		handler:           cfg.Handler,
		logger:            defaultLogger(cfg.Logger),
		requestTimeout:    cfg.RequestTimeout,
		heartbeatInterval: cfg.HeartbeatInterval,
		pending:           make(map[int64]chan *api.Message),
		unhealthyCh:       make(chan struct{}),
	}, nil
}

// SetHandler installs the inbound request handler. Must be called before
// Serve.
func (c *Conn) SetHandler(h InboundHandler) {
	c.handler = h
}

// Healthy reports whether the connection still accepts calls.
func (c *Conn) Healthy() bool {
	return !c.unhealthy.Load()
}

// Call sends req and waits for its correlated reply. The wait is bounded by
// the request's own timeout property when set, the connection default
// otherwise, and by ctx in all cases. A reply carrying a structured error is
// returned alongside that error lifted into the in-process taxonomy.
func (c *Conn) Call(ctx context.Context, req *api.Message) (*api.Message, error) {
	if c.unhealthy.Load() {
		return nil, newKindError(api.ErrorConnectionUnhealthy, "connection is unhealthy")
	}

	id := c.nextRequestID.Add(1)
	req.SetRequestID(id)

	ch := make(chan *api.Message, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer c.release(id)

	frame, err := api.Encode(req)
	if err != nil {
		return nil, err
	}
	if err := c.channel.Send(ctx, frame); err != nil {
		return nil, fmt.Errorf("cadenza: send %s: %w", req.Type, err)
	}

	timeout := req.Timeout()
	if timeout == 0 {
		timeout = c.requestTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-ch:
		if wire := reply.Error(); wire != nil {
			return reply, fromWireError(wire)
		}
		return reply, nil
	case <-timer.C:
		return nil, newKindError(api.ErrorTimeout, "%s request %d timed out after %v", req.Type, id, timeout)
	case <-ctx.Done():
		return nil, newKindError(api.ErrorCancelled, "%s request %d cancelled: %v", req.Type, id, ctx.Err())
	case <-c.unhealthyCh:
		return nil, newKindError(api.ErrorConnectionUnhealthy, "connection became unhealthy awaiting %s request %d", req.Type, id)
	}
}

// CancelRequest asks the peer to cancel the pending operation identified by
// targetID. The returned bool reports whether the peer found and cancelled
// it; false means the target already completed, which is not an error. The
// target's own pending entry is untouched: its Call keeps waiting for the
// engine's final answer.
func (c *Conn) CancelRequest(ctx context.Context, targetID int64) (bool, error) {
	reply, err := c.Call(ctx, api.NewCancel(targetID).Message)
	if err != nil {
		return false, err
	}
	return api.AsCancelReply(reply).WasCancelled(), nil
}

// release drops the pending entry for id, if still present.
func (c *Conn) release(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// resolve hands reply to the waiting Call, if any. Late replies for released
// entries are dropped.
func (c *Conn) resolve(reply *api.Message) {
	id := reply.RequestID()
	c.mu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("dropping uncorrelated reply", "type", reply.Type.String(), "request_id", id)
		return
	}
	ch <- reply
}

// MarkUnhealthy flips the connection into its terminal unhealthy state: all
// pending calls resolve with ConnectionUnhealthy and new calls fail fast.
func (c *Conn) MarkUnhealthy(reason string) {
	c.unhealthyOnce.Do(func() {
		c.unhealthy.Store(true)
		c.logger.Warn("connection marked unhealthy", "reason", reason)
		// Waiters observe the closed channel; the pending table empties as
		// each Call's deferred release runs.
		close(c.unhealthyCh)
	})
}

// Serve runs the receive loop until ctx is cancelled or the channel fails.
// Malformed frames and unknown message types are protocol errors, fatal to
// the connection.
func (c *Conn) Serve(ctx context.Context) error {
	for {
		frame, err := c.channel.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.MarkUnhealthy(fmt.Sprintf("receive failed: %v", err))
			return fmt.Errorf("cadenza: receive frame: %w", err)
		}
		msg, err := api.Decode(frame)
		if err != nil {
			c.MarkUnhealthy(fmt.Sprintf("malformed frame: %v", err))
			return fmt.Errorf("cadenza: %w", err)
		}

		if msg.Type.IsReply() {
			c.resolve(msg)
			continue
		}

		// Proxy-originated request. Handled off the receive loop so a
		// workflow handler's own protocol calls can complete.
		go c.handleInbound(ctx, msg)
	}
}

func (c *Conn) handleInbound(ctx context.Context, req *api.Message) {
	var reply *api.Message
	if c.handler == nil {
		reply = req.NewErrorReply(api.NewError(api.ErrorInternalService, "no inbound handler installed"))
	} else {
		reply = c.handler.HandleRequest(ctx, req)
	}
	if reply == nil {
		return
	}
	if err := c.SendReply(ctx, reply); err != nil {
		c.logger.Error("failed to send reply",
			"type", reply.Type.String(),
			"request_id", reply.RequestID(),
			"error", err)
	}
}

// SendReply encodes and sends a reply frame.
func (c *Conn) SendReply(ctx context.Context, reply *api.Message) error {
	frame, err := api.Encode(reply)
	if err != nil {
		return err
	}
	return c.channel.Send(ctx, frame)
}

// RunHeartbeats probes the peer on the configured interval until ctx is
// cancelled. Three consecutive unanswered probes mark the connection
// unhealthy and stop the loop.
func (c *Conn) RunHeartbeats(ctx context.Context) error {
	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()

	missed := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.unhealthyCh:
			return newKindError(api.ErrorConnectionUnhealthy, "connection is unhealthy")
		case <-ticker.C:
		}

		hb := api.NewHeartbeat()
		hb.SetTimeout(c.heartbeatInterval)
		if _, err := c.Call(ctx, hb.Message); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			missed++
			c.logger.Warn("heartbeat unanswered", "missed", missed, "error", err)
			if missed >= maxMissedHeartbeats {
				c.MarkUnhealthy(fmt.Sprintf("%d consecutive heartbeats unanswered", missed))
				return newKindError(api.ErrorConnectionUnhealthy, "%d consecutive heartbeats unanswered", missed)
			}
			continue
		}
		missed = 0
	}
}

// Close tears down the underlying channel. In-flight calls resolve with
// ConnectionUnhealthy.
func (c *Conn) Close() error {
	c.MarkUnhealthy("connection closed")
	return c.channel.Close()
}
