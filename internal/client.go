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
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/sync/errgroup"

	"github.com/cadenzaproj/cadenza/api"
	"github.com/cadenzaproj/cadenza/api/serde"
)

// ClientOptions configure a Client.
type ClientOptions struct {
	// Channel is the duplex frame channel to the proxy. Required.
	Channel Channel

	// Endpoint is the orchestration engine endpoint the proxy should dial.
	Endpoint string

	// Domain is the default domain for workflow operations.
	Domain string

	// Identity names this client to the engine. Defaults to
	// "cadenza-<uuid>".
	Identity string

	// Serde encodes workflow and activity payloads. Defaults to
	// MessagePack.
	Serde serde.BinarySerde

	// RequestTimeout bounds calls without an explicit timeout.
	RequestTimeout time.Duration

	// HeartbeatInterval is the connection liveness probe period.
	HeartbeatInterval time.Duration

	// Registry shares registrations across clients. A private one is
	// created when nil.
	Registry *Registry

	Logger *slog.Logger

	// OnClose runs after the connection shuts down, for tearing down
	// resources assembled alongside the client such as log pipelines.
	OnClose func(context.Context) error
}

// Client is the application-facing handle: it owns one connection to the
// proxy, a client-scoped slice of the registry, and the dispatcher serving
// proxy-originated work.
type Client struct {
	conn       *Conn
	registry   *Registry
	dispatcher *Dispatcher
	serde      serde.BinarySerde
	logger     *slog.Logger

	clientID string
	domain   string
	identity string

	cancel  context.CancelFunc
	runErr  chan error
	onClose func(context.Context) error
}

// NewClient assembles a client over the given channel without starting it.
// Most callers want Dial.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Channel == nil {
		return nil, fmt.Errorf("cadenza: client requires a channel")
	}
	if opts.Serde == nil {
		opts.Serde = &serde.MsgpackSerde{}
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	logger := defaultLogger(opts.Logger)

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("cadenza: generate client ID: %w", err)
	}
	identity := opts.Identity
	if identity == "" {
		identity = "cadenza-" + id.String()
	}

	dispatcher := NewDispatcher(opts.Registry, opts.Serde, logger)
	conn, err := NewConn(ConnConfig{
		Channel:           opts.Channel,
		Handler:           dispatcher,
		RequestTimeout:    opts.RequestTimeout,
		HeartbeatInterval: opts.HeartbeatInterval,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	dispatcher.Bind(conn)

	return &Client{
		conn:       conn,
		registry:   opts.Registry,
		dispatcher: dispatcher,
		serde:      opts.Serde,
		logger:     logger,
		clientID:   id.String(),
		domain:     opts.Domain,
		identity:   identity,
		onClose:    opts.OnClose,
	}, nil
}

// Dial assembles the client, starts its connection loops in the background
// and performs the connect handshake for the configured endpoint and domain.
func Dial(ctx context.Context, opts ClientOptions) (*Client, error) {
	c, err := NewClient(opts)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.runErr = make(chan error, 1)
	go func() { c.runErr <- c.Run(runCtx) }()

	if err := c.connect(ctx, opts.Endpoint); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Run drives the connection: the receive loop and the heartbeat loop. It
// returns when ctx is cancelled or the connection fails.
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.conn.Serve(ctx) })
	g.Go(func() error { return c.conn.RunHeartbeats(ctx) })
	return g.Wait()
}

// connect performs the session handshake.
func (c *Client) connect(ctx context.Context, endpoint string) error {
	req := api.NewConnect(endpoint, c.domain, c.identity)
	req.SetClientID(c.clientID)
	if _, err := c.conn.Call(ctx, req.Message); err != nil {
		return fmt.Errorf("cadenza: connect: %w", err)
	}
	c.logger.Info("connected", "endpoint", endpoint, "domain", c.domain, "identity", c.identity)
	return nil
}

// ClientID returns the scope key all of this client's registrations live
// under.
func (c *Client) ClientID() string { return c.clientID }

// Conn exposes the underlying connection.
func (c *Client) Conn() *Conn { return c.conn }

// Serde returns the payload codec.
func (c *Client) Serde() serde.BinarySerde { return c.serde }

// WorkflowDefinition is a workflow type as the application declares it:
// typed functions, wrapped at registration time.
type WorkflowDefinition struct {
	Name    string
	Entry   any
	Signals map[string]any
	Queries map[string]any
}

// RegisterWorkflow wraps and registers a workflow definition under this
// client's scope.
func (c *Client) RegisterWorkflow(def WorkflowDefinition) error {
	entry, err := WrapEntry(c.serde, def.Entry)
	if err != nil {
		return fmt.Errorf("cadenza: register workflow %q: %w", def.Name, err)
	}
	reg := WorkflowRegistration{
		Name:    def.Name,
		Entry:   entry,
		Signals: make(map[string]SignalFunc, len(def.Signals)),
		Queries: make(map[string]QueryFunc, len(def.Queries)),
		// Identity comes from the application's function, not the
		// wrapper closure.
		fingerprint: funcFingerprint(def.Entry),
	}
	for name, fn := range def.Signals {
		h, err := WrapSignal(c.serde, fn)
		if err != nil {
			return fmt.Errorf("cadenza: register workflow %q signal %q: %w", def.Name, name, err)
		}
		reg.Signals[name] = h
	}
	for name, fn := range def.Queries {
		h, err := WrapQuery(c.serde, fn)
		if err != nil {
			return fmt.Errorf("cadenza: register workflow %q query %q: %w", def.Name, name, err)
		}
		reg.Queries[name] = h
	}
	return c.registry.RegisterWorkflow(c.clientID, reg)
}

// RegisterActivity wraps and registers an activity implementation under this
// client's scope.
func (c *Client) RegisterActivity(name string, fn any) error {
	wrapped, err := WrapActivity(c.serde, fn)
	if err != nil {
		return fmt.Errorf("cadenza: register activity %q: %w", name, err)
	}
	return c.registry.RegisterActivity(c.clientID, name, wrapped, funcFingerprint(fn))
}

// StartWorkflow starts an execution and returns its handle.
func (c *Client) StartWorkflow(ctx context.Context, workflowType string, opts api.StartOptions, args ...any) (api.WorkflowExecution, error) {
	payloads, err := c.encodeArgs(args)
	if err != nil {
		return api.WorkflowExecution{}, err
	}
	req := api.NewWorkflowExecute(workflowType, opts, payloads)
	req.SetClientID(c.clientID)
	reply, err := c.conn.Call(ctx, req.Message)
	if err != nil {
		return api.WorkflowExecution{}, err
	}
	return api.AsWorkflowExecuteReply(reply).Execution(), nil
}

// SignalWorkflow delivers a signal to a running execution.
func (c *Client) SignalWorkflow(ctx context.Context, e api.WorkflowExecution, signalName string, payload any) error {
	data, err := c.encodePayload(payload)
	if err != nil {
		return err
	}
	req := api.NewWorkflowSignal(e, signalName, data)
	req.SetClientID(c.clientID)
	_, err = c.conn.Call(ctx, req.Message)
	return err
}

// SignalWithStartWorkflow signals an execution, starting it first when no
// run is active.
func (c *Client) SignalWithStartWorkflow(ctx context.Context, workflowType string, opts api.StartOptions, signalName string, payload any, args ...any) (api.WorkflowExecution, error) {
	data, err := c.encodePayload(payload)
	if err != nil {
		return api.WorkflowExecution{}, err
	}
	payloads, err := c.encodeArgs(args)
	if err != nil {
		return api.WorkflowExecution{}, err
	}
	req := api.NewWorkflowSignalWithStart(workflowType, opts, signalName, data, payloads)
	req.SetClientID(c.clientID)
	reply, err := c.conn.Call(ctx, req.Message)
	if err != nil {
		return api.WorkflowExecution{}, err
	}
	return api.AsWorkflowExecuteReply(reply).Execution(), nil
}

// QueryWorkflow runs a synchronous query and decodes the answer into
// resultPtr.
func (c *Client) QueryWorkflow(ctx context.Context, e api.WorkflowExecution, queryName string, arg any, resultPtr any) error {
	data, err := c.encodePayload(arg)
	if err != nil {
		return err
	}
	req := api.NewWorkflowQuery(e, queryName, data)
	req.SetClientID(c.clientID)
	reply, err := c.conn.Call(ctx, req.Message)
	if err != nil {
		return err
	}
	return c.decodePayload(api.AsResultReply(reply).Result(), resultPtr)
}

// CancelWorkflow requests cooperative cancellation of an execution.
func (c *Client) CancelWorkflow(ctx context.Context, e api.WorkflowExecution) error {
	req := api.NewWorkflowCancelExecution(e)
	req.SetClientID(c.clientID)
	_, err := c.conn.Call(ctx, req.Message)
	return err
}

// TerminateWorkflow force-terminates an execution.
func (c *Client) TerminateWorkflow(ctx context.Context, e api.WorkflowExecution, reason string, details any) error {
	data, err := c.encodePayload(details)
	if err != nil {
		return err
	}
	req := api.NewWorkflowTerminate(e, reason, data)
	req.SetClientID(c.clientID)
	_, err = c.conn.Call(ctx, req.Message)
	return err
}

// GetWorkflowResult waits for an execution to finish and decodes its result
// into resultPtr. The wait is bounded by ctx.
func (c *Client) GetWorkflowResult(ctx context.Context, e api.WorkflowExecution, resultPtr any) error {
	req := api.NewWorkflowGetResult(e)
	req.SetClientID(c.clientID)
	reply, err := c.conn.Call(ctx, req.Message)
	if err != nil {
		return err
	}
	return c.decodePayload(api.AsResultReply(reply).Result(), resultPtr)
}

// SetWorkflowCacheSize tunes the engine-side sticky execution cache for this
// worker.
func (c *Client) SetWorkflowCacheSize(ctx context.Context, size int32) error {
	req := api.NewWorkflowSetCacheSize(size)
	req.SetClientID(c.clientID)
	_, err := c.conn.Call(ctx, req.Message)
	return err
}

// DescribeDomain fetches a domain's registration record.
func (c *Client) DescribeDomain(ctx context.Context, name string) (*api.DomainInfo, error) {
	req := api.NewDomainDescribe(name)
	req.SetClientID(c.clientID)
	reply, err := c.conn.Call(ctx, req.Message)
	if err != nil {
		return nil, err
	}
	return api.AsDomainDescribeReply(reply).Info(), nil
}

// RegisterDomain creates a new domain.
func (c *Client) RegisterDomain(ctx context.Context, info api.DomainInfo, securityToken string) error {
	req := api.NewDomainRegister(info, securityToken)
	req.SetClientID(c.clientID)
	_, err := c.conn.Call(ctx, req.Message)
	return err
}

// UpdateDomain changes an existing domain's registration record.
func (c *Client) UpdateDomain(ctx context.Context, name string, updated api.DomainInfo) error {
	req := api.NewDomainUpdate(name, updated)
	req.SetClientID(c.clientID)
	_, err := c.conn.Call(ctx, req.Message)
	return err
}

// Close removes this client's registrations and tears down the connection.
func (c *Client) Close() error {
	c.registry.UnregisterClient(c.clientID)
	if c.cancel != nil {
		c.cancel()
	}
	err := c.conn.Close()
	if c.onClose != nil {
		if cerr := c.onClose(context.Background()); err == nil {
			err = cerr
		}
	}
	return err
}

func (c *Client) encodeArgs(args []any) ([][]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	payloads := make([][]byte, len(args))
	for i, arg := range args {
		data, err := c.encodePayload(arg)
		if err != nil {
			return nil, fmt.Errorf("cadenza: encode arg %d: %w", i, err)
		}
		payloads[i] = data
	}
	return payloads, nil
}

func (c *Client) encodePayload(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.([]byte); ok {
		return raw, nil
	}
	return c.serde.SerializeBinary(v)
}

func (c *Client) decodePayload(data []byte, ptr any) error {
	if ptr == nil || data == nil {
		return nil
	}
	if raw, ok := ptr.(*[]byte); ok {
		*raw = data
		return nil
	}
	return c.serde.DeserializeBinary(data, ptr)
}
