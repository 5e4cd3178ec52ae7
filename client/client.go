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

// Package client connects an application to the orchestration engine through
// the side-channel proxy and exposes workflow lifecycle operations.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/cadenzaproj/cadenza/config"
	"github.com/cadenzaproj/cadenza/internal"
	"github.com/cadenzaproj/cadenza/internal/logging"
)

// Client is the application's handle on the engine.
//
// Use it to start executions, signal and query them, and fetch results. A
// client owns one proxy connection; workflow and activity registrations made
// through it are scoped to its client ID and are withdrawn on Close.
//
// Example:
//
//	ch, err := client.NewHTTPChannel(client.HTTPChannelConfig{
//		PeerURL:    "http://127.0.0.1:5000/",
//		ListenAddr: "127.0.0.1:0",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	c, err := client.Dial(ctx, client.Options{
//		Channel:  ch,
//		Endpoint: "localhost:7933",
//		Domain:   "production",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	execution, err := c.StartWorkflow(ctx, "order-fulfillment", opts, order)
type Client = internal.Client

// Options contains configuration for creating a new Client.
type Options = internal.ClientOptions

// WorkflowDefinition declares a workflow type: its entry function plus the
// signal and query handlers reachable while an instance is live.
type WorkflowDefinition = internal.WorkflowDefinition

// Channel moves whole frames between this process and the proxy.
type Channel = internal.Channel

// HTTPChannelConfig configures an HTTP loopback channel.
type HTTPChannelConfig = internal.HTTPChannelConfig

// NewClient assembles a client over the given channel without connecting.
// Most callers want Dial, which also starts the receive and heartbeat loops
// and performs the connect handshake.
func NewClient(options Options) (*Client, error) {
	return internal.NewClient(options)
}

// Dial assembles a client, starts its connection loops in the background,
// and performs the connect handshake. The returned client is ready for
// workflow operations; callers that need to observe loop failure should use
// NewClient with Run instead.
func Dial(ctx context.Context, options Options) (*Client, error) {
	return internal.Dial(ctx, options)
}

// DialEnv assembles a client entirely from the environment: it loads
// configuration through package config, builds the logger for the
// configured mode, opens the configured transport
// (TRANSPORT=http for the loopback listener, TRANSPORT=nats for a NATS
// subject pair), and dials. The log pipeline is torn down with the client.
func DialEnv(ctx context.Context) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cadenza: load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cadenza: config: %w", err)
	}

	lg, err := logging.New(ctx, &logging.Options{
		Mode:           logging.Mode(cfg.Mode),
		ServiceName:    cfg.Service,
		ServiceVersion: cfg.Version,
	})
	if err != nil {
		return nil, err
	}

	var ch Channel
	switch cfg.Transport {
	case "nats":
		ch, err = internal.NewNATSChannel(cfg, cfg.Engine.Identity, lg.Slogger)
	default:
		ch, err = internal.NewHTTPChannel(internal.HTTPChannelConfig{
			PeerURL:    cfg.Proxy.URL,
			ListenAddr: cfg.Proxy.ListenAddr,
			Logger:     lg.Slogger,
		})
	}
	if err != nil {
		lg.Shutdown(ctx)
		return nil, err
	}

	c, err := Dial(ctx, Options{
		Channel:           ch,
		Endpoint:          cfg.Engine.Endpoint,
		Domain:            cfg.Engine.Domain,
		Identity:          cfg.Engine.Identity,
		RequestTimeout:    cfg.Timeouts.RequestTimeout,
		HeartbeatInterval: cfg.Heartbeat.Interval,
		Logger:            lg.Slogger,
		OnClose:           lg.Shutdown,
	})
	if err != nil {
		ch.Close()
		lg.Shutdown(ctx)
		return nil, err
	}
	return c, nil
}

// NewHTTPChannel starts a local frame listener and returns a channel that
// PUTs outbound frames to the peer URL. Tell the proxy to deliver frames to
// the channel's LocalURL.
func NewHTTPChannel(cfg HTTPChannelConfig) (*internal.HTTPChannel, error) {
	return internal.NewHTTPChannel(cfg)
}

// NewNATSChannel connects to NATS and returns a channel carrying frames on
// a per-identity subject pair.
func NewNATSChannel(cfg internal.NATSConfig, identity string, logger *slog.Logger) (Channel, error) {
	return internal.NewNATSChannel(cfg, identity, logger)
}

// WrapNATSConn builds a frame channel over an established NATS connection.
// The connection stays owned by the caller and is not closed with the
// channel.
func WrapNATSConn(nc *nats.Conn, identity string, logger *slog.Logger) (Channel, error) {
	return internal.WrapNATSConn(nc, identity, logger)
}
