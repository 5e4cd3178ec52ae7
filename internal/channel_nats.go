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
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig is the dependency-injected interface required for establishing
// a NATS-backed channel.
type NATSConfig interface {
	Endpoint() string
	NATSMaxReconnects() int
	NATSReconnectWait() time.Duration
	NATSDrainTimeout() time.Duration
	NATSPingInterval() time.Duration
	NATSMaxPingsOut() int
	// Optional human readable client name; may return empty.
	NATSClientName() string
}

// natsChannel carries frames over a pair of core NATS subjects: the client
// publishes to the outbound subject and subscribes to the inbound one; the
// proxy does the reverse. Subject pairs are scoped per client identity so
// multiple clients can share a server.
type natsChannel struct {
	nc      *nats.Conn
	ownsNC  bool
	sub     *nats.Subscription
	sendSub string
	logger  *slog.Logger

	inbound chan []byte
	done    chan struct{}
	once    sync.Once
}

// FrameSubjects returns the (outbound, inbound) subject pair for a client
// identity, from the client's point of view.
func FrameSubjects(identity string) (string, string) {
	return "cadenza.frames." + identity + ".out", "cadenza.frames." + identity + ".in"
}

// NewNATSChannel dials NATS with the given configuration and subscribes to
// the client's inbound frame subject.
func NewNATSChannel(cfg NATSConfig, identity string, logger *slog.Logger) (Channel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cadenza: nil NATS config provided")
	}
	logger = defaultLogger(logger)

	clientName := cfg.NATSClientName()
	if clientName == "" {
		clientName = "cadenza-client"
	}
	opts := []nats.Option{
		nats.Name(clientName),
		nats.MaxReconnects(cfg.NATSMaxReconnects()),
		nats.ReconnectWait(cfg.NATSReconnectWait()),
		nats.DrainTimeout(cfg.NATSDrainTimeout()),
		nats.PingInterval(cfg.NATSPingInterval()),
		nats.MaxPingsOutstanding(cfg.NATSMaxPingsOut()),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.Endpoint(), opts...)
	if err != nil {
		return nil, fmt.Errorf("cadenza: connect to NATS at %s: %w", cfg.Endpoint(), err)
	}
	ch, err := newNATSChannelFrom(nc, identity, logger)
	if err != nil {
		nc.Close()
		return nil, err
	}
	ch.ownsNC = true
	return ch, nil
}

// WrapNATSConn builds a channel over an existing NATS connection. The caller
// keeps ownership of the connection.
func WrapNATSConn(nc *nats.Conn, identity string, logger *slog.Logger) (Channel, error) {
	if nc == nil {
		return nil, fmt.Errorf("cadenza: nil NATS connection provided")
	}
	return newNATSChannelFrom(nc, identity, defaultLogger(logger))
}

func newNATSChannelFrom(nc *nats.Conn, identity string, logger *slog.Logger) (*natsChannel, error) {
	sendSub, recvSub := FrameSubjects(identity)
	ch := &natsChannel{
		nc:      nc,
		sendSub: sendSub,
		logger:  logger,
		inbound: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
	sub, err := nc.Subscribe(recvSub, func(msg *nats.Msg) {
		select {
		case ch.inbound <- msg.Data:
		case <-ch.done:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cadenza: subscribe %s: %w", recvSub, err)
	}
	ch.sub = sub
	return ch, nil
}

func (ch *natsChannel) Send(ctx context.Context, frame []byte) error {
	select {
	case <-ch.done:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if err := ch.nc.Publish(ch.sendSub, frame); err != nil {
		return fmt.Errorf("cadenza: publish frame: %w", err)
	}
	return nil
}

func (ch *natsChannel) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-ch.done:
		return nil, ErrChannelClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-ch.inbound:
		return frame, nil
	}
}

func (ch *natsChannel) Close() error {
	ch.once.Do(func() {
		close(ch.done)
		if ch.sub != nil {
			ch.sub.Unsubscribe()
		}
		if ch.ownsNC && ch.nc != nil && !ch.nc.IsClosed() {
			ch.nc.Close()
		}
	})
	return nil
}
