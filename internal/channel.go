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
	"sync"
)

// ErrChannelClosed is returned by Send and Recv after the channel is closed.
var ErrChannelClosed = errors.New("cadenza: channel closed")

// Channel moves whole frames between this client and the proxy, in both
// directions. Implementations own framing at the transport level; a frame
// handed to Send arrives at the peer as one Recv result, never split or
// merged.
//
// Send and Recv must be safe for one concurrent sender and one concurrent
// receiver. Close unblocks both with ErrChannelClosed.
type Channel interface {
	Send(ctx context.Context, frame []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// pipeChannel is an in-memory channel half. NewPipeChannel returns two
// halves wired back to back; what one Sends the other Recvs. Used by tests
// to script the proxy side of a conversation.
type pipeChannel struct {
	out  chan []byte
	in   chan []byte
	done chan struct{}
	once *sync.Once
}

// NewPipeChannel returns two connected in-memory channel halves. Closing
// either half tears down both.
func NewPipeChannel() (Channel, Channel) {
	a2b := make(chan []byte, 64)
	b2a := make(chan []byte, 64)
	done := make(chan struct{})
	once := new(sync.Once)
	a := &pipeChannel{out: a2b, in: b2a, done: done, once: once}
	b := &pipeChannel{out: b2a, in: a2b, done: done, once: once}
	return a, b
}

func (p *pipeChannel) Send(ctx context.Context, frame []byte) error {
	// The blocking select below picks arbitrarily when the buffer has room
	// and the channel is already closed; check closed-ness first.
	select {
	case <-p.done:
		return ErrChannelClosed
	default:
	}
	select {
	case <-p.done:
		return ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.out <- frame:
		return nil
	}
}

func (p *pipeChannel) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-p.done:
		return nil, ErrChannelClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-p.in:
		return frame, nil
	}
}

func (p *pipeChannel) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
