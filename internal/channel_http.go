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
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// The proxy and the client each host a tiny HTTP listener and PUT whole
// frames at each other. A frame is one request body; the 200 response
// acknowledges receipt only, replies arrive later as frames in the other
// direction.
const (
	framePath        = "/"
	frameContentType = "application/x-cadenza-frame"

	// maxFrameBytes bounds a single inbound body read.
	maxFrameBytes = 64 << 20
)

// HTTPChannelConfig configures an HTTP loopback channel.
type HTTPChannelConfig struct {
	// PeerURL is the base URL of the peer's frame listener.
	PeerURL string

	// ListenAddr is the local address to accept peer frames on, for
	// example "127.0.0.1:0".
	ListenAddr string

	// SendTimeout bounds one frame PUT. Zero means 10s.
	SendTimeout time.Duration

	Logger *slog.Logger
}

// An HTTPChannel carries frames as HTTP PUT bodies in both directions.
type HTTPChannel struct {
	peerURL string
	client  *http.Client
	server  *http.Server
	lis     net.Listener
	logger  *slog.Logger

	inbound chan []byte
	done    chan struct{}
	once    sync.Once
}

// NewHTTPChannel starts the local frame listener and returns the channel.
// The returned channel's LocalURL is what the peer must be told to PUT to.
func NewHTTPChannel(cfg HTTPChannelConfig) (*HTTPChannel, error) {
	if cfg.PeerURL == "" {
		return nil, fmt.Errorf("cadenza: peer URL is required")
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout == 0 {
		sendTimeout = 10 * time.Second
	}

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("cadenza: listen on %s: %w", cfg.ListenAddr, err)
	}

	ch := &HTTPChannel{
		peerURL: cfg.PeerURL,
		client:  &http.Client{Timeout: sendTimeout},
		lis:     lis,
		logger:  defaultLogger(cfg.Logger),
		inbound: make(chan []byte, 64),
		done:    make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(framePath, ch.handleFrame)
	ch.server = &http.Server{Handler: mux}

	go func() {
		if err := ch.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			ch.logger.Error("frame listener stopped", "error", err)
		}
	}()

	return ch, nil
}

// LocalURL returns the base URL the peer should send frames to.
func (ch *HTTPChannel) LocalURL() string {
	return "http://" + ch.lis.Addr().String() + framePath
}

func (ch *HTTPChannel) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != frameContentType {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFrameBytes+1))
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	if len(body) > maxFrameBytes {
		http.Error(w, "frame too large", http.StatusRequestEntityTooLarge)
		return
	}
	select {
	case ch.inbound <- body:
		w.WriteHeader(http.StatusOK)
	case <-ch.done:
		http.Error(w, "channel closed", http.StatusServiceUnavailable)
	case <-r.Context().Done():
	}
}

func (ch *HTTPChannel) Send(ctx context.Context, frame []byte) error {
	select {
	case <-ch.done:
		return ErrChannelClosed
	default:
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, ch.peerURL, bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("cadenza: build frame request: %w", err)
	}
	req.Header.Set("Content-Type", frameContentType)
	resp, err := ch.client.Do(req)
	if err != nil {
		return fmt.Errorf("cadenza: send frame: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cadenza: peer rejected frame: %s", resp.Status)
	}
	return nil
}

func (ch *HTTPChannel) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-ch.done:
		return nil, ErrChannelClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-ch.inbound:
		return frame, nil
	}
}

func (ch *HTTPChannel) Close() error {
	ch.once.Do(func() {
		close(ch.done)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ch.server.Shutdown(shutdownCtx)
	})
	return nil
}
