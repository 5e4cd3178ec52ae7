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

// Package logging assembles the client's slog handler stack: a colored
// human-readable handler in debug mode, an OTLP export path plus a JSON
// warning stream in release mode.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Mode selects the handler stack.
type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

// Logger bundles the slog logger with the OTLP provider that must be shut
// down on exit (nil in debug mode).
type Logger struct {
	Slogger *slog.Logger
	*sdklog.LoggerProvider
}

// Options configure New.
type Options struct {
	// Mode selects debug (colored text) or release (OTLP + JSON warnings).
	Mode Mode

	// Writer receives debug-mode output.
	Writer io.Writer

	// ServiceName and ServiceVersion tag exported records in release mode.
	ServiceName    string
	ServiceVersion string
}

// New builds the logger for the given mode.
func New(ctx context.Context, opts *Options) (*Logger, error) {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "cadenza"
	}

	if opts.Mode != ModeRelease {
		return &Logger{
			Slogger: slog.New(&DebugHandler{out: opts.Writer}),
		}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("logging: build resource: %w", err)
	}

	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("logging: create OTLP exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter, nil)),
		sdklog.WithResource(res),
	)

	handlers := []slog.Handler{
		otelslog.NewHandler(opts.ServiceName, otelslog.WithLoggerProvider(provider)),
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}

	return &Logger{
		Slogger:        slog.New(&MultiHandler{handlers: handlers}),
		LoggerProvider: provider,
	}, nil
}

// Shutdown flushes the OTLP pipeline, if one was started.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l.LoggerProvider == nil {
		return nil
	}
	return l.LoggerProvider.Shutdown(ctx)
}
