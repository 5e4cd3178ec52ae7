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

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Service:   "test-service",
		Version:   "v1.0.0",
		Mode:      "debug",
		Transport: "http",
		Engine: EngineConfig{
			Endpoint: "localhost:7933",
			Domain:   "default",
		},
		Proxy: ProxyConfig{
			URL:        "http://127.0.0.1:5000/",
			ListenAddr: "127.0.0.1:0",
		},
		NATS: NATSConfig{
			Host:          "localhost",
			Port:          "4222",
			URL:           "nats://localhost:4222",
			MaxReconnects: 10,
			ReconnectWait: 2 * time.Second,
			DrainTimeout:  30 * time.Second,
			PingInterval:  2 * time.Minute,
			MaxPingsOut:   2,
			ClientName:    "test-client",
		},
		Timeouts:  TimeoutConfig{RequestTimeout: 30 * time.Second},
		Heartbeat: HeartbeatConfig{Interval: 5 * time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.Service = "" },
			wantErr: true,
			errMsg:  "service name is required",
		},
		{
			name:    "missing engine endpoint",
			mutate:  func(c *Config) { c.Engine.Endpoint = "" },
			wantErr: true,
			errMsg:  "engine endpoint is required",
		},
		{
			name:    "missing engine domain",
			mutate:  func(c *Config) { c.Engine.Domain = "" },
			wantErr: true,
			errMsg:  "engine domain is required",
		},
		{
			name:    "unknown transport",
			mutate:  func(c *Config) { c.Transport = "carrier-pigeon" },
			wantErr: true,
			errMsg:  "unknown transport",
		},
		{
			name: "no channel at all",
			mutate: func(c *Config) {
				c.Proxy.URL = ""
				c.NATS.URL = ""
			},
			wantErr: true,
			errMsg:  "either a proxy URL or a NATS URL is required",
		},
		{
			name: "NATS only is fine",
			mutate: func(c *Config) {
				c.Proxy.URL = ""
			},
		},
		{
			name:    "negative request timeout",
			mutate:  func(c *Config) { c.Timeouts.RequestTimeout = -time.Second },
			wantErr: true,
			errMsg:  "request timeout must not be negative",
		},
		{
			name:    "invalid NATS max reconnects",
			mutate:  func(c *Config) { c.NATS.MaxReconnects = -2 },
			wantErr: true,
			errMsg:  "NATS max reconnects must be >= -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error, got nil")
					return
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
			}
		})
	}
}

func TestConfig_ChannelInterface(t *testing.T) {
	cfg := validConfig()

	if got := cfg.Endpoint(); got != "nats://localhost:4222" {
		t.Errorf("Endpoint() = %v", got)
	}
	if got := cfg.NATSMaxReconnects(); got != 10 {
		t.Errorf("NATSMaxReconnects() = %v", got)
	}
	if got := cfg.NATSClientName(); got != "test-client" {
		t.Errorf("NATSClientName() = %v", got)
	}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout() = %v", got)
	}
}
