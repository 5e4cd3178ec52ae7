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

// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

// Config holds the complete client configuration.
type Config struct {
	Service   string          `json:"service_name" env:"APP_NAME"  envDefault:"cadenza"`
	Version   string          `json:"version"      env:"VERSION"   envDefault:"v0.1.0"`
	Mode      string          `json:"mode"         env:"MODE"      envDefault:"debug"`
	Transport string          `json:"transport"    env:"TRANSPORT" envDefault:"http"`
	Engine    EngineConfig    `json:"engine"       envPrefix:"ENGINE_"`
	Proxy     ProxyConfig     `json:"proxy"        envPrefix:"PROXY_"`
	NATS      NATSConfig      `json:"nats"         envPrefix:"NATS_"`
	Timeouts  TimeoutConfig   `json:"timeouts"     envPrefix:"TIMEOUTS_"`
	Heartbeat HeartbeatConfig `json:"heartbeat"    envPrefix:"HEARTBEAT_"`
}

// EngineConfig identifies the orchestration engine the proxy talks to.
type EngineConfig struct {
	Endpoint string `json:"endpoint" env:"ENDPOINT" envDefault:"localhost:7933"`
	Domain   string `json:"domain"   env:"DOMAIN"   envDefault:"default"`
	Identity string `json:"identity" env:"IDENTITY"`
}

// ProxyConfig holds the HTTP loopback channel settings.
type ProxyConfig struct {
	// URL is the proxy's frame listener; frames go there as PUT bodies.
	URL string `json:"url" env:"URL" envDefault:"http://127.0.0.1:5000/"`

	// ListenAddr is where this client accepts proxy-originated frames.
	ListenAddr string `json:"listen_addr" env:"LISTEN_ADDR" envDefault:"127.0.0.1:0"`
}

// TimeoutConfig holds timeout-related configuration.
type TimeoutConfig struct {
	RequestTimeout time.Duration `json:"request_timeout" env:"REQUEST_TIMEOUT"`
}

// HeartbeatConfig holds connection liveness settings.
type HeartbeatConfig struct {
	Interval time.Duration `json:"interval" env:"INTERVAL"`
}

// Load reads configuration from the environment over built-in defaults.
func Load() (*Config, error) {
	cfg := Config{
		NATS: NATSConfig{
			Host:          DefaultNATSHost,
			Port:          DefaultNATSPort,
			MaxReconnects: DefaultMaxReconnects,
			ReconnectWait: DefaultReconnectWait,
			DrainTimeout:  DefaultDrainTimeout,
			PingInterval:  DefaultPingInterval,
			MaxPingsOut:   DefaultMaxPingsOut,
			ClientName:    "cadenza",
		},
		Timeouts: TimeoutConfig{
			RequestTimeout: DefaultRequestTimeout,
		},
		Heartbeat: HeartbeatConfig{
			Interval: DefaultHeartbeatInterval,
		},
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	if cfg.NATS.URL == "" {
		cfg.NATS.URL = fmt.Sprintf("nats://%s:%s", cfg.NATS.Host, cfg.NATS.Port)
	}

	return &cfg, nil
}

// Validate rejects configurations that cannot produce a working client.
func (c *Config) Validate() error {
	if c.Service == "" {
		return fmt.Errorf("service name is required")
	}
	if c.Engine.Endpoint == "" {
		return fmt.Errorf("engine endpoint is required")
	}
	if c.Engine.Domain == "" {
		return fmt.Errorf("engine domain is required")
	}
	if c.Transport != "http" && c.Transport != "nats" {
		return fmt.Errorf("unknown transport %q (want http or nats)", c.Transport)
	}
	if c.Proxy.URL == "" && c.NATS.URL == "" {
		return fmt.Errorf("either a proxy URL or a NATS URL is required")
	}
	if c.Timeouts.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	if c.Heartbeat.Interval < 0 {
		return fmt.Errorf("heartbeat interval must not be negative")
	}
	if c.NATS.MaxReconnects < -1 {
		return fmt.Errorf("NATS max reconnects must be >= -1")
	}
	return nil
}

func (c *Config) ServiceName() string { return c.Service }

func (c *Config) RequestTimeout() time.Duration { return c.Timeouts.RequestTimeout }

func (c *Config) HeartbeatInterval() time.Duration { return c.Heartbeat.Interval }
