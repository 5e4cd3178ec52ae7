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

// Package activity holds the types and helpers for implementing activities,
// the non-deterministic side of a workflow: any function whose shape is
// context first, error last can be registered as one.
package activity

import "github.com/cadenzaproj/cadenza/api"

// Options configure one activity execution.
type Options = api.ActivityOptions

// RetryPolicy describes retry behavior across activity attempts.
type RetryPolicy = api.RetryPolicy
