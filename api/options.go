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

package api

import "time"

// StartOptions configure a workflow start. Zero values defer to the domain
// and engine defaults.
type StartOptions struct {
	// ID is the caller-chosen workflow ID; the engine assigns one when empty.
	ID string `json:"id,omitempty"`

	// Domain overrides the client's default domain.
	Domain string `json:"domain,omitempty"`

	// TaskList names the worker pool that will host the execution.
	TaskList string `json:"task_list,omitempty"`

	// ExecutionTimeout bounds the whole execution, all retries included.
	ExecutionTimeout time.Duration `json:"execution_timeout,omitempty"`

	// DecisionTimeout bounds a single decision task.
	DecisionTimeout time.Duration `json:"decision_timeout,omitempty"`
}

// ContinueAsNewOptions carry the overrides for the fresh run started by a
// continue-as-new outcome. Zero values inherit the finishing run's settings.
type ContinueAsNewOptions struct {
	Workflow         string        `json:"workflow,omitempty"`
	Domain           string        `json:"domain,omitempty"`
	TaskList         string        `json:"task_list,omitempty"`
	ExecutionTimeout time.Duration `json:"execution_timeout,omitempty"`
	DecisionTimeout  time.Duration `json:"decision_timeout,omitempty"`
}

// ActivityOptions configure one activity execution.
type ActivityOptions struct {
	// ScheduleToCloseTimeout bounds the activity including queue time and
	// retries. Zero means unlimited.
	ScheduleToCloseTimeout time.Duration `json:"schedule_to_close_timeout,omitempty"`

	// StartToCloseTimeout bounds a single execution attempt.
	StartToCloseTimeout time.Duration `json:"start_to_close_timeout,omitempty"`

	// HeartbeatTimeout is the longest gap allowed between heartbeats of a
	// long-running activity.
	HeartbeatTimeout time.Duration `json:"heartbeat_timeout,omitempty"`

	// TaskList overrides the workflow's task list for this activity.
	TaskList string `json:"task_list,omitempty"`

	// RetryPolicy, when set, is applied engine-side across attempts.
	RetryPolicy *RetryPolicy `json:"retry_policy,omitempty"`
}

// RetryPolicy describes engine-side retry behavior for activities and
// workflows.
type RetryPolicy struct {
	// InitialInterval is the backoff before the first retry. Defaults to 1s
	// when zero.
	InitialInterval time.Duration `json:"initial_interval,omitempty"`

	// BackoffCoefficient multiplies the interval per attempt. Must be >= 1;
	// defaults to 2.
	BackoffCoefficient float64 `json:"backoff_coefficient,omitempty"`

	// MaximumInterval caps the backoff. Defaults to 100x InitialInterval.
	MaximumInterval time.Duration `json:"maximum_interval,omitempty"`

	// MaximumAttempts stops retrying when exceeded. Zero means unlimited.
	MaximumAttempts int32 `json:"maximum_attempts,omitempty"`

	// NonRetryableErrorTypes short-circuits retries for matching errors.
	NonRetryableErrorTypes []string `json:"non_retryable_error_types,omitempty"`
}

// WorkflowExecution identifies one run of one workflow.
type WorkflowExecution struct {
	ID    string `json:"id"`
	RunID string `json:"run_id"`
}
