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

package activity

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/cadenzaproj/cadenza/api"
)

// Do runs op under the retry policy, backing off exponentially between
// attempts. Errors the engine classifies as caller mistakes (bad request,
// entity not found, already exists, cancelled) are not retried. A zero
// policy means defaults: unlimited attempts from 1s backoff doubling up to
// 100s.
//
// This is client-side retrying for work done inside an activity body, for
// example a flaky downstream call. Retrying the activity itself across
// worker crashes is the engine's job, configured through
// Options.RetryPolicy.
func Do(ctx context.Context, policy RetryPolicy, op func(ctx context.Context) error) error {
	return retry.Do(
		func() error { return op(ctx) },
		policyOptions(ctx, policy)...,
	)
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	return retry.DoWithData(
		func() (T, error) { return op(ctx) },
		policyOptions(ctx, policy)...,
	)
}

func policyOptions(ctx context.Context, policy RetryPolicy) []retry.Option {
	initial := policy.InitialInterval
	if initial <= 0 {
		initial = time.Second
	}
	max := policy.MaximumInterval
	if max <= 0 {
		max = 100 * initial
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Delay(initial),
		retry.MaxDelay(max),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return retryable(err, policy.NonRetryableErrorTypes) }),
	}
	if policy.MaximumAttempts > 0 {
		opts = append(opts, retry.Attempts(uint(policy.MaximumAttempts)))
	} else {
		// retry-go treats 0 attempts as "until success or context done".
		opts = append(opts, retry.Attempts(0))
	}
	return opts
}

func retryable(err error, nonRetryable []string) bool {
	werr, ok := api.AsError(err)
	if !ok {
		// Taxonomy errors keep the structured wire error as their source.
		var ge *goerrors.Error
		if errors.As(err, &ge) {
			werr, ok = api.AsError(ge.Source)
		}
	}
	if !ok {
		return true
	}
	switch werr.Kind {
	case api.ErrorBadRequest, api.ErrorEntityNotExists, api.ErrorAlreadyExists, api.ErrorCancelled:
		return false
	}
	for _, kind := range nonRetryable {
		if string(werr.Kind) == kind {
			return false
		}
	}
	return true
}
