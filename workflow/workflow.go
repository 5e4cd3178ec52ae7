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

package workflow

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/cadenzaproj/cadenza/api"
	"github.com/cadenzaproj/cadenza/api/serde"
	"github.com/cadenzaproj/cadenza/internal"
)

// Context is the per-instance handle workflow code receives. Every
// observation of the outside world goes through it so a replayed run sees
// exactly what the original run saw.
type Context = internal.WorkflowContext

// ContinueAsNewOptions tune the restarted run. Zero fields inherit the
// current run's settings.
type ContinueAsNewOptions = api.ContinueAsNewOptions

// ActivityOptions configure one activity execution.
type ActivityOptions = api.ActivityOptions

// Now returns the engine's recorded decision time for the current step.
// Use it instead of time.Now inside workflow code.
func Now(ctx context.Context, wc *Context) (time.Time, error) {
	return wc.CurrentTime(ctx)
}

// Sleep pauses the workflow as a durable timer. The instance survives
// process restarts while the timer runs.
func Sleep(ctx context.Context, wc *Context, d time.Duration) error {
	return wc.Sleep(ctx, d)
}

// GetVersion marks a point where the workflow logic changed and returns the
// version recorded for this run, so old histories keep replaying against
// their original branch.
func GetVersion(ctx context.Context, wc *Context, changeID string, minSupported, maxSupported int32) (int32, error) {
	return wc.GetVersion(ctx, changeID, minSupported, maxSupported)
}

// NewGUID returns a UUID that is recorded on first execution and replayed
// afterwards.
func NewGUID(ctx context.Context, wc *Context) (uuid.UUID, error) {
	return wc.NewGUID(ctx)
}

// SideEffect runs fn once per decision, records its value, and returns the
// recorded value on replay instead of re-evaluating the world. fn must not
// block or touch workflow state.
func SideEffect[T any](ctx context.Context, wc *Context, fn func() T) (T, error) {
	var out T
	codec := wc.Serde()

	var encErr error
	raw, err := wc.SideEffect(ctx, func() []byte {
		data, e := codec.SerializeBinary(fn())
		if e != nil {
			encErr = e
			return nil
		}
		return data
	})
	if err != nil {
		return out, err
	}
	if encErr != nil {
		return out, encErr
	}
	return out, decodeInto(codec, raw, &out)
}

// MutableSideEffect is SideEffect keyed by id: the recorded value is
// overwritten when fn produces a different result, and stable values are not
// re-recorded.
func MutableSideEffect[T any](ctx context.Context, wc *Context, id string, fn func() T) (T, error) {
	var out T
	codec := wc.Serde()

	var encErr error
	raw, err := wc.MutableSideEffect(ctx, id, func() []byte {
		data, e := codec.SerializeBinary(fn())
		if e != nil {
			encErr = e
			return nil
		}
		return data
	})
	if err != nil {
		return out, err
	}
	if encErr != nil {
		return out, encErr
	}
	return out, decodeInto(codec, raw, &out)
}

// ExecuteActivity schedules an activity by type name and blocks until its
// recorded result is available, decoding it into R.
func ExecuteActivity[R any](ctx context.Context, wc *Context, activityType string, opts ActivityOptions, args ...any) (R, error) {
	var out R
	codec := wc.Serde()

	encoded, err := encodeValues(codec, args)
	if err != nil {
		return out, err
	}
	raw, err := wc.ExecuteActivity(ctx, activityType, opts, encoded)
	if err != nil {
		return out, err
	}
	return out, decodeInto(codec, raw, &out)
}

// ExecuteLocalActivity runs fn in this worker process under the engine's
// recording, so replays reuse the recorded result instead of re-running fn.
// fn must have an activity shape: context first, error last.
func ExecuteLocalActivity[R any](ctx context.Context, wc *Context, fn any, args ...any) (R, error) {
	var out R
	codec := wc.Serde()

	wrapped, err := internal.WrapActivity(codec, fn)
	if err != nil {
		return out, err
	}
	encoded, err := encodeValues(codec, args)
	if err != nil {
		return out, err
	}
	raw, err := wc.ExecuteLocalActivity(ctx, wrapped, encoded)
	if err != nil {
		return out, err
	}
	return out, decodeInto(codec, raw, &out)
}

// ContinueAsNew returns the outcome an entry function should return to end
// the current run and restart the workflow with fresh arguments. Return it
// directly; wrapping it with extra context still works.
func ContinueAsNew(wc *Context, opts ContinueAsNewOptions, args ...any) error {
	encoded, err := encodeValues(wc.Serde(), args)
	if err != nil {
		return err
	}
	return internal.NewContinueAsNewError(encoded, opts)
}

func encodeValues(codec serde.BinarySerde, args []any) ([][]byte, error) {
	if len(args) == 0 {
		return nil, nil
	}
	encoded := make([][]byte, len(args))
	for i, arg := range args {
		if raw, ok := arg.([]byte); ok {
			encoded[i] = raw
			continue
		}
		data, err := codec.SerializeBinary(arg)
		if err != nil {
			return nil, err
		}
		encoded[i] = data
	}
	return encoded, nil
}

func decodeInto[T any](codec serde.BinarySerde, raw []byte, out *T) error {
	if raw == nil {
		return nil
	}
	// Byte-slice results are the wire payload itself.
	if p, ok := any(out).(*[]byte); ok {
		*p = raw
		return nil
	}
	return codec.DeserializeBinary(raw, out)
}
