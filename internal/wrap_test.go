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
	"testing"

	"github.com/cadenzaproj/cadenza/api/serde"
)

type orderInput struct {
	ID    string `json:"id" msgpack:"id"`
	Total int64  `json:"total" msgpack:"total"`
}

func encodeArg(t *testing.T, codec serde.BinarySerde, v any) []byte {
	t.Helper()
	data, err := codec.SerializeBinary(v)
	if err != nil {
		t.Fatalf("SerializeBinary: %v", err)
	}
	return data
}

func TestWrapEntryShapeValidation(t *testing.T) {
	codec := &serde.MsgpackSerde{}

	tests := []struct {
		name string
		fn   any
	}{
		{name: "not a function", fn: 42},
		{name: "missing context", fn: func(wc *WorkflowContext) error { return nil }},
		{name: "missing workflow context", fn: func(ctx context.Context, s string) error { return nil }},
		{name: "no error return", fn: func(ctx context.Context, wc *WorkflowContext) string { return "" }},
		{name: "error not last", fn: func(ctx context.Context, wc *WorkflowContext) (error, string) { return nil, "" }},
		{name: "variadic", fn: func(ctx context.Context, wc *WorkflowContext, args ...string) error { return nil }},
		{name: "too many returns", fn: func(ctx context.Context, wc *WorkflowContext) (string, string, error) { return "", "", nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := WrapEntry(codec, tt.fn); err == nil {
				t.Error("WrapEntry accepted an invalid shape")
			}
		})
	}
}

func TestWrapEntryDecodesTypedArgs(t *testing.T) {
	codec := &serde.MsgpackSerde{}

	var got orderInput
	entry, err := WrapEntry(codec, func(ctx context.Context, wc *WorkflowContext, in orderInput) (string, error) {
		got = in
		return "ok:" + in.ID, nil
	})
	if err != nil {
		t.Fatalf("WrapEntry: %v", err)
	}

	args := [][]byte{encodeArg(t, codec, orderInput{ID: "o-1", Total: 250})}
	result, err := entry(context.Background(), nil, args)
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if got.ID != "o-1" || got.Total != 250 {
		t.Errorf("decoded arg = %+v, want {o-1 250}", got)
	}
	var decoded string
	if err := codec.DeserializeBinary(result, &decoded); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if decoded != "ok:o-1" {
		t.Errorf("result = %q, want %q", decoded, "ok:o-1")
	}
}

func TestWrapEntryArgCountMismatch(t *testing.T) {
	codec := &serde.MsgpackSerde{}
	entry, err := WrapEntry(codec, func(ctx context.Context, wc *WorkflowContext, a, b string) error {
		return nil
	})
	if err != nil {
		t.Fatalf("WrapEntry: %v", err)
	}

	_, err = entry(context.Background(), nil, [][]byte{encodeArg(t, codec, "only-one")})
	if err == nil {
		t.Fatal("entry accepted wrong arg count")
	}
	if code := errorCode(err); code != CodeBadRequest {
		t.Errorf("error code = %q, want %q", code, CodeBadRequest)
	}
}

func TestWrapEntryByteSlicePassthrough(t *testing.T) {
	codec := &serde.MsgpackSerde{}
	entry, err := WrapEntry(codec, func(ctx context.Context, wc *WorkflowContext, raw []byte) ([]byte, error) {
		return raw, nil
	})
	if err != nil {
		t.Fatalf("WrapEntry: %v", err)
	}

	payload := []byte{0x00, 0x01, 0xFF}
	result, err := entry(context.Background(), nil, [][]byte{payload})
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if string(result) != string(payload) {
		t.Errorf("result = %v, want raw payload %v", result, payload)
	}
}

func TestWrapEntryNilArgYieldsZeroValue(t *testing.T) {
	codec := &serde.MsgpackSerde{}
	var got orderInput
	entry, err := WrapEntry(codec, func(ctx context.Context, wc *WorkflowContext, in orderInput) error {
		got = in
		return nil
	})
	if err != nil {
		t.Fatalf("WrapEntry: %v", err)
	}

	if _, err := entry(context.Background(), nil, [][]byte{nil}); err != nil {
		t.Fatalf("entry: %v", err)
	}
	if got != (orderInput{}) {
		t.Errorf("nil arg decoded to %+v, want zero value", got)
	}
}

func TestWrapSignal(t *testing.T) {
	codec := &serde.MsgpackSerde{}

	var got string
	sig, err := WrapSignal(codec, func(ctx context.Context, wc *WorkflowContext, reason string) error {
		got = reason
		return nil
	})
	if err != nil {
		t.Fatalf("WrapSignal: %v", err)
	}
	if err := sig(context.Background(), nil, encodeArg(t, codec, "out of stock")); err != nil {
		t.Fatalf("signal: %v", err)
	}
	if got != "out of stock" {
		t.Errorf("payload = %q, want %q", got, "out of stock")
	}

	if _, err := WrapSignal(codec, func(ctx context.Context, wc *WorkflowContext, a, b string) error { return nil }); err == nil {
		t.Error("WrapSignal accepted two payload parameters")
	}
	if _, err := WrapSignal(codec, func(ctx context.Context, wc *WorkflowContext) (string, error) { return "", nil }); err == nil {
		t.Error("WrapSignal accepted a result return")
	}
}

func TestWrapQuery(t *testing.T) {
	codec := &serde.MsgpackSerde{}

	q, err := WrapQuery(codec, func(ctx context.Context, wc *WorkflowContext, depth int) (int, error) {
		return depth * 2, nil
	})
	if err != nil {
		t.Fatalf("WrapQuery: %v", err)
	}
	result, err := q(context.Background(), nil, encodeArg(t, codec, 21))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var got int
	if err := codec.DeserializeBinary(result, &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got != 42 {
		t.Errorf("query result = %d, want 42", got)
	}

	if _, err := WrapQuery(codec, func(ctx context.Context, wc *WorkflowContext, q string) error { return nil }); err == nil {
		t.Error("WrapQuery accepted a handler without a result")
	}
}

func TestWrapActivity(t *testing.T) {
	codec := &serde.MsgpackSerde{}

	act, err := WrapActivity(codec, func(ctx context.Context, in orderInput) (int64, error) {
		return in.Total, nil
	})
	if err != nil {
		t.Fatalf("WrapActivity: %v", err)
	}
	result, err := act(context.Background(), [][]byte{encodeArg(t, codec, orderInput{ID: "o-1", Total: 99})})
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	var got int64
	if err := codec.DeserializeBinary(result, &got); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if got != 99 {
		t.Errorf("activity result = %d, want 99", got)
	}

	if _, err := WrapActivity(codec, func(in string) error { return nil }); err == nil {
		t.Error("WrapActivity accepted a function without a context parameter")
	}
}

func TestWrapActivityPropagatesHandlerError(t *testing.T) {
	codec := &serde.MsgpackSerde{}
	sentinel := errors.New("card declined")

	act, err := WrapActivity(codec, func(ctx context.Context) error {
		return sentinel
	})
	if err != nil {
		t.Fatalf("WrapActivity: %v", err)
	}
	if _, err := act(context.Background(), nil); !errors.Is(err, sentinel) {
		t.Errorf("activity error = %v, want %v", err, sentinel)
	}
}
