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
	"fmt"
	"reflect"

	"github.com/cadenzaproj/cadenza/api"
	"github.com/cadenzaproj/cadenza/api/serde"
)

// Registration-time wrapping: user functions keep their natural typed
// signatures and are converted here, once, into the canonical handler
// shapes. All reflection happens at registration; dispatch calls plain
// closures.
//
// Accepted shapes:
//
//	entry    func(ctx context.Context, wc *WorkflowContext, args ...T) (R, error) | error
//	signal   func(ctx context.Context, wc *WorkflowContext, payload P) error
//	query    func(ctx context.Context, wc *WorkflowContext, arg Q) (R, error)
//	activity func(ctx context.Context, args ...T) (R, error) | error

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	wcType    = reflect.TypeOf((*WorkflowContext)(nil))
	errType   = reflect.TypeOf((*error)(nil)).Elem()
	byteSlice = reflect.TypeOf([]byte(nil))
)

// WrapEntry converts a typed entry function into an EntryFunc.
func WrapEntry(codec serde.BinarySerde, fn any) (EntryFunc, error) {
	fv := reflect.ValueOf(fn)
	ft, err := checkHandlerShape(fv, "entry", 2)
	if err != nil {
		return nil, err
	}
	if ft.In(1) != wcType {
		return nil, fmt.Errorf("cadenza: entry's second parameter must be *WorkflowContext, have %v", ft.In(1))
	}
	hasResult := ft.NumOut() == 2
	conv := serde.NewTypeConverter(codec)

	return func(ctx context.Context, wc *WorkflowContext, args [][]byte) ([]byte, error) {
		in, err := decodeArgs(codec, conv, ft, 2, args)
		if err != nil {
			return nil, err
		}
		in[0] = reflect.ValueOf(ctx)
		in[1] = reflect.ValueOf(wc)
		out := fv.Call(in)
		return encodeResult(codec, out, hasResult)
	}, nil
}

// WrapSignal converts a typed signal handler into a SignalFunc.
func WrapSignal(codec serde.BinarySerde, fn any) (SignalFunc, error) {
	fv := reflect.ValueOf(fn)
	ft, err := checkHandlerShape(fv, "signal", 2)
	if err != nil {
		return nil, err
	}
	if ft.In(1) != wcType {
		return nil, fmt.Errorf("cadenza: signal handler's second parameter must be *WorkflowContext, have %v", ft.In(1))
	}
	if ft.NumIn() > 3 {
		return nil, fmt.Errorf("cadenza: signal handler takes at most one payload parameter")
	}
	if ft.NumOut() != 1 {
		return nil, fmt.Errorf("cadenza: signal handler must return exactly error")
	}
	conv := serde.NewTypeConverter(codec)

	return func(ctx context.Context, wc *WorkflowContext, payload []byte) error {
		var args [][]byte
		if ft.NumIn() == 3 {
			args = [][]byte{payload}
		}
		in, err := decodeArgs(codec, conv, ft, 2, args)
		if err != nil {
			return err
		}
		in[0] = reflect.ValueOf(ctx)
		in[1] = reflect.ValueOf(wc)
		out := fv.Call(in)
		if e := out[0].Interface(); e != nil {
			return e.(error)
		}
		return nil
	}, nil
}

// WrapQuery converts a typed query handler into a QueryFunc.
func WrapQuery(codec serde.BinarySerde, fn any) (QueryFunc, error) {
	fv := reflect.ValueOf(fn)
	ft, err := checkHandlerShape(fv, "query", 2)
	if err != nil {
		return nil, err
	}
	if ft.In(1) != wcType {
		return nil, fmt.Errorf("cadenza: query handler's second parameter must be *WorkflowContext, have %v", ft.In(1))
	}
	if ft.NumIn() > 3 {
		return nil, fmt.Errorf("cadenza: query handler takes at most one argument parameter")
	}
	if ft.NumOut() != 2 {
		return nil, fmt.Errorf("cadenza: query handler must return (result, error)")
	}
	conv := serde.NewTypeConverter(codec)

	return func(ctx context.Context, wc *WorkflowContext, arg []byte) ([]byte, error) {
		var args [][]byte
		if ft.NumIn() == 3 {
			args = [][]byte{arg}
		}
		in, err := decodeArgs(codec, conv, ft, 2, args)
		if err != nil {
			return nil, err
		}
		in[0] = reflect.ValueOf(ctx)
		in[1] = reflect.ValueOf(wc)
		out := fv.Call(in)
		return encodeResult(codec, out, true)
	}, nil
}

// WrapActivity converts a typed activity function into an ActivityFunc.
func WrapActivity(codec serde.BinarySerde, fn any) (ActivityFunc, error) {
	fv := reflect.ValueOf(fn)
	ft, err := checkHandlerShape(fv, "activity", 1)
	if err != nil {
		return nil, err
	}
	hasResult := ft.NumOut() == 2
	conv := serde.NewTypeConverter(codec)

	return func(ctx context.Context, args [][]byte) ([]byte, error) {
		in, err := decodeArgs(codec, conv, ft, 1, args)
		if err != nil {
			return nil, err
		}
		in[0] = reflect.ValueOf(ctx)
		out := fv.Call(in)
		return encodeResult(codec, out, hasResult)
	}, nil
}

// checkHandlerShape validates the fixed leading parameters and the trailing
// error return shared by every handler shape.
func checkHandlerShape(fv reflect.Value, kind string, fixed int) (reflect.Type, error) {
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("cadenza: %s must be a function", kind)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("cadenza: %s must not be variadic", kind)
	}
	if ft.NumIn() < fixed || ft.In(0) != ctxType {
		return nil, fmt.Errorf("cadenza: %s's first parameter must be context.Context", kind)
	}
	if ft.NumOut() < 1 || ft.NumOut() > 2 || ft.Out(ft.NumOut()-1) != errType {
		return nil, fmt.Errorf("cadenza: %s must return error as its last value", kind)
	}
	return ft, nil
}

// decodeArgs maps serialized attachments onto the function's typed
// parameters after the fixed ones. Arg counts must match; a nil attachment
// yields the parameter's zero value.
func decodeArgs(codec serde.BinarySerde, conv *serde.TypeConverter, ft reflect.Type, fixed int, args [][]byte) ([]reflect.Value, error) {
	want := ft.NumIn() - fixed
	if len(args) != want {
		return nil, newKindError(api.ErrorBadRequest, "handler takes %d args, got %d", want, len(args))
	}
	in := make([]reflect.Value, ft.NumIn())
	for i, att := range args {
		paramType := ft.In(fixed + i)
		if att == nil {
			in[fixed+i] = reflect.Zero(paramType)
			continue
		}
		// []byte parameters take the raw payload without decoding.
		if paramType == byteSlice {
			in[fixed+i] = reflect.ValueOf(att)
			continue
		}
		var raw any
		if err := codec.DeserializeBinary(att, &raw); err != nil {
			return nil, newKindError(api.ErrorBadRequest, "decode arg %d: %v", i, err)
		}
		v, err := conv.ConvertToType(raw, paramType)
		if err != nil {
			return nil, newKindError(api.ErrorBadRequest, "convert arg %d: %v", i, err)
		}
		in[fixed+i] = v
	}
	return in, nil
}

// encodeResult serializes the handler's result value and unwraps its error.
func encodeResult(codec serde.BinarySerde, out []reflect.Value, hasResult bool) ([]byte, error) {
	if e := out[len(out)-1].Interface(); e != nil {
		return nil, e.(error)
	}
	if !hasResult {
		return nil, nil
	}
	resultValue := out[0].Interface()
	if b, ok := resultValue.([]byte); ok {
		return b, nil
	}
	data, err := codec.SerializeBinary(resultValue)
	if err != nil {
		return nil, fmt.Errorf("cadenza: serialize result: %w", err)
	}
	return data, nil
}
