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

package serde

import (
	"fmt"
	"reflect"
)

// TypeConverter coerces decoded payload values into the parameter types of
// registered workflow and activity functions. It is serializer-agnostic:
// when a direct reflect conversion is not possible it round-trips the value
// through the configured BinarySerde, so the same registration code works
// over JSON and MessagePack payloads.
type TypeConverter struct {
	serde BinarySerde
}

// NewTypeConverter builds a converter over the given payload codec.
func NewTypeConverter(s BinarySerde) *TypeConverter {
	return &TypeConverter{serde: s}
}

// ConvertToType converts value to targetType. nil becomes the target's zero
// value; numeric conversions are precision-checked; everything else falls
// back to a serialize/deserialize round trip.
func (tc *TypeConverter) ConvertToType(value any, targetType reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(targetType), nil
	}

	valueType := reflect.TypeOf(value)
	if valueType == targetType {
		return reflect.ValueOf(value), nil
	}

	if valueType.ConvertibleTo(targetType) {
		if isNumericKind(valueType.Kind()) && isNumericKind(targetType.Kind()) {
			return tc.convertNumeric(value, valueType, targetType)
		}
		return reflect.ValueOf(value).Convert(targetType), nil
	}

	return tc.convertViaSerializer(value, targetType)
}

// convertNumeric handles numeric conversions, rejecting lossy float→int.
func (tc *TypeConverter) convertNumeric(value any, valueType, targetType reflect.Type) (reflect.Value, error) {
	// JSON decoding hands back float64 for every number; recover the int.
	if valueType.Kind() == reflect.Float64 || valueType.Kind() == reflect.Float32 {
		if isIntegerKind(targetType.Kind()) {
			floatVal := reflect.ValueOf(value).Float()
			intVal := int64(floatVal)
			if float64(intVal) != floatVal {
				return reflect.Value{}, fmt.Errorf("cannot convert %v to %v without losing precision", floatVal, targetType)
			}
			return reflect.ValueOf(intVal).Convert(targetType), nil
		}
	}

	if valueType.ConvertibleTo(targetType) {
		return reflect.ValueOf(value).Convert(targetType), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot convert %v (%v) to %v", value, valueType, targetType)
}

// convertViaSerializer round-trips value through the payload codec into the
// target type. This is what keeps registration wrappers codec-independent.
func (tc *TypeConverter) convertViaSerializer(value any, targetType reflect.Type) (reflect.Value, error) {
	data, err := tc.serde.SerializeBinary(value)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("failed to serialize value for type conversion: %w", err)
	}

	var targetValue reflect.Value
	if targetType.Kind() == reflect.Ptr {
		targetValue = reflect.New(targetType.Elem())
	} else {
		targetValue = reflect.New(targetType)
	}

	if err := tc.serde.DeserializeBinary(data, targetValue.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("failed to deserialize value to target type: %w", err)
	}

	if targetType.Kind() != reflect.Ptr {
		return targetValue.Elem(), nil
	}
	return targetValue, nil
}

// ConvertSlice converts each element of values to the target element type.
func (tc *TypeConverter) ConvertSlice(values []any, targetElemType reflect.Type) ([]reflect.Value, error) {
	result := make([]reflect.Value, len(values))
	for i, val := range values {
		converted, err := tc.ConvertToType(val, targetElemType)
		if err != nil {
			return nil, fmt.Errorf("failed to convert element %d: %w", i, err)
		}
		result[i] = converted
	}
	return result, nil
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
