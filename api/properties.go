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

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"
)

// One tick is 100 nanoseconds; durations travel as integer tick counts.
const tickDuration = 100 * time.Nanosecond

// Properties is the ordered string-keyed map every message carries. Values
// are string-encoded (booleans as "true"/"false", integers as decimal text,
// byte slices as base64, durations as ticks, structured values as JSON) and
// may be null. Insertion order is preserved so frames encode
// deterministically.
//
// Getters never fail: a missing key, a null value or an undecodable value
// yields the caller-supplied default.
type Properties struct {
	keys   []string
	values map[string]*string
}

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]*string)}
}

// Len returns the number of keys present, including keys set to null.
func (p *Properties) Len() int {
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Properties) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Has reports whether key is present, even with a null value.
func (p *Properties) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Delete removes key if present.
func (p *Properties) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// setRaw stores val (nil means null) under key, preserving first-insertion
// order on overwrite.
func (p *Properties) setRaw(key string, val *string) {
	if p.values == nil {
		p.values = make(map[string]*string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = val
}

// raw returns the stored value and whether the key is present.
func (p *Properties) raw(key string) (*string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// GetString returns the string stored under key, or def when the key is
// absent or null.
func (p *Properties) GetString(key, def string) string {
	v, ok := p.values[key]
	if !ok || v == nil {
		return def
	}
	return *v
}

// SetString stores v under key.
func (p *Properties) SetString(key, v string) {
	p.setRaw(key, &v)
}

// SetNull stores an explicit null under key. Nulls survive a round trip;
// they are not the same as an absent key.
func (p *Properties) SetNull(key string) {
	p.setRaw(key, nil)
}

// IsNull reports whether key is present with a null value.
func (p *Properties) IsNull(key string) bool {
	v, ok := p.values[key]
	return ok && v == nil
}

// GetBool returns the boolean stored under key, or def when absent, null or
// not parseable.
func (p *Properties) GetBool(key string, def bool) bool {
	v, ok := p.values[key]
	if !ok || v == nil {
		return def
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		return def
	}
	return b
}

// SetBool stores v under key as "true" or "false".
func (p *Properties) SetBool(key string, v bool) {
	p.SetString(key, strconv.FormatBool(v))
}

// GetInt32 returns the int32 stored under key, or def.
func (p *Properties) GetInt32(key string, def int32) int32 {
	v, ok := p.values[key]
	if !ok || v == nil {
		return def
	}
	n, err := strconv.ParseInt(*v, 10, 32)
	if err != nil {
		return def
	}
	return int32(n)
}

// SetInt32 stores v under key as decimal text.
func (p *Properties) SetInt32(key string, v int32) {
	p.SetString(key, strconv.FormatInt(int64(v), 10))
}

// GetInt64 returns the int64 stored under key, or def.
func (p *Properties) GetInt64(key string, def int64) int64 {
	v, ok := p.values[key]
	if !ok || v == nil {
		return def
	}
	n, err := strconv.ParseInt(*v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

// SetInt64 stores v under key as decimal text.
func (p *Properties) SetInt64(key string, v int64) {
	p.SetString(key, strconv.FormatInt(v, 10))
}

// GetBytes returns the byte slice stored under key, or def when absent, null
// or not valid base64.
func (p *Properties) GetBytes(key string, def []byte) []byte {
	v, ok := p.values[key]
	if !ok || v == nil {
		return def
	}
	b, err := base64.StdEncoding.DecodeString(*v)
	if err != nil {
		return def
	}
	return b
}

// SetBytes stores v under key as base64 text. A nil slice stores null.
func (p *Properties) SetBytes(key string, v []byte) {
	if v == nil {
		p.SetNull(key)
		return
	}
	p.SetString(key, base64.StdEncoding.EncodeToString(v))
}

// GetDuration returns the duration stored under key as a tick count, or def.
func (p *Properties) GetDuration(key string, def time.Duration) time.Duration {
	v, ok := p.values[key]
	if !ok || v == nil {
		return def
	}
	ticks, err := strconv.ParseInt(*v, 10, 64)
	if err != nil {
		return def
	}
	return time.Duration(ticks) * tickDuration
}

// SetDuration stores v under key as an integer tick count (one tick is
// 100ns). Sub-tick precision is truncated.
func (p *Properties) SetDuration(key string, v time.Duration) {
	p.SetInt64(key, int64(v/tickDuration))
}

// GetTime returns the instant stored under key as nanoseconds since the Unix
// epoch in UTC, or def.
func (p *Properties) GetTime(key string, def time.Time) time.Time {
	v, ok := p.values[key]
	if !ok || v == nil {
		return def
	}
	nanos, err := strconv.ParseInt(*v, 10, 64)
	if err != nil {
		return def
	}
	return time.Unix(0, nanos).UTC()
}

// SetTime stores v under key as nanoseconds since the Unix epoch.
func (p *Properties) SetTime(key string, v time.Time) {
	p.SetInt64(key, v.UnixNano())
}

// GetJSON decodes the JSON text stored under key into a fresh T. Absent,
// null and undecodable values all yield def: this fail-soft contract is
// deliberate, callers must not see deserialization errors for optional
// structured properties.
func GetJSON[T any](p *Properties, key string, def T) T {
	v, ok := p.raw(key)
	if !ok || v == nil {
		return def
	}
	var out T
	if err := json.Unmarshal([]byte(*v), &out); err != nil {
		return def
	}
	return out
}

// SetJSON stores v under key as JSON text. A value that cannot be marshalled
// stores null, mirroring the fail-soft getter.
func SetJSON[T any](p *Properties, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		p.SetNull(key)
		return
	}
	p.SetString(key, string(data))
}

// Equal reports whether two property maps hold the same keys in the same
// order with the same (possibly null) values.
func (p *Properties) Equal(o *Properties) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i, k := range p.keys {
		if o.keys[i] != k {
			return false
		}
		pv, ov := p.values[k], o.values[k]
		if (pv == nil) != (ov == nil) {
			return false
		}
		if pv != nil && *pv != *ov {
			return false
		}
	}
	return true
}
