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
	"bytes"
	"testing"
	"time"
)

func TestPropertiesDefaults(t *testing.T) {
	p := NewProperties()
	p.SetString("present", "value")
	p.SetNull("nullish")
	p.SetString("garbage", "not-a-number")

	if got := p.GetString("missing", "dflt"); got != "dflt" {
		t.Errorf("GetString missing: got %q", got)
	}
	if got := p.GetString("nullish", "dflt"); got != "dflt" {
		t.Errorf("GetString null: got %q", got)
	}
	if got := p.GetBool("garbage", true); got != true {
		t.Error("GetBool undecodable should return default")
	}
	if got := p.GetInt32("garbage", 9); got != 9 {
		t.Errorf("GetInt32 undecodable: got %d", got)
	}
	if got := p.GetInt64("missing", -1); got != -1 {
		t.Errorf("GetInt64 missing: got %d", got)
	}
	if got := p.GetBytes("garbage!", []byte("d")); !bytes.Equal(got, []byte("d")) {
		t.Errorf("GetBytes undecodable: got %q", got)
	}
	if got := p.GetDuration("missing", time.Minute); got != time.Minute {
		t.Errorf("GetDuration missing: got %v", got)
	}

	type opts struct{ N int }
	if got := GetJSON(p, "garbage", opts{N: 5}); got.N != 5 {
		t.Errorf("GetJSON undecodable: got %+v", got)
	}
}

func TestPropertiesNullVsAbsent(t *testing.T) {
	p := NewProperties()
	p.SetNull("k")

	if !p.Has("k") {
		t.Error("null key should be present")
	}
	if !p.IsNull("k") {
		t.Error("IsNull should report true")
	}
	if p.IsNull("absent") {
		t.Error("absent key is not null")
	}

	p.SetString("k", "now set")
	if p.IsNull("k") {
		t.Error("overwritten key should not be null")
	}

	p.Delete("k")
	if p.Has("k") || p.Len() != 0 {
		t.Error("Delete should remove key entirely")
	}
}

func TestPropertiesDurationTicks(t *testing.T) {
	p := NewProperties()

	// 1 tick is 100ns; sub-tick precision truncates.
	p.SetDuration("d", 250*time.Nanosecond)
	if got := p.GetDuration("d", 0); got != 200*time.Nanosecond {
		t.Errorf("sub-tick truncation: got %v, want 200ns", got)
	}
	if got := p.GetString("d", ""); got != "2" {
		t.Errorf("tick encoding: got %q, want \"2\"", got)
	}

	p.SetDuration("m", time.Minute)
	if got := p.GetInt64("m", 0); got != 600_000_000 {
		t.Errorf("one minute: got %d ticks, want 600000000", got)
	}
}

func TestPropertiesBytesNil(t *testing.T) {
	p := NewProperties()
	p.SetBytes("nil", nil)
	if !p.IsNull("nil") {
		t.Error("nil slice should store null")
	}
	p.SetBytes("empty", []byte{})
	if p.IsNull("empty") {
		t.Error("empty slice is a value, not null")
	}
	if got := p.GetBytes("empty", nil); got == nil || len(got) != 0 {
		t.Errorf("empty slice round trip: got %v", got)
	}
}

func TestPropertiesTime(t *testing.T) {
	p := NewProperties()
	want := time.Date(2026, 3, 14, 9, 26, 53, 589, time.UTC)
	p.SetTime("t", want)
	if got := p.GetTime("t", time.Time{}); !got.Equal(want) {
		t.Errorf("time round trip: got %v, want %v", got, want)
	}
}

func TestPropertiesOverwriteKeepsOrder(t *testing.T) {
	p := NewProperties()
	p.SetString("a", "1")
	p.SetString("b", "2")
	p.SetString("a", "3")

	keys := p.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("overwrite changed order: %v", keys)
	}
	if got := p.GetString("a", ""); got != "3" {
		t.Errorf("overwrite lost value: %q", got)
	}
}

func TestPropertiesEqual(t *testing.T) {
	a := NewProperties()
	a.SetString("k", "v")
	a.SetNull("n")

	b := NewProperties()
	b.SetString("k", "v")
	b.SetNull("n")

	if !a.Equal(b) {
		t.Error("identical maps should be equal")
	}

	c := NewProperties()
	c.SetNull("n")
	c.SetString("k", "v")
	if a.Equal(c) {
		t.Error("different key order should not be equal")
	}

	d := NewProperties()
	d.SetString("k", "v")
	d.SetString("n", "")
	if a.Equal(d) {
		t.Error("null and empty string should not be equal")
	}
}
