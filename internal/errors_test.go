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
	"errors"
	"testing"

	"github.com/cadenzaproj/cadenza/api"
)

func TestKindRoundTripsThroughTaxonomy(t *testing.T) {
	kinds := []api.ErrorKind{
		api.ErrorEntityNotExists,
		api.ErrorBadRequest,
		api.ErrorAlreadyExists,
		api.ErrorInternalService,
		api.ErrorServiceBusy,
		api.ErrorConnectionUnhealthy,
		api.ErrorParallelOperation,
		api.ErrorTimeout,
		api.ErrorCancelled,
	}
	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			err := newKindError(kind, "boom")
			wire := toWireError(err)
			if wire == nil {
				t.Fatal("toWireError returned nil")
			}
			if wire.Kind != kind {
				t.Errorf("round-tripped kind = %v, want %v", wire.Kind, kind)
			}
		})
	}
}

func TestFromWireErrorCarriesCodeAndMessage(t *testing.T) {
	err := fromWireError(api.NewError(api.ErrorServiceBusy, "engine saturated"))
	if err == nil {
		t.Fatal("fromWireError returned nil for a non-nil wire error")
	}
	if code := errorCode(err); code != CodeServiceBusy {
		t.Errorf("error code = %q, want %q", code, CodeServiceBusy)
	}
	if fromWireError(nil) != nil {
		t.Error("fromWireError(nil) != nil")
	}
}

func TestFromWireErrorUnknownKindFallsBack(t *testing.T) {
	err := fromWireError(&api.Error{Kind: "SomethingNew", Message: "future kind"})
	if code := errorCode(err); code != CodeInternalService {
		t.Errorf("error code = %q, want %q", code, CodeInternalService)
	}
}

func TestToWireErrorPlainErrorBecomesInternal(t *testing.T) {
	wire := toWireError(errors.New("disk on fire"))
	if wire.Kind != api.ErrorInternalService {
		t.Errorf("kind = %v, want %v", wire.Kind, api.ErrorInternalService)
	}
	if wire.Message != "disk on fire" {
		t.Errorf("message = %q, want the original text", wire.Message)
	}
	if toWireError(nil) != nil {
		t.Error("toWireError(nil) != nil")
	}
}

func TestToWireErrorPassesThroughWireErrors(t *testing.T) {
	orig := api.NewError(api.ErrorCancelled, "caller gave up")
	wire := toWireError(orig)
	if wire != orig {
		t.Errorf("wire error was rebuilt: got %v, want the original", wire)
	}
}
