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
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy of failure kinds carried on replies.
type ErrorKind string

const (
	ErrorEntityNotExists     ErrorKind = "EntityNotExists"
	ErrorBadRequest          ErrorKind = "BadRequest"
	ErrorAlreadyExists       ErrorKind = "AlreadyExists"
	ErrorInternalService     ErrorKind = "InternalService"
	ErrorServiceBusy         ErrorKind = "ServiceBusy"
	ErrorConnectionUnhealthy ErrorKind = "ConnectionUnhealthy"
	ErrorParallelOperation   ErrorKind = "ParallelOperation"
	ErrorTimeout             ErrorKind = "Timeout"
	ErrorCancelled           ErrorKind = "Cancelled"
)

// Error is the structured error a reply can carry. A non-nil Error means the
// requested operation did not have its intended effect (or, for idempotent
// operations, had no additional effect).
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// NewError builds a wire error.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns a copy of e carrying extra detail text.
func (e *Error) WithDetails(details string) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches two wire errors by kind, so callers can use errors.Is against
// sentinel kinds without caring about message text.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// AsError extracts a wire *Error from err, if one is in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsKind reports whether err carries the given wire error kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
