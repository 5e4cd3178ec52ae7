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

	"github.com/cadenzaproj/cadenza/api"
)

// ContinueAsNewError is the tagged outcome an entry method returns to finish
// the current run and restart the workflow with fresh arguments. It is a
// plain returned value, not panic-driven control flow; the dispatcher
// translates it into the restart flag on the invoke reply.
type ContinueAsNewError struct {
	Args    [][]byte
	Options api.ContinueAsNewOptions
}

func (e *ContinueAsNewError) Error() string {
	return "workflow is continuing as a new run"
}

// NewContinueAsNewError builds the restart outcome with serialized args.
func NewContinueAsNewError(args [][]byte, opts api.ContinueAsNewOptions) *ContinueAsNewError {
	return &ContinueAsNewError{Args: args, Options: opts}
}

// AsContinueAsNew extracts a continue-as-new outcome from an entry error.
func AsContinueAsNew(err error) (*ContinueAsNewError, bool) {
	var can *ContinueAsNewError
	ok := errors.As(err, &can)
	return can, ok
}
