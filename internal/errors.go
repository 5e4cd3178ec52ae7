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
	stderrors "errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/cadenzaproj/cadenza/api"
)

// Text codes carried on in-process errors, one per wire error kind.
const (
	CodeEntityNotExists     = "ENTITY_NOT_EXISTS"
	CodeBadRequest          = "BAD_REQUEST"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInternalService     = "INTERNAL_SERVICE"
	CodeServiceBusy         = "SERVICE_BUSY"
	CodeConnectionUnhealthy = "CONNECTION_UNHEALTHY"
	CodeParallelOperation   = "PARALLEL_OPERATION"
	CodeTimeout             = "TIMEOUT"
	CodeCancelled           = "CANCELLED"
)

// kindCodes pairs every wire kind with its text code and category. The
// category is coarse routing for generic handlers; the text code always
// carries the exact kind.
var kindCodes = map[api.ErrorKind]struct {
	code     string
	category goerrors.Category
}{
	api.ErrorEntityNotExists:     {CodeEntityNotExists, goerrors.CategoryBadInput},
	api.ErrorBadRequest:          {CodeBadRequest, goerrors.CategoryBadInput},
	api.ErrorAlreadyExists:       {CodeAlreadyExists, goerrors.CategoryConflict},
	api.ErrorInternalService:     {CodeInternalService, goerrors.CategoryExternal},
	api.ErrorServiceBusy:         {CodeServiceBusy, goerrors.CategoryExternal},
	api.ErrorConnectionUnhealthy: {CodeConnectionUnhealthy, goerrors.CategoryExternal},
	api.ErrorParallelOperation:   {CodeParallelOperation, goerrors.CategoryConflict},
	api.ErrorTimeout:             {CodeTimeout, goerrors.CategoryExternal},
	api.ErrorCancelled:           {CodeCancelled, goerrors.CategoryExternal},
}

// newKindError builds an in-process error of the given wire kind. The wire
// error rides along as the Source so the exact kind survives both directions
// of the bridge.
func newKindError(kind api.ErrorKind, format string, args ...any) *goerrors.Error {
	wire := api.NewError(kind, format, args...)
	kc := kindCodes[kind]
	err := goerrors.New(wire.Message, kc.category).WithTextCode(kc.code)
	err.Source = wire
	return err
}

// fromWireError lifts a wire error off a reply into the in-process taxonomy.
func fromWireError(wire *api.Error) error {
	if wire == nil {
		return nil
	}
	kc, ok := kindCodes[wire.Kind]
	if !ok {
		kc = kindCodes[api.ErrorInternalService]
	}
	err := goerrors.New(wire.Message, kc.category).WithTextCode(kc.code)
	err.Source = wire
	if wire.Details != "" {
		err = err.WithMetadata(map[string]any{"details": wire.Details})
	}
	return err
}

// toWireError lowers any in-process error to the structured wire form for a
// reply. Errors that already carry a wire error pass it through; everything
// else becomes InternalService.
func toWireError(err error) *api.Error {
	if err == nil {
		return nil
	}
	if wire, ok := api.AsError(err); ok {
		return wire
	}
	var ge *goerrors.Error
	if stderrors.As(err, &ge) {
		for kind, kc := range kindCodes {
			if kc.code == ge.TextCode {
				return api.NewError(kind, "%s", ge.Message)
			}
		}
	}
	return api.NewError(api.ErrorInternalService, "%s", err.Error())
}

// errorCode extracts the taxonomy text code from err, empty when absent.
func errorCode(err error) string {
	var ge *goerrors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}
