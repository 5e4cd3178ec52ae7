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

import "time"

// Workflow property keys.
const (
	propWorkflowType    = "WorkflowType"
	propWorkflowID      = "WorkflowId"
	propRunID           = "RunId"
	propContextID       = "ContextId"
	propStartOptions    = "StartOptions"
	propSignalName      = "SignalName"
	propQueryName       = "QueryName"
	propReason          = "Reason"
	propDuration        = "Duration"
	propTime            = "Time"
	propSideEffectID    = "SideEffectId"
	propChangeID        = "ChangeId"
	propMinSupported    = "MinSupported"
	propMaxSupported    = "MaxSupported"
	propVersion         = "Version"
	propContinueAsNew   = "ContinueAsNew"
	propContinueOptions = "ContinueAsNewOptions"
	propCacheSize       = "CacheSize"
)

// Argument payloads ride as attachments in declared order; a frame's
// property map stays small and string-only by design.

// WorkflowExecute starts a workflow execution.
type WorkflowExecute struct{ *Message }

// NewWorkflowExecute builds a workflow start request. Args are
// serde-encoded payloads, one attachment each.
func NewWorkflowExecute(workflowType string, opts StartOptions, args [][]byte) WorkflowExecute {
	m := NewMessage(WorkflowExecuteRequest)
	m.Properties.SetString(propWorkflowType, workflowType)
	SetJSON(m.Properties, propStartOptions, opts)
	m.Attachments = args
	return WorkflowExecute{m}
}

// AsWorkflowExecute views m as a workflow start request.
func AsWorkflowExecute(m *Message) WorkflowExecute { return WorkflowExecute{m} }

func (v WorkflowExecute) WorkflowType() string { return v.Properties.GetString(propWorkflowType, "") }
func (v WorkflowExecute) Options() StartOptions {
	return GetJSON(v.Properties, propStartOptions, StartOptions{})
}
func (v WorkflowExecute) Args() [][]byte { return v.Attachments }

// WorkflowExecuteReplyView reads the started execution off the reply.
type WorkflowExecuteReplyView struct{ *Message }

// AsWorkflowExecuteReply views m as a workflow start reply.
func AsWorkflowExecuteReply(m *Message) WorkflowExecuteReplyView {
	return WorkflowExecuteReplyView{m}
}

func (v WorkflowExecuteReplyView) Execution() WorkflowExecution {
	return WorkflowExecution{
		ID:    v.Properties.GetString(propWorkflowID, ""),
		RunID: v.Properties.GetString(propRunID, ""),
	}
}

// SetExecution stores the started execution on the reply.
func (v WorkflowExecuteReplyView) SetExecution(e WorkflowExecution) {
	v.Properties.SetString(propWorkflowID, e.ID)
	v.Properties.SetString(propRunID, e.RunID)
}

// WorkflowSignal delivers a signal to a running execution. Attachment 0 is
// the signal payload.
type WorkflowSignal struct{ *Message }

// NewWorkflowSignal builds a signal request.
func NewWorkflowSignal(e WorkflowExecution, signalName string, payload []byte) WorkflowSignal {
	m := NewMessage(WorkflowSignalRequest)
	m.Properties.SetString(propWorkflowID, e.ID)
	m.Properties.SetString(propRunID, e.RunID)
	m.Properties.SetString(propSignalName, signalName)
	m.Attachments = [][]byte{payload}
	return WorkflowSignal{m}
}

// AsWorkflowSignal views m as a signal request.
func AsWorkflowSignal(m *Message) WorkflowSignal { return WorkflowSignal{m} }

func (v WorkflowSignal) Execution() WorkflowExecution {
	return WorkflowExecution{
		ID:    v.Properties.GetString(propWorkflowID, ""),
		RunID: v.Properties.GetString(propRunID, ""),
	}
}
func (v WorkflowSignal) SignalName() string { return v.Properties.GetString(propSignalName, "") }
func (v WorkflowSignal) Payload() []byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[0]
}

// WorkflowSignalWithStart signals an execution, starting it first when it is
// not already running. Attachment 0 is the signal payload; the remaining
// attachments are the start args.
type WorkflowSignalWithStart struct{ *Message }

// NewWorkflowSignalWithStart builds a signal-with-start request.
func NewWorkflowSignalWithStart(workflowType string, opts StartOptions, signalName string, payload []byte, args [][]byte) WorkflowSignalWithStart {
	m := NewMessage(WorkflowSignalWithStartRequest)
	m.Properties.SetString(propWorkflowType, workflowType)
	m.Properties.SetString(propSignalName, signalName)
	SetJSON(m.Properties, propStartOptions, opts)
	m.Attachments = append([][]byte{payload}, args...)
	return WorkflowSignalWithStart{m}
}

// AsWorkflowSignalWithStart views m as a signal-with-start request.
func AsWorkflowSignalWithStart(m *Message) WorkflowSignalWithStart {
	return WorkflowSignalWithStart{m}
}

func (v WorkflowSignalWithStart) WorkflowType() string {
	return v.Properties.GetString(propWorkflowType, "")
}
func (v WorkflowSignalWithStart) SignalName() string {
	return v.Properties.GetString(propSignalName, "")
}
func (v WorkflowSignalWithStart) Options() StartOptions {
	return GetJSON(v.Properties, propStartOptions, StartOptions{})
}
func (v WorkflowSignalWithStart) Payload() []byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[0]
}
func (v WorkflowSignalWithStart) Args() [][]byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[1:]
}

// WorkflowQuery queries a running execution. Attachment 0 is the query
// argument payload; the reply's attachment 0 is the query result.
type WorkflowQuery struct{ *Message }

// NewWorkflowQuery builds a query request.
func NewWorkflowQuery(e WorkflowExecution, queryName string, arg []byte) WorkflowQuery {
	m := NewMessage(WorkflowQueryRequest)
	m.Properties.SetString(propWorkflowID, e.ID)
	m.Properties.SetString(propRunID, e.RunID)
	m.Properties.SetString(propQueryName, queryName)
	m.Attachments = [][]byte{arg}
	return WorkflowQuery{m}
}

// AsWorkflowQuery views m as a query request.
func AsWorkflowQuery(m *Message) WorkflowQuery { return WorkflowQuery{m} }

func (v WorkflowQuery) Execution() WorkflowExecution {
	return WorkflowExecution{
		ID:    v.Properties.GetString(propWorkflowID, ""),
		RunID: v.Properties.GetString(propRunID, ""),
	}
}
func (v WorkflowQuery) QueryName() string { return v.Properties.GetString(propQueryName, "") }
func (v WorkflowQuery) Arg() []byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[0]
}

// WorkflowGetResult waits for and returns an execution's result. The reply's
// attachment 0 carries the serialized result.
type WorkflowGetResult struct{ *Message }

// NewWorkflowGetResult builds a get-result request.
func NewWorkflowGetResult(e WorkflowExecution) WorkflowGetResult {
	m := NewMessage(WorkflowGetResultRequest)
	m.Properties.SetString(propWorkflowID, e.ID)
	m.Properties.SetString(propRunID, e.RunID)
	return WorkflowGetResult{m}
}

// AsWorkflowGetResult views m as a get-result request.
func AsWorkflowGetResult(m *Message) WorkflowGetResult { return WorkflowGetResult{m} }

func (v WorkflowGetResult) Execution() WorkflowExecution {
	return WorkflowExecution{
		ID:    v.Properties.GetString(propWorkflowID, ""),
		RunID: v.Properties.GetString(propRunID, ""),
	}
}

// WorkflowCancelExecution requests cooperative cancellation of an execution.
type WorkflowCancelExecution struct{ *Message }

// NewWorkflowCancelExecution builds a workflow cancel request.
func NewWorkflowCancelExecution(e WorkflowExecution) WorkflowCancelExecution {
	m := NewMessage(WorkflowCancelRequest)
	m.Properties.SetString(propWorkflowID, e.ID)
	m.Properties.SetString(propRunID, e.RunID)
	return WorkflowCancelExecution{m}
}

// AsWorkflowCancelExecution views m as a workflow cancel request.
func AsWorkflowCancelExecution(m *Message) WorkflowCancelExecution {
	return WorkflowCancelExecution{m}
}

func (v WorkflowCancelExecution) Execution() WorkflowExecution {
	return WorkflowExecution{
		ID:    v.Properties.GetString(propWorkflowID, ""),
		RunID: v.Properties.GetString(propRunID, ""),
	}
}

// WorkflowTerminate force-terminates an execution. Attachment 0 carries
// optional serialized details.
type WorkflowTerminate struct{ *Message }

// NewWorkflowTerminate builds a terminate request.
func NewWorkflowTerminate(e WorkflowExecution, reason string, details []byte) WorkflowTerminate {
	m := NewMessage(WorkflowTerminateRequest)
	m.Properties.SetString(propWorkflowID, e.ID)
	m.Properties.SetString(propRunID, e.RunID)
	m.Properties.SetString(propReason, reason)
	m.Attachments = [][]byte{details}
	return WorkflowTerminate{m}
}

// AsWorkflowTerminate views m as a terminate request.
func AsWorkflowTerminate(m *Message) WorkflowTerminate { return WorkflowTerminate{m} }

func (v WorkflowTerminate) Execution() WorkflowExecution {
	return WorkflowExecution{
		ID:    v.Properties.GetString(propWorkflowID, ""),
		RunID: v.Properties.GetString(propRunID, ""),
	}
}
func (v WorkflowTerminate) Reason() string { return v.Properties.GetString(propReason, "") }

// WorkflowSignalSubscribe tells the engine a live context handles the named
// signal.
type WorkflowSignalSubscribe struct{ *Message }

// NewWorkflowSignalSubscribe builds a signal-subscribe request.
func NewWorkflowSignalSubscribe(contextID int64, signalName string) WorkflowSignalSubscribe {
	m := NewMessage(WorkflowSignalSubscribeRequest)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetString(propSignalName, signalName)
	return WorkflowSignalSubscribe{m}
}

// AsWorkflowSignalSubscribe views m as a signal-subscribe request.
func AsWorkflowSignalSubscribe(m *Message) WorkflowSignalSubscribe {
	return WorkflowSignalSubscribe{m}
}

func (v WorkflowSignalSubscribe) ContextID() int64 {
	return v.Properties.GetInt64(propContextID, 0)
}
func (v WorkflowSignalSubscribe) SignalName() string {
	return v.Properties.GetString(propSignalName, "")
}

// WorkflowSleep pauses the calling workflow context for at least the given
// duration; the engine may resume later than requested, never earlier.
type WorkflowSleep struct{ *Message }

// NewWorkflowSleep builds a sleep request.
func NewWorkflowSleep(contextID int64, d time.Duration) WorkflowSleep {
	m := NewMessage(WorkflowSleepRequest)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetDuration(propDuration, d)
	return WorkflowSleep{m}
}

// AsWorkflowSleep views m as a sleep request.
func AsWorkflowSleep(m *Message) WorkflowSleep { return WorkflowSleep{m} }

func (v WorkflowSleep) ContextID() int64        { return v.Properties.GetInt64(propContextID, 0) }
func (v WorkflowSleep) Duration() time.Duration { return v.Properties.GetDuration(propDuration, 0) }

// WorkflowGetTime asks for the workflow's recorded current time; workflow
// code never reads the system clock.
type WorkflowGetTime struct{ *Message }

// NewWorkflowGetTime builds a get-time request.
func NewWorkflowGetTime(contextID int64) WorkflowGetTime {
	m := NewMessage(WorkflowGetTimeRequest)
	m.Properties.SetInt64(propContextID, contextID)
	return WorkflowGetTime{m}
}

// AsWorkflowGetTime views m as a get-time request.
func AsWorkflowGetTime(m *Message) WorkflowGetTime { return WorkflowGetTime{m} }

func (v WorkflowGetTime) ContextID() int64 { return v.Properties.GetInt64(propContextID, 0) }

// WorkflowGetTimeReplyView reads the recorded time off the reply.
type WorkflowGetTimeReplyView struct{ *Message }

// AsWorkflowGetTimeReply views m as a get-time reply.
func AsWorkflowGetTimeReply(m *Message) WorkflowGetTimeReplyView {
	return WorkflowGetTimeReplyView{m}
}

func (v WorkflowGetTimeReplyView) Time() time.Time {
	return v.Properties.GetTime(propTime, time.Time{})
}

// SetTime stores the recorded time on the reply.
func (v WorkflowGetTimeReplyView) SetTime(t time.Time) { v.Properties.SetTime(propTime, t) }

// WorkflowSideEffect records a locally computed value; the reply's
// attachment 0 is the authoritative value for this point in history. A
// mutable side effect additionally carries an ID so independent values can
// coexist.
type WorkflowSideEffect struct{ *Message }

// NewWorkflowSideEffect builds a side-effect recording request.
func NewWorkflowSideEffect(contextID int64, value []byte) WorkflowSideEffect {
	m := NewMessage(WorkflowSideEffectRequest)
	m.Properties.SetInt64(propContextID, contextID)
	m.Attachments = [][]byte{value}
	return WorkflowSideEffect{m}
}

// NewWorkflowMutableSideEffect builds a keyed side-effect recording request.
func NewWorkflowMutableSideEffect(contextID int64, id string, value []byte) WorkflowSideEffect {
	m := NewMessage(WorkflowMutableSideEffectRequest)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetString(propSideEffectID, id)
	m.Attachments = [][]byte{value}
	return WorkflowSideEffect{m}
}

// AsWorkflowSideEffect views m as a side-effect request of either kind.
func AsWorkflowSideEffect(m *Message) WorkflowSideEffect { return WorkflowSideEffect{m} }

func (v WorkflowSideEffect) ContextID() int64 { return v.Properties.GetInt64(propContextID, 0) }
func (v WorkflowSideEffect) SideEffectID() string {
	return v.Properties.GetString(propSideEffectID, "")
}
func (v WorkflowSideEffect) Value() []byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[0]
}

// WorkflowGetVersion introduces a versioned change point. On first
// execution the engine records MaxSupported under ChangeID; on replay it
// returns whatever was recorded.
type WorkflowGetVersion struct{ *Message }

// NewWorkflowGetVersion builds a get-version request.
func NewWorkflowGetVersion(contextID int64, changeID string, minSupported, maxSupported int32) WorkflowGetVersion {
	m := NewMessage(WorkflowGetVersionRequest)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetString(propChangeID, changeID)
	m.Properties.SetInt32(propMinSupported, minSupported)
	m.Properties.SetInt32(propMaxSupported, maxSupported)
	return WorkflowGetVersion{m}
}

// AsWorkflowGetVersion views m as a get-version request.
func AsWorkflowGetVersion(m *Message) WorkflowGetVersion { return WorkflowGetVersion{m} }

func (v WorkflowGetVersion) ContextID() int64    { return v.Properties.GetInt64(propContextID, 0) }
func (v WorkflowGetVersion) ChangeID() string    { return v.Properties.GetString(propChangeID, "") }
func (v WorkflowGetVersion) MinSupported() int32 { return v.Properties.GetInt32(propMinSupported, 0) }
func (v WorkflowGetVersion) MaxSupported() int32 { return v.Properties.GetInt32(propMaxSupported, 0) }

// WorkflowGetVersionReplyView reads the recorded version off the reply.
type WorkflowGetVersionReplyView struct{ *Message }

// AsWorkflowGetVersionReply views m as a get-version reply.
func AsWorkflowGetVersionReply(m *Message) WorkflowGetVersionReplyView {
	return WorkflowGetVersionReplyView{m}
}

func (v WorkflowGetVersionReplyView) Version() int32 { return v.Properties.GetInt32(propVersion, 0) }

// SetVersion stores the recorded version on the reply.
func (v WorkflowGetVersionReplyView) SetVersion(ver int32) {
	v.Properties.SetInt32(propVersion, ver)
}

// WorkflowSetCacheSize tunes the engine-side cache of sticky workflow
// executions kept warm for this worker.
type WorkflowSetCacheSize struct{ *Message }

// NewWorkflowSetCacheSize builds a set-cache-size request.
func NewWorkflowSetCacheSize(size int32) WorkflowSetCacheSize {
	m := NewMessage(WorkflowSetCacheSizeRequest)
	m.Properties.SetInt32(propCacheSize, size)
	return WorkflowSetCacheSize{m}
}

// AsWorkflowSetCacheSize views m as a set-cache-size request.
func AsWorkflowSetCacheSize(m *Message) WorkflowSetCacheSize { return WorkflowSetCacheSize{m} }

func (v WorkflowSetCacheSize) Size() int32 { return v.Properties.GetInt32(propCacheSize, 0) }

// WorkflowInvoke is the inbound request asking this worker to run one
// decision pass of a workflow. Attachments carry the entry args.
type WorkflowInvoke struct{ *Message }

// NewWorkflowInvoke builds an invoke request (used by the proxy and by
// tests).
func NewWorkflowInvoke(clientID string, contextID int64, workflowType string, e WorkflowExecution, replaying bool, args [][]byte) WorkflowInvoke {
	m := NewMessage(WorkflowInvokeRequest)
	m.SetClientID(clientID)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetString(propWorkflowType, workflowType)
	m.Properties.SetString(propWorkflowID, e.ID)
	m.Properties.SetString(propRunID, e.RunID)
	if replaying {
		m.SetReplayStatus(ReplayStatusReplaying)
	} else {
		m.SetReplayStatus(ReplayStatusNotReplaying)
	}
	m.Attachments = args
	return WorkflowInvoke{m}
}

// AsWorkflowInvoke views m as an invoke request.
func AsWorkflowInvoke(m *Message) WorkflowInvoke { return WorkflowInvoke{m} }

func (v WorkflowInvoke) ContextID() int64     { return v.Properties.GetInt64(propContextID, 0) }
func (v WorkflowInvoke) WorkflowType() string { return v.Properties.GetString(propWorkflowType, "") }
func (v WorkflowInvoke) Execution() WorkflowExecution {
	return WorkflowExecution{
		ID:    v.Properties.GetString(propWorkflowID, ""),
		RunID: v.Properties.GetString(propRunID, ""),
	}
}
func (v WorkflowInvoke) Args() [][]byte { return v.Attachments }

// WorkflowInvokeReplyView carries the entry method's outcome back to the
// proxy: either a serialized result in attachment 0, a continue-as-new flag
// with new args and options, or a structured error.
type WorkflowInvokeReplyView struct{ *Message }

// AsWorkflowInvokeReply views m as an invoke reply.
func AsWorkflowInvokeReply(m *Message) WorkflowInvokeReplyView {
	return WorkflowInvokeReplyView{m}
}

func (v WorkflowInvokeReplyView) Result() []byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[0]
}

// SetResult stores the serialized entry result as attachment 0.
func (v WorkflowInvokeReplyView) SetResult(result []byte) {
	v.Message.Attachments = [][]byte{result}
}

func (v WorkflowInvokeReplyView) ContinueAsNew() bool {
	return v.Properties.GetBool(propContinueAsNew, false)
}

// SetContinueAsNew flags the reply as a restart-as-new outcome, storing the
// new args as attachments and the options as a property.
func (v WorkflowInvokeReplyView) SetContinueAsNew(args [][]byte, opts ContinueAsNewOptions) {
	v.Properties.SetBool(propContinueAsNew, true)
	SetJSON(v.Properties, propContinueOptions, opts)
	v.Message.Attachments = args
}

func (v WorkflowInvokeReplyView) ContinueAsNewArgs() [][]byte { return v.Message.Attachments }

func (v WorkflowInvokeReplyView) ContinueAsNewOptions() ContinueAsNewOptions {
	return GetJSON(v.Properties, propContinueOptions, ContinueAsNewOptions{})
}

// WorkflowSignalInvoke is the inbound request delivering a signal to a live
// context. Attachment 0 is the signal payload.
type WorkflowSignalInvoke struct{ *Message }

// NewWorkflowSignalInvoke builds a signal-invoke request.
func NewWorkflowSignalInvoke(clientID string, contextID int64, signalName string, payload []byte) WorkflowSignalInvoke {
	m := NewMessage(WorkflowSignalInvokeRequest)
	m.SetClientID(clientID)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetString(propSignalName, signalName)
	m.Attachments = [][]byte{payload}
	return WorkflowSignalInvoke{m}
}

// AsWorkflowSignalInvoke views m as a signal-invoke request.
func AsWorkflowSignalInvoke(m *Message) WorkflowSignalInvoke {
	return WorkflowSignalInvoke{m}
}

func (v WorkflowSignalInvoke) ContextID() int64 { return v.Properties.GetInt64(propContextID, 0) }
func (v WorkflowSignalInvoke) SignalName() string {
	return v.Properties.GetString(propSignalName, "")
}
func (v WorkflowSignalInvoke) Payload() []byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[0]
}

// WorkflowQueryInvoke is the inbound request running a query against a live
// context. Attachment 0 is the query argument; the reply's attachment 0 is
// the serialized answer.
type WorkflowQueryInvoke struct{ *Message }

// NewWorkflowQueryInvoke builds a query-invoke request.
func NewWorkflowQueryInvoke(clientID string, contextID int64, queryName string, arg []byte) WorkflowQueryInvoke {
	m := NewMessage(WorkflowQueryInvokeRequest)
	m.SetClientID(clientID)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetString(propQueryName, queryName)
	m.Attachments = [][]byte{arg}
	return WorkflowQueryInvoke{m}
}

// AsWorkflowQueryInvoke views m as a query-invoke request.
func AsWorkflowQueryInvoke(m *Message) WorkflowQueryInvoke {
	return WorkflowQueryInvoke{m}
}

func (v WorkflowQueryInvoke) ContextID() int64 { return v.Properties.GetInt64(propContextID, 0) }
func (v WorkflowQueryInvoke) QueryName() string {
	return v.Properties.GetString(propQueryName, "")
}
func (v WorkflowQueryInvoke) Arg() []byte {
	if len(v.Attachments) == 0 {
		return nil
	}
	return v.Attachments[0]
}
