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

// Activity property keys.
const (
	propActivityType   = "ActivityType"
	propActivityTypeID = "ActivityTypeId"
	propActivityOpts   = "ActivityOptions"
)

// ActivityExecute schedules a remote activity from a workflow context.
// Attachments carry the activity args; the reply's attachment 0 carries the
// serialized result.
type ActivityExecute struct{ *Message }

// NewActivityExecute builds a remote activity execution request.
func NewActivityExecute(contextID int64, activityType string, opts ActivityOptions, args [][]byte) ActivityExecute {
	m := NewMessage(ActivityExecuteRequest)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetString(propActivityType, activityType)
	SetJSON(m.Properties, propActivityOpts, opts)
	m.Attachments = args
	return ActivityExecute{m}
}

// AsActivityExecute views m as a remote activity execution request.
func AsActivityExecute(m *Message) ActivityExecute { return ActivityExecute{m} }

func (v ActivityExecute) ContextID() int64     { return v.Properties.GetInt64(propContextID, 0) }
func (v ActivityExecute) ActivityType() string { return v.Properties.GetString(propActivityType, "") }
func (v ActivityExecute) Options() ActivityOptions {
	return GetJSON(v.Properties, propActivityOpts, ActivityOptions{})
}
func (v ActivityExecute) Args() [][]byte { return v.Attachments }

// ActivityExecuteLocal schedules a local activity: the engine routes it
// straight back to this worker as an ActivityInvokeLocal request, keyed by
// the instance-scoped numeric type ID.
type ActivityExecuteLocal struct{ *Message }

// NewActivityExecuteLocal builds a local activity execution request.
func NewActivityExecuteLocal(contextID, activityTypeID int64, args [][]byte) ActivityExecuteLocal {
	m := NewMessage(ActivityExecuteLocalRequest)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetInt64(propActivityTypeID, activityTypeID)
	m.Attachments = args
	return ActivityExecuteLocal{m}
}

// AsActivityExecuteLocal views m as a local activity execution request.
func AsActivityExecuteLocal(m *Message) ActivityExecuteLocal { return ActivityExecuteLocal{m} }

func (v ActivityExecuteLocal) ContextID() int64 { return v.Properties.GetInt64(propContextID, 0) }
func (v ActivityExecuteLocal) ActivityTypeID() int64 {
	return v.Properties.GetInt64(propActivityTypeID, 0)
}
func (v ActivityExecuteLocal) Args() [][]byte { return v.Attachments }

// ActivityInvokeLocal is the inbound request running a locally registered
// activity type inside the owning workflow instance.
type ActivityInvokeLocal struct{ *Message }

// NewActivityInvokeLocal builds a local activity invoke request.
func NewActivityInvokeLocal(clientID string, contextID, activityTypeID int64, args [][]byte) ActivityInvokeLocal {
	m := NewMessage(ActivityInvokeLocalRequest)
	m.SetClientID(clientID)
	m.Properties.SetInt64(propContextID, contextID)
	m.Properties.SetInt64(propActivityTypeID, activityTypeID)
	m.Attachments = args
	return ActivityInvokeLocal{m}
}

// AsActivityInvokeLocal views m as a local activity invoke request.
func AsActivityInvokeLocal(m *Message) ActivityInvokeLocal { return ActivityInvokeLocal{m} }

func (v ActivityInvokeLocal) ContextID() int64 { return v.Properties.GetInt64(propContextID, 0) }
func (v ActivityInvokeLocal) ActivityTypeID() int64 {
	return v.Properties.GetInt64(propActivityTypeID, 0)
}
func (v ActivityInvokeLocal) Args() [][]byte { return v.Attachments }

// ResultReplyView reads or writes the single serialized result payload that
// execute/invoke replies carry as attachment 0.
type ResultReplyView struct{ *Message }

// AsResultReply views m as a reply carrying one result attachment.
func AsResultReply(m *Message) ResultReplyView { return ResultReplyView{m} }

func (v ResultReplyView) Result() []byte {
	if len(v.Message.Attachments) == 0 {
		return nil
	}
	return v.Message.Attachments[0]
}

// SetResult stores the serialized result as attachment 0.
func (v ResultReplyView) SetResult(result []byte) {
	v.Message.Attachments = [][]byte{result}
}
