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

import "fmt"

// MessageType identifies one concrete message kind on the wire. The
// enumeration is fixed: codes are grouped in ranges (session 0x01xx,
// workflow 0x02xx, activity 0x03xx) and a reply carries its request's code
// with the replyBit set. Codes never change once assigned.
type MessageType int32

const replyBit MessageType = 0x8000

const (
	MessageUnspecified MessageType = 0

	// Session and connection lifecycle.
	ConnectRequest   MessageType = 0x0101
	HeartbeatRequest MessageType = 0x0102
	CancelRequest    MessageType = 0x0103

	// Domain management.
	DomainDescribeRequest MessageType = 0x0111
	DomainRegisterRequest MessageType = 0x0112
	DomainUpdateRequest   MessageType = 0x0113

	// Workflow operations issued by the client.
	WorkflowExecuteRequest           MessageType = 0x0201
	WorkflowSignalRequest            MessageType = 0x0202
	WorkflowSignalWithStartRequest   MessageType = 0x0203
	WorkflowQueryRequest             MessageType = 0x0204
	WorkflowGetResultRequest         MessageType = 0x0205
	WorkflowCancelRequest            MessageType = 0x0206
	WorkflowTerminateRequest         MessageType = 0x0207
	WorkflowSignalSubscribeRequest   MessageType = 0x0208
	WorkflowSleepRequest             MessageType = 0x0209
	WorkflowGetTimeRequest           MessageType = 0x020A
	WorkflowSideEffectRequest        MessageType = 0x020B
	WorkflowMutableSideEffectRequest MessageType = 0x020C
	WorkflowGetVersionRequest        MessageType = 0x020D
	WorkflowSetCacheSizeRequest      MessageType = 0x020E

	// Workflow operations issued by the proxy (inbound).
	WorkflowInvokeRequest       MessageType = 0x0281
	WorkflowSignalInvokeRequest MessageType = 0x0282
	WorkflowQueryInvokeRequest  MessageType = 0x0283

	// Activity operations.
	ActivityExecuteRequest      MessageType = 0x0301
	ActivityExecuteLocalRequest MessageType = 0x0302

	// Activity operations issued by the proxy (inbound).
	ActivityInvokeLocalRequest MessageType = 0x0381
)

const (
	ConnectReply   MessageType = ConnectRequest | replyBit
	HeartbeatReply MessageType = HeartbeatRequest | replyBit
	CancelReply    MessageType = CancelRequest | replyBit

	DomainDescribeReply MessageType = DomainDescribeRequest | replyBit
	DomainRegisterReply MessageType = DomainRegisterRequest | replyBit
	DomainUpdateReply   MessageType = DomainUpdateRequest | replyBit

	WorkflowExecuteReply           MessageType = WorkflowExecuteRequest | replyBit
	WorkflowSignalReply            MessageType = WorkflowSignalRequest | replyBit
	WorkflowSignalWithStartReply   MessageType = WorkflowSignalWithStartRequest | replyBit
	WorkflowQueryReply             MessageType = WorkflowQueryRequest | replyBit
	WorkflowGetResultReply         MessageType = WorkflowGetResultRequest | replyBit
	WorkflowCancelReply            MessageType = WorkflowCancelRequest | replyBit
	WorkflowTerminateReply         MessageType = WorkflowTerminateRequest | replyBit
	WorkflowSignalSubscribeReply   MessageType = WorkflowSignalSubscribeRequest | replyBit
	WorkflowSleepReply             MessageType = WorkflowSleepRequest | replyBit
	WorkflowGetTimeReply           MessageType = WorkflowGetTimeRequest | replyBit
	WorkflowSideEffectReply        MessageType = WorkflowSideEffectRequest | replyBit
	WorkflowMutableSideEffectReply MessageType = WorkflowMutableSideEffectRequest | replyBit
	WorkflowGetVersionReply        MessageType = WorkflowGetVersionRequest | replyBit
	WorkflowSetCacheSizeReply      MessageType = WorkflowSetCacheSizeRequest | replyBit

	WorkflowInvokeReply       MessageType = WorkflowInvokeRequest | replyBit
	WorkflowSignalInvokeReply MessageType = WorkflowSignalInvokeRequest | replyBit
	WorkflowQueryInvokeReply  MessageType = WorkflowQueryInvokeRequest | replyBit

	ActivityExecuteReply      MessageType = ActivityExecuteRequest | replyBit
	ActivityExecuteLocalReply MessageType = ActivityExecuteLocalRequest | replyBit
	ActivityInvokeLocalReply  MessageType = ActivityInvokeLocalRequest | replyBit
)

// messageTypeNames is the closed set of known codes. Decoding rejects codes
// outside this table.
var messageTypeNames = map[MessageType]string{
	MessageUnspecified:               "Unspecified",
	ConnectRequest:                   "ConnectRequest",
	HeartbeatRequest:                 "HeartbeatRequest",
	CancelRequest:                    "CancelRequest",
	DomainDescribeRequest:            "DomainDescribeRequest",
	DomainRegisterRequest:            "DomainRegisterRequest",
	DomainUpdateRequest:              "DomainUpdateRequest",
	WorkflowExecuteRequest:           "WorkflowExecuteRequest",
	WorkflowSignalRequest:            "WorkflowSignalRequest",
	WorkflowSignalWithStartRequest:   "WorkflowSignalWithStartRequest",
	WorkflowQueryRequest:             "WorkflowQueryRequest",
	WorkflowGetResultRequest:         "WorkflowGetResultRequest",
	WorkflowCancelRequest:            "WorkflowCancelRequest",
	WorkflowTerminateRequest:         "WorkflowTerminateRequest",
	WorkflowSignalSubscribeRequest:   "WorkflowSignalSubscribeRequest",
	WorkflowSleepRequest:             "WorkflowSleepRequest",
	WorkflowGetTimeRequest:           "WorkflowGetTimeRequest",
	WorkflowSideEffectRequest:        "WorkflowSideEffectRequest",
	WorkflowMutableSideEffectRequest: "WorkflowMutableSideEffectRequest",
	WorkflowGetVersionRequest:        "WorkflowGetVersionRequest",
	WorkflowSetCacheSizeRequest:      "WorkflowSetCacheSizeRequest",
	WorkflowInvokeRequest:            "WorkflowInvokeRequest",
	WorkflowSignalInvokeRequest:      "WorkflowSignalInvokeRequest",
	WorkflowQueryInvokeRequest:       "WorkflowQueryInvokeRequest",
	ActivityExecuteRequest:           "ActivityExecuteRequest",
	ActivityExecuteLocalRequest:      "ActivityExecuteLocalRequest",
	ActivityInvokeLocalRequest:       "ActivityInvokeLocalRequest",
}

func init() {
	for req, name := range messageTypeNames {
		if req == MessageUnspecified || req.IsReply() {
			continue
		}
		messageTypeNames[req|replyBit] = name[:len(name)-len("Request")] + "Reply"
	}
}

// IsReply reports whether t is a reply code.
func (t MessageType) IsReply() bool {
	return t&replyBit != 0
}

// ReplyType returns the reply code paired with this request code.
func (t MessageType) ReplyType() MessageType {
	if t == MessageUnspecified || t.IsReply() {
		return MessageUnspecified
	}
	return t | replyBit
}

// IsKnown reports whether t belongs to the fixed enumeration.
func (t MessageType) IsKnown() bool {
	_, ok := messageTypeNames[t]
	return ok
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(0x%04X)", int32(t))
}

// ReplayStatus reports whether the engine is replaying recorded history when
// a reply is produced. Unspecified replies leave the client's view unchanged.
type ReplayStatus int32

const (
	ReplayStatusUnspecified ReplayStatus = iota
	ReplayStatusNotReplaying
	ReplayStatusReplaying
)
