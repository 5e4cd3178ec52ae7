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
	"time"
)

// Property keys shared by every request and reply. Per-kind keys live next
// to their views.
const (
	propRequestID    = "RequestId"
	propClientID     = "ClientId"
	propTimeout      = "Timeout"
	propError        = "Error"
	propReplayStatus = "ReplayStatus"
)

// Message is the one concrete envelope for every message on the wire. Type
// is fixed at construction and must not change after the message is sent.
type Message struct {
	Type        MessageType
	Properties  *Properties
	Attachments [][]byte
}

// NewMessage builds an empty message of the given kind.
func NewMessage(t MessageType) *Message {
	return &Message{Type: t, Properties: NewProperties()}
}

// RequestID returns the correlation ID, zero when unset.
func (m *Message) RequestID() int64 {
	return m.Properties.GetInt64(propRequestID, 0)
}

// SetRequestID stamps the correlation ID.
func (m *Message) SetRequestID(id int64) {
	m.Properties.SetInt64(propRequestID, id)
}

// ClientID returns the owning client scope, empty when unset.
func (m *Message) ClientID() string {
	return m.Properties.GetString(propClientID, "")
}

// SetClientID stamps the owning client scope.
func (m *Message) SetClientID(id string) {
	m.Properties.SetString(propClientID, id)
}

// Timeout returns the request's timeout; zero means "use the connection
// default".
func (m *Message) Timeout() time.Duration {
	return m.Properties.GetDuration(propTimeout, 0)
}

// SetTimeout stamps the request timeout.
func (m *Message) SetTimeout(d time.Duration) {
	m.Properties.SetDuration(propTimeout, d)
}

// ReplyType returns the reply kind expected for this request, or
// MessageUnspecified when the message is itself a reply.
func (m *Message) ReplyType() MessageType {
	return m.Type.ReplyType()
}

// Error returns the structured error carried by a reply, or nil.
func (m *Message) Error() *Error {
	e := GetJSON[*Error](m.Properties, propError, nil)
	if e == nil || e.Kind == "" {
		return nil
	}
	return e
}

// SetError stamps a structured error onto a reply. A nil error clears it.
func (m *Message) SetError(e *Error) {
	if e == nil {
		m.Properties.Delete(propError)
		return
	}
	SetJSON(m.Properties, propError, e)
}

// ReplayStatus returns the replay status carried by a reply;
// ReplayStatusUnspecified when absent.
func (m *Message) ReplayStatus() ReplayStatus {
	return ReplayStatus(m.Properties.GetInt32(propReplayStatus, int32(ReplayStatusUnspecified)))
}

// SetReplayStatus stamps the replay status onto a reply.
func (m *Message) SetReplayStatus(s ReplayStatus) {
	m.Properties.SetInt32(propReplayStatus, int32(s))
}

// NewReply builds the reply envelope for this request, echoing the request
// ID and client scope.
func (m *Message) NewReply() *Message {
	reply := NewMessage(m.ReplyType())
	reply.SetRequestID(m.RequestID())
	if id := m.ClientID(); id != "" {
		reply.SetClientID(id)
	}
	return reply
}

// NewErrorReply builds a reply carrying the given error.
func (m *Message) NewErrorReply(e *Error) *Message {
	reply := m.NewReply()
	reply.SetError(e)
	return reply
}

// Equal reports full structural equality of two messages, including null
// attachments and null property values.
func (m *Message) Equal(o *Message) bool {
	if m.Type != o.Type {
		return false
	}
	if !m.Properties.Equal(o.Properties) {
		return false
	}
	if len(m.Attachments) != len(o.Attachments) {
		return false
	}
	for i := range m.Attachments {
		a, b := m.Attachments[i], o.Attachments[i]
		if (a == nil) != (b == nil) {
			return false
		}
		if !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}
