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

// Session and domain property keys.
const (
	propEndpoint       = "Endpoint"
	propIdentity       = "Identity"
	propDomain         = "Domain"
	propTargetID       = "TargetRequestId"
	propWasCancelled   = "WasCancelled"
	propDomainInfo     = "DomainInfo"
	propDescription    = "Description"
	propOwnerEmail     = "OwnerEmail"
	propRetentionDays  = "RetentionDays"
	propEmitMetrics    = "EmitMetrics"
	propSecurityToken  = "SecurityToken"
	propUpdatedInfo    = "UpdatedInfo"
	propDomainStatus   = "DomainStatus"
	propServerCapacity = "ServerCapacity"
)

// Connect is the first request on a connection; it tells the proxy which
// engine endpoint and default domain this client scope uses.
type Connect struct{ *Message }

// NewConnect builds a connect request.
func NewConnect(endpoint, domain, identity string) Connect {
	m := NewMessage(ConnectRequest)
	m.Properties.SetString(propEndpoint, endpoint)
	m.Properties.SetString(propDomain, domain)
	m.Properties.SetString(propIdentity, identity)
	return Connect{m}
}

// AsConnect views m as a connect request.
func AsConnect(m *Message) Connect { return Connect{m} }

func (v Connect) Endpoint() string { return v.Properties.GetString(propEndpoint, "") }
func (v Connect) Domain() string   { return v.Properties.GetString(propDomain, "") }
func (v Connect) Identity() string { return v.Properties.GetString(propIdentity, "") }

// Heartbeat is the periodic liveness probe; it has no fields beyond the
// envelope's request ID.
type Heartbeat struct{ *Message }

// NewHeartbeat builds a heartbeat request.
func NewHeartbeat() Heartbeat {
	return Heartbeat{NewMessage(HeartbeatRequest)}
}

// Cancel asks the peer to cancel the still-pending operation identified by
// the target request ID. It is best-effort: "not found" means the target
// already completed or never existed, not that something is wrong.
type Cancel struct{ *Message }

// NewCancel builds a cancel request for the given in-flight request ID.
func NewCancel(targetRequestID int64) Cancel {
	m := NewMessage(CancelRequest)
	m.Properties.SetInt64(propTargetID, targetRequestID)
	return Cancel{m}
}

// AsCancel views m as a cancel request.
func AsCancel(m *Message) Cancel { return Cancel{m} }

func (v Cancel) TargetRequestID() int64 { return v.Properties.GetInt64(propTargetID, 0) }

// CancelReplyView reads the outcome of a cancel request.
type CancelReplyView struct{ *Message }

// AsCancelReply views m as a cancel reply.
func AsCancelReply(m *Message) CancelReplyView { return CancelReplyView{m} }

func (v CancelReplyView) WasCancelled() bool { return v.Properties.GetBool(propWasCancelled, false) }

// SetWasCancelled records whether the peer found and cancelled the target.
func (v CancelReplyView) SetWasCancelled(b bool) { v.Properties.SetBool(propWasCancelled, b) }

// DomainInfo describes a registered domain.
type DomainInfo struct {
	Name          string `json:"name"`
	Status        string `json:"status,omitempty"`
	Description   string `json:"description,omitempty"`
	OwnerEmail    string `json:"owner_email,omitempty"`
	RetentionDays int32  `json:"retention_days,omitempty"`
	EmitMetrics   bool   `json:"emit_metrics,omitempty"`
}

// DomainDescribe asks for a domain's registration record.
type DomainDescribe struct{ *Message }

// NewDomainDescribe builds a domain describe request.
func NewDomainDescribe(name string) DomainDescribe {
	m := NewMessage(DomainDescribeRequest)
	m.Properties.SetString(propDomain, name)
	return DomainDescribe{m}
}

// AsDomainDescribe views m as a domain describe request.
func AsDomainDescribe(m *Message) DomainDescribe { return DomainDescribe{m} }

func (v DomainDescribe) Name() string { return v.Properties.GetString(propDomain, "") }

// DomainDescribeReplyView reads the described domain off the reply.
type DomainDescribeReplyView struct{ *Message }

// AsDomainDescribeReply views m as a domain describe reply.
func AsDomainDescribeReply(m *Message) DomainDescribeReplyView { return DomainDescribeReplyView{m} }

func (v DomainDescribeReplyView) Info() *DomainInfo {
	return GetJSON[*DomainInfo](v.Properties, propDomainInfo, nil)
}

// SetInfo stores the described domain on the reply.
func (v DomainDescribeReplyView) SetInfo(info *DomainInfo) {
	SetJSON(v.Properties, propDomainInfo, info)
}

// DomainRegister creates a new domain.
type DomainRegister struct{ *Message }

// NewDomainRegister builds a domain register request.
func NewDomainRegister(info DomainInfo, securityToken string) DomainRegister {
	m := NewMessage(DomainRegisterRequest)
	m.Properties.SetString(propDomain, info.Name)
	m.Properties.SetString(propDescription, info.Description)
	m.Properties.SetString(propOwnerEmail, info.OwnerEmail)
	m.Properties.SetInt32(propRetentionDays, info.RetentionDays)
	m.Properties.SetBool(propEmitMetrics, info.EmitMetrics)
	if securityToken != "" {
		m.Properties.SetString(propSecurityToken, securityToken)
	}
	return DomainRegister{m}
}

// AsDomainRegister views m as a domain register request.
func AsDomainRegister(m *Message) DomainRegister { return DomainRegister{m} }

func (v DomainRegister) Name() string        { return v.Properties.GetString(propDomain, "") }
func (v DomainRegister) Description() string { return v.Properties.GetString(propDescription, "") }
func (v DomainRegister) OwnerEmail() string  { return v.Properties.GetString(propOwnerEmail, "") }
func (v DomainRegister) RetentionDays() int32 {
	return v.Properties.GetInt32(propRetentionDays, 0)
}
func (v DomainRegister) EmitMetrics() bool { return v.Properties.GetBool(propEmitMetrics, false) }

// DomainUpdate changes an existing domain's registration record.
type DomainUpdate struct{ *Message }

// NewDomainUpdate builds a domain update request.
func NewDomainUpdate(name string, updated DomainInfo) DomainUpdate {
	m := NewMessage(DomainUpdateRequest)
	m.Properties.SetString(propDomain, name)
	SetJSON(m.Properties, propUpdatedInfo, updated)
	return DomainUpdate{m}
}

// AsDomainUpdate views m as a domain update request.
func AsDomainUpdate(m *Message) DomainUpdate { return DomainUpdate{m} }

func (v DomainUpdate) Name() string { return v.Properties.GetString(propDomain, "") }
func (v DomainUpdate) UpdatedInfo() DomainInfo {
	return GetJSON(v.Properties, propUpdatedInfo, DomainInfo{})
}
