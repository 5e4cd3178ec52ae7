// Package api defines the wire contract spoken between the Cadenza client
// runtime and the cadenza-proxy sidecar: the typed property map, the message
// envelope, the binary frame layout, the message-type enumeration and the
// structured error carried on replies.
//
// Every message on the wire is a single concrete Message value. Request and
// reply semantics, and the per-kind named fields, are views over the
// message's property map rather than subtypes; encode and decode only ever
// see the concrete struct.
package api
