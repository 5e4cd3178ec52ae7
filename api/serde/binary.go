// Package serde is the data-serialization collaborator used at the client
// boundary: workflow and activity arguments and results cross the wire as
// opaque byte payloads produced and consumed here. The protocol core never
// inspects payload contents.
package serde

// BinarySerde converts payload values to and from their wire bytes.
type BinarySerde interface {
	SerializeBinary(value any) ([]byte, error)
	DeserializeBinary(data []byte, valuePtr any) error
}
