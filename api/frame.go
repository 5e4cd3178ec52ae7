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
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ErrMalformedFrame marks frames whose declared lengths do not match the
// available bytes. Frame errors are fatal to the connection that read them.
var ErrMalformedFrame = fmt.Errorf("cadenza: malformed frame")

// Frame layout, little-endian throughout:
//
//	int32 totalLength            whole frame including these 4 bytes
//	int32 messageType
//	int32 propertyBlockLength    bytes of the property block
//	repeat {
//	    int32 keyLength          | key bytes (UTF-8)
//	    int32 valueLength        | value bytes; -1 means null value
//	}
//	repeat to end of frame {
//	    int32 attachmentLength   | attachment bytes; -1 means null attachment
//	}
const (
	frameHeaderLen = 12
	nullLength     = -1
)

// Encode serializes m to a single frame.
func Encode(m *Message) ([]byte, error) {
	if m == nil || m.Properties == nil {
		return nil, fmt.Errorf("cadenza: cannot encode nil message")
	}
	if !m.Type.IsKnown() {
		return nil, fmt.Errorf("cadenza: cannot encode unknown message type %v", m.Type)
	}

	propLen := 0
	for _, key := range m.Properties.keys {
		propLen += 4 + len(key) + 4
		if v, _ := m.Properties.raw(key); v != nil {
			propLen += len(*v)
		}
	}
	total := frameHeaderLen + propLen
	for _, att := range m.Attachments {
		total += 4 + len(att)
	}
	if total > math.MaxInt32 {
		return nil, fmt.Errorf("cadenza: frame too large (%d bytes)", total)
	}

	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:], uint32(total))
	binary.LittleEndian.PutUint32(buf[4:], uint32(m.Type))
	binary.LittleEndian.PutUint32(buf[8:], uint32(propLen))

	off := frameHeaderLen
	for _, key := range m.Properties.keys {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(key)))
		off += 4
		off += copy(buf[off:], key)
		v, _ := m.Properties.raw(key)
		if v == nil {
			putInt32(buf[off:], nullLength)
			off += 4
			continue
		}
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(*v)))
		off += 4
		off += copy(buf[off:], *v)
	}
	for _, att := range m.Attachments {
		if att == nil {
			putInt32(buf[off:], nullLength)
			off += 4
			continue
		}
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(att)))
		off += 4
		off += copy(buf[off:], att)
	}
	return buf, nil
}

// Decode parses exactly one frame. Any declared length that exceeds the
// available bytes, any negative length other than the null marker and any
// unknown message type is rejected with ErrMalformedFrame.
func Decode(data []byte) (*Message, error) {
	if len(data) < frameHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformedFrame, len(data))
	}
	total := int32(binary.LittleEndian.Uint32(data[0:]))
	if total < frameHeaderLen || int(total) != len(data) {
		return nil, fmt.Errorf("%w: declared length %d, have %d bytes", ErrMalformedFrame, total, len(data))
	}
	mtype := MessageType(binary.LittleEndian.Uint32(data[4:]))
	if !mtype.IsKnown() || mtype == MessageUnspecified {
		return nil, fmt.Errorf("%w: unknown message type 0x%04X", ErrMalformedFrame, int32(mtype))
	}
	propLen := int32(binary.LittleEndian.Uint32(data[8:]))
	if propLen < 0 || frameHeaderLen+int(propLen) > len(data) {
		return nil, fmt.Errorf("%w: property block length %d exceeds frame", ErrMalformedFrame, propLen)
	}

	m := NewMessage(mtype)
	off := frameHeaderLen
	propEnd := frameHeaderLen + int(propLen)
	for off < propEnd {
		key, n, err := readChunk(data[:propEnd], off, false)
		if err != nil {
			return nil, fmt.Errorf("%w: property key: %w", ErrMalformedFrame, err)
		}
		off = n
		val, n, err := readChunk(data[:propEnd], off, true)
		if err != nil {
			return nil, fmt.Errorf("%w: property value for %q: %w", ErrMalformedFrame, string(key), err)
		}
		off = n
		if val == nil {
			m.Properties.SetNull(string(key))
		} else {
			m.Properties.SetString(string(key), string(val))
		}
	}
	if off != propEnd {
		return nil, fmt.Errorf("%w: property block overruns its declared length", ErrMalformedFrame)
	}

	for off < len(data) {
		att, n, err := readChunk(data, off, true)
		if err != nil {
			return nil, fmt.Errorf("%w: attachment: %w", ErrMalformedFrame, err)
		}
		off = n
		if att == nil {
			m.Attachments = append(m.Attachments, nil)
		} else {
			// Copy so the message does not alias the channel's read buffer.
			// make keeps zero-length attachments distinct from null ones.
			cp := make([]byte, len(att))
			copy(cp, att)
			m.Attachments = append(m.Attachments, cp)
		}
	}
	return m, nil
}

// putInt32 writes v little-endian. The null marker is negative, so length
// writes go through a signed value.
func putInt32(buf []byte, v int32) {
	binary.LittleEndian.PutUint32(buf, uint32(v))
}

// readChunk reads one (int32 length, bytes) pair starting at off and returns
// the bytes plus the new offset. A -1 length yields nil when nullable.
func readChunk(data []byte, off int, nullable bool) ([]byte, int, error) {
	if off+4 > len(data) {
		return nil, 0, io.ErrUnexpectedEOF
	}
	n := int32(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if n == nullLength {
		if !nullable {
			return nil, 0, fmt.Errorf("null length where a value is required")
		}
		return nil, off, nil
	}
	if n < 0 {
		return nil, 0, fmt.Errorf("negative length %d", n)
	}
	if off+int(n) > len(data) {
		return nil, 0, fmt.Errorf("length %d exceeds remaining %d bytes", n, len(data)-off)
	}
	return data[off : off+int(n)], off + int(n), nil
}
