package main

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Records forwarded from Fluent tooling carry their timestamp as a Fluent
// EventTime rather than the predefined (type -1) msgpack Time, with extension
// type 0.
//
// +-------+----+----+----+----+----+----+----+----+----+
// |     1 |  2 |  3 |  4 |  5 |  6 |  7 |  8 |  9 | 10 |
// +-------+----+----+----+----+----+----+----+----+----+
// |    D7 | 00 | second from epoch |     nanosecond    |
// +-------+----+----+----+----+----+----+----+----+----+
// |fixext8|type| 32bits integer BE | 32bits integer BE |
// +-------+----+----+----+----+----+----+----+----+----+
//
//   ref: https://github.com/fluent/fluent/wiki/Forward-Protocol-Specification-v1#time-ext-format
//

type EventTime time.Time

// compile-time check for msgpack CustomDecoder conformance
var _ msgpack.CustomDecoder = (*EventTime)(nil)

const (
	eventTimeExtType = 0
	eventTimeLen     = 8
)

// DecodeMsgpack deserializes a Fluent EventTime.
func (t *EventTime) DecodeMsgpack(dec *msgpack.Decoder) error {
	var buf [2 + eventTimeLen]byte
	if err := dec.ReadFull(buf[:]); err != nil {
		return fmt.Errorf("failed to decode EventTime: %w", err)
	}
	return t.decode(buf[:])
}

// decode reads the fixext8 header and payload in b.
func (t *EventTime) decode(b []byte) error {
	if len(b) != 2+eventTimeLen {
		return fmt.Errorf("failed to decode EventTime: got %d bytes, expected 10", len(b))
	}
	if b[0] != 0xD7 {
		return fmt.Errorf("failed to decode EventTime: byte[0] = %X, expected: 0xD7 (fixext8)", b[0])
	}
	if b[1] != eventTimeExtType {
		return fmt.Errorf("failed to decode EventTime: byte[1] = %X, expected: 0x00 (custom type 0)", b[1])
	}

	secs := int64(binary.BigEndian.Uint32(b[2:6]))
	nsecs := int64(binary.BigEndian.Uint32(b[6:]))
	*t = EventTime(time.Unix(secs, nsecs).In(time.UTC))
	return nil
}
