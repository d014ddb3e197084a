// Package packet implements the MQTT 3.1.1 fixed header and the primitive
// wire encodings (remaining-length varint, big-endian u16, length-prefixed
// UTF-8 strings and opaque blobs) that every control packet is built from.
package packet

import (
	"io"
)

// Type identifies an MQTT 3.1.1 control packet by its fixed-header type
// nibble. 0 and 15 are reserved/undefined in 3.1.1 and never produced by
// ParseFixedHeader.
type Type byte

const (
	CONNECT     Type = 1
	CONNACK     Type = 2
	PUBLISH     Type = 3
	PUBACK      Type = 4
	PUBREC      Type = 5
	PUBREL      Type = 6
	PUBCOMP     Type = 7
	SUBSCRIBE   Type = 8
	SUBACK      Type = 9
	UNSUBSCRIBE Type = 10
	UNSUBACK    Type = 11
	PINGREQ     Type = 12
	PINGRESP    Type = 13
	DISCONNECT  Type = 14
)

func (t Type) String() string {
	switch t {
	case CONNECT:
		return "CONNECT"
	case CONNACK:
		return "CONNACK"
	case PUBLISH:
		return "PUBLISH"
	case PUBACK:
		return "PUBACK"
	case PUBREC:
		return "PUBREC"
	case PUBREL:
		return "PUBREL"
	case PUBCOMP:
		return "PUBCOMP"
	case SUBSCRIBE:
		return "SUBSCRIBE"
	case SUBACK:
		return "SUBACK"
	case UNSUBSCRIBE:
		return "UNSUBSCRIBE"
	case UNSUBACK:
		return "UNSUBACK"
	case PINGREQ:
		return "PINGREQ"
	case PINGRESP:
		return "PINGRESP"
	case DISCONNECT:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}

// reservedFlags gives the fixed flag nibble required for every packet type
// whose flags are not data-carrying. PUBLISH is handled separately since its
// flags encode DUP/QoS/RETAIN.
var reservedFlags = map[Type]byte{
	CONNECT:     0x00,
	CONNACK:     0x00,
	PUBACK:      0x00,
	PUBREC:      0x00,
	PUBREL:      0x02,
	PUBCOMP:     0x00,
	SUBSCRIBE:   0x02,
	SUBACK:      0x00,
	UNSUBSCRIBE: 0x02,
	UNSUBACK:    0x00,
	PINGREQ:     0x00,
	PINGRESP:    0x00,
	DISCONNECT:  0x00,
}

// FixedHeader is the first 2-5 bytes of every MQTT control packet: the
// packet type and flags nibble, followed by the remaining-length varint.
type FixedHeader struct {
	Type            Type
	Flags           byte
	RemainingLength uint32
}

// ParseFixedHeader reads and validates the fixed header from r. PUBLISH
// flags are not decoded here (DUP/QoS/RETAIN are PUBLISH-specific and are
// extracted by the mqtt package's Publish decoder); for every other type,
// the flags nibble must equal its spec-mandated reserved value.
func ParseFixedHeader(r io.Reader) (FixedHeader, error) {
	var first [1]byte
	if _, err := io.ReadFull(r, first[:]); err != nil {
		return FixedHeader{}, wrapEOF(err, "fixed header byte")
	}

	typ := Type(first[0] >> 4)
	flags := first[0] & 0x0F

	if typ < CONNECT || typ > DISCONNECT {
		return FixedHeader{}, malformedf("unknown packet type 0x%02X", first[0]>>4)
	}

	if typ != PUBLISH {
		if expected, ok := reservedFlags[typ]; ok && flags != expected {
			return FixedHeader{}, malformedf("[MQTT] reserved header flags: %s requires flags 0x%X, got 0x%X", typ, expected, flags)
		}
	}

	remaining, err := DecodeRemainingLength(r)
	if err != nil {
		return FixedHeader{}, err
	}

	return FixedHeader{Type: typ, Flags: flags, RemainingLength: remaining}, nil
}

// EncodeFixedHeader writes the fixed header's 1 type+flags byte followed by
// the remaining-length varint.
func EncodeFixedHeader(w io.Writer, h FixedHeader) error {
	if _, err := w.Write([]byte{byte(h.Type)<<4 | h.Flags}); err != nil {
		return err
	}
	rl, err := EncodeRemainingLength(h.RemainingLength)
	if err != nil {
		return err
	}
	_, err = w.Write(rl)
	return err
}
