package mqtt

import (
	"bytes"
	"io"

	"github.com/axmq/mqtt311/packet"
)

// Encode writes m to w as a complete MQTT 3.1.1 control packet: fixed
// header, remaining-length varint, and body. The body is built in memory
// first so its length is known before the fixed header is written.
func Encode(w io.Writer, m Message) error {
	var body bytes.Buffer
	flags, err := encodeBody(&body, m)
	if err != nil {
		return err
	}

	if body.Len() > int(packet.MaxRemainingLength) {
		return malformedf("encoded body of %d bytes exceeds remaining length limit", body.Len())
	}

	fh := packet.FixedHeader{
		Type:            m.Type(),
		Flags:           flags,
		RemainingLength: uint32(body.Len()),
	}
	if err := packet.EncodeFixedHeader(w, fh); err != nil {
		return err
	}
	_, err = w.Write(body.Bytes())
	return err
}

// Marshal is a convenience wrapper around Encode for callers that want the
// packet as a single byte slice.
func Marshal(m Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeBody(body *bytes.Buffer, m Message) (flags byte, err error) {
	switch v := m.(type) {
	case Connect:
		return 0, encodeConnect(body, v)
	case ConnAck:
		return 0, encodeConnAck(body, v)
	case Publish:
		return encodePublishFlags(v), encodePublish(body, v)
	case PubAck:
		return 0, packet.WriteUint16(body, v.PacketID)
	case PubRec:
		return 0, packet.WriteUint16(body, v.PacketID)
	case PubRel:
		return 0x02, packet.WriteUint16(body, v.PacketID)
	case PubComp:
		return 0, packet.WriteUint16(body, v.PacketID)
	case Subscribe:
		return 0x02, encodeSubscribe(body, v)
	case SubAck:
		return 0, encodeSubAck(body, v)
	case Unsubscribe:
		return 0x02, encodeUnsubscribe(body, v)
	case UnsubAck:
		return 0, packet.WriteUint16(body, v.PacketID)
	case PingReq:
		return 0, nil
	case PingResp:
		return 0, nil
	case Disconnect:
		return 0, nil
	default:
		return 0, malformedf("unknown message type %T", m)
	}
}

func encodeQoSBits(q *QoS) byte {
	if q == nil {
		return 0b00
	}
	return byte(*q)
}

func encodePublishFlags(p Publish) byte {
	var flags byte
	if p.Dup {
		flags |= 0x08
	}
	flags |= encodeQoSBits(p.QoS) << 1
	if p.Retain {
		flags |= 0x01
	}
	return flags
}

func encodeConnect(body *bytes.Buffer, c Connect) error {
	body.Write(connectProtocolName)
	body.WriteByte(0x04) // protocol level

	var flags byte
	if c.CleanSession {
		flags |= 0x02
	}
	if c.Will != nil {
		flags |= 0x04
		flags |= encodeQoSBits(c.Will.QoS) << 3
		if c.Will.Retain {
			flags |= 0x20
		}
	}
	if c.Username != nil {
		flags |= 0x80
		if c.Password != nil {
			flags |= 0x40
		}
	}
	body.WriteByte(flags)

	if err := packet.WriteUint16(body, c.KeepAlive); err != nil {
		return err
	}
	if err := packet.WriteUTF8String(body, string(c.ClientID)); err != nil {
		return err
	}

	if c.Will != nil {
		if err := packet.WriteUTF8String(body, c.Will.Topic); err != nil {
			return err
		}
		if err := packet.WriteBlob(body, c.Will.Message); err != nil {
			return err
		}
	}

	if c.Username != nil {
		if err := packet.WriteUTF8String(body, *c.Username); err != nil {
			return err
		}
		if c.Password != nil {
			if err := packet.WriteBlob(body, *c.Password); err != nil {
				return err
			}
		}
	}

	return nil
}

func encodeConnAck(body *bytes.Buffer, a ConnAck) error {
	var ackFlags byte
	if a.Accepted && a.SessionPresent {
		ackFlags = 0x01
	}
	body.WriteByte(ackFlags)

	var code byte
	if !a.Accepted {
		code = byte(a.Refusal)
	}
	body.WriteByte(code)
	return nil
}

func encodePublish(body *bytes.Buffer, p Publish) error {
	if err := packet.WriteUTF8String(body, p.Topic); err != nil {
		return err
	}
	if p.QoS != nil {
		if err := packet.WriteUint16(body, p.PacketID); err != nil {
			return err
		}
	}
	_, err := body.Write(p.Payload)
	return err
}

func encodeSubscribe(body *bytes.Buffer, s Subscribe) error {
	if err := packet.WriteUint16(body, s.PacketID); err != nil {
		return err
	}
	for _, f := range s.Filters {
		if err := packet.WriteUTF8String(body, f.Filter); err != nil {
			return err
		}
		body.WriteByte(encodeQoSBits(f.QoS))
	}
	return nil
}

func encodeSubAck(body *bytes.Buffer, a SubAck) error {
	if err := packet.WriteUint16(body, a.PacketID); err != nil {
		return err
	}
	for _, r := range a.Results {
		var code byte
		switch {
		case r.Failure:
			code = 0x80
		default:
			code = encodeQoSBits(r.QoS)
		}
		body.WriteByte(code)
	}
	return nil
}

func encodeUnsubscribe(body *bytes.Buffer, u Unsubscribe) error {
	if err := packet.WriteUint16(body, u.PacketID); err != nil {
		return err
	}
	for _, f := range u.Filters {
		if err := packet.WriteUTF8String(body, f); err != nil {
			return err
		}
	}
	return nil
}
