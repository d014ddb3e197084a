package mqtt

import (
	"bytes"
	"io"

	"github.com/axmq/mqtt311/packet"
)

// Decode reads exactly one MQTT 3.1.1 control packet from r: the fixed
// header, the remaining-length varint, and then a type-specific body of
// precisely remaining-length bytes. Any violation of that byte budget, or of
// a per-type rule, is reported as a *packet.MalformedFrameError.
func Decode(r io.Reader) (Message, error) {
	fh, err := packet.ParseFixedHeader(r)
	if err != nil {
		return nil, err
	}

	body := make([]byte, fh.RemainingLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, wrapShortRead(err, "packet body")
	}
	br := bytes.NewReader(body)

	msg, err := decodeBody(fh, br)
	if err != nil {
		return nil, err
	}

	if remaining := br.Len(); remaining != 0 {
		return nil, malformedf("remaining length mismatch: expected %d, consumed %d", fh.RemainingLength, int(fh.RemainingLength)-remaining)
	}

	return msg, nil
}

func decodeBody(fh packet.FixedHeader, r *bytes.Reader) (Message, error) {
	switch fh.Type {
	case packet.CONNECT:
		return decodeConnect(r)
	case packet.CONNACK:
		return decodeConnAck(r)
	case packet.PUBLISH:
		return decodePublish(fh, r)
	case packet.PUBACK:
		pid, err := decodePacketID(r)
		return PubAck{PacketID: pid}, err
	case packet.PUBREC:
		pid, err := decodePacketID(r)
		return PubRec{PacketID: pid}, err
	case packet.PUBREL:
		pid, err := decodePacketID(r)
		return PubRel{PacketID: pid}, err
	case packet.PUBCOMP:
		pid, err := decodePacketID(r)
		return PubComp{PacketID: pid}, err
	case packet.SUBSCRIBE:
		return decodeSubscribe(fh, r)
	case packet.SUBACK:
		return decodeSubAck(fh, r)
	case packet.UNSUBSCRIBE:
		return decodeUnsubscribe(fh, r)
	case packet.UNSUBACK:
		pid, err := decodePacketID(r)
		return UnsubAck{PacketID: pid}, err
	case packet.PINGREQ:
		return PingReq{}, nil
	case packet.PINGRESP:
		return PingResp{}, nil
	case packet.DISCONNECT:
		return Disconnect{}, nil
	default:
		return nil, malformedf("unknown packet type 0x%02X", byte(fh.Type))
	}
}

func decodePacketID(r io.Reader) (uint16, error) {
	return packet.ReadUint16(r)
}

// decodeQoSBits interprets a two-bit QoS field: 0b00 -> absent (at-most-once),
// 0b01 -> AtLeastOnce, 0b10 -> ExactlyOnce, 0b11 -> malformed.
func decodeQoSBits(bits byte) (*QoS, error) {
	switch bits {
	case 0b00:
		return nil, nil
	case 0b01:
		return qosPtr(AtLeastOnce), nil
	case 0b10:
		return qosPtr(ExactlyOnce), nil
	default:
		return nil, malformed("invalid qos bits 0b11")
	}
}

var connectProtocolName = []byte{0x00, 0x04, 'M', 'Q', 'T', 'T'}

func decodeConnect(r *bytes.Reader) (Message, error) {
	var nameBuf [6]byte
	if _, err := io.ReadFull(r, nameBuf[:]); err != nil {
		return nil, wrapShortRead(err, "protocol name")
	}
	if !bytes.Equal(nameBuf[:], connectProtocolName) {
		return nil, malformed("invalid protocol name, expected MQTT")
	}

	level, err := packet.ReadByte(r)
	if err != nil {
		return nil, wrapShortRead(err, "protocol level")
	}
	if level != 0x04 {
		return nil, malformedf("[MQTT-3.1.2-2] unsupported protocol level 0x%02X, only 0x04 (3.1.1) accepted", level)
	}

	flags, err := packet.ReadByte(r)
	if err != nil {
		return nil, wrapShortRead(err, "connect flags")
	}
	if flags&0x01 != 0 {
		return nil, malformed("[MQTT-3.1.2-3] connect flags reserved bit must be 0")
	}

	keepAlive, err := packet.ReadUint16(r)
	if err != nil {
		return nil, wrapShortRead(err, "keep alive")
	}

	clientID, err := packet.ReadUTF8String(r)
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		return nil, malformed("[MQTT-3.1.3-5] client identifier must not be empty")
	}

	msg := Connect{
		ClientID:     ClientIdentifier(clientID),
		CleanSession: flags&0x02 != 0,
		KeepAlive:    keepAlive,
	}

	if flags&0x04 != 0 { // will flag
		willQoS, err := decodeQoSBits((flags & 0x18) >> 3)
		if err != nil {
			return nil, malformed("[MQTT-3.1.2-14] invalid will qos bits")
		}

		topic, err := packet.ReadUTF8String(r)
		if err != nil {
			return nil, err
		}
		body, err := packet.ReadBlob(r)
		if err != nil {
			return nil, err
		}

		msg.Will = &Will{
			Topic:   topic,
			Message: body,
			QoS:     willQoS,
			Retain:  flags&0x20 != 0,
		}
	}

	if flags&0x80 != 0 { // username flag
		username, err := packet.ReadUTF8String(r)
		if err != nil {
			return nil, err
		}
		msg.Username = &username

		if flags&0x40 != 0 { // password flag, only meaningful with username
			password, err := packet.ReadBlob(r)
			if err != nil {
				return nil, err
			}
			msg.Password = &password
		}
	}

	return msg, nil
}

func decodeConnAck(r *bytes.Reader) (Message, error) {
	ackFlags, err := packet.ReadByte(r)
	if err != nil {
		return nil, wrapShortRead(err, "connack flags")
	}
	if ackFlags&0xFE != 0 {
		return nil, malformed("[MQTT-3.2.2-1] connack reserved bits must be 0")
	}
	sessionPresent := ackFlags&0x01 != 0

	code, err := packet.ReadByte(r)
	if err != nil {
		return nil, wrapShortRead(err, "connack return code")
	}

	if code == 0 {
		return ConnAck{Accepted: true, SessionPresent: sessionPresent}, nil
	}
	if code > 5 {
		return nil, malformedf("invalid connack return code %d", code)
	}
	if sessionPresent {
		return nil, malformed("[MQTT-3.2.2-4] session present must be 0 when return code is non-zero")
	}
	return ConnAck{Accepted: false, Refusal: ConnectionRefusal(code)}, nil
}

func decodePublish(fh packet.FixedHeader, r *bytes.Reader) (Message, error) {
	dup := fh.Flags&0x08 != 0
	retain := fh.Flags&0x01 != 0
	qos, err := decodeQoSBits((fh.Flags & 0x06) >> 1)
	if err != nil {
		return nil, err
	}

	topic, err := packet.ReadUTF8String(r)
	if err != nil {
		return nil, err
	}

	var pid uint16
	if qos != nil {
		pid, err = decodePacketID(r)
		if err != nil {
			return nil, wrapShortRead(err, "publish packet id")
		}
	}

	var payload []byte
	if n := r.Len(); n > 0 {
		payload = make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, wrapShortRead(err, "publish payload")
		}
	}

	return Publish{
		Dup:      dup,
		Retain:   retain,
		Topic:    topic,
		QoS:      qos,
		PacketID: pid,
		Payload:  payload,
	}, nil
}

func decodeSubscribe(fh packet.FixedHeader, r *bytes.Reader) (Message, error) {
	pid, err := decodePacketID(r)
	if err != nil {
		return nil, wrapShortRead(err, "subscribe packet id")
	}

	var filters []Subscription
	for r.Len() > 0 {
		topic, err := packet.ReadUTF8String(r)
		if err != nil {
			return nil, err
		}
		qosByte, err := packet.ReadByte(r)
		if err != nil {
			return nil, wrapShortRead(err, "subscribe qos byte")
		}
		qos, err := decodeQoSBits(qosByte)
		if err != nil || qosByte > 0x02 {
			return nil, malformedf("invalid subscribe qos byte 0x%02X", qosByte)
		}
		filters = append(filters, Subscription{Filter: topic, QoS: qos})
	}

	if len(filters) == 0 {
		return nil, malformed("[MQTT-3.8.3-3] subscribe must contain at least one topic filter")
	}

	return Subscribe{PacketID: pid, Filters: filters}, nil
}

func decodeSubAck(fh packet.FixedHeader, r *bytes.Reader) (Message, error) {
	pid, err := decodePacketID(r)
	if err != nil {
		return nil, wrapShortRead(err, "suback packet id")
	}

	var results []SubAckResult
	for r.Len() > 0 {
		code, err := packet.ReadByte(r)
		if err != nil {
			return nil, wrapShortRead(err, "suback result byte")
		}
		switch code {
		case 0x80:
			results = append(results, SubAckResult{Failure: true})
		case 0x00:
			results = append(results, SubAckResult{})
		case 0x01:
			results = append(results, SubAckResult{QoS: qosPtr(AtLeastOnce)})
		case 0x02:
			results = append(results, SubAckResult{QoS: qosPtr(ExactlyOnce)})
		default:
			return nil, malformedf("invalid suback result byte 0x%02X", code)
		}
	}

	return SubAck{PacketID: pid, Results: results}, nil
}

func decodeUnsubscribe(fh packet.FixedHeader, r *bytes.Reader) (Message, error) {
	pid, err := decodePacketID(r)
	if err != nil {
		return nil, wrapShortRead(err, "unsubscribe packet id")
	}

	var filters []string
	for r.Len() > 0 {
		topic, err := packet.ReadUTF8String(r)
		if err != nil {
			return nil, err
		}
		filters = append(filters, topic)
	}

	if len(filters) == 0 {
		return nil, malformed("[MQTT-3.10.3-2] unsubscribe must contain at least one topic filter")
	}

	return Unsubscribe{PacketID: pid, Filters: filters}, nil
}

func wrapShortRead(err error, what string) error {
	return malformedf("unexpected end of input reading %s: %v", what, err)
}
