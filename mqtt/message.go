// Package mqtt implements the MQTT 3.1.1 control packet model and its
// decoder/encoder: the translation between a byte stream and the Message
// values session, subscription, and dispatch layers consume.
package mqtt

import "github.com/axmq/mqtt311/packet"

// QoS is a Quality of Service level. MQTT's third level, at-most-once, has
// no QoS member here: it is represented by the absence of a QoS, i.e. a nil
// *QoS, never by a third enum value. This collapses "no QoS annotation" and
// "QoS 0" into one null-like state, matching the wire's own 0b00 encoding
// for "no packet-id, no QoS semantics beyond fire-and-forget".
type QoS uint8

const (
	AtLeastOnce QoS = 1
	ExactlyOnce QoS = 2
)

func (q QoS) String() string {
	switch q {
	case AtLeastOnce:
		return "AtLeastOnce"
	case ExactlyOnce:
		return "ExactlyOnce"
	default:
		return "INVALID"
	}
}

// QoSPtr is a small helper for constructing a *QoS from a value, for callers
// that don't want to spell out a local variable just to take its address.
func QoSPtr(q QoS) *QoS { return &q }

// qosPtr is the package-internal spelling of QoSPtr, kept so call sites
// inside this package don't stutter the package name.
func qosPtr(q QoS) *QoS { return QoSPtr(q) }

// ConnectionRefusal is the reason a CONNACK refused a connection. The five
// members correspond, in this order, to wire return codes 1..5.
type ConnectionRefusal byte

const (
	UnacceptableProtocolVersion ConnectionRefusal = 1
	IdentifierRejected          ConnectionRefusal = 2
	ServerUnavailable           ConnectionRefusal = 3
	BadUsernameOrPassword       ConnectionRefusal = 4
	NotAuthorized               ConnectionRefusal = 5
)

func (r ConnectionRefusal) String() string {
	switch r {
	case UnacceptableProtocolVersion:
		return "UnacceptableProtocolVersion"
	case IdentifierRejected:
		return "IdentifierRejected"
	case ServerUnavailable:
		return "ServerUnavailable"
	case BadUsernameOrPassword:
		return "BadUsernameOrPassword"
	case NotAuthorized:
		return "NotAuthorized"
	default:
		return "INVALID"
	}
}

// ClientIdentifier wraps a CONNECT client-id. The decoder rejects an empty
// identifier even though MQTT 3.1.1 permits one to request a server-assigned
// id when clean-session is set — an intentional restriction of this codec,
// not of the protocol itself.
type ClientIdentifier string

// Will is the message a broker publishes on a client's behalf after an
// abnormal disconnection. Retain is only meaningful when the Will itself is
// present, which is guaranteed by Will always being carried as a pointer on
// Connect (nil means "no will").
type Will struct {
	Topic   string
	Message []byte
	QoS     *QoS
	Retain  bool
}

// SubAckResult is one entry of a SUBACK's return-code list: either the
// subscription failed outright, or it was granted at the given QoS (nil
// meaning granted at most-once).
type SubAckResult struct {
	Failure bool
	QoS     *QoS
}

// Subscription is one (topic-filter, requested QoS) pair of a SUBSCRIBE
// packet.
type Subscription struct {
	Filter string
	QoS    *QoS
}

// Message is the sealed union of all fourteen MQTT 3.1.1 control packets.
// Concrete implementations are value types in this package; isMessage is
// unexported so no other package may add variants.
type Message interface {
	Type() packet.Type
	isMessage()
}

type Connect struct {
	ClientID     ClientIdentifier
	CleanSession bool
	KeepAlive    uint16
	Will         *Will
	Username     *string
	Password     *[]byte
}

func (Connect) Type() packet.Type { return packet.CONNECT }
func (Connect) isMessage()        {}

// ConnAck is either a refusal or an acceptance carrying session-present.
// Exactly one of Refusal/SessionPresent applies: Accepted indicates which.
type ConnAck struct {
	Accepted       bool
	Refusal        ConnectionRefusal
	SessionPresent bool
}

func (ConnAck) Type() packet.Type { return packet.CONNACK }
func (ConnAck) isMessage()        {}

type Publish struct {
	Dup      bool
	Retain   bool
	Topic    string
	QoS      *QoS
	PacketID uint16
	Payload  []byte
}

func (Publish) Type() packet.Type { return packet.PUBLISH }
func (Publish) isMessage()        {}

type PubAck struct{ PacketID uint16 }

func (PubAck) Type() packet.Type { return packet.PUBACK }
func (PubAck) isMessage()        {}

type PubRec struct{ PacketID uint16 }

func (PubRec) Type() packet.Type { return packet.PUBREC }
func (PubRec) isMessage()        {}

type PubRel struct{ PacketID uint16 }

func (PubRel) Type() packet.Type { return packet.PUBREL }
func (PubRel) isMessage()        {}

type PubComp struct{ PacketID uint16 }

func (PubComp) Type() packet.Type { return packet.PUBCOMP }
func (PubComp) isMessage()        {}

type Subscribe struct {
	PacketID uint16
	Filters  []Subscription
}

func (Subscribe) Type() packet.Type { return packet.SUBSCRIBE }
func (Subscribe) isMessage()        {}

type SubAck struct {
	PacketID uint16
	Results  []SubAckResult
}

func (SubAck) Type() packet.Type { return packet.SUBACK }
func (SubAck) isMessage()        {}

type Unsubscribe struct {
	PacketID uint16
	Filters  []string
}

func (Unsubscribe) Type() packet.Type { return packet.UNSUBSCRIBE }
func (Unsubscribe) isMessage()        {}

type UnsubAck struct{ PacketID uint16 }

func (UnsubAck) Type() packet.Type { return packet.UNSUBACK }
func (UnsubAck) isMessage()        {}

type PingReq struct{}

func (PingReq) Type() packet.Type { return packet.PINGREQ }
func (PingReq) isMessage()        {}

type PingResp struct{}

func (PingResp) Type() packet.Type { return packet.PINGRESP }
func (PingResp) isMessage()        {}

type Disconnect struct{}

func (Disconnect) Type() packet.Type { return packet.DISCONNECT }
func (Disconnect) isMessage()        {}
