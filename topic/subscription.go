package topic

import (
	"github.com/axmq/mqtt311/mqtt"
)

// Subscription represents an active subscription request made by a client.
type Subscription struct {
	ClientID    string
	TopicFilter string
	QoS         *mqtt.QoS
}

// RetainedMessage represents a retained message held for a topic.
type RetainedMessage struct {
	Publish mqtt.Publish
}

// SubscriberInfo contains subscriber metadata for routing.
type SubscriberInfo struct {
	ClientID string
	QoS      *mqtt.QoS
}
