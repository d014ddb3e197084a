package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/axmq/mqtt311/mqtt"
)

func TestSubscription(t *testing.T) {
	t.Run("create subscription", func(t *testing.T) {
		sub := &Subscription{
			ClientID:    "client1",
			TopicFilter: "home/+/temperature",
			QoS:         mqtt.QoSPtr(mqtt.AtLeastOnce),
		}

		assert.Equal(t, "client1", sub.ClientID)
		assert.Equal(t, "home/+/temperature", sub.TopicFilter)
		assert.Equal(t, mqtt.AtLeastOnce, *sub.QoS)
	})

	t.Run("subscription at qos 0 has nil QoS", func(t *testing.T) {
		sub := &Subscription{ClientID: "client1", TopicFilter: "home/temperature"}
		assert.Nil(t, sub.QoS)
	})
}
