package topic

import (
	"context"
	"fmt"
	"testing"

	"github.com/axmq/mqtt311/mqtt"
)

func BenchmarkRetainedManager_Set(b *testing.B) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	ctx := context.Background()
	pub := mqtt.Publish{Topic: "test/topic", Payload: []byte("benchmark payload")}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = rm.Set(ctx, "test/topic", pub)
	}
}

func BenchmarkRetainedManager_Get(b *testing.B) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	ctx := context.Background()
	pub := mqtt.Publish{Topic: "test/topic", Payload: []byte("benchmark payload")}
	rm.Set(ctx, "test/topic", pub)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = rm.Get(ctx, "test/topic")
	}
}

func BenchmarkRetainedManager_Match(b *testing.B) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		topic := fmt.Sprintf("test/%d", i)
		rm.Set(ctx, topic, mqtt.Publish{Topic: topic, Payload: []byte("payload")})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = rm.Match(ctx, "test/+")
	}
}
