package topic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axmq/mqtt311/mqtt"
	"github.com/axmq/mqtt311/store"
)

func TestNewRetainedManager(t *testing.T) {
	tests := []struct {
		name   string
		config *RetainedConfig
	}{
		{name: "with default config", config: nil},
		{name: "with custom cleanup interval", config: &RetainedConfig{CleanupInterval: time.Minute}},
		{name: "with default ttl", config: &RetainedConfig{DefaultTTL: time.Hour}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := NewRetainedManager(tt.config)
			require.NotNil(t, rm)
			defer rm.Close()
		})
	}
}

func TestRetainedManager_SetAndGet(t *testing.T) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	ctx := context.Background()
	pub := mqtt.Publish{Topic: "test/topic", Payload: []byte("data"), Retain: true}

	require.NoError(t, rm.Set(ctx, "test/topic", pub))

	got, err := rm.Get(ctx, "test/topic")
	require.NoError(t, err)
	assert.Equal(t, pub, got)
}

func TestRetainedManager_GetMissing(t *testing.T) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	_, err := rm.Get(context.Background(), "no/such/topic")
	assert.Error(t, err)
}

func TestRetainedManager_Delete(t *testing.T) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	ctx := context.Background()
	require.NoError(t, rm.Set(ctx, "test/topic", mqtt.Publish{Topic: "test/topic", Payload: []byte("data")}))
	require.NoError(t, rm.Delete(ctx, "test/topic"))

	_, err := rm.Get(ctx, "test/topic")
	assert.Error(t, err)
}

func TestRetainedManager_Match(t *testing.T) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	ctx := context.Background()
	require.NoError(t, rm.Set(ctx, "test/1", mqtt.Publish{Topic: "test/1", Payload: []byte("data1")}))
	require.NoError(t, rm.Set(ctx, "test/2", mqtt.Publish{Topic: "test/2", Payload: []byte("data2")}))

	matched, err := rm.Match(ctx, "test/+")
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestRetainedManager_Count(t *testing.T) {
	rm := NewRetainedManager(nil)
	defer rm.Close()

	ctx := context.Background()
	require.NoError(t, rm.Set(ctx, "test/1", mqtt.Publish{Topic: "test/1", Payload: []byte("data1")}))
	require.NoError(t, rm.Set(ctx, "test/2", mqtt.Publish{Topic: "test/2", Payload: []byte("data2")}))

	count, err := rm.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRetainedManager_CleanupExpired(t *testing.T) {
	var cleaned int
	config := &RetainedConfig{
		DefaultTTL:      5 * time.Millisecond,
		CleanupInterval: 10 * time.Millisecond,
		OnCleanup:       func(count int) { cleaned += count },
	}

	rm := NewRetainedManager(config)
	defer rm.Close()

	ctx := context.Background()
	require.NoError(t, rm.Set(ctx, "test/valid", mqtt.Publish{Topic: "test/valid", Payload: []byte("valid")}))

	assert.Eventually(t, func() bool {
		count, err := rm.Count(ctx)
		return err == nil && count == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRetainedManager_SurvivesRestartOverSameBackend(t *testing.T) {
	backend := store.NewMemoryStore[mqtt.Publish]()
	ctx := context.Background()

	first := NewRetainedManager(&RetainedConfig{Backend: backend})
	require.NoError(t, first.Set(ctx, "a/b", mqtt.Publish{Topic: "a/b", Payload: []byte("v1")}))
	require.NoError(t, first.Close())

	// A second manager built over the same backend picks up what the
	// first one wrote, the way a broker restarting against the same
	// Pebble directory or Redis keyspace would.
	second := NewRetainedManager(&RetainedConfig{Backend: backend})
	defer second.Close()

	got, err := second.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got.Payload)
}

func TestRetainedManager_Close(t *testing.T) {
	rm := NewRetainedManager(nil)

	ctx := context.Background()
	require.NoError(t, rm.Set(ctx, "test/topic", mqtt.Publish{Topic: "test/topic", Payload: []byte("data")}))
	require.NoError(t, rm.Close())

	_, err := rm.Get(ctx, "test/topic")
	assert.Error(t, err)
}
