package topic

import (
	"context"
	"sync"
	"time"

	"github.com/axmq/mqtt311/mqtt"
	"github.com/axmq/mqtt311/store"
)

// RetainedManager wraps a store.RetainedStore with a background sweep that
// evicts expired entries on a fixed interval. Get and Match still check
// expiry inline, so an entry that expired since the last sweep is never
// returned.
type RetainedManager struct {
	store           *store.RetainedStore
	cleanupTicker   *time.Ticker
	cleanupInterval time.Duration
	stopCh          chan struct{}
	wg              sync.WaitGroup
	onCleanup       func(count int)
}

type RetainedConfig struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	OnCleanup       func(count int)

	// Backend is the durable Store[mqtt.Publish] retained messages are
	// written through to. Leave nil to get a MemoryStore[mqtt.Publish],
	// which keeps the write-through path exercised but gives up nothing
	// beyond what an unbacked trie already had; pass a
	// *store.PebbleStore[mqtt.Publish] or *store.RedisStore[mqtt.Publish]
	// for retained messages that actually survive a process restart.
	Backend store.Store[mqtt.Publish]
}

func DefaultRetainedConfig() *RetainedConfig {
	return &RetainedConfig{
		CleanupInterval: 5 * time.Minute,
	}
}

func NewRetainedManager(config *RetainedConfig) *RetainedManager {
	if config == nil {
		config = DefaultRetainedConfig()
	}

	if config.CleanupInterval == 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	backend := config.Backend
	if backend == nil {
		backend = store.NewMemoryStore[mqtt.Publish]()
	}

	retained := store.NewRetainedStore(config.DefaultTTL, backend)
	// Best-effort: an empty or unreadable backend just starts the trie
	// empty rather than blocking manager construction on it.
	_ = retained.Restore(context.Background())

	rm := &RetainedManager{
		store:           retained,
		cleanupInterval: config.CleanupInterval,
		cleanupTicker:   time.NewTicker(config.CleanupInterval),
		stopCh:          make(chan struct{}),
		onCleanup:       config.OnCleanup,
	}

	rm.wg.Add(1)
	go rm.cleanupLoop()

	return rm
}

func (rm *RetainedManager) Set(ctx context.Context, topic string, pub mqtt.Publish) error {
	return rm.store.Set(ctx, topic, pub)
}

func (rm *RetainedManager) Get(ctx context.Context, topic string) (mqtt.Publish, error) {
	return rm.store.Get(ctx, topic)
}

func (rm *RetainedManager) Delete(ctx context.Context, topic string) error {
	return rm.store.Delete(ctx, topic)
}

func (rm *RetainedManager) Match(ctx context.Context, topicFilter string) ([]mqtt.Publish, error) {
	return rm.store.Match(ctx, topicFilter)
}

func (rm *RetainedManager) Count(ctx context.Context) (int64, error) {
	return rm.store.Count(ctx)
}

func (rm *RetainedManager) cleanupLoop() {
	defer rm.wg.Done()

	for {
		select {
		case <-rm.cleanupTicker.C:
			rm.cleanup()
		case <-rm.stopCh:
			return
		}
	}
}

func (rm *RetainedManager) cleanup() {
	ctx := context.Background()
	count, err := rm.store.CleanupExpired(ctx)
	if err == nil && count > 0 && rm.onCleanup != nil {
		rm.onCleanup(count)
	}
}

func (rm *RetainedManager) Close() error {
	close(rm.stopCh)
	rm.cleanupTicker.Stop()
	rm.wg.Wait()
	return rm.store.Close()
}
