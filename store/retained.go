package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/axmq/mqtt311/mqtt"
)

// RetainedMessage is one retained PUBLISH parked at a topic. MQTT 3.1.1 has
// no per-message expiry property (that's a 3.1.1-incompatible 5.0 addition),
// so ExpiresAt is populated only when the store was constructed with a
// positive default TTL; the zero value means "retained until replaced or
// explicitly cleared".
type RetainedMessage struct {
	Publish   mqtt.Publish
	ExpiresAt time.Time
}

// retainedTrieNode represents a node in the retained messages trie
type retainedTrieNode struct {
	children map[string]*retainedTrieNode
	message  *RetainedMessage
	mu       sync.RWMutex
}

// newRetainedTrieNode creates a new trie node
func newRetainedTrieNode() *retainedTrieNode {
	return &retainedTrieNode{
		children: make(map[string]*retainedTrieNode),
	}
}

// RetainedStore holds at most one retained PUBLISH per exact topic, indexed
// by a trie keyed on topic level for fast wildcard lookup during Match. The
// trie is the hot path for Match's wildcard walk; backend is the durable
// Store[mqtt.Publish] (Memory, Pebble, or Redis) that Set/Delete write
// through to, so a process restart can call Restore and rebuild the trie
// instead of starting retained messages over from nothing.
type RetainedStore struct {
	mu         sync.RWMutex
	root       *retainedTrieNode
	count      int64
	closed     bool
	defaultTTL time.Duration
	backend    Store[mqtt.Publish]
}

// NewRetainedStore creates a store with no default expiry: retained messages
// persist until replaced by a new retained PUBLISH or cleared by one with an
// empty payload. Pass a positive defaultTTL to have every Set expire after
// that duration instead. backend receives a write-through copy of every Set
// and Delete, keyed by topic; pass a *PebbleStore[mqtt.Publish] or
// *RedisStore[mqtt.Publish] for actual durability across restarts, or a
// *MemoryStore[mqtt.Publish] when only the in-process trie's own lifetime
// matters.
func NewRetainedStore(defaultTTL time.Duration, backend Store[mqtt.Publish]) *RetainedStore {
	return &RetainedStore{
		root:       newRetainedTrieNode(),
		defaultTTL: defaultTTL,
		backend:    backend,
	}
}

// splitTopicLevels splits a topic into levels by '/'
func splitTopicLevels(topic string) []string {
	if len(topic) == 0 {
		return []string{}
	}

	levels := make([]string, 0, 8)
	start := 0
	for i := 0; i < len(topic); i++ {
		if topic[i] == '/' {
			levels = append(levels, topic[start:i])
			start = i + 1
		}
	}
	levels = append(levels, topic[start:])
	return levels
}

// Set stores pub as the retained message for topic. [MQTT-3.3.1-10]: a
// zero-length payload clears any retained message at that topic instead of
// storing one. The write lands in backend before the trie so a crash
// between the two never leaves backend believing a message is retained
// when the trie already dropped it.
func (r *RetainedStore) Set(ctx context.Context, topic string, pub mqtt.Publish) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrStoreClosed
	}

	if len(pub.Payload) == 0 {
		if err := r.backend.Delete(ctx, topic); err != nil {
			return err
		}
		return r.deleteInternal(topic)
	}

	if err := r.backend.Save(ctx, topic, pub); err != nil {
		return err
	}

	r.insertLocked(topic, pub)
	return nil
}

// insertLocked places pub into the trie at topic. Caller must hold r.mu.
func (r *RetainedStore) insertLocked(topic string, pub mqtt.Publish) {
	retained := &RetainedMessage{Publish: pub}
	if r.defaultTTL > 0 {
		retained.ExpiresAt = time.Now().Add(r.defaultTTL)
	}

	levels := splitTopicLevels(topic)
	node := r.root

	for _, level := range levels {
		node.mu.Lock()
		if node.children[level] == nil {
			node.children[level] = newRetainedTrieNode()
		}
		nextNode := node.children[level]
		node.mu.Unlock()
		node = nextNode
	}

	node.mu.Lock()
	if node.message == nil {
		r.count++
	}
	node.message = retained
	node.mu.Unlock()
}

// Restore rebuilds the trie from backend, for use right after construction
// on process startup so retained messages survive a restart instead of only
// living as long as this trie does. A positive defaultTTL is re-applied
// from the moment of the restore, not the original Set: the backend carries
// no expiry timestamp of its own, only the payload.
func (r *RetainedStore) Restore(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrStoreClosed
	}

	topics, err := r.backend.List(ctx)
	if err != nil {
		return err
	}

	for _, topic := range topics {
		pub, err := r.backend.Load(ctx, topic)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return err
		}
		r.insertLocked(topic, pub)
	}

	return nil
}

func (r *RetainedStore) Get(ctx context.Context, topic string) (mqtt.Publish, error) {
	if ctx.Err() != nil {
		return mqtt.Publish{}, ctx.Err()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return mqtt.Publish{}, ErrStoreClosed
	}

	levels := splitTopicLevels(topic)
	node := r.root

	for _, level := range levels {
		node.mu.RLock()
		nextNode := node.children[level]
		node.mu.RUnlock()

		if nextNode == nil {
			return mqtt.Publish{}, ErrNotFound
		}
		node = nextNode
	}

	node.mu.RLock()
	retained := node.message
	node.mu.RUnlock()

	if retained == nil {
		return mqtt.Publish{}, ErrNotFound
	}
	if !retained.ExpiresAt.IsZero() && time.Now().After(retained.ExpiresAt) {
		return mqtt.Publish{}, ErrNotFound
	}

	return retained.Publish, nil
}

func (r *RetainedStore) Delete(ctx context.Context, topic string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrStoreClosed
	}

	if err := r.backend.Delete(ctx, topic); err != nil {
		return err
	}

	return r.deleteInternal(topic)
}

// deleteInternal removes a retained message from the trie.
// Caller must hold r.mu lock.
func (r *RetainedStore) deleteInternal(topic string) error {
	levels := splitTopicLevels(topic)
	if len(levels) == 0 {
		return nil
	}

	path := make([]*retainedTrieNode, 0, len(levels)+1)
	path = append(path, r.root)
	node := r.root

	for _, level := range levels {
		node.mu.RLock()
		nextNode := node.children[level]
		node.mu.RUnlock()

		if nextNode == nil {
			return nil
		}
		path = append(path, nextNode)
		node = nextNode
	}

	node.mu.Lock()
	if node.message != nil {
		node.message = nil
		r.count--
	}
	node.mu.Unlock()

	for i := len(path) - 1; i > 0; i-- {
		current := path[i]
		parent := path[i-1]

		current.mu.RLock()
		isEmpty := current.message == nil && len(current.children) == 0
		current.mu.RUnlock()

		if !isEmpty {
			break
		}

		parent.mu.Lock()
		for key, child := range parent.children {
			if child == current {
				delete(parent.children, key)
				break
			}
		}
		parent.mu.Unlock()
	}

	return nil
}

// Match returns every retained message whose topic satisfies topicFilter's
// wildcards ('+' and '#').
func (r *RetainedStore) Match(ctx context.Context, topicFilter string) ([]mqtt.Publish, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, ErrStoreClosed
	}

	filterLevels := splitTopicLevels(topicFilter)
	var matched []mqtt.Publish
	now := time.Now()

	r.matchRecursive(r.root, filterLevels, 0, &matched, now)

	return matched, nil
}

func (r *RetainedStore) matchRecursive(node *retainedTrieNode, filterLevels []string, depth int, matched *[]mqtt.Publish, now time.Time) {
	node.mu.RLock()
	defer node.mu.RUnlock()

	if depth == len(filterLevels) {
		if node.message != nil && (node.message.ExpiresAt.IsZero() || now.Before(node.message.ExpiresAt)) {
			*matched = append(*matched, node.message.Publish)
		}
		return
	}

	filterLevel := filterLevels[depth]

	if filterLevel == "#" {
		r.collectAllMessages(node, matched, now)
		return
	}

	if filterLevel == "+" {
		for levelName, child := range node.children {
			if depth == 0 && strings.HasPrefix(levelName, "$") {
				continue
			}
			r.matchRecursive(child, filterLevels, depth+1, matched, now)
		}
		return
	}

	if child := node.children[filterLevel]; child != nil {
		r.matchRecursive(child, filterLevels, depth+1, matched, now)
	}
}

func (r *RetainedStore) collectAllMessages(node *retainedTrieNode, matched *[]mqtt.Publish, now time.Time) {
	if node.message != nil && (node.message.ExpiresAt.IsZero() || now.Before(node.message.ExpiresAt)) {
		*matched = append(*matched, node.message.Publish)
	}

	for _, child := range node.children {
		child.mu.RLock()
		r.collectAllMessages(child, matched, now)
		child.mu.RUnlock()
	}
}

func (r *RetainedStore) CleanupExpired(ctx context.Context) (int, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrStoreClosed
	}

	count := 0
	now := time.Now()

	r.cleanupExpiredRecursive(r.root, now, &count)

	return count, nil
}

func (r *RetainedStore) cleanupExpiredRecursive(node *retainedTrieNode, now time.Time, count *int) {
	node.mu.Lock()

	if node.message != nil && !node.message.ExpiresAt.IsZero() && now.After(node.message.ExpiresAt) {
		node.message = nil
		*count++
		r.count--
	}

	children := make([]*retainedTrieNode, 0, len(node.children))
	for _, child := range node.children {
		children = append(children, child)
	}
	node.mu.Unlock()

	for _, child := range children {
		r.cleanupExpiredRecursive(child, now, count)
	}
}

func (r *RetainedStore) Count(ctx context.Context) (int64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return 0, ErrStoreClosed
	}

	return r.count, nil
}

// Close shuts down the trie. backend outlives it: the same Pebble directory
// or Redis keyspace is handed to a fresh RetainedStore's Restore after a
// process restart, so closing it here would defeat that.
func (r *RetainedStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrStoreClosed
	}

	r.closed = true
	r.root = nil
	r.count = 0
	return nil
}
