// Package session owns the per-user conversation state: bounded history, the
// last resolved intent, metadata and the pending reminder slot.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"jenny-assistant-be/internal/pkg/logger"
	"jenny-assistant-be/pkg/assistant"
	"jenny-assistant-be/pkg/store"
)

const (
	DefaultTTL        = 1800 * time.Second
	DefaultMaxHistory = 20
	DefaultKeyPrefix  = "jenny:session:"
)

// MemoryRepository is the process-local snapshot map.
type MemoryRepository interface {
	Save(userID string, snap *store.Snapshot)
	Get(userID string) (*store.Snapshot, bool)
	Delete(userID string)
}

// DurableCache is a string keyed, TTL bearing cache shared between instances.
type DurableCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	TTL        time.Duration
	MaxHistory int
	KeyPrefix  string
}

type Option func(*Store)

// WithClock replaces time.Now, mostly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is safe for concurrent use. Durable cache failures are never returned:
// the first one switches the store to memory-only for the rest of its life.
type Store struct {
	memory  MemoryRepository
	durable DurableCache
	opts    Options
	logger  logger.ILogger
	now     func() time.Time

	mu         sync.Mutex
	memoryOnly atomic.Bool
}

// NewStore builds a session store. durable may be nil, in which case the store
// starts out memory-only.
func NewStore(memory MemoryRepository, durable DurableCache, opts Options, log logger.ILogger, options ...Option) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Store{
		memory:  memory,
		durable: durable,
		opts:    opts,
		logger:  log,
		now:     time.Now,
	}
	for _, o := range options {
		o(s)
	}
	if durable == nil {
		s.memoryOnly.Store(true)
	}
	return s
}

// MemoryOnly reports whether the durable mirror has been disabled.
func (s *Store) MemoryOnly() bool {
	return s.memoryOnly.Load()
}

func (s *Store) Options() Options {
	return s.opts
}

// GetContext returns the live snapshot for the user, creating an empty one when
// none exists or the previous one expired. The returned value is a copy.
func (s *Store) GetContext(ctx context.Context, userID string) (*store.Snapshot, error) {
	return s.mutate(ctx, userID, nil)
}

func (s *Store) AppendHistory(ctx context.Context, userID string, entry store.HistoryEntry) error {
	_, err := s.mutate(ctx, userID, func(snap *store.Snapshot) {
		snap.Append(entry, s.opts.MaxHistory)
	})
	return err
}

func (s *Store) UpdateIntent(ctx context.Context, userID, intent string) error {
	_, err := s.mutate(ctx, userID, func(snap *store.Snapshot) {
		snap.LastIntent = intent
	})
	return err
}

// UpdateMetadata merges kv into the snapshot metadata. The pending_task key is
// routed to the typed slot; a nil value clears it.
func (s *Store) UpdateMetadata(ctx context.Context, userID string, kv map[string]interface{}) error {
	_, err := s.mutate(ctx, userID, func(snap *store.Snapshot) {
		for k, v := range kv {
			if k == store.MetadataPendingTask {
				snap.PendingTask = store.PendingTaskFromValue(v)
				continue
			}
			snap.Metadata[k] = v
		}
	})
	return err
}

func (s *Store) SetPendingTask(ctx context.Context, userID string, task *store.PendingTask) error {
	_, err := s.mutate(ctx, userID, func(snap *store.Snapshot) {
		if task == nil {
			snap.PendingTask = nil
			return
		}
		pt := *task
		snap.PendingTask = &pt
	})
	return err
}

func (s *Store) ClearPendingTask(ctx context.Context, userID string) error {
	return s.SetPendingTask(ctx, userID, nil)
}

// Clear drops both the in-memory and the durable copy.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return assistant.ErrUserRequired
	}
	s.mu.Lock()
	s.memory.Delete(userID)
	s.mu.Unlock()

	if !s.MemoryOnly() {
		if err := s.durable.Delete(ctx, s.key(userID)); err != nil {
			s.degrade("delete", userID, err)
		}
	}
	return nil
}

// mutate runs the find-or-create step, applies fn and writes the result
// through. Durable I/O happens outside the lock.
func (s *Store) mutate(ctx context.Context, userID string, fn func(*store.Snapshot)) (*store.Snapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, assistant.ErrUserRequired
	}

	hydrated := s.loadDurable(ctx, userID)

	s.mu.Lock()
	now := s.now()
	snap := hydrated
	if snap == nil {
		if existing, ok := s.memory.Get(userID); ok && !existing.IsExpired(now, s.opts.TTL) {
			snap = existing
		} else {
			snap = store.NewSnapshot(now)
		}
	}
	if fn != nil {
		fn(snap)
	}
	snap.UpdatedAt = now
	s.memory.Save(userID, snap)
	out := snap.Clone()
	s.mu.Unlock()

	s.writeThrough(ctx, userID, out)
	return out, nil
}

func (s *Store) loadDurable(ctx context.Context, userID string) *store.Snapshot {
	if s.MemoryOnly() {
		return nil
	}
	raw, found, err := s.durable.Get(ctx, s.key(userID))
	if err != nil {
		s.degrade("get", userID, err)
		return nil
	}
	if !found {
		return nil
	}

	var snap store.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.degrade("decode", userID, err)
		return nil
	}
	if snap.IsExpired(s.now(), s.opts.TTL) {
		if err := s.durable.Delete(ctx, s.key(userID)); err != nil {
			s.degrade("delete", userID, err)
		}
		return nil
	}
	return &snap
}

func (s *Store) writeThrough(ctx context.Context, userID string, snap *store.Snapshot) {
	if s.MemoryOnly() {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		s.degrade("encode", userID, err)
		return
	}
	if err := s.durable.Set(ctx, s.key(userID), string(payload), s.opts.TTL); err != nil {
		s.degrade("set", userID, err)
	}
}

func (s *Store) degrade(op, userID string, err error) {
	if s.memoryOnly.CompareAndSwap(false, true) {
		s.logger.Warn("SessionStore", "Durable cache failed, continuing memory-only", map[string]interface{}{
			"op":      op,
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *Store) key(userID string) string {
	return s.opts.KeyPrefix + userID
}
