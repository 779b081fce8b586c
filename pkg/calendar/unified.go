package calendar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"jenny-assistant-be/internal/pkg/logger"
)

// SyncStatus is the per provider outcome of Unified.Sync.
type SyncStatus struct {
	Connected bool       `json:"connected"`
	Status    string     `json:"status"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Unified fans calendar calls out to every configured provider. A failing
// provider contributes no events; it never fails the whole call.
type Unified struct {
	providers []Provider
	primary   string
	logger    logger.ILogger
	now       func() time.Time
}

func NewUnified(log logger.ILogger, providers ...Provider) *Unified {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Unified{
		providers: providers,
		primary:   ProviderGoogle,
		logger:    log,
		now:       time.Now,
	}
}

func (u *Unified) SetPrimary(name string) error {
	if u.provider(name) == nil {
		return fmt.Errorf("unknown calendar provider %q", name)
	}
	u.primary = name
	return nil
}

func (u *Unified) Providers() []string {
	out := make([]string, 0, len(u.providers))
	for _, p := range u.providers {
		out = append(out, p.Name())
	}
	return out
}

func (u *Unified) provider(name string) Provider {
	for _, p := range u.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// ListEvents merges the events of all providers, sorted by start and capped at max.
func (u *Unified) ListEvents(ctx context.Context, userID string, start, end time.Time, max int) ([]Event, error) {
	merged := u.fanOut(ctx, "list", func(p Provider) ([]Event, error) {
		return p.ListEvents(ctx, userID, start, end, max)
	})
	return capEvents(merged, max), nil
}

func (u *Unified) SearchEvents(ctx context.Context, userID, query string, start, end time.Time, max int) ([]Event, error) {
	merged := u.fanOut(ctx, "search", func(p Provider) ([]Event, error) {
		return p.SearchEvents(ctx, userID, query, start, end, max)
	})
	return capEvents(merged, max), nil
}

// CreateEvent writes to the primary provider only.
func (u *Unified) CreateEvent(ctx context.Context, userID string, ev NewEvent) (*Event, error) {
	p := u.provider(u.primary)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, u.primary)
	}
	created, err := p.CreateEvent(ctx, userID, ev)
	if err != nil {
		return nil, err
	}
	u.logger.Info("Calendar", "Created event", map[string]interface{}{
		"user_id":  userID,
		"provider": p.Name(),
		"title":    ev.Title,
	})
	return created, nil
}

// Sync probes each provider with a one day listing.
func (u *Unified) Sync(ctx context.Context, userID string) map[string]SyncStatus {
	out := make(map[string]SyncStatus, len(u.providers))
	start := u.now()
	for _, p := range u.providers {
		if _, err := p.ListEvents(ctx, userID, start, start.Add(24*time.Hour), 1); err != nil {
			out[p.Name()] = SyncStatus{Status: "error", Error: err.Error()}
			continue
		}
		synced := u.now()
		out[p.Name()] = SyncStatus{Connected: true, Status: "ok", LastSync: &synced}
	}
	return out
}

func (u *Unified) fanOut(ctx context.Context, op string, call func(Provider) ([]Event, error)) []Event {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		merged []Event
	)
	for _, p := range u.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			events, err := call(p)
			if err != nil {
				if !errors.Is(err, ErrNotConnected) {
					u.logger.Warn("Calendar", "Provider call failed", map[string]interface{}{
						"op":       op,
						"provider": p.Name(),
						"error":    err.Error(),
					})
				}
				return
			}
			mu.Lock()
			merged = append(merged, events...)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Start.Before(merged[j].Start)
	})
	return merged
}

func capEvents(events []Event, max int) []Event {
	if events == nil {
		events = []Event{}
	}
	if max > 0 && len(events) > max {
		return events[:max]
	}
	return events
}
