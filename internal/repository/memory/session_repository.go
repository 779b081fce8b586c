package memory

import (
	"jenny-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps snapshots in process memory. Items never expire on
// their own: the session store decides expiry lazily when reading.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// No default expiration and no janitor
	c := cache.New(cache.NoExpiration, 0)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(userID string, snap *store.Snapshot) {
	r.cache.Set(userID, snap, cache.NoExpiration)
}

func (r *SessionRepository) Get(userID string) (*store.Snapshot, bool) {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.Snapshot), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(userID string) {
	r.cache.Delete(userID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
