package search

import "sync"

// Store hands out one Session per storefront visitor, keyed by the search
// cookie. All sessions share one provider and one process-wide catalog
// cache.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	provider CatalogProvider
	cache    *CatalogCache
}

func NewStore(provider CatalogProvider, cache *CatalogCache) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		provider: provider,
		cache:    cache,
	}
}

// GetOrCreate returns the session for the given visitor id, creating an
// Idle one on first sight.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := NewSession(st.provider, st.cache)
	st.sessions[id] = s
	return s
}

// Drop removes a visitor's session (e.g. when the cookie is cleared).
func (st *Store) Drop(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
