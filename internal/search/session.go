package search

import (
	"context"
	"sync"

	"veloce-backend/internal/domain"

	"github.com/rs/zerolog/log"
)

// State of a search session. Error is terminal until the next Refresh.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateRefreshing State = "refreshing"
	StateError      State = "error"
)

// DefaultPageSize matches the results grid of the storefront.
const DefaultPageSize = 12

// CatalogProvider supplies the raw catalog: published, unsold cars ordered
// by createdAt descending. Excluding sold records is the provider's
// responsibility, not the session's.
type CatalogProvider interface {
	FetchCatalog(ctx context.Context) ([]domain.CarRecord, error)
}

// Snapshot is the only read surface of a session: everything the results
// page needs in one value.
type Snapshot struct {
	Results           []domain.CarRecord                 `json:"results"`
	Page              int                                `json:"page"`
	PageSize          int                                `json:"page_size"`
	TotalPages        int                                `json:"total_pages"`
	TotalResults      int                                `json:"total_results"`
	FacetCounts       map[domain.FacetKey]map[string]int `json:"facet_counts"`
	ActiveFilterCount int                                `json:"active_filter_count"`
	Criteria          FilterCriteria                     `json:"criteria"`
	State             State                              `json:"state"`
	Error             string                             `json:"error,omitempty"`
}

// Session holds one visitor's filter criteria, query and pagination cursor,
// and recomputes results synchronously on every mutation. All derivation
// goes through the pure functions in this package; the session is the only
// place with mutable state.
type Session struct {
	mu       sync.Mutex
	provider CatalogProvider
	cache    *CatalogCache

	state    State
	errMsg   string
	criteria FilterCriteria
	page     int
	pageSize int

	catalog []domain.CarRecord
	results []domain.CarRecord

	inFlight   bool
	fetchSeq   uint64
	appliedSeq uint64
}

// NewSession creates an Idle session. The cache is shared process-wide
// across sessions; one writer (the fetch completion) per refresh cycle.
func NewSession(provider CatalogProvider, cache *CatalogCache) *Session {
	return &Session{
		provider: provider,
		cache:    cache,
		state:    StateIdle,
		criteria: DefaultCriteria(),
		page:     1,
		pageSize: DefaultPageSize,
	}
}

// Refresh loads the catalog: a fetch within the cache TTL window returns
// the cached catalog without re-invoking the provider; a fetch already in
// flight suppresses the duplicate; a completion older than one already
// applied is ignored (last-write-wins). On failure the session enters the
// Error state with a message and keeps any stale results visible.
func (s *Session) Refresh(ctx context.Context) Snapshot {
	s.mu.Lock()
	if cached, ok := s.cache.Get(); ok {
		s.catalog = cached
		s.recomputeLocked()
		s.state = StateReady
		s.errMsg = ""
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	if s.inFlight {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.inFlight = true
	s.fetchSeq++
	seq := s.fetchSeq
	if s.state == StateReady || s.state == StateRefreshing {
		s.state = StateRefreshing
	} else {
		s.state = StateLoading
	}
	s.mu.Unlock()

	records, err := s.provider.FetchCatalog(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		log.Warn().Err(err).Msg("Catalog fetch failed")
		s.state = StateError
		s.errMsg = "Could not load the catalog. Please retry."
		return s.snapshotLocked()
	}
	if seq <= s.appliedSeq {
		// A newer fetch already completed; drop this one.
		return s.snapshotLocked()
	}
	s.appliedSeq = seq
	s.cache.Set(records)
	s.catalog = records
	s.recomputeLocked()
	s.state = StateReady
	s.errMsg = ""
	return s.snapshotLocked()
}

// SetFilter applies a partial criteria update, resets to page 1 and
// recomputes results.
func (s *Session) SetFilter(patch FilterPatch) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = s.criteria.Apply(patch)
	s.page = 1
	s.recomputeLocked()
	return s.snapshotLocked()
}

// SetQuery replaces the free-text query. Callers are expected to debounce
// keystrokes before calling this.
func (s *Session) SetQuery(query string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Query = query
	s.page = 1
	s.recomputeLocked()
	return s.snapshotLocked()
}

// SetPage moves the pagination cursor; the value is clamped when the
// snapshot is taken.
func (s *Session) SetPage(page int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	s.page = page
	return s.snapshotLocked()
}

// SetPageSize changes the page size and resets to page 1. Non-positive
// sizes fall back to the default.
func (s *Session) SetPageSize(size int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size <= 0 {
		size = DefaultPageSize
	}
	s.pageSize = size
	s.page = 1
	return s.snapshotLocked()
}

// ClearAll resets criteria, query and pagination in one step.
func (s *Session) ClearAll() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = DefaultCriteria()
	s.page = 1
	s.recomputeLocked()
	return s.snapshotLocked()
}

// Snapshot returns the current state without mutating anything.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) recomputeLocked() {
	s.results = Filter(s.catalog, s.criteria)
}

func (s *Session) snapshotLocked() Snapshot {
	pageSlice, page := Paginate(s.results, s.page, s.pageSize)
	s.page = page
	return Snapshot{
		Results:      pageSlice,
		Page:         page,
		PageSize:     s.pageSize,
		TotalPages:   TotalPages(len(s.results), s.pageSize),
		TotalResults: len(s.results),
		// Counts come from the full cached catalog, never the filtered
		// subset, so badges stay stable while the user multi-selects.
		FacetCounts:       Counts(s.catalog),
		ActiveFilterCount: s.criteria.ActiveFilterCount(),
		Criteria:          s.criteria,
		State:             s.state,
		Error:             s.errMsg,
	}
}
