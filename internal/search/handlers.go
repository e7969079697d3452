package search

import (
	"veloce-backend/internal/middleware"
	"veloce-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the Presentation→Session surface over HTTP. Every
// mutation responds with the fresh snapshot so the results page can render
// without a second round trip.
type Handlers struct {
	Store *Store
}

func (h *Handlers) session(c *fiber.Ctx) *Session {
	return h.Store.GetOrCreate(middleware.GetSearchID(c))
}

// GetResults GET /get-results — loads the catalog (cache-first) and
// returns the current snapshot.
func (h *Handlers) GetResults(c *fiber.Ctx) error {
	snap := h.session(c).Refresh(c.Context())
	if snap.State == StateError {
		// Stale results stay visible; the client shows the retry banner.
		return response.Success(c, "Catalog unavailable, showing cached results", snap, nil)
	}
	return response.Success(c, "Results fetched successfully", snap, nil)
}

// SetFilters POST /set-filters — partial criteria update; omitted fields
// keep their current selection.
func (h *Handlers) SetFilters(c *fiber.Ctx) error {
	var patch FilterPatch
	if err := c.BodyParser(&patch); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	snap := h.session(c).SetFilter(patch)
	return response.Success(c, "Filters applied", snap, nil)
}

type queryBody struct {
	Query string `json:"query"`
}

// SetQuery POST /set-query — the client debounces keystrokes (≥250ms)
// before calling this.
func (h *Handlers) SetQuery(c *fiber.Ctx) error {
	var body queryBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	snap := h.session(c).SetQuery(body.Query)
	return response.Success(c, "Query applied", snap, nil)
}

type pageBody struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// SetPage POST /set-page
func (h *Handlers) SetPage(c *fiber.Ctx) error {
	var body pageBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	snap := h.session(c).SetPage(body.Page)
	return response.Success(c, "Page changed", snap, nil)
}

// SetPageSize POST /set-page-size — resets to page 1.
func (h *Handlers) SetPageSize(c *fiber.Ctx) error {
	var body pageBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	snap := h.session(c).SetPageSize(body.PageSize)
	return response.Success(c, "Page size changed", snap, nil)
}

// ClearFilters POST /clear-filters
func (h *Handlers) ClearFilters(c *fiber.Ctx) error {
	snap := h.session(c).ClearAll()
	return response.Success(c, "Filters cleared", snap, nil)
}

// GetFacets GET /get-facets — sidebar rows for every facet, sorted:
// selected first, then by count, then alphabetically.
func (h *Handlers) GetFacets(c *fiber.Ctx) error {
	s := h.session(c)
	snap := s.Snapshot()
	selected := map[string][]string{
		"brand":    snap.Criteria.Brands,
		"model":    snap.Criteria.Models,
		"category": snap.Criteria.Categories,
		"year":     snap.Criteria.Years,
		"color":    snap.Criteria.Colors,
		"gearbox":  snap.Criteria.Gearboxes,
		"fuel":     snap.Criteria.Fuels,
	}
	facets := make(map[string][]FacetValue, len(snap.FacetCounts))
	for key, counts := range snap.FacetCounts {
		facets[string(key)] = SortedFacet(counts, selected[string(key)])
	}
	return response.Success(c, "Facets fetched successfully", facets, nil)
}
