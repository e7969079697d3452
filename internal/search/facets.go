package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"veloce-backend/internal/domain"
)

// CountBy tallies how many records carry each value of one facet. Counts
// are always computed over the full, unfiltered catalog so sidebar badges
// stay stable while the user multi-selects; recomputing them from the
// filtered subset is an incompatible behavior. Unknown keys cannot come
// from user input and fail fast.
func CountBy(catalog []domain.CarRecord, key domain.FacetKey) map[string]int {
	counts := make(map[string]int)
	for _, car := range catalog {
		v := facetValue(car, key)
		if v == "" {
			continue
		}
		counts[v]++
	}
	return counts
}

// Counts returns the badge counts for every facet at once, as the snapshot
// sends them to the presentation layer.
func Counts(catalog []domain.CarRecord) map[domain.FacetKey]map[string]int {
	out := make(map[domain.FacetKey]map[string]int, len(domain.FacetKeys))
	for _, key := range domain.FacetKeys {
		out[key] = CountBy(catalog, key)
	}
	return out
}

func facetValue(car domain.CarRecord, key domain.FacetKey) string {
	switch key {
	case domain.FacetBrand:
		return car.Brand
	case domain.FacetModel:
		return ModelValue(car)
	case domain.FacetCategory:
		return car.Category
	case domain.FacetYear:
		return strconv.Itoa(car.Year)
	case domain.FacetColor:
		return car.Color
	case domain.FacetGearbox:
		return car.Transmission
	case domain.FacetFuel:
		return car.FuelType
	default:
		panic(fmt.Sprintf("search: unknown facet key %q", key))
	}
}

// FacetValue is one sidebar row: a value, its badge count and whether the
// user currently has it selected.
type FacetValue struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// SortedFacet orders facet values the way the sidebar renders them:
// selected values first, then by descending count, then alphabetically.
func SortedFacet(counts map[string]int, selected []string) []FacetValue {
	sel := make(map[string]bool, len(selected))
	for _, s := range selected {
		sel[strings.ToLower(s)] = true
	}
	out := make([]FacetValue, 0, len(counts))
	for v, n := range counts {
		out = append(out, FacetValue{Value: v, Count: n, Selected: sel[strings.ToLower(v)]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Selected != out[j].Selected {
			return out[i].Selected
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
