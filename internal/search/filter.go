package search

import (
	"strconv"
	"strings"

	"veloce-backend/internal/domain"
)

// Filter narrows the catalog to the records matching every active facet.
// Facets are ANDed; multiple values within one facet are ORed. Default
// criteria returns the input slice unchanged (identity law — callers rely
// on it, it is not just an optimization). Pure: no side effects, the input
// slice is never mutated.
func Filter(catalog []domain.CarRecord, criteria FilterCriteria) []domain.CarRecord {
	if criteria.IsDefault() {
		return catalog
	}
	out := make([]domain.CarRecord, 0, len(catalog))
	for _, car := range catalog {
		if Matches(car, criteria) {
			out = append(out, car)
		}
	}
	return out
}

// Matches reports whether a single record passes every active facet check.
func Matches(car domain.CarRecord, fc FilterCriteria) bool {
	if !matchesSet(fc.Brands, car.Brand) {
		return false
	}
	if !matchesModels(fc.Models, car) {
		return false
	}
	if !matchesSet(fc.Categories, car.Category) {
		return false
	}
	if !matchesSet(fc.Years, strconv.Itoa(car.Year)) {
		return false
	}
	if !matchesSet(fc.Colors, car.Color) {
		return false
	}
	if !matchesSet(fc.Gearboxes, car.Transmission) {
		return false
	}
	if !matchesSet(fc.Fuels, car.FuelType) {
		return false
	}
	if fc.priceActive() && !fc.PriceRange.Contains(car.Price) {
		return false
	}
	if fc.mileageActive() {
		// Missing mileage only disqualifies once the user actually
		// narrowed the mileage slider.
		if car.Mileage == nil || !fc.MileageRange.Contains(*car.Mileage) {
			return false
		}
	}
	if fc.Query != "" && !matchesQuery(car, fc.Query) {
		return false
	}
	return true
}

// matchesSet: empty selection = no constraint; otherwise OR over values.
func matchesSet(selected []string, value string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

// matchesModels handles the "<brand>-<model>" encoding of the model facet:
// the record matches a selection when the record's brand is the selection's
// prefix and its name contains the model suffix as a substring
// (case-insensitive). Parsing goes by brand prefix, not first hyphen, so
// hyphenated brands (Mercedes-Benz, Rolls-Royce) resolve correctly.
func matchesModels(selected []string, car domain.CarRecord) bool {
	if len(selected) == 0 {
		return true
	}
	name := strings.ToLower(car.Name)
	prefix := strings.ToLower(car.Brand) + "-"
	for _, sel := range selected {
		lower := strings.ToLower(sel)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		model := lower[len(prefix):]
		if strings.Contains(name, model) {
			return true
		}
	}
	return false
}

// matchesQuery: case-insensitive substring against name, brand, category
// and description; a hit in any one field is enough.
func matchesQuery(car domain.CarRecord, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{car.Name, car.Brand, car.Category, car.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// ModelValue derives the model facet value of a record: the name with a
// leading brand prefix stripped, encoded "<brand>-<suffix>". Derived values
// always match their own record under matchesModels.
func ModelValue(car domain.CarRecord) string {
	model := strings.TrimSpace(car.Name)
	if strings.HasPrefix(strings.ToLower(model), strings.ToLower(car.Brand)) {
		model = strings.TrimSpace(model[len(car.Brand):])
	}
	if model == "" {
		model = strings.TrimSpace(car.Name)
	}
	return car.Brand + "-" + model
}
