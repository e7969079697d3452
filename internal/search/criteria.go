package search

// Default range bounds. A range equal to its default places no constraint
// on the catalog; the sidebar sliders start here.
const (
	DefaultPriceMax   = 10_000_000
	DefaultMileageMax = 500_000
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the range (inclusive bounds).
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterCriteria holds every active constraint of the filter sidebar.
// Multiple values inside one facet are ORed; facets are ANDed together.
// The zero-ish value produced by DefaultCriteria matches the whole catalog.
type FilterCriteria struct {
	Brands     []string `json:"brands"`
	Models     []string `json:"models"` // encoded "<brand>-<model>"
	Categories []string `json:"categories"`
	Years      []string `json:"years"`
	Colors     []string `json:"colors"`
	Gearboxes  []string `json:"gearboxes"`
	Fuels      []string `json:"fuels"`

	PriceRange   Range  `json:"price_range"`
	MileageRange Range  `json:"mileage_range"`
	Query        string `json:"query"`
}

// DefaultCriteria returns the "no constraint" criteria: empty sets, full
// ranges, empty query.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		PriceRange:   Range{Min: 0, Max: DefaultPriceMax},
		MileageRange: Range{Min: 0, Max: DefaultMileageMax},
	}
}

// IsDefault reports whether the criteria places no constraint at all.
func (fc FilterCriteria) IsDefault() bool {
	return len(fc.Brands) == 0 &&
		len(fc.Models) == 0 &&
		len(fc.Categories) == 0 &&
		len(fc.Years) == 0 &&
		len(fc.Colors) == 0 &&
		len(fc.Gearboxes) == 0 &&
		len(fc.Fuels) == 0 &&
		!fc.priceActive() &&
		!fc.mileageActive() &&
		fc.Query == ""
}

func (fc FilterCriteria) priceActive() bool {
	return fc.PriceRange != (Range{Min: 0, Max: DefaultPriceMax})
}

func (fc FilterCriteria) mileageActive() bool {
	return fc.MileageRange != (Range{Min: 0, Max: DefaultMileageMax})
}

// ActiveFilterCount is what the "clear all (n)" chip shows: every selected
// facet value counts one, each non-default range counts one, a non-empty
// query counts one.
func (fc FilterCriteria) ActiveFilterCount() int {
	n := len(fc.Brands) + len(fc.Models) + len(fc.Categories) +
		len(fc.Years) + len(fc.Colors) + len(fc.Gearboxes) + len(fc.Fuels)
	if fc.priceActive() {
		n++
	}
	if fc.mileageActive() {
		n++
	}
	if fc.Query != "" {
		n++
	}
	return n
}

// FilterPatch is a partial criteria update from the sidebar. Nil fields are
// left untouched; non-nil fields replace the current selection wholesale
// (an empty slice clears the facet).
type FilterPatch struct {
	Brands     *[]string `json:"brands"`
	Models     *[]string `json:"models"`
	Categories *[]string `json:"categories"`
	Years      *[]string `json:"years"`
	Colors     *[]string `json:"colors"`
	Gearboxes  *[]string `json:"gearboxes"`
	Fuels      *[]string `json:"fuels"`
	PriceRange *Range    `json:"price_range"`
	MileageRange *Range  `json:"mileage_range"`
}

// Apply merges the patch into a copy of the criteria and returns it.
func (fc FilterCriteria) Apply(p FilterPatch) FilterCriteria {
	out := fc
	if p.Brands != nil {
		out.Brands = *p.Brands
	}
	if p.Models != nil {
		out.Models = *p.Models
	}
	if p.Categories != nil {
		out.Categories = *p.Categories
	}
	if p.Years != nil {
		out.Years = *p.Years
	}
	if p.Colors != nil {
		out.Colors = *p.Colors
	}
	if p.Gearboxes != nil {
		out.Gearboxes = *p.Gearboxes
	}
	if p.Fuels != nil {
		out.Fuels = *p.Fuels
	}
	if p.PriceRange != nil {
		out.PriceRange = *p.PriceRange
	}
	if p.MileageRange != nil {
		out.MileageRange = *p.MileageRange
	}
	return out
}
