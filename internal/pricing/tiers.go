package pricing

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Tier is one row of the fee tier table: cars priced up to UpTo pay Fee,
// unless Percent is set, in which case the fee is Percent% of the car
// price. The last tier usually has UpTo = 0 (no upper bound).
type Tier struct {
	UpTo    float64 `json:"up_to"`
	Fee     float64 `json:"fee"`
	Percent float64 `json:"percent"`
}

// TierTable maps a car price to a base fee amount. What that amount means
// (net or gross) is decided by the fee model, not the table.
type TierTable []Tier

// DefaultTierTable ships the standard publishing fee bands (EUR).
func DefaultTierTable() TierTable {
	return TierTable{
		{UpTo: 50_000, Fee: 1495},
		{UpTo: 150_000, Fee: 2495},
		{UpTo: 500_000, Fee: 3995},
		{Percent: 0.8}, // above the last band: percentage of car price
	}
}

// ParseTierTable reads a tier table from its JSON form (the FEE_TIER_JSON
// env override). Empty input returns the defaults.
func ParseTierTable(raw string) (TierTable, error) {
	if raw == "" {
		return DefaultTierTable(), nil
	}
	var t TierTable
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, fmt.Errorf("invalid fee tier table: %w", err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("fee tier table must not be empty")
	}
	sort.SliceStable(t, func(i, j int) bool {
		// Unbounded tiers (UpTo == 0) sort last.
		if (t[i].UpTo == 0) != (t[j].UpTo == 0) {
			return t[j].UpTo == 0
		}
		return t[i].UpTo < t[j].UpTo
	})
	return t, nil
}

// BaseFee resolves the tier amount for a car price.
func (t TierTable) BaseFee(carPrice float64) float64 {
	for _, tier := range t {
		if tier.UpTo != 0 && carPrice > tier.UpTo {
			continue
		}
		if tier.Percent > 0 {
			return round2(carPrice * tier.Percent / 100)
		}
		return round2(tier.Fee)
	}
	// Table exhausted with every tier bounded: charge the top band.
	last := t[len(t)-1]
	if last.Percent > 0 {
		return round2(carPrice * last.Percent / 100)
	}
	return round2(last.Fee)
}
