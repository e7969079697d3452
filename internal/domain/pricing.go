package domain

// PriceType selects how a seller entered the price of a car.
type PriceType string

const (
	// PriceExclude: the entered amount is tax-exclusive; VAT is added.
	PriceExclude PriceType = "exclude"
	// PriceInclude: the entered amount already contains VAT.
	PriceInclude PriceType = "include"
	// PriceNoVat: netto pricing, no tax arithmetic at all.
	PriceNoVat PriceType = "no_vat"
)

// PriceInput is what the pricing form sends. Amount carries the entered
// price; its meaning depends on Type.
type PriceInput struct {
	Type     PriceType `json:"price_type"`
	Amount   float64   `json:"amount"`
	VatRate  float64   `json:"vat_rate"`
	Currency string    `json:"currency"`
}

// PriceBreakdown is the normalized, internally consistent view of a price:
// PriceInclVat = PriceExclVat + VatAmount, two-decimal rounded.
type PriceBreakdown struct {
	PriceExclVat float64 `json:"price_excl_vat"`
	PriceInclVat float64 `json:"price_incl_vat"`
	VatAmount    float64 `json:"vat_amount"`
	VatRate      float64 `json:"vat_rate"`
	Currency     string  `json:"currency"`
}

// FieldErrors maps an input field name to a human-readable message.
// A nil/empty map means the input was valid. This is the only error
// channel for user-facing arithmetic; it is never a thrown error.
type FieldErrors map[string]string

// Empty reports whether there are no field errors.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}
