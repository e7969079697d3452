package domain

// Fee model identifiers. Stable; stored in payment metadata.
const (
	FeeModelVatOnTop    = "vat_on_top"
	FeeModelVatIncluded = "vat_included"
)

// FeeModel describes a selectable fee strategy for the publish form.
type FeeModel struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// FeeInput is what the publish form sends to the fee calculator.
type FeeInput struct {
	CarPrice float64 `json:"car_price"`
	VatRate  float64 `json:"vat_rate"`
	Currency string  `json:"currency"`
	FeeModel string  `json:"fee_model"`
}

// FeeCalculationResult is the full fee breakdown for one car price.
// TotalCustomerPays = NetFee + VatOnFee and BusinessKeeps = NetFee hold
// for every model.
type FeeCalculationResult struct {
	CarPrice          float64 `json:"car_price"`
	VatRate           float64 `json:"vat_rate"`
	Currency          string  `json:"currency"`
	FeeModel          string  `json:"fee_model"`
	NetFee            float64 `json:"net_fee"`
	VatOnFee          float64 `json:"vat_on_fee"`
	TotalCustomerPays float64 `json:"total_customer_pays"`
	BusinessKeeps     float64 `json:"business_keeps"`
}
