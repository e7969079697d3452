package pricing

import (
	"math"

	"veloce-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// FeeModels lists the selectable fee strategies in the order the publish
// form shows them.
var FeeModels = []domain.FeeModel{
	{
		ID:          domain.FeeModelVatOnTop,
		Label:       "VAT added on top of fee",
		Description: "The tier fee is the net fee; VAT is charged on top of it.",
	},
	{
		ID:          domain.FeeModelVatIncluded,
		Label:       "VAT included in fee",
		Description: "The tier fee is the final customer price; VAT is carved out of it.",
	},
}

// KnownFeeModel reports whether id names a registered fee model.
func KnownFeeModel(id string) bool {
	for _, m := range FeeModels {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Calculator derives the publishing service fee from a car price. The tier
// table is external configuration; the calculator only guarantees the
// output shape and the TotalCustomerPays = NetFee + VatOnFee identity.
type Calculator struct {
	Tiers TierTable
}

// NewCalculator builds a calculator; a nil/empty table falls back to the
// shipped defaults.
func NewCalculator(tiers TierTable) *Calculator {
	if len(tiers) == 0 {
		tiers = DefaultTierTable()
	}
	return &Calculator{Tiers: tiers}
}

// CalculateFee validates the input and computes the fee breakdown. Invalid
// input returns a field→message map and no partial result. Pure: charging
// the customer is someone else's job.
func (c *Calculator) CalculateFee(in domain.FeeInput) (domain.FeeCalculationResult, domain.FieldErrors) {
	errs := domain.FieldErrors{}
	if math.IsNaN(in.CarPrice) || math.IsInf(in.CarPrice, 0) || in.CarPrice <= 0 {
		errs["car_price"] = "Car price must be a positive number"
	}
	if math.IsNaN(in.VatRate) || math.IsInf(in.VatRate, 0) || in.VatRate < 0 || in.VatRate > 100 {
		errs["vat_rate"] = "VAT rate must be between 0 and 100"
	}
	if !KnownFeeModel(in.FeeModel) {
		errs["fee_model"] = "Unknown fee model"
	}
	if !errs.Empty() {
		return domain.FeeCalculationResult{}, errs
	}

	base := c.Tiers.BaseFee(in.CarPrice)
	var netFee, vatOnFee float64
	switch in.FeeModel {
	case domain.FeeModelVatOnTop:
		netFee = base
		vatOnFee = vatOf(netFee, in.VatRate)
	case domain.FeeModelVatIncluded:
		// The tier amount is the gross customer price; VAT is carved out.
		netFee = exclOf(base, in.VatRate)
		vatOnFee = round2(base - netFee)
	}
	total, _ := decimal.NewFromFloat(netFee).Add(decimal.NewFromFloat(vatOnFee)).Float64()
	return domain.FeeCalculationResult{
		CarPrice:          in.CarPrice,
		VatRate:           in.VatRate,
		Currency:          in.Currency,
		FeeModel:          in.FeeModel,
		NetFee:            netFee,
		VatOnFee:          vatOnFee,
		TotalCustomerPays: total,
		BusinessKeeps:     netFee,
	}, nil
}
