package pricing

import (
	"math"

	"veloce-backend/internal/domain"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// round2 rounds to two decimals, half away from zero. All user-facing
// amounts pass through here exactly once.
func round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}

// vatOf computes amount * rate / 100, rounded to two decimals.
func vatOf(amount, rate float64) float64 {
	out, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Div(oneHundred).
		Round(2).
		Float64()
	return out
}

// exclOf strips VAT out of an inclusive amount: incl / (1 + rate/100),
// rounded to two decimals.
func exclOf(incl, rate float64) float64 {
	divisor := decimal.NewFromFloat(rate).Div(oneHundred).Add(decimal.NewFromInt(1))
	out, _ := decimal.NewFromFloat(incl).DivRound(divisor, 2).Float64()
	return out
}

// Normalize converts a price entry into a consistent breakdown where
// PriceInclVat = PriceExclVat + VatAmount and VatAmount derives from
// VatRate. Total function: invalid numeric input yields field errors, never
// a panic or a partial breakdown. Rounding is applied once per field, so a
// round-trip exclude→include→exclude reproduces the original within one
// rounding unit.
func Normalize(in domain.PriceInput) (domain.PriceBreakdown, domain.FieldErrors) {
	errs := domain.FieldErrors{}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		errs["amount"] = "Price must be a number"
	} else if in.Amount < 0 {
		errs["amount"] = "Price cannot be negative"
	}
	if in.Type != domain.PriceNoVat {
		if math.IsNaN(in.VatRate) || math.IsInf(in.VatRate, 0) {
			errs["vat_rate"] = "VAT rate must be a number"
		} else if in.VatRate < 0 || in.VatRate > 100 {
			errs["vat_rate"] = "VAT rate must be between 0 and 100"
		}
	}
	switch in.Type {
	case domain.PriceExclude, domain.PriceInclude, domain.PriceNoVat:
	default:
		errs["price_type"] = "Unknown price type"
	}
	if !errs.Empty() {
		return domain.PriceBreakdown{}, errs
	}

	switch in.Type {
	case domain.PriceExclude:
		excl := round2(in.Amount)
		vat := vatOf(excl, in.VatRate)
		return domain.PriceBreakdown{
			PriceExclVat: excl,
			PriceInclVat: excl + vat,
			VatAmount:    vat,
			VatRate:      in.VatRate,
			Currency:     in.Currency,
		}, nil
	case domain.PriceInclude:
		incl := round2(in.Amount)
		excl := exclOf(incl, in.VatRate)
		return domain.PriceBreakdown{
			PriceExclVat: excl,
			PriceInclVat: incl,
			VatAmount:    round2(incl - excl),
			VatRate:      in.VatRate,
			Currency:     in.Currency,
		}, nil
	default: // no_vat: the displayed price is final, rate forced to zero
		amount := round2(in.Amount)
		return domain.PriceBreakdown{
			PriceExclVat: amount,
			PriceInclVat: amount,
			VatAmount:    0,
			VatRate:      0,
			Currency:     in.Currency,
		}, nil
	}
}
