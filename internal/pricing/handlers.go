package pricing

import (
	"veloce-backend/internal/domain"
	"veloce-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the pricing form endpoints. Both calculations are pure;
// invalid input comes back as a 422 with the field→message map and the
// form stays interactive.
type Handlers struct {
	Calculator      *Calculator
	DefaultVatRate  float64
	DefaultCurrency string
}

type normalizeBody struct {
	PriceType string   `json:"price_type"`
	Amount    float64  `json:"amount"`
	VatRate   *float64 `json:"vat_rate"`
	Currency  string   `json:"currency"`
}

// NormalizePrice POST /normalize-price
func (h *Handlers) NormalizePrice(c *fiber.Ctx) error {
	var body normalizeBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	vatRate := h.DefaultVatRate
	if body.VatRate != nil {
		vatRate = *body.VatRate
	}
	currency := body.Currency
	if currency == "" {
		currency = h.DefaultCurrency
	}
	breakdown, fieldErrs := Normalize(domain.PriceInput{
		Type:     domain.PriceType(body.PriceType),
		Amount:   body.Amount,
		VatRate:  vatRate,
		Currency: currency,
	})
	if !fieldErrs.Empty() {
		return response.ValidationError(c, fieldErrs)
	}
	return response.Success(c, "Price normalized", breakdown, nil)
}

type feeBody struct {
	CarPrice float64  `json:"car_price"`
	VatRate  *float64 `json:"vat_rate"`
	Currency string   `json:"currency"`
	FeeModel string   `json:"fee_model"`
}

// CalculateFee POST /calculate-fee
func (h *Handlers) CalculateFee(c *fiber.Ctx) error {
	var body feeBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	vatRate := h.DefaultVatRate
	if body.VatRate != nil {
		vatRate = *body.VatRate
	}
	currency := body.Currency
	if currency == "" {
		currency = h.DefaultCurrency
	}
	feeModel := body.FeeModel
	if feeModel == "" {
		feeModel = domain.FeeModelVatOnTop
	}
	result, fieldErrs := h.Calculator.CalculateFee(domain.FeeInput{
		CarPrice: body.CarPrice,
		VatRate:  vatRate,
		Currency: currency,
		FeeModel: feeModel,
	})
	if !fieldErrs.Empty() {
		return response.ValidationError(c, fieldErrs)
	}
	return response.Success(c, "Fee calculated", result, nil)
}

// GetFeeModels GET /get-fee-models — the strategies the publish form offers.
func (h *Handlers) GetFeeModels(c *fiber.Ctx) error {
	return response.Success(c, "Fee models fetched successfully", FeeModels, nil)
}
