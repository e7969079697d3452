package payments

import (
	"math"
	"strconv"

	"veloce-backend/internal/catalog"
	"veloce-backend/internal/domain"
	"veloce-backend/internal/middleware"
	"veloce-backend/internal/pkg/response"
	"veloce-backend/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripePaymentIntentCreator abstracts PaymentIntent creation for
// testability.
type StripePaymentIntentCreator interface {
	Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error)
}

type StripePaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// RealStripeCreator uses the Stripe Go SDK to create PaymentIntents.
type RealStripeCreator struct {
	SecretKey string
}

func (r *RealStripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error) {
	if r.SecretKey == "" {
		return nil, fiber.NewError(501, "Stripe integration pending")
	}
	stripe.Key = r.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &StripePaymentIntentResult{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Handlers creates fee PaymentIntents. The fee calculator stays pure;
// charging the customer happens here, and the webhook flips the paid flag.
type Handlers struct {
	Catalog       *catalog.Service
	Calculator    *pricing.Calculator
	StripeCreator StripePaymentIntentCreator
	DefaultVat    float64
}

type feeIntentBody struct {
	CarID    string   `json:"car_id"`
	VatRate  *float64 `json:"vat_rate"`
	FeeModel string   `json:"fee_model"`
}

// CreateFeeIntent POST /create-fee-intent — computes the publishing fee
// for the car and opens a Stripe PaymentIntent over TotalCustomerPays.
func (h *Handlers) CreateFeeIntent(c *fiber.Ctx) error {
	var body feeIntentBody
	if err := c.BodyParser(&body); err != nil || body.CarID == "" {
		return response.Error(c, "Missing required field: car_id", 400, nil)
	}
	carID, err := uuid.Parse(body.CarID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for car_id", 400, nil)
	}
	payerID := middleware.GetUserID(c)

	car, err := h.Catalog.GetCarByID(c.Context(), carID)
	if err != nil {
		if err == catalog.ErrCarNotFound {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	if car.IsNettoPrice {
		return response.Error(c, "Netto listings publish without a fee", 400, nil)
	}

	vatRate := h.DefaultVat
	if body.VatRate != nil {
		vatRate = *body.VatRate
	} else if car.VatRate != nil {
		vatRate = *car.VatRate
	}
	feeModel := body.FeeModel
	if feeModel == "" {
		feeModel = domain.FeeModelVatOnTop
	}
	result, fieldErrs := h.Calculator.CalculateFee(domain.FeeInput{
		CarPrice: car.Price,
		VatRate:  vatRate,
		Currency: car.Currency,
		FeeModel: feeModel,
	})
	if !fieldErrs.Empty() {
		return response.ValidationError(c, fieldErrs)
	}

	if h.StripeCreator == nil {
		return response.Error(c, "Stripe not configured", 500, nil)
	}
	amountCents := int64(math.Round(result.TotalCustomerPays * 100))
	pi, err := h.StripeCreator.Create(amountCents, result.Currency, map[string]string{
		"car_id":    car.ID.String(),
		"payer_id":  payerID,
		"fee_model": result.FeeModel,
		"net_fee":   strconv.FormatFloat(result.NetFee, 'f', 2, 64),
	})
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}

	return response.Success(c, "Payment intent created", fiber.Map{
		"payment_intent_id": pi.ID,
		"client_secret":     pi.ClientSecret,
		"fee":               result,
	}, nil)
}
