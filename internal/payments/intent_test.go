package payments

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"veloce-backend/internal/catalog"
	"veloce-backend/internal/domain"
	"veloce-backend/internal/pricing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStripeCreator struct {
	lastAmount   int64
	lastCurrency string
	lastMetadata map[string]string
	err          error
}

func (f *fakeStripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error) {
	f.lastAmount = amountCents
	f.lastCurrency = currency
	f.lastMetadata = metadata
	if f.err != nil {
		return nil, f.err
	}
	return &StripePaymentIntentResult{ID: "pi_fake", ClientSecret: "pi_fake_secret"}, nil
}

func setupIntentApp(t *testing.T) (*fiber.App, *catalog.Service, *fakeStripeCreator, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CarRecord{}, &domain.CarEvent{}, &domain.FeePayment{}))

	svc := &catalog.Service{DB: db}
	creator := &fakeStripeCreator{}
	payerID := uuid.New()
	h := &Handlers{
		Catalog:       svc,
		Calculator:    pricing.NewCalculator(nil),
		StripeCreator: creator,
		DefaultVat:    19,
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": payerID.String(), "role": "seller"})
		return c.Next()
	})
	app.Post("/create-fee-intent", h.CreateFeeIntent)
	return app, svc, creator, payerID
}

func createListing(t *testing.T, svc *catalog.Service, userID uuid.UUID, priceType domain.PriceType) *domain.CarRecord {
	t.Helper()
	car, fieldErrs, err := svc.CreateCar(context.Background(), catalog.CreateCarInput{
		UserID:       userID,
		Name:         "BMW M3 Competition",
		Brand:        "BMW",
		Category:     "Sedan",
		Year:         2022,
		Color:        "Black",
		Transmission: "Automatic",
		FuelType:     "Petrol",
		PriceType:    priceType,
		Amount:       80000,
		VatRate:      19,
		Currency:     "EUR",
		SellerType:   domain.SellerIndividual,
	})
	require.NoError(t, err)
	require.True(t, fieldErrs.Empty())
	return car
}

func postIntent(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/create-fee-intent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestCreateFeeIntent_Success(t *testing.T) {
	app, svc, creator, payerID := setupIntentApp(t)
	car := createListing(t, svc, payerID, domain.PriceExclude)

	code, body := postIntent(t, app, `{"car_id":"`+car.ID.String()+`"}`)
	require.Equal(t, 200, code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pi_fake", data["payment_intent_id"])
	assert.Equal(t, "pi_fake_secret", data["client_secret"])

	// Car price 95200 (80000 excl + 19%) sits in the 50k–150k band: net fee
	// 2495, plus 19% VAT = 2969.05 → 296905 cents.
	assert.Equal(t, int64(296905), creator.lastAmount)
	assert.Equal(t, "EUR", creator.lastCurrency)
	assert.Equal(t, car.ID.String(), creator.lastMetadata["car_id"])
	assert.Equal(t, payerID.String(), creator.lastMetadata["payer_id"])
	assert.Equal(t, domain.FeeModelVatOnTop, creator.lastMetadata["fee_model"])
	assert.Equal(t, "2495.00", creator.lastMetadata["net_fee"])
}

func TestCreateFeeIntent_VatIncludedModel(t *testing.T) {
	app, svc, creator, payerID := setupIntentApp(t)
	car := createListing(t, svc, payerID, domain.PriceExclude)

	code, _ := postIntent(t, app, `{"car_id":"`+car.ID.String()+`","fee_model":"vat_included"}`)
	require.Equal(t, 200, code)
	// Gross tier amount is what the customer pays.
	assert.Equal(t, int64(249500), creator.lastAmount)
}

func TestCreateFeeIntent_NettoListingRejected(t *testing.T) {
	app, svc, _, payerID := setupIntentApp(t)
	car := createListing(t, svc, payerID, domain.PriceNoVat)

	code, body := postIntent(t, app, `{"car_id":"`+car.ID.String()+`"}`)
	assert.Equal(t, 400, code)
	assert.Equal(t, "Netto listings publish without a fee", body["error"].(map[string]interface{})["message"])
}

func TestCreateFeeIntent_UnknownCar(t *testing.T) {
	app, _, _, _ := setupIntentApp(t)

	code, _ := postIntent(t, app, `{"car_id":"`+uuid.New().String()+`"}`)
	assert.Equal(t, 404, code)

	code, _ = postIntent(t, app, `{"car_id":"nope"}`)
	assert.Equal(t, 400, code)

	code, _ = postIntent(t, app, `{}`)
	assert.Equal(t, 400, code)
}

func TestCreateFeeIntent_UnknownFeeModel(t *testing.T) {
	app, svc, _, payerID := setupIntentApp(t)
	car := createListing(t, svc, payerID, domain.PriceExclude)

	code, body := postIntent(t, app, `{"car_id":"`+car.ID.String()+`","fee_model":"monthly"}`)
	assert.Equal(t, 422, code)
	details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "fee_model")
}
