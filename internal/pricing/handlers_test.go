package pricing

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPricingApp() *fiber.App {
	app := fiber.New()
	h := &Handlers{
		Calculator:      NewCalculator(nil),
		DefaultVatRate:  19,
		DefaultCurrency: "EUR",
	}
	app.Post("/normalize-price", h.NormalizePrice)
	app.Post("/calculate-fee", h.CalculateFee)
	app.Get("/get-fee-models", h.GetFeeModels)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestNormalizePrice_Success(t *testing.T) {
	app := setupPricingApp()
	code, body := postJSON(t, app, "/normalize-price", `{"price_type":"exclude","amount":100000,"vat_rate":5}`)

	assert.Equal(t, 200, code)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 100000.0, data["price_excl_vat"])
	assert.Equal(t, 5000.0, data["vat_amount"])
	assert.Equal(t, 105000.0, data["price_incl_vat"])
	// Currency falls back to the configured default.
	assert.Equal(t, "EUR", data["currency"])
}

func TestNormalizePrice_DefaultVatRate(t *testing.T) {
	app := setupPricingApp()
	code, body := postJSON(t, app, "/normalize-price", `{"price_type":"exclude","amount":1000}`)

	assert.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 19.0, data["vat_rate"])
	assert.Equal(t, 190.0, data["vat_amount"])
}

func TestNormalizePrice_ValidationErrorShape(t *testing.T) {
	app := setupPricingApp()
	code, body := postJSON(t, app, "/normalize-price", `{"price_type":"exclude","amount":-5,"vat_rate":150}`)

	assert.Equal(t, 422, code)
	assert.Equal(t, "error", body["status"])
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "Validation failed", errObj["message"])
	details := errObj["details"].(map[string]interface{})
	assert.Contains(t, details, "amount")
	assert.Contains(t, details, "vat_rate")
}

func TestCalculateFee_Success(t *testing.T) {
	app := setupPricingApp()
	code, body := postJSON(t, app, "/calculate-fee", `{"car_price":80000,"vat_rate":19,"fee_model":"vat_on_top"}`)

	assert.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, 2495.0, data["net_fee"])
	assert.InDelta(t, 2969.05, data["total_customer_pays"], 0.001)
}

func TestCalculateFee_DefaultsToVatOnTop(t *testing.T) {
	app := setupPricingApp()
	code, body := postJSON(t, app, "/calculate-fee", `{"car_price":30000}`)

	assert.Equal(t, 200, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "vat_on_top", data["fee_model"])
}

func TestCalculateFee_UnknownModel(t *testing.T) {
	app := setupPricingApp()
	code, body := postJSON(t, app, "/calculate-fee", `{"car_price":30000,"fee_model":"flat"}`)

	assert.Equal(t, 422, code)
	details := body["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "fee_model")
}

func TestGetFeeModels(t *testing.T) {
	app := setupPricingApp()
	req := httptest.NewRequest("GET", "/get-fee-models", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	models := body["data"].([]interface{})
	require.Len(t, models, 2)
	first := models[0].(map[string]interface{})
	assert.Equal(t, "vat_on_top", first["id"])
	assert.NotEmpty(t, first["label"])
}
