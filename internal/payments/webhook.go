package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"veloce-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookHandler processes Stripe events for fee payments. Mounted before
// the session middleware so the raw body survives for signature
// verification.
type WebhookHandler struct {
	DB            *gorm.DB
	WebhookSecret string
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntentObject struct {
	ID             string            `json:"id"`
	AmountReceived int               `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
}

// HandleWebhook POST /api/v1/stripe/webhook — raw body, signature
// verification, then process. Domain errors still answer 200 so Stripe
// does not retry forever.
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Stripe-Signature")

	if len(rawBody) == 0 {
		log.Warn().Msg("Stripe webhook received empty body")
		return c.Status(400).SendString("Webhook Error: empty body")
	}

	if err := verifyStripeSignature(rawBody, sig, wh.WebhookSecret); err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Bool("has_secret", wh.WebhookSecret != "").Msg("Stripe webhook signature verification failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	var event stripeEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Warn().Err(err).Msg("Stripe webhook JSON parse failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	if event.Type == "payment_intent.succeeded" {
		var pi paymentIntentObject
		if err := json.Unmarshal(event.Data.Object, &pi); err != nil {
			return c.Status(200).SendString("ok")
		}
		if err := wh.handleFeePaid(pi, event.ID, rawBody); err != nil {
			log.Warn().Err(err).Str("payment_intent", pi.ID).Msg("Fee payment processing failed")
			return c.Status(200).SendString("ok")
		}
	}

	return c.Status(200).SendString("ok")
}

// handleFeePaid records the FeePayment idempotently and appends the
// FEE_PAID event; the publish gate reads the payment row, not the event.
func (wh *WebhookHandler) handleFeePaid(pi paymentIntentObject, eventID string, rawBody []byte) error {
	carIDStr := pi.Metadata["car_id"]
	if carIDStr == "" {
		return nil // not a fee payment, skip silently
	}
	carID, err := uuid.Parse(carIDStr)
	if err != nil {
		return nil
	}

	return wh.DB.Transaction(func(tx *gorm.DB) error {
		// Idempotency: one row per payment intent.
		var existing domain.FeePayment
		if err := tx.Where("stripe_payment_intent_id = ?", pi.ID).First(&existing).Error; err == nil {
			return nil
		}

		var car domain.CarRecord
		if err := tx.Where("car_id = ?", carID).First(&car).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Car not found for fee payment")
			}
			return err
		}

		payment := domain.FeePayment{
			StripePaymentIntentID: pi.ID,
			StripeEventID:         eventID,
			CarID:                 carID,
			FeeModel:              pi.Metadata["fee_model"],
			AmountPaidCents:       pi.AmountReceived,
			Currency:              pi.Currency,
			Status:                pi.Status,
			RawPaymentIntent:      rawBody,
		}
		if payerStr := pi.Metadata["payer_id"]; payerStr != "" {
			if payerID, err := uuid.Parse(payerStr); err == nil {
				payment.PayerID = &payerID
			}
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		eventData, _ := json.Marshal(map[string]interface{}{
			"payment_intent_id": pi.ID,
			"amount_cents":      pi.AmountReceived,
			"fee_model":         payment.FeeModel,
		})
		return tx.Create(&domain.CarEvent{
			CarID:     carID,
			EventType: domain.CarEventFeePaid,
			ActorID:   payment.PayerID,
			EventData: datatypes.JSON(eventData),
		}).Error
	})
}

// verifyStripeSignature verifies the Stripe-Signature header using the
// webhook secret (5-minute tolerance).
func verifyStripeSignature(payload []byte, sigHeader, secret string) error {
	if sigHeader == "" || secret == "" {
		return errors.New("missing signature or secret")
	}

	var timestamp string
	var signatures []string

	parts := strings.Split(sigHeader, ",")
	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return errors.New("invalid signature format")
	}

	signedPayload := timestamp + "." + string(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expectedSig)) {
			ts, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil {
				return errors.New("invalid timestamp")
			}
			diff := time.Now().Unix() - ts
			if diff < 0 {
				diff = -diff
			}
			if diff > 300 {
				return errors.New("timestamp too old")
			}
			return nil
		}
	}

	return errors.New("signature mismatch")
}
