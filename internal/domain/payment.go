package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FeePayment records a succeeded Stripe payment of the publishing service
// fee for one car. Its existence is what flips the "fee paid" side of the
// publish gate; the calculator itself never touches it.
type FeePayment struct {
	PaymentID             uuid.UUID      `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`
	StripePaymentIntentID string         `gorm:"column:stripe_payment_intent_id;uniqueIndex;not null" json:"stripe_payment_intent_id"`
	StripeEventID         string         `gorm:"column:stripe_event_id" json:"stripe_event_id"`
	CarID                 uuid.UUID      `gorm:"column:car_id;type:uuid;not null;index" json:"car_id"`
	PayerID               *uuid.UUID     `gorm:"column:payer_id;type:uuid" json:"payer_id"`
	FeeModel              string         `gorm:"column:fee_model;not null" json:"fee_model"`
	AmountPaidCents       int            `gorm:"column:amount_paid_cents;not null" json:"amount_paid_cents"`
	Currency              string         `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	Status                string         `gorm:"column:status;not null" json:"status"`
	RawPaymentIntent      datatypes.JSON `gorm:"column:raw_payment_intent;type:json" json:"-"`
	CreatedAt             time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (FeePayment) TableName() string {
	return "FeePayments"
}

func (p *FeePayment) BeforeCreate(tx *gorm.DB) error {
	if p.PaymentID == uuid.Nil {
		p.PaymentID = uuid.New()
	}
	return nil
}
