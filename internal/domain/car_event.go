package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Car event types appended by the catalog service and the payments webhook.
const (
	CarEventCreated   = "CREATED"
	CarEventUpdated   = "UPDATED"
	CarEventPublished = "PUBLISHED"
	CarEventFeePaid   = "FEE_PAID"
	CarEventFeeWaived = "FEE_WAIVED"
	CarEventSold      = "SOLD"
)

// CarEvent is an append-only audit row for a car listing.
type CarEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	CarID     uuid.UUID      `gorm:"column:car_id;type:uuid;not null;index" json:"car_id"`
	EventType string         `gorm:"column:event_type;type:varchar(30);not null" json:"event_type"`
	ActorID   *uuid.UUID     `gorm:"column:actor_id;type:uuid" json:"actor_id"`
	EventData datatypes.JSON `gorm:"column:event_data;type:json" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (CarEvent) TableName() string {
	return "CarEvents"
}

func (e *CarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
