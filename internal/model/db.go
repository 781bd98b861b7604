package model

import "time"

type PlanID string

const (
	PlanMonthly   PlanID = "monthly"
	PlanQuarterly PlanID = "quarterly"
	PlanBiannual  PlanID = "biannual"
	PlanAnnual    PlanID = "annual"

	// PlanNone is shown to members without an active subscription, never stored
	PlanNone PlanID = "none"
)

type SubscriptionStatus string

const (
	SubscriptionPending SubscriptionStatus = "pending"
	SubscriptionActive  SubscriptionStatus = "active"
)

const ProviderPaypal = "paypal"

type Subscription struct {
	ID              string             `gorm:"primaryKey;size:36;not null"` // uuid v7
	UserID          string             `gorm:"size:64;not null;index:idx_sub_lookup,priority:1;uniqueIndex:idx_sub_idempotency,priority:1"`
	Plan            PlanID             `gorm:"size:16;not null"`
	Status          SubscriptionStatus `gorm:"size:16;not null;index:idx_sub_lookup,priority:3"`
	PaymentProvider string             `gorm:"size:32;not null;index:idx_sub_lookup,priority:2"`
	ProviderOrderID string             `gorm:"size:64;index"`
	IdempotencyKey  *string            `gorm:"size:128;uniqueIndex:idx_sub_idempotency,priority:2"`
	ApprovalURL     string             `gorm:"size:512"`
	CreatedAt       time.Time          `gorm:"index"`
	UpdatedAt       time.Time
}
