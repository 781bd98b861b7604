package dto

import (
	"time"

	"bookclub-membership/internal/model"
)

type CheckoutRequest struct {
	PlanID string `json:"planId"`
}

type CheckoutResponse struct {
	URL      string `json:"url"`
	OrderID  string `json:"orderId"`
	Provider string `json:"provider"`
}

type VerifyPaymentRequest struct {
	OrderID  string `json:"orderId"`
	Provider string `json:"provider"`
}

type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type MembershipResponse struct {
	Plan           model.PlanID             `json:"plan"`
	Status         model.SubscriptionStatus `json:"status,omitempty"`
	SubscriptionID string                   `json:"subscriptionId,omitempty"`
	Provider       string                   `json:"provider,omitempty"`
	ActivatedAt    *time.Time               `json:"activatedAt,omitempty"`
	ExpiresAt      *time.Time               `json:"expiresAt,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
