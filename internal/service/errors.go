package service

import (
	"errors"

	"bookclub-membership/internal/client"
	"bookclub-membership/internal/model"

	"github.com/sony/gobreaker/v2"
)

var (
	ErrMissingPlanID       = errors.New("no plan id provided")
	ErrMissingOrderID      = errors.New("no order id provided")
	ErrMissingProvider     = errors.New("no payment provider provided")
	ErrUnsupportedProvider = errors.New("unsupported payment provider")

	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidUser       = errors.New("could not resolve user from authorization")

	ErrNoPendingSubscription = errors.New("no pending subscription found")
	ErrPersistSubscription   = errors.New("could not record pending subscription")
	ErrIdempotencyKeyReused  = errors.New("idempotency key already used for another checkout")
)

// Reason maps an error to a bounded label for metrics and logs.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMissingPlanID):
		return "missing_plan_id"
	case errors.Is(err, ErrMissingOrderID):
		return "missing_order_id"
	case errors.Is(err, ErrMissingProvider):
		return "missing_provider"
	case errors.Is(err, ErrUnsupportedProvider):
		return "unsupported_provider"
	case errors.Is(err, ErrMissingAuthHeader):
		return "missing_auth"
	case errors.Is(err, ErrInvalidUser):
		return "invalid_user"
	case errors.Is(err, client.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "provider_unavailable"
	case errors.Is(err, client.ErrTokenExchange):
		return "token_exchange"
	case errors.Is(err, client.ErrOrderCreation):
		return "order_creation"
	case errors.Is(err, client.ErrOrderQuery):
		return "order_query"
	case errors.Is(err, client.ErrOrderCapture):
		return "order_capture"
	case errors.Is(err, model.ErrMissingApprovalLink):
		return "missing_approval_link"
	case errors.Is(err, ErrNoPendingSubscription):
		return "no_pending_subscription"
	case errors.Is(err, ErrPersistSubscription):
		return "persist_subscription"
	case errors.Is(err, ErrIdempotencyKeyReused):
		return "idempotency_key_reused"
	default:
		return "unknown"
	}
}
