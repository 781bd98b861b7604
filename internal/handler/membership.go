package handler

import (
	"errors"
	"net/http"
	"time"

	"bookclub-membership/internal/dto"
	"bookclub-membership/internal/metrics"
	"bookclub-membership/internal/middleware"
	"bookclub-membership/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const headerIdempotencyKey = "Idempotency-Key"

var errInvalidBody = errors.New("invalid request body")

type MembershipHandler struct {
	membershipService service.MembershipService
	logger            *zerolog.Logger
}

func NewMembershipHandler(membershipService service.MembershipService, logger *zerolog.Logger) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
		logger:            logger,
	}
}

// every failure is reported as 500 with an error message
func (h *MembershipHandler) fail(c echo.Context, op string, err error) error {
	h.logger.Error().
		Err(err).
		Str("op", op).
		Str("reason", service.Reason(err)).
		Msg("request failed")

	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: err.Error(),
	})
}

func (h *MembershipHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		metrics.CheckoutRequests.WithLabelValues("fail", "bad_json").Inc()
		return h.fail(c, "checkout", errInvalidBody)
	}

	result, err := h.membershipService.Checkout(ctx, service.CheckoutInput{
		PlanID:         req.PlanID,
		BearerToken:    middleware.BearerToken(c),
		Origin:         c.Request().Header.Get(echo.HeaderOrigin),
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		metrics.CheckoutRequests.WithLabelValues("fail", service.Reason(err)).Inc()
		metrics.CheckoutDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
		return h.fail(c, "checkout", err)
	}

	metrics.CheckoutRequests.WithLabelValues("ok", "").Inc()
	metrics.CheckoutDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, result)
}

func (h *MembershipHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()
	start := time.Now()

	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		metrics.PaymentVerifyRequests.WithLabelValues("fail", "bad_json").Inc()
		return h.fail(c, "verify_payment", errInvalidBody)
	}

	result, err := h.membershipService.VerifyPayment(ctx, service.VerifyInput{
		OrderID:     req.OrderID,
		Provider:    req.Provider,
		BearerToken: middleware.BearerToken(c),
	})
	if err != nil {
		metrics.PaymentVerifyRequests.WithLabelValues("fail", service.Reason(err)).Inc()
		metrics.PaymentVerifyDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
		return h.fail(c, "verify_payment", err)
	}

	outcome := "completed"
	if !result.Success {
		outcome = "not_completed"
	}
	metrics.PaymentVerifyRequests.WithLabelValues(outcome, "").Inc()
	metrics.PaymentVerifyDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, result)
}

func (h *MembershipHandler) GetMembership(c echo.Context) error {
	ctx := c.Request().Context()

	membership, err := h.membershipService.CurrentMembership(ctx, middleware.BearerToken(c))
	if err != nil {
		return h.fail(c, "get_membership", err)
	}

	return c.JSON(http.StatusOK, membership)
}

func (h *MembershipHandler) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, h.membershipService.ListPlans())
}
