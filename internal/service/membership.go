package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookclub-membership/internal/auth"
	"bookclub-membership/internal/client"
	"bookclub-membership/internal/dto"
	"bookclub-membership/internal/metrics"
	"bookclub-membership/internal/model"
	"bookclub-membership/internal/plan"
	"bookclub-membership/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type CheckoutInput struct {
	PlanID         string
	BearerToken    string
	Origin         string // caller origin for paypal return/cancel urls, may be empty
	IdempotencyKey string
}

type VerifyInput struct {
	OrderID     string
	Provider    string
	BearerToken string
}

type Options struct {
	DefaultOrigin   string
	MatchOrderID    bool
	CaptureApproved bool
	Clock           func() time.Time
}

type MembershipService interface {
	Checkout(ctx context.Context, in CheckoutInput) (*dto.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, in VerifyInput) (*dto.VerifyPaymentResponse, error)
	CurrentMembership(ctx context.Context, bearerToken string) (*dto.MembershipResponse, error)
	ListPlans() []plan.Plan
}

type membershipServiceImpl struct {
	paypalClient     client.PaypalClient
	identity         auth.IdentityResolver
	subscriptionRepo repository.SubscriptionRepository
	defaultOrigin    string
	matchOrderID     bool
	captureApproved  bool
	now              func() time.Time
	logger           *zerolog.Logger
}

func NewMembershipService(
	paypalClient client.PaypalClient,
	identity auth.IdentityResolver,
	subscriptionRepo repository.SubscriptionRepository,
	opts Options,
	logger *zerolog.Logger,
) MembershipService {
	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &membershipServiceImpl{
		paypalClient:     paypalClient,
		identity:         identity,
		subscriptionRepo: subscriptionRepo,
		defaultOrigin:    strings.TrimRight(opts.DefaultOrigin, "/"),
		matchOrderID:     opts.MatchOrderID,
		captureApproved:  opts.CaptureApproved,
		now:              now,
		logger:           logger,
	}
}

// Checkout records a pending subscription for the caller and returns the paypal approval url.
func (s *membershipServiceImpl) Checkout(ctx context.Context, in CheckoutInput) (*dto.CheckoutResponse, error) {
	if strings.TrimSpace(in.PlanID) == "" {
		return nil, ErrMissingPlanID
	}

	userID, err := s.resolveUser(ctx, in.BearerToken)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("user_id", userID).Str("plan", in.PlanID).Logger()

	selected, known := plan.Get(model.PlanID(in.PlanID))
	if !known {
		selected = plan.Resolve(model.PlanID(in.PlanID))
		logger.Warn().Str("charged_plan", string(selected.ID)).Msg("unknown plan id, using default plan pricing")
	}

	if in.IdempotencyKey != "" {
		replay, err := s.replayCheckout(ctx, userID, in.IdempotencyKey, selected.ID)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	accessToken, err := s.paypalClient.GetAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	origin := s.origin(in.Origin)
	provider := s.paypalClient.Name()

	order, err := s.paypalClient.CreateOrder(ctx, accessToken, &client.OrderRequest{
		ReferenceID: string(selected.ID),
		Amount:      selected.AmountValue(),
		Currency:    selected.Currency,
		Description: selected.Description,
		ReturnURL:   fmt.Sprintf("%s/membership?success=true&provider=%s", origin, provider),
		CancelURL:   fmt.Sprintf("%s/membership?canceled=true&provider=%s", origin, provider),
		RequestID:   in.IdempotencyKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create paypal order: %w", err)
	}
	if order == nil || order.ID == "" {
		return nil, fmt.Errorf("create paypal order: %w: %w", client.ErrOrderCreation, model.ErrMissingOrderID)
	}

	approveURL, linkErr := order.ApproveURL()

	now := s.now()
	sub := &model.Subscription{
		ID:              uuid.Must(uuid.NewV7()).String(),
		UserID:          userID,
		Plan:            selected.ID,
		Status:          model.SubscriptionPending,
		PaymentProvider: provider,
		ProviderOrderID: order.ID,
		ApprovalURL:     approveURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.IdempotencyKey != "" {
		key := in.IdempotencyKey
		sub.IdempotencyKey = &key
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		// a concurrent attempt with the same key may have won the insert
		if in.IdempotencyKey != "" {
			replay, replayErr := s.replayCheckout(ctx, userID, in.IdempotencyKey, selected.ID)
			if errors.Is(replayErr, ErrIdempotencyKeyReused) {
				return nil, replayErr
			}
			if replayErr == nil && replay != nil {
				return replay, nil
			}
		}
		logger.Error().Err(err).Str("order_id", order.ID).Msg("pending subscription insert failed")
		return nil, fmt.Errorf("%w: %w", ErrPersistSubscription, err)
	}
	metrics.SubscriptionTransitions.WithLabelValues(string(model.SubscriptionPending)).Inc()

	if linkErr != nil {
		return nil, fmt.Errorf("paypal order %s: %w", order.ID, linkErr)
	}

	logger.Info().
		Str("order_id", order.ID).
		Str("subscription_id", sub.ID).
		Str("amount", selected.AmountValue()).
		Msg("checkout created")

	return &dto.CheckoutResponse{
		URL:      approveURL,
		OrderID:  order.ID,
		Provider: provider,
	}, nil
}

// replayCheckout returns the stored response for a checkout already recorded under key, or nil.
// A key recorded for a different plan is rejected rather than replayed.
func (s *membershipServiceImpl) replayCheckout(ctx context.Context, userID, key string, planID model.PlanID) (*dto.CheckoutResponse, error) {
	existing, err := s.subscriptionRepo.FindByIdempotencyKey(ctx, userID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find checkout by idempotency key: %w", err)
	}
	if existing.Plan != planID {
		return nil, fmt.Errorf("%w: key was used for plan %s, not %s", ErrIdempotencyKeyReused, existing.Plan, planID)
	}
	if existing.ApprovalURL == "" {
		return nil, fmt.Errorf("paypal order %s: %w", existing.ProviderOrderID, model.ErrMissingApprovalLink)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("order_id", existing.ProviderOrderID).
		Msg("checkout replayed for idempotency key")

	return &dto.CheckoutResponse{
		URL:      existing.ApprovalURL,
		OrderID:  existing.ProviderOrderID,
		Provider: existing.PaymentProvider,
	}, nil
}

// VerifyPayment activates the caller's pending subscription once paypal reports the order completed.
// An order that is not completed yet is a normal outcome, not an error.
func (s *membershipServiceImpl) VerifyPayment(ctx context.Context, in VerifyInput) (*dto.VerifyPaymentResponse, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, ErrMissingOrderID
	}
	if strings.TrimSpace(in.Provider) == "" {
		return nil, ErrMissingProvider
	}
	if in.Provider != s.paypalClient.Name() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, in.Provider)
	}

	userID, err := s.resolveUser(ctx, in.BearerToken)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("user_id", userID).Str("order_id", in.OrderID).Logger()

	accessToken, err := s.paypalClient.GetAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	order, err := s.paypalClient.GetOrder(ctx, accessToken, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("get paypal order: %w", err)
	}

	if s.captureApproved && order.Status == model.PaypalOrderApproved {
		order, err = s.paypalClient.CaptureOrder(ctx, accessToken, in.OrderID)
		if err != nil {
			return nil, fmt.Errorf("capture paypal order: %w", err)
		}
	}

	if !order.IsCompleted() {
		logger.Info().Str("status", order.Status).Msg("payment not completed yet")
		return &dto.VerifyPaymentResponse{
			Success: false,
			Message: order.Status,
		}, nil
	}

	filter := repository.PendingFilter{
		UserID:   userID,
		Provider: in.Provider,
	}
	if s.matchOrderID {
		filter.OrderID = in.OrderID
	}

	sub, err := s.subscriptionRepo.FindLatestPending(ctx, filter)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn().Msg("completed payment has no pending subscription")
		return nil, ErrNoPendingSubscription
	}
	if err != nil {
		return nil, fmt.Errorf("find pending subscription: %w", err)
	}

	if err := s.subscriptionRepo.Activate(ctx, sub.ID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, ErrNoPendingSubscription
		}
		return nil, fmt.Errorf("activate subscription: %w", err)
	}
	metrics.SubscriptionTransitions.WithLabelValues(string(model.SubscriptionActive)).Inc()

	logger.Info().
		Str("subscription_id", sub.ID).
		Str("plan", string(sub.Plan)).
		Msg("subscription activated")

	return &dto.VerifyPaymentResponse{Success: true}, nil
}

func (s *membershipServiceImpl) CurrentMembership(ctx context.Context, bearerToken string) (*dto.MembershipResponse, error) {
	userID, err := s.resolveUser(ctx, bearerToken)
	if err != nil {
		return nil, err
	}

	sub, err := s.subscriptionRepo.FindLatestActive(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &dto.MembershipResponse{Plan: model.PlanNone}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active subscription: %w", err)
	}

	activatedAt := sub.UpdatedAt
	expiresAt := activatedAt.AddDate(0, plan.Resolve(sub.Plan).DurationMonths, 0)

	return &dto.MembershipResponse{
		Plan:           sub.Plan,
		Status:         sub.Status,
		SubscriptionID: sub.ID,
		Provider:       sub.PaymentProvider,
		ActivatedAt:    &activatedAt,
		ExpiresAt:      &expiresAt,
	}, nil
}

func (s *membershipServiceImpl) ListPlans() []plan.Plan {
	return plan.All()
}

func (s *membershipServiceImpl) resolveUser(ctx context.Context, bearerToken string) (string, error) {
	if strings.TrimSpace(bearerToken) == "" {
		return "", ErrMissingAuthHeader
	}

	userID, err := s.identity.ResolveUser(ctx, bearerToken)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}
	if userID == "" {
		return "", ErrInvalidUser
	}

	return userID, nil
}

func (s *membershipServiceImpl) origin(callerOrigin string) string {
	if o := strings.TrimRight(strings.TrimSpace(callerOrigin), "/"); o != "" {
		return o
	}
	return s.defaultOrigin
}
