package repository_test

import (
	"context"
	"testing"
	"time"

	"bookclub-membership/internal/client"
	"bookclub-membership/internal/model"
	"bookclub-membership/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) repository.SubscriptionRepository {
	t.Helper()
	db, err := client.InitDatabase("sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	return repository.NewSubscriptionRepository(db)
}

func pending(userID, orderID string, createdAt time.Time) *model.Subscription {
	return &model.Subscription{
		ID:              uuid.Must(uuid.NewV7()).String(),
		UserID:          userID,
		Plan:            model.PlanMonthly,
		Status:          model.SubscriptionPending,
		PaymentProvider: model.ProviderPaypal,
		ProviderOrderID: orderID,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestFindLatestPending(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := pending("U1", "PAY-1", base)
	newer := pending("U1", "PAY-2", base.Add(time.Minute))
	otherUser := pending("U2", "PAY-3", base.Add(2*time.Minute))
	otherProvider := pending("U1", "ST-1", base.Add(3*time.Minute))
	otherProvider.PaymentProvider = "stripe"

	for _, s := range []*model.Subscription{older, newer, otherUser, otherProvider} {
		require.NoError(t, repo.Create(ctx, s))
	}

	t.Run("latest for user and provider", func(t *testing.T) {
		got, err := repo.FindLatestPending(ctx, repository.PendingFilter{UserID: "U1", Provider: model.ProviderPaypal})
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
	})

	t.Run("exact order match", func(t *testing.T) {
		got, err := repo.FindLatestPending(ctx, repository.PendingFilter{UserID: "U1", Provider: model.ProviderPaypal, OrderID: "PAY-1"})
		require.NoError(t, err)
		assert.Equal(t, older.ID, got.ID)
	})

	t.Run("order belongs to another user", func(t *testing.T) {
		_, err := repo.FindLatestPending(ctx, repository.PendingFilter{UserID: "U1", Provider: model.ProviderPaypal, OrderID: "PAY-3"})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("none", func(t *testing.T) {
		_, err := repo.FindLatestPending(ctx, repository.PendingFilter{UserID: "U9", Provider: model.ProviderPaypal})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestActivate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	activated := created.Add(5 * time.Minute)

	sub := pending("U1", "PAY-1", created)
	require.NoError(t, repo.Create(ctx, sub))

	require.NoError(t, repo.Activate(ctx, sub.ID, activated))

	got, err := repo.FindLatestActive(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, model.SubscriptionActive, got.Status)
	assert.True(t, got.UpdatedAt.Equal(activated))
	assert.True(t, got.CreatedAt.Equal(created))

	assert.ErrorIs(t, repo.Activate(ctx, sub.ID, activated), repository.ErrNotPending)
	assert.ErrorIs(t, repo.Activate(ctx, "missing", activated), repository.ErrNotPending)

	_, err = repo.FindLatestPending(ctx, repository.PendingFilter{UserID: "U1", Provider: model.ProviderPaypal})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestIdempotencyKeyIsUniquePerUser(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	now := time.Now().UTC()
	key := "checkout-attempt-1"

	first := pending("U1", "PAY-1", now)
	first.IdempotencyKey = &key
	require.NoError(t, repo.Create(ctx, first))

	dup := pending("U1", "PAY-2", now)
	dup.IdempotencyKey = &key
	assert.Error(t, repo.Create(ctx, dup))

	otherUser := pending("U2", "PAY-3", now)
	otherUser.IdempotencyKey = &key
	require.NoError(t, repo.Create(ctx, otherUser))

	noKey1 := pending("U1", "PAY-4", now)
	noKey2 := pending("U1", "PAY-5", now)
	require.NoError(t, repo.Create(ctx, noKey1))
	require.NoError(t, repo.Create(ctx, noKey2))

	got, err := repo.FindByIdempotencyKey(ctx, "U1", key)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = repo.FindByIdempotencyKey(ctx, "U1", "other")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
