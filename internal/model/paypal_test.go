package model_test

import (
	"testing"

	"bookclub-membership/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaypalOrderValidate(t *testing.T) {
	tests := []struct {
		name  string
		order model.PaypalOrder
		err   error
	}{
		{"valid", model.PaypalOrder{ID: "PAY-123", Status: "CREATED"}, nil},
		{"missing id", model.PaypalOrder{Status: "CREATED"}, model.ErrMissingOrderID},
		{"blank id", model.PaypalOrder{ID: "  ", Status: "CREATED"}, model.ErrMissingOrderID},
		{"missing status", model.PaypalOrder{ID: "PAY-123"}, model.ErrMissingOrderStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPaypalOrderApproveURL(t *testing.T) {
	order := model.PaypalOrder{
		ID: "PAY-123",
		Links: []model.PaypalLink{
			{Rel: "self", Href: "https://api.paypal.test/v2/checkout/orders/PAY-123"},
			{Rel: "approve", Href: "https://paypal.test/checkoutnow?token=PAY-123"},
		},
	}

	url, err := order.ApproveURL()
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.test/checkoutnow?token=PAY-123", url)

	order.Links = order.Links[:1]
	_, err = order.ApproveURL()
	assert.ErrorIs(t, err, model.ErrMissingApprovalLink)
}

func TestPaypalErrorBodyText(t *testing.T) {
	assert.Equal(t, "Order not found", model.PaypalErrorBody{Name: "RESOURCE_NOT_FOUND", Message: "Order not found"}.Text())
	assert.Equal(t, "Client Authentication failed", model.PaypalErrorBody{Error: "invalid_client", ErrorDescription: "Client Authentication failed"}.Text())
	assert.Equal(t, "invalid_client", model.PaypalErrorBody{Error: "invalid_client"}.Text())
}
