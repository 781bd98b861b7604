package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookclub-membership/internal/dto"
	"bookclub-membership/internal/logging"
	"bookclub-membership/internal/plan"
	"bookclub-membership/internal/server"
	"bookclub-membership/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMembershipService struct {
	checkoutToken string
	checkoutErr   error
}

func (s *stubMembershipService) Checkout(ctx context.Context, in service.CheckoutInput) (*dto.CheckoutResponse, error) {
	s.checkoutToken = in.BearerToken
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return &dto.CheckoutResponse{URL: "https://paypal.test/approve", OrderID: "PAY-1", Provider: "paypal"}, nil
}

func (s *stubMembershipService) VerifyPayment(ctx context.Context, in service.VerifyInput) (*dto.VerifyPaymentResponse, error) {
	return &dto.VerifyPaymentResponse{Success: true}, nil
}

func (s *stubMembershipService) CurrentMembership(ctx context.Context, bearerToken string) (*dto.MembershipResponse, error) {
	return &dto.MembershipResponse{Plan: "none"}, nil
}

func (s *stubMembershipService) ListPlans() []plan.Plan {
	return plan.All()
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := server.NewServer(&stubMembershipService{}, logging.Nop())

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	srv := server.NewServer(&stubMembershipService{}, logging.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/api/checkout", nil)
	req.Header.Set(echo.HeaderOrigin, "https://books.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	req.Header.Set(echo.HeaderAccessControlRequestHeaders, "authorization, content-type")

	rec := do(t, srv.Handler(), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	allowed := strings.ToLower(rec.Header().Get(echo.HeaderAccessControlAllowHeaders))
	for _, h := range []string{"authorization", "x-client-info", "apikey", "content-type"} {
		assert.Contains(t, allowed, h)
	}
}

func TestCORSOnActualResponse(t *testing.T) {
	srv := server.NewServer(&stubMembershipService{}, logging.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req.Header.Set(echo.HeaderOrigin, "https://books.example.com")

	rec := do(t, srv.Handler(), req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Body.String(), `"monthly"`)
}

func TestCheckoutRoute(t *testing.T) {
	t.Run("bearer token reaches the service", func(t *testing.T) {
		svc := &stubMembershipService{}
		srv := server.NewServer(svc, logging.Nop())

		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"planId":"monthly"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer abc.def.ghi")

		rec := do(t, srv.Handler(), req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"url":"https://paypal.test/approve","orderId":"PAY-1","provider":"paypal"}`, rec.Body.String())
		assert.Equal(t, "abc.def.ghi", svc.checkoutToken)
	})

	t.Run("failure is a 500", func(t *testing.T) {
		svc := &stubMembershipService{checkoutErr: service.ErrMissingPlanID}
		srv := server.NewServer(svc, logging.Nop())

		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

		rec := do(t, srv.Handler(), req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"no plan id provided"}`, rec.Body.String())
	})
}

func TestUnknownRoute(t *testing.T) {
	srv := server.NewServer(&stubMembershipService{}, logging.Nop())

	rec := do(t, srv.Handler(), httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
