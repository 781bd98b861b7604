package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookclub-membership/internal/config"
	"bookclub-membership/internal/metrics"
	"bookclub-membership/internal/model"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

var (
	ErrMissingCredentials = errors.New("paypal client credentials are not configured")
	ErrTokenExchange      = errors.New("paypal token exchange failed")
	ErrOrderCreation      = errors.New("paypal order creation failed")
	ErrOrderQuery         = errors.New("paypal order lookup failed")
	ErrOrderCapture       = errors.New("paypal order capture failed")
)

// APIError is a non-2xx answer from paypal. Message is paypal's own text when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paypal error %d: %s", e.StatusCode, e.Message)
}

func newAPIError(status int, body []byte) *APIError {
	var pe model.PaypalErrorBody
	msg := ""
	if err := json.Unmarshal(body, &pe); err == nil {
		msg = pe.Text()
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

type OrderRequest struct {
	ReferenceID string
	Amount      string // "11.99"
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
	RequestID   string // sent as PayPal-Request-Id when set
}

type PaypalClient interface {
	Name() string
	GetAccessToken(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, accessToken string, order *OrderRequest) (*model.PaypalOrder, error)
	GetOrder(ctx context.Context, accessToken, orderID string) (*model.PaypalOrder, error)
	CaptureOrder(ctx context.Context, accessToken, orderID string) (*model.PaypalOrder, error)
}

type paypalClientImpl struct {
	httpClient         *http.Client
	breaker            *gobreaker.CircuitBreaker[*http.Response]
	logger             *zerolog.Logger
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
}

func NewPaypalClient(paypalCfg *config.Paypal, logger *zerolog.Logger) PaypalClient {
	timeout := paypalCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:             logger,
		baseApiURL:         strings.TrimRight(paypalCfg.BaseApiURL, "/"),
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
	}

	if paypalCfg.Breaker.Enabled {
		c.breaker = newBreaker(model.ProviderPaypal, paypalCfg.Breaker, logger)
	}

	return c
}

func newBreaker(name string, cfg config.Breaker, logger *zerolog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.ProviderBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("payment provider circuit breaker state changed")
			metrics.ProviderBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
}

func (c *paypalClientImpl) Name() string {
	return model.ProviderPaypal
}

func (c *paypalClientImpl) GetAccessToken(ctx context.Context) (string, error) {
	if c.paypalClientID == "" || c.paypalClientSecret == "" {
		return "", ErrMissingCredentials
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.paypalClientID, c.paypalClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var token model.PaypalToken
	if err := c.do(req, "token", &token); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if err := token.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}

	return token.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, accessToken string, order *OrderRequest) (*model.PaypalOrder, error) {
	payload := model.PaypalCreateOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []model.PurchaseUnit{
			{
				ReferenceID: order.ReferenceID,
				Description: order.Description,
				Amount: model.Amount{
					Currency: order.Currency,
					Value:    order.Amount,
				},
			},
		},
		ApplicationContext: model.ApplicationContext{
			UserAction: "PAY_NOW",
			ReturnURL:  order.ReturnURL,
			CancelURL:  order.CancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/orders",
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	if order.RequestID != "" {
		req.Header.Set("PayPal-Request-Id", order.RequestID)
	}

	var result model.PaypalOrder
	if err := c.do(req, "create_order", &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCreation, err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCreation, err)
	}

	return &result, nil
}

func (c *paypalClientImpl) GetOrder(ctx context.Context, accessToken, orderID string) (*model.PaypalOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/checkout/orders/%s", c.baseApiURL, url.PathEscape(orderID)),
		nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	var result model.PaypalOrder
	if err := c.do(req, "get_order", &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderQuery, err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderQuery, err)
	}

	return &result, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, accessToken, orderID string) (*model.PaypalOrder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseApiURL, url.PathEscape(orderID)),
		nil)
	if err != nil {
		return nil, fmt.Errorf("create capture request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	var result model.PaypalOrder
	if err := c.do(req, "capture_order", &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCapture, err)
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderCapture, err)
	}

	return &result, nil
}

// do sends req through the breaker and decodes a 2xx body into out.
func (c *paypalClientImpl) do(req *http.Request, op string, out any) error {
	resp, err := c.execute(req)
	if err != nil {
		c.observe(op, err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(op, err)
		return fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, body)
		c.observe(op, apiErr)
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.observe(op, err)
		return fmt.Errorf("decode paypal response: %w", err)
	}

	c.observe(op, nil)
	return nil
}

// execute counts transport errors and 5xx answers against the breaker, 4xx are passed through.
func (c *paypalClientImpl) execute(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	return c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, newAPIError(resp.StatusCode, body)
		}
		return resp, nil
	})
}

func (c *paypalClientImpl) observe(op string, err error) {
	outcome := "ok"
	var apiErr *APIError
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "breaker_open"
	case errors.As(err, &apiErr):
		outcome = "http_error"
	default:
		outcome = "transport_error"
	}
	metrics.ProviderRequests.WithLabelValues(model.ProviderPaypal, op, outcome).Inc()

	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Str("outcome", outcome).Msg("paypal request failed")
	}
}
