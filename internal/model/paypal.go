package model

import (
	"errors"
	"strings"
)

const (
	PaypalOrderCreated   = "CREATED"
	PaypalOrderApproved  = "APPROVED"
	PaypalOrderCompleted = "COMPLETED"
)

var (
	ErrMissingAccessToken  = errors.New("paypal response has no access_token")
	ErrMissingOrderID      = errors.New("paypal response has no order id")
	ErrMissingOrderStatus  = errors.New("paypal response has no order status")
	ErrMissingApprovalLink = errors.New("paypal order has no approve link")
)

type PaypalToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (t *PaypalToken) Validate() error {
	if strings.TrimSpace(t.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	return nil
}

type PaypalLink struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Method string `json:"method,omitempty"`
}

type Amount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PurchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      Amount `json:"amount"`
}

type ApplicationContext struct {
	BrandName  string `json:"brand_name,omitempty"`
	UserAction string `json:"user_action,omitempty"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
}

type PaypalCreateOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []PurchaseUnit     `json:"purchase_units"`
	ApplicationContext ApplicationContext `json:"application_context"`
}

// PaypalOrder is the subset of the orders v2 resource used by checkout and verification.
type PaypalOrder struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Links  []PaypalLink `json:"links"`
}

func (o *PaypalOrder) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return ErrMissingOrderID
	}
	if strings.TrimSpace(o.Status) == "" {
		return ErrMissingOrderStatus
	}
	return nil
}

func (o *PaypalOrder) ApproveURL() (string, error) {
	for _, link := range o.Links {
		if link.Rel == "approve" && link.Href != "" {
			return link.Href, nil
		}
	}
	return "", ErrMissingApprovalLink
}

func (o *PaypalOrder) IsCompleted() bool {
	return o.Status == PaypalOrderCompleted
}

// PaypalErrorBody covers both the REST error shape and the oauth2 error shape.
type PaypalErrorBody struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (b PaypalErrorBody) Text() string {
	switch {
	case b.Message != "":
		return b.Message
	case b.ErrorDescription != "":
		return b.ErrorDescription
	case b.Name != "":
		return b.Name
	default:
		return b.Error
	}
}
