package billing

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

	"github.com/shopspring/decimal"

	"github.com/lexforge/lexforge/internal/pkg/env"
)

const defaultMercadoPagoAPIBaseURL = "https://api.mercadopago.com"

var ErrMercadoPagoNotConfigured = errors.New("MERCADOPAGO_ACCESS_TOKEN is not configured")

type MercadoPagoClient struct {
	AccessToken  string
	APIBaseURL   string
	PublicDomain string

	HTTPClient *http.Client
}

// CheckoutItem describes the single document being sold.
type CheckoutItem struct {
	DocumentID   string
	TemplateName string
	UnitPrice    decimal.Decimal
	PayerName    string
	PayerEmail   string
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Payment is the subset of a Mercado Pago payment used to update documents.
type Payment struct {
	ID                string          `json:"-"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	PaymentMethodID   string          `json:"payment_method_id"`
	DateApproved      *time.Time      `json:"date_approved"`
}

func NewMercadoPagoClientFromEnv() *MercadoPagoClient {
	return &MercadoPagoClient{
		AccessToken:  strings.TrimSpace(env.GetEnv("MERCADOPAGO_ACCESS_TOKEN", "")),
		APIBaseURL:   strings.TrimSpace(env.GetEnv("MERCADOPAGO_API_BASE_URL", defaultMercadoPagoAPIBaseURL)),
		PublicDomain: strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *MercadoPagoClient) Configured() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

// NotificationURL is where Mercado Pago posts payment notifications.
func (c *MercadoPagoClient) NotificationURL() string {
	return c.PublicDomain + "/api/v1/webhooks/mercadopago"
}

// CreatePreference opens a checkout preference for one document.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, item CheckoutItem) (*Preference, error) {
	if !c.Configured() {
		return nil, ErrMercadoPagoNotConfigured
	}
	if strings.TrimSpace(item.DocumentID) == "" {
		return nil, errors.New("document id is required")
	}

	type prefItem struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Quantity    int     `json:"quantity"`
		CurrencyID  string  `json:"currency_id"`
		UnitPrice   float64 `json:"unit_price"`
	}
	type payer struct {
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty"`
	}
	body := map[string]any{
		"items": []prefItem{{
			ID:          item.DocumentID,
			Title:       "Documento Jurídico - " + item.TemplateName,
			Description: "Documento jurídico personalizado",
			Quantity:    1,
			CurrencyID:  "BRL",
			UnitPrice:   item.UnitPrice.InexactFloat64(),
		}},
		"payer": payer{Name: item.PayerName, Email: item.PayerEmail},
		"back_urls": map[string]string{
			"success": c.PublicDomain + "/pagamento/sucesso?document=" + url.QueryEscape(item.DocumentID),
			"failure": c.PublicDomain + "/pagamento/falha?document=" + url.QueryEscape(item.DocumentID),
			"pending": c.PublicDomain + "/pagamento/pendente?document=" + url.QueryEscape(item.DocumentID),
		},
		"auto_return":        "approved",
		"external_reference": item.DocumentID,
		"notification_url":   c.NotificationURL(),
		"payment_methods": map[string]any{
			"installments": 1,
		},
		"statement_descriptor": "LEXFORGE",
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	respBody, err := c.do(ctx, http.MethodPost, "/checkout/preferences", raw)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create preference: %w", err)
	}

	var out Preference
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("mercadopago preference response missing id")
	}
	return &out, nil
}

// GetPayment fetches a payment by id.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if !c.Configured() {
		return nil, ErrMercadoPagoNotConfigured
	}
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, errors.New("payment id is required")
	}

	respBody, err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment %s: %w", id, err)
	}

	var out Payment
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	out.ID = id
	return &out, nil
}

func (c *MercadoPagoClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.APIBaseURL, "/")+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}
