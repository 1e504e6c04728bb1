package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"billing_app_echo/internal/config"
)

// PaymentDetail is the authoritative provider record for a payment
type PaymentDetail struct {
	ID                string
	Status            string
	TransactionAmount float64
	PaymentMethodID   string
	PaymentTypeID     string
	ExternalReference string
	Metadata          map[string]interface{}
}

// MetadataString extracts a string metadata field, empty when absent
func (d *PaymentDetail) MetadataString(key string) string {
	if d.Metadata == nil {
		return ""
	}
	if val, ok := d.Metadata[key].(string); ok {
		return val
	}
	return ""
}

// PreferenceItem is a single line item of a checkout preference
type PreferenceItem struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	CurrencyID string  `json:"currency_id"`
	UnitPrice  float64 `json:"unit_price"`
}

// PreferenceBackURLs are the redirect targets after checkout
type PreferenceBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceRequest describes a new payment intent
type PreferenceRequest struct {
	Items               []PreferenceItem
	PayerEmail          string
	PayerName           string
	BackURLs            PreferenceBackURLs
	AutoReturn          string
	ExternalReference   string
	NotificationURL     string
	Metadata            map[string]interface{}
	StatementDescriptor string
	ExpiresAt           *time.Time
}

// PreferenceResponse is the created payment intent
type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// PaymentProvider is the payment-processing collaborator. Implementations
// must bound every call by a short timeout; a timeout or provider-side 5xx
// surfaces as a retryable error so the webhook sender redelivers.
type PaymentProvider interface {
	FetchPaymentDetail(ctx context.Context, paymentID string) (*PaymentDetail, error)
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*PreferenceResponse, error)
}

// MercadoPagoService talks to the MercadoPago REST API
type MercadoPagoService struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

func NewMercadoPagoService(cfg *config.Config) *MercadoPagoService {
	return &MercadoPagoService{
		baseURL:     cfg.MercadoPagoBaseURL,
		accessToken: cfg.MercadoPagoAccessToken,
		client:      &http.Client{Timeout: cfg.ProviderTimeout},
	}
}

func (s *MercadoPagoService) makeRequest(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return NewUnknownError("failed to marshal provider payload", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", s.baseURL, endpoint), bodyReader)
	if err != nil {
		return NewUnknownError("failed to create provider request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		// Timeouts and transport failures are transient; the sender retries
		return NewRetryableError("payment provider unreachable", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 500 {
		return NewRetryableError(
			fmt.Sprintf("payment provider returned status %d", resp.StatusCode),
			fmt.Errorf("%s", string(body)),
		)
	}
	if resp.StatusCode >= 400 {
		return NewUnknownError(
			fmt.Sprintf("payment provider rejected request with status %d", resp.StatusCode),
			fmt.Errorf("%s", string(body)),
		)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return NewUnknownError("failed to decode provider response", err)
		}
	}
	return nil
}

// FetchPaymentDetail retrieves the authoritative record for a payment id
func (s *MercadoPagoService) FetchPaymentDetail(ctx context.Context, paymentID string) (*PaymentDetail, error) {
	var raw struct {
		ID                json.Number            `json:"id"`
		Status            string                 `json:"status"`
		TransactionAmount float64                `json:"transaction_amount"`
		PaymentMethodID   string                 `json:"payment_method_id"`
		PaymentTypeID     string                 `json:"payment_type_id"`
		ExternalReference string                 `json:"external_reference"`
		Metadata          map[string]interface{} `json:"metadata"`
	}

	if err := s.makeRequest(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &raw); err != nil {
		return nil, err
	}

	id := raw.ID.String()
	if id == "" {
		id = paymentID
	}

	return &PaymentDetail{
		ID:                id,
		Status:            raw.Status,
		TransactionAmount: raw.TransactionAmount,
		PaymentMethodID:   raw.PaymentMethodID,
		PaymentTypeID:     raw.PaymentTypeID,
		ExternalReference: raw.ExternalReference,
		Metadata:          raw.Metadata,
	}, nil
}

// CreatePreference creates a new checkout preference (payment intent)
func (s *MercadoPagoService) CreatePreference(ctx context.Context, req *PreferenceRequest) (*PreferenceResponse, error) {
	payload := map[string]interface{}{
		"items": req.Items,
		"payer": map[string]string{
			"email": req.PayerEmail,
			"name":  req.PayerName,
		},
		"back_urls":          req.BackURLs,
		"auto_return":        req.AutoReturn,
		"external_reference": req.ExternalReference,
	}
	if req.NotificationURL != "" {
		payload["notification_url"] = req.NotificationURL
	}
	if req.Metadata != nil {
		payload["metadata"] = req.Metadata
	}
	if req.StatementDescriptor != "" {
		payload["statement_descriptor"] = req.StatementDescriptor
	}
	if req.ExpiresAt != nil {
		payload["expires"] = true
		payload["expiration_date_to"] = req.ExpiresAt.Format(time.RFC3339)
	}

	var resp PreferenceResponse
	if err := s.makeRequest(ctx, http.MethodPost, "/checkout/preferences", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
