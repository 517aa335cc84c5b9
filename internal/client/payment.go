package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"promptmarket/internal/config"
)

type CaptureStatus string

const (
	CaptureSuccess CaptureStatus = "SUCCESS"
	CaptureFailure CaptureStatus = "FAILURE"
)

// ProviderClient is the engine's view of the external payment processor.
type ProviderClient interface {
	CreateProviderOrder(ctx context.Context, amount int64, currency string, returnBaseURL string) (*CreateOrderResult, error)
	// CaptureProviderOrder finalizes a previously approved order. The order id
	// doubles as the processor-side idempotency key. A transport error means
	// the outcome is unknown; a FAILURE result means the processor declined.
	CaptureProviderOrder(ctx context.Context, orderID string) (*CaptureResult, error)
}

type CreateOrderResult struct {
	OrderID    string
	ApproveURL string
}

type CaptureResult struct {
	Status  CaptureStatus
	Amount  int64 // captured amount in cents
	PayerID string
	Reason  string // decline reason when Status is FAILURE
}

type providerClientImpl struct {
	httpClient   *http.Client
	baseAPIURL   string
	clientID     string
	clientSecret string
}

func NewProviderClient(cfg *config.Provider) ProviderClient {
	return &providerClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseAPIURL:   cfg.BaseAPIURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

type providerLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type providerOrderResult struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Links  []providerLink `json:"links"`
}

type providerCaptureResult struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Payer struct {
		PayerID string `json:"payer_id"`
	} `json:"payer"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (c *providerClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseAPIURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *providerClientImpl) CreateProviderOrder(ctx context.Context, amount int64, currency string, returnBaseURL string) (*CreateOrderResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get provider access token: %w", err)
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": currency,
					"value":         centsToValue(amount),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": fmt.Sprintf("%s/api/checkout/success", returnBaseURL),
			"cancel_url": returnBaseURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseAPIURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider create order request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider error %d: %s", resp.StatusCode, string(b))
	}

	var result providerOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	return &CreateOrderResult{
		OrderID:    result.ID,
		ApproveURL: extractApproveURL(result.Links),
	}, nil
}

func (c *providerClientImpl) CaptureProviderOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get provider access token: %w", err)
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseAPIURL, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create capture request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	// Processor-side idempotency key; retried captures of the same order
	// must not move funds twice.
	req.Header.Set("PayPal-Request-Id", orderID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider capture request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read capture response: %w", err)
	}

	var result providerCaptureResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	// 422 is a definitive decline, not an unknown outcome.
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return &CaptureResult{
			Status: CaptureFailure,
			Reason: declineReason(&result),
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider capture failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	captured := int64(0)
	if len(result.PurchaseUnits) > 0 && len(result.PurchaseUnits[0].Payments.Captures) > 0 {
		captured, err = valueToCents(result.PurchaseUnits[0].Payments.Captures[0].Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("parse captured amount: %w", err)
		}
	}

	return &CaptureResult{
		Status:  CaptureSuccess,
		Amount:  captured,
		PayerID: result.Payer.PayerID,
	}, nil
}

func declineReason(result *providerCaptureResult) string {
	if len(result.Details) > 0 {
		return result.Details[0].Issue
	}
	return "DECLINED"
}

func extractApproveURL(links []providerLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}

// centsToValue renders integer cents as the decimal string the provider
// API expects, e.g. 499 -> "4.99".
func centsToValue(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

func valueToCents(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", value, err)
	}
	return d.Mul(decimal.NewFromInt(100)).IntPart(), nil
}
