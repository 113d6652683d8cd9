package tebex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gamehaven/GameHaven/internal/pkg/env"
)

const defaultAPIEndpoint = "https://headless.tebex.io"

// Client talks to the provider's Headless API using project id / private key
// Basic auth.
type Client struct {
	ProjectID  string
	PrivateKey string
	BaseURL    string

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		ProjectID:  strings.TrimSpace(env.GetEnv("TEBEX_PROJECT_ID", "")),
		PrivateKey: strings.TrimSpace(env.GetEnv("TEBEX_PRIVATE_KEY", "")),
		BaseURL:    strings.TrimRight(env.GetEnv("TEBEX_API_ENDPOINT", defaultAPIEndpoint), "/"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	if strings.TrimSpace(c.ProjectID) == "" || strings.TrimSpace(c.PrivateKey) == "" {
		return errors.New("TEBEX_PROJECT_ID/TEBEX_PRIVATE_KEY are not configured")
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.ProjectID, c.PrivateKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tebex request %s %s failed: status=%d body=%s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// GetRecurringPayment fetches the current state of a recurring payment by its
// provider reference.
func (c *Client) GetRecurringPayment(ctx context.Context, reference string) (*RecurringPayment, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return nil, errors.New("recurring payment reference is required")
	}
	var out RecurringPayment
	if err := c.do(ctx, http.MethodGet, "/api/recurring-payments/"+ref, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPayment fetches payment details by transaction id.
func (c *Client) GetPayment(ctx context.Context, transactionID string) (*Payment, error) {
	txn := strings.TrimSpace(transactionID)
	if txn == "" {
		return nil, errors.New("transaction id is required")
	}
	var out Payment
	if err := c.do(ctx, http.MethodGet, "/api/payments/"+txn+"?type=txn_id", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBasket opens a checkout basket carrying the local user id in the
// custom data so webhooks and payments can be attributed later.
func (c *Client) CreateBasket(ctx context.Context, userID string, completeURL, cancelURL string) (*Basket, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("user id is required")
	}

	payload := map[string]interface{}{
		"complete_auto_redirect": true,
		"complete_url":           completeURL,
		"cancel_url":             cancelURL,
		"custom": map[string]string{
			"userid": userID,
		},
	}

	// The baskets endpoint wraps the basket in a data envelope.
	var out struct {
		Data  Basket `json:"data"`
		Ident string `json:"ident"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/baskets", payload, &out); err != nil {
		return nil, err
	}
	basket := out.Data
	if basket.Ident == "" {
		basket.Ident = out.Ident
	}
	if basket.Ident == "" {
		return nil, errors.New("basket creation returned no ident")
	}
	return &basket, nil
}

// AddPackage puts a package into an open basket.
func (c *Client) AddPackage(ctx context.Context, basketIdent string, packageID int64, variableData map[string]string) error {
	ident := strings.TrimSpace(basketIdent)
	if ident == "" {
		return errors.New("basket ident is required")
	}

	payload := map[string]interface{}{
		"package_id": packageID,
	}
	if len(variableData) > 0 {
		payload["variable_data"] = variableData
	}
	return c.do(ctx, http.MethodPost, "/api/baskets/"+ident+"/packages", payload, nil)
}
