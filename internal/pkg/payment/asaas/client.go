package asaas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/quitanza/paycore/internal/pkg/payment"
)

const defaultTimeout = 15 * time.Second

// client is a thin HTTP wrapper around the Asaas v3 REST API. Every call
// carries the access_token header and a bounded timeout.
type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func newClient(baseURL, apiKey string, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiError is the error envelope Asaas returns on non-2xx responses.
type apiError struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

func (c *client) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &payment.ProviderUnavailableError{Provider: ProviderName, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &payment.ProviderUnavailableError{Provider: ProviderName, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.Unmarshal(respBody, out)
	}

	if resp.StatusCode == http.StatusNotFound {
		return &payment.NotFoundError{Identifier: endpoint}
	}

	if resp.StatusCode >= 500 {
		log.Errorf("[Asaas] %s %s returned %d", method, endpoint, resp.StatusCode)
		return &payment.ProviderUnavailableError{
			Provider: ProviderName,
			Err:      fmt.Errorf("asaas returned status %d", resp.StatusCode),
		}
	}

	// 4xx: surface the gateway description as a business error; the raw
	// body stays in our logs only.
	var envelope apiError
	message := fmt.Sprintf("asaas rejected request with status %d", resp.StatusCode)
	if err := json.Unmarshal(respBody, &envelope); err == nil && len(envelope.Errors) > 0 {
		message = envelope.Errors[0].Description
	}
	log.Warnf("[Asaas] %s %s rejected: %s", method, endpoint, message)
	return payment.NewError(payment.CodePaymentError, message)
}

func (c *client) get(ctx context.Context, endpoint string, out interface{}) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *client) post(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *client) delete(ctx context.Context, endpoint string) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func queryEscape(v string) string {
	return url.QueryEscape(v)
}
