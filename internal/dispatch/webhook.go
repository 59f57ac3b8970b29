package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// WebhookClient posts verification codes to an HTTP delivery endpoint (e.g. a
// transactional-mail relay). Delivery failure propagates to the caller.
type WebhookClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewWebhookClient returns a client for the given endpoint and API key.
func NewWebhookClient(baseURL, apiKey string) *WebhookClient {
	return &WebhookClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Send posts the code for email to the endpoint. Does not log the code.
func (c *WebhookClient) Send(ctx context.Context, email, code string) (bool, error) {
	if c.BaseURL == "" {
		return false, fmt.Errorf("dispatch: webhook URL not configured")
	}
	body := map[string]string{
		"recipient": email,
		"code":      code,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("dispatch: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return true, nil
}
