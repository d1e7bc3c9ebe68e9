// Package backendfn calls the hosted backend's named server functions.
// They are black-box RPCs: a JSON body in, { success: bool, ...payload }
// or an error out. Failures surface to the caller; there is no retry.
package backendfn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// Function names exposed by the hosted backend.
const (
	FnSendEmailCampaign = "send-email-campaign"
	FnImportSubscribers = "import-subscribers"
)

// Response is the common function envelope. Payload keeps whatever extra
// fields the function returned.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Payload json.RawMessage `json:"-"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*Response]
	log     *logrus.Logger
}

func NewClient(baseURL, apiKey string, log *logrus.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    "backend-functions",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*Response](settings),
		log:     log,
	}
}

// Invoke calls a named function with a JSON body. A response whose
// success flag is false is an application-level rejection, not a breaker
// failure, so it does not count toward tripping.
func (c *Client) Invoke(ctx context.Context, name string, body interface{}) (*Response, error) {
	return c.breaker.Execute(func() (*Response, error) {
		return c.post(ctx, name, body)
	})
}

// SendEmailCampaign triggers the campaign-sending function.
func (c *Client) SendEmailCampaign(ctx context.Context, campaignID string) (*Response, error) {
	return c.Invoke(ctx, FnSendEmailCampaign, map[string]string{"campaign_id": campaignID})
}

// ImportSubscribers pushes parsed CSV rows to the subscriber-import
// function.
func (c *Client) ImportSubscribers(ctx context.Context, subscribers []map[string]string) (*Response, error) {
	return c.Invoke(ctx, FnImportSubscribers, map[string]interface{}{"subscribers": subscribers})
}

func (c *Client) post(ctx context.Context, name string, body interface{}) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal function body: %w", err)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build function request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("function %s returned %d", name, resp.StatusCode)
	}

	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", name, err)
	}
	out.Payload = raw

	if !out.Success {
		c.log.WithFields(logrus.Fields{
			"function": name,
			"error":    out.Error,
		}).Warn("backend function rejected request")
	}

	return &out, nil
}
