// Package newsletter talks to ConvertKit for signups and to Google reCAPTCHA
// for bot checks on the public signup form.
package newsletter

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
)

var (
	ErrNotConfigured = errors.New("newsletter provider not configured")
	ErrRejected      = errors.New("newsletter provider rejected the signup")
)

const defaultConvertKitURL = "https://api.convertkit.com/v3"

type ConvertKit struct {
	apiKey  string
	formID  string
	baseURL string
	client  *http.Client
}

func NewConvertKit(apiKey, formID string) *ConvertKit {
	return &ConvertKit{
		apiKey:  apiKey,
		formID:  formID,
		baseURL: defaultConvertKitURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at another endpoint (tests, proxies).
func (c *ConvertKit) WithBaseURL(u string) *ConvertKit {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

func (c *ConvertKit) Configured() bool {
	return c != nil && c.apiKey != "" && c.formID != ""
}

type subscribeRequest struct {
	APIKey    string `json:"api_key"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
}

// Subscribe adds email to the configured form.
func (c *ConvertKit) Subscribe(ctx context.Context, email, firstName string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(subscribeRequest{APIKey: c.apiKey, Email: email, FirstName: firstName})
	if err != nil {
		return fmt.Errorf("encode subscribe request: %w", err)
	}

	url := fmt.Sprintf("%s/forms/%s/subscribe", c.baseURL, c.formID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build subscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("convertkit subscribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
