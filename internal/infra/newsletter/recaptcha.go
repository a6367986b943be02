package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrCaptchaFailed = errors.New("reCAPTCHA verification failed")

const defaultRecaptchaURL = "https://www.google.com/recaptcha/api/siteverify"

type Recaptcha struct {
	secret    string
	verifyURL string
	client    *http.Client
}

func NewRecaptcha(secret string) *Recaptcha {
	return &Recaptcha{
		secret:    secret,
		verifyURL: defaultRecaptchaURL,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *Recaptcha) WithVerifyURL(u string) *Recaptcha {
	r.verifyURL = u
	return r
}

// Enabled is false when no secret is set; callers then skip verification.
func (r *Recaptcha) Enabled() bool {
	return r != nil && r.secret != ""
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (r *Recaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	if !r.Enabled() {
		return nil
	}
	if strings.TrimSpace(token) == "" {
		return ErrCaptchaFailed
	}

	form := url.Values{"secret": {r.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build recaptcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("recaptcha verify: %w", err)
	}
	defer resp.Body.Close()

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode recaptcha response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("%w: %s", ErrCaptchaFailed, strings.Join(out.ErrorCodes, ","))
	}
	return nil
}
