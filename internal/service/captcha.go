package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// CaptchaVerifier checks a client-supplied CAPTCHA token against an external
// verification endpoint. A zero-value verifier (empty secret) accepts every
// request, which keeps local development and tests free of external calls.
type CaptchaVerifier struct {
	Secret string
	Client *http.Client
	URL    string
}

// NewCaptchaVerifier builds a verifier for the given secret. An empty secret
// disables verification.
func NewCaptchaVerifier(secret string) *CaptchaVerifier {
	return &CaptchaVerifier{
		Secret: secret,
		Client: &http.Client{Timeout: 5 * time.Second},
		URL:    recaptchaVerifyURL,
	}
}

// Verify returns true when the token passes verification or when
// verification is disabled. Network failures count as verification failures;
// the endpoint this guards is abuse-prone, so fail closed.
func (v *CaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if v == nil || v.Secret == "" {
		return true
	}
	if strings.TrimSpace(token) == "" {
		return false
	}
	form := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false
	}
	return out.Success
}
