// Package sms sends one-time codes to phones via an SMS provider.
package sms

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

// Sender delivers a one-time code to a phone number. Implementations must not log the code.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// SMSLocalClient sends OTP SMS via the SMS Local API.
type SMSLocalClient struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewSMSLocalClient returns a client that uses the given API key and optional base URL/sender.
func NewSMSLocalClient(apiKey, baseURL, sender string) *SMSLocalClient {
	if baseURL == "" {
		baseURL = "https://www.smslocal.com/dev/bulkV2"
	}
	return &SMSLocalClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SendCode sends the code to the given phone number (route=otp).
// phone should be digits only. Does not log the code.
func (c *SMSLocalClient) SendCode(ctx context.Context, phone, code string) error {
	if c.APIKey == "" {
		return fmt.Errorf("sms: API key not configured")
	}
	body := map[string]interface{}{
		"route":     "otp",
		"numbers":   phone,
		"variables": code,
	}
	if c.Sender != "" {
		body["sender"] = c.Sender
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
