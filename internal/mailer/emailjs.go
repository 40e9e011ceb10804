// Package mailer delivers templated emails through the EmailJS REST API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultEndpoint is the EmailJS send endpoint.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// Message is one templated email. Params are substituted into the template
// configured on the EmailJS side.
type Message struct {
	ToEmail string
	Params  map[string]interface{}
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailJSConfig holds the EmailJS account settings.
type EmailJSConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	UserID     string
	PrivateKey string
}

// EmailJSSender sends messages with the EmailJS REST API.
type EmailJSSender struct {
	cfg        EmailJSConfig
	httpClient *http.Client
}

// NewEmailJSSender creates a new EmailJSSender.
func NewEmailJSSender(cfg EmailJSConfig, httpClient *http.Client) *EmailJSSender {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &EmailJSSender{cfg: cfg, httpClient: httpClient}
}

type emailJSRequest struct {
	ServiceID      string                 `json:"service_id"`
	TemplateID     string                 `json:"template_id"`
	UserID         string                 `json:"user_id"`
	AccessToken    string                 `json:"accessToken,omitempty"`
	TemplateParams map[string]interface{} `json:"template_params"`
}

// Send posts msg to EmailJS. Any non-2xx response is an error carrying the
// response body.
func (s *EmailJSSender) Send(ctx context.Context, msg Message) error {
	if msg.ToEmail == "" {
		return fmt.Errorf("sending email: recipient is empty")
	}

	params := make(map[string]interface{}, len(msg.Params)+1)
	for k, v := range msg.Params {
		params[k] = v
	}
	params["to_email"] = msg.ToEmail

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.cfg.ServiceID,
		TemplateID:     s.cfg.TemplateID,
		UserID:         s.cfg.UserID,
		AccessToken:    s.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("marshaling email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sending email: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
