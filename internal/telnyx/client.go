package telnyx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/frontdesk-ai/frontdesk/internal/config"
	frontdeskErrors "github.com/frontdesk-ai/frontdesk/internal/errors"
)

// Client issues call-control actions against the Telnyx REST API with a
// bounded timeout.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.TelnyxConfig) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = config.DefaultTelnyxBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout, err := config.DurationOrDefault(cfg.RequestTimeout, config.DefaultTelnyxRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse telnyx.request_timeout: %w", err)
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// AnswerCall answers an inbound call.
func (c *Client) AnswerCall(ctx context.Context, callControlID string) error {
	return c.action(ctx, callControlID, "answer")
}

// StartAIAssistant starts the voice AI session on an answered call.
func (c *Client) StartAIAssistant(ctx context.Context, callControlID string) error {
	return c.action(ctx, callControlID, "ai_assistant_start")
}

func (c *Client) action(ctx context.Context, callControlID, action string) error {
	if strings.TrimSpace(callControlID) == "" {
		return frontdeskErrors.InvalidInput("call control id is required")
	}
	if c.apiKey == "" {
		return frontdeskErrors.InvalidInput("telnyx API key not configured")
	}

	endpoint := fmt.Sprintf("%s/calls/%s/actions/%s", c.baseURL, url.PathEscape(callControlID), action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte(`{}`)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return frontdeskErrors.MapUpstream(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return frontdeskErrors.MapUpstream(fmt.Errorf("telnyx %s failed: %s: %s", action, resp.Status, strings.TrimSpace(string(body))))
	}

	return nil
}
