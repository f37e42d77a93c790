// Package notifications delivers WhatsApp messages through Twilio's REST
// API. A client with incomplete credentials is disabled: sends are logged
// and reported as failed without erroring past the pipeline boundary.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"home_search/internal/config"

	"github.com/rs/zerolog/log"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

type Client struct {
	httpClient *http.Client
	accountSID string
	authToken  string
	from       string
	to         string
	enabled    bool
}

type messageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // error payloads carry this
}

func NewClient(cfg *config.Config) *Client {
	enabled := cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.WhatsAppTo != ""
	if !enabled {
		log.Debug().Msg("Twilio credentials incomplete, notifications disabled")
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		from:       cfg.WhatsAppFrom,
		to:         cfg.WhatsAppTo,
		enabled:    enabled,
	}
}

// Enabled reports whether the client has complete credentials.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Send delivers one WhatsApp message.
func (c *Client) Send(ctx context.Context, message string) error {
	if !c.enabled {
		return fmt.Errorf("missing Twilio credentials")
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioBaseURL, url.PathEscape(c.accountSID))

	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", c.to)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var msg messageResponse
		if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
			return fmt.Errorf("Twilio request failed with status %d: %s", resp.StatusCode, msg.Message)
		}
		return fmt.Errorf("Twilio request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	log.Info().
		Str("sid", msg.SID).
		Str("status", msg.Status).
		Msg("WhatsApp message sent")
	return nil
}
