package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/vigil-app/vigil/server/logger"
	"github.com/vigil-app/vigil/shared"
)

var logg = logger.NewLogger()

// Client is a thin wrapper around a resend-compatible transactional
// email HTTP API
type Client struct {
	httpClient *http.Client
	config     shared.MailerConfig
	testMode   bool
}

type sendEmailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html"`
}

func NewClient(config shared.MailerConfig, testMode bool) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		config:     config,
		testMode:   testMode,
	}
}

// SendEmail delivers a single html email to 'to' via the configured
// email API
func (c *Client) SendEmail(to, subject, htmlBody string) error {
	if c.testMode {
		logg.Infof("[test mode] skipping email to %v with subject %q", to, subject)
		return nil
	}

	payload, err := json.Marshal(sendEmailPayload{
		From:    c.config.From,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("SendEmail: %v", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/emails"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("SendEmail: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SendEmail: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := ioutil.ReadAll(resp.Body)
		return fmt.Errorf("SendEmail: email API returned %v: %s", resp.StatusCode, body)
	}

	return nil
}
