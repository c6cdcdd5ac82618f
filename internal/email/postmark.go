package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/platewise/platewise/internal/model"
)

const postmarkAPIURL = "https://api.postmarkapp.com/email"

type Client struct {
	serverToken string
	fromEmail   string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL overrides the Postmark endpoint, used by tests.
func WithAPIURL(url string) Option {
	return func(cl *Client) {
		cl.apiURL = url
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		apiURL:      postmarkAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendClaimNotice tells a donor that their donation was claimed and by
// whom, so they can arrange the pickup.
func (c *Client) SendClaimNotice(toEmail string, d *model.Donation) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}
	if d.ClaimedBy == nil {
		return fmt.Errorf("donation %d has no claim record", d.ID)
	}

	subject := fmt.Sprintf("Your donation %q was claimed", d.FoodType)
	textBody := fmt.Sprintf(
		"Good news: your donation of %s (%s) was claimed by %s.\n\nPhone: %s\nPickup location: %s\n\nPlease get in touch to arrange the handover.",
		d.FoodType, d.Quantity, d.ClaimedBy.Name, d.ClaimedBy.Phone, d.Location,
	)
	htmlBody := fmt.Sprintf(
		`<p>Good news: your donation of <strong>%s</strong> (%s) was claimed by <strong>%s</strong>.</p><p>Phone: %s<br>Pickup location: %s</p><p>Please get in touch to arrange the handover.</p>`,
		d.FoodType, d.Quantity, d.ClaimedBy.Name, d.ClaimedBy.Phone, d.Location,
	)

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
