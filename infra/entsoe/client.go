package entsoe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/spotflux/core/export"
	"github.com/kilianp07/spotflux/core/normalize"
	"github.com/kilianp07/spotflux/infra/logger"
	"github.com/kilianp07/spotflux/pkg/retry"
)

const (
	// A44 is the transparency-platform document type for day-ahead prices.
	documentType = "A44"
	windowFormat = "200601021504"
)

// Config defines the connection parameters for the transparency API.
type Config struct {
	BaseURL string `json:"base_url"`
	// Domain is the EIC area code, used as both in_Domain and out_Domain.
	Domain string `json:"domain"`
	Token  string `json:"token"`
	// TimeoutSeconds bounds a single fetch attempt.
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://web-api.tp.entsoe.eu/api"
	}
	if c.Domain == "" {
		c.Domain = "10YNL----------L"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("entsoe token is required")
	}
	return nil
}

// Client fetches day-ahead price publications over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	domain     string
	token      string
	log        logger.Logger
}

// NewClient creates a Client from the configuration.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL:    cfg.BaseURL,
		domain:     cfg.Domain,
		token:      cfg.Token,
		log:        logger.New("entsoe-client"),
	}
}

// FetchDayAhead requests the A44 document for [periodStart, periodEnd) and
// decodes it into the neutral document model. Non-2xx statuses are returned as
// retryable errors; a body that fails to decode is permanent.
func (c *Client) FetchDayAhead(ctx context.Context, periodStart, periodEnd time.Time) (normalize.Document, error) {
	q := url.Values{}
	q.Set("documentType", documentType)
	q.Set("in_Domain", c.domain)
	q.Set("out_Domain", c.domain)
	q.Set("periodStart", periodStart.UTC().Format(windowFormat))
	q.Set("periodEnd", periodEnd.UTC().Format(windowFormat))

	c.log.Infof("fetching day-ahead prices from %s?%s", c.baseURL, q.Encode())

	q.Set("securityToken", c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return normalize.Document{}, retry.Permanent(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalize.Document{}, fmt.Errorf("request day-ahead prices: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return normalize.Document{}, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warnf("status code %d indicates failure: %s", resp.StatusCode, string(body))
		return normalize.Document{}, fmt.Errorf("status code %d indicates failure", resp.StatusCode)
	}

	doc, err := decodeDocument(body)
	if err != nil {
		// Malformed documents do not become valid on retry.
		return normalize.Document{}, retry.Permanent(&export.RunError{
			Kind: export.ParseFailed,
			Err:  fmt.Errorf("decode day-ahead document: %w", err),
		})
	}
	return doc, nil
}
