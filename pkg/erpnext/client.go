// Package erpnext provides token-authenticated REST access to an ERPNext
// instance's Lead resource.
package erpnext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// leadKeyField is the custom Lead field carrying the deduplication key.
const leadKeyField = "custom_business_key"

// pageSize bounds how many keys go into a single existence lookup request.
const pageSize = 50

// Client defines the ERPNext Lead operations used by the upload path.
type Client interface {
	// FindLeadKeys returns the subset of keys that already exist remotely.
	// Lookups are batched internally; keys are matched case-sensitively by
	// the server, so callers should pass canonical (lowercase) keys.
	FindLeadKeys(ctx context.Context, keys []string) (map[string]bool, error)

	// CreateLead creates a single Lead record.
	CreateLead(ctx context.Context, lead LeadPayload) error
}

// LeadPayload maps onto the ERPNext Lead doctype fields.
type LeadPayload struct {
	LeadName    string `json:"lead_name"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	EmailID     string `json:"email_id,omitempty"`
	MobileNo    string `json:"mobile_no,omitempty"`
	BusinessKey string `json:"custom_business_key"`
	Source      string `json:"source,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// APIError is returned when ERPNext responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("erpnext: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the instance base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for API calls. A burst equal
// to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// httpClient implements Client using net/http with retrying transport.
type httpClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates an ERPNext client for the given instance and API key
// pair. Transient failures are retried by the underlying transport.
func NewClient(baseURL, apiKey, apiSecret string, opts ...Option) Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 60 * time.Second
	rc.Logger = nil

	c := &httpClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      rc.StandardClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// listResponse is the envelope of GET /api/resource/Lead.
type listResponse struct {
	Data []map[string]any `json:"data"`
}

func (c *httpClient) FindLeadKeys(ctx context.Context, keys []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for start := 0; start < len(keys); start += pageSize {
		end := min(start+pageSize, len(keys))
		if err := c.findBatch(ctx, keys[start:end], existing); err != nil {
			return nil, eris.Wrap(err, "erpnext: find lead keys")
		}
	}
	return existing, nil
}

func (c *httpClient) findBatch(ctx context.Context, keys []string, existing map[string]bool) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit")
	}

	filters, err := json.Marshal([]any{[]any{leadKeyField, "in", keys}})
	if err != nil {
		return eris.Wrap(err, "marshal filters")
	}
	fields, err := json.Marshal([]string{leadKeyField})
	if err != nil {
		return eris.Wrap(err, "marshal fields")
	}

	q := url.Values{}
	q.Set("filters", string(filters))
	q.Set("fields", string(fields))
	q.Set("limit_page_length", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/resource/Lead?"+q.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	var resp listResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	for _, rec := range resp.Data {
		if key, ok := rec[leadKeyField].(string); ok && key != "" {
			existing[key] = true
		}
	}
	return nil
}

func (c *httpClient) CreateLead(ctx context.Context, lead LeadPayload) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "erpnext: rate limit")
	}

	buf, err := json.Marshal(lead)
	if err != nil {
		return eris.Wrap(err, "erpnext: marshal lead")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/resource/Lead", bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "erpnext: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("erpnext: create lead %s", lead.BusinessKey))
	}
	return nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "token "+c.apiKey+":"+c.apiSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return eris.Wrap(err, "decode response")
		}
	}
	return nil
}
