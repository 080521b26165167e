// Package vault wraps the document vault's text-extraction API. The vault
// owns file storage and OCR; this client only submits content and reads the
// extracted text back.
package vault

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://vault.counsel-tools.internal"

// Client extracts text from uploaded case documents.
type Client interface {
	ExtractText(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)
}

// ExtractRequest is the body for POST /v1/extract.
type ExtractRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	Content     []byte `json:"-"`
}

// ExtractResponse is the vault's extraction result.
type ExtractResponse struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
}

// Option configures the vault client.
type Option func(*httpClient)

// WithBaseURL overrides the default vault endpoint.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request throttle (5 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a vault client. Extraction calls are throttled to
// 5 req/s by default.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ExtractText(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "vault: rate limit wait")
		}
	}

	body, err := json.Marshal(struct {
		ExtractRequest
		ContentB64 string `json:"content"`
	}{
		ExtractRequest: req,
		ContentB64:     base64.StdEncoding.EncodeToString(req.Content),
	})
	if err != nil {
		return nil, eris.Wrap(err, "vault: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "vault: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "vault: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "vault: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("vault: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ExtractResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "vault: unmarshal response")
	}
	return &result, nil
}
