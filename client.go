package oaiharvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tmc/oaiharvest/internal/logger"
)

// Client requests ListRecords pages from an OAI-PMH endpoint.
type Client struct {
	client    *http.Client
	baseURL   string
	set       string
	prefix    string
	userAgent string
	retry     RetryPolicy
	log       logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for page requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a Client for the endpoint, set and metadata prefix in cfg.
// No request timeout is set by default; callers bound requests through ctx.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		client:    http.DefaultClient,
		baseURL:   cfg.BaseURL,
		set:       cfg.Set,
		prefix:    cfg.MetadataPrefix,
		userAgent: cfg.UserAgent,
		retry:     cfg.Retry,
		log:       logger.NewNop(),
	}
	if c.prefix == "" {
		c.prefix = DefaultMetadataPrefix
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageURL returns the request URL for a page. An empty token selects the
// first page; continuation pages keep the base parameters and add the token.
func (c *Client) PageURL(resumptionToken string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	params := u.Query()
	params.Set("verb", "ListRecords")
	params.Set("metadataPrefix", c.prefix)
	if c.set != "" {
		params.Set("set", c.set)
	}
	if resumptionToken != "" {
		params.Set("resumptionToken", resumptionToken)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// ListRecords fetches the raw body of one ListRecords page.
func (c *Client) ListRecords(ctx context.Context, resumptionToken string) ([]byte, error) {
	reqURL, err := c.PageURL(resumptionToken)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = c.retry.Do(ctx, func() error {
		b, err := c.get(ctx, reqURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	}, func(err error, wait time.Duration) {
		c.log.Warn("page request failed, retrying",
			logger.String("url", reqURL), logger.Duration("wait", wait), logger.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch page: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: reqURL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	return body, nil
}
