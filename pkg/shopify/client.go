package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultAPIVersion is the Admin API version requested when none is configured.
	DefaultAPIVersion = "2024-01"

	// maxResponseSize caps a single response body (a full 250-product page with
	// variants and images stays well under this).
	maxResponseSize = 32 * 1024 * 1024

	// maxErrorBody caps the upstream body kept on an APIError.
	maxErrorBody = 512
)

var (
	// ErrUnauthorized is returned when the shop rejects the access token.
	ErrUnauthorized = errors.New("shopify: unauthorized")
	// ErrNotFound is returned for a 404 on a single resource.
	ErrNotFound = errors.New("shopify: not found")
)

// APIError is a non-2xx response from the Admin API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify: unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// Config holds the shop endpoint and credentials.
type Config struct {
	ShopURL     string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration
}

// Client is a minimal HTTP client for the Shopify Admin REST API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	debug       bool
}

// NewClient constructs a Client. ShopURL may be a bare domain
// (test-shop.myshopify.com) or a full URL.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     normalizeShopURL(cfg.ShopURL) + "/admin/api/" + version,
		accessToken: cfg.AccessToken,
		debug:       os.Getenv("ENV") == "development",
	}
}

func normalizeShopURL(shop string) string {
	shop = strings.TrimRight(strings.TrimSpace(shop), "/")
	if !strings.HasPrefix(shop, "http://") && !strings.HasPrefix(shop, "https://") {
		shop = "https://" + shop
	}
	return shop
}

// OpenSession verifies the credentials against the shop resource and returns
// a Session bound to this client. Nothing is activated process-wide.
func (c *Client) OpenSession(ctx context.Context) (*Session, error) {
	var resp shopResponse
	if err := c.doRequest(ctx, "/shop.json", nil, &resp); err != nil {
		return nil, err
	}
	return &Session{client: c, Shop: resp.Shop}, nil
}

// GetProduct fetches a single product with all detail fields.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var resp productResponse
	path := "/products/" + strconv.FormatInt(id, 10) + ".json"
	if err := c.doRequest(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

// doRequest performs an authenticated GET and decodes the JSON response into result.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, result any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Int("bytes", len(respBody)).
			Dur("latency", time.Since(start)).
			Msg("[SHOPIFY] Response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, newAPIError(resp.StatusCode, respBody))
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, newAPIError(resp.StatusCode, respBody))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return newAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && len(er.Errors) > 0 {
		msg = string(er.Errors)
	}
	return &APIError{StatusCode: status, Body: truncate(msg, maxErrorBody)}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
