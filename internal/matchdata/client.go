package matchdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnresolvableMatchID = errors.New("could not resolve a match id from input")
	ErrUpstreamFetch       = errors.New("upstream fetch failed")
)

// Upstream resource paths, relative to the gateway base URL
const (
	MatchInfoPath   = "/api/MatchInfo"
	MatchDetailPath = "/api/MatchDetail"
)

// DefaultDetailTabID selects the match status tab of the detail resource
const DefaultDetailTabID = "4529f187-1492-4556-a756-affa52458fd1"

// DefaultHeaders are the provider-specific headers sent with every request
var DefaultHeaders = map[string]string{
	"accept":          "*/*",
	"accept-language": "zh-CN,zh;q=0.9",
	"content-type":    "application/json",
	"deviceid":        "8b9c24b380d74c869214dfa18a743d49",
	"product":         "v1.0.300-rls",
	"source":          "3",
	"useragent":       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"versions":        "119",
}

// Client posts to the provider through the HTTP gateway
type Client struct {
	httpClient  *http.Client
	baseURL     string
	headers     map[string]string
	detailTabID string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeaders adds or overrides request headers
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[strings.ToLower(k)] = v
		}
	}
}

// WithDetailTabID overrides the tab requested from the detail resource
func WithDetailTabID(tabID string) ClientOption {
	return func(c *Client) {
		if tabID != "" {
			c.detailTabID = tabID
		}
	}
}

// NewClient creates a gateway client rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     strings.TrimRight(baseURL, "/"),
		headers:     make(map[string]string, len(DefaultHeaders)),
		detailTabID: DefaultDetailTabID,
	}
	for k, v := range DefaultHeaders {
		c.headers[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestBody struct {
	SportType      int     `json:"sportType"`
	MatchID        int64   `json:"MatchID"`
	AccessPassword *string `json:"AccessPassword"`
	TabID          string  `json:"tabId,omitempty"`
}

// FetchMatchInfo fetches the display names of a match
func (c *Client) FetchMatchInfo(ctx context.Context, ref MatchRef) (map[string]interface{}, error) {
	return c.post(ctx, MatchInfoPath, requestBody{SportType: ref.SportType, MatchID: ref.ID})
}

// FetchMatchDetail fetches the roster and score sections of a match
func (c *Client) FetchMatchDetail(ctx context.Context, ref MatchRef) (map[string]interface{}, error) {
	return c.post(ctx, MatchDetailPath, requestBody{SportType: ref.SportType, MatchID: ref.ID, TabID: c.detailTabID})
}

// post sends body and returns the object under the response's "data" key.
// A missing or non-object "data" is returned as an empty map.
func (c *Client) post(ctx context.Context, path string, body requestBody) (map[string]interface{}, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %w", ErrUpstreamFetch, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstreamFetch, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: status=%d, body=%s", ErrUpstreamFetch, path, resp.StatusCode, string(msg))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %s: decoding response: %w", ErrUpstreamFetch, path, err)
	}

	data, ok := result["data"].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}, nil
	}
	return data, nil
}
