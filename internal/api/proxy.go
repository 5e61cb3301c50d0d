package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ernie/courtside/internal/logging"
)

// hopHeaders are connection-scoped and never forwarded
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// GatewayConfig describes the provider the gateway forwards to
type GatewayConfig struct {
	Target             string
	Referer            string
	Origin             string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Gateway forwards requests to the match data provider, stripping
// hop-by-hop headers and presenting the provider's expected Referer, Origin
// and Host.
type Gateway struct {
	target     *url.URL
	referer    string
	origin     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewGateway creates a gateway to cfg.Target
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	target, err := url.Parse(cfg.Target)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid gateway target %q", cfg.Target)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Gateway{
		target:  target,
		referer: cfg.Referer,
		origin:  cfg.Origin,
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Transport: transport,
			// Redirects are relayed to the caller, not followed
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}, nil
}

// ServeHTTP forwards req to the provider and relays the response
func (g *Gateway) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), g.timeout)
	defer cancel()

	u := *g.target
	u.Path = strings.TrimSuffix(g.target.Path, "/") + "/" + strings.TrimPrefix(req.URL.Path, "/")
	u.RawQuery = req.URL.RawQuery

	proxyReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), req.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create proxy request")
		return
	}

	// Copy headers
	for key, values := range req.Header {
		for _, value := range values {
			proxyReq.Header.Add(key, value)
		}
	}
	removeHopHeaders(proxyReq.Header)
	proxyReq.Header.Del("Cookie")
	proxyReq.Host = g.target.Host
	if g.referer != "" {
		proxyReq.Header.Set("Referer", g.referer)
	}
	if g.origin != "" {
		proxyReq.Header.Set("Origin", g.origin)
	}
	proxyReq.ContentLength = req.ContentLength

	resp, err := g.httpClient.Do(proxyReq)
	if err != nil {
		slog.Warn("Gateway request failed", slog.String("url", u.String()), logging.ErrAttr(err))
		writeError(w, http.StatusBadGateway, "match data provider unavailable")
		return
	}
	defer resp.Body.Close()

	// Copy response headers
	removeHopHeaders(resp.Header)
	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// removeHopHeaders deletes hop-by-hop headers, including any the
// Connection header names
func removeHopHeaders(h http.Header) {
	for _, field := range h.Values("Connection") {
		for _, name := range strings.Split(field, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}
