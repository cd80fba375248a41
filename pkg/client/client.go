// Package client implements the VeloCards API client. All business logic
// (card issuance, balance and fee computation, KYC decisioning, deposit
// confirmation) lives behind the remote API; this package is a consumer.
//
// One shared HTTP client carries every call: it attaches the access token
// from the token store to outbound requests and transparently recovers
// from access-token expiry through a single-flight refresh (refresh.go).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/velocards/velocards-cli/internal/logging"
	"github.com/velocards/velocards-cli/pkg/tokenstore"
)

// requestTimeout bounds every API call, the refresh exchange included.
const requestTimeout = 30 * time.Second

// Client is the VeloCards API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
	log        logging.Logger

	refreshGroup singleflight.Group

	hookMu    sync.Mutex
	onExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The caller owns
// timeout and jar configuration in that case.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger attaches a logger. The default discards everything so the
// client stays quiet when embedded as a library.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates an API client rooted at baseURL. The access token is read
// from tokens on every outbound request. The HTTP client carries a 30
// second timeout and a cookie jar — the refresh credential is transported
// via an HTTP cookie set by the auth endpoints, never stored by us.
func New(baseURL string, tokens tokenstore.Store, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // only fails on bad PublicSuffixList options
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		log:     logging.Nop(),
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSessionExpiredHook registers the callback invoked after a failed
// refresh, when the session is beyond recovery. The application shell
// decides what "go to sign-in" means; the client never navigates itself.
func (c *Client) SetSessionExpiredHook(fn func()) {
	c.hookMu.Lock()
	c.onExpired = fn
	c.hookMu.Unlock()
}

func (c *Client) sessionExpired() {
	c.hookMu.Lock()
	fn := c.onExpired
	c.hookMu.Unlock()
	if fn != nil {
		fn()
	}
}

// apiRequest models one outbound call. retried marks a request that has
// already been re-issued after a token refresh; such a request is never
// retried a second time, whatever it fails with.
type apiRequest struct {
	method  string
	path    string
	body    any
	out     any
	raw     *[]byte // when set, the response body is returned verbatim (PDF download)
	retried bool
}

// do sends req and engages expired-token recovery when all of these hold:
// the failure is the token-expired 401, the target is not an auth
// endpoint, and the request has not been retried before. The refresh
// exchange completes before the retry goes out; whatever the retried call
// returns — success or failure — is the final outcome for the caller.
func (c *Client) do(ctx context.Context, req *apiRequest) error {
	err := c.send(ctx, req)
	if err == nil {
		return nil
	}
	if !IsTokenExpired(err) || req.retried || isAuthPath(req.path) {
		return err
	}

	if _, rerr := c.refreshAccessToken(ctx); rerr != nil {
		// The refresh failure, not the original 401, is what the caller sees.
		return rerr
	}

	req.retried = true
	return c.send(ctx, req)
}

// isAuthPath guards against recovery loops: a 401 from login, register, or
// the refresh endpoint itself must never trigger another refresh.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}

func (c *Client) send(ctx context.Context, r *apiRequest) error {
	var reqBody io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// A missing token never blocks the request; unauthenticated endpoints
	// must still work.
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if r.raw != nil {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*r.raw = data
		return nil
	}
	if r.out != nil {
		if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError maps a non-2xx response onto an APIError, preserving the
// server's error envelope when one is present.
func decodeError(resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && (envelope.Error.Code != "" || envelope.Error.Message != "") {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			Details:    envelope.Error.Details,
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, &apiRequest{method: http.MethodGet, path: path, out: out})
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, &apiRequest{method: http.MethodPost, path: path, body: body, out: out})
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, &apiRequest{method: http.MethodPut, path: path, body: body, out: out})
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, &apiRequest{method: http.MethodDelete, path: path})
}

func (c *Client) getRaw(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	if err := c.do(ctx, &apiRequest{method: http.MethodGet, path: path, raw: &data}); err != nil {
		return nil, err
	}
	return data, nil
}
