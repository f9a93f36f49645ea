// Package apiclient is the authenticated HTTP layer every LMS call goes
// through.
//
// Each request carries the stored access token as a bearer credential.  Two
// failure classes are recovered before the caller sees them:
//
//   - a 3xx response with a Location header is reissued, unchanged, against
//     the new location (at most MaxRedirects times);
//   - a 401 response triggers one token refresh, after which the original
//     request is reissued exactly once with the new token.
//
// When the refresh itself fails the stored tokens are cleared, the
// session-expired hooks run and the caller gets an error wrapping
// ErrSessionExpired.  Concurrent refreshes are coalesced into one call.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/classroom-client/internal/metrics"
	"github.com/iliyamo/classroom-client/internal/tokenstore"
)

const (
	// DefaultRefreshPath is the endpoint exchanging a refresh token for a
	// new access token.
	DefaultRefreshPath = "/api/auth/refresh"

	// DefaultMaxRedirects bounds redirect following per request.
	DefaultMaxRedirects = 1

	defaultTimeout = 30 * time.Second

	// RequestIDHeader is shared by every hop of one logical call.
	RequestIDHeader = "X-Request-ID"
)

// SessionExpiredFunc runs after an unrecoverable refresh failure, once the
// tokens are gone.  It is where a front-end sends the user back to login.
type SessionExpiredFunc func(ctx context.Context, cause error)

// Options configures a Client.  Only BaseURL and Store are required.
type Options struct {
	BaseURL      string
	Store        tokenstore.Store
	HTTPClient   *http.Client
	Logger       *slog.Logger
	Timeout      time.Duration
	MaxRedirects int // 0 means DefaultMaxRedirects; negative disables following
	RefreshPath  string
}

// Client is safe for concurrent use.
type Client struct {
	base         *url.URL
	http         *http.Client
	store        tokenstore.Store
	log          *slog.Logger
	maxRedirects int
	refreshPath  string

	refreshGroup singleflight.Group

	hooksMu sync.RWMutex
	hooks   []SessionExpiredFunc
}

// New builds a Client.  The supplied http.Client is copied and its
// automatic redirect handling switched off; redirects are handled here.
func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, errors.New("apiclient: token store is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", opts.BaseURL)
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	if opts.Timeout > 0 {
		hc.Timeout = opts.Timeout
	} else if hc.Timeout == 0 {
		hc.Timeout = defaultTimeout
	}
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	c := &Client{
		base:         base,
		http:         hc,
		store:        opts.Store,
		log:          opts.Logger,
		maxRedirects: opts.MaxRedirects,
		refreshPath:  opts.RefreshPath,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.maxRedirects == 0 {
		c.maxRedirects = DefaultMaxRedirects
	} else if c.maxRedirects < 0 {
		c.maxRedirects = 0
	}
	if c.refreshPath == "" {
		c.refreshPath = DefaultRefreshPath
	}
	return c, nil
}

// Store exposes the token store the client reads from.
func (c *Client) Store() tokenstore.Store { return c.store }

// OnSessionExpired registers a hook run after a failed refresh.
func (c *Client) OnSessionExpired(fn SessionExpiredFunc) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// request is one logical call.  The body is buffered so the call can be
// replayed after a redirect or refresh.
type request struct {
	method string
	url    *url.URL
	header http.Header
	body   []byte
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// Do sends a JSON request to path and decodes a 2xx body into out (when out
// is non-nil and the body is not empty).  Decoded values are checked
// against their validate tags.  Non-2xx results are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.execute(ctx, req)
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status > 299 {
		return newAPIError(resp.status, resp.body)
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", ErrInvalidResponse, method, path, err)
	}
	return checkContract(out)
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) newRequest(method, path string, query url.Values, body any) (*request, error) {
	u := c.resolve(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req := &request{method: method, url: u, header: http.Header{}}
	req.header.Set("Accept", "application/json")
	req.header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
		req.body = b
		req.header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) resolve(path string) *url.URL {
	u := *c.base
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = c.base.Path + path
	u.RawPath = ""
	return &u
}

// execute runs the interception pipeline for one logical call.
func (c *Client) execute(ctx context.Context, req *request) (*response, error) {
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.follow(ctx, req)
	if err != nil || resp.status != http.StatusUnauthorized {
		return resp, err
	}

	refreshToken, err := c.store.RefreshToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("apiclient: read refresh token: %w", err)
	}
	if refreshToken == "" {
		return resp, nil
	}

	accessToken, err := c.refreshShared(ctx)
	if err != nil {
		return nil, c.expire(ctx, err)
	}

	req.header.Set("Authorization", "Bearer "+accessToken)
	// Exactly one reissue; a second 401 goes back to the caller.
	return c.follow(ctx, req)
}

// authorize attaches the stored access token, if any.
func (c *Client) authorize(ctx context.Context, req *request) error {
	tok, err := c.store.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("apiclient: read access token: %w", err)
	}
	if tok != "" {
		req.header.Set("Authorization", "Bearer "+tok)
	}
	return nil
}

// follow sends req and reissues it for up to maxRedirects redirect
// responses carrying a Location header.
func (c *Client) follow(ctx context.Context, req *request) (*response, error) {
	for hop := 0; ; hop++ {
		resp, err := c.roundTrip(ctx, req)
		if err != nil {
			return nil, err
		}
		loc := resp.header.Get("Location")
		if !isRedirect(resp.status) || loc == "" || hop >= c.maxRedirects {
			return resp, nil
		}
		next, err := req.url.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("apiclient: bad redirect location %q: %w", loc, err)
		}
		c.log.Debug("following redirect",
			"method", req.method, "from", req.url.String(), "to", next.String(), "status", resp.status)
		metrics.RedirectsTotal.Inc()
		req.url = next
	}
}

// sameOrigin reports whether u points at the configured API host.
func (c *Client) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.base.Scheme) && strings.EqualFold(u.Host, c.base.Host)
}

func isRedirect(status int) bool {
	return status >= http.StatusMovedPermanently && status <= http.StatusPermanentRedirect
}

// roundTrip performs one HTTP exchange and reads the whole body.
func (c *Client) roundTrip(ctx context.Context, req *request) (*response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.method, req.url.String(), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	hr.Header = req.header.Clone()
	if !c.sameOrigin(req.url) {
		// Credentials stay with the configured API.
		hr.Header.Del("Authorization")
	}

	start := time.Now()
	res, err := c.http.Do(hr)
	metrics.RequestDuration.WithLabelValues(req.method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(req.method, "error").Inc()
		return nil, fmt.Errorf("apiclient: %s %s: %w", req.method, req.url.Path, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(req.method, "error").Inc()
		return nil, fmt.Errorf("apiclient: read body: %w", err)
	}
	metrics.RequestsTotal.WithLabelValues(req.method, strconv.Itoa(res.StatusCode)).Inc()
	c.log.Debug("lms request",
		"method", req.method, "path", req.url.Path, "status", res.StatusCode,
		"request_id", req.header.Get(RequestIDHeader), "duration", time.Since(start))
	return &response{status: res.StatusCode, header: res.Header, body: b}, nil
}
