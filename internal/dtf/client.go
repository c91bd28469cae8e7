package dtf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://dtf.ru"
	defaultJSVersion = "01aba50c"
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.61 Safari/537.36"
	csrfHeaderValue  = "THIS IS SPARTA!"
	requestTimeout   = 60 * time.Second

	defaultRequestsPerSecond = 2.0
	defaultBurst             = 5

	// TokenCookie carries the long-lived session.
	TokenCookie = "osnova-remember"
)

const (
	pathLogin   = "/auth/simple/login"
	pathCheck   = "/auth/check"
	pathWriting = "/writing"
	pathUpload  = "/andropov/upload"
	pathSave    = "/writing/save"
	pathHit     = "/hit/"
)

// trackingCookies are set by the site's front end on first visit.
var trackingCookies = []struct{ name, value string }{
	{"pushVisitsCount", "1"},
	{"adblock-state", "1"},
	{"audio_player_volume", "0.75"},
	{"is_news_widget_closed", "false"},
}

// Client is a single dtf.ru session. It is not safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	header  http.Header
	limiter *rate.Limiter
	logger  *slog.Logger
	hit     HitPolicy
	account *Account
}

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL   string
	jsVersion string
	timeout   time.Duration
	rps       float64
	burst     int
	logger    *slog.Logger
	hit       HitPolicy
}

// WithBaseURL points the client at another host, mostly for tests.
func WithBaseURL(base string) Option {
	return func(o *clientOptions) { o.baseURL = base }
}

// WithJSVersion sets the x-js-version client build header.
func WithJSVersion(v string) Option {
	return func(o *clientOptions) { o.jsVersion = v }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *clientOptions) {
		o.rps = rps
		o.burst = burst
	}
}

// WithLogger sets the logger used for protocol diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithHitPolicy bounds the HitRandomPost retry loop.
func WithHitPolicy(p HitPolicy) Option {
	return func(o *clientOptions) { o.hit = p }
}

// NewClient builds an anonymous Client with the browser header profile and
// tracking cookies installed.
func NewClient(opts ...Option) (*Client, error) {
	o := clientOptions{
		baseURL:   defaultBaseURL,
		jsVersion: defaultJSVersion,
		timeout:   requestTimeout,
		rps:       defaultRequestsPerSecond,
		burst:     defaultBurst,
		hit:       DefaultHitPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base, err := parseBaseURL(o.baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	limit := rate.Inf
	if o.rps > 0 {
		limit = rate.Limit(o.rps)
	}
	if o.burst <= 0 {
		o.burst = 1
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: o.timeout, Jar: jar},
		jar:     jar,
		header:  browserHeader(base, o.jsVersion),
		limiter: rate.NewLimiter(limit, o.burst),
		logger:  o.logger,
		hit:     o.hit.normalized(),
	}
	for _, tc := range trackingCookies {
		c.setCookie(tc.name, tc.value)
	}
	c.logger.Info("dtf client initialized", "base_url", base.String())
	return c, nil
}

func browserHeader(base *url.URL, jsVersion string) http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("User-Agent", defaultUserAgent)
	h.Set("Referer", base.String()+"/")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("X-Js-Version", jsVersion)
	h.Set("X-This-Is-Csrf", csrfHeaderValue)
	return h
}

// State reports whether the client holds a verified session.
func (c *Client) State() State {
	if c.account != nil {
		return StateAuthenticated
	}
	return StateAnonymous
}

// Account returns the identity resolved by the last successful account check.
func (c *Client) Account() (Account, bool) {
	if c.account == nil {
		return Account{}, false
	}
	return *c.account, true
}

// Cookie returns the session token, if one is installed.
func (c *Client) Cookie() (string, bool) {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == TokenCookie {
			return ck.Value, true
		}
	}
	return "", false
}

// SaveCookies exposes every cookie held for the site for persistence.
func (c *Client) SaveCookies() map[string]string {
	out := make(map[string]string)
	for _, ck := range c.jar.Cookies(c.baseURL) {
		out[ck.Name] = ck.Value
	}
	return out
}

// LoadCookies restores cookies previously returned by SaveCookies. It does not
// verify the token; use LoginWithToken for that.
func (c *Client) LoadCookies(cookies map[string]string) {
	for name, value := range cookies {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c.setCookie(name, value)
	}
}

// Logout drops the session token and returns the client to anonymous.
func (c *Client) Logout() {
	c.removeCookie(TokenCookie)
	c.account = nil
}

func (c *Client) setCookie(name, value string) {
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

func (c *Client) removeCookie(name string) {
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: name, Path: "/", MaxAge: -1}})
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (Envelope, error) {
	return c.call(ctx, http.MethodGet, path, query, nil, "")
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (Envelope, error) {
	return c.call(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

// call executes a request and applies the envelope rules. HTTP error statuses
// are reported through the envelope when the body carries one.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (Envelope, error) {
	payload, status, err := c.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return Envelope{}, err
	}
	env, perr := parseEnvelope(payload, c.logger)
	if status >= http.StatusMultipleChoices {
		if e, ok := AsError(perr); ok && e.Code != CodeMalformedJSON {
			e.Status = status
			return env, e
		}
		return env, transportError(status, fmt.Errorf("api %s returned status %d", path, status))
	}
	if perr != nil {
		if e, ok := AsError(perr); ok {
			e.Status = status
		}
		return env, perr
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, int, error) {
	if c == nil {
		return nil, 0, fmt.Errorf("client is nil")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, transportError(0, fmt.Errorf("rate limit wait: %w", err))
	}

	rel := &url.URL{Path: path}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, 0, transportError(0, fmt.Errorf("create request: %w", err))
	}
	if sb, ok := body.(sizedBody); ok {
		req.ContentLength = sb.size
	}
	req.Header = c.header.Clone()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, transportError(0, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := readBody(resp)
	if err != nil {
		return nil, resp.StatusCode, transportError(resp.StatusCode, fmt.Errorf("read response: %w", err))
	}
	c.logger.Debug("dtf response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(payload))
	return payload, resp.StatusCode, nil
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", base, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", base)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
