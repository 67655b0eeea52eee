package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/common"
	"github.com/dmitrijs2005/iamclient/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultUserAgent   = "iamclient/1.0"
	DefaultMaxBodySize = 4 << 20
)

var ErrBodyTooLarge = errors.New("response body exceeds limit")

// HTTPTransport is the bare transport. It attaches no credentials other than
// cookies and never intercepts responses.
type HTTPTransport struct {
	base      *url.URL
	client    *http.Client
	jar       http.CookieJar
	userAgent string
	maxBody   int64
	log       logging.Logger
}

var _ Transport = (*HTTPTransport)(nil)

type Option func(*HTTPTransport)

// WithTimeout bounds every exchange. Defaults to common.DefaultRequestTimeout.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) { t.client.Timeout = d }
}

// WithCookieJar sets the jar used for CredentialsInclude requests.
func WithCookieJar(jar http.CookieJar) Option {
	return func(t *HTTPTransport) { t.jar = jar }
}

func WithLogger(l logging.Logger) Option {
	return func(t *HTTPTransport) { t.log = l }
}

func WithUserAgent(ua string) Option {
	return func(t *HTTPTransport) { t.userAgent = ua }
}

func WithMaxBodySize(n int64) Option {
	return func(t *HTTPTransport) { t.maxBody = n }
}

// WithRoundTripper replaces the underlying http.RoundTripper.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(t *HTTPTransport) { t.client.Transport = rt }
}

func NewHTTPTransport(baseURL string, opts ...Option) (*HTTPTransport, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	t := &HTTPTransport{
		base:      base,
		client:    &http.Client{Timeout: common.DefaultRequestTimeout},
		userAgent: DefaultUserAgent,
		maxBody:   DefaultMaxBodySize,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// BaseURL returns the URL requests are resolved against.
func (t *HTTPTransport) BaseURL() *url.URL {
	u := *t.base
	return &u
}

func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	u, err := t.resolve(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := t.build(ctx, req, u)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	Dispatched(ctx)
	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.log.Debug(ctx, "http exchange failed",
			"method", httpReq.Method, "url", u.String(),
			"request_id", httpReq.Header.Get(common.RequestIDHeaderName),
			"duration", time.Since(start), "error", err)
		return nil, &HTTPError{Method: httpReq.Method, URL: u.String(), IsNetworkError: true, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, &HTTPError{Method: httpReq.Method, URL: u.String(), IsNetworkError: true, Err: err}
	}
	if int64(len(body)) > t.maxBody {
		return nil, fmt.Errorf("%s %s: %w", httpReq.Method, u.String(), ErrBodyTooLarge)
	}

	if t.jar != nil && req.Credentials == CredentialsInclude {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			t.jar.SetCookies(u, cookies)
		}
	}

	t.log.Debug(ctx, "http exchange",
		"method", httpReq.Method, "url", u.String(), "status", resp.StatusCode,
		"request_id", httpReq.Header.Get(common.RequestIDHeaderName),
		"duration", time.Since(start), "retry", req.Retry)

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, &HTTPError{
			Method: httpReq.Method,
			URL:    u.String(),
			Status: resp.StatusCode,
			Header: resp.Header,
			Body:   body,
		}
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func (t *HTTPTransport) resolve(req *Request) (*url.URL, error) {
	var u *url.URL
	if strings.HasPrefix(req.Path, "http://") || strings.HasPrefix(req.Path, "https://") {
		parsed, err := url.Parse(req.Path)
		if err != nil {
			return nil, fmt.Errorf("parse request url: %w", err)
		}
		u = parsed
	} else {
		u = t.base.JoinPath(req.Path)
		// JoinPath keeps an empty base path relative; cookie matching needs
		// an absolute one.
		if !strings.HasPrefix(u.Path, "/") {
			u.Path = "/" + u.Path
		}
	}

	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func (t *HTTPTransport) build(ctx context.Context, req *Request, u *url.URL) (*http.Request, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	hasBody := req.Body != nil && method != http.MethodGet && method != http.MethodHead
	if hasBody {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if hasBody {
		httpReq.Header.Set("Content-Type", common.ContentTypeJSON)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", common.ContentTypeJSON)
	}
	if t.userAgent != "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	if httpReq.Header.Get(common.RequestIDHeaderName) == "" {
		httpReq.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	if t.jar != nil && req.Credentials == CredentialsInclude {
		for _, c := range t.jar.Cookies(u) {
			httpReq.AddCookie(c)
		}
	}

	return httpReq, nil
}
