// Package transport performs single HTTP exchanges with the IAM backend and
// normalises their outcome into a Response or an *HTTPError.
//
// HTTPTransport is the bare transport: it never looks at status codes beyond
// classifying them and never retries. Authentication and token refresh are
// layered on top by the client package, which implements the same Transport
// interface.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrijs2005/iamclient/internal/common"
)

// Transport sends one request and returns its response. Non-2xx/3xx replies
// and failed exchanges are reported as *HTTPError.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// CredentialsPolicy controls whether cookies travel with a request.
type CredentialsPolicy int

const (
	// CredentialsInclude attaches stored cookies and stores Set-Cookie replies.
	CredentialsInclude CredentialsPolicy = iota
	// CredentialsOmit neither sends nor stores cookies.
	CredentialsOmit
)

// Request describes one call relative to the transport's base URL.
type Request struct {
	Method string
	// Path is appended to the base URL; an absolute URL is used as is.
	Path   string
	Query  url.Values
	Header http.Header
	// Body is JSON-encoded for methods other than GET and HEAD. It is
	// shared between clones and must not be mutated after sending.
	Body        any
	Credentials CredentialsPolicy
	// Retry marks a replay after a token refresh.
	Retry bool
	// Anonymous requests are never refreshed for: a 401 from them is
	// returned to the caller as is.
	Anonymous bool
}

type dispatchHookKey struct{}

// WithDispatchHook returns a context that makes the transport call fn once the
// request is handed to the network, before the reply is awaited.
func WithDispatchHook(ctx context.Context, fn func()) context.Context {
	return context.WithValue(ctx, dispatchHookKey{}, fn)
}

// Dispatched runs the hook set by WithDispatchHook, if any. Transport
// implementations call it right before they start the exchange.
func Dispatched(ctx context.Context) {
	if fn, ok := ctx.Value(dispatchHookKey{}).(func()); ok && fn != nil {
		fn()
	}
}

func NewRequest(method, path string, body any) *Request {
	return &Request{Method: method, Path: path, Body: body, Header: http.Header{}}
}

// Clone returns a copy whose Header and Query can be changed independently.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = http.Header{}
	}
	if r.Query != nil {
		c.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			c.Query[k] = slices.Clone(v)
		}
	}
	return &c
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) IsJSON() bool {
	return isJSON(r.Header)
}

// Decode unmarshals a JSON body into v.
func (r *Response) Decode(v any) error {
	if !r.IsJSON() {
		return common.ErrNotJSON
	}
	return json.Unmarshal(r.Body, v)
}

func (r *Response) Text() string {
	return string(r.Body)
}

func isJSON(h http.Header) bool {
	return strings.Contains(strings.ToLower(h.Get("Content-Type")), common.ContentTypeJSON)
}
