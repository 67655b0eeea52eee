package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/client/transport"
	"github.com/dmitrijs2005/iamclient/internal/common"
)

type sentRequest struct {
	Path  string
	Auth  string
	Retry bool
}

// fakeBackend plays the IAM API behind a bare transport. Requests with a
// bearer equal to valid succeed; anything else is a 401 whose body names the
// request path and whether it was a replay.
type fakeBackend struct {
	mu           sync.Mutex
	valid        string
	issue        string
	refreshCalls int
	sent         []sentRequest

	// refreshGate, when set, blocks the refresh call until closed.
	refreshGate chan struct{}
	// refreshFail makes the refresh endpoint answer with this response.
	refreshStatus int
	refreshBody   string
	refreshCtxErr error

	// hold blocks requests to the given path until the channel is closed.
	hold map[string]chan struct{}
}

func newFakeBackend(valid, issue string) *fakeBackend {
	return &fakeBackend{valid: valid, issue: issue, hold: map[string]chan struct{}{}}
}

func jsonResponse(status int, v any) *transport.Response {
	b, _ := json.Marshal(v)
	return &transport.Response{
		Status: status,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   b,
	}
}

func (f *fakeBackend) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if req.Path == common.PathRefresh {
		return f.handleRefresh(ctx, req)
	}

	auth := req.Header.Get(common.AuthorizationHeaderName)
	f.mu.Lock()
	f.sent = append(f.sent, sentRequest{Path: req.Path, Auth: auth, Retry: req.Retry})
	transport.Dispatched(ctx)
	gate := f.hold[req.Path]
	valid := f.valid
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &transport.HTTPError{Method: req.Method, URL: req.Path, IsNetworkError: true, Err: ctx.Err()}
		}
	}

	switch {
	case strings.HasPrefix(req.Path, "/boom"):
		return nil, &transport.HTTPError{Method: req.Method, URL: req.Path, Status: http.StatusInternalServerError}
	case strings.HasPrefix(req.Path, "/offline"):
		return nil, &transport.HTTPError{Method: req.Method, URL: req.Path, IsNetworkError: true, Err: context.DeadlineExceeded}
	}

	if valid == "" || auth != common.BearerPrefix+" "+valid {
		body, _ := json.Marshal(map[string]any{"message": "unauthorized", "path": req.Path, "retry": req.Retry})
		return nil, &transport.HTTPError{
			Method: req.Method,
			URL:    req.Path,
			Status: http.StatusUnauthorized,
			Header: http.Header{"Content-Type": {"application/json"}},
			Body:   body,
		}
	}
	return jsonResponse(http.StatusOK, map[string]string{"path": req.Path}), nil
}

func (f *fakeBackend) handleRefresh(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	f.mu.Lock()
	f.refreshCalls++
	gate := f.refreshGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCtxErr = ctx.Err()

	if req.Header.Get(common.AuthorizationHeaderName) != "" || req.Credentials != transport.CredentialsInclude {
		return nil, &transport.HTTPError{Status: http.StatusBadRequest}
	}
	if f.refreshStatus >= 400 {
		return nil, &transport.HTTPError{Method: req.Method, URL: req.Path, Status: f.refreshStatus}
	}
	if f.refreshBody != "" {
		return &transport.Response{
			Status: http.StatusOK,
			Header: http.Header{"Content-Type": {"application/json"}},
			Body:   []byte(f.refreshBody),
		}, nil
	}
	return jsonResponse(http.StatusOK, models.TokenResponse{
		AccessToken: f.issue,
		ExpiresIn:   900,
		User:        &models.User{ID: "u-1", Email: "ada@example.com"},
	}), nil
}

func (f *fakeBackend) refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func (f *fakeBackend) requests() []sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentRequest(nil), f.sent...)
}

func (f *fakeBackend) setValid(tok string) {
	f.mu.Lock()
	f.valid = tok
	f.mu.Unlock()
}

func (f *fakeBackend) holdPath(path string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.hold[path] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeBackend) gateRefresh() chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.refreshGate = ch
	f.mu.Unlock()
	return ch
}
