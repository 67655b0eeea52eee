// Package services contains the application services of the IAM client:
// authentication, the current user's profile and user administration. Every
// call goes through a Sender, which in production is the refresh
// coordinator.
package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/iamclient/internal/client/credentials"
	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/client/transport"
)

// Sender sends one API request.
type Sender interface {
	Send(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// Session is the authentication state the services read and change.
type Session interface {
	Credential() credentials.Credential
	SetAuthenticated(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context) error
	Refresh(ctx context.Context) (credentials.Credential, error)
}

// call sends req and decodes a JSON reply into out when out is non-nil.
func call(ctx context.Context, s Sender, req *transport.Request, out any) error {
	resp, err := s.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

func withQuery(req *transport.Request, key, value string) *transport.Request {
	if req.Query == nil {
		req.Query = url.Values{}
	}
	req.Query.Set(key, value)
	return req
}

func anonymous(req *transport.Request) *transport.Request {
	req.Anonymous = true
	return req
}
