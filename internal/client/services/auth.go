package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/client/transport"
	"github.com/dmitrijs2005/iamclient/internal/common"
)

// AuthService defines the authentication operations of the CLI.
//
// Contract:
//   - Login: authenticate and store the returned token and user.
//   - Register: create an account; the backend sends a verification mail.
//   - Logout, LogoutAll: tell the backend, then always clear local state.
//   - RestoreSession: turn the refresh cookie into a session.
//   - VerifyEmail, ResendVerification: email verification flow.
//   - ForgotPassword, ResetPassword: password reset flow.
//   - Introspect: ask the backend what it knows about the current token.
//
// Login, Register and the email and password flows are anonymous: a 401 from
// them never starts a token refresh.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password string) (*models.MessageResponse, error)
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	RestoreSession(ctx context.Context) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.MessageResponse, error)
	ResendVerification(ctx context.Context, email string) (*models.MessageResponse, error)
	ForgotPassword(ctx context.Context, email string) (*models.MessageResponse, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*models.MessageResponse, error)
	Introspect(ctx context.Context) (*models.IntrospectionResponse, error)
}

type authService struct {
	api     Sender
	session Session
}

// NewAuthService constructs an AuthService that talks through api and keeps
// its state in session.
func NewAuthService(api Sender, session Session) AuthService {
	return &authService{api: api, session: session}
}

// Login stores the credentials even when persisting them fails; the
// persistence error is returned together with the user.
func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	req := anonymous(transport.NewRequest(http.MethodPost, common.PathLogin,
		models.LoginRequest{Email: email, Password: password}))

	var tr models.TokenResponse
	if err := call(ctx, a.api, req, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" || tr.User == nil {
		return nil, fmt.Errorf("login: %w", common.ErrMissingAccessToken)
	}

	if err := a.session.SetAuthenticated(ctx, tr.AccessToken, tr.User); err != nil {
		return tr.User, err
	}
	return tr.User, nil
}

func (a *authService) Register(ctx context.Context, name, email, password string) (*models.MessageResponse, error) {
	req := anonymous(transport.NewRequest(http.MethodPost, common.PathRegister,
		models.RegisterRequest{Name: name, Email: email, Password: password}))

	var msg models.MessageResponse
	if err := call(ctx, a.api, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.logout(ctx, common.PathLogout)
}

func (a *authService) LogoutAll(ctx context.Context) error {
	return a.logout(ctx, common.PathLogoutAll)
}

// logout clears local state whatever the backend says. The backend error, if
// any, is returned joined with the local one.
func (a *authService) logout(ctx context.Context, path string) error {
	remote := call(ctx, a.api, transport.NewRequest(http.MethodPost, path, nil), nil)
	local := a.session.Clear(ctx)
	if remote != nil {
		remote = fmt.Errorf("backend logout: %w", remote)
	}
	return errors.Join(remote, local)
}

func (a *authService) RestoreSession(ctx context.Context) (*models.User, error) {
	cred, err := a.session.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return cred.User, nil
}

func (a *authService) VerifyEmail(ctx context.Context, token string) (*models.MessageResponse, error) {
	req := anonymous(withQuery(transport.NewRequest(http.MethodGet, common.PathEmailVerify, nil), "token", token))

	var msg models.MessageResponse
	if err := call(ctx, a.api, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *authService) ResendVerification(ctx context.Context, email string) (*models.MessageResponse, error) {
	req := anonymous(withQuery(transport.NewRequest(http.MethodPost, common.PathEmailVerifyResend, nil), "email", email))

	var msg models.MessageResponse
	if err := call(ctx, a.api, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *authService) ForgotPassword(ctx context.Context, email string) (*models.MessageResponse, error) {
	req := anonymous(transport.NewRequest(http.MethodPost, common.PathForgotPassword,
		models.PasswordResetRequest{Email: email}))

	var msg models.MessageResponse
	if err := call(ctx, a.api, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *authService) ResetPassword(ctx context.Context, token, newPassword string) (*models.MessageResponse, error) {
	req := anonymous(transport.NewRequest(http.MethodPost, common.PathPasswordResetConfirm,
		models.ConfirmPasswordRequest{Token: token, NewPassword: newPassword}))

	var msg models.MessageResponse
	if err := call(ctx, a.api, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (a *authService) Introspect(ctx context.Context) (*models.IntrospectionResponse, error) {
	var ir models.IntrospectionResponse
	if err := call(ctx, a.api, transport.NewRequest(http.MethodPost, common.PathIntrospect, nil), &ir); err != nil {
		return nil, err
	}
	return &ir, nil
}
