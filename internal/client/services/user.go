package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/client/transport"
	"github.com/dmitrijs2005/iamclient/internal/common"
)

// UserService manages the signed-in user's own account.
type UserService interface {
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, upd models.UserUpdateRequest) (*models.User, error)
	DeleteMe(ctx context.Context) error
}

type userService struct {
	api     Sender
	session Session
}

func NewUserService(api Sender, session Session) UserService {
	return &userService{api: api, session: session}
}

func (s *userService) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := call(ctx, s.api, transport.NewRequest(http.MethodGet, common.PathUsersMe, nil), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMe saves the profile and replaces the stored user with the backend's
// copy. The token is kept.
func (s *userService) UpdateMe(ctx context.Context, upd models.UserUpdateRequest) (*models.User, error) {
	var u models.User
	if err := call(ctx, s.api, transport.NewRequest(http.MethodPut, common.PathUsersMe, upd), &u); err != nil {
		return nil, err
	}

	cred := s.session.Credential()
	if cred.AccessToken == "" {
		return &u, nil
	}
	if err := s.session.SetAuthenticated(ctx, cred.AccessToken, &u); err != nil {
		return &u, fmt.Errorf("store updated user: %w", err)
	}
	return &u, nil
}

func (s *userService) DeleteMe(ctx context.Context) error {
	if err := call(ctx, s.api, transport.NewRequest(http.MethodDelete, common.PathUsersMe, nil), nil); err != nil {
		return err
	}
	return s.session.Clear(ctx)
}
