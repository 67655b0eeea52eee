package services

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/client/transport"
	"github.com/dmitrijs2005/iamclient/internal/common"
)

// AdminService wraps the user administration endpoints. The backend decides
// who may call them; a 403 surfaces as common.ErrForbidden.
type AdminService interface {
	CreateUser(ctx context.Context, req models.AdminUserCreateRequest) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateRoles moves the user from current to desired roles. It returns
	// common.ErrNoRoleChanges without calling the backend when they match.
	UpdateRoles(ctx context.Context, id string, current, desired []string) (*models.User, error)
	DisableUser(ctx context.Context, id string) (*models.DisableUserResponse, error)
}

type adminService struct {
	api Sender
}

func NewAdminService(api Sender) AdminService {
	return &adminService{api: api}
}

func userPath(id string, rest ...string) string {
	p := common.PathAdmin + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (s *adminService) CreateUser(ctx context.Context, req models.AdminUserCreateRequest) (*models.User, error) {
	var u models.User
	if err := call(ctx, s.api, transport.NewRequest(http.MethodPost, common.PathAdmin, req), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *adminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := call(ctx, s.api, transport.NewRequest(http.MethodGet, userPath(id), nil), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *adminService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	req := withQuery(transport.NewRequest(http.MethodGet, common.PathAdminByEmail, nil), "email", email)

	var u models.User
	if err := call(ctx, s.api, req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := call(ctx, s.api, transport.NewRequest(http.MethodGet, common.PathAdmin, nil), &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *adminService) UpdateRoles(ctx context.Context, id string, current, desired []string) (*models.User, error) {
	upd := RoleDiff(current, desired)
	if len(upd.AddRoles) == 0 && len(upd.RemoveRoles) == 0 {
		return nil, common.ErrNoRoleChanges
	}

	var u models.User
	if err := call(ctx, s.api, transport.NewRequest(http.MethodPut, userPath(id, "roles"), upd), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *adminService) DisableUser(ctx context.Context, id string) (*models.DisableUserResponse, error) {
	var out models.DisableUserResponse
	if err := call(ctx, s.api, transport.NewRequest(http.MethodDelete, userPath(id), nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RoleDiff lists the roles to add and to remove to get from current to
// desired. Both lists keep the order of their source and hold no duplicates.
func RoleDiff(current, desired []string) models.AdminUserRoleUpdateRequest {
	var upd models.AdminUserRoleUpdateRequest
	for _, r := range desired {
		if !slices.Contains(current, r) && !slices.Contains(upd.AddRoles, r) {
			upd.AddRoles = append(upd.AddRoles, r)
		}
	}
	for _, r := range current {
		if !slices.Contains(desired, r) && !slices.Contains(upd.RemoveRoles, r) {
			upd.RemoveRoles = append(upd.RemoveRoles, r)
		}
	}
	return upd
}
