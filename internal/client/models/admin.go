package models

type UserUpdateRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

type AdminUserCreateRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

type AdminUserRoleUpdateRequest struct {
	AddRoles    []string `json:"addRoles,omitempty"`
	RemoveRoles []string `json:"removeRoles,omitempty"`
}

type DisableUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}
