// Package models defines the IAM resources and request/response bodies the
// client exchanges with the backend.
package models

import (
	"slices"
	"time"
)

// Role names known to the backend.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
	RoleOwner = "ROLE_OWNER"
)

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the backend's view of an account (UserResponseDto).
type User struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Enabled     bool         `json:"enabled"`
	Provider    string       `json:"provider"`
	Roles       []Role       `json:"roles"`
	Permissions []Permission `json:"permissions"`
	Image       string       `json:"image,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// RoleNames returns the names of u's roles in backend order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

func (u *User) HasRole(name string) bool {
	return slices.ContainsFunc(u.Roles, func(r Role) bool { return r.Name == name })
}

// Clone returns a deep copy of u; nil stays nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = slices.Clone(u.Roles)
	c.Permissions = slices.Clone(u.Permissions)
	return &c
}
