package models

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	// ExpiresIn is the access token TTL in seconds.
	ExpiresIn int64 `json:"expiresIn"`
	User      *User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type ConfirmPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse covers register, logout, email verification and password
// reset replies.
type MessageResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type IntrospectionResponse struct {
	Active bool     `json:"active"`
	UserID string   `json:"userId,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Exp    int64    `json:"exp,omitempty"`
	Iat    int64    `json:"iat,omitempty"`
}
