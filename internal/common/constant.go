// Package common contains shared constants and sentinel errors used across
// the IAM client components.
package common

import "time"

// Header names and prefixes put on outbound HTTP requests.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer"
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeJSON         = "application/json"
)

// Keys of the values persisted in the local metadata store.
const (
	MetadataKeyAccessToken = "access_token"
	MetadataKeyUser        = "user"
	MetadataKeyCookies     = "cookies"
	MetadataKeyStateSalt   = "state_salt"
)

// DefaultRequestTimeout bounds every HTTP exchange, the refresh call included.
const DefaultRequestTimeout = 10 * time.Second

// Backend endpoints, relative to the API base URL.
const (
	PathLogin                = "/auth/login"
	PathRegister             = "/auth/register"
	PathLogout               = "/auth/logout"
	PathLogoutAll            = "/auth/logout-all"
	PathRefresh              = "/auth/refresh"
	PathIntrospect           = "/auth/introspect"
	PathEmailVerify          = "/auth/email-verify"
	PathEmailVerifyResend    = "/auth/email-verify/resend"
	PathForgotPassword       = "/auth/forgot-password"
	PathPasswordResetConfirm = "/auth/password-reset/confirm"
	PathUsersMe              = "/users/me"
	PathAdmin                = "/admin"
	PathAdminByEmail         = "/admin/by-email"
)
