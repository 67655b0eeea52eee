// Package common defines shared constants and sentinel errors used across
// the transport, coordinator and service layers. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// HTTP status classes surfaced by the transport.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnavailable  = errors.New("server unavailable")

	// Response decoding.
	ErrNotJSON = errors.New("response is not json")

	// Token lifecycle errors.
	ErrRefreshFailed      = errors.New("token refresh failed")
	ErrMissingAccessToken = errors.New("no access token in refresh response")
	ErrSessionExpired     = errors.New("session expired")

	// Credential state errors.
	ErrIncompleteCredential = errors.New("token and user must both be present")

	// Admin role update with nothing to add or remove.
	ErrNoRoleChanges = errors.New("no role changes detected")
)
