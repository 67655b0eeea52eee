// Package tokenx reads claims out of access tokens without verifying them.
// The client never trusts these claims for authorization; they only drive
// proactive refresh and status display.
package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token has no exp claim")

type Claims struct {
	Subject   string
	UserID    string
	Email     string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

type rawClaims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"userId"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Authorities []string `json:"authorities"`
}

// Inspect decodes the payload of a JWT. The signature is not checked.
func Inspect(token string) (*Claims, error) {
	var rc rawClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return nil, err
	}

	c := &Claims{
		Subject: rc.Subject,
		UserID:  rc.UserID,
		Email:   rc.Email,
		Roles:   rc.Roles,
	}
	if c.UserID == "" {
		c.UserID = rc.Subject
	}
	if len(c.Roles) == 0 {
		c.Roles = rc.Authorities
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}

// TimeUntilExpiry is exp minus now; negative once expired.
func TimeUntilExpiry(token string, now time.Time) (time.Duration, error) {
	c, err := Inspect(token)
	if err != nil {
		return 0, err
	}
	if c.ExpiresAt.IsZero() {
		return 0, ErrNoExpiry
	}
	return c.ExpiresAt.Sub(now), nil
}

// Expired reports whether token carries an exp in the past. Unreadable
// tokens and tokens without exp are not considered expired; the backend
// decides for those.
func Expired(token string, now time.Time) bool {
	d, err := TimeUntilExpiry(token, now)
	return err == nil && d <= 0
}

// ShouldRefresh reports whether token expires within threshold. It is false
// for threshold <= 0 and for tokens whose expiry cannot be read.
func ShouldRefresh(token string, threshold time.Duration, now time.Time) bool {
	if threshold <= 0 {
		return false
	}
	d, err := TimeUntilExpiry(token, now)
	return err == nil && d < threshold
}
