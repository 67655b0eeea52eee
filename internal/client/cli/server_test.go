package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/go-chi/chi/v5"
)

const testPassword = "correct horse"

// iamBackend is an in-memory IAM API: cookie-based refresh, bearer-protected
// user and admin endpoints.
type iamBackend struct {
	mu           sync.Mutex
	access       string
	refresh      string
	seq          int
	refreshCalls int
	users        map[string]*models.User
	me           string
}

func newIAMBackend() *iamBackend {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &iamBackend{users: map[string]*models.User{
		"u-1": {ID: "u-1", Name: "Ada", Email: "ada@example.com", Enabled: true, Provider: "local",
			Roles: []models.Role{{ID: "r-1", Name: models.RoleUser}, {ID: "r-2", Name: models.RoleAdmin}}, CreatedAt: now},
		"u-2": {ID: "u-2", Name: "Bob", Email: "bob@example.com", Enabled: true, Provider: "local",
			Roles: []models.Role{{ID: "r-1", Name: models.RoleUser}}, CreatedAt: now},
	}}
	return b
}

func (b *iamBackend) routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", b.login)
			r.Post("/refresh", b.refreshToken)
			r.Post("/register", b.message(http.StatusCreated, "registered, check your email"))
			r.Get("/email-verify", b.verifyEmail)
			r.Post("/email-verify/resend", b.message(http.StatusOK, "verification email sent"))
			r.Post("/forgot-password", b.message(http.StatusOK, "reset link sent"))
			r.Post("/password-reset/confirm", b.message(http.StatusOK, "password updated"))

			r.Group(func(r chi.Router) {
				r.Use(b.authenticated)
				r.Post("/logout", b.logout)
				r.Post("/logout-all", b.logout)
				r.Post("/introspect", b.introspect)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(b.authenticated)
			r.Get("/users/me", b.getMe)
			r.Put("/users/me", b.updateMe)
			r.Delete("/users/me", b.deleteMe)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/", b.listUsers)
				r.Post("/", b.createUser)
				r.Get("/by-email", b.userByEmail)
				r.Get("/{id}", b.getUser)
				r.Put("/{id}/roles", b.updateRoles)
				r.Delete("/{id}", b.disableUser)
			})
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *iamBackend) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		ok := b.access != "" && r.Header.Get("Authorization") == "Bearer "+b.access
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// issueLocked mints a new access token and refresh cookie.
func (b *iamBackend) issueLocked(w http.ResponseWriter) string {
	b.seq++
	b.access = fmt.Sprintf("A-%d", b.seq)
	b.refresh = fmt.Sprintf("R-%d", b.seq)
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: b.refresh, Path: "/api/v1/auth", HttpOnly: true})
	return b.access
}

// expireAccess invalidates the client's access token; the refresh cookie
// stays valid.
func (b *iamBackend) expireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = "A-expired"
}

// revoke invalidates both tokens.
func (b *iamBackend) revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = "A-revoked"
	b.refresh = "R-revoked"
}

func (b *iamBackend) refreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

func (b *iamBackend) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == req.Email && req.Password == testPassword && u.Enabled {
			b.me = u.ID
			token := b.issueLocked(w)
			writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, ExpiresIn: 900, User: u})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
}

func (b *iamBackend) refreshToken(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshCalls++

	c, err := r.Cookie("refresh_token")
	if err != nil || c.Value != b.refresh || b.me == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
		return
	}
	token := b.issueLocked(w)
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, ExpiresIn: 900, User: b.users[b.me]})
}

func (b *iamBackend) logout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.access, b.refresh = "", ""
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "", Path: "/api/v1/auth", MaxAge: -1})
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "logged out"})
}

func (b *iamBackend) message(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, models.MessageResponse{Message: msg, Status: "success"})
	}
}

func (b *iamBackend) verifyEmail(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("token") != "good" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "email verified"})
}

func (b *iamBackend) introspect(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, models.IntrospectionResponse{Active: true, UserID: b.me})
}

func (b *iamBackend) getMe(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.users[b.me])
}

func (b *iamBackend) updateMe(w http.ResponseWriter, r *http.Request) {
	var req models.UserUpdateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.users[b.me]
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *iamBackend) deleteMe(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	delete(b.users, b.me)
	b.me, b.access, b.refresh = "", "", ""
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *iamBackend) isAdminLocked() bool {
	u := b.users[b.me]
	return u != nil && u.HasRole(models.RoleAdmin)
}

func (b *iamBackend) adminOnly(w http.ResponseWriter) bool {
	if !b.isAdminLocked() {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Access Denied"})
		return false
	}
	return true
}

func (b *iamBackend) listUsers(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.adminOnly(w) {
		return
	}
	out := make([]models.User, 0, len(b.users))
	for _, id := range []string{"u-1", "u-2", "u-3"} {
		if u, ok := b.users[id]; ok {
			out = append(out, *u)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *iamBackend) createUser(w http.ResponseWriter, r *http.Request) {
	var req models.AdminUserCreateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.adminOnly(w) {
		return
	}
	u := &models.User{ID: "u-3", Name: req.Name, Email: req.Email, Enabled: true, Provider: "local"}
	for _, name := range req.Roles {
		u.Roles = append(u.Roles, models.Role{Name: name})
	}
	b.users[u.ID] = u
	writeJSON(w, http.StatusCreated, u)
}

func (b *iamBackend) userByEmail(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.adminOnly(w) {
		return
	}
	for _, u := range b.users {
		if u.Email == r.URL.Query().Get("email") {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
}

func (b *iamBackend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.adminOnly(w) {
		return
	}
	u, ok := b.users[chi.URLParam(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *iamBackend) updateRoles(w http.ResponseWriter, r *http.Request) {
	var req models.AdminUserRoleUpdateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.adminOnly(w) {
		return
	}
	u, ok := b.users[chi.URLParam(r, "id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	kept := u.Roles[:0]
	for _, role := range u.Roles {
		if !strings.Contains(","+strings.Join(req.RemoveRoles, ",")+",", ","+role.Name+",") {
			kept = append(kept, role)
		}
	}
	for _, name := range req.AddRoles {
		kept = append(kept, models.Role{Name: name})
	}
	u.Roles = kept
	writeJSON(w, http.StatusOK, u)
}

func (b *iamBackend) disableUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.adminOnly(w) {
		return
	}
	id := chi.URLParam(r, "id")
	u, ok := b.users[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	u.Enabled = false
	writeJSON(w, http.StatusOK, models.DisableUserResponse{Message: "user disabled", UserID: id})
}
