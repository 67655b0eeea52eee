package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/iamclient/internal/common"
	"github.com/dmitrijs2005/iamclient/internal/logging"
	"golang.org/x/net/publicsuffix"
)

const jarPersistTimeout = 5 * time.Second

// storedCookie is the persisted form of a cookie; cookiejar.Jar only hands
// back name and value, so the attributes are kept here.
type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

func (c storedCookie) id() string {
	return c.Name + "|" + c.Domain + "|" + c.Path
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func (c storedCookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

// PersistentJar is a public-suffix aware cookie jar that also mirrors the
// cookies set by one origin (the IAM backend) into the metadata repository.
// Cookies without an expiry are persisted too, so the refresh cookie of a
// session survives a restart of the CLI.
type PersistentJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	origin *url.URL
	repo   metadata.Repository
	log    logging.Logger
	saved  map[string]storedCookie
	now    func() time.Time
}

var _ http.CookieJar = (*PersistentJar)(nil)

// NewPersistentJar creates the jar and loads cookies persisted earlier for
// origin.
func NewPersistentJar(ctx context.Context, origin *url.URL, repo metadata.Repository, log logging.Logger) (*PersistentJar, error) {
	if log == nil {
		log = logging.Discard()
	}
	j := &PersistentJar{
		origin: origin,
		repo:   repo,
		log:    log,
		saved:  make(map[string]storedCookie),
		now:    time.Now,
	}
	if err := j.reset(); err != nil {
		return nil, err
	}
	if err := j.load(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	j.jar.SetCookies(u, cookies)

	if u.Hostname() != j.origin.Hostname() {
		j.mu.Unlock()
		return
	}

	now := j.now()
	for _, c := range cookies {
		sc := storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || sc.expired(now) || c.Value == "" {
			delete(j.saved, sc.id())
			continue
		}
		j.saved[sc.id()] = sc
	}
	data, err := j.encodeLocked()
	j.mu.Unlock()

	if err != nil {
		j.log.Warn(context.Background(), "cannot encode cookies", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jarPersistTimeout)
	defer cancel()
	if err := j.repo.Set(ctx, common.MetadataKeyCookies, data); err != nil {
		j.log.Warn(ctx, "cannot persist cookies", "error", err)
	}
}

// Clear forgets every cookie, in memory and on disk.
func (j *PersistentJar) Clear(ctx context.Context) error {
	j.mu.Lock()
	err := j.reset()
	j.saved = make(map[string]storedCookie)
	j.mu.Unlock()
	if err != nil {
		return err
	}

	if err := j.repo.Delete(ctx, common.MetadataKeyCookies); err != nil {
		return fmt.Errorf("clear persisted cookies: %w", err)
	}
	return nil
}

func (j *PersistentJar) reset() error {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	j.jar = jar
	return nil
}

func (j *PersistentJar) load(ctx context.Context) error {
	raw, err := j.repo.Get(ctx, common.MetadataKeyCookies)
	if err != nil {
		return fmt.Errorf("load persisted cookies: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		j.log.Warn(ctx, "discarding unreadable persisted cookies", "error", err)
		return nil
	}

	now := j.now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		if sc.expired(now) {
			continue
		}
		j.saved[sc.id()] = sc
		cookies = append(cookies, sc.httpCookie())
	}
	j.jar.SetCookies(j.origin, cookies)
	return nil
}

func (j *PersistentJar) encodeLocked() ([]byte, error) {
	out := make([]storedCookie, 0, len(j.saved))
	for _, sc := range j.saved {
		out = append(out, sc)
	}
	return json.Marshal(out)
}
