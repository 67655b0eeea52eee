// Package credentials holds the access token and the authenticated user for
// the running process, mirrored into the local metadata store so a session
// survives restarts.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/iamclient/internal/common"
	"github.com/dmitrijs2005/iamclient/internal/logging"
)

// Credential is a snapshot of the store. AccessToken and User are set and
// cleared together.
type Credential struct {
	AccessToken string
	User        *models.User
}

func (c Credential) Authenticated() bool {
	return c.AccessToken != ""
}

// Watcher is notified after every state change with the new snapshot.
type Watcher func(Credential)

type Store struct {
	// wmu orders writers so the disk sees changes in the order memory did.
	wmu      sync.Mutex
	mu       sync.RWMutex
	cur      Credential
	touched  bool
	repo     metadata.Repository
	log      logging.Logger
	watchers []Watcher
}

// NewStore returns an empty store. repo may be nil for a memory-only store.
func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{repo: repo, log: log}
}

// Get returns a copy of the current state. It never touches the disk.
func (s *Store) Get() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Credential{AccessToken: s.cur.AccessToken, User: s.cur.User.Clone()}
}

// Set replaces the token and user. Memory is updated before persisting, so a
// following Get sees the new pair even when the returned error is non-nil.
func (s *Store) Set(ctx context.Context, token string, user *models.User) error {
	if token == "" || user == nil {
		return common.ErrIncompleteCredential
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	s.cur = Credential{AccessToken: token, User: user.Clone()}
	s.touched = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return s.persist(ctx, token, user)
}

// Clear drops the in-memory pair and the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	s.cur = Credential{}
	s.touched = true
	s.mu.Unlock()

	s.notify(Credential{})

	if s.repo == nil {
		return nil
	}
	if err := s.repo.DeleteMany(ctx, common.MetadataKeyAccessToken, common.MetadataKeyUser); err != nil {
		return fmt.Errorf("clear persisted credentials: %w", err)
	}
	return nil
}

// Hydrate loads the persisted pair. It is a no-op when nothing was persisted
// or when Set/Clear already ran in this process.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	token, err := s.repo.Get(ctx, common.MetadataKeyAccessToken)
	if err != nil {
		return fmt.Errorf("load persisted token: %w", err)
	}
	if len(token) == 0 {
		return nil
	}

	var user *models.User
	raw, err := s.repo.Get(ctx, common.MetadataKeyUser)
	if err != nil {
		return fmt.Errorf("load persisted user: %w", err)
	}
	if len(raw) > 0 {
		user = &models.User{}
		if err := json.Unmarshal(raw, user); err != nil {
			s.log.Warn(ctx, "discarding unreadable persisted user", "error", err)
			user = nil
		}
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	if s.touched || s.cur.AccessToken != "" {
		s.mu.Unlock()
		return nil
	}
	s.cur = Credential{AccessToken: string(token), User: user}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Debug(ctx, "credentials restored from local state", "has_user", user != nil)
	s.notify(snap)
	return nil
}

// Watch registers fn to run after every change. Watchers run synchronously
// on the goroutine that made the change and must not call back into Set or
// Clear.
func (s *Store) Watch(fn Watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

func (s *Store) persist(ctx context.Context, token string, user *models.User) error {
	if s.repo == nil {
		return nil
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = s.repo.SetMany(ctx, map[string][]byte{
		common.MetadataKeyAccessToken: []byte(token),
		common.MetadataKeyUser:        raw,
	})
	if err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

func (s *Store) snapshotLocked() Credential {
	return Credential{AccessToken: s.cur.AccessToken, User: s.cur.User.Clone()}
}

func (s *Store) notify(c Credential) {
	s.mu.RLock()
	ws := append([]Watcher(nil), s.watchers...)
	s.mu.RUnlock()

	for _, w := range ws {
		w(Credential{AccessToken: c.AccessToken, User: c.User.Clone()})
	}
}
