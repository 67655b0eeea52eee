package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/client/credentials"
	"github.com/dmitrijs2005/iamclient/internal/client/models"
	"github.com/dmitrijs2005/iamclient/internal/client/transport"
	"github.com/dmitrijs2005/iamclient/internal/common"
	"github.com/dmitrijs2005/iamclient/internal/logging"
	"github.com/dmitrijs2005/iamclient/internal/tokenx"
)

// outcome of a refresh cycle as seen by a queued caller.
type outcome struct {
	token string
	err   error
}

// turn is a queued caller's place in the replay order. It ends once the
// caller's replay reaches the transport or the caller stops waiting.
type turn struct {
	once sync.Once
	done chan struct{}
}

func newTurn() *turn {
	return &turn{done: make(chan struct{})}
}

func (t *turn) end() {
	t.once.Do(func() { close(t.done) })
}

type pending struct {
	done chan outcome
	turn *turn
}

// Coordinator attaches the access token to outgoing requests and recovers
// from 401 replies with at most one refresh call in flight.
type Coordinator struct {
	store *credentials.Store
	bare  transport.Transport

	log            logging.Logger
	metrics        *Metrics
	refreshPath    string
	refreshTimeout time.Duration
	threshold      time.Duration
	now            func() time.Time

	mu         sync.Mutex
	refreshing bool
	// epoch advances whenever the credential pair is replaced: a refresh
	// cycle settles, or the application logs in or out.
	epoch     uint64
	queue     []*pending
	onExpired func()
}

var _ transport.Transport = (*Coordinator)(nil)

// NewCoordinator wraps bare, which must not be a Coordinator itself: the
// refresh call goes through it directly.
func NewCoordinator(store *credentials.Store, bare transport.Transport, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:          store,
		bare:           bare,
		log:            logging.Discard(),
		refreshPath:    common.PathRefresh,
		refreshTimeout: common.DefaultRequestTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionExpired registers the hook run after a failed refresh has cleared
// the credentials. It runs once per failed cycle, on the goroutine that ran
// the cycle. A later call replaces the hook.
func (c *Coordinator) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

// Credential returns the current token/user pair.
func (c *Coordinator) Credential() credentials.Credential {
	return c.store.Get()
}

// SetAuthenticated stores a pair obtained outside a refresh cycle, e.g. from
// login.
func (c *Coordinator) SetAuthenticated(ctx context.Context, token string, user *models.User) error {
	err := c.store.Set(ctx, token, user)
	if errors.Is(err, common.ErrIncompleteCredential) {
		return err
	}
	c.bumpEpoch()
	return err
}

// Clear drops the credentials, e.g. on logout.
func (c *Coordinator) Clear(ctx context.Context) error {
	err := c.store.Clear(ctx)
	c.bumpEpoch()
	return err
}

func (c *Coordinator) bumpEpoch() {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
}

// Send implements transport.Transport.
func (c *Coordinator) Send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	earlyFailed := false
	if c.threshold > 0 && !req.Retry && !req.Anonymous {
		earlyFailed = !c.refreshIfExpiring(ctx)
	}
	epoch := c.currentEpoch()

	resp, err := c.send(ctx, req, c.store.Get().AccessToken)
	if err == nil {
		return resp, nil
	}

	var he *transport.HTTPError
	if !errors.As(err, &he) || !he.Unauthorized() || req.Retry || req.Anonymous || earlyFailed {
		return nil, err
	}

	return c.recoverUnauthorized(ctx, req, err, epoch)
}

// Refresh joins the refresh cycle in flight or starts one, and returns the
// resulting credentials. Failure has the same effects as a failed cycle
// started by a 401; the error matches both common.ErrSessionExpired and
// common.ErrRefreshFailed.
func (c *Coordinator) Refresh(ctx context.Context) (credentials.Credential, error) {
	c.mu.Lock()
	if c.refreshing {
		p := c.enqueueLocked()
		c.mu.Unlock()

		select {
		case out := <-p.done:
			p.turn.end()
			if out.err != nil {
				return credentials.Credential{}, fmt.Errorf("%w: %w", common.ErrSessionExpired, out.err)
			}
			return c.store.Get(), nil
		case <-ctx.Done():
			p.turn.end()
			return credentials.Credential{}, ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	token, queue, err := c.runCycle(ctx)
	if err != nil {
		return credentials.Credential{}, fmt.Errorf("%w: %w", common.ErrSessionExpired, err)
	}
	cred := c.store.Get()
	c.dispatch(nil, queue, token)
	return cred, nil
}

func (c *Coordinator) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

func (c *Coordinator) enqueueLocked() *pending {
	p := &pending{done: make(chan outcome, 1), turn: newTurn()}
	c.queue = append(c.queue, p)
	c.metrics.queued()
	return p
}

// recoverUnauthorized handles the first 401 of req. origErr is what every
// failure path hands back to the caller.
func (c *Coordinator) recoverUnauthorized(ctx context.Context, req *transport.Request, origErr error, sentAt uint64) (*transport.Response, error) {
	c.mu.Lock()
	switch {
	case c.refreshing:
		p := c.enqueueLocked()
		c.mu.Unlock()
		c.log.Debug(ctx, "waiting for token refresh", "method", req.Method, "path", req.Path)

		select {
		case out := <-p.done:
			if out.err != nil {
				return nil, origErr
			}
			return c.replay(ctx, req, out.token, p.turn)
		case <-ctx.Done():
			p.turn.end()
			return nil, ctx.Err()
		}

	case c.epoch != sentAt:
		c.mu.Unlock()
		token := c.store.Get().AccessToken
		if token == "" {
			return nil, origErr
		}
		c.log.Debug(ctx, "credentials changed while request was in flight, replaying",
			"method", req.Method, "path", req.Path)
		return c.replay(ctx, req, token, nil)

	default:
		c.refreshing = true
		c.mu.Unlock()
	}

	token, queue, err := c.runCycle(ctx)
	if err != nil {
		return nil, origErr
	}
	own := newTurn()
	go c.dispatch(own, queue, token)
	return c.replay(ctx, req, token, own)
}

// runCycle performs the refresh call and settles the cycle. The caller must
// have set c.refreshing. On failure every queued caller is rejected; on
// success the queue is returned for dispatch.
func (c *Coordinator) runCycle(ctx context.Context) (string, []*pending, error) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	c.log.Info(ctx, "refreshing access token")
	c.metrics.refreshStarted()
	start := c.now()

	tr, err := c.refresh(rctx)
	if err == nil {
		if serr := c.store.Set(rctx, tr.AccessToken, tr.User); serr != nil {
			c.log.Warn(ctx, "refreshed credentials not persisted", "error", serr)
		}
	} else {
		if cerr := c.store.Clear(rctx); cerr != nil {
			c.log.Warn(ctx, "persisted credentials not cleared", "error", cerr)
		}
	}
	c.metrics.refreshDone(err == nil)

	c.mu.Lock()
	c.refreshing = false
	c.epoch++
	queue := c.queue
	c.queue = nil
	hook := c.onExpired
	c.mu.Unlock()

	if err != nil {
		for _, p := range queue {
			p.done <- outcome{err: err}
		}
		c.log.Warn(ctx, "token refresh failed, session expired",
			"error", err, "queued", len(queue), "duration", c.now().Sub(start))
		if hook != nil {
			hook()
		}
		return "", nil, err
	}

	c.log.Info(ctx, "access token refreshed",
		"queued", len(queue), "duration", c.now().Sub(start))
	return tr.AccessToken, queue, nil
}

// dispatch releases the queued callers in FIFO order, each only after the
// previous one has handed its replay to the transport. A non-nil after is
// waited for first.
func (c *Coordinator) dispatch(after *turn, queue []*pending, token string) {
	if after != nil {
		<-after.done
	}
	for _, p := range queue {
		p.done <- outcome{token: token}
		<-p.turn.done
	}
}

func (c *Coordinator) refresh(ctx context.Context) (*models.TokenResponse, error) {
	req := transport.NewRequest(http.MethodPost, c.refreshPath, nil)
	req.Credentials = transport.CredentialsInclude

	resp, err := c.bare.Send(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRefreshFailed, err)
	}

	var tr models.TokenResponse
	if err := resp.Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", common.ErrRefreshFailed, err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrRefreshFailed, common.ErrMissingAccessToken)
	}
	if tr.User == nil {
		return nil, fmt.Errorf("%w: no user in response", common.ErrRefreshFailed)
	}
	return &tr, nil
}

// replay resends req with token. When t is set it ends as soon as the
// transport reports the dispatch, or when the exchange is over for
// transports that never do.
func (c *Coordinator) replay(ctx context.Context, req *transport.Request, token string, t *turn) (*transport.Response, error) {
	r := req.Clone()
	r.Retry = true
	if t != nil {
		defer t.end()
		ctx = transport.WithDispatchHook(ctx, t.end)
	}

	resp, err := c.send(ctx, r, token)
	c.metrics.replayed(err == nil)
	if err != nil {
		c.log.Debug(ctx, "replay failed", "method", req.Method, "path", req.Path, "error", err)
	}
	return resp, err
}

func (c *Coordinator) send(ctx context.Context, req *transport.Request, token string) (*transport.Response, error) {
	r := req.Clone()
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+" "+token)
	}
	return c.bare.Send(ctx, r)
}

// refreshIfExpiring runs or joins a cycle when the access token is a JWT
// about to expire. It reports false when that cycle failed: the store is
// empty then, the request goes out without a token and its 401 is returned
// as is.
func (c *Coordinator) refreshIfExpiring(ctx context.Context) bool {
	token := c.store.Get().AccessToken
	if token == "" || !tokenx.ShouldRefresh(token, c.threshold, c.now()) {
		return true
	}
	c.log.Debug(ctx, "access token close to expiry, refreshing early")
	if _, err := c.Refresh(ctx); err != nil {
		c.log.Debug(ctx, "early refresh failed", "error", err)
		return false
	}
	return true
}
