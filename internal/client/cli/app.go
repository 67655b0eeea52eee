package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/iamclient/internal/client/client"
	"github.com/dmitrijs2005/iamclient/internal/client/config"
	"github.com/dmitrijs2005/iamclient/internal/client/credentials"
	"github.com/dmitrijs2005/iamclient/internal/client/repositories"
	"github.com/dmitrijs2005/iamclient/internal/client/services"
	"github.com/dmitrijs2005/iamclient/internal/client/transport"
	"github.com/dmitrijs2005/iamclient/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// cookieStore is the part of the cookie jar the CLI touches directly.
type cookieStore interface {
	Clear(ctx context.Context) error
}

type App struct {
	config   *config.Config
	log      logging.Logger
	repos    *repositories.Repositories
	registry *prometheus.Registry

	session services.Session
	cookies cookieStore
	auth    services.AuthService
	users   services.UserService
	admin   services.AdminService

	metricsSrv *http.Server

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer

	statusMu sync.RWMutex
	status   string
}

// NewApp opens the local state and wires the client stack:
// state → credential store → cookie jar → transport → coordinator → services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel, c.LogFormat)

	origin, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	repos, err := repositories.InitDatabase(ctx, c.StatePath, c.StatePassphrase)
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", c.StatePath, err)
	}

	a, err := newApp(ctx, c, log, repos, origin)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	return a, nil
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, repos *repositories.Repositories, origin *url.URL) (*App, error) {
	store := credentials.NewStore(repos.Metadata, log)
	if err := store.Hydrate(ctx); err != nil {
		log.Warn(ctx, "could not restore saved credentials", "error", err)
	}

	jar, err := transport.NewPersistentJar(ctx, origin, repos.Metadata, log)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	bare, err := transport.NewHTTPTransport(c.BaseURL,
		transport.WithCookieJar(jar),
		transport.WithTimeout(c.RequestTimeout),
		transport.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	coord := client.NewCoordinator(store, bare,
		client.WithLogger(log),
		client.WithRefreshPath(c.RefreshPath),
		client.WithRefreshTimeout(c.RequestTimeout),
		client.WithRefreshThreshold(c.RefreshThreshold),
		client.WithMetrics(client.NewMetrics(registry)),
	)

	a := &App{
		config:   c,
		log:      log,
		repos:    repos,
		registry: registry,
		session:  coord,
		cookies:  jar,
		auth:     services.NewAuthService(coord, coord),
		users:    services.NewUserService(coord, coord),
		admin:    services.NewAdminService(coord),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	coord.OnSessionExpired(a.sessionExpired)
	store.Watch(a.credentialsChanged)
	a.credentialsChanged(store.Get())
	return a, nil
}

// Run serves metrics when configured and blocks in the REPL until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.config.MetricsAddr != "" {
		a.startMetricsServer(ctx)
	}
	a.Root(ctx)
	return nil
}

// Close stops the metrics server and closes the local state.
func (a *App) Close() error {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.log.Warn(ctx, "metrics server shutdown", "error", err)
		}
		a.metricsSrv = nil
	}
	if a.repos != nil {
		err := a.repos.Close()
		a.repos = nil
		return err
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Credential().Authenticated()
}

// credentialsChanged keeps the prompt status in step with the store.
func (a *App) credentialsChanged(c credentials.Credential) {
	status := ""
	switch {
	case c.User != nil && c.User.Email != "":
		status = c.User.Email
	case c.Authenticated():
		status = "signed in"
	}

	a.statusMu.Lock()
	a.status = status
	a.statusMu.Unlock()
}

func (a *App) getStatus() string {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	if a.status == "" {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", a.status)
}

func (a *App) sessionExpired() {
	a.println("\nSession expired. Please log in again.")
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
