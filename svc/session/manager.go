package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/infrasync/infrasync-go/pkg/logger"
	"github.com/infrasync/infrasync-go/pkg/navigator"
	"github.com/infrasync/infrasync-go/pkg/signals"
)

// Backend endpoints the manager talks to.
const (
	mePath        = "/api/v1/me"
	loginPath     = "/api/v1/auth/github/login"
	logoutPath    = "/api/v1/auth/logout"
	setCookiePath = "/api/v1/auth/set-cookie"
)

// Manager owns the Session snapshot for this client. All mutation happens
// inside the manager; everything else only reads snapshots.
type Manager struct {
	baseURL    string
	httpClient *http.Client
	nav        navigator.Navigator
	bus        signals.Bus
	log        *slog.Logger

	// origin identifies this client on the signal bus so it can ignore
	// its own login/logout signals.
	origin string

	resolveTimeout     time.Duration
	logoutRefreshDelay time.Duration

	mu            sync.Mutex
	status        Status
	user          *Identity
	needsOrgSetup bool
	loading       bool
	err           error
	// seq fences overlapping resolutions: only the most recently issued
	// resolution may write its result.
	seq      uint64
	closed   bool
	watchers map[chan Session]struct{}

	done         chan struct{}
	cancelListen context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

// New creates a Manager for the given backend base URL. Call Start to
// begin resolving identity and listening for signals.
func New(baseURL string, opts ...Option) *Manager {
	m := &Manager{
		baseURL:            strings.TrimRight(baseURL, "/"),
		httpClient:         http.DefaultClient,
		nav:                navigator.Browser{},
		log:                slog.Default(),
		origin:             uuid.NewString(),
		resolveTimeout:     10 * time.Second,
		logoutRefreshDelay: 100 * time.Millisecond,
		status:             StatusUninitialized,
		watchers:           make(map[chan Session]struct{}),
		done:               make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start kicks off the initial identity resolution and, when a signal bus
// is configured, the listener that revalidates on focus/login/logout
// signals. Start is not safe to call twice.
func (m *Manager) Start(ctx context.Context) {
	if m.bus != nil {
		listenCtx, cancel := context.WithCancel(context.Background())
		m.cancelListen = cancel
		m.wg.Add(1)
		go m.listen(listenCtx)
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.resolve(ctx)
	}()
}

// Close tears down signal subscriptions and watcher channels. In-flight
// resolutions finish but their results are discarded.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.seq++ // fence out anything still in flight
		for ch := range m.watchers {
			close(ch)
		}
		clear(m.watchers)
		m.mu.Unlock()

		close(m.done)
		if m.cancelListen != nil {
			m.cancelListen()
		}
		m.wg.Wait()
	})
	return nil
}

// Snapshot returns the current Session without touching the network.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel receiving a Session snapshot after every
// state change. The channel is closed when ctx is cancelled or the
// manager closes. Slow consumers may miss intermediate snapshots; the
// latest one is always observable through Snapshot.
func (m *Manager) Subscribe(ctx context.Context) <-chan Session {
	ch := make(chan Session, 8)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch
	}
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	if ctx.Done() != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			select {
			case <-ctx.Done():
			case <-m.done:
				// Close already drained the watcher map.
			}
			m.mu.Lock()
			if _, ok := m.watchers[ch]; ok {
				delete(m.watchers, ch)
				close(ch)
			}
			m.mu.Unlock()
		}()
	}

	return ch
}

// WaitResolved blocks until the initial (or current) resolution settles and
// returns the resulting snapshot. Returns the latest snapshot unchanged if
// ctx expires first.
func (m *Manager) WaitResolved(ctx context.Context) Session {
	sub := m.Subscribe(ctx)

	snap := m.Snapshot()
	for snap.Loading || snap.Status == StatusUninitialized || snap.Status == StatusResolving {
		select {
		case <-ctx.Done():
			return m.Snapshot()
		case next, ok := <-sub:
			if !ok {
				return m.Snapshot()
			}
			snap = next
		}
	}
	return snap
}

// Login hands the browser to the backend's OAuth initiation endpoint.
// This leaves the current flow entirely; the session updates when the
// login signal or the next resolution arrives.
func (m *Manager) Login() error {
	return m.nav.Navigate(m.baseURL + loginPath)
}

// Logout invalidates the backend session best-effort and clears the local
// user unconditionally, so the user-visible effect of "logged out" happens
// regardless of network outcome. A re-resolution is scheduled shortly
// after to capture any race with backend invalidation. Unless skipReload
// is set, the navigator is pointed back at the root path so surrounding
// state is discarded too.
func (m *Manager) Logout(ctx context.Context, skipReload bool) {
	if err := m.postLogout(ctx); err != nil {
		m.log.WarnContext(ctx, "logout request failed", logger.Error(err))
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.seq++ // discard any resolution already in flight
	m.user, m.needsOrgSetup, m.err = nil, false, nil
	m.loading = false
	m.status = StatusUnauthenticated
	m.notifyLocked()
	m.mu.Unlock()

	m.publish(ctx, signals.KindLogout)

	m.wg.Add(1)
	time.AfterFunc(m.logoutRefreshDelay, func() {
		defer m.wg.Done()
		m.resolve(context.Background())
	})

	if !skipReload {
		if err := m.nav.Navigate("/"); err != nil {
			m.log.WarnContext(ctx, "post-logout navigation failed", logger.Error(err))
		}
	}
}

// Refresh forces an immediate re-resolution and returns once it settles.
func (m *Manager) Refresh(ctx context.Context) {
	m.resolve(ctx)
}

// AdoptToken exchanges a backend-issued token for a fresh session cookie
// and re-resolves identity. Organization create/join reissue the token
// with the new org context; pass it here so the session reflects it.
func (m *Manager) AdoptToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	if err := m.setCookie(ctx, token); err != nil {
		return err
	}
	m.resolve(ctx)
	return nil
}

// Focus signals that this client regained the user's attention, which
// triggers revalidation here and in every other subscribed client.
func (m *Manager) Focus(ctx context.Context) {
	if m.bus != nil {
		m.publish(ctx, signals.KindFocus)
		return
	}
	m.resolve(ctx)
}

func (m *Manager) listen(ctx context.Context) {
	defer m.wg.Done()

	sub := m.bus.Subscribe(ctx)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sub.C():
			if !ok {
				return
			}
			// Own login/logout signals are skipped the way storage events
			// never fire in the tab that wrote them; focus always counts.
			if sig.Kind != signals.KindFocus && sig.Origin == m.origin {
				continue
			}
			m.resolve(ctx)
		}
	}
}

// resolve performs one identity resolution: mark Resolving, fetch, apply.
// If a newer resolution started while this one was in flight, its result
// is discarded.
func (m *Manager) resolve(ctx context.Context) {
	seq, ok := m.beginResolve()
	if !ok {
		return
	}

	me, err := m.fetchIdentity(ctx)
	m.applyResolve(ctx, seq, me, err)
}

func (m *Manager) beginResolve() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, false
	}
	m.seq++
	m.loading = true
	m.status = StatusResolving
	m.notifyLocked()
	return m.seq, true
}

func (m *Manager) applyResolve(ctx context.Context, seq uint64, me *meResponse, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || seq != m.seq {
		m.log.DebugContext(ctx, "discarding stale identity resolution")
		return
	}

	m.loading = false
	switch {
	case err != nil:
		m.user, m.needsOrgSetup, m.err = nil, false, err
		m.status = StatusUnauthenticated
	case !me.User.Valid():
		// Success body without a usable subject; treat as anonymous.
		m.user, m.needsOrgSetup, m.err = nil, false, ErrNotAuthenticated
		m.status = StatusUnauthenticated
	default:
		m.user, m.needsOrgSetup, m.err = me.User, me.NeedsOrgSetup, nil
		m.status = StatusAuthenticated
		m.log.DebugContext(ctx, "identity resolved",
			slog.String("sub", me.User.Sub), logger.OrgID(me.User.OrgID))
	}
	m.notifyLocked()
}

// fetchIdentity issues the credentialed identity request. A non-success
// status maps to ErrNotAuthenticated; transport failures map to
// ErrAuthUnavailable. Identity checks are not retried: an anonymous
// visitor is resolved on the first answer.
func (m *Manager) fetchIdentity(ctx context.Context) (*meResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, m.resolveTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, m.baseURL+mePath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrNotAuthenticated
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	return &me, nil
}

func (m *Manager) postLogout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+logoutPath, nil)
	if err != nil {
		return err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("logout returned status %d", resp.StatusCode)
	}
	return nil
}

func (m *Manager) publish(ctx context.Context, kind signals.Kind) {
	if m.bus == nil {
		return
	}
	sig := signals.Signal{Kind: kind, Origin: m.origin, At: time.Now()}
	if err := m.bus.Publish(ctx, sig); err != nil {
		m.log.WarnContext(ctx, "signal publish failed",
			slog.String("kind", string(kind)), logger.Error(err))
	}
}

func (m *Manager) snapshotLocked() Session {
	return Session{
		User:          m.user,
		Loading:       m.loading,
		Err:           m.err,
		NeedsOrgSetup: m.needsOrgSetup,
		Status:        m.status,
	}
}

// notifyLocked pushes the current snapshot to every watcher without
// blocking. Callers must hold m.mu.
func (m *Manager) notifyLocked() {
	snap := m.snapshotLocked()
	for ch := range m.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}
