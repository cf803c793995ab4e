package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/infrasync/infrasync-go/pkg/navigator"
	"github.com/infrasync/infrasync-go/pkg/signals"
)

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithHTTPClient sets the HTTP client used for identity and logout calls.
// Pass the API client's HTTPClient so both share one cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) {
		if hc != nil {
			m.httpClient = hc
		}
	}
}

// WithNavigator sets the external-navigation effect used by Login and the
// post-logout reload.
func WithNavigator(nav navigator.Navigator) Option {
	return func(m *Manager) {
		if nav != nil {
			m.nav = nav
		}
	}
}

// WithSignalBus connects the manager to a session signal bus. Without one
// the manager still works; it just never hears about other clients.
func WithSignalBus(bus signals.Bus) Option {
	return func(m *Manager) {
		if bus != nil {
			m.bus = bus
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithResolveTimeout bounds a single identity fetch. Default is 10s.
func WithResolveTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.resolveTimeout = d
		}
	}
}

// WithLogoutRefreshDelay sets how long after logout the manager re-resolves
// identity, to capture any race with backend session invalidation.
// Default is 100ms.
func WithLogoutRefreshDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.logoutRefreshDelay = d
		}
	}
}
