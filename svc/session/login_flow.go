package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/infrasync/infrasync-go/pkg/logger"
	"github.com/infrasync/infrasync-go/pkg/signals"
)

// LoginFlowOption configures a LoginFlow.
type LoginFlowOption func(*LoginFlow)

// WithCallbackAddr sets the loopback address the callback server binds to.
// Use "127.0.0.1:0" to pick a free port.
func WithCallbackAddr(addr string) LoginFlowOption {
	return func(f *LoginFlow) {
		if addr != "" {
			f.addr = addr
		}
	}
}

// WithLoginTimeout bounds how long Run waits for the callback to arrive.
func WithLoginTimeout(d time.Duration) LoginFlowOption {
	return func(f *LoginFlow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// LoginFlow drives an interactive login. It stands up a loopback HTTP
// server, sends the user's browser to the backend's OAuth initiation
// endpoint, and waits for the backend to redirect back with a one-time
// token. The token is exchanged for a session cookie, which lands in the
// manager's cookie jar, and the session is refreshed.
type LoginFlow struct {
	m       *Manager
	addr    string
	timeout time.Duration

	listener net.Listener
	server   *http.Server
	tokenCh  chan string
}

// NewLoginFlow binds the callback server and returns the flow. Callers
// must Close the flow, typically after Run returns.
func (m *Manager) NewLoginFlow(opts ...LoginFlowOption) (*LoginFlow, error) {
	f := &LoginFlow{
		m:       m,
		addr:    "127.0.0.1:8970",
		timeout: 3 * time.Minute,
		tokenCh: make(chan string, 1),
	}

	for _, opt := range opts {
		opt(f)
	}

	listener, err := net.Listen("tcp", f.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind login callback server: %w", err)
	}
	f.listener = listener

	r := chi.NewRouter()
	r.Get("/auth/callback", f.handleCallback)

	f.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := f.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			m.log.Warn("login callback server stopped", logger.Error(err))
		}
	}()

	return f, nil
}

// CallbackURL returns the URL the backend must redirect to after the
// OAuth exchange completes.
func (f *LoginFlow) CallbackURL() string {
	return "http://" + f.listener.Addr().String() + "/auth/callback"
}

// Run opens the browser at the login endpoint and blocks until the
// callback delivers a token, the timeout elapses, or ctx is cancelled.
// On success the session cookie is set and the session refreshed.
func (f *LoginFlow) Run(ctx context.Context) error {
	if err := f.m.Login(); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	f.m.log.InfoContext(ctx, "waiting for login callback",
		slog.String("callback_url", f.CallbackURL()))

	var token string
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.timeout):
		return ErrLoginTimeout
	case token = <-f.tokenCh:
	}
	if token == "" {
		return ErrMissingToken
	}

	if err := f.m.setCookie(ctx, token); err != nil {
		return err
	}

	f.m.Refresh(ctx)
	f.m.publish(ctx, signals.KindLogin)
	return nil
}

// Close shuts the callback server down.
func (f *LoginFlow) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.server.Shutdown(ctx)
}

func (f *LoginFlow) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	select {
	case f.tokenCh <- token:
	default:
	}

	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, "<html><body><p>Login complete. You can return to the terminal.</p></body></html>")
}

// setCookie exchanges the one-time token for the HttpOnly session cookie.
// The cookie is stored in the shared jar, so subsequent requests from the
// manager and any API client on the same jar carry it automatically.
func (m *Manager) setCookie(ctx context.Context, token string) error {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+setCookiePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build set-cookie request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("token exchange returned status %d", resp.StatusCode)
	}
	return nil
}
