package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/infrasync/infrasync-go/pkg/logger"
	"github.com/infrasync/infrasync-go/pkg/navigator"
	"github.com/infrasync/infrasync-go/pkg/toast"
)

// Fixed user-facing messages for statuses where the backend's own wording
// is either absent or not worth showing.
const (
	permissionDeniedMessage = "You do not have permission to perform this action"
	rateLimitedMessage      = "Too many requests. Please try again later."
	serverErrorMessage      = "Server error. Please try again later."
)

// State is the {data, loading, error} triple a consuming component renders
// from. Data survives a refresh-in-progress so views can keep showing the
// previous result while a new request is in flight.
type State struct {
	Data    json.RawMessage
	Loading bool
	Err     error
}

// Client executes requests against one backend base URL.
// Construct one per consuming component; the State triple is per-client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	notifier   toast.Notifier
	nav        navigator.Navigator
	log        *slog.Logger
	loginPath  string
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
	backoff    BackoffStrategy

	mu      sync.Mutex
	data    json.RawMessage
	loading bool
	err     error
}

// New creates a Client for the given base URL. The default HTTP client
// carries a cookie jar so the session cookie issued at login is included on
// every request.
func New(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar: jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		nav:        navigator.Browser{},
		log:        slog.Default(),
		loginPath:  "/auth",
		retries:    3,
		retryDelay: time.Second,
		timeout:    10 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.notifier == nil {
		c.notifier = toast.NewSlogNotifier(c.log)
	}

	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// HTTPClient exposes the underlying HTTP client so cooperating components
// (the session manager, the login flow) can share the same cookie jar.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// State returns a snapshot of the client's request state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Data: c.data, Loading: c.loading, Err: c.err}
}

// Err returns the classified error of the last terminal failure, or nil.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Reset clears the request state.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data, c.loading, c.err = nil, false, nil
}

// Do executes one logical request and returns the parsed JSON body, or nil
// on terminal failure. It never panics and never surfaces transport errors
// directly: failures are classified, recorded in State, and (unless
// suppressed) pushed to the notifier as a toast.
//
// Retry policy: 4xx responses fail fast except 429, which is retried like
// server errors; 5xx and transport failures are retried up to the attempt
// bound with linearly growing delays. A 401 short-circuits everything:
// the navigator is pointed at the login entry and the call resolves nil
// with no toast, since flashing an error before the login page helps nobody.
func (c *Client) Do(ctx context.Context, endpoint string, opts ...RequestOption) json.RawMessage {
	o := c.newRequestOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.backoff == nil {
		o.backoff = LinearBackoff{Interval: o.retryDelay}
	}

	c.mu.Lock()
	// Stale-while-revalidate: previous data stays visible during the fetch.
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	requestID := uuid.NewString()

	var lastErr *RequestError
	for attempt := 1; attempt <= o.retries; attempt++ {
		if attempt > 1 {
			delay := o.backoff.NextInterval(attempt - 1)
			select {
			case <-ctx.Done():
				// Cancellation ends the request with the last observed
				// failure, not a fresh generic one.
				return c.fail(o, lastErr)
			case <-time.After(delay):
			}
		}

		raw, reqErr := c.attempt(ctx, endpoint, o, requestID)
		if reqErr == nil {
			c.mu.Lock()
			c.data, c.loading, c.err = raw, false, nil
			c.mu.Unlock()
			return raw
		}

		if errors.Is(reqErr.Kind, ErrSessionExpired) {
			c.log.DebugContext(ctx, "session expired, redirecting to login",
				logger.Endpoint(endpoint))
			if err := c.nav.Navigate(c.loginPath); err != nil {
				c.log.ErrorContext(ctx, "login redirect failed", logger.Error(err))
			}
			c.mu.Lock()
			c.data, c.loading, c.err = nil, false, reqErr
			c.mu.Unlock()
			return nil
		}

		lastErr = reqErr
		lastErr.Attempts = attempt
		if !reqErr.IsRetryable() {
			break
		}

		c.log.DebugContext(ctx, "request attempt failed",
			logger.Endpoint(endpoint),
			slog.Int("attempt", attempt),
			slog.Int("status", reqErr.StatusCode),
			logger.Error(reqErr))
	}

	return c.fail(o, lastErr)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) json.RawMessage {
	return c.Do(ctx, endpoint, append(opts, WithMethod(http.MethodGet))...)
}

// Post issues a POST request with the given JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) json.RawMessage {
	return c.Do(ctx, endpoint, append(opts, WithMethod(http.MethodPost), WithBody(body))...)
}

// Put issues a PUT request with the given JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...RequestOption) json.RawMessage {
	return c.Do(ctx, endpoint, append(opts, WithMethod(http.MethodPut), WithBody(body))...)
}

// Patch issues a PATCH request with the given JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, body any, opts ...RequestOption) json.RawMessage {
	return c.Do(ctx, endpoint, append(opts, WithMethod(http.MethodPatch), WithBody(body))...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) json.RawMessage {
	return c.Do(ctx, endpoint, append(opts, WithMethod(http.MethodDelete))...)
}

// fail records the terminal failure and emits the toast.
func (c *Client) fail(o *requestOptions, reqErr *RequestError) json.RawMessage {
	if reqErr == nil {
		reqErr = &RequestError{Kind: ErrServer, Message: serverErrorMessage}
	}

	c.mu.Lock()
	c.data, c.loading, c.err = nil, false, reqErr
	c.mu.Unlock()

	if o.showToast {
		c.notifier.Notify(toast.Toast{
			Title:       "Error",
			Description: reqErr.Message,
			Variant:     toast.VariantDestructive,
		})
	}
	return nil
}

// attempt performs a single HTTP attempt and classifies its outcome.
func (c *Client) attempt(ctx context.Context, endpoint string, o *requestOptions, requestID string) (json.RawMessage, *RequestError) {
	var bodyReader io.Reader
	if o.hasBody {
		payload, err := json.Marshal(o.body)
		if err != nil {
			return nil, &RequestError{Kind: ErrClient, Message: fmt.Sprintf("invalid request body: %v", err)}
		}
		bodyReader = bytes.NewReader(payload)
	}

	// Per-attempt timeout layered on the caller's context; an expired
	// attempt classifies as a server failure and stays retryable.
	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, o.method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, &RequestError{Kind: ErrClient, Message: fmt.Sprintf("invalid request: %v", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Kind: ErrServer, Message: serverErrorMessage}
	}
	defer func() { _ = resp.Body.Close() }()

	// 1MB cap; no Infrasync response comes close, and it bounds memory on
	// a misbehaving proxy.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(body) == 0 {
			// Bodyless success (logout, deletes). Callers get a non-nil
			// sentinel so nil keeps meaning failure.
			return json.RawMessage("null"), nil
		}
		if !json.Valid(body) {
			return nil, &RequestError{Kind: ErrServer, Message: serverErrorMessage, StatusCode: resp.StatusCode}
		}
		return body, nil
	}

	derived := deriveMessage(body, resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &RequestError{Kind: ErrSessionExpired, Message: "session expired", StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusForbidden:
		// The backend's own wording ("not an admin") beats the generic
		// permission text when it says anything at all.
		msg := derived
		if !messageFromBody(body) {
			msg = permissionDeniedMessage
		}
		return nil, &RequestError{Kind: ErrPermissionDenied, Message: msg, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RequestError{Kind: ErrRateLimited, Message: rateLimitedMessage, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return nil, &RequestError{Kind: ErrServer, Message: serverErrorMessage, StatusCode: resp.StatusCode}
	default:
		return nil, &RequestError{Kind: ErrClient, Message: derived, StatusCode: resp.StatusCode}
	}
}

// deriveMessage extracts a human-readable message from an error response:
// the JSON body's "detail" or "message" field, then the HTTP status text,
// then "HTTP <status>".
func deriveMessage(body []byte, resp *http.Response) string {
	var errBody struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errBody); err == nil {
		if errBody.Detail != "" {
			return errBody.Detail
		}
		if errBody.Message != "" {
			return errBody.Message
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}

// messageFromBody reports whether the error body itself carried a message.
func messageFromBody(body []byte) bool {
	var errBody struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil {
		return false
	}
	return errBody.Detail != "" || errBody.Message != ""
}

// Decode unmarshals a response body into T. A nil body (terminal failure)
// yields the zero value and an error.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if raw == nil {
		return v, errors.New("apiclient: no response body")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("apiclient: decode response: %w", err)
	}
	return v, nil
}
