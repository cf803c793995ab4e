package apiclient

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/infrasync/infrasync-go/pkg/navigator"
	"github.com/infrasync/infrasync-go/pkg/toast"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the default cookie-jar-backed HTTP client.
// Useful for custom transports or tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithNotifier sets the toast sink for terminal failures.
func WithNotifier(n toast.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithNavigator sets the external-navigation effect used on 401.
func WithNavigator(nav navigator.Navigator) Option {
	return func(c *Client) {
		if nav != nil {
			c.nav = nav
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithLoginPath overrides the path the client redirects to on 401.
// Default is "/auth".
func WithLoginPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// WithRetries sets the default total number of attempts for retryable
// failures. Default is 3.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithRetryDelay sets the default base delay for linear backoff. Default is 1s.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithTimeout sets the default per-attempt timeout. Default is 10s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBackoff replaces the default linear backoff for every request made
// through this client.
func WithBackoff(strategy BackoffStrategy) Option {
	return func(c *Client) {
		if strategy != nil {
			c.backoff = strategy
		}
	}
}

// requestOptions holds per-request settings, resolved against the client
// defaults in newRequestOptions.
type requestOptions struct {
	method     string
	body       any
	hasBody    bool
	headers    map[string]string
	retries    int
	retryDelay time.Duration
	timeout    time.Duration
	backoff    BackoffStrategy
	showToast  bool
}

func (c *Client) newRequestOptions() *requestOptions {
	return &requestOptions{
		method:     http.MethodGet,
		headers:    make(map[string]string),
		retries:    c.retries,
		retryDelay: c.retryDelay,
		timeout:    c.timeout,
		backoff:    c.backoff,
		showToast:  true,
	}
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithMethod sets the HTTP method. The Get/Post/Put/Patch/Delete wrappers
// are the usual way to set it.
func WithMethod(method string) RequestOption {
	return func(o *requestOptions) {
		if method != "" {
			o.method = method
		}
	}
}

// WithBody attaches a JSON-serializable request body.
func WithBody(body any) RequestOption {
	return func(o *requestOptions) {
		o.body = body
		o.hasBody = true
	}
}

// WithHeader adds a request header. Content-Type defaults to
// application/json and can be overridden here.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if key != "" && value != "" {
			o.headers[key] = value
		}
	}
}

// WithHeaders adds multiple request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		for k, v := range headers {
			if k != "" && v != "" {
				o.headers[k] = v
			}
		}
	}
}

// WithRequestRetries overrides the attempt bound for this request.
func WithRequestRetries(n int) RequestOption {
	return func(o *requestOptions) {
		if n > 0 {
			o.retries = n
		}
	}
}

// WithRequestRetryDelay overrides the backoff base delay for this request.
func WithRequestRetryDelay(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.retryDelay = d
		}
	}
}

// WithRequestTimeout overrides the per-attempt timeout for this request.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRequestBackoff overrides the backoff strategy for this request.
func WithRequestBackoff(strategy BackoffStrategy) RequestOption {
	return func(o *requestOptions) {
		if strategy != nil {
			o.backoff = strategy
		}
	}
}

// WithoutToast suppresses the terminal-failure toast for this request.
func WithoutToast() RequestOption {
	return func(o *requestOptions) {
		o.showToast = false
	}
}
