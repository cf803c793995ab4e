// Package navigator models full-page navigation as an explicit effect.
//
// The session manager and API client sometimes leave the current flow
// entirely: starting the OAuth login, forcing a reload after logout, or
// bouncing an expired session to the login entry. Routing those jumps
// through a Navigator keeps them distinct from in-app state transitions
// and lets tests assert on them without a real browser.
package navigator

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// Navigator performs an external navigation to the given URL or path.
// Implementations must be safe for concurrent use.
type Navigator interface {
	Navigate(url string) error
}

// Func adapts a function to the Navigator interface.
type Func func(url string) error

func (f Func) Navigate(url string) error { return f(url) }

// Browser opens URLs in the user's default browser.
type Browser struct{}

func (Browser) Navigate(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("navigator: unsupported OS %s", runtime.GOOS)
	}
}

// Recorder captures navigations for inspection in tests.
type Recorder struct {
	mu   sync.Mutex
	urls []string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Navigate(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return nil
}

// URLs returns a copy of every navigation performed so far.
func (r *Recorder) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.urls))
	copy(out, r.urls)
	return out
}

// Last returns the most recent navigation target, or "" if none happened.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.urls) == 0 {
		return ""
	}
	return r.urls[len(r.urls)-1]
}
