package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
)

// cookieStore persists the session cookie between CLI invocations. The
// browser keeps its jar alive across pages; a one-shot process has to
// write it to disk instead.
type cookieStore struct {
	jar  *cookiejar.Jar
	path string
	base *url.URL
}

func defaultCookiePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".infrasync-cookies.json"
	}
	return filepath.Join(home, ".infrasync-cookies.json")
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newCookieStore(path, baseURL string) (*cookieStore, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	s := &cookieStore{jar: jar, path: path, base: base}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Jar returns the live jar for use in an http.Client.
func (s *cookieStore) Jar() *cookiejar.Jar { return s.jar }

func (s *cookieStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt cookie file means logging in again, not a dead CLI.
		return nil
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.jar.SetCookies(s.base, cookies)
	return nil
}

// Save writes the cookies for the backend host. Removes the file when the
// jar holds none, so logout leaves nothing behind.
func (s *cookieStore) Save() error {
	cookies := s.jar.Cookies(s.base)
	if len(cookies) == 0 {
		err := os.Remove(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
