package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/infrasync/infrasync-go/pkg/apiclient"
	"github.com/infrasync/infrasync-go/pkg/config"
	"github.com/infrasync/infrasync-go/pkg/logger"
	"github.com/infrasync/infrasync-go/pkg/navigator"
	"github.com/infrasync/infrasync-go/pkg/signals"
	"github.com/infrasync/infrasync-go/pkg/toast"
	"github.com/infrasync/infrasync-go/svc/billing"
	"github.com/infrasync/infrasync-go/svc/digest"
	"github.com/infrasync/infrasync-go/svc/monitor"
	"github.com/infrasync/infrasync-go/svc/org"
	"github.com/infrasync/infrasync-go/svc/session"
)

const defaultBaseURL = "http://localhost:8000"

type app struct {
	log      *slog.Logger
	profile  config.Profile
	cookies  *cookieStore
	api      *apiclient.Client
	sessions *session.Manager
	monitors *monitor.Service
	digests  *digest.Service
	orgs     *org.Service
	billing  *billing.Service
	bus      signals.Bus
}

func wireApp() (*app, error) {
	var apiCfg config.API
	if err := config.Load(&apiCfg); err != nil {
		return nil, fmt.Errorf("load api config: %w", err)
	}
	var logCfg config.Log
	if err := config.Load(&logCfg); err != nil {
		return nil, fmt.Errorf("load log config: %w", err)
	}
	var sigCfg config.Signals
	if err := config.Load(&sigCfg); err != nil {
		return nil, fmt.Errorf("load signals config: %w", err)
	}

	log := logger.New(logger.WithSettings(logCfg.Level, logCfg.Format))

	profile, err := config.LoadProfile(config.DefaultProfilePath())
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	baseURL := firstNonEmpty(profile.BaseURL, apiCfg.BaseURL, defaultBaseURL)

	cookies, err := newCookieStore(defaultCookiePath(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("open cookie store: %w", err)
	}
	httpClient := &http.Client{Jar: cookies.Jar()}

	api := apiclient.New(baseURL,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithLogger(log),
		apiclient.WithNotifier(notifierFor(log, profile.Quiet)),
		apiclient.WithRetries(apiCfg.Retries),
		apiclient.WithRetryDelay(apiCfg.RetryDelay),
		apiclient.WithTimeout(apiCfg.RequestTimeout),
	)

	// The signal bus is optional: without Redis the CLI simply never
	// hears about logins and logouts from other clients.
	var bus signals.Bus
	if sigCfg.RedisURL != "" {
		redisBus, err := signals.NewRedisBusFromURL(context.Background(), sigCfg.RedisURL, sigCfg.Channel)
		if err != nil {
			log.Warn("session signal bus unavailable", logger.Error(err))
		} else {
			bus = redisBus
		}
	}

	sessionOpts := []session.Option{
		session.WithHTTPClient(httpClient),
		session.WithNavigator(navigator.Browser{}),
		session.WithLogger(log),
	}
	if bus != nil {
		sessionOpts = append(sessionOpts, session.WithSignalBus(bus))
	}
	sessions := session.New(baseURL, sessionOpts...)

	monitors := monitor.NewService(api)

	return &app{
		log:      log,
		profile:  profile,
		cookies:  cookies,
		api:      api,
		sessions: sessions,
		monitors: monitors,
		digests:  digest.NewService(api, monitors),
		orgs:     org.NewService(api),
		billing:  billing.NewService(api),
		bus:      bus,
	}, nil
}

// shutdown persists cookies and releases the signal bus after a command.
func (a *app) shutdown() error {
	if err := a.sessions.Close(); err != nil {
		return err
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.log.Warn("signal bus close failed", logger.Error(err))
		}
	}
	return a.cookies.Save()
}

// orgID resolves the organization for billing commands: the profile's
// default org first, the session's org as fallback.
func (a *app) orgID(ctx context.Context) (string, error) {
	if a.profile.DefaultOrg != "" {
		return a.profile.DefaultOrg, nil
	}

	a.sessions.Refresh(ctx)
	snap := a.sessions.Snapshot()
	if snap.Authenticated() && snap.User.OrgID != "" {
		return snap.User.OrgID, nil
	}
	return "", fmt.Errorf("no organization: log in or set default_org in %s", config.DefaultProfilePath())
}

// notifierFor picks the toast sink for the API client. A quiet profile
// drops toasts entirely; errors still reach the user through command
// return values.
func notifierFor(log *slog.Logger, quiet bool) toast.Notifier {
	if quiet {
		return toast.Discard
	}
	return toast.NewSlogNotifier(log)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
