// Package digest triggers digest generation and aggregates recent
// digests across an organization's monitors.
package digest

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/infrasync/infrasync-go/pkg/apiclient"
	"github.com/infrasync/infrasync-go/svc/monitor"
)

// Generation walks the repository, asks the summarizer for prose and
// delivers it, so it is far slower than a normal API call.
const generateTimeout = 2 * time.Minute

// Request asks the backend to generate and deliver one digest now.
type Request struct {
	Repo           string `json:"repo"`
	DeliveryMethod string `json:"delivery_method"`
	WebhookURL     string `json:"webhook_url,omitempty"`
	Email          string `json:"email,omitempty"`
}

// Response reports the generated digest and its delivery outcome.
type Response struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Summary        string         `json:"summary"`
	RepoName       string         `json:"repo_name"`
	DeliveryStatus string         `json:"delivery_status"`
	Metrics        map[string]any `json:"metrics_json,omitempty"`
}

// Service exposes digest operations over a shared API client.
type Service struct {
	api      *apiclient.Client
	monitors *monitor.Service
}

// NewService creates a digest service. monitors is used by Recent to
// resolve which monitors to pull digests from.
func NewService(api *apiclient.Client, monitors *monitor.Service) *Service {
	return &Service{api: api, monitors: monitors}
}

// Generate produces and delivers a digest for the request on the spot.
func (s *Service) Generate(ctx context.Context, req Request) (*Response, error) {
	raw := s.api.Post(ctx, "/api/v1/digest", req,
		apiclient.WithRequestTimeout(generateTimeout))
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	resp, err := apiclient.Decode[Response](raw)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recent collects the latest digests across monitors, newest first. When
// monitorIDs is nil every monitor in the organization contributes; an
// empty non-nil slice short-circuits to an empty result without touching
// the network. Monitors whose digest fetch fails are skipped, matching
// the dashboard's best-effort aggregation.
func (s *Service) Recent(ctx context.Context, monitorIDs []string, perMonitor int) ([]monitor.Digest, error) {
	if monitorIDs != nil && len(monitorIDs) == 0 {
		return []monitor.Digest{}, nil
	}

	monitors, err := s.monitors.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return []monitor.Digest{}, nil
	}

	if perMonitor <= 0 {
		perMonitor = 3
	}

	digests := make([]monitor.Digest, 0, len(monitors)*perMonitor)
	for _, m := range monitors {
		if monitorIDs != nil && !slices.Contains(monitorIDs, m.ID) {
			continue
		}
		batch, err := s.monitors.Digests(ctx, m.ID, perMonitor)
		if err != nil {
			continue
		}
		for i := range batch {
			batch[i].Repo = m.Repo
		}
		digests = append(digests, batch...)
	}

	sort.Slice(digests, func(i, j int) bool {
		return digests[i].DeliveredAt.After(digests[j].DeliveredAt)
	})
	return digests, nil
}
