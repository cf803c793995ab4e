package monitor

import (
	"context"
	"fmt"
	"net/url"

	"github.com/infrasync/infrasync-go/pkg/apiclient"
)

// Service exposes the monitor endpoints over a shared API client. The
// client carries the session cookie, retry policy and error reporting.
type Service struct {
	api *apiclient.Client
}

// NewService creates a monitor service on the given API client.
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// List returns all monitors in the caller's organization.
func (s *Service) List(ctx context.Context) ([]Monitor, error) {
	raw := s.api.Get(ctx, "/api/v1/monitor")
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	resp, err := apiclient.Decode[struct {
		Monitors []Monitor `json:"monitors"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return resp.Monitors, nil
}

// Create registers a new monitor and returns it as the backend stored it.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Monitor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	raw := s.api.Post(ctx, "/api/v1/monitor", params)
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	m, err := apiclient.Decode[Monitor](raw)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateFrequency changes how often a monitor delivers digests.
func (s *Service) UpdateFrequency(ctx context.Context, id, frequency string) error {
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyOnMerge:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}

	s.api.Patch(ctx, "/api/v1/monitor/"+url.PathEscape(id), map[string]string{"frequency": frequency})
	return s.api.Err()
}

// Delete removes a monitor.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.api.Delete(ctx, "/api/v1/monitor/"+url.PathEscape(id))
	return s.api.Err()
}

// Digests returns the monitor's most recent digests, newest first.
// limit follows the backend default when zero.
func (s *Service) Digests(ctx context.Context, id string, limit int) ([]Digest, error) {
	endpoint := "/api/v1/monitor/" + url.PathEscape(id) + "/digests"
	if limit > 0 {
		endpoint += fmt.Sprintf("?limit=%d", limit)
	}

	raw := s.api.Get(ctx, endpoint)
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	resp, err := apiclient.Decode[struct {
		Digests []Digest `json:"digests"`
	}](raw)
	if err != nil {
		return nil, err
	}
	for i := range resp.Digests {
		resp.Digests[i].MonitorID = id
	}
	return resp.Digests, nil
}

// Metrics returns aggregated activity counts for the period. When
// compareToPrevious is set, the preceding period of the same length is
// aggregated too.
func (s *Service) Metrics(ctx context.Context, id string, periodDays int, comparePrevious bool) (*MetricsReport, error) {
	q := url.Values{}
	if periodDays > 0 {
		q.Set("period_days", fmt.Sprint(periodDays))
	}
	if comparePrevious {
		q.Set("compare_to_previous", "true")
	}
	endpoint := "/api/v1/monitor/" + url.PathEscape(id) + "/metrics"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	raw := s.api.Get(ctx, endpoint)
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	report, err := apiclient.Decode[MetricsReport](raw)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Timeseries returns daily activity buckets for the period.
func (s *Service) Timeseries(ctx context.Context, id string, periodDays int) ([]TimeseriesPoint, error) {
	endpoint := "/api/v1/monitor/" + url.PathEscape(id) + "/metrics/timeseries"
	if periodDays > 0 {
		endpoint += fmt.Sprintf("?period_days=%d", periodDays)
	}

	raw := s.api.Get(ctx, endpoint)
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	resp, err := apiclient.Decode[struct {
		Timeseries []TimeseriesPoint `json:"timeseries"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return resp.Timeseries, nil
}
