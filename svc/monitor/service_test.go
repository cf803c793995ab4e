package monitor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrasync/infrasync-go/pkg/apiclient"
	"github.com/infrasync/infrasync-go/pkg/navigator"
	"github.com/infrasync/infrasync-go/pkg/toast"
	"github.com/infrasync/infrasync-go/svc/monitor"
)

func newService(t *testing.T, handler http.Handler) *monitor.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := apiclient.New(srv.URL,
		apiclient.WithNotifier(&toast.Recorder{}),
		apiclient.WithNavigator(&navigator.Recorder{}),
		apiclient.WithRetryDelay(time.Millisecond),
	)
	return monitor.NewService(api)
}

func TestService_List(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/monitor", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"monitors": []map[string]any{
				{"id": "m-1", "repo": "acme/api", "delivery_method": "slack", "frequency": "daily"},
				{"id": "m-2", "repo": "acme/web", "delivery_method": "email", "frequency": "weekly"},
			},
		})
	}))

	monitors, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, monitors, 2)
	assert.Equal(t, "acme/api", monitors[0].Repo)
	assert.Equal(t, "weekly", monitors[1].Frequency)
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var p monitor.CreateParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "acme/api", p.Repo)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "m-9", "org_id": "org-1", "repo": p.Repo,
			"delivery_method": p.DeliveryMethod, "webhook_url": p.WebhookURL,
			"frequency": p.Frequency, "created_at": "2026-08-01T12:00:00Z",
		})
	}))

	m, err := svc.Create(context.Background(), monitor.CreateParams{
		Repo:           "acme/api",
		DeliveryMethod: monitor.DeliverySlack,
		WebhookURL:     "https://hooks.slack.com/services/T0/B0/x",
		Frequency:      monitor.FrequencyDaily,
	})
	require.NoError(t, err)
	assert.Equal(t, "m-9", m.ID)
	assert.Equal(t, "acme/api", m.Repo)
}

func TestService_Create_RejectsBadParamsLocally(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid params must not reach the backend")
	}))

	_, err := svc.Create(context.Background(), monitor.CreateParams{
		Repo: "not-a-repo", DeliveryMethod: monitor.DeliverySlack, Frequency: monitor.FrequencyDaily,
	})
	assert.ErrorIs(t, err, monitor.ErrInvalidRepo)

	_, err = svc.Create(context.Background(), monitor.CreateParams{
		Repo: "acme/api", DeliveryMethod: "carrier-pigeon", Frequency: monitor.FrequencyDaily,
	})
	assert.ErrorIs(t, err, monitor.ErrInvalidDeliveryMethod)

	_, err = svc.Create(context.Background(), monitor.CreateParams{
		Repo: "acme/api", DeliveryMethod: monitor.DeliverySlack, Frequency: "hourly",
	})
	assert.ErrorIs(t, err, monitor.ErrInvalidFrequency)
}

func TestService_Digests(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/monitor/m-1/digests", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"digests": []map[string]any{
				{"id": "d-1", "summary": "3 PRs merged", "status": "delivered", "delivered_at": "2026-08-20T09:00:00Z"},
			},
		})
	}))

	digests, err := svc.Digests(context.Background(), "m-1", 3)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Equal(t, "d-1", digests[0].ID)
	assert.Equal(t, "m-1", digests[0].MonitorID)
}

func TestService_Delete_NotFound(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Monitor not found"})
	}))

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorContains(t, err, "Monitor not found")
}

func TestService_UpdateFrequency_RejectsUnknownValue(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid frequency must not reach the backend")
	}))

	assert.ErrorIs(t, svc.UpdateFrequency(context.Background(), "m-1", "hourly"), monitor.ErrInvalidFrequency)
}

func TestService_Metrics_WithComparison(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/monitor/m-1/metrics", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("period_days"))
		require.Equal(t, "true", r.URL.Query().Get("compare_to_previous"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"metrics":          map[string]int{"prs_opened": 4},
			"previous_metrics": map[string]int{"prs_opened": 2},
			"period_days":      7,
		})
	}))

	report, err := svc.Metrics(context.Background(), "m-1", 7, true)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Metrics["prs_opened"])
	assert.Equal(t, 2, report.PreviousMetrics["prs_opened"])
	assert.Equal(t, 7, report.PeriodDays)
}
