package digest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infrasync/infrasync-go/pkg/apiclient"
	"github.com/infrasync/infrasync-go/pkg/navigator"
	"github.com/infrasync/infrasync-go/pkg/toast"
	"github.com/infrasync/infrasync-go/svc/digest"
	"github.com/infrasync/infrasync-go/svc/monitor"
)

func newService(t *testing.T, handler http.Handler) *digest.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := apiclient.New(srv.URL,
		apiclient.WithNotifier(&toast.Recorder{}),
		apiclient.WithNavigator(&navigator.Recorder{}),
		apiclient.WithRetryDelay(time.Millisecond),
	)
	return digest.NewService(api, monitor.NewService(api))
}

func TestService_Generate(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/digest", r.URL.Path)

		var req digest.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acme/api", req.Repo)

		_ = json.NewEncoder(w).Encode(digest.Response{
			Success:        true,
			Summary:        "4 PRs merged, 2 issues closed",
			RepoName:       "acme/api",
			DeliveryStatus: "delivered",
		})
	}))

	resp, err := svc.Generate(context.Background(), digest.Request{
		Repo: "acme/api", DeliveryMethod: monitor.DeliverySlack,
		WebhookURL: "https://hooks.slack.com/services/T0/B0/x",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "delivered", resp.DeliveryStatus)
}

func recentBackend(t *testing.T, digestCalls *atomic.Int32) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/monitor":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"monitors": []map[string]any{
					{"id": "m-1", "repo": "acme/api"},
					{"id": "m-2", "repo": "acme/web"},
				},
			})
		case "/api/v1/monitor/m-1/digests":
			digestCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"digests": []map[string]any{
					{"id": "d-old", "summary": "old", "delivered_at": "2026-08-10T09:00:00Z"},
				},
			})
		case "/api/v1/monitor/m-2/digests":
			digestCalls.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"digests": []map[string]any{
					{"id": "d-new", "summary": "new", "delivered_at": "2026-08-22T09:00:00Z"},
				},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
}

func TestService_Recent_SortsNewestFirst(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc := newService(t, recentBackend(t, &calls))

	digests, err := svc.Recent(context.Background(), nil, 3)
	require.NoError(t, err)
	require.Len(t, digests, 2)
	assert.Equal(t, "d-new", digests[0].ID)
	assert.Equal(t, "acme/web", digests[0].Repo)
	assert.Equal(t, "d-old", digests[1].ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestService_Recent_FiltersToRequestedMonitors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	svc := newService(t, recentBackend(t, &calls))

	digests, err := svc.Recent(context.Background(), []string{"m-2"}, 3)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Equal(t, "d-new", digests[0].ID)
	assert.Equal(t, int32(1), calls.Load())
}

func TestService_Recent_EmptySelectionSkipsNetwork(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty selection must not hit the backend")
	}))

	digests, err := svc.Recent(context.Background(), []string{}, 3)
	require.NoError(t, err)
	assert.Empty(t, digests)
}

func TestService_Recent_SkipsFailingMonitor(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/monitor":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"monitors": []map[string]any{
					{"id": "m-1", "repo": "acme/api"},
					{"id": "m-2", "repo": "acme/web"},
				},
			})
		case "/api/v1/monitor/m-1/digests":
			w.WriteHeader(http.StatusNotFound)
		case "/api/v1/monitor/m-2/digests":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"digests": []map[string]any{
					{"id": "d-1", "summary": "ok", "delivered_at": "2026-08-22T09:00:00Z"},
				},
			})
		}
	}))

	digests, err := svc.Recent(context.Background(), nil, 3)
	require.NoError(t, err)
	require.Len(t, digests, 1)
	assert.Equal(t, "d-1", digests[0].ID)
}
