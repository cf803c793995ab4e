package billing_test

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
	"github.com/infrasync/infrasync-go/svc/billing"
)

func newService(t *testing.T, handler http.Handler) *billing.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := apiclient.New(srv.URL,
		apiclient.WithNotifier(&toast.Recorder{}),
		apiclient.WithNavigator(&navigator.Recorder{}),
		apiclient.WithRetryDelay(time.Millisecond),
	)
	return billing.NewService(api)
}

func TestService_Status(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/billing/status", r.URL.Path)
		require.Equal(t, "org-1", r.URL.Query().Get("org_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"plan":            "pro",
			"billing_enabled": true,
			"limits":          map[string]any{"repos": 10},
		})
	}))

	st, err := svc.Status(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, billing.PlanPro, st.Plan)
	assert.True(t, st.BillingEnabled)
	assert.EqualValues(t, 10, st.Limits["repos"])
}

func TestService_CreateCheckoutSession(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/billing/create-checkout-session", r.URL.Path)
		require.Equal(t, "pro", r.URL.Query().Get("plan"))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://checkout.stripe.com/c/pay/cs_123"})
	}))

	u, err := svc.CreateCheckoutSession(context.Background(), "org-1", billing.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_123", u)
}

func TestService_CreateCheckoutSession_RejectsUnknownPlan(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown plan must not reach the backend")
	}))

	_, err := svc.CreateCheckoutSession(context.Background(), "org-1", "platinum")
	assert.ErrorIs(t, err, billing.ErrInvalidPlan)
}

func TestService_CreatePortalSession_RequiresCustomer(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "No Stripe customer for org"})
	}))

	_, err := svc.CreatePortalSession(context.Background(), "org-1")
	require.Error(t, err)
	assert.ErrorContains(t, err, "No Stripe customer for org")
}

func TestService_UpgradeSubscription(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/billing/upgrade-subscription", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "org-1", body["org_id"])
		assert.Equal(t, "team", body["plan"])
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Subscription updated to team"})
	}))

	require.NoError(t, svc.UpgradeSubscription(context.Background(), "org-1", billing.PlanTeam))
}

func TestService_Refresh_ReturnsFreshStatus(t *testing.T) {
	t.Parallel()

	refreshed := false
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/billing/refresh":
			refreshed = true
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
		case "/api/v1/billing/status":
			_ = json.NewEncoder(w).Encode(map[string]any{"plan": "team", "billing_enabled": true})
		}
	}))

	st, err := svc.Refresh(context.Background(), "org-1")
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, billing.PlanTeam, st.Plan)
}
