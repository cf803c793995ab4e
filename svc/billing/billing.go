// Package billing is the typed client for subscription management. The
// heavy lifting happens in the payment provider; this client fetches
// status and obtains hosted checkout and portal URLs to hand the user to.
package billing

import (
	"context"
	"errors"
	"net/url"

	"github.com/infrasync/infrasync-go/pkg/apiclient"
)

// Plans the backend knows about.
const (
	PlanFree = "free"
	PlanPro  = "pro"
	PlanTeam = "team"
)

var ErrInvalidPlan = errors.New("unknown billing plan")

// Status is an organization's current billing state.
type Status struct {
	Plan                 string         `json:"plan"`
	BillingEnabled       bool           `json:"billing_enabled"`
	Limits               map[string]any `json:"limits,omitempty"`
	StripeCustomerID     string         `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string         `json:"stripe_subscription_id,omitempty"`
	IsInternal           bool           `json:"is_internal,omitempty"`
}

// Service exposes the billing endpoints over a shared API client.
type Service struct {
	api *apiclient.Client
}

// NewService creates a billing service on the given API client.
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

func validPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanPro, PlanTeam:
		return true
	}
	return false
}

// Status returns the organization's billing state.
func (s *Service) Status(ctx context.Context, orgID string) (*Status, error) {
	raw := s.api.Get(ctx, "/api/v1/billing/status?org_id="+url.QueryEscape(orgID))
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	st, err := apiclient.Decode[Status](raw)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// CreateCheckoutSession returns a hosted checkout URL for subscribing the
// organization to the plan. The caller is expected to open it in a
// browser; payment happens entirely on the provider's pages.
func (s *Service) CreateCheckoutSession(ctx context.Context, orgID, plan string) (string, error) {
	if !validPlan(plan) {
		return "", ErrInvalidPlan
	}

	q := url.Values{"org_id": {orgID}, "plan": {plan}}
	raw := s.api.Post(ctx, "/api/v1/billing/create-checkout-session?"+q.Encode(), nil)
	if err := s.api.Err(); err != nil {
		return "", err
	}
	return decodeURL(raw)
}

// CreatePortalSession returns a hosted billing-portal URL where the
// organization manages its existing subscription.
func (s *Service) CreatePortalSession(ctx context.Context, orgID string) (string, error) {
	raw := s.api.Post(ctx, "/api/v1/billing/create-portal-session?org_id="+url.QueryEscape(orgID), nil)
	if err := s.api.Err(); err != nil {
		return "", err
	}
	return decodeURL(raw)
}

// UpgradeSubscription moves an existing subscription to a different plan
// in place, without a checkout round trip.
func (s *Service) UpgradeSubscription(ctx context.Context, orgID, plan string) error {
	if !validPlan(plan) {
		return ErrInvalidPlan
	}

	s.api.Post(ctx, "/api/v1/billing/upgrade-subscription",
		map[string]string{"org_id": orgID, "plan": plan})
	return s.api.Err()
}

// Refresh resyncs the organization's plan with the payment provider,
// covering missed webhooks.
func (s *Service) Refresh(ctx context.Context, orgID string) (*Status, error) {
	s.api.Post(ctx, "/api/v1/billing/refresh?org_id="+url.QueryEscape(orgID), nil)
	if err := s.api.Err(); err != nil {
		return nil, err
	}
	return s.Status(ctx, orgID)
}

func decodeURL(raw []byte) (string, error) {
	resp, err := apiclient.Decode[struct {
		URL string `json:"url"`
	}](raw)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}
