package org

import (
	"context"
	"fmt"
	"net/url"

	"github.com/infrasync/infrasync-go/pkg/apiclient"
)

// Service exposes the organization endpoints over a shared API client.
type Service struct {
	api *apiclient.Client
}

// NewService creates an org service on the given API client.
func NewService(api *apiclient.Client) *Service {
	return &Service{api: api}
}

// Get returns the caller's organization.
func (s *Service) Get(ctx context.Context) (*Org, error) {
	raw := s.api.Get(ctx, "/api/v1/org")
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	o, err := apiclient.Decode[Org](raw)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Members lists everyone in the organization.
func (s *Service) Members(ctx context.Context) ([]Member, error) {
	raw := s.api.Get(ctx, "/api/v1/org/members")
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	resp, err := apiclient.Decode[struct {
		Members []Member `json:"members"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// Invite adds a user to the organization by email. Admin only.
func (s *Service) Invite(ctx context.Context, email, role string) error {
	s.api.Post(ctx, "/api/v1/org/invite", map[string]string{"email": email, "role": role})
	return s.api.Err()
}

// UpdateMemberRole changes a member's role. Admin only.
func (s *Service) UpdateMemberRole(ctx context.Context, userID, role string) error {
	s.api.Patch(ctx, "/api/v1/org/members/"+url.PathEscape(userID)+"/role",
		map[string]string{"role": role})
	return s.api.Err()
}

// RemoveMember removes a member from the organization. Admin only; the
// backend refuses to let admins remove themselves.
func (s *Service) RemoveMember(ctx context.Context, userID string) error {
	s.api.Delete(ctx, "/api/v1/org/members/"+url.PathEscape(userID))
	return s.api.Err()
}

// Create makes a new organization with the caller as admin.
func (s *Service) Create(ctx context.Context, name string) (*Membership, error) {
	raw := s.api.Post(ctx, "/api/v1/org", map[string]string{"name": name})
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	m, err := apiclient.Decode[Membership](raw)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Join adds the caller to an existing organization via invite code.
func (s *Service) Join(ctx context.Context, inviteCode string) (*Membership, error) {
	raw := s.api.Post(ctx, "/api/v1/org/join", map[string]string{"invite_code": inviteCode})
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	m, err := apiclient.Decode[Membership](raw)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Rename changes the organization's name. Admin only.
func (s *Service) Rename(ctx context.Context, name string) error {
	s.api.Patch(ctx, "/api/v1/org", map[string]string{"name": name})
	return s.api.Err()
}

// Metrics returns organization-wide digest activity for the period.
func (s *Service) Metrics(ctx context.Context, periodDays int) (*MetricsReport, error) {
	endpoint := "/api/v1/org/metrics"
	if periodDays > 0 {
		endpoint += fmt.Sprintf("?period_days=%d", periodDays)
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

// AuditLogs returns recent administrative actions, newest first. Admin
// only. limit follows the backend default when zero.
func (s *Service) AuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	endpoint := "/api/v1/org/audit-logs"
	if limit > 0 {
		endpoint += fmt.Sprintf("?limit=%d", limit)
	}

	raw := s.api.Get(ctx, endpoint)
	if err := s.api.Err(); err != nil {
		return nil, err
	}

	resp, err := apiclient.Decode[struct {
		Logs []AuditLog `json:"logs"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// Disband soft-deletes the organization. Admin only.
func (s *Service) Disband(ctx context.Context) error {
	s.api.Delete(ctx, "/api/v1/org")
	return s.api.Err()
}
