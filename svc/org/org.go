// Package org is the typed client for organization management: the org
// itself, membership, invitations, metrics and the audit trail.
package org

import (
	"time"
)

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// Org is the caller's organization.
type Org struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is one user's membership in the organization.
type Member struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuditLog is one recorded administrative action.
type AuditLog struct {
	ID         string         `json:"id"`
	OrgID      string         `json:"org_id"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Membership is the result of creating or joining an organization. Token
// is a reissued session token carrying the new org context; hand it to
// the session manager so the cookie reflects the change.
type Membership struct {
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
	Token string `json:"jwt"`
}

// MetricsReport is the organization-wide digest activity for a period.
type MetricsReport struct {
	Metrics    map[string]int `json:"metrics"`
	PeriodDays int            `json:"period_days"`
}
