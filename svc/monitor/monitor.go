package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Delivery methods a monitor can publish digests to.
const (
	DeliverySlack   = "slack"
	DeliveryDiscord = "discord"
	DeliveryEmail   = "email"
)

// Digest frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyOnMerge = "on_merge"
)

var (
	ErrInvalidRepo           = errors.New("repo must be in the format 'owner/repo'")
	ErrInvalidDeliveryMethod = errors.New("delivery method must be slack, discord or email")
	ErrInvalidFrequency      = errors.New("frequency must be daily, weekly or on_merge")
)

// Monitor is a repository watch as the backend reports it.
type Monitor struct {
	ID             string    `json:"id"`
	OrgID          string    `json:"org_id"`
	Repo           string    `json:"repo"`
	DeliveryMethod string    `json:"delivery_method"`
	WebhookURL     string    `json:"webhook_url"`
	Frequency      string    `json:"frequency"`
	CreatedAt      time.Time `json:"created_at"`
	IsPrivate      bool      `json:"is_private"`
	CreatedBy      string    `json:"created_by,omitempty"`
}

// CreateParams is the payload for creating a monitor.
type CreateParams struct {
	Repo           string `json:"repo"`
	DeliveryMethod string `json:"delivery_method"`
	WebhookURL     string `json:"webhook_url"`
	Frequency      string `json:"frequency"`
}

// Validate checks the payload locally before it goes over the wire, with
// the same rules the backend enforces.
func (p CreateParams) Validate() error {
	owner, repo, ok := strings.Cut(p.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidRepo, p.Repo)
	}
	switch p.DeliveryMethod {
	case DeliverySlack, DeliveryDiscord, DeliveryEmail:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDeliveryMethod, p.DeliveryMethod)
	}
	switch p.Frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyOnMerge:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, p.Frequency)
	}
	return nil
}

// Digest is one delivered activity summary. MonitorID and Repo are filled
// in client-side from the monitor the digest was fetched for.
type Digest struct {
	ID             string         `json:"id"`
	Summary        string         `json:"summary"`
	Status         string         `json:"status"`
	DeliveredAt    time.Time      `json:"delivered_at"`
	ErrorMessage   string         `json:"error_message,omitempty"`
	DeliveryMethod string         `json:"delivery_method"`
	Metrics        map[string]any `json:"metrics_json,omitempty"`

	MonitorID string `json:"-"`
	Repo      string `json:"-"`
}

// MetricsReport is the aggregated activity for one monitor over a period.
// PreviousMetrics is present only when the comparison was requested.
type MetricsReport struct {
	Metrics         map[string]int `json:"metrics"`
	PreviousMetrics map[string]int `json:"previous_metrics,omitempty"`
	PeriodDays      int            `json:"period_days"`
}

// TimeseriesPoint is one day's activity counts.
type TimeseriesPoint struct {
	Date         string `json:"date"`
	PRsOpened    int    `json:"prs_opened"`
	PRsClosed    int    `json:"prs_closed"`
	IssuesOpened int    `json:"issues_opened"`
	IssuesClosed int    `json:"issues_closed"`
	Bugfixes     int    `json:"bugfixes"`
	Docs         int    `json:"docs"`
	Features     int    `json:"features"`
	Refactors    int    `json:"refactors"`
	Perf         int    `json:"perf"`
}
