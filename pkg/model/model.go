package model

import "time"

// Status is the three-level severity used for mailboxes, the upstream API
// probe, and the overall rollup.
type Status string

const (
	StatusHealthy  Status = "HEALTHY"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
)

// Severity orders statuses so rollups can take the worst one.
func (s Status) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// WorstOf reduces statuses to the most severe one. An empty input is healthy.
func WorstOf(statuses ...Status) Status {
	worst := StatusHealthy
	for _, s := range statuses {
		if s.Severity() > worst.Severity() {
			worst = s
		}
	}
	return worst
}

// RawMailbox mirrors one entry of the Mailcow `/mailbox/all` response.
// Active is 0/1 as delivered by the API.
type RawMailbox struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	Bytes    int64  `json:"bytes"`
	Quota    int64  `json:"quota"`
	Active   int    `json:"active"`
}

// RawForwarding mirrors one entry of the `/forwarding/all` response; the
// destination field is a comma-separated address list.
type RawForwarding struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Active      int    `json:"active"`
}

// MailboxQuota is one mailbox's point-in-time usage after aggregation.
type MailboxQuota struct {
	Mailbox      string  `json:"mailbox" firestore:"mailbox"`
	UsedMb       float64 `json:"used_mb" firestore:"usedMb"`
	TotalMb      float64 `json:"total_mb" firestore:"totalMb"`
	UsagePercent float64 `json:"usage_percent" firestore:"usagePercent"`
	Status       Status  `json:"status" firestore:"status"`
}

// APIHealth is the outcome of one connectivity probe against the upstream
// API. ErrorMessage is set only when the probe failed.
type APIHealth struct {
	Status         Status    `json:"status" firestore:"status"`
	ResponseTimeMs float64   `json:"response_time_ms" firestore:"responseTimeMs"`
	Timestamp      time.Time `json:"timestamp" firestore:"timestamp"`
	ErrorMessage   string    `json:"error_message,omitempty" firestore:"errorMessage,omitempty"`
}

// ForwardingRule is a parsed forwarding entry with its destinations split out.
type ForwardingRule struct {
	Source       string   `json:"source" firestore:"source"`
	Destinations []string `json:"destinations" firestore:"destinations"`
	Active       bool     `json:"active" firestore:"active"`
}

// MailboxSummary aggregates one cycle's mailbox quota data. Mailboxes are
// sorted by usage percent descending. FetchFailed distinguishes "no mailboxes
// exist" from "the mailbox fetch failed this cycle"; when set, Status is
// forced to critical and the list and totals are empty.
type MailboxSummary struct {
	TotalMailboxes      int            `json:"total_mailboxes" firestore:"totalMailboxes"`
	TotalQuotaMb        float64        `json:"total_quota_mb" firestore:"totalQuotaMb"`
	TotalUsedMb         float64        `json:"total_used_mb" firestore:"totalUsedMb"`
	AverageUsagePercent float64        `json:"average_usage_percent" firestore:"averageUsagePercent"`
	Status              Status         `json:"status" firestore:"status"`
	HealthyCount        int            `json:"healthy_count" firestore:"healthyCount"`
	WarningCount        int            `json:"warning_count" firestore:"warningCount"`
	CriticalCount       int            `json:"critical_count" firestore:"criticalCount"`
	Mailboxes           []MailboxQuota `json:"mailboxes" firestore:"mailboxes"`
	FetchFailed         bool           `json:"fetch_failed" firestore:"fetchFailed"`
	FetchError          string         `json:"fetch_error,omitempty" firestore:"fetchError,omitempty"`
}

// Summary is the full snapshot produced by one poll cycle. It is never
// mutated after publication.
type Summary struct {
	CollectionTimestamp   time.Time        `json:"collection_timestamp" firestore:"collectionTimestamp"`
	Mode                  string           `json:"mode" firestore:"mode"`
	APIHealth             APIHealth        `json:"api_health" firestore:"apiHealth"`
	MailboxSummary        MailboxSummary   `json:"mailbox_summary" firestore:"mailboxSummary"`
	ForwardingRules       []ForwardingRule `json:"forwarding_rules" firestore:"forwardingRules"`
	OverallStatus         Status           `json:"overall_status" firestore:"overallStatus"`
	UpdateIntervalSeconds int              `json:"update_interval_seconds" firestore:"updateIntervalSeconds"`
}

// HistoricalPoint is a compact trend record derived from one Summary.
type HistoricalPoint struct {
	Timestamp           time.Time `json:"timestamp" firestore:"timestamp"`
	TotalUsedMb         float64   `json:"total_used_mb" firestore:"totalUsedMb"`
	AverageUsagePercent float64   `json:"average_usage_percent" firestore:"averageUsagePercent"`
	MailboxCount        int       `json:"mailbox_count" firestore:"mailboxCount"`
}
