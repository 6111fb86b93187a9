package monitor

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

const bytesPerMb = 1024 * 1024

// AggregateInput carries one cycle's raw material into Aggregate.
type AggregateInput struct {
	Timestamp       time.Time
	Mode            string
	Health          model.APIHealth
	Mailboxes       []model.RawMailbox
	MailboxFetchErr error
	Forwardings     []model.RawForwarding
	Interval        time.Duration
}

// Aggregate builds one Summary from one cycle's probe result, raw mailbox
// list and forwarding list. Inactive mailboxes are excluded entirely. The
// overall status is the worst of the probe status and every mailbox status;
// a failed mailbox fetch forces it to critical.
func Aggregate(in AggregateInput) model.Summary {
	mbSummary := summarizeMailboxes(in.Mailboxes, in.MailboxFetchErr)

	return model.Summary{
		CollectionTimestamp:   in.Timestamp,
		Mode:                  in.Mode,
		APIHealth:             in.Health,
		MailboxSummary:        mbSummary,
		ForwardingRules:       ParseForwardings(in.Forwardings),
		OverallStatus:         model.WorstOf(in.Health.Status, mbSummary.Status),
		UpdateIntervalSeconds: int(in.Interval.Seconds()),
	}
}

func summarizeMailboxes(raw []model.RawMailbox, fetchErr error) model.MailboxSummary {
	if fetchErr != nil {
		return model.MailboxSummary{
			Status:      model.StatusCritical,
			Mailboxes:   []model.MailboxQuota{},
			FetchFailed: true,
			FetchError:  fetchErr.Error(),
		}
	}

	mailboxes := make([]model.MailboxQuota, 0, len(raw))
	var totalQuotaMb, totalUsedMb float64

	for _, mb := range raw {
		if mb.Active != 1 {
			continue
		}
		usedMb := float64(mb.Bytes) / bytesPerMb
		quotaMb := float64(mb.Quota) / bytesPerMb

		var usagePercent float64
		if quotaMb > 0 {
			usagePercent = usedMb / quotaMb * 100
		}

		name := mb.Username
		if name == "" {
			name = "unknown"
		}
		mailboxes = append(mailboxes, model.MailboxQuota{
			Mailbox:      name,
			UsedMb:       round2(usedMb),
			TotalMb:      round2(quotaMb),
			UsagePercent: round1(usagePercent),
			Status:       Classify(usagePercent),
		})

		totalQuotaMb += quotaMb
		totalUsedMb += usedMb
	}

	// Worst usage first; stable so ties keep input order.
	sort.SliceStable(mailboxes, func(i, j int) bool {
		return mailboxes[i].UsagePercent > mailboxes[j].UsagePercent
	})

	// Weighted by quota size, not the mean of per-mailbox percentages.
	var avgUsage float64
	if totalQuotaMb > 0 {
		avgUsage = totalUsedMb / totalQuotaMb * 100
	}

	summary := model.MailboxSummary{
		TotalMailboxes:      len(mailboxes),
		TotalQuotaMb:        round2(totalQuotaMb),
		TotalUsedMb:         round2(totalUsedMb),
		AverageUsagePercent: round1(avgUsage),
		Mailboxes:           mailboxes,
	}
	statuses := make([]model.Status, 0, len(mailboxes))
	for _, mb := range mailboxes {
		statuses = append(statuses, mb.Status)
		switch mb.Status {
		case model.StatusCritical:
			summary.CriticalCount++
		case model.StatusWarning:
			summary.WarningCount++
		default:
			summary.HealthyCount++
		}
	}
	summary.Status = model.WorstOf(statuses...)
	return summary
}

// ParseForwardings splits the comma-separated destination field of each raw
// forwarding entry.
func ParseForwardings(raw []model.RawForwarding) []model.ForwardingRule {
	rules := make([]model.ForwardingRule, 0, len(raw))
	for _, r := range raw {
		var destinations []string
		for _, d := range strings.Split(r.Destination, ",") {
			if d = strings.TrimSpace(d); d != "" {
				destinations = append(destinations, d)
			}
		}
		rules = append(rules, model.ForwardingRule{
			Source:       r.Source,
			Destinations: destinations,
			Active:       r.Active == 1,
		})
	}
	return rules
}

// TrendPoint reduces a Summary to its compact historical record.
func TrendPoint(s model.Summary) model.HistoricalPoint {
	return model.HistoricalPoint{
		Timestamp:           s.CollectionTimestamp,
		TotalUsedMb:         s.MailboxSummary.TotalUsedMb,
		AverageUsagePercent: s.MailboxSummary.AverageUsagePercent,
		MailboxCount:        s.MailboxSummary.TotalMailboxes,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
