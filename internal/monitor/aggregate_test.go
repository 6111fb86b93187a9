package monitor

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

const gb = 1024 * bytesPerMb

func healthyProbe() model.APIHealth {
	return model.APIHealth{Status: model.StatusHealthy, ResponseTimeMs: 5, Timestamp: time.Now().UTC()}
}

func TestAggregateEndToEnd(t *testing.T) {
	summary := Aggregate(AggregateInput{
		Timestamp: time.Now().UTC(),
		Mode:      "live",
		Health:    healthyProbe(),
		Mailboxes: []model.RawMailbox{
			{Username: "a@example.com", Bytes: gb, Quota: 2 * gb, Active: 1},
			{Username: "b@example.com", Bytes: 0, Quota: 0, Active: 1},
		},
		Interval: 30 * time.Second,
	})

	mb := summary.MailboxSummary
	if mb.TotalMailboxes != 2 {
		t.Fatalf("expected 2 mailboxes, got %d", mb.TotalMailboxes)
	}
	if mb.Mailboxes[0].Mailbox != "a@example.com" || mb.Mailboxes[0].UsagePercent != 50.0 {
		t.Errorf("first mailbox = %+v, want a@example.com at 50.0%%", mb.Mailboxes[0])
	}
	if mb.Mailboxes[1].UsagePercent != 0.0 {
		t.Errorf("unlimited-quota mailbox usage = %v, want 0", mb.Mailboxes[1].UsagePercent)
	}
	for _, m := range mb.Mailboxes {
		if m.Status != model.StatusHealthy {
			t.Errorf("mailbox %s status = %s, want HEALTHY", m.Mailbox, m.Status)
		}
	}
	if mb.TotalUsedMb != 1024 || mb.TotalQuotaMb != 2048 {
		t.Errorf("totals = %v used / %v quota, want 1024 / 2048", mb.TotalUsedMb, mb.TotalQuotaMb)
	}
	if mb.AverageUsagePercent != 50.0 {
		t.Errorf("average usage = %v, want 50.0", mb.AverageUsagePercent)
	}
	if summary.OverallStatus != model.StatusHealthy {
		t.Errorf("overall status = %s, want HEALTHY", summary.OverallStatus)
	}
	if summary.UpdateIntervalSeconds != 30 {
		t.Errorf("interval = %d, want 30", summary.UpdateIntervalSeconds)
	}
}

func TestAggregateWeightedAverage(t *testing.T) {
	// (90MB/100MB) and (0MB/900MB) must average 9%, not 45%.
	summary := Aggregate(AggregateInput{
		Health: healthyProbe(),
		Mailboxes: []model.RawMailbox{
			{Username: "big-user@example.com", Bytes: 90 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
			{Username: "idle@example.com", Bytes: 0, Quota: 900 * bytesPerMb, Active: 1},
		},
	})
	if got := summary.MailboxSummary.AverageUsagePercent; math.Abs(got-9.0) > 0.05 {
		t.Errorf("average usage = %v, want 9.0 (weighted, not arithmetic mean)", got)
	}
}

func TestAggregateSkipsInactive(t *testing.T) {
	summary := Aggregate(AggregateInput{
		Health: healthyProbe(),
		Mailboxes: []model.RawMailbox{
			{Username: "active@example.com", Bytes: 95 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
			{Username: "inactive@example.com", Bytes: 99 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 0},
		},
	})
	mb := summary.MailboxSummary
	if mb.TotalMailboxes != 1 {
		t.Fatalf("expected 1 mailbox, got %d", mb.TotalMailboxes)
	}
	if mb.Mailboxes[0].Mailbox != "active@example.com" {
		t.Errorf("kept mailbox = %s, want active@example.com", mb.Mailboxes[0].Mailbox)
	}
	if summary.OverallStatus != model.StatusCritical {
		t.Errorf("overall status = %s, want CRITICAL from the active mailbox", summary.OverallStatus)
	}
	if mb.CriticalCount != 1 || mb.HealthyCount != 0 || mb.WarningCount != 0 {
		t.Errorf("status counts = %d/%d/%d, want 0 healthy, 0 warning, 1 critical",
			mb.HealthyCount, mb.WarningCount, mb.CriticalCount)
	}
}

func TestAggregateSortsByUsageDescending(t *testing.T) {
	summary := Aggregate(AggregateInput{
		Health: healthyProbe(),
		Mailboxes: []model.RawMailbox{
			{Username: "low@example.com", Bytes: 10 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
			{Username: "tie-first@example.com", Bytes: 50 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
			{Username: "high@example.com", Bytes: 80 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
			{Username: "tie-second@example.com", Bytes: 50 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
		},
	})
	got := make([]string, 0, 4)
	for _, m := range summary.MailboxSummary.Mailboxes {
		got = append(got, m.Mailbox)
	}
	want := []string{"high@example.com", "tie-first@example.com", "tie-second@example.com", "low@example.com"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sort order = %v, want %v", got, want)
		}
	}
}

func TestAggregateRollupIncludesProbe(t *testing.T) {
	summary := Aggregate(AggregateInput{
		Health: model.APIHealth{Status: model.StatusCritical, ErrorMessage: "timeout"},
		Mailboxes: []model.RawMailbox{
			{Username: "fine@example.com", Bytes: 10 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
		},
	})
	if summary.OverallStatus != model.StatusCritical {
		t.Errorf("overall status = %s, want CRITICAL from failed probe", summary.OverallStatus)
	}
	if summary.MailboxSummary.Status != model.StatusHealthy {
		t.Errorf("mailbox rollup = %s, want HEALTHY (probe failure is not a quota failure)", summary.MailboxSummary.Status)
	}
}

func TestAggregateFetchFailure(t *testing.T) {
	summary := Aggregate(AggregateInput{
		Health:          healthyProbe(),
		MailboxFetchErr: errors.New("http error 502"),
	})
	mb := summary.MailboxSummary
	if !mb.FetchFailed {
		t.Fatal("expected fetch_failed to be set")
	}
	if mb.FetchError != "http error 502" {
		t.Errorf("fetch error = %q, want the adapter reason", mb.FetchError)
	}
	if mb.Status != model.StatusCritical || summary.OverallStatus != model.StatusCritical {
		t.Errorf("statuses = %s/%s, want CRITICAL: a failed fetch must not look healthy", mb.Status, summary.OverallStatus)
	}
	if mb.TotalMailboxes != 0 || len(mb.Mailboxes) != 0 {
		t.Errorf("expected empty mailbox list on fetch failure, got %d", mb.TotalMailboxes)
	}
}

func TestAggregateEmptyButSuccessfulFetch(t *testing.T) {
	// Zero mailboxes with a successful fetch is a genuine healthy state.
	summary := Aggregate(AggregateInput{Health: healthyProbe()})
	mb := summary.MailboxSummary
	if mb.FetchFailed {
		t.Fatal("fetch_failed must not be set when the fetch succeeded")
	}
	if mb.Status != model.StatusHealthy || summary.OverallStatus != model.StatusHealthy {
		t.Errorf("statuses = %s/%s, want HEALTHY", mb.Status, summary.OverallStatus)
	}
}

func TestParseForwardings(t *testing.T) {
	rules := ParseForwardings([]model.RawForwarding{
		{Source: "contact@example.com", Destination: "a@example.com, b@example.com", Active: 1},
		{Source: "empty@example.com", Destination: "", Active: 0},
	})
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if len(rules[0].Destinations) != 2 || rules[0].Destinations[1] != "b@example.com" {
		t.Errorf("destinations = %v, want split and trimmed", rules[0].Destinations)
	}
	if !rules[0].Active || rules[1].Active {
		t.Errorf("active flags = %v/%v, want true/false", rules[0].Active, rules[1].Active)
	}
	if len(rules[1].Destinations) != 0 {
		t.Errorf("empty destination should parse to no destinations, got %v", rules[1].Destinations)
	}
}
