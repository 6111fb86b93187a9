package mailcow

import (
	"context"
	"time"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

const mb = 1024 * 1024

// DemoSource serves a static synthetic data set so the service can run
// without an API key. Summaries built from it carry mode "demo" so the output
// is never mistaken for real upstream data.
type DemoSource struct{}

func NewDemoSource() *DemoSource { return &DemoSource{} }

func (d *DemoSource) Mode() string { return "demo" }

func (d *DemoSource) Probe(ctx context.Context) model.APIHealth {
	return model.APIHealth{
		Status:         model.StatusHealthy,
		ResponseTimeMs: 12.5,
		Timestamp:      time.Now().UTC(),
	}
}

// Mailboxes spans all three status bands plus an unlimited-quota and an
// inactive mailbox, so every aggregation path is exercised.
func (d *DemoSource) Mailboxes(ctx context.Context) ([]model.RawMailbox, error) {
	return []model.RawMailbox{
		{Username: "info@example.com", Name: "Info", Domain: "example.com", Bytes: 950 * mb, Quota: 1024 * mb, Active: 1},
		{Username: "support@example.com", Name: "Support", Domain: "example.com", Bytes: 1600 * mb, Quota: 2048 * mb, Active: 1},
		{Username: "newsletter@example.com", Name: "Newsletter", Domain: "example.com", Bytes: 300 * mb, Quota: 1024 * mb, Active: 1},
		{Username: "archive@example.com", Name: "Archive", Domain: "example.com", Bytes: 5 * 1024 * mb, Quota: 0, Active: 1},
		{Username: "old@example.com", Name: "Old", Domain: "example.com", Bytes: 900 * mb, Quota: 1024 * mb, Active: 0},
	}, nil
}

func (d *DemoSource) Forwardings(ctx context.Context) ([]model.RawForwarding, error) {
	return []model.RawForwarding{
		{Source: "contact@example.com", Destination: "info@example.com, support@example.com", Active: 1},
		{Source: "billing@example.com", Destination: "info@example.com", Active: 0},
	}, nil
}
