package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

type fakeSource struct {
	health      model.APIHealth
	mailboxes   []model.RawMailbox
	mailboxErr  error
	forwardings []model.RawForwarding
	forwardErr  error
}

func (f *fakeSource) Mode() string { return "live" }

func (f *fakeSource) Probe(ctx context.Context) model.APIHealth { return f.health }

func (f *fakeSource) Mailboxes(ctx context.Context) ([]model.RawMailbox, error) {
	return f.mailboxes, f.mailboxErr
}

func (f *fakeSource) Forwardings(ctx context.Context) ([]model.RawForwarding, error) {
	return f.forwardings, f.forwardErr
}

type fakePersister struct {
	summaries []model.Summary
	points    []model.HistoricalPoint
}

func (p *fakePersister) SaveLatest(ctx context.Context, s model.Summary) error {
	p.summaries = append(p.summaries, s)
	return nil
}

func (p *fakePersister) AppendPoint(ctx context.Context, pt model.HistoricalPoint) error {
	p.points = append(p.points, pt)
	return nil
}

func TestRunCyclePublishes(t *testing.T) {
	source := &fakeSource{
		health: model.APIHealth{Status: model.StatusHealthy, ResponseTimeMs: 3},
		mailboxes: []model.RawMailbox{
			{Username: "a@example.com", Bytes: 80 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
		},
		forwardings: []model.RawForwarding{
			{Source: "fwd@example.com", Destination: "a@example.com", Active: 1},
		},
	}
	store := NewStore()
	history := NewHistory(10)
	persist := &fakePersister{}
	c := NewCollector(source, store, history, persist, nil, 30*time.Second)

	summary := c.RunCycle(context.Background())

	current := store.Current()
	if current == nil {
		t.Fatal("expected a published summary")
	}
	if current.OverallStatus != model.StatusWarning {
		t.Errorf("overall status = %s, want WARNING at 80%% usage", current.OverallStatus)
	}
	if len(current.ForwardingRules) != 1 {
		t.Errorf("forwarding rules = %d, want 1", len(current.ForwardingRules))
	}
	if history.Len() != 1 {
		t.Errorf("history len = %d, want 1 point per successful cycle", history.Len())
	}
	if len(persist.points) != 1 || len(persist.summaries) != 1 {
		t.Errorf("persisted %d points / %d summaries, want 1 / 1", len(persist.points), len(persist.summaries))
	}
	if got := TrendPoint(summary); got != persist.points[0] {
		t.Errorf("persisted point %+v does not match the cycle's trend point %+v", persist.points[0], got)
	}
}

func TestRunCycleMailboxFetchFailure(t *testing.T) {
	source := &fakeSource{
		health:     model.APIHealth{Status: model.StatusHealthy},
		mailboxErr: errors.New("connection error: refused"),
	}
	store := NewStore()
	history := NewHistory(10)
	c := NewCollector(source, store, history, nil, nil, 30*time.Second)

	c.RunCycle(context.Background())

	current := store.Current()
	if current == nil {
		t.Fatal("a partial failure must still publish a summary")
	}
	if !current.MailboxSummary.FetchFailed {
		t.Error("expected fetch_failed on the published summary")
	}
	if current.OverallStatus != model.StatusCritical {
		t.Errorf("overall status = %s, want CRITICAL", current.OverallStatus)
	}
	if history.Len() != 0 {
		t.Errorf("history len = %d, want 0: failed cycles do not produce trend points", history.Len())
	}
}

func TestRunCycleForwardingFailureDegradesOnlyForwarding(t *testing.T) {
	source := &fakeSource{
		health: model.APIHealth{Status: model.StatusHealthy},
		mailboxes: []model.RawMailbox{
			{Username: "a@example.com", Bytes: 10 * bytesPerMb, Quota: 100 * bytesPerMb, Active: 1},
		},
		forwardErr: errors.New("timeout"),
	}
	store := NewStore()
	c := NewCollector(source, store, NewHistory(10), nil, nil, 30*time.Second)

	c.RunCycle(context.Background())

	current := store.Current()
	if len(current.ForwardingRules) != 0 {
		t.Errorf("forwarding rules = %d, want 0 on forwarding failure", len(current.ForwardingRules))
	}
	if current.OverallStatus != model.StatusHealthy {
		t.Errorf("overall status = %s, want HEALTHY: forwarding failure does not degrade quota health", current.OverallStatus)
	}
}

func TestWarmStart(t *testing.T) {
	history := NewHistory(3)
	c := NewCollector(&fakeSource{}, NewStore(), history, nil, nil, 30*time.Second)

	c.WarmStart([]model.HistoricalPoint{point(1), point(2), point(3), point(4)})

	got := history.Recent(0)
	if len(got) != 3 {
		t.Fatalf("history len = %d, want retention cap 3", len(got))
	}
	if got[0].MailboxCount != 2 || got[2].MailboxCount != 4 {
		t.Errorf("warm start window = [%d..%d], want [2..4]", got[0].MailboxCount, got[2].MailboxCount)
	}
}
