package monitor

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/resteretter/mailcow-monitor/internal/platform/mailcow"
	"github.com/resteretter/mailcow-monitor/internal/platform/metrics"
	"github.com/resteretter/mailcow-monitor/pkg/model"
)

// Persister durably stores cycle output. A nil Persister disables
// persistence.
type Persister interface {
	SaveLatest(ctx context.Context, s model.Summary) error
	AppendPoint(ctx context.Context, p model.HistoricalPoint) error
}

// Collector runs the poll cycle: probe, fetch mailboxes, fetch forwarding,
// aggregate, store, report. Cycles are serialized; the collector is the sole
// writer of the store and the history buffer.
type Collector struct {
	source   mailcow.Source
	store    *Store
	history  *History
	persist  Persister
	metrics  *metrics.Metrics
	interval time.Duration
	logger   *log.Logger
	cron     *cron.Cron
}

func NewCollector(source mailcow.Source, store *Store, history *History, persist Persister, m *metrics.Metrics, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Collector{
		source:   source,
		store:    store,
		history:  history,
		persist:  persist,
		metrics:  m,
		interval: interval,
		logger:   log.New(os.Stdout, "[MONITOR] ", log.LstdFlags),
	}
}

// RunCycle executes one full cycle and publishes the resulting Summary. A
// failed resource fetch degrades that resource only; the cycle still
// completes.
func (c *Collector) RunCycle(ctx context.Context) model.Summary {
	start := time.Now()

	health := c.source.Probe(ctx)

	mailboxes, mbErr := c.source.Mailboxes(ctx)
	if mbErr != nil {
		c.logger.Printf("mailbox fetch failed: %v", mbErr)
	}

	forwardings, fwdErr := c.source.Forwardings(ctx)
	if fwdErr != nil {
		c.logger.Printf("forwarding fetch failed: %v", fwdErr)
		forwardings = nil
	}

	summary := Aggregate(AggregateInput{
		Timestamp:       time.Now().UTC(),
		Mode:            c.source.Mode(),
		Health:          health,
		Mailboxes:       mailboxes,
		MailboxFetchErr: mbErr,
		Forwardings:     forwardings,
		Interval:        c.interval,
	})

	if !summary.MailboxSummary.FetchFailed {
		point := TrendPoint(summary)
		c.history.Append(point)
		if c.persist != nil {
			if err := c.persist.AppendPoint(ctx, point); err != nil {
				c.logger.Printf("persist trend point: %v", err)
			}
		}
	}

	c.store.Publish(&summary)
	if c.persist != nil {
		if err := c.persist.SaveLatest(ctx, summary); err != nil {
			c.logger.Printf("persist summary: %v", err)
		}
	}

	if c.metrics != nil {
		c.metrics.ObserveCycle(summary, time.Since(start).Seconds())
	}

	c.logger.Printf("cycle done in %v: %d mailboxes, overall %s",
		time.Since(start).Round(time.Millisecond),
		summary.MailboxSummary.TotalMailboxes, summary.OverallStatus)
	return summary
}

// Start runs one immediate cycle, then schedules recurring cycles. Overlapping
// runs are skipped so at most one cycle mutates the buffers at a time.
func (c *Collector) Start(ctx context.Context) error {
	cronLogger := cron.PrintfLogger(c.logger)
	c.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))

	_, err := c.cron.AddFunc(fmt.Sprintf("@every %s", c.interval), func() {
		c.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule poll cycle: %w", err)
	}

	go c.RunCycle(ctx)
	c.cron.Start()
	c.logger.Printf("polling every %s in %s mode", c.interval, c.source.Mode())
	return nil
}

// Stop halts the scheduler and waits for an in-flight cycle to finish.
func (c *Collector) Stop() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
}

// WarmStart seeds the history buffer from persisted trend points, oldest
// first, so trends survive a restart.
func (c *Collector) WarmStart(points []model.HistoricalPoint) {
	for _, p := range points {
		c.history.Append(p)
	}
	if len(points) > 0 {
		c.logger.Printf("restored %d historical points", len(points))
	}
}
