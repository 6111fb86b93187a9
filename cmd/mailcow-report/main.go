package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/resteretter/mailcow-monitor/internal/monitor"
	"github.com/resteretter/mailcow-monitor/internal/platform/config"
	"github.com/resteretter/mailcow-monitor/internal/platform/mailcow"
	"github.com/resteretter/mailcow-monitor/pkg/model"
)

// mailcow-report runs monitoring cycles in-process and prints the formatted
// report, without starting the HTTP service.
func main() {
	configPath := flag.String("config", ".env", "path to env config file")
	watch := flag.Int("watch", 0, "repeat every N seconds (0 = run once)")
	export := flag.String("export", "", "export the report to a JSON file")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	flag.Parse()

	if _, err := os.Stat(*configPath); err == nil {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("load config %s: %v", *configPath, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	var source mailcow.Source
	if cfg.DemoMode {
		source = mailcow.NewDemoSource()
	} else {
		source = mailcow.New(nil, mailcow.Config{
			BaseURL:   cfg.MailcowAPIURL,
			APIKey:    cfg.MailcowAPIKey,
			Timeout:   cfg.RequestTimeout,
			VerifySSL: cfg.MailcowVerifySSL,
		})
	}

	interval := cfg.PollInterval
	if *watch > 0 {
		interval = time.Duration(*watch) * time.Second
	}

	reporter := monitor.Reporter{NoColor: *noColor}
	ctx := context.Background()

	for {
		summary := collect(ctx, source, interval)
		reporter.Render(os.Stdout, summary)

		if *export != "" {
			if err := monitor.ExportJSON(*export, summary); err != nil {
				log.Fatalf("export: %v", err)
			}
			log.Printf("report exported to %s", *export)
		}

		if *watch <= 0 {
			break
		}
		time.Sleep(interval)
	}
}

func collect(ctx context.Context, source mailcow.Source, interval time.Duration) model.Summary {
	health := source.Probe(ctx)
	mailboxes, mbErr := source.Mailboxes(ctx)
	if mbErr != nil {
		fmt.Fprintf(os.Stderr, "mailbox fetch failed: %v\n", mbErr)
	}
	forwardings, fwdErr := source.Forwardings(ctx)
	if fwdErr != nil {
		fmt.Fprintf(os.Stderr, "forwarding fetch failed: %v\n", fwdErr)
		forwardings = nil
	}

	return monitor.Aggregate(monitor.AggregateInput{
		Timestamp:       time.Now().UTC(),
		Mode:            source.Mode(),
		Health:          health,
		Mailboxes:       mailboxes,
		MailboxFetchErr: mbErr,
		Forwardings:     forwardings,
		Interval:        interval,
	})
}
