package monitor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[91m"
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorHeader = "\033[95m"
)

// Reporter renders summaries for humans. It holds no state beyond the color
// toggle and never modifies the Summary it renders.
type Reporter struct {
	NoColor bool
}

// Render writes the formatted report: header, API health, overall status,
// mailbox table with usage bars, and a counts footer.
func (r Reporter) Render(w io.Writer, s model.Summary) {
	line := strings.Repeat("=", 80)

	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintf(w, "%sMAILCOW MONITORING REPORT%s\n", r.color(colorHeader+colorBold), r.color(colorReset))
	fmt.Fprintf(w, "Time: %s\n", s.CollectionTimestamp.Format("2006-01-02 15:04:05 MST"))
	if s.Mode != "live" {
		fmt.Fprintf(w, "Mode: %s\n", s.Mode)
	}
	fmt.Fprintf(w, "%s\n\n", line)

	fmt.Fprintf(w, "%sAPI Health:%s\n", r.color(colorBold), r.color(colorReset))
	fmt.Fprintf(w, "  Status: %s\n", r.paint(s.APIHealth.Status))
	fmt.Fprintf(w, "  Response Time: %.2fms\n", s.APIHealth.ResponseTimeMs)
	if s.APIHealth.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error: %s%s%s\n", r.color(colorRed), s.APIHealth.ErrorMessage, r.color(colorReset))
	}

	fmt.Fprintf(w, "\n%sOverall Status:%s %s\n", r.color(colorBold), r.color(colorReset), r.paint(s.OverallStatus))

	mb := s.MailboxSummary
	if mb.FetchFailed {
		fmt.Fprintf(w, "\n%sMailbox fetch failed:%s %s%s%s\n",
			r.color(colorBold), r.color(colorReset), r.color(colorRed), mb.FetchError, r.color(colorReset))
	} else if len(mb.Mailboxes) > 0 {
		fmt.Fprintf(w, "\n%sMailboxes:%s\n", r.color(colorBold), r.color(colorReset))
		fmt.Fprintf(w, "%-32s %-34s %s\n", "Mailbox", "Usage", "Status")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, m := range mb.Mailboxes {
			usage := fmt.Sprintf("%.2fMB / %.2fMB %s (%.1f%%)", m.UsedMb, m.TotalMb, r.bar(m.UsagePercent), m.UsagePercent)
			fmt.Fprintf(w, "%-32s %-34s %s\n", m.Mailbox, usage, r.paint(m.Status))
		}
	}

	fmt.Fprintf(w, "\n%sSummary:%s\n", r.color(colorBold), r.color(colorReset))
	fmt.Fprintf(w, "  Total Mailboxes: %d\n", mb.TotalMailboxes)
	fmt.Fprintf(w, "  Total Forwarding Rules: %d\n", len(s.ForwardingRules))
	fmt.Fprintf(w, "  Healthy Mailboxes: %d\n", mb.HealthyCount)
	fmt.Fprintf(w, "  Warning Mailboxes: %d\n", mb.WarningCount)
	fmt.Fprintf(w, "  Critical Mailboxes: %d\n", mb.CriticalCount)
	fmt.Fprintf(w, "\n%s\n\n", line)
}

// bar renders a 10-segment usage gauge colored by threshold.
func (r Reporter) bar(percent float64) string {
	filled := int(percent / 10)
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}

	color := colorGreen
	switch Classify(percent) {
	case model.StatusCritical:
		color = colorRed
	case model.StatusWarning:
		color = colorYellow
	}
	return fmt.Sprintf("%s[%s%s]%s", r.color(color),
		strings.Repeat("#", filled), strings.Repeat(".", 10-filled), r.color(colorReset))
}

func (r Reporter) paint(s model.Status) string {
	color := colorGreen
	switch s {
	case model.StatusCritical:
		color = colorRed
	case model.StatusWarning:
		color = colorYellow
	}
	return fmt.Sprintf("%s%s%s", r.color(color), s, r.color(colorReset))
}

func (r Reporter) color(code string) string {
	if r.NoColor {
		return ""
	}
	return code
}

// ExportJSON writes a Summary to path as indented JSON.
func ExportJSON(path string, s model.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
