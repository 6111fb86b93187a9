package monitor

import "github.com/resteretter/mailcow-monitor/pkg/model"

// Quota thresholds in percent. Both bands are inclusive on their lower edge:
// exactly 90.0 is critical and exactly 75.0 is warning.
const (
	CriticalThreshold = 90.0
	WarningThreshold  = 75.0
)

// Classify maps a usage percentage to a quota status. It is a pure function
// of its input; no history or hysteresis is involved.
func Classify(usagePercent float64) model.Status {
	switch {
	case usagePercent >= CriticalThreshold:
		return model.StatusCritical
	case usagePercent >= WarningThreshold:
		return model.StatusWarning
	default:
		return model.StatusHealthy
	}
}
