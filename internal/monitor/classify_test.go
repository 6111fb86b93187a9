package monitor

import (
	"testing"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		percent float64
		want    model.Status
	}{
		{0, model.StatusHealthy},
		{50, model.StatusHealthy},
		{74.9, model.StatusHealthy},
		{75.0, model.StatusWarning},
		{89.9, model.StatusWarning},
		{90.0, model.StatusCritical},
		{100, model.StatusCritical},
		{150, model.StatusCritical},
	}
	for _, tc := range cases {
		if got := Classify(tc.percent); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.percent, got, tc.want)
		}
	}
}

func TestWorstOf(t *testing.T) {
	if got := model.WorstOf(); got != model.StatusHealthy {
		t.Errorf("WorstOf() = %s, want HEALTHY", got)
	}
	if got := model.WorstOf(model.StatusHealthy, model.StatusWarning); got != model.StatusWarning {
		t.Errorf("WorstOf(healthy, warning) = %s, want WARNING", got)
	}
	if got := model.WorstOf(model.StatusWarning, model.StatusCritical, model.StatusHealthy); got != model.StatusCritical {
		t.Errorf("WorstOf(warning, critical, healthy) = %s, want CRITICAL", got)
	}
}
