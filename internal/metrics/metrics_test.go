package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/nerrad567/gray-logic-av/internal/preset"
	"github.com/nerrad567/gray-logic-av/internal/routing"
)

var (
	_ routing.Recorder = (*Registry)(nil)
	_ preset.Recorder  = (*Registry)(nil)
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	if r.RoutesTotal == nil || r.RouteDuration == nil {
		t.Error("routing metrics not initialised")
	}
	if r.HardwareCommandsTotal == nil || r.RouterOnline == nil {
		t.Error("hardware metrics not initialised")
	}
	if r.FeedbackTotal == nil {
		t.Error("feedback metrics not initialised")
	}
	if r.PrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialised")
	}
}

func TestRecordRoute(t *testing.T) {
	r := NewRegistry()

	r.RecordRoute(routing.StatusSuccess, 20*time.Millisecond)
	r.RecordRoute(routing.StatusSuccess, 30*time.Millisecond)
	r.RecordRoute(routing.StatusNoPath, time.Millisecond)

	if got := counterValue(t, r.RoutesTotal.WithLabelValues(routing.StatusSuccess)); got != 2 {
		t.Errorf("success routes = %v, want 2", got)
	}
	if got := counterValue(t, r.RoutesTotal.WithLabelValues(routing.StatusNoPath)); got != 1 {
		t.Errorf("no_path routes = %v, want 1", got)
	}

	var m dto.Metric
	if err := r.RouteDuration.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.GetHistogram().GetSampleCount() != 3 {
		t.Errorf("duration samples = %d, want 3", m.GetHistogram().GetSampleCount())
	}
}

func TestRecordHardwareCommand(t *testing.T) {
	r := NewRegistry()

	r.RecordHardwareCommand("MX1", nil)
	r.RecordHardwareCommand("MX1", errors.New("timeout"))
	r.RecordHardwareCommand("MX1", nil)

	if got := counterValue(t, r.HardwareCommandsTotal.WithLabelValues("MX1", "success")); got != 2 {
		t.Errorf("success commands = %v, want 2", got)
	}
	if got := counterValue(t, r.HardwareCommandsTotal.WithLabelValues("MX1", "error")); got != 1 {
		t.Errorf("error commands = %v, want 1", got)
	}
}

func TestRecordFeedback(t *testing.T) {
	r := NewRegistry()

	r.RecordFeedback(routing.FeedbackResolved)
	r.RecordFeedback(routing.FeedbackCleared)
	r.RecordFeedback(routing.FeedbackResolved)

	if got := counterValue(t, r.FeedbackTotal.WithLabelValues(routing.FeedbackResolved)); got != 2 {
		t.Errorf("resolved = %v, want 2", got)
	}
}

func TestSetRouterOnline(t *testing.T) {
	r := NewRegistry()

	r.SetRouterOnline("MX1", true)
	if got := gaugeValue(t, r.RouterOnline.WithLabelValues("MX1")); got != 1 {
		t.Errorf("online = %v, want 1", got)
	}

	r.SetRouterOnline("MX1", false)
	if got := gaugeValue(t, r.RouterOnline.WithLabelValues("MX1")); got != 0 {
		t.Errorf("online = %v, want 0", got)
	}
}

func TestRecordPresetRecall(t *testing.T) {
	r := NewRegistry()

	r.RecordPresetRecall(string(preset.StatusCompleted), 300*time.Millisecond)
	r.RecordPresetRecall(string(preset.StatusPartial), 2*time.Second)

	if got := counterValue(t, r.PresetRecallsTotal.WithLabelValues("completed")); got != 1 {
		t.Errorf("completed recalls = %v, want 1", got)
	}
	var m dto.Metric
	if err := r.PresetRecallDuration.Write(&m); err != nil {
		t.Fatal(err)
	}
	if m.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("duration samples = %d, want 2", m.GetHistogram().GetSampleCount())
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordRoute(routing.StatusSuccess, time.Millisecond)
	r.SetRouterOnline("MX1", true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`graylogic_av_routes_total{status="success"} 1`,
		`graylogic_av_router_online{router="MX1"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
