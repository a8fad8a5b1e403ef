package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsCollect(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveInbound("text", "processed")
	m.ObserveInbound("text", "processed")
	m.ObserveInbound("audio", "dropped")
	m.ObserveGuardDrop("duplicate")
	m.ObserveRoute("start_booking")
	m.ObserveBooking("created")
	m.ObserveDependencyError("oracle")
	m.ObserveOutbound("text", "sent")
	m.ObserveProcessing("text", 0.2)
	m.ObserveProcessing("text", 0.4)

	snap, err := Collect(reg)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if snap.Inbound["processed"] != 2 || snap.Inbound["dropped"] != 1 {
		t.Fatalf("unexpected inbound %v", snap.Inbound)
	}
	if snap.GuardDrops["duplicate"] != 1 || snap.Routes["start_booking"] != 1 || snap.Bookings["created"] != 1 {
		t.Fatalf("unexpected counters %+v", snap)
	}
	if snap.DependencyErrors["oracle"] != 1 {
		t.Fatalf("unexpected dependency errors %v", snap.DependencyErrors)
	}
	if snap.Processed != 2 || snap.AvgProcessingMs < 299 || snap.AvgProcessingMs > 301 {
		t.Fatalf("unexpected processing stats %d %.2f", snap.Processed, snap.AvgProcessingMs)
	}
}

func TestMetricsGuardDropCounterValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveGuardDrop("rate_limited")

	var metric dto.Metric
	if err := m.guardDrops.WithLabelValues("rate_limited").Write(&metric); err != nil {
		t.Fatalf("write: %v", err)
	}
	if metric.GetCounter().GetValue() != 1 {
		t.Fatalf("expected 1, got %v", metric.GetCounter().GetValue())
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveInbound("text", "processed")
	m.ObserveGuardDrop("duplicate")
	m.ObserveRoute("ai")
	m.ObserveBooking("canceled")
	m.ObserveDependencyError("store")
	m.ObserveOutbound("text", "failed")
	m.ObserveProcessing("text", 0.1)
}

func TestStatsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).ObserveBooking("canceled")

	w := httptest.NewRecorder()
	NewStatsHandler(reg, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snap Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Bookings["canceled"] != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
