package metrics

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wolfman30/clinic-assistant/pkg/logging"
)

// Snapshot is a JSON-friendly summary of the pipeline counters.
type Snapshot struct {
	Inbound          map[string]float64 `json:"inbound"`
	GuardDrops       map[string]float64 `json:"guard_drops"`
	Routes           map[string]float64 `json:"routes"`
	Bookings         map[string]float64 `json:"bookings"`
	DependencyErrors map[string]float64 `json:"dependency_errors"`
	Processed        uint64             `json:"processed"`
	AvgProcessingMs  float64            `json:"avg_processing_ms"`
}

// Collect reads the current counter values from gatherer.
func Collect(gatherer prometheus.Gatherer) (Snapshot, error) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	snap := Snapshot{
		Inbound:          map[string]float64{},
		GuardDrops:       map[string]float64{},
		Routes:           map[string]float64{},
		Bookings:         map[string]float64{},
		DependencyErrors: map[string]float64{},
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return snap, err
	}
	prefix := namespace + "_" + subsystem + "_"
	var sum float64
	for _, mf := range mfs {
		if mf == nil || !strings.HasPrefix(mf.GetName(), prefix) {
			continue
		}
		switch strings.TrimPrefix(mf.GetName(), prefix) {
		case "inbound_messages_total":
			sumCounters(mf, "outcome", snap.Inbound)
		case "guard_drops_total":
			sumCounters(mf, "reason", snap.GuardDrops)
		case "routes_total":
			sumCounters(mf, "route", snap.Routes)
		case "bookings_total":
			sumCounters(mf, "event", snap.Bookings)
		case "dependency_errors_total":
			sumCounters(mf, "dependency", snap.DependencyErrors)
		case "processing_seconds":
			for _, metric := range mf.Metric {
				if h := metric.GetHistogram(); h != nil {
					snap.Processed += h.GetSampleCount()
					sum += h.GetSampleSum()
				}
			}
		}
	}
	if snap.Processed > 0 {
		snap.AvgProcessingMs = sum / float64(snap.Processed) * 1000
	}
	return snap, nil
}

func sumCounters(mf *dto.MetricFamily, label string, into map[string]float64) {
	for _, metric := range mf.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		into[labelValue(metric, label)] += metric.GetCounter().GetValue()
	}
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// StatsHandler serves Collect as JSON.
type StatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewStatsHandler(gatherer prometheus.Gatherer, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{gatherer: gatherer, logger: logger}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	snap, err := Collect(h.gatherer)
	if err != nil {
		h.logger.Error("failed to gather metrics", "error", err)
		http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}
