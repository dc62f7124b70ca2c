package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/steadyhabits/backend/internal/common"
)

// NewHandler builds an http.Handler exposing every metric registered in
// internal/common plus the default Go and process collectors, on a private
// registry so tests can create handlers without double-registration panics.
func NewHandler() http.Handler {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	for _, gauge := range common.PromGauges {
		registry.MustRegister(gauge)
	}

	for _, counter := range common.PromCounters {
		registry.MustRegister(counter)
	}

	for _, histogram := range common.PromHistograms {
		registry.MustRegister(histogram)
	}

	for _, summary := range common.PromSummaries {
		registry.MustRegister(summary)
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
