package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	MilestoneDetectedTotal     = "milestones_detected_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "status_code"}),
		MilestoneDetectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MilestoneDetectedTotal,
			Help: "Count of all newly detected milestones",
		}, []string{"milestone_type"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "status_code"}),
	}

	PromSummaries = map[string]*prometheus.SummaryVec{}
)
