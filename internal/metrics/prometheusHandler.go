package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of async query jobs in queue",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var queryResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "query_results_total",
	Help: "Resolved queries labelled by whether an answer was found",
}, []string{"outcome"})

var rephraseFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rephrase_fallback_total",
	Help: "Queries that kept their original text because rephrasing failed",
})

var sweeperDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "retention_sweeper_deleted_total",
	Help: "Documents deleted by the retention sweeper",
})

var sweeperFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "retention_sweeper_failures_total",
	Help: "Retention sweeper failures labelled by stage",
}, []string{"stage"})

var sweeperLastRun = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "retention_sweeper_last_run_timestamp_seconds",
	Help: "Unix time the last sweep finished",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CaptureQueryOutcome(answered bool) {
	if answered {
		queryResultsTotal.WithLabelValues("answered").Inc()
		return
	}
	queryResultsTotal.WithLabelValues("no_answer").Inc()
}

func IncrementRephraseFallback() {
	rephraseFallbackTotal.Inc()
}

func CaptureSweep(deleted int, failed int, finished time.Time) {
	sweeperDeletedTotal.Add(float64(deleted))
	sweeperFailedTotal.WithLabelValues("delete").Add(float64(failed))
	sweeperLastRun.Set(float64(finished.Unix()))
}

func IncrementSweepListingFailure() {
	sweeperFailedTotal.WithLabelValues("list").Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent resolving a query job.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
