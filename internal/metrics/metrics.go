package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heart_risk"

// Fallback reasons
const (
	ReasonNoModel       = "no_model"
	ReasonPreprocessing = "preprocessing"
	ReasonInference     = "inference"
	ReasonBreakerOpen   = "breaker_open"
)

// Recorder holds the prediction collectors on a private registry. A nil
// *Recorder discards every observation.
type Recorder struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	modelLoads  *prometheus.CounterVec
	risk        prometheus.Histogram
}

// NewRecorder creates a recorder with Go runtime and process collectors
// registered alongside the prediction metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Risk predictions served, by source and category.",
		}, []string{"source", "category"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_fallbacks_total",
			Help:      "Predictions that fell back to rule-based scoring, by reason.",
		}, []string{"reason"}),
		modelLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_loads_total",
			Help:      "Model load attempts, by result.",
		}, []string{"result"}),
		risk: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_percentage",
			Help:      "Distribution of reported risk percentages.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.predictions,
		r.fallbacks,
		r.modelLoads,
		r.risk,
	)
	return r
}

// ObservePrediction counts one served prediction.
func (r *Recorder) ObservePrediction(source, category string, riskPercentage float64) {
	if r == nil {
		return
	}
	r.predictions.WithLabelValues(source, category).Inc()
	r.risk.Observe(riskPercentage)
}

// ObserveFallback counts a prediction that could not use the model.
func (r *Recorder) ObserveFallback(reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(reason).Inc()
}

// ObserveModelLoad counts a load attempt.
func (r *Recorder) ObserveModelLoad(success bool) {
	if r == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	r.modelLoads.WithLabelValues(result).Inc()
}

// Predictions returns the counter for one source and category.
func (r *Recorder) Predictions(source, category string) prometheus.Counter {
	return r.predictions.WithLabelValues(source, category)
}

// Fallbacks returns the fallback counter for one reason.
func (r *Recorder) Fallbacks(reason string) prometheus.Counter {
	return r.fallbacks.WithLabelValues(reason)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
