// Package metrics exposes Prometheus collectors for vote and review outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stake-plus/ideabox/src/ideas"
)

// Recorder implements ideas.Recorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	votes    *prometheus.CounterVec
	statuses *prometheus.CounterVec
	refused  *prometheus.CounterVec
}

var _ ideas.Recorder = (*Recorder)(nil)

// New builds a recorder. surface labels every series ("api", "bot" or "serve").
func New(surface string) *Recorder {
	labels := prometheus.Labels{"surface": surface}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "ideabox",
			Name:        "votes_total",
			Help:        "Vote requests applied, by outcome.",
			ConstLabels: labels,
		}, []string{"result"}),
		statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "ideabox",
			Name:        "status_changes_total",
			Help:        "Ideas moved out of pending, by new status.",
			ConstLabels: labels,
		}, []string{"status"}),
		refused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "ideabox",
			Name:        "refused_total",
			Help:        "Requests refused by a business rule, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
	}
	r.registry.MustRegister(
		r.votes,
		r.statuses,
		r.refused,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) VoteApplied(result string) {
	r.votes.WithLabelValues(result).Inc()
}

func (r *Recorder) StatusChanged(status ideas.Status) {
	r.statuses.WithLabelValues(string(status)).Inc()
}

func (r *Recorder) Refused(reason string) {
	r.refused.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
