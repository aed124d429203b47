package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "besserbahn_"

	ResultSuccess = "success"
	ResultError   = "error"

	CacheHit  = "hit"
	CacheMiss = "miss"

	BranchAccepted = "accepted"
	BranchRejected = "rejected"
	BranchNoRoute  = "no_route"
	BranchFailed   = "failed"
)

var (
	registerOnce sync.Once

	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	splitBranches   *prometheus.CounterVec
	searchLatency   prometheus.Histogram
)

// Init registers the collectors on reg, or on the default registerer when reg is nil.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		providerCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "provider_calls_total",
				Help: "Upstream provider calls by operation and result",
			},
			[]string{"op", "result"},
		)
		providerLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "provider_latency_seconds",
				Help:    "Upstream provider call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)
		cacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_lookups_total",
				Help: "Result cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		splitBranches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "split_branches_total",
				Help: "Explored split branches by outcome",
			},
			[]string{"outcome"},
		)
		searchLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "search_latency_seconds",
				Help:    "Uncached route search latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20},
			},
		)

		reg.MustRegister(providerCalls, providerLatency, cacheLookups, splitBranches, searchLatency)
	})
}

func ObserveProviderCall(op string, err error, elapsed time.Duration) {
	if providerCalls == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	providerCalls.WithLabelValues(op, result).Inc()
	providerLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func ObserveCacheLookup(hit bool) {
	if cacheLookups == nil {
		return
	}
	outcome := CacheMiss
	if hit {
		outcome = CacheHit
	}
	cacheLookups.WithLabelValues(outcome).Inc()
}

func ObserveBranch(outcome string) {
	if splitBranches == nil {
		return
	}
	splitBranches.WithLabelValues(outcome).Inc()
}

func ObserveSearch(elapsed time.Duration) {
	if searchLatency == nil {
		return
	}
	searchLatency.Observe(elapsed.Seconds())
}
