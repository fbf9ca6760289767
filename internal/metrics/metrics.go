package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DatasetsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trademap_datasets_loaded_total",
		Help: "The total number of datasets loaded into the cache",
	})
	DatasetLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trademap_dataset_load_failures_total",
		Help: "The total number of failed dataset loads",
	})
	RecordsCached = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trademap_records_cached",
		Help: "The number of normalized records held in the dataset cache",
	})
	FilterPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trademap_filter_passes_total",
		Help: "The total number of filter and grouping passes",
	})
	Searches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trademap_searches_total",
		Help: "The total number of building name searches",
	})
	SupersededSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trademap_searches_superseded_total",
		Help: "The total number of searches cancelled by a newer keystroke",
	})
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trademap_rate_limited_total",
		Help: "The total number of requests rejected by the rate limiter",
	})
	ManifestRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trademap_manifest_refreshes_total",
		Help: "Manifest refreshes by outcome",
	}, []string{"result"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
