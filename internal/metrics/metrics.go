package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	RowsRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_rows_read_total",
		Help: "Source rows read from the CSV extract",
	})

	RowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_rows_dropped_total",
		Help: "Rows removed for unrecoverable publish dates",
	})

	DimensionRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_dimension_rows_total",
		Help: "Unique natural keys resolved per dimension",
	}, []string{"dimension"})

	FactRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_fact_rows_total",
		Help: "Rows appended to fact_video",
	})

	BatchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_batch_errors_total",
		Help: "Failed bulk writes per logical unit",
	}, []string{"unit"})

	ScraperBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_scraper_batches_total",
		Help: "External scraper batches by outcome",
	}, []string{"job", "status"})
)

// Serve exposes /metrics in the background when an address is configured.
// The jobs are short-lived batch processes, so this is opt-in for runs that
// are scraped mid-flight.
func Serve(addr string, log zerolog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("metrics listener stopped")
		}
	}()
}
