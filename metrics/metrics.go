package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FilesConvertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidbatch_files_converted_total",
		Help: "Source files that produced an output, by source kind",
	}, []string{"kind"})

	FilesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidbatch_files_skipped_total",
		Help: "Source files that produced no output, by source kind",
	}, []string{"kind"})

	FramesStagedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidbatch_frames_staged_total",
		Help: "Still frames extracted from animated images",
	})

	BatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidbatch_batches_total",
		Help: "Batches run, by outcome",
	}, []string{"outcome"})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vidbatch_batch_duration_seconds",
		Help:    "Wall time of batches that started converting",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	})

	BatchInProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidbatch_batch_in_progress",
		Help: "1 while a batch is processing",
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
