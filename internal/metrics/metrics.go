package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Walker metrics
	framesLocatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ringvideo_frames_located_total",
		Help: "Total frames located per variant",
	}, []string{"variant"})

	resyncsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ringvideo_resyncs_total",
		Help: "Total frames recovered by scanning forward after a missed marker",
	})

	driftBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ringvideo_drift_bytes",
		Help:    "Distance between the expected and the actual frame offset after a resync",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1B to ~256KiB
	})

	bytesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ringvideo_bytes_scanned_total",
		Help: "Total candidate offsets tested while searching for markers",
	})

	// Decoder metrics
	framesDecodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ringvideo_frames_decoded_total",
		Help: "Total frames decoded",
	})

	decodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ringvideo_decode_errors_total",
		Help: "Total decode failures by error type",
	}, []string{"error_type"})

	// Index cache metrics
	indexCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ringvideo_index_cache_total",
		Help: "Frame index cache lookups by result",
	}, []string{"result"})

	// Run metrics
	runDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ringvideo_run_duration_seconds",
		Help:    "Wall time of a decode run in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms to ~3min
	})
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
	CacheStore = "store"
)

// RecordFrameLocated counts a located frame and, when it was found by a
// resync, the drift that was recovered.
func RecordFrameLocated(variant string, resynced bool, drift int64) {
	framesLocatedTotal.WithLabelValues(variant).Inc()
	if resynced {
		resyncsTotal.Inc()
		if drift < 0 {
			drift = -drift
		}
		driftBytes.Observe(float64(drift))
	}
}

// AddBytesScanned adds to the scanned offset counter
func AddBytesScanned(n int64) {
	if n > 0 {
		bytesScannedTotal.Add(float64(n))
	}
}

// IncrementFramesDecoded increments the decoded frame counter
func IncrementFramesDecoded() {
	framesDecodedTotal.Inc()
}

// IncrementDecodeError increments the decode failure counter
func IncrementDecodeError(errorType string) {
	decodeErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordIndexCache records the outcome of an index cache operation
func RecordIndexCache(result string) {
	indexCacheTotal.WithLabelValues(result).Inc()
}

// RecordRunDuration records the duration of a run
func RecordRunDuration(seconds float64) {
	runDurationSeconds.Observe(seconds)
}

// WriteTextfile writes every registered metric to path in the text
// exposition format read by the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
