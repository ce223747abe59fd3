package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Uploads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bucket_upload",
		Name:      "uploads_total",
		Help:      "Total put object calls issued.",
	})
	UploadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bucket_upload",
		Name:      "upload_failures_total",
		Help:      "Total put object calls that returned an error.",
	})
	UploadedBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bucket_upload",
		Name:      "uploaded_bytes_total",
		Help:      "Total payload bytes acknowledged by the store.",
	})
	UploadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bucket_upload",
		Name:      "upload_duration_seconds",
		Help:      "Put object latency, successful or not.",
		Buckets:   prometheus.DefBuckets,
	})
	EmulatorObjectsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bucket_upload",
		Name:      "emulator_objects_stored_total",
		Help:      "Total objects written by the local emulator.",
	})
)

var initOnce sync.Once

// Init registers collectors; safe to call from more than one entrypoint.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(Uploads, UploadFailures, UploadedBytes, UploadDuration, EmulatorObjectsStored)
	})
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Blocks; run in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
