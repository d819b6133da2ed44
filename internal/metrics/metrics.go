// Package metrics holds domain counters. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cloudvault"

// Preview outcomes.
const (
	PreviewGenerated = "generated"
	PreviewFailed    = "failed"
)

// Share resolution outcomes.
const (
	ResolveOK       = "ok"
	ResolveNotFound = "not_found"
)

// Purge reasons.
const (
	PurgeManual    = "manual"
	PurgeRetention = "retention"
)

type Metrics struct {
	uploads      *prometheus.CounterVec
	uploadBytes  prometheus.Counter
	previews     *prometheus.CounterVec
	resolutions  *prometheus.CounterVec
	sharesSwept  prometheus.Counter
	filesPurged  *prometheus.CounterVec
	sharesIssued prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Files stored, by category.",
		}, []string{"category"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes written to object storage by uploads.",
		}),
		previews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "previews_total",
			Help:      "Image preview attempts, by result.",
		}, []string{"result"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "share_resolutions_total",
			Help:      "Public share lookups, by outcome.",
		}, []string{"outcome"}),
		sharesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_expired_total",
			Help:      "Shares deactivated by the expiry sweep.",
		}),
		filesPurged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_purged_total",
			Help:      "File rows permanently removed, by reason.",
		}, []string{"reason"}),
		sharesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_created_total",
			Help:      "Share links created.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.uploads, m.uploadBytes, m.previews, m.resolutions, m.sharesSwept, m.filesPurged, m.sharesIssued,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Upload(category string, size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(category).Inc()
	m.uploadBytes.Add(float64(size))
}

func (m *Metrics) Preview(result string) {
	if m == nil {
		return
	}
	m.previews.WithLabelValues(result).Inc()
}

func (m *Metrics) ShareResolved(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ShareCreated() {
	if m == nil {
		return
	}
	m.sharesIssued.Inc()
}

func (m *Metrics) SharesSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sharesSwept.Add(float64(n))
}

func (m *Metrics) FilesPurged(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.filesPurged.WithLabelValues(reason).Add(float64(n))
}
