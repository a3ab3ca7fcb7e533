// Package metrics exposes the Prometheus registry and the instruments
// the server records into. Everything is registered on a private
// registry so tests can scrape without global state collisions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movigoo"

// Registry is the Prometheus registry all server metrics register on.
var Registry = prometheus.NewRegistry()

// AppInfo exposes build information as labels; the value is always 1.
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// EventPublishesTotal counts publish attempts by outcome:
// published, kyc_blocked, validation_blocked, error.
var EventPublishesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publishes_total",
		Help:      "Event publish attempts by outcome",
	},
	[]string{"outcome"},
)

// EventDraftSavesTotal counts draft saves.
var EventDraftSavesTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_draft_saves_total",
		Help:      "Total number of event draft saves",
	},
)

// SessionsIssuedTotal counts device sessions created.
var SessionsIssuedTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_issued_total",
		Help:      "Total number of host sessions issued",
	},
)

// SessionsRevokedTotal counts sessions removed by revocation.
var SessionsRevokedTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of host sessions revoked",
	},
	[]string{"scope"}, // one | all
)

// SessionsSweptTotal counts expired sessions removed by the sweeper.
var SessionsSweptTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired sessions purged by the background sweeper",
	},
)

// KycSubmissionsTotal counts KYC submissions accepted.
var KycSubmissionsTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kyc_submissions_total",
		Help:      "Total number of KYC submissions filed",
	},
)

// Init registers runtime collectors and stamps build info.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
