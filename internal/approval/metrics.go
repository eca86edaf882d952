package approval

import "github.com/prometheus/client_golang/prometheus"

var (
	// submissionsTotal counts intake attempts by outcome
	// (forwarded, invalid_license, delivery_failed).
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_submissions_total",
			Help: "Total form submissions by intake outcome.",
		},
		[]string{"outcome"},
	)

	// decisionsTotal counts admin decision button presses by action.
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Total admin decisions recorded, by action.",
		},
		[]string{"action"},
	)

	// resolutionsTotal counts completed resolutions by action.
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_resolutions_total",
			Help: "Total resolutions written for submitters, by action.",
		},
		[]string{"action"},
	)

	// duplicatesTotal counts absorbed duplicate events by kind
	// (update, callback).
	duplicatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_duplicate_events_total",
			Help: "Total duplicate deliveries absorbed by the dedup guards.",
		},
		[]string{"kind"},
	)

	// malformedCallbacksTotal counts decision payloads rejected by the parser.
	malformedCallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "approval_malformed_callbacks_total",
			Help: "Total decision callbacks with an unparseable payload.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		submissionsTotal,
		decisionsTotal,
		resolutionsTotal,
		duplicatesTotal,
		malformedCallbacksTotal,
	)
}
