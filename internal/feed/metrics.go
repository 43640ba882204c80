package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socials_feed_batches_applied_total",
		Help: "Change batches applied to a subscription view",
	})

	applyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socials_feed_apply_failures_total",
		Help: "Change batches rejected without touching the view",
	})
)
