package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activitiesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socials_consumer_activities_ingested_total",
			Help: "Activities written to the analytics store",
		},
	)

	malformedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socials_consumer_malformed_messages_total",
			Help: "Queue messages dropped because they did not decode into an activity",
		},
	)

	receiveErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socials_consumer_receive_errors_total",
			Help: "Failed long-poll receives from the activity queue",
		},
	)

	insertFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socials_consumer_insert_failures_total",
			Help: "Batches left on the queue after a failed insert",
		},
	)
)
