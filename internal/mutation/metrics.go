package mutation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opToggle = "toggle_interest"
	opDelete = "delete_record"
)

const (
	resultCommitted     = "committed"
	resultAlreadyGone   = "already_deleted"
	resultNotFound      = "not_found"
	resultUnauthorized  = "unauthorized"
	resultConcurrentMod = "concurrent_modification"
	resultError         = "error"
)

var (
	mutationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socials_mutation_attempts_total",
		Help: "Read-compute-write attempts made by the mutation coordinator",
	}, []string{"op"})

	mutationConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socials_mutation_conflicts_total",
		Help: "Conditional writes rejected because a concurrent writer won",
	}, []string{"op"})

	mutationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socials_mutation_results_total",
		Help: "Terminal outcomes of mutation calls",
	}, []string{"op", "result"})
)
