package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileIterations counts completed reconcile loop iterations.
	ReconcileIterations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coingro_controller_reconcile_iterations_total",
		Help: "Total number of completed reconcile loop iterations.",
	})

	// ReconcileErrors counts reconcile iterations that ended with an error.
	ReconcileErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coingro_controller_reconcile_errors_total",
		Help: "Total number of reconcile iterations that returned an error.",
	})

	// ActiveBots tracks the number of active bot records.
	ActiveBots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coingro_controller_active_bots",
		Help: "Number of bots currently marked active.",
	})

	// BotAPIRequests counts outgoing requests to bot REST APIs by method
	// and response status.
	BotAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coingro_controller_bot_api_requests_total",
		Help: "Total number of requests sent to bot REST APIs.",
	}, []string{"method", "status"})

	// InstancesCreated counts pods created or replaced by the controller.
	InstancesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coingro_controller_instances_created_total",
		Help: "Total number of bot instances created or replaced.",
	})

	// InstancesDeleted counts pods deleted by the controller.
	InstancesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coingro_controller_instances_deleted_total",
		Help: "Total number of bot instances deleted.",
	})
)
