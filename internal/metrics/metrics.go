package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Contadores e histogramas expuestos en /metrics
var (
	// StockOperations cuenta operaciones de stock aplicadas, por operación y motivo
	StockOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonelan",
		Subsystem: "stock",
		Name:      "operations_total",
		Help:      "Operaciones de stock aplicadas",
	}, []string{"operation", "reason"})

	// StockOperationErrors cuenta operaciones de stock rechazadas
	StockOperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zonelan",
		Subsystem: "stock",
		Name:      "operation_errors_total",
		Help:      "Operaciones de stock rechazadas",
	}, []string{"operation", "error"})

	// TicketsCreated cuenta tickets emitidos
	TicketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "zonelan",
		Subsystem: "tickets",
		Name:      "created_total",
		Help:      "Tickets de venta creados",
	})

	// HTTPRequestDuration latencia de las peticiones HTTP por ruta y método
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zonelan",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duración de las peticiones HTTP",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
