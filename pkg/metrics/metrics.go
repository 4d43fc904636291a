package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Метрики очереди. Лейбл queue — имя очереди, из которой читает потребитель.
var (
	RabbitDeliveriesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_deliveries_received_total",
			Help: "Number of deliveries received from RabbitMQ",
		},
		[]string{"queue"},
	)
	RabbitDeliveriesAcked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_deliveries_acked_total",
			Help: "Number of deliveries acknowledged after a durable write",
		},
		[]string{"queue"},
	)
	RabbitDeliveriesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_deliveries_failed_total",
			Help: "Number of deliveries left unacknowledged or rejected",
		},
		[]string{"queue", "reason"}, // decode|dispatch|panic|rejected
	)
	RabbitAcksSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_acks_skipped_total",
			Help: "Acknowledgements skipped because the channel was closed",
		},
		[]string{"queue"},
	)
	RabbitInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rabbitmq_in_flight_deliveries",
			Help: "Deliveries currently being processed",
		},
	)
)

// DispatchDuration — время применения события к хранилищу.
var DispatchDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "product_event_dispatch_seconds",
		Help:    "Duration of applying a product change event to storage",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"kind", "result"}, // result: ok|error
)

var (
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations",
		},
		[]string{"op"}, // hit|miss|evicted|expired|invalidated
	)
	CacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Number of items currently in cache",
		},
	)
)

var registerOnce sync.Once

// MustRegister — регистрация в DefaultRegisterer, повторные вызовы ничего не делают.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RabbitDeliveriesReceived, RabbitDeliveriesAcked, RabbitDeliveriesFailed,
			RabbitAcksSkipped, RabbitInFlight,
			DispatchDuration,
			CacheOps, CacheSize,
		)
	})
}
