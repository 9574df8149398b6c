package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	updatesReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoprint_updates_received_total",
			Help: "Inbound Telegram updates by kind (message, photo, contact, callback, command).",
		},
		[]string{"kind"},
	)

	unexpectedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoprint_unexpected_events_total",
			Help: "Updates that matched no route, by conversation step.",
		},
		[]string{"step"},
	)

	photosReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "photoprint_photos_received_total",
			Help: "Photos accepted into orders in progress.",
		},
	)

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoprint_orders_total",
			Help: "Orders by outcome (started, confirmed, cancelled).",
		},
		[]string{"outcome"},
	)

	orderValueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "photoprint_order_value_total",
			Help: "Sum of confirmed order totals in roubles.",
		},
	)

	dispatchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoprint_dispatch_failures_total",
			Help: "Operator notification sends that failed after retry, by part (summary, photo).",
		},
		[]string{"part"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			updatesReceivedTotal,
			unexpectedEventsTotal,
			photosReceivedTotal,
			ordersTotal,
			orderValueTotal,
			dispatchFailuresTotal,
		)
	})
}

func IncUpdate(kind string) {
	updatesReceivedTotal.WithLabelValues(kind).Inc()
}

func IncUnexpected(step string) {
	unexpectedEventsTotal.WithLabelValues(step).Inc()
}

func IncPhotos() {
	photosReceivedTotal.Inc()
}

func IncOrderStarted() {
	ordersTotal.WithLabelValues("started").Inc()
}

func IncOrderCancelled() {
	ordersTotal.WithLabelValues("cancelled").Inc()
}

func ObserveOrderConfirmed(total int) {
	ordersTotal.WithLabelValues("confirmed").Inc()
	orderValueTotal.Add(float64(total))
}

func IncDispatchFailure(part string) {
	dispatchFailuresTotal.WithLabelValues(part).Inc()
}
