// Package metrics объявляет счётчики prometheus для наблюдения за агрегацией.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests считает запросы к внешним сервисам по исходу.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campaign_upstream_requests_total",
		Help: "Requests issued to upstream services.",
	}, []string{"service", "outcome"})

	// SubscriptionFetchFailures считает пользователей, для которых запрос
	// подписок завершился ошибкой и был деградирован до пустого списка.
	SubscriptionFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campaign_subscription_fetch_failures_total",
		Help: "Per-user subscription fetches degraded to an empty list.",
	})

	// AggregationDuration — длительность полного цикла агрегации роcтера.
	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campaign_aggregation_duration_seconds",
		Help:    "Duration of a full roster aggregation.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// ScheduleRowsSkipped считает расписания без ссылки на группу,
	// исключённые из сгруппированного представления.
	ScheduleRowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campaign_schedule_rows_skipped_total",
		Help: "Schedules excluded from the grouped view due to a missing group reference.",
	})
)
