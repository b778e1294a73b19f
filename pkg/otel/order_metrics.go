package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// engineMetrics holds the singleton instance
	engineMetrics *EngineMetrics
	// meter is the global meter for matching engine metrics
	meter = otel.GetMeterProvider().Meter(instrumentationName)
)

// EngineMetrics holds counters for matching engine operations.
type EngineMetrics struct {
	ordersSubmitted metric.Int64Counter
	ordersRejected  metric.Int64Counter
	tradesExecuted  metric.Int64Counter
	quantityTraded  metric.Int64Counter
}

// GetEngineMetrics returns the EngineMetrics singleton.
func GetEngineMetrics() *EngineMetrics {
	if engineMetrics == nil {
		submitted, err := meter.Int64Counter(
			"engine.orders_submitted.total",
			metric.WithDescription("Total number of accepted order submissions"),
			metric.WithUnit("{order}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		rejected, err := meter.Int64Counter(
			"engine.orders_rejected.total",
			metric.WithDescription("Total number of rejected order intents"),
			metric.WithUnit("{order}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		trades, err := meter.Int64Counter(
			"engine.trades_executed.total",
			metric.WithDescription("Total number of trades executed"),
			metric.WithUnit("{trade}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		quantity, err := meter.Int64Counter(
			"engine.quantity_traded.total",
			metric.WithDescription("Total quantity traded across all instruments"),
			metric.WithUnit("{unit}"),
		)
		if err != nil {
			return &EngineMetrics{}
		}

		engineMetrics = &EngineMetrics{
			ordersSubmitted: submitted,
			ordersRejected:  rejected,
			tradesExecuted:  trades,
			quantityTraded:  quantity,
		}
	}

	return engineMetrics
}

// RecordSubmitted increments the accepted-submission counter.
func (m *EngineMetrics) RecordSubmitted(ctx context.Context, instrument string) {
	if m.ordersSubmitted == nil {
		return
	}
	m.ordersSubmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order.instrument", instrument),
	))
}

// RecordRejected increments the rejection counter.
func (m *EngineMetrics) RecordRejected(ctx context.Context, reason string) {
	if m.ordersRejected == nil {
		return
	}
	m.ordersRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reject.reason", reason),
	))
}

// RecordTrade increments the trade counters.
func (m *EngineMetrics) RecordTrade(ctx context.Context, instrument string, quantity int64) {
	if m.tradesExecuted == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("order.instrument", instrument))
	m.tradesExecuted.Add(ctx, 1, attrs)
	m.quantityTraded.Add(ctx, quantity, attrs)
}
