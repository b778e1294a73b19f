package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Span names
	SpanSubmitOrder  = "submit_order"
	SpanMatchOrder   = "match_order"
	SpanPublishEvent = "publish_event"

	// Attribute keys
	AttributeOrderID           = "order.id"
	AttributeClientOrderID     = "order.client_id"
	AttributeInstrument        = "order.instrument"
	AttributeOrderSide         = "order.side"
	AttributeOrderQuantity     = "order.quantity"
	AttributeOrderPrice        = "order.price"
	AttributeOrderStatus       = "order.status"
	AttributeRemainingQuantity = "order.remaining_quantity"
	AttributeTradeCount        = "trade.count"
)

// StartOrderSpan starts a new span for order processing. With no collector
// configured the global no-op tracer is used and the span costs nothing.
func StartOrderSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return engineTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}
