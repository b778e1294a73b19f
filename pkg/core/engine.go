package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/florex-io/florex/pkg/otel"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// BackendFactory builds a book storage backend for one instrument.
type BackendFactory func(instrument string) BookBackend

// SubmitResult summarizes the outcome of one Submit call. The full event
// stream goes to the ExecutionSink; the result exists for callers that want
// the outcome without re-reading the feed.
type SubmitResult struct {
	OrderID   string
	Accepted  bool
	Reason    error
	Trades    int
	Remaining int64
	Resting   bool
}

// MatchingEngine orchestrates validation and matching for a fixed set of
// instruments. It owns one OrderBook per instrument plus the two process-wide
// counters (order ID, sequence); both are strictly increasing for the
// lifetime of a run and advance only inside Submit.
//
// Submit is serialized with a single mutex: one intent is fully validated,
// matched, and reported before the next is accepted, so the no-cross
// invariant holds at every return.
type MatchingEngine struct {
	mu        sync.Mutex
	books     map[string]*OrderBook
	validator *Validator
	sink      ExecutionSink
	orderID   uint64
	sequence  uint64
}

// NewMatchingEngine creates an engine with one book per instrument, built
// through the factory, publishing execution events to sink.
func NewMatchingEngine(instruments []string, factory BackendFactory, sink ExecutionSink) *MatchingEngine {
	books := make(map[string]*OrderBook, len(instruments))
	for _, ins := range instruments {
		books[ins] = NewOrderBook(ins, factory(ins))
	}

	return &MatchingEngine{
		books:     books,
		validator: NewValidator(instruments),
		sink:      sink,
	}
}

// Book returns the order book for the instrument, for inspection only.
func (e *MatchingEngine) Book(instrument string) (*OrderBook, bool) {
	book, ok := e.books[instrument]
	return book, ok
}

// Validator returns the engine's order validator.
func (e *MatchingEngine) Validator() *Validator {
	return e.validator
}

// Submit runs one raw intent through validation and matching. Every intent
// consumes an order ID, accepted or not; only accepted orders consume a
// sequence number. Execution events are published to the sink as they are
// generated; a sink failure is logged and that event dropped.
func (e *MatchingEngine) Submit(ctx context.Context, intent OrderIntent) (*SubmitResult, error) {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanSubmitOrder,
		attribute.String(otel.AttributeInstrument, intent.Instrument),
		attribute.String(otel.AttributeClientOrderID, intent.ClientOrderID),
	)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.orderID++
	orderID := fmt.Sprintf("ord%d", e.orderID)

	parsed, err := e.validator.Validate(intent)
	if err != nil {
		e.publish(ctx, ExecutionEvent{
			OrderID:       orderID,
			ClientOrderID: parsed.ClientOrderID,
			Instrument:    parsed.Instrument,
			SideCode:      parsed.SideCode,
			Status:        StatusRejected,
			Quantity:      parsed.Quantity,
			Price:         parsed.Price,
			Reason:        RejectionName(err),
		})
		otel.GetEngineMetrics().RecordRejected(ctx, RejectionName(err))
		span.SetStatus(codes.Ok, "intent rejected")

		return &SubmitResult{OrderID: orderID, Reason: err}, nil
	}

	book, ok := e.books[parsed.Instrument]
	if !ok {
		span.SetStatus(codes.Error, "no book for instrument")
		return nil, fmt.Errorf("%w: %s", ErrUnknownBook, parsed.Instrument)
	}

	e.sequence++
	order := NewOrder(orderID, parsed.ClientOrderID, parsed.Instrument, parsed.Side, parsed.Quantity, parsed.Price, e.sequence)

	trades, err := e.match(ctx, book, order)
	if err != nil {
		span.SetStatus(codes.Error, "matching failed")
		return nil, fmt.Errorf("matching %s: %w", orderID, err)
	}

	resting := !order.IsFilled()
	if resting {
		// A remainder rests on the book. It gets exactly one New event for
		// the originally submitted quantity, after any trade events of this
		// submission. A fully consumed order gets no New event.
		e.publish(ctx, ExecutionEvent{
			OrderID:       order.ID(),
			ClientOrderID: order.ClientOrderID(),
			Instrument:    order.Instrument(),
			SideCode:      order.Side().Code(),
			Status:        StatusNew,
			Quantity:      order.OriginalQty(),
			Price:         order.Price(),
		})
	}

	otel.GetEngineMetrics().RecordSubmitted(ctx, order.Instrument())
	otel.AddAttributes(span,
		attribute.String(otel.AttributeOrderID, order.ID()),
		attribute.Int(otel.AttributeTradeCount, trades),
		attribute.Int64(otel.AttributeRemainingQuantity, order.Remaining()),
	)
	span.SetStatus(codes.Ok, "order processed")

	return &SubmitResult{
		OrderID:   orderID,
		Accepted:  true,
		Trades:    trades,
		Remaining: order.Remaining(),
		Resting:   resting,
	}, nil
}

// match inserts the incoming order and runs the crossing loop. The order is
// inserted before matching so the loop treats resting and incoming orders
// uniformly; price-time ranking decides who trades.
func (e *MatchingEngine) match(ctx context.Context, book *OrderBook, incoming *Order) (int, error) {
	ctx, span := otel.StartOrderSpan(ctx, otel.SpanMatchOrder,
		attribute.String(otel.AttributeOrderID, incoming.ID()),
		attribute.String(otel.AttributeInstrument, incoming.Instrument()),
		attribute.String(otel.AttributeOrderSide, incoming.Side().String()),
	)
	defer span.End()

	if err := book.Insert(incoming); err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	trades := 0
	for {
		bid, err := book.Best(Buy)
		if err != nil {
			return trades, err
		}
		ask, err := book.Best(Sell)
		if err != nil {
			return trades, err
		}
		if bid == nil || ask == nil || bid.Price().LessThan(ask.Price()) {
			break
		}

		tradeQty := bid.Remaining()
		if ask.Remaining() < tradeQty {
			tradeQty = ask.Remaining()
		}

		// The earlier arrival keeps its price; the later one is improved.
		tradePrice := ask.Price()
		if bid.Sequence() < ask.Sequence() {
			tradePrice = bid.Price()
		}

		bid.DecreaseRemaining(tradeQty)
		ask.DecreaseRemaining(tradeQty)

		// Backends may hand out detached copies of stored orders. Mirror the
		// decrement onto the incoming order so its remaining quantity is
		// accurate when the loop ends.
		if bid != incoming && bid.ID() == incoming.ID() {
			incoming.DecreaseRemaining(tradeQty)
		}
		if ask != incoming && ask.ID() == incoming.ID() {
			incoming.DecreaseRemaining(tradeQty)
		}

		for _, o := range [2]*Order{bid, ask} {
			status := StatusPartialFill
			if o.IsFilled() {
				status = StatusFill
			}
			e.publish(ctx, ExecutionEvent{
				OrderID:       o.ID(),
				ClientOrderID: o.ClientOrderID(),
				Instrument:    o.Instrument(),
				SideCode:      o.Side().Code(),
				Status:        status,
				Quantity:      tradeQty,
				Price:         tradePrice,
			})

			if o.IsFilled() {
				if _, err := book.RemoveBest(o.Side()); err != nil {
					return trades, fmt.Errorf("removing filled order: %w", err)
				}
			} else if err := book.Update(o); err != nil {
				return trades, fmt.Errorf("updating order: %w", err)
			}
		}

		trades++
		otel.GetEngineMetrics().RecordTrade(ctx, incoming.Instrument(), tradeQty)
	}

	otel.AddAttributes(span, attribute.Int(otel.AttributeTradeCount, trades))
	span.SetStatus(codes.Ok, "matching complete")

	return trades, nil
}

// publish hands one event to the sink. A refused event is logged and dropped;
// it never aborts the run.
func (e *MatchingEngine) publish(ctx context.Context, event ExecutionEvent) {
	if err := e.sink.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("order_id", event.OrderID).
			Str("status", string(event.Status)).
			Msg("Execution sink refused event, dropping")
	}
}
