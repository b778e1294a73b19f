package core

import (
	"fmt"
	"strings"
)

// OrderBook holds one instrument's resting buy and sell interest over a
// pluggable storage backend. The book is passive: it maintains ordering and
// trusts its caller on everything else. No validation logic lives here.
type OrderBook struct {
	instrument string
	backend    BookBackend
}

// NewOrderBook creates an OrderBook for the instrument with the given backend.
func NewOrderBook(instrument string, backend BookBackend) *OrderBook {
	return &OrderBook{
		instrument: instrument,
		backend:    backend,
	}
}

// Instrument returns the instrument this book holds interest for.
func (ob *OrderBook) Instrument() string {
	return ob.instrument
}

// Insert adds the order to the side matching its own, keeping the side's
// price-time ranking.
func (ob *OrderBook) Insert(order *Order) error {
	return ob.backend.Append(order.Side(), order)
}

// Best returns the best-ranked resting order on the side, or nil if empty.
func (ob *OrderBook) Best(side Side) (*Order, error) {
	return ob.backend.Best(side)
}

// BestOpposite returns the best-ranked resting order on the side opposite the
// given one, or nil if that side is empty.
func (ob *OrderBook) BestOpposite(side Side) (*Order, error) {
	return ob.backend.Best(side.Opposite())
}

// RemoveBest removes and returns the best-ranked order on the side.
func (ob *OrderBook) RemoveBest(side Side) (*Order, error) {
	return ob.backend.RemoveBest(side)
}

// Update persists a quantity change to a resting order.
func (ob *OrderBook) Update(order *Order) error {
	return ob.backend.Update(order.Side(), order)
}

// Depth returns the number of resting orders on the side.
func (ob *OrderBook) Depth(side Side) (int, error) {
	return ob.backend.Depth(side)
}

// Orders returns the side's resting orders in ranked order.
func (ob *OrderBook) Orders(side Side) ([]*Order, error) {
	return ob.backend.Orders(side)
}

// Crossed reports whether the best bid price is at or above the best ask
// price, i.e. a trade is possible. At rest (between engine operations) this is
// always false.
func (ob *OrderBook) Crossed() (bool, error) {
	bid, err := ob.backend.Best(Buy)
	if err != nil {
		return false, err
	}
	ask, err := ob.backend.Best(Sell)
	if err != nil {
		return false, err
	}
	if bid == nil || ask == nil {
		return false, nil
	}
	return bid.Price().GreaterThanOrEqual(ask.Price()), nil
}

// String implements fmt.Stringer interface
func (ob *OrderBook) String() string {
	builder := strings.Builder{}

	builder.WriteString(ob.instrument)
	builder.WriteString("\nAsk:")
	if asks, err := ob.backend.Orders(Sell); err == nil {
		for _, o := range asks {
			builder.WriteString(fmt.Sprintf("\n  %s", o))
		}
	}
	builder.WriteString("\nBid:")
	if bids, err := ob.backend.Orders(Buy); err == nil {
		for _, o := range bids {
			builder.WriteString(fmt.Sprintf("\n  %s", o))
		}
	}

	return builder.String()
}
