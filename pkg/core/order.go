package core

import (
	"encoding/json"
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
)

// Side represents buy or sell side of the order
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Code returns the wire encoding of the side (1=Buy, 2=Sell).
func (s Side) Code() int {
	if s == Buy {
		return 1
	}
	return 2
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// SideFromCode converts the wire encoding (1=Buy, 2=Sell) to a Side.
func SideFromCode(code int) (Side, error) {
	switch code {
	case 1:
		return Buy, nil
	case 2:
		return Sell, nil
	default:
		return 0, ErrInvalidSide
	}
}

// Order is a validated, accepted order resting in or passing through a book.
// All fields except the remaining quantity are immutable after construction.
type Order struct {
	id            string
	clientOrderID string
	instrument    string
	side          Side
	remaining     int64
	originalQty   int64
	price         fpdecimal.Decimal
	sequence      uint64
}

// NewOrder creates an Order. Callers are expected to have run the intent
// through ValidateIntent first; the constructor does not re-check fields.
func NewOrder(id, clientOrderID, instrument string, side Side, quantity int64, price fpdecimal.Decimal, sequence uint64) *Order {
	return &Order{
		id:            id,
		clientOrderID: clientOrderID,
		instrument:    instrument,
		side:          side,
		remaining:     quantity,
		originalQty:   quantity,
		price:         price,
		sequence:      sequence,
	}
}

// ID returns the engine-assigned order ID
func (o *Order) ID() string {
	return o.id
}

// ClientOrderID returns the caller-supplied identifier, passed through unchanged
func (o *Order) ClientOrderID() string {
	return o.clientOrderID
}

// Instrument returns the instrument symbol
func (o *Order) Instrument() string {
	return o.instrument
}

// Side returns side of the Order
func (o *Order) Side() Side {
	return o.side
}

// Remaining returns the unfilled quantity
func (o *Order) Remaining() int64 {
	return o.remaining
}

// OriginalQty returns the quantity the order was submitted with
func (o *Order) OriginalQty() int64 {
	return o.originalQty
}

// Price returns the limit price
func (o *Order) Price() fpdecimal.Decimal {
	return o.price
}

// Sequence returns the engine-assigned arrival sequence number
func (o *Order) Sequence() uint64 {
	return o.sequence
}

// DecreaseRemaining reduces the unfilled quantity by the traded amount.
func (o *Order) DecreaseRemaining(quantity int64) {
	o.remaining -= quantity
}

// IsFilled reports whether the order has no quantity left.
func (o *Order) IsFilled() bool {
	return o.remaining == 0
}

// String implements fmt.Stringer interface
func (o *Order) String() string {
	return fmt.Sprintf("%s %s %s %d@%s seq=%d", o.id, o.side, o.instrument, o.remaining, o.price, o.sequence)
}

type orderJSON struct {
	ID            string `json:"id"`
	ClientOrderID string `json:"clientOrderId"`
	Instrument    string `json:"instrument"`
	Side          Side   `json:"side"`
	Remaining     int64  `json:"remaining"`
	OriginalQty   int64  `json:"originalQty"`
	Price         string `json:"price"`
	Sequence      uint64 `json:"sequence"`
}

// MarshalJSON implements custom JSON marshaling for Order
func (o *Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		ID:            o.id,
		ClientOrderID: o.clientOrderID,
		Instrument:    o.instrument,
		Side:          o.side,
		Remaining:     o.remaining,
		OriginalQty:   o.originalQty,
		Price:         o.price.String(),
		Sequence:      o.sequence,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Order
func (o *Order) UnmarshalJSON(data []byte) error {
	var oj orderJSON
	if err := json.Unmarshal(data, &oj); err != nil {
		return err
	}

	price, err := fpdecimal.FromString(oj.Price)
	if err != nil {
		price = fpdecimal.Zero
	}

	o.id = oj.ID
	o.clientOrderID = oj.ClientOrderID
	o.instrument = oj.Instrument
	o.side = oj.Side
	o.remaining = oj.Remaining
	o.originalQty = oj.OriginalQty
	o.price = price
	o.sequence = oj.Sequence

	return nil
}
