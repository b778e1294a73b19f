package messaging

import (
	"context"
	"strconv"

	"github.com/florex-io/florex/pkg/core"
)

// MessageSender defines an interface for sending execution messages.
// This keeps the engine decoupled from specific transports like Kafka.
type MessageSender interface {
	SendExecutionMessage(ctx context.Context, msg *ExecutionMessage) error
	Close() error
}

// ExecutionMessage is the wire form of one execution event. Quantities and
// prices travel as strings so consumers never depend on the engine's decimal
// representation.
type ExecutionMessage struct {
	OrderID       string `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	Instrument    string `json:"instrument"`
	Side          int    `json:"side"`
	Status        string `json:"status"`
	Quantity      string `json:"quantity"`
	Price         string `json:"price"`
	Reason        string `json:"reason,omitempty"`
}

// FromEvent converts an execution event to its wire form.
func FromEvent(event core.ExecutionEvent) *ExecutionMessage {
	return &ExecutionMessage{
		OrderID:       event.OrderID,
		ClientOrderID: event.ClientOrderID,
		Instrument:    event.Instrument,
		Side:          event.SideCode,
		Status:        string(event.Status),
		Quantity:      strconv.FormatInt(event.Quantity, 10),
		Price:         event.Price.String(),
		Reason:        event.Reason,
	}
}

// SenderSink adapts a MessageSender to the core.ExecutionSink interface.
type SenderSink struct {
	sender MessageSender
}

// NewSenderSink wraps the sender as an execution sink.
func NewSenderSink(sender MessageSender) *SenderSink {
	return &SenderSink{sender: sender}
}

// Publish converts the event and hands it to the sender.
func (s *SenderSink) Publish(ctx context.Context, event core.ExecutionEvent) error {
	return s.sender.SendExecutionMessage(ctx, FromEvent(event))
}

// MultiSink fans every event out to all sinks in order. The first error is
// returned after all sinks have been offered the event.
type MultiSink struct {
	sinks []core.ExecutionSink
}

// NewMultiSink creates a fan-out sink.
func NewMultiSink(sinks ...core.ExecutionSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Publish delivers the event to every sink.
func (m *MultiSink) Publish(ctx context.Context, event core.ExecutionEvent) error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Ensure the sink types implement core.ExecutionSink
var (
	_ core.ExecutionSink = (*SenderSink)(nil)
	_ core.ExecutionSink = (*MultiSink)(nil)
)
