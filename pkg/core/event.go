package core

import (
	"context"

	"github.com/nikolaydubina/fpdecimal"
)

// ExecStatus is the lifecycle status carried on an execution event.
type ExecStatus string

// Execution statuses
const (
	StatusNew         ExecStatus = "New"
	StatusRejected    ExecStatus = "Rejected"
	StatusFill        ExecStatus = "Fill"
	StatusPartialFill ExecStatus = "PartialFill"
)

// ExecutionEvent is emitted once per order state change. SideCode uses the
// wire encoding (1=Buy, 2=Sell); it is 0 on a Rejected event whose side field
// never parsed. Reason is set only on Rejected events.
type ExecutionEvent struct {
	OrderID       string
	ClientOrderID string
	Instrument    string
	SideCode      int
	Status        ExecStatus
	Quantity      int64
	Price         fpdecimal.Decimal
	Reason        string
}

// ExecutionSink receives execution events, synchronously, in the order the
// engine generates them within one submission. Implementations own durability
// and format; the engine logs and drops an event the sink refuses.
type ExecutionSink interface {
	Publish(ctx context.Context, event ExecutionEvent) error
}

// SinkFunc adapts a function to the ExecutionSink interface.
type SinkFunc func(ctx context.Context, event ExecutionEvent) error

// Publish calls f(ctx, event).
func (f SinkFunc) Publish(ctx context.Context, event ExecutionEvent) error {
	return f(ctx, event)
}
