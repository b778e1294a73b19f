package core

// BookBackend defines the storage interface for one instrument's resting
// interest. Implementations must keep each side ranked for price-time
// priority: bids by price descending, asks by price ascending, ties broken by
// ascending sequence.
type BookBackend interface {
	// Append inserts the order into its ranked position on the given side.
	Append(side Side, order *Order) error

	// Best returns the best-ranked resting order on the side, or nil if the
	// side is empty.
	Best(side Side) (*Order, error)

	// RemoveBest removes and returns the best-ranked order on the side, or
	// nil if the side is empty.
	RemoveBest(side Side) (*Order, error)

	// Update persists a quantity change to an order already resting on the
	// side. In-memory implementations may treat this as a no-op.
	Update(side Side, order *Order) error

	// Depth returns the number of resting orders on the side.
	Depth(side Side) (int, error)

	// Orders returns the side's resting orders in ranked order.
	Orders(side Side) ([]*Order, error)
}
