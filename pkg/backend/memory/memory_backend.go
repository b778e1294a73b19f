package memory

import (
	"sync"

	"github.com/florex-io/florex/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

// orderQueue is a single price level: orders at the same price in arrival
// order. The engine inserts in sequence order, so FIFO position equals the
// sequence tie-break.
type orderQueue struct {
	priceStr  string
	priceDecm fpdecimal.Decimal
	orders    []*core.Order
	next      *orderQueue
	prev      *orderQueue
}

func newOrderQueue(price fpdecimal.Decimal) *orderQueue {
	return &orderQueue{
		priceStr:  price.String(),
		priceDecm: price,
	}
}

// bookSide keeps one side's price levels as a doubly linked list with the
// best level at the head: bids descend in price, asks ascend. A map from
// price string to level makes same-price insertion O(1).
type bookSide struct {
	side   core.Side
	head   *orderQueue
	tail   *orderQueue
	levels map[string]*orderQueue
	count  int
}

func newBookSide(side core.Side) *bookSide {
	return &bookSide{
		side:   side,
		levels: make(map[string]*orderQueue),
	}
}

// betterThan reports whether price a ranks ahead of price b on this side.
func (bs *bookSide) betterThan(a, b fpdecimal.Decimal) bool {
	if bs.side == core.Buy {
		return a.GreaterThan(b)
	}
	return a.LessThan(b)
}

func (bs *bookSide) insert(order *core.Order) {
	price := order.Price()
	priceStr := price.String()
	bs.count++

	if q, ok := bs.levels[priceStr]; ok {
		q.orders = append(q.orders, order)
		return
	}

	q := newOrderQueue(price)
	q.orders = append(q.orders, order)
	bs.levels[priceStr] = q

	if bs.head == nil {
		bs.head = q
		bs.tail = q
		return
	}

	// Head and tail fast paths, then a walk for the middle.
	if bs.betterThan(price, bs.head.priceDecm) {
		q.next = bs.head
		bs.head.prev = q
		bs.head = q
		return
	}
	if !bs.betterThan(price, bs.tail.priceDecm) {
		q.prev = bs.tail
		bs.tail.next = q
		bs.tail = q
		return
	}

	current := bs.head
	for current != nil && !bs.betterThan(price, current.priceDecm) {
		current = current.next
	}
	q.next = current
	q.prev = current.prev
	current.prev.next = q
	current.prev = q
}

func (bs *bookSide) best() *core.Order {
	if bs.head == nil {
		return nil
	}
	return bs.head.orders[0]
}

func (bs *bookSide) removeBest() *core.Order {
	if bs.head == nil {
		return nil
	}

	q := bs.head
	order := q.orders[0]
	q.orders = q.orders[1:]
	bs.count--

	if len(q.orders) == 0 {
		delete(bs.levels, q.priceStr)
		bs.head = q.next
		if bs.head != nil {
			bs.head.prev = nil
		} else {
			bs.tail = nil
		}
	}

	return order
}

func (bs *bookSide) orders() []*core.Order {
	out := make([]*core.Order, 0, bs.count)
	for q := bs.head; q != nil; q = q.next {
		out = append(out, q.orders...)
	}
	return out
}

// MemoryBackend implements core.BookBackend with in-memory storage for a
// single instrument.
type MemoryBackend struct {
	sync.RWMutex
	bids *bookSide
	asks *bookSide
}

// NewMemoryBackend creates new instance of MemoryBackend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		bids: newBookSide(core.Buy),
		asks: newBookSide(core.Sell),
	}
}

func (b *MemoryBackend) sideOf(side core.Side) *bookSide {
	if side == core.Buy {
		return b.bids
	}
	return b.asks
}

// Append inserts the order into its ranked position on the given side.
func (b *MemoryBackend) Append(side core.Side, order *core.Order) error {
	b.Lock()
	defer b.Unlock()

	b.sideOf(side).insert(order)
	return nil
}

// Best returns the best-ranked order on the side, or nil if the side is empty.
func (b *MemoryBackend) Best(side core.Side) (*core.Order, error) {
	b.RLock()
	defer b.RUnlock()

	return b.sideOf(side).best(), nil
}

// RemoveBest removes and returns the best-ranked order on the side.
func (b *MemoryBackend) RemoveBest(side core.Side) (*core.Order, error) {
	b.Lock()
	defer b.Unlock()

	return b.sideOf(side).removeBest(), nil
}

// Update is a no-op: resting orders are shared pointers, quantity changes are
// already visible.
func (b *MemoryBackend) Update(side core.Side, order *core.Order) error {
	return nil
}

// Depth returns the number of resting orders on the side.
func (b *MemoryBackend) Depth(side core.Side) (int, error) {
	b.RLock()
	defer b.RUnlock()

	return b.sideOf(side).count, nil
}

// Orders returns the side's resting orders in ranked order.
func (b *MemoryBackend) Orders(side core.Side) ([]*core.Order, error) {
	b.RLock()
	defer b.RUnlock()

	return b.sideOf(side).orders(), nil
}
