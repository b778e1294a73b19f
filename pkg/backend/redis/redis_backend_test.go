package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/florex-io/florex/pkg/core"
	"github.com/florex-io/florex/pkg/testutil"
	"github.com/nikolaydubina/fpdecimal"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestBackend(t *testing.T) *RedisBackend {
	t.Helper()
	testutil.SkipIfRedisUnavailable(t, testutil.DefaultRedisAddr)

	client := goredis.NewClient(&goredis.Options{Addr: testutil.DefaultRedisAddr})
	t.Cleanup(func() { _ = client.Close() })

	prefix := fmt.Sprintf("florex-test:%d", time.Now().UnixNano())
	backend := NewRedisBackend(client, prefix, zap.NewNop())
	require.NoError(t, backend.Flush())
	t.Cleanup(func() { _ = backend.Flush() })

	return backend
}

func makeOrder(id string, side core.Side, qty int64, price float64, seq uint64) *core.Order {
	return core.NewOrder(id, "c-"+id, "Rose", side, qty, fpdecimal.FromFloat(price), seq)
}

func TestRedisBackend_EmptySides(t *testing.T) {
	backend := setupTestBackend(t)

	for _, side := range []core.Side{core.Buy, core.Sell} {
		best, err := backend.Best(side)
		require.NoError(t, err)
		assert.Nil(t, best)

		removed, err := backend.RemoveBest(side)
		require.NoError(t, err)
		assert.Nil(t, removed)

		depth, err := backend.Depth(side)
		require.NoError(t, err)
		assert.Equal(t, 0, depth)
	}
}

func TestRedisBackend_BidRanking(t *testing.T) {
	backend := setupTestBackend(t)

	require.NoError(t, backend.Append(core.Buy, makeOrder("ord1", core.Buy, 100, 10.0, 1)))
	require.NoError(t, backend.Append(core.Buy, makeOrder("ord2", core.Buy, 100, 12.0, 2)))
	require.NoError(t, backend.Append(core.Buy, makeOrder("ord3", core.Buy, 100, 11.0, 3)))

	best, err := backend.Best(core.Buy)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, "ord2", best.ID())

	orders, err := backend.Orders(core.Buy)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "ord2", orders[0].ID())
	assert.Equal(t, "ord3", orders[1].ID())
	assert.Equal(t, "ord1", orders[2].ID())
}

func TestRedisBackend_AskRankingWithSequenceTieBreak(t *testing.T) {
	backend := setupTestBackend(t)

	require.NoError(t, backend.Append(core.Sell, makeOrder("ord1", core.Sell, 100, 11.0, 1)))
	require.NoError(t, backend.Append(core.Sell, makeOrder("ord2", core.Sell, 100, 10.0, 2)))
	require.NoError(t, backend.Append(core.Sell, makeOrder("ord3", core.Sell, 100, 10.0, 3)))

	// Equal prices rank by sequence; the earlier arrival wins.
	for _, want := range []string{"ord2", "ord3", "ord1"} {
		removed, err := backend.RemoveBest(core.Sell)
		require.NoError(t, err)
		require.NotNil(t, removed)
		assert.Equal(t, want, removed.ID())
	}
}

func TestRedisBackend_OrderBodySurvivesStorage(t *testing.T) {
	backend := setupTestBackend(t)

	order := makeOrder("ord9", core.Buy, 200, 12.5, 9)
	order.DecreaseRemaining(50)
	require.NoError(t, backend.Append(core.Buy, order))

	stored, err := backend.Best(core.Buy)
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "ord9", stored.ID())
	assert.Equal(t, "c-ord9", stored.ClientOrderID())
	assert.Equal(t, "Rose", stored.Instrument())
	assert.Equal(t, int64(150), stored.Remaining())
	assert.Equal(t, int64(200), stored.OriginalQty())
	assert.Equal(t, uint64(9), stored.Sequence())
	assert.True(t, stored.Price().Equal(order.Price()))
}

func TestRedisBackend_Update(t *testing.T) {
	backend := setupTestBackend(t)

	order := makeOrder("ord1", core.Sell, 100, 10.0, 1)
	require.NoError(t, backend.Append(core.Sell, order))

	order.DecreaseRemaining(40)
	require.NoError(t, backend.Update(core.Sell, order))

	stored, err := backend.Best(core.Sell)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(60), stored.Remaining())

	missing := makeOrder("ord99", core.Sell, 100, 10.0, 99)
	err = backend.Update(core.Sell, missing)
	assert.ErrorIs(t, err, core.ErrNonexistentOrder)
}

type captureSink struct {
	events []core.ExecutionEvent
}

func (s *captureSink) Publish(_ context.Context, event core.ExecutionEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestRedisBackend_EngineExactMatch(t *testing.T) {
	testutil.SkipIfRedisUnavailable(t, testutil.DefaultRedisAddr)

	client := goredis.NewClient(&goredis.Options{Addr: testutil.DefaultRedisAddr})
	t.Cleanup(func() { _ = client.Close() })

	runPrefix := fmt.Sprintf("florex-test:%d", time.Now().UnixNano())
	var backends []*RedisBackend
	factory := func(instrument string) core.BookBackend {
		backend := NewRedisBackend(client, runPrefix+":"+instrument, zap.NewNop())
		require.NoError(t, backend.Flush())
		backends = append(backends, backend)
		return backend
	}
	t.Cleanup(func() {
		for _, b := range backends {
			_ = b.Flush()
		}
	})

	sink := &captureSink{}
	engine := core.NewMatchingEngine([]string{"Rose"}, factory, sink)

	buy := core.OrderIntent{ClientOrderID: "c1", Instrument: "Rose", Side: "1", Quantity: "100", Price: "10.00"}
	sell := core.OrderIntent{ClientOrderID: "c2", Instrument: "Rose", Side: "2", Quantity: "100", Price: "10.00"}

	_, err := engine.Submit(context.Background(), buy)
	require.NoError(t, err)
	result, err := engine.Submit(context.Background(), sell)
	require.NoError(t, err)

	// Redis returns stored copies rather than the inserted pointers; a fully
	// consumed incoming order must still report as such and emit no New.
	assert.Equal(t, 1, result.Trades)
	assert.False(t, result.Resting)
	assert.Equal(t, int64(0), result.Remaining)

	require.Len(t, sink.events, 3)
	assert.Equal(t, core.StatusNew, sink.events[0].Status)
	assert.Equal(t, core.StatusFill, sink.events[1].Status)
	assert.Equal(t, "ord1", sink.events[1].OrderID)
	assert.Equal(t, core.StatusFill, sink.events[2].Status)
	assert.Equal(t, "ord2", sink.events[2].OrderID)

	book, ok := engine.Book("Rose")
	require.True(t, ok)
	for _, side := range []core.Side{core.Buy, core.Sell} {
		depth, err := book.Depth(side)
		require.NoError(t, err)
		assert.Equal(t, 0, depth)
	}
}

func TestRedisBackend_Flush(t *testing.T) {
	backend := setupTestBackend(t)

	require.NoError(t, backend.Append(core.Buy, makeOrder("ord1", core.Buy, 100, 10.0, 1)))
	require.NoError(t, backend.Append(core.Sell, makeOrder("ord2", core.Sell, 100, 11.0, 2)))

	require.NoError(t, backend.Flush())

	for _, side := range []core.Side{core.Buy, core.Sell} {
		depth, err := backend.Depth(side)
		require.NoError(t, err)
		assert.Equal(t, 0, depth)
	}
}
