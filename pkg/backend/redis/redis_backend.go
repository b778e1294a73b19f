package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/florex-io/florex/pkg/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions represents configuration options for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

var defaultOptions = &RedisOptions{
	Addr:     "localhost:6379",
	Password: "",
	DB:       0,
}

// SetDefaultRedisOptions sets the default options for Redis connections
func SetDefaultRedisOptions(options *RedisOptions) {
	defaultOptions = options
}

// GetRedisClient creates a new Redis client using the default options
func GetRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     defaultOptions.Addr,
		Password: defaultOptions.Password,
		DB:       defaultOptions.DB,
	})
}

// RedisBackend implements core.BookBackend with Redis storage. Each side is a
// sorted set whose score encodes price (negated for bids, so ascending rank
// is always best-first) and whose zero-padded sequence member breaks ties at
// equal prices. Order bodies live in a hash keyed by the same member.
type RedisBackend struct {
	client    *redis.Client
	ctx       context.Context
	bidsKey   string
	asksKey   string
	ordersKey string
	logger    *zap.Logger
}

// NewRedisBackend creates a new instance of RedisBackend. The prefix keeps
// instruments apart; one backend serves one instrument's book.
func NewRedisBackend(client *redis.Client, prefix string, logger *zap.Logger) *RedisBackend {
	return &RedisBackend{
		client:    client,
		ctx:       context.Background(),
		bidsKey:   fmt.Sprintf("%s:bids", prefix),
		asksKey:   fmt.Sprintf("%s:asks", prefix),
		ordersKey: fmt.Sprintf("%s:orders", prefix),
		logger:    logger,
	}
}

func (b *RedisBackend) sideKey(side core.Side) string {
	if side == core.Buy {
		return b.bidsKey
	}
	return b.asksKey
}

func member(order *core.Order) string {
	return fmt.Sprintf("%016d", order.Sequence())
}

func score(side core.Side, order *core.Order) float64 {
	price := order.Price().Float64()
	if side == core.Buy {
		return -price
	}
	return price
}

// Append inserts the order into its ranked position on the given side.
func (b *RedisBackend) Append(side core.Side, order *core.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshaling order %s: %w", order.ID(), err)
	}

	m := member(order)
	pipe := b.client.Pipeline()
	pipe.ZAdd(b.ctx, b.sideKey(side), redis.Z{Score: score(side, order), Member: m})
	pipe.HSet(b.ctx, b.ordersKey, m, data)

	if _, err := pipe.Exec(b.ctx); err != nil {
		b.logger.Error("failed to append order",
			zap.String("orderID", order.ID()),
			zap.Error(err))
		return err
	}

	return nil
}

// Best returns the best-ranked order on the side, or nil if the side is empty.
func (b *RedisBackend) Best(side core.Side) (*core.Order, error) {
	members, err := b.client.ZRange(b.ctx, b.sideKey(side), 0, 0).Result()
	if err != nil {
		b.logger.Error("failed to read best of side",
			zap.String("side", side.String()),
			zap.Error(err))
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	return b.getOrder(members[0])
}

// RemoveBest removes and returns the best-ranked order on the side.
func (b *RedisBackend) RemoveBest(side core.Side) (*core.Order, error) {
	members, err := b.client.ZRange(b.ctx, b.sideKey(side), 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	order, err := b.getOrder(members[0])
	if err != nil {
		return nil, err
	}

	pipe := b.client.Pipeline()
	pipe.ZRem(b.ctx, b.sideKey(side), members[0])
	pipe.HDel(b.ctx, b.ordersKey, members[0])
	if _, err := pipe.Exec(b.ctx); err != nil {
		b.logger.Error("failed to remove best of side",
			zap.String("side", side.String()),
			zap.Error(err))
		return nil, err
	}

	return order, nil
}

// Update rewrites a resting order's stored body after a quantity change.
func (b *RedisBackend) Update(side core.Side, order *core.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshaling order %s: %w", order.ID(), err)
	}

	exists, err := b.client.HExists(b.ctx, b.ordersKey, member(order)).Result()
	if err != nil {
		return err
	}
	if !exists {
		return core.ErrNonexistentOrder
	}

	return b.client.HSet(b.ctx, b.ordersKey, member(order), data).Err()
}

// Depth returns the number of resting orders on the side.
func (b *RedisBackend) Depth(side core.Side) (int, error) {
	n, err := b.client.ZCard(b.ctx, b.sideKey(side)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Orders returns the side's resting orders in ranked order.
func (b *RedisBackend) Orders(side core.Side) ([]*core.Order, error) {
	members, err := b.client.ZRange(b.ctx, b.sideKey(side), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	orders := make([]*core.Order, 0, len(members))
	for _, m := range members {
		order, err := b.getOrder(m)
		if err != nil {
			return nil, err
		}
		if order != nil {
			orders = append(orders, order)
		}
	}

	return orders, nil
}

// Flush removes every key this backend owns. Book state is not meant to
// survive a run; a fresh process starts from an empty book.
func (b *RedisBackend) Flush() error {
	return b.client.Del(b.ctx, b.bidsKey, b.asksKey, b.ordersKey).Err()
}

func (b *RedisBackend) getOrder(member string) (*core.Order, error) {
	data, err := b.client.HGet(b.ctx, b.ordersKey, member).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		b.logger.Error("failed to get order",
			zap.String("member", member),
			zap.Error(err))
		return nil, err
	}

	var order core.Order
	if err := json.Unmarshal(data, &order); err != nil {
		b.logger.Error("failed to unmarshal order",
			zap.String("member", member),
			zap.Error(err))
		return nil, err
	}

	return &order, nil
}
