package testutil

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default addresses for locally running test dependencies.
const (
	DefaultRedisAddr = "localhost:6379"
	DefaultKafkaAddr = "localhost:9092"
)

const dialTimeout = 2 * time.Second

// SkipIfRedisUnavailable skips the test unless a Redis server answers a ping
// at addr.
func SkipIfRedisUnavailable(t *testing.T, addr string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping: Redis not available at %s (%v)", addr, err)
	}
}

// SkipIfKafkaUnavailable skips the test unless something accepts a TCP
// connection at addr. A handshake check is deliberately avoided; a listening
// broker is enough for these tests.
func SkipIfKafkaUnavailable(t *testing.T, addr string) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		t.Skipf("Skipping: Kafka not available at %s (%v)", addr, err)
		return
	}
	_ = conn.Close()
}
