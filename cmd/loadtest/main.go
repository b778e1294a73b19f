package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/florex-io/florex/pkg/backend/memory"
	"github.com/florex-io/florex/pkg/core"
	"github.com/florex-io/florex/pkg/simulator"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	orderCount = flag.Int("orders", 100000, "Number of order intents to submit")
	orderRate  = flag.Int("rate", 0, "Submission rate limit in orders per second, 0 for unlimited")
)

// discardSink swallows execution events so the run measures engine latency,
// not sink latency.
type discardSink struct{}

func (discardSink) Publish(context.Context, core.ExecutionEvent) error { return nil }

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	cfg, err := simulator.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load simulator configuration")
	}

	gen := simulator.NewGenerator(cfg)
	engine := core.NewMatchingEngine(cfg.Instruments, func(string) core.BookBackend {
		return memory.NewMemoryBackend()
	}, discardSink{})

	var limiter *rate.Limiter
	if *orderRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(*orderRate), 1)
	}

	// Submit latencies recorded in microseconds, up to one second.
	hist := hdrhistogram.New(1, 1_000_000, 3)

	logger.Info().
		Int("orders", *orderCount).
		Int("rate", *orderRate).
		Strs("instruments", cfg.Instruments).
		Float64("invalid_rate", cfg.InvalidRate).
		Msg("Starting load run")

	var accepted, rejected, trades int
	start := time.Now()

	for i := 0; i < *orderCount; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				logger.Fatal().Err(err).Msg("Rate limiter interrupted")
			}
		}

		intent := gen.Next()

		submitStart := time.Now()
		result, err := engine.Submit(ctx, intent)
		if err != nil {
			logger.Fatal().Err(err).Msg("Submission failed")
		}
		_ = hist.RecordValue(time.Since(submitStart).Microseconds())

		if result.Accepted {
			accepted++
		} else {
			rejected++
		}
		trades += result.Trades
	}

	elapsed := time.Since(start)
	throughput := float64(*orderCount) / elapsed.Seconds()

	logger.Info().
		Int("accepted", accepted).
		Int("rejected", rejected).
		Int("trades", trades).
		Dur("elapsed", elapsed).
		Float64("orders_per_sec", throughput).
		Msg("Load run completed")

	logger.Info().
		Int64("p50_us", hist.ValueAtQuantile(50)).
		Int64("p90_us", hist.ValueAtQuantile(90)).
		Int64("p99_us", hist.ValueAtQuantile(99)).
		Int64("p999_us", hist.ValueAtQuantile(99.9)).
		Int64("max_us", hist.Max()).
		Msg("Submit latency percentiles")
}
