package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/florex-io/florex/config"
	"github.com/florex-io/florex/pkg/backend/memory"
	redisbackend "github.com/florex-io/florex/pkg/backend/redis"
	"github.com/florex-io/florex/pkg/core"
	"github.com/florex-io/florex/pkg/db/queue"
	"github.com/florex-io/florex/pkg/ingest"
	"github.com/florex-io/florex/pkg/logging"
	"github.com/florex-io/florex/pkg/messaging"
	"github.com/florex-io/florex/pkg/messaging/kafka"
	"github.com/florex-io/florex/pkg/otel"
	"github.com/florex-io/florex/pkg/report"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Exchange.LogLevel,
		Pretty: cfg.Exchange.LogFormat == logging.FormatPretty,
	})
	ctx := logger.WithContext(context.Background())

	cleanup, err := otel.Init(otel.Config{
		ServiceName:      "florex",
		ServiceVersion:   "1.0.0",
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	defer cleanup()

	sink, closeSinks, err := buildSinks(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up execution sinks")
	}
	defer closeSinks()

	factory, err := buildBackendFactory(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up book storage")
	}

	engine := core.NewMatchingEngine(cfg.Exchange.Instruments, factory, sink)

	src, err := ingest.Open(cfg.Exchange.InputFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open order input")
	}
	defer src.Close()

	logger.Info().
		Str("input", cfg.Exchange.InputFile).
		Str("report", cfg.Exchange.ReportFile).
		Str("backend", cfg.Exchange.Backend).
		Strs("instruments", cfg.Exchange.Instruments).
		Msg("Processing order intents")

	start := time.Now()
	stats, err := ingest.ProcessAll(ctx, src, engine)
	if err != nil {
		logger.Fatal().Err(err).Msg("Order processing aborted")
	}

	logger.Info().
		Int("intents", stats.Intents).
		Int("accepted", stats.Accepted).
		Int("rejected", stats.Rejected).
		Int("trades", stats.Trades).
		Dur("elapsed", time.Since(start)).
		Msg("Order processing completed")

	for _, instrument := range cfg.Exchange.Instruments {
		book, ok := engine.Book(instrument)
		if !ok {
			continue
		}
		bids, _ := book.Depth(core.Buy)
		asks, _ := book.Depth(core.Sell)
		if bids+asks > 0 {
			logger.Info().
				Str("instrument", instrument).
				Int("resting_bids", bids).
				Int("resting_asks", asks).
				Msg("Resting interest at end of run")
		}
	}
}

// buildSinks assembles the execution sink chain: the CSV report always, the
// Kafka feed when enabled.
func buildSinks(cfg *config.Config) (core.ExecutionSink, func(), error) {
	reporter, err := report.Create(cfg.Exchange.ReportFile)
	if err != nil {
		return nil, nil, err
	}

	closers := []func(){func() { _ = reporter.Close() }}
	sinks := []core.ExecutionSink{reporter}

	if cfg.Kafka.Enabled {
		sender, err := buildKafkaSender(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("creating Kafka sender: %w", err)
		}
		closers = append(closers, func() { _ = sender.Close() })
		sinks = append(sinks, messaging.NewSenderSink(sender))
	}

	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if len(sinks) == 1 {
		return sinks[0], closeAll, nil
	}
	return messaging.NewMultiSink(sinks...), closeAll, nil
}

// buildKafkaSender returns the configured Kafka producer implementation. The
// queue sender reuses the broker and topic pushed into the queue package by
// config loading.
func buildKafkaSender(cfg *config.Config) (messaging.MessageSender, error) {
	switch cfg.Kafka.Sender {
	case config.SenderSarama:
		return queue.NewQueueMessageSender()

	case config.SenderKafkaGo:
		return kafka.NewKafkaMessageSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)

	default:
		return nil, fmt.Errorf("unknown kafka sender %q", cfg.Kafka.Sender)
	}
}

// buildBackendFactory returns the per-instrument book storage constructor for
// the configured backend.
func buildBackendFactory(cfg *config.Config) (core.BackendFactory, error) {
	switch cfg.Exchange.Backend {
	case "memory":
		return func(string) core.BookBackend {
			return memory.NewMemoryBackend()
		}, nil

	case "redis":
		redisbackend.SetDefaultRedisOptions(&redisbackend.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		client := redisbackend.GetRedisClient()

		zapLogger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("creating zap logger: %w", err)
		}

		return func(instrument string) core.BookBackend {
			backend := redisbackend.NewRedisBackend(client, "florex:"+instrument, zapLogger)
			// Book state does not survive runs; start from an empty book.
			_ = backend.Flush()
			return backend
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Exchange.Backend)
	}
}
