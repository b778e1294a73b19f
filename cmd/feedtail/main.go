package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/florex-io/florex/pkg/db/queue"
	"github.com/florex-io/florex/pkg/messaging"
	"github.com/rs/zerolog"
)

var (
	brokerAddr = flag.String("broker", "localhost:9092", "Kafka broker address")
	topic      = flag.String("topic", "florex-executions", "Execution feed topic")
)

var statusColors = map[string]*color.Color{
	"New":         color.New(color.FgCyan),
	"Fill":        color.New(color.FgGreen),
	"PartialFill": color.New(color.FgYellow),
	"Rejected":    color.New(color.FgRed),
}

func main() {
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	queue.SetBrokerList(*brokerAddr)
	queue.SetTopic(*topic)

	consumer, err := queue.NewQueueMessageConsumer()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Kafka")
	}
	defer consumer.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info().Msg("Shutting down")
		consumer.Close()
	}()

	logger.Info().Str("broker", *brokerAddr).Str("topic", *topic).Msg("Tailing execution feed")

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	err = consumer.ConsumeExecutionMessages(func(msg *messaging.ExecutionMessage) error {
		printMessage(w, msg)
		return w.Flush()
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Feed consumption failed")
	}
}

func printMessage(w *tabwriter.Writer, msg *messaging.ExecutionMessage) {
	status := msg.Status
	if c, ok := statusColors[status]; ok {
		status = c.Sprint(status)
	}

	side := "Sell"
	if msg.Side == 1 {
		side = "Buy"
	}

	reason := ""
	if msg.Reason != "" {
		reason = color.New(color.Faint).Sprint(msg.Reason)
	}

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		msg.OrderID, msg.ClientOrderID, msg.Instrument, side, status,
		msg.Quantity, msg.Price, reason)
}
