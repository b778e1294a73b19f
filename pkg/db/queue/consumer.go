package queue

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/florex-io/florex/pkg/messaging"
)

// newConsumer is overridable in tests.
var newConsumer = sarama.NewConsumer

// QueueMessageConsumer reads execution messages back off the Kafka queue.
type QueueMessageConsumer struct {
	consumer sarama.Consumer
}

// NewQueueMessageConsumer creates a consumer connected to the configured
// broker.
func NewQueueMessageConsumer() (*QueueMessageConsumer, error) {
	consumer, err := newConsumer([]string{BrokerList()}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	return &QueueMessageConsumer{consumer: consumer}, nil
}

// ConsumeExecutionMessages reads messages from the execution topic and calls
// the handler for each one, blocking until the partition consumer closes.
// Undecodable payloads are skipped.
func (c *QueueMessageConsumer) ConsumeExecutionMessages(handler func(msg *messaging.ExecutionMessage) error) error {
	partitionConsumer, err := c.consumer.ConsumePartition(Topic(), 0, sarama.OffsetNewest)
	if err != nil {
		return fmt.Errorf("failed to consume partition: %w", err)
	}
	defer partitionConsumer.Close()

	for msg := range partitionConsumer.Messages() {
		var execMsg messaging.ExecutionMessage
		if err := json.Unmarshal(msg.Value, &execMsg); err != nil {
			continue
		}
		if err := handler(&execMsg); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the underlying consumer.
func (c *QueueMessageConsumer) Close() error {
	return c.consumer.Close()
}
