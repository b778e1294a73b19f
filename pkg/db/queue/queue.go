package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/florex-io/florex/pkg/messaging"
)

var (
	mu         sync.RWMutex
	brokerList = "localhost:9092"
	topic      = "florex-executions"
)

// newSyncProducer is overridable in tests.
var newSyncProducer = sarama.NewSyncProducer

// SetBrokerList overrides the Kafka broker address used by new senders.
func SetBrokerList(addr string) {
	mu.Lock()
	defer mu.Unlock()
	brokerList = addr
}

// SetTopic overrides the Kafka topic used by new senders and consumers.
func SetTopic(t string) {
	mu.Lock()
	defer mu.Unlock()
	topic = t
}

// Topic returns the configured execution topic.
func Topic() string {
	mu.RLock()
	defer mu.RUnlock()
	return topic
}

// BrokerList returns the configured broker address.
func BrokerList() string {
	mu.RLock()
	defer mu.RUnlock()
	return brokerList
}

// QueueMessageSender implements messaging.MessageSender with a sarama sync
// producer.
type QueueMessageSender struct {
	producer sarama.SyncProducer
}

// NewQueueMessageSender creates a sender connected to the configured broker.
func NewQueueMessageSender() (*QueueMessageSender, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true

	producer, err := newSyncProducer([]string{BrokerList()}, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{producer: producer}, nil
}

// SendExecutionMessage sends the execution message to the Kafka queue.
func (q *QueueMessageSender) SendExecutionMessage(ctx context.Context, msg *messaging.ExecutionMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal execution message: %w", err)
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: Topic(),
		Key:   sarama.StringEncoder(msg.OrderID),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := q.producer.SendMessage(producerMsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer.
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueMessageSender implements MessageSender
var _ messaging.MessageSender = (*QueueMessageSender)(nil)
