package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/florex-io/florex/pkg/messaging"
	"github.com/segmentio/kafka-go"
)

// KafkaMessageSender implements messaging.MessageSender using Kafka
type KafkaMessageSender struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaMessageSender creates a new Kafka message sender
func NewKafkaMessageSender(brokerAddr, topic string) (*KafkaMessageSender, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaMessageSender{
		writer: writer,
		topic:  topic,
	}, nil
}

// SendExecutionMessage sends an execution message to Kafka, keyed by order ID
// so one order's events land on the same partition in order.
func (k *KafkaMessageSender) SendExecutionMessage(ctx context.Context, msg *messaging.ExecutionMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal execution message: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.OrderID),
		Value: data,
		Time:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer
func (k *KafkaMessageSender) Close() error {
	return k.writer.Close()
}

// Ensure KafkaMessageSender implements MessageSender
var _ messaging.MessageSender = (*KafkaMessageSender)(nil)
