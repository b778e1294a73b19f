package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/florex-io/florex/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withMockProducer routes NewQueueMessageSender to the given mock for the
// duration of the test.
func withMockProducer(t *testing.T, mock *mockProducer) {
	t.Helper()
	original := newSyncProducer
	newSyncProducer = func([]string, *sarama.Config) (sarama.SyncProducer, error) {
		return mock, nil
	}
	t.Cleanup(func() { newSyncProducer = original })
}

func testMessage() *messaging.ExecutionMessage {
	return &messaging.ExecutionMessage{
		OrderID:       "ord1",
		ClientOrderID: "client1",
		Instrument:    "Rose",
		Side:          1,
		Status:        "New",
		Quantity:      "100",
		Price:         "55.5",
	}
}

func TestBrokerAndTopicConfiguration(t *testing.T) {
	originalBroker, originalTopic := BrokerList(), Topic()
	t.Cleanup(func() {
		SetBrokerList(originalBroker)
		SetTopic(originalTopic)
	})

	SetBrokerList("kafka.internal:9092")
	SetTopic("executions-test")

	assert.Equal(t, "kafka.internal:9092", BrokerList())
	assert.Equal(t, "executions-test", Topic())
}

func TestSendExecutionMessage(t *testing.T) {
	mock := &mockProducer{}
	withMockProducer(t, mock)

	sender, err := NewQueueMessageSender()
	require.NoError(t, err)
	defer sender.Close()

	require.NoError(t, sender.SendExecutionMessage(context.Background(), testMessage()))
	require.Len(t, mock.sentMessages, 1)

	sent := mock.sentMessages[0]
	assert.Equal(t, Topic(), sent.Topic)

	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "ord1", string(key))

	value, err := sent.Value.Encode()
	require.NoError(t, err)

	var decoded messaging.ExecutionMessage
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, "Rose", decoded.Instrument)
	assert.Equal(t, "55.5", decoded.Price)
}

func TestSendExecutionMessageProducerFailure(t *testing.T) {
	sendErr := errors.New("broker unreachable")
	withMockProducer(t, &mockProducer{sendErr: sendErr})

	sender, err := NewQueueMessageSender()
	require.NoError(t, err)
	defer sender.Close()

	err = sender.SendExecutionMessage(context.Background(), testMessage())
	assert.ErrorIs(t, err, sendErr)
}

// drainSenderPool empties the pool so a test starts with senders backed by
// its own mock.
func drainSenderPool() {
	for {
		select {
		case sender := <-senderPool:
			_ = sender.Close()
		default:
			return
		}
	}
}

func TestSenderPoolReusesReturnedSender(t *testing.T) {
	drainSenderPool()
	mock := &mockProducer{}
	withMockProducer(t, mock)

	sender, err := GetSender()
	require.NoError(t, err)
	ReturnSender(sender)

	again, err := GetSender()
	require.NoError(t, err)
	assert.Same(t, sender, again)
	ReturnSender(again)
}

func TestSenderPoolSendMessage(t *testing.T) {
	drainSenderPool()
	mock := &mockProducer{}
	withMockProducer(t, mock)

	require.NoError(t, SendMessage(context.Background(), testMessage()))
	assert.Len(t, mock.sentMessages, 1)
}
