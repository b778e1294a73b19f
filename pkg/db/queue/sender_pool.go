package queue

import (
	"context"

	"github.com/florex-io/florex/pkg/messaging"
)

const maxPoolSize = 32

// senderPool holds idle senders. Senders are created lazily on first use
// rather than up front, so a process that never publishes to Kafka never
// connects to it.
var senderPool = make(chan messaging.MessageSender, maxPoolSize)

// GetSender returns an idle sender from the pool, creating one if the pool
// is empty.
func GetSender() (messaging.MessageSender, error) {
	select {
	case sender := <-senderPool:
		return sender, nil
	default:
		return NewQueueMessageSender()
	}
}

// ReturnSender puts a sender back for reuse, closing it if the pool is full.
func ReturnSender(sender messaging.MessageSender) {
	if sender == nil {
		return
	}

	select {
	case senderPool <- sender:
	default:
		_ = sender.Close()
	}
}

// SendMessage sends one message through a pooled sender.
func SendMessage(ctx context.Context, msg *messaging.ExecutionMessage) error {
	sender, err := GetSender()
	if err != nil {
		return err
	}

	if err := sender.SendExecutionMessage(ctx, msg); err != nil {
		// A failed sender may hold a broken connection; close it instead of
		// returning it to the pool.
		_ = sender.Close()
		return err
	}

	ReturnSender(sender)
	return nil
}
