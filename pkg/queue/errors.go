package queue

import "errors"

var (
	// ErrEmptyQueueName indicates an operation was attempted without a queue name.
	ErrEmptyQueueName = errors.New("queue name must not be empty")
	// ErrMessageNotFound indicates an acknowledged message is no longer held by the queue.
	ErrMessageNotFound = errors.New("queue message not found")
)
