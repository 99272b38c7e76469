// Package queue provides the message channel between pipeline stages,
// backed by Azure Queue Storage or an in-process implementation.
package queue

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

// Message is a received queue message. It stays invisible to other
// consumers until its visibility timeout lapses or it is acknowledged.
type Message struct {
	ID           string
	PopReceipt   string
	Body         []byte
	DequeueCount int64
}

// System publishes and consumes stage trigger messages.
type System interface {
	// Start registers a startup hook that creates the given queues and their poison queues.
	Start(lc *lifecycle.Coordinator, queues ...string) error
	// Publish enqueues body on the named queue.
	Publish(ctx context.Context, queue string, body []byte) error
	// Receive dequeues up to max messages, hiding them for visibility.
	Receive(ctx context.Context, queue string, max int32, visibility time.Duration) ([]Message, error)
	// Ack deletes a processed message.
	Ack(ctx context.Context, queue string, msg Message) error
	// DeadLetter moves a message to the queue's poison queue.
	DeadLetter(ctx context.Context, queue string, msg Message) error
	// MaxDeliveries is the delivery count after which a message is dead-lettered.
	MaxDeliveries() int64
}

// New creates the queue system selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "queue")

	switch cfg.Provider {
	case ProviderMemory:
		return NewMemory(cfg, logger), nil
	case ProviderAzure:
		return newAzure(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported queue provider: %s", cfg.Provider)
	}
}

// Bodies are base64 encoded on the wire so messages interoperate with
// consumers that expect the Azure Functions queue encoding.
func encode(body []byte) string {
	return base64.StdEncoding.EncodeToString(body)
}

// decode accepts both base64 and raw text payloads.
func decode(text string) []byte {
	if data, err := base64.StdEncoding.DecodeString(text); err == nil {
		return data
	}
	return []byte(text)
}
