package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue/queueerror"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

type azure struct {
	client        *azqueue.ServiceClient
	poisonSuffix  string
	maxDeliveries int64
	logger        *slog.Logger
}

func newAzure(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := newServiceClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create queue client: %w", err)
	}

	return &azure{
		client:        client,
		poisonSuffix:  cfg.PoisonSuffix,
		maxDeliveries: cfg.MaxDeliveries,
		logger:        logger,
	}, nil
}

func newServiceClient(cfg *Config) (*azqueue.ServiceClient, error) {
	if cfg.ConnectionString != "" {
		return azqueue.NewServiceClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azqueue.NewServiceClient(cfg.ServiceURL, cred, nil)
}

func (a *azure) Start(lc *lifecycle.Coordinator, queues ...string) error {
	a.logger.Info("starting queue system")

	lc.OnStartup(func() {
		for _, name := range queues {
			for _, q := range []string{name, name + a.poisonSuffix} {
				_, err := a.client.NewQueueClient(q).Create(lc.Context(), nil)
				if err != nil && !queueerror.HasCode(err, queueerror.QueueAlreadyExists) {
					a.logger.Error("queue initialization failed", "queue", q, "error", err)
					continue
				}
				a.logger.Info("queue ready", "queue", q)
			}
		}
	})

	return nil
}

func (a *azure) Publish(ctx context.Context, queue string, body []byte) error {
	if queue == "" {
		return ErrEmptyQueueName
	}

	if _, err := a.client.NewQueueClient(queue).EnqueueMessage(ctx, encode(body), nil); err != nil {
		return fmt.Errorf("enqueue %s: %w", queue, err)
	}
	return nil
}

func (a *azure) Receive(ctx context.Context, queue string, max int32, visibility time.Duration) ([]Message, error) {
	if queue == "" {
		return nil, ErrEmptyQueueName
	}

	opts := &azqueue.DequeueMessagesOptions{
		NumberOfMessages:  to.Ptr(max),
		VisibilityTimeout: to.Ptr(int32(visibility / time.Second)),
	}

	resp, err := a.client.NewQueueClient(queue).DequeueMessages(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("dequeue %s: %w", queue, err)
	}

	msgs := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m == nil || m.MessageID == nil || m.PopReceipt == nil {
			continue
		}

		msg := Message{
			ID:         *m.MessageID,
			PopReceipt: *m.PopReceipt,
		}
		if m.MessageText != nil {
			msg.Body = decode(*m.MessageText)
		}
		if m.DequeueCount != nil {
			msg.DequeueCount = *m.DequeueCount
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}

func (a *azure) Ack(ctx context.Context, queue string, msg Message) error {
	_, err := a.client.NewQueueClient(queue).DeleteMessage(ctx, msg.ID, msg.PopReceipt, nil)
	if err != nil {
		if queueerror.HasCode(err, queueerror.MessageNotFound, queueerror.PopReceiptMismatch) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("delete message %s from %s: %w", msg.ID, queue, err)
	}
	return nil
}

func (a *azure) DeadLetter(ctx context.Context, queue string, msg Message) error {
	if err := a.Publish(ctx, queue+a.poisonSuffix, msg.Body); err != nil {
		return err
	}
	return a.Ack(ctx, queue, msg)
}

func (a *azure) MaxDeliveries() int64 {
	return a.maxDeliveries
}
