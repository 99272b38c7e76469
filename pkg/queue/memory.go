package queue

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

type entry struct {
	msg       Message
	visibleAt time.Time
}

// Memory is an in-process queue with visibility timeouts and delivery counts.
// It backs local runs without Azure Storage and the package tests of its consumers.
type Memory struct {
	mu            sync.Mutex
	queues        map[string][]*entry
	poisonSuffix  string
	maxDeliveries int64
	logger        *slog.Logger
	now           func() time.Time
}

// NewMemory creates an empty in-process queue system.
func NewMemory(cfg *Config, logger *slog.Logger) *Memory {
	return &Memory{
		queues:        make(map[string][]*entry),
		poisonSuffix:  cfg.PoisonSuffix,
		maxDeliveries: cfg.MaxDeliveries,
		logger:        logger,
		now:           time.Now,
	}
}

func (m *Memory) Start(lc *lifecycle.Coordinator, queues ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, q := range queues {
		if _, ok := m.queues[q]; !ok {
			m.queues[q] = nil
		}
		if _, ok := m.queues[q+m.poisonSuffix]; !ok {
			m.queues[q+m.poisonSuffix] = nil
		}
	}
	m.logger.Info("memory queues ready", "queues", queues)
	return nil
}

func (m *Memory) Publish(ctx context.Context, queue string, body []byte) error {
	if queue == "" {
		return ErrEmptyQueueName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.queues[queue] = append(m.queues[queue], &entry{
		msg: Message{
			ID:   uuid.NewString(),
			Body: slices.Clone(body),
		},
		visibleAt: m.now(),
	})
	return nil
}

func (m *Memory) Receive(ctx context.Context, queue string, max int32, visibility time.Duration) ([]Message, error) {
	if queue == "" {
		return nil, ErrEmptyQueueName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var out []Message
	for _, e := range m.queues[queue] {
		if int32(len(out)) >= max {
			break
		}
		if e.visibleAt.After(now) {
			continue
		}
		e.msg.DequeueCount++
		e.msg.PopReceipt = uuid.NewString()
		e.visibleAt = now.Add(visibility)
		out = append(out, e.msg)
	}
	return out, nil
}

func (m *Memory) Ack(ctx context.Context, queue string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.queues[queue]
	for i, e := range entries {
		if e.msg.ID == msg.ID && e.msg.PopReceipt == msg.PopReceipt {
			m.queues[queue] = slices.Delete(entries, i, i+1)
			return nil
		}
	}
	return ErrMessageNotFound
}

func (m *Memory) DeadLetter(ctx context.Context, queue string, msg Message) error {
	if err := m.Publish(ctx, queue+m.poisonSuffix, msg.Body); err != nil {
		return err
	}
	return m.Ack(ctx, queue, msg)
}

func (m *Memory) MaxDeliveries() int64 {
	return m.maxDeliveries
}

// Len reports the number of messages held by queue, visible or not.
func (m *Memory) Len(queue string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues[queue])
}

// Peek returns the bodies held by queue in enqueue order without dequeuing.
func (m *Memory) Peek(queue string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]byte, 0, len(m.queues[queue]))
	for _, e := range m.queues[queue] {
		out = append(out, slices.Clone(e.msg.Body))
	}
	return out
}

// SetClock replaces the time source used for visibility timeouts.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}
