// Package worker consumes stage trigger queues and runs the pipeline stages
// they address, acknowledging, retrying or dead-lettering each message.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/docket/internal/workflow"
	"github.com/JaimeStill/docket/pkg/lifecycle"
	"github.com/JaimeStill/docket/pkg/queue"
)

// Outcome is the disposition of a processed message.
type Outcome string

const (
	OutcomeAcked        Outcome = "acked"
	OutcomeRetry        Outcome = "retry"
	OutcomeDeadLettered Outcome = "dead_lettered"
)

// Sweeper ingests documents waiting in the input container.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Pool runs one polling loop per configured stage.
type Pool struct {
	rt      *workflow.Runtime
	cfg     *Config
	sweeper Sweeper
	logger  *slog.Logger
}

// New creates a Pool. sweeper may be nil when no input sweep is wanted.
func New(rt *workflow.Runtime, cfg *Config, sweeper Sweeper, logger *slog.Logger) *Pool {
	return &Pool{
		rt:      rt,
		cfg:     cfg,
		sweeper: sweeper,
		logger:  logger.With("system", "worker"),
	}
}

// Queues returns every stage queue name, consumed here or not, so the
// queue system can create them all.
func (p *Pool) Queues() []string {
	names := workflow.StageNames()
	out := make([]string, len(names))
	for i, s := range names {
		out[i] = p.rt.QueueName(s)
	}
	return out
}

// Start registers the stage loops and the optional intake sweep with the
// lifecycle coordinator.
func (p *Pool) Start(lc *lifecycle.Coordinator) error {
	for _, stage := range p.cfg.StageNames() {
		lc.Run(func(ctx context.Context) {
			p.consume(ctx, stage)
		})
	}

	if interval := p.cfg.IntakeIntervalDuration(); p.sweeper != nil && interval > 0 {
		lc.Run(func(ctx context.Context) {
			p.sweep(ctx, interval)
		})
	}

	p.logger.Info(
		"worker pool registered",
		"stages", p.cfg.Stages,
		"concurrency", p.cfg.Concurrency,
	)
	return nil
}

// Poll receives one batch from the stage queue, processes it with bounded
// concurrency and returns the number of messages received.
func (p *Pool) Poll(ctx context.Context, stage workflow.StageName) (int, error) {
	name := p.rt.QueueName(stage)

	msgs, err := p.rt.Queue.Receive(ctx, name, p.cfg.BatchSize, p.cfg.VisibilityTimeoutDuration())
	if err != nil {
		return 0, err
	}

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)

	for _, msg := range msgs {
		g.Go(func() error {
			p.Process(ctx, stage, msg)
			return nil
		})
	}

	g.Wait()
	return len(msgs), nil
}

// Process runs the stage for one message and settles it on the queue.
// A failed message is left invisible for redelivery unless its error is
// unrecoverable or it has used up its deliveries.
func (p *Pool) Process(ctx context.Context, stage workflow.StageName, msg queue.Message) Outcome {
	name := p.rt.QueueName(stage)
	logger := p.logger.With("stage", stage, "message_id", msg.ID, "dequeue_count", msg.DequeueCount)

	err := workflow.Handle(ctx, p.rt, stage, msg.Body)
	if err == nil {
		if ackErr := p.rt.Queue.Ack(ctx, name, msg); ackErr != nil {
			logger.Warn("ack failed", "error", ackErr)
		}
		return OutcomeAcked
	}

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Info("stage interrupted by shutdown", "error", err)
		return OutcomeRetry
	}

	if workflow.Unrecoverable(err) || msg.DequeueCount >= p.rt.Queue.MaxDeliveries() {
		logger.Error("stage failed, dead-lettering", "error", err)
		if dlErr := p.rt.Queue.DeadLetter(ctx, name, msg); dlErr != nil {
			logger.Error("dead-letter failed", "error", dlErr)
		}
		return OutcomeDeadLettered
	}

	logger.Warn("stage failed, awaiting redelivery", "error", err)
	return OutcomeRetry
}

func (p *Pool) consume(ctx context.Context, stage workflow.StageName) {
	logger := p.logger.With("stage", stage)
	logger.Info("consumer started", "queue", p.rt.QueueName(stage))

	ticker := time.NewTicker(p.cfg.PollIntervalDuration())
	defer ticker.Stop()

	for {
		n, err := p.Poll(ctx, stage)
		if err != nil && ctx.Err() == nil {
			logger.Error("receive failed", "error", err)
		}

		// A full batch suggests a backlog; poll again without waiting.
		if err == nil && int32(n) == p.cfg.BatchSize {
			if ctx.Err() != nil {
				break
			}
			continue
		}

		select {
		case <-ctx.Done():
			logger.Info("consumer stopped")
			return
		case <-ticker.C:
		}
	}

	logger.Info("consumer stopped")
}

func (p *Pool) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := p.sweeper.Sweep(ctx)
		if err != nil && ctx.Err() == nil {
			p.logger.Error("input sweep failed", "error", err)
		} else if n > 0 {
			p.logger.Info("input sweep complete", "ingested", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
