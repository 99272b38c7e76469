// Package workflow implements the staged document pipeline: two-level
// classification, routed extraction, field aggregation and per-field
// post-processing. Stages never call each other; they communicate through
// the persisted record and trigger messages.
package workflow

import (
	"context"
	"fmt"
	"time"
)

// Handle runs one stage invocation for a trigger message body and, on
// success, hands the document off to the next stage.
func Handle(ctx context.Context, rt *Runtime, name StageName, body []byte) error {
	stage, err := StageFor(name)
	if err != nil {
		return err
	}

	trigger, err := DecodeTrigger(body)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := stage.Run(ctx, rt, trigger.DocumentID); err != nil {
		return err
	}

	rt.Logger.InfoContext(
		ctx, "stage complete",
		"stage", stage.Name,
		"document_id", trigger.DocumentID,
		"duration", time.Since(start),
	)

	if stage.Next == "" {
		return nil
	}

	if _, err := Dispatch(ctx, rt, stage.Next, trigger.DocumentID); err != nil {
		return fmt.Errorf("hand off to %s: %w", stage.Next, err)
	}
	return nil
}

// Dispatch publishes a trigger for stage on the stage's queue.
func Dispatch(ctx context.Context, rt *Runtime, stage StageName, documentID string) (Trigger, error) {
	if _, err := StageFor(stage); err != nil {
		return Trigger{}, err
	}

	trigger := NewTrigger(stage, documentID)
	body, err := trigger.Encode()
	if err != nil {
		return Trigger{}, fmt.Errorf("encode trigger: %w", err)
	}

	if err := rt.Queue.Publish(ctx, rt.QueueName(stage), body); err != nil {
		return Trigger{}, fmt.Errorf("publish %s trigger: %w", stage, err)
	}

	rt.Logger.DebugContext(
		ctx, "stage dispatched",
		"stage", stage,
		"document_id", documentID,
		"message_id", trigger.MessageID,
	)
	return trigger, nil
}
