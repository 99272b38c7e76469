package workflow

import (
	"context"
	"fmt"
	"slices"
)

// StageName identifies a pipeline stage and, through Runtime.QueueName,
// the queue that triggers it.
type StageName string

const (
	StageClassify    StageName = "classify"
	StageExtract     StageName = "extract"
	StagePostProcess StageName = "postprocess"
)

// Stage is one asynchronously triggered unit of work. Next is empty for
// the final stage.
type Stage struct {
	Name StageName
	Next StageName
	Run  func(ctx context.Context, rt *Runtime, documentID string) error
}

var stages = []Stage{
	{Name: StageClassify, Next: StageExtract, Run: Classify},
	{Name: StageExtract, Next: StagePostProcess, Run: Extract},
	{Name: StagePostProcess, Run: PostProcess},
}

// Stages returns the pipeline stages in execution order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// StageNames returns the names of all stages in execution order.
func StageNames() []StageName {
	names := make([]StageName, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}

// StageFor returns the stage named name.
func StageFor(name StageName) (Stage, error) {
	for _, s := range stages {
		if s.Name == name {
			return s, nil
		}
	}
	return Stage{}, fmt.Errorf("%w: %q", ErrUnknownStage, name)
}
