package api

import (
	"fmt"

	"github.com/JaimeStill/docket/internal/config"
	"github.com/JaimeStill/docket/internal/intake"
	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/internal/worker"
	"github.com/JaimeStill/docket/internal/workflow"
	"github.com/JaimeStill/docket/pkg/docai"
)

// Domain holds all domain systems that comprise the API and the pipeline.
type Domain struct {
	Records  records.System
	Pipeline *workflow.Runtime
	Intake   intake.System
	Worker   *worker.Pool
}

// NewDomain creates all domain systems from the API runtime. Every processor
// the routing table can select must resolve through the oracle config.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	if err := validateProcessors(&cfg.Oracle); err != nil {
		return nil, err
	}

	var recordsSystem records.System
	if runtime.Database != nil {
		recordsSystem = records.New(runtime.Database.Pool(), runtime.Logger, runtime.Pagination)
	} else {
		recordsSystem = records.NewMemory(runtime.Logger, runtime.Pagination)
	}

	pipeline := &workflow.Runtime{
		Oracle:      workflow.NewDocAIOracle(runtime.Oracle),
		Geocoder:    runtime.Geocoder,
		Records:     recordsSystem,
		Storage:     runtime.Storage,
		Queue:       runtime.Queue,
		Containers:  cfg.Storage.Containers,
		QueuePrefix: cfg.Pipeline.QueuePrefix,
		Logger:      runtime.Logger.With("system", "workflow"),
	}

	intakeSystem := intake.New(pipeline, runtime.Logger)

	return &Domain{
		Records:  recordsSystem,
		Pipeline: pipeline,
		Intake:   intakeSystem,
		Worker:   worker.New(pipeline, &cfg.Pipeline, intakeSystem, runtime.Logger),
	}, nil
}

func validateProcessors(cfg *docai.Config) error {
	for _, p := range workflow.Processors() {
		if _, err := cfg.ResourceName(string(p)); err != nil {
			return fmt.Errorf("oracle: %w", err)
		}
	}
	return nil
}
