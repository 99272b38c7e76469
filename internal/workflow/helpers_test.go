package workflow_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/internal/workflow"
	"github.com/JaimeStill/docket/pkg/lifecycle"
	"github.com/JaimeStill/docket/pkg/pagination"
	"github.com/JaimeStill/docket/pkg/queue"
	"github.com/JaimeStill/docket/pkg/storage"
)

const testDocumentID = "3f2a9c1e_2026-03-01T08:00:00.000000"

type fakeOracle struct {
	mu        sync.Mutex
	responses map[workflow.Processor][]workflow.Entity
	errs      map[workflow.Processor]error
	calls     []workflow.Processor
}

func (f *fakeOracle) Process(_ context.Context, _ []byte, p workflow.Processor) ([]workflow.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, p)
	if err := f.errs[p]; err != nil {
		return nil, err
	}
	return f.responses[p], nil
}

func (f *fakeOracle) Calls() []workflow.Processor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]workflow.Processor(nil), f.calls...)
}

type fakeGeocoder struct {
	results map[string]string
	err     error
	lookups []string
}

func (f *fakeGeocoder) Lookup(_ context.Context, address string) (string, bool, error) {
	f.lookups = append(f.lookups, address)
	if f.err != nil {
		return "", false, f.err
	}
	formatted, ok := f.results[address]
	return formatted, ok, nil
}

type env struct {
	rt      *workflow.Runtime
	oracle  *fakeOracle
	geo     *fakeGeocoder
	store   *storage.Memory
	queue   *queue.Memory
	records records.System
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := discardLogger()

	containers := storage.Containers{
		Input:      "input",
		Processing: "processing",
		Archive:    "archive",
		Output:     "output",
	}

	qcfg := &queue.Config{Provider: queue.ProviderMemory}
	if err := qcfg.Finalize(nil); err != nil {
		t.Fatalf("queue config: %v", err)
	}
	q := queue.NewMemory(qcfg, logger)

	e := &env{
		oracle: &fakeOracle{
			responses: make(map[workflow.Processor][]workflow.Entity),
			errs:      make(map[workflow.Processor]error),
		},
		geo:     &fakeGeocoder{results: make(map[string]string)},
		store:   storage.NewMemory(containers, logger),
		queue:   q,
		records: records.NewMemory(logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}),
	}

	e.rt = &workflow.Runtime{
		Oracle:      e.oracle,
		Geocoder:    e.geo,
		Records:     e.records,
		Storage:     e.store,
		Queue:       e.queue,
		Containers:  containers,
		QueuePrefix: "docket-",
		Logger:      logger,
	}

	queues := make([]string, 0, 3)
	for _, s := range workflow.StageNames() {
		queues = append(queues, e.rt.QueueName(s))
	}
	if err := q.Start(lifecycle.New(), queues...); err != nil {
		t.Fatalf("queue start: %v", err)
	}

	return e
}

// seedDocument stores an initialized record and its PDF in processing.
func (e *env) seedDocument(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()

	err := e.records.Set(ctx, id, records.Record{
		UniqueFilename:       workflow.DocumentKey(id),
		InitialInputFilename: "scan.pdf",
		Status:               records.StatusInitialized,
	}, false)
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}

	err = e.store.Upload(ctx, "processing", workflow.DocumentKey(id), bytes.NewReader([]byte("%PDF-1.7")), "application/pdf")
	if err != nil {
		t.Fatalf("seed blob: %v", err)
	}
}

func (e *env) record(t *testing.T, id string) *records.Record {
	t.Helper()
	rec, err := e.records.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	return rec
}

func entity(label string, confidence float64) workflow.Entity {
	return workflow.Entity{Label: label, Confidence: confidence}
}

func mention(label, text string, confidence float64) workflow.Entity {
	return workflow.Entity{Label: label, Confidence: confidence, MentionText: &text}
}

func ptr[T any](v T) *T {
	return &v
}
