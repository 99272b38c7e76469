// Package intake assigns document identities and starts the pipeline for
// PDFs arriving in the input container.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/internal/workflow"
	"github.com/JaimeStill/docket/pkg/storage"
)

const pdfMagic = "%PDF-"

// System defines the intake operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Ingest renames an input blob to a new document identity, creates its
	// record, moves it to processing and triggers classification.
	Ingest(ctx context.Context, name string) (*records.Record, error)
	// Upload stores data in the input container under the base of name,
	// then ingests it.
	Upload(ctx context.Context, name string, data []byte) (*records.Record, error)
	// Sweep ingests every eligible PDF in the input container and returns
	// the number ingested.
	Sweep(ctx context.Context) (int, error)
}

type intake struct {
	rt     *workflow.Runtime
	logger *slog.Logger
	now    func() time.Time
}

// New creates an intake system over the pipeline runtime.
func New(rt *workflow.Runtime, logger *slog.Logger) System {
	return &intake{
		rt:     rt,
		logger: logger.With("system", "intake"),
		now:    time.Now,
	}
}

func (i *intake) Handler(maxUploadSize int64) *Handler {
	return NewHandler(i, i.logger, maxUploadSize)
}

func (i *intake) Upload(ctx context.Context, name string, data []byte) (*records.Record, error) {
	name = path.Base(strings.TrimSpace(name))
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte(pdfMagic)) {
		return nil, fmt.Errorf("%w: %s has no PDF header", ErrInvalidFile, name)
	}

	if err := i.rt.Storage.Upload(
		ctx,
		i.rt.Containers.Input,
		name,
		bytes.NewReader(data),
		"application/pdf",
	); err != nil {
		return nil, fmt.Errorf("store upload %s: %w", name, err)
	}

	return i.Ingest(ctx, name)
}

func (i *intake) Ingest(ctx context.Context, name string) (*records.Record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := i.readInput(ctx, name)
	if err != nil {
		return nil, err
	}

	id := DeriveID(name, i.now())
	key := workflow.DocumentKey(id)

	rec := records.Record{
		UniqueFilename:       key,
		InitialInputFilename: name,
		PageCount:            pageCount(i.logger, data),
		Status:               records.StatusInitialized,
	}

	// The record claims the identity before any blob is written under it.
	if err := i.rt.Records.Set(ctx, id, rec, false); err != nil {
		return nil, fmt.Errorf("create record %s: %w", id, err)
	}

	if err := i.rt.Storage.Copy(ctx, i.rt.Containers.Input, name, i.rt.Containers.Processing, key); err != nil {
		i.discard(ctx, id, "")
		return nil, fmt.Errorf("move %s to processing: %w", name, err)
	}

	if _, err := workflow.Dispatch(ctx, i.rt, workflow.StageClassify, id); err != nil {
		i.discard(ctx, id, key)
		return nil, fmt.Errorf("trigger classification for %s: %w", id, err)
	}

	if err := i.rt.Storage.Delete(ctx, i.rt.Containers.Input, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		i.logger.Warn("input blob delete failed after move", "name", name, "error", err)
	}

	i.logger.Info("document ingested", "document_id", id, "filename", name, "page_count", rec.PageCount)

	created, err := i.rt.Records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (i *intake) Sweep(ctx context.Context) (int, error) {
	names, err := i.rt.Storage.List(ctx, i.rt.Containers.Input)
	if err != nil {
		return 0, fmt.Errorf("list input: %w", err)
	}

	ingested := 0
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			i.logger.Debug("skipping input blob", "name", name, "reason", err)
			continue
		}

		if _, err := i.Ingest(ctx, name); err != nil {
			i.logger.Error("ingest failed", "name", name, "error", err)
			continue
		}
		ingested++
	}

	return ingested, nil
}

// discard rolls back a partially ingested document so the input blob can
// be ingested again. key is the processing blob to remove, if one was written.
func (i *intake) discard(ctx context.Context, id, key string) {
	if key != "" {
		if err := i.rt.Storage.Delete(ctx, i.rt.Containers.Processing, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			i.logger.Warn("compensating blob delete failed", "key", key, "error", err)
		}
	}

	if err := i.rt.Records.Delete(ctx, id); err != nil && !errors.Is(err, records.ErrNotFound) {
		i.logger.Error(
			"document left initialized after failed ingest; recover with POST /records/{id}/retry",
			"document_id", id,
			"error", err,
		)
	}
}

func (i *intake) readInput(ctx context.Context, name string) ([]byte, error) {
	r, err := i.rt.Storage.Download(ctx, i.rt.Containers.Input, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read input %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", name, err)
	}
	return data, nil
}

func pageCount(logger *slog.Logger, data []byte) *int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
