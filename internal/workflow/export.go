package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/pkg/storage"
)

// Export writes the final record as JSON to the output container and moves
// the document PDF from processing to archive. A retry after the PDF was
// already archived skips the move.
func Export(ctx context.Context, rt *Runtime, documentID string) error {
	rec, err := rt.Records.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	rec.Status = records.StatusExported

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode record: %w", ErrExportFailed, err)
	}

	if err := rt.Storage.Upload(
		ctx,
		rt.Containers.Output,
		ExportKey(documentID),
		bytes.NewReader(data),
		"application/json",
	); err != nil {
		return fmt.Errorf("%w: upload export: %w", ErrExportFailed, err)
	}

	if err := archiveDocument(ctx, rt, documentID); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	if err := rt.Records.Update(ctx, documentID, records.Fields{"status": records.StatusExported}); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}

	rt.Logger.InfoContext(
		ctx, "document exported",
		"document_id", documentID,
		"container", rt.Containers.Output,
		"key", ExportKey(documentID),
	)

	return nil
}

func archiveDocument(ctx context.Context, rt *Runtime, documentID string) error {
	key := DocumentKey(documentID)

	err := rt.Storage.Copy(ctx, rt.Containers.Processing, key, rt.Containers.Archive, key)
	if errors.Is(err, storage.ErrNotFound) {
		archived, existsErr := rt.Storage.Exists(ctx, rt.Containers.Archive, key)
		if existsErr != nil {
			return fmt.Errorf("check archive: %w", existsErr)
		}
		if archived {
			rt.Logger.InfoContext(ctx, "document already archived", "document_id", documentID)
			return nil
		}
		return fmt.Errorf("%w: %s/%s", ErrDocumentNotFound, rt.Containers.Processing, key)
	}
	if err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}

	if err := rt.Storage.Delete(ctx, rt.Containers.Processing, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("remove %s from processing: %w", key, err)
	}

	return nil
}
