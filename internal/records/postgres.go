package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/JaimeStill/docket/pkg/pagination"
	"github.com/JaimeStill/docket/pkg/query"
	"github.com/JaimeStill/docket/pkg/repository"
)

const maxUpdateAttempts = 3

// DB is the subset of *pgxpool.Pool used by the PostgreSQL store.
type DB interface {
	repository.Querier
	repository.Executor
	repository.Beginner
}

type repo struct {
	db         DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a PostgreSQL-backed record store implementing the System interface.
func New(db DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "records"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Get(ctx context.Context, id string) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("id", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) Set(ctx context.Context, id string, rec Record, overwrite bool) error {
	doc, err := encodeDocument(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}

	q := `INSERT INTO public.records (id, data) VALUES ($1, $2)`
	if overwrite {
		q += ` ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	}

	if _, err := r.db.Exec(ctx, q, id, data); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Debug("record stored", "id", id, "overwrite", overwrite)
	return nil
}

// Update locks the row and rewrites the stored document in one transaction.
func (r *repo) Update(ctx context.Context, id string, fields Fields) error {
	updates, err := compileFields(fields)
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		err = r.update(ctx, id, updates)
		if !repository.Transient(err) || attempt == maxUpdateAttempts {
			break
		}
		r.logger.Warn("record update aborted, retrying", "id", id, "attempt", attempt, "error", err)
	}

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) update(ctx context.Context, id string, updates []fieldUpdate) error {
	_, err := repository.WithTx(ctx, r.db, func(tx pgx.Tx) (struct{}, error) {
		var data []byte
		if err := tx.QueryRow(
			ctx,
			"SELECT data FROM public.records WHERE id = $1 FOR UPDATE",
			id,
		).Scan(&data); err != nil {
			return struct{}{}, err
		}

		doc := make(map[string]any)
		if err := json.Unmarshal(data, &doc); err != nil {
			return struct{}{}, fmt.Errorf("decode record %s: %w", id, err)
		}

		applyFields(doc, updates)

		out, err := json.Marshal(doc)
		if err != nil {
			return struct{}{}, fmt.Errorf("encode record %s: %w", id, err)
		}

		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"UPDATE public.records SET data = $2, updated_at = now() WHERE id = $1",
			id, out,
		)
	})
	return err
}

func (r *repo) Delete(ctx context.Context, id string) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM public.records WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Debug("record deleted", "id", id)
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "filename", "id")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	recs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	result := pagination.NewPageResult(recs, total, page.Page, page.PageSize)
	return &result, nil
}
