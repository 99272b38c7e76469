package records

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/docket/pkg/pagination"
	"github.com/JaimeStill/docket/pkg/query"
)

type entry struct {
	data      []byte
	createdAt time.Time
	updatedAt time.Time
}

type memory struct {
	mu         sync.Mutex
	entries    map[string]*entry
	now        func() time.Time
	logger     *slog.Logger
	pagination pagination.Config
}

// NewMemory creates an in-process record store. Records are held as JSON
// documents so reads never share state with callers.
func NewMemory(logger *slog.Logger, pagination pagination.Config) System {
	return &memory{
		entries:    make(map[string]*entry),
		now:        time.Now,
		logger:     logger.With("system", "records"),
		pagination: pagination,
	}
}

func (m *memory) Handler() *Handler {
	return NewHandler(m, m.logger, m.pagination)
}

func (m *memory) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}

	rec, err := decodeDocument(id, e.data, e.createdAt, e.updatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *memory) Set(ctx context.Context, id string, rec Record, overwrite bool) error {
	doc, err := encodeDocument(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[id]; ok {
		if !overwrite {
			return ErrDuplicate
		}
		e.data = data
		e.updatedAt = now
		return nil
	}

	m.entries[id] = &entry{data: data, createdAt: now, updatedAt: now}
	return nil
}

func (m *memory) Update(ctx context.Context, id string, fields Fields) error {
	updates, err := compileFields(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return ErrNotFound
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(e.data, &doc); err != nil {
		return fmt.Errorf("decode record %s: %w", id, err)
	}

	applyFields(doc, updates)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", id, err)
	}

	e.data = data
	e.updatedAt = m.now()
	return nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memory) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(m.pagination)

	m.mu.Lock()
	matched := make([]Record, 0, len(m.entries))
	for id, e := range m.entries {
		rec, err := decodeDocument(id, e.data, e.createdAt, e.updatedAt)
		if err != nil {
			m.mu.Unlock()
			return nil, err
		}
		if !filters.Match(rec) || !matchSearch(rec, page.Search) {
			continue
		}
		matched = append(matched, rec)
	}
	m.mu.Unlock()

	sortFields := []query.SortField(page.Sort)
	if len(sortFields) == 0 {
		sortFields = []query.SortField{defaultSort}
	}
	slices.SortStableFunc(matched, func(a, b Record) int {
		for _, f := range sortFields {
			c := compareField(a, b, f.Field)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)

	result := pagination.NewPageResult(matched[start:end], total, page.Page, page.PageSize)
	return &result, nil
}

func matchSearch(rec Record, search *string) bool {
	if search == nil || *search == "" {
		return true
	}
	term := strings.ToLower(*search)
	return strings.Contains(strings.ToLower(rec.InitialInputFilename), term) ||
		strings.Contains(strings.ToLower(rec.ID), term)
}

// compareField orders records by the same view names the SQL projection maps.
// Unmapped names compare equal.
func compareField(a, b Record, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "status":
		return cmp.Compare(a.Status, b.Status)
	case "filename":
		return cmp.Compare(a.InitialInputFilename, b.InitialInputFilename)
	case "intent":
		return cmp.Compare(intentOf(a), intentOf(b))
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

func intentOf(rec Record) string {
	if rec.ClassificationResult == nil {
		return ""
	}
	return rec.ClassificationResult.Intent.Value
}
