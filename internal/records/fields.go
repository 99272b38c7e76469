package records

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

var segmentPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Keys owned by the store rather than the stored document.
var managedKeys = []string{"id", "created_at", "updated_at"}

type fieldUpdate struct {
	path  []string
	value any
}

// compileFields validates every path and normalizes values to their JSON
// form. Paths are applied in lexical order so a parent section is written
// before any of its children.
func compileFields(fields Fields) ([]fieldUpdate, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	updates := make([]fieldUpdate, 0, len(keys))
	for _, key := range keys {
		path := strings.Split(key, ".")
		for _, seg := range path {
			if !segmentPattern.MatchString(seg) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPath, key)
			}
		}
		if slices.Contains(managedKeys, path[0]) {
			return nil, fmt.Errorf("%w: %q is managed by the store", ErrInvalidPath, key)
		}

		value, err := normalize(fields[key])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		updates = append(updates, fieldUpdate{path: path, value: value})
	}
	return updates, nil
}

// applyFields writes each update into doc, creating missing parent objects.
func applyFields(doc map[string]any, updates []fieldUpdate) {
	for _, u := range updates {
		node := doc
		for _, seg := range u.path[:len(u.path)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[u.path[len(u.path)-1]] = u.value
	}
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// encodeDocument returns the stored JSON document for rec, without the
// store-managed keys.
func encodeDocument(rec Record) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for _, k := range managedKeys {
		delete(doc, k)
	}
	return doc, nil
}

func decodeDocument(id string, data []byte, createdAt, updatedAt time.Time) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	rec.ID = id
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt
	return rec, nil
}
