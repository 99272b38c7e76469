package workflow

// Entity is a labeled, confidence-scored result from the Oracle.
// MentionText is nil for pure classification entities.
type Entity struct {
	Label       string
	Confidence  float64
	MentionText *string
}

// Resolve returns the entity with the highest confidence. Ties go to the
// first entity in input order.
func Resolve(entities []Entity) (Entity, error) {
	if len(entities) == 0 {
		return Entity{}, ErrNoEntities
	}

	best := entities[0]
	for _, e := range entities[1:] {
		if e.Confidence > best.Confidence {
			best = e
		}
	}
	return best, nil
}
