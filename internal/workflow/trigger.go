package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Trigger is the message body that starts a stage for one document.
// FileName carries the "<id>.pdf" form accepted from older producers.
type Trigger struct {
	DocumentID string    `json:"document_id"`
	Stage      StageName `json:"stage,omitempty"`
	MessageID  string    `json:"message_id,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
}

// NewTrigger creates a trigger for stage with a fresh message identifier.
func NewTrigger(stage StageName, documentID string) Trigger {
	return Trigger{
		DocumentID: documentID,
		Stage:      stage,
		MessageID:  uuid.NewString(),
	}
}

// Encode returns the UTF-8 JSON form of the trigger.
func (t Trigger) Encode() ([]byte, error) {
	return json.Marshal(t)
}

// DecodeTrigger parses a message body. A body that is not JSON or names no
// document yields ErrMalformedTrigger.
func DecodeTrigger(body []byte) (Trigger, error) {
	var t Trigger
	if err := json.Unmarshal(body, &t); err != nil {
		return Trigger{}, fmt.Errorf("%w: %w", ErrMalformedTrigger, err)
	}

	if t.DocumentID == "" {
		if id, ok := strings.CutSuffix(t.FileName, ".pdf"); ok && id != "" {
			t.DocumentID = id
		}
	}

	t.DocumentID = strings.TrimSpace(t.DocumentID)
	if t.DocumentID == "" {
		return Trigger{}, fmt.Errorf("%w: missing document_id", ErrMalformedTrigger)
	}

	return t, nil
}
