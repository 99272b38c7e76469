package workflow_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/docket/internal/workflow"
	"github.com/JaimeStill/docket/pkg/routes"
)

func TestHandlerRetry(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantQueued string
	}{
		{"republishes extract", "/records/" + testDocumentID + "/retry", `{"stage":"extract"}`, http.StatusAccepted, "docket-extract"},
		{"unknown stage", "/records/" + testDocumentID + "/retry", `{"stage":"export"}`, http.StatusBadRequest, ""},
		{"missing stage", "/records/" + testDocumentID + "/retry", `{}`, http.StatusBadRequest, ""},
		{"unknown record", "/records/missing/retry", `{"stage":"classify"}`, http.StatusNotFound, ""},
		{"invalid body", "/records/" + testDocumentID + "/retry", `{"stage":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.seedDocument(t, testDocumentID)

			mux := http.NewServeMux()
			routes.Register(mux, workflow.NewHandler(e.rt).Routes())

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantQueued == "" {
				for _, name := range workflow.StageNames() {
					if n := e.queue.Len(e.rt.QueueName(name)); n != 0 {
						t.Errorf("queue %s has %d messages, want 0", name, n)
					}
				}
				return
			}

			var trigger workflow.Trigger
			if err := json.NewDecoder(rec.Body).Decode(&trigger); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if trigger.DocumentID != testDocumentID || trigger.MessageID == "" {
				t.Errorf("trigger = %+v", trigger)
			}

			bodies := e.queue.Peek(tt.wantQueued)
			if len(bodies) != 1 {
				t.Fatalf("queue %s has %d messages, want 1", tt.wantQueued, len(bodies))
			}
			queued, err := workflow.DecodeTrigger(bodies[0])
			if err != nil || queued != trigger {
				t.Errorf("queued = (%+v, %v), want %+v", queued, err, trigger)
			}
		})
	}
}
