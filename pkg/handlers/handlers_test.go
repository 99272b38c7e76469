package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/docket/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	handlers.RespondJSON(rec, http.StatusAccepted, map[string]string{"id": "abc"})

	res := rec.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusAccepted {
		t.Errorf("status: got %d, want 202", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type: got %s", ct)
	}

	var parsed map[string]string
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if parsed["id"] != "abc" {
		t.Errorf("id: got %s, want abc", parsed["id"])
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()
		handlers.RespondError(rec, logger, status, errors.New("invalid input"))

		if rec.Code != status {
			t.Errorf("status: got %d, want %d", rec.Code, status)
		}

		var parsed map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if parsed["error"] != "invalid input" {
			t.Errorf("error: got %q, want %q", parsed["error"], "invalid input")
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Stage string `json:"stage"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"stage":"extract"}`))
	got, err := handlers.DecodeJSON[body](req)
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if got.Stage != "extract" {
		t.Errorf("Stage = %s, want extract", got.Stage)
	}

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"stage":"extract","extra":1}`))
	if _, err := handlers.DecodeJSON[body](req); err == nil {
		t.Error("DecodeJSON() expected error for unknown field")
	}
}
