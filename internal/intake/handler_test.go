package intake_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/docket/internal/records"
	"github.com/JaimeStill/docket/pkg/routes"
)

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHandlerUpload(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		data       []byte
		maxSize    int64
		wantStatus int
	}{
		{"accepted", "scan.pdf", testPDF, 1 << 20, http.StatusAccepted},
		{"not pdf", "scan.txt", testPDF, 1 << 20, http.StatusUnsupportedMediaType},
		{"bad header", "scan.pdf", []byte("plain text"), 1 << 20, http.StatusBadRequest},
		{"too large", "scan.pdf", bytes.Repeat([]byte("x"), 4096), 512, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			mux := http.NewServeMux()
			routes.Register(mux, e.sys.Handler(tt.maxSize).Routes())

			body, contentType := multipartBody(t, tt.filename, tt.data)
			req := httptest.NewRequest("POST", "/documents", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusAccepted {
				return
			}

			var got records.Record
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Status != records.StatusInitialized || got.InitialInputFilename != tt.filename {
				t.Errorf("record = %+v", got)
			}
		})
	}
}

func TestHandlerIngest(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"existing blob", `{"name":"scan.pdf"}`, http.StatusAccepted},
		{"missing blob", `{"name":"absent.pdf"}`, http.StatusNotFound},
		{"processed name", `{"name":"3f2a9c1e_2026-03-01.pdf"}`, http.StatusConflict},
		{"empty name", `{}`, http.StatusBadRequest},
		{"invalid body", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.put(t, "scan.pdf", testPDF)
			e.put(t, "3f2a9c1e_2026-03-01.pdf", testPDF)

			mux := http.NewServeMux()
			routes.Register(mux, e.sys.Handler(1<<20).Routes())

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("POST", "/documents/ingest", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}
