package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/docket/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestServePrefixStripping(t *testing.T) {
	mux := http.NewServeMux()

	var received []string
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		received = append(received, r.URL.Path)
	})

	m := module.New("/api", mux)

	var middlewareCalls int
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middlewareCalls++
			next.ServeHTTP(w, r)
		})
	})

	for _, path := range []string{"/api/records", "/api"} {
		m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	if len(received) != 2 || received[0] != "/records" || received[1] != "/" {
		t.Errorf("inner paths: got %v, want [/records /]", received)
	}
	if middlewareCalls != 2 {
		t.Errorf("middleware calls: got %d, want 2", middlewareCalls)
	}
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /records", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api"))
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", apiMux))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"module", "/api/records", http.StatusOK, "api"},
		{"trailing slash", "/api/records/", http.StatusOK, "api"},
		{"native fallback", "/healthz", http.StatusOK, "ok"},
		{"unknown", "/nope", http.StatusNotFound, "404 page not found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if body := rec.Body.String(); body != tt.wantBody {
				t.Errorf("body: got %q, want %q", body, tt.wantBody)
			}
		})
	}
}
