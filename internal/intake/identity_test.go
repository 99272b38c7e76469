package intake_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/JaimeStill/docket/internal/intake"
)

func TestDeriveID(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 123456000, time.UTC)

	id := intake.DeriveID("Zaehlerstand Mai.pdf", now)

	pattern := regexp.MustCompile(`^[0-9a-f]{8}_2026-03-01T08:00:00\.123456$`)
	if !pattern.MatchString(id) {
		t.Errorf("DeriveID = %q, want hash_timestamp form", id)
	}

	if again := intake.DeriveID("Zaehlerstand Mai.pdf", now); again != id {
		t.Errorf("DeriveID not deterministic: %q vs %q", again, id)
	}
	if other := intake.DeriveID("Widerruf.pdf", now); other[:8] == id[:8] {
		t.Errorf("different names share hash prefix %q", other[:8])
	}
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"scan.pdf", true},
		{"SCAN.PDF", true},
		{"scan.Pdf", true},
		{"scan.pdf.txt", false},
		{"scan", false},
		{"scan.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intake.IsPDF(tt.name); got != tt.want {
				t.Errorf("IsPDF(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsProcessedName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"3f2a9c1e_2026-03-01T08:00:00.000000.pdf", true},
		{"3f2a9c1e_2026-03-01T08:00:00.pdf", true},
		{"3f2a9c1e_2026-03-01.pdf", true},
		{"3f2a9c1e_2026-03-01T08:00:00+01:00.pdf", true},
		{"zzzzzzzz_2026-03-01.pdf", false},
		{"3f2a9c1e-2026-03-01.pdf", false},
		{"3f2a9c1e_yesterday.pdf", false},
		{"scan.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intake.IsProcessedName(tt.name); got != tt.want {
				t.Errorf("IsProcessedName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"plain pdf", "scan.pdf", nil},
		{"nested path", "uploads/2026/scan.pdf", nil},
		{"not pdf", "scan.docx", intake.ErrNotPDF},
		{"processed", "3f2a9c1e_2026-03-01T08:00:00.000000.pdf", intake.ErrAlreadyProcessed},
		{"empty", "", intake.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := intake.ValidateName(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
