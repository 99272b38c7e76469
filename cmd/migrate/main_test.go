package main

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantCmd string
		wantN   int
		wantErr bool
	}{
		{"up", []string{"up"}, "up", 0, false},
		{"down", []string{"down"}, "down", 0, false},
		{"version", []string{"version"}, "version", 0, false},
		{"steps back", []string{"steps", "-1"}, "steps", -1, false},
		{"force", []string{"force", "1"}, "force", 1, false},
		{"empty", nil, "", 0, true},
		{"unknown", []string{"sideways"}, "", 0, true},
		{"steps zero", []string{"steps", "0"}, "", 0, true},
		{"steps missing count", []string{"steps"}, "", 0, true},
		{"up with extra", []string{"up", "2"}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, n, err := parseCommand(tt.args)
			if tt.wantErr {
				if !errors.Is(err, errUsage) {
					t.Fatalf("error = %v, want usage error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd != tt.wantCmd || n != tt.wantN {
				t.Errorf("got (%s, %d), want (%s, %d)", cmd, n, tt.wantCmd, tt.wantN)
			}
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := newSource()
	if err != nil {
		t.Fatalf("newSource: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if first != 1 {
		t.Errorf("first version = %d, want 1", first)
	}

	up, _, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("ReadUp: %v", err)
	}
	defer up.Close()
	body, err := io.ReadAll(up)
	if err != nil {
		t.Fatalf("read up: %v", err)
	}
	if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS public.records") {
		t.Error("up migration does not create public.records")
	}

	down, _, err := src.ReadDown(first)
	if err != nil {
		t.Fatalf("ReadDown: %v", err)
	}
	down.Close()
}

func TestResolveDSN(t *testing.T) {
	t.Setenv(envDSN, "")
	if got := resolveDSN(""); got != defaultDSN {
		t.Errorf("default = %q", got)
	}

	t.Setenv(envDSN, "postgres://env")
	if got := resolveDSN(""); got != "postgres://env" {
		t.Errorf("env = %q", got)
	}
	if got := resolveDSN("postgres://flag"); got != "postgres://flag" {
		t.Errorf("flag = %q", got)
	}
}

func TestRunUsage(t *testing.T) {
	if err := run(nil, io.Discard); !errors.Is(err, errUsage) {
		t.Errorf("error = %v, want usage error", err)
	}
}
