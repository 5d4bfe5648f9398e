package analyser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreLoadMissingFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "cli-patterns.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if _, ok := s.Get("claude"); ok {
		t.Error("expected empty store to have no entries")
	}
}

func TestStorePutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli-patterns.json")
	s := NewStore(path)

	pattern := CliPattern{Name: "claude", Version: "1.0.0", Family: FamilyAnthropic, Success: true, Timestamp: time.Now()}
	if err := s.Put("claude", pattern); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	got, ok := reloaded.Get("claude")
	if !ok {
		t.Fatal("expected claude pattern to round-trip")
	}
	if got.Version != "1.0.0" || got.Family != FamilyAnthropic {
		t.Errorf("roundtripped pattern = %+v, want version 1.0.0 family anthropic", got)
	}
}

func TestStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli-patterns.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() on corrupt file should not error: %v", err)
	}
	if _, ok := s.Get("claude"); ok {
		t.Error("expected corrupt file to yield an empty store")
	}
}

func TestIsFresh(t *testing.T) {
	tests := []struct {
		name    string
		pattern CliPattern
		version string
		want    bool
	}{
		{
			name:    "fresh, matching version",
			pattern: CliPattern{Version: "1.0.0", Timestamp: time.Now()},
			version: "1.0.0",
			want:    true,
		},
		{
			name:    "stale version",
			pattern: CliPattern{Version: "1.0.0", Timestamp: time.Now()},
			version: "2.0.0",
			want:    false,
		},
		{
			name:    "expired TTL",
			pattern: CliPattern{Version: "1.0.0", Timestamp: time.Now().Add(-25 * time.Hour)},
			version: "1.0.0",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFresh(tt.pattern, tt.version); got != tt.want {
				t.Errorf("IsFresh() = %v, want %v", got, tt.want)
			}
		})
	}
}
