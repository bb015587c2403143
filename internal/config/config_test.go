package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not error: %v", err)
	}
	def := Default()
	if cfg.Concurrency != def.Concurrency || cfg.Highlights.TopK != def.Highlights.TopK {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipsight.yaml")
	body := `concurrency: 4
highlights:
  top_k: 2
  min_duration_s: 8
transcription:
  base_url: https://transcribe.example.com
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("concurrency = %d, want 4", cfg.Concurrency)
	}
	if cfg.Highlights.TopK != 2 || cfg.Highlights.MinDurationS != 8 {
		t.Fatalf("highlights not overridden: %+v", cfg.Highlights)
	}
	if cfg.Transcription.BaseURL != "https://transcribe.example.com" {
		t.Fatalf("base url not loaded: %q", cfg.Transcription.BaseURL)
	}
	// Untouched sections keep their defaults.
	if cfg.Highlights.MaxDurationS != 60 || cfg.Audio.SilenceFloor != 0.02 {
		t.Fatalf("defaults lost for untouched fields: %+v", cfg)
	}
}

func TestLoad_RejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipsight.yaml")
	if err := os.WriteFile(path, []byte("concurrency: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipsight.yaml")
	cfg := Default()
	cfg.Concurrency = 7
	cfg.Library.SQLitePath = "/data/patterns.db"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Concurrency != 7 || loaded.Library.SQLitePath != "/data/patterns.db" {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}

func TestAPIKeysNeverSerialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipsight.yaml")
	cfg := Default()
	cfg.Transcription.APIKey = "super-secret"
	cfg.Vision.APIKey = "also-secret"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, secret := range []string{"super-secret", "also-secret"} {
		if strings.Contains(string(b), secret) {
			t.Fatalf("secret %q leaked into config file", secret)
		}
	}
}
