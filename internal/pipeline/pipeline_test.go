package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ddudnik/clipsight/internal/config"
)

func validConfig() *config.Config {
	cfg := config.Default()
	cfg.Transcription.BaseURL = "https://transcribe.example.com"
	cfg.Vision.BaseURL = "https://vision.example.com"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults with urls", func(c *config.Config) {}, ""},
		{"zero concurrency", func(c *config.Config) { c.Concurrency = 0 }, "concurrency"},
		{"inverted durations", func(c *config.Config) {
			c.Highlights.MinDurationS = 30
			c.Highlights.MaxDurationS = 10
		}, "highlight durations"},
		{"missing transcription url", func(c *config.Config) { c.Transcription.BaseURL = "" }, "transcription base URL is required"},
		{"missing vision url", func(c *config.Config) { c.Vision.BaseURL = "" }, "vision base URL is required"},
		{"http vision url", func(c *config.Config) { c.Vision.BaseURL = "http://vision.example.com" }, "https is required"},
		{"loopback http ok", func(c *config.Config) {
			c.Transcription.BaseURL = "http://127.0.0.1:9000"
			c.Vision.BaseURL = "http://localhost:9001"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	body := `videos:
  - video_id: abc
    input: /videos/a.mp4
    out_dir: /out/abc
  - input: /videos/b.mp4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write jobs: %v", err)
	}

	jobs, err := LoadJobs(path)
	if err != nil {
		t.Fatalf("load jobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].VideoID != "abc" || jobs[0].InputMP4 != "/videos/a.mp4" || jobs[0].OutDir != "/out/abc" {
		t.Fatalf("unexpected job: %+v", jobs[0])
	}
	if jobs[1].VideoID == "" {
		t.Fatalf("missing id must be derived from the input path")
	}
	if jobs[1].VideoID != hash("/videos/b.mp4") {
		t.Fatalf("derived id mismatch: %s", jobs[1].VideoID)
	}
}

func TestLoadJobs_MissingFile(t *testing.T) {
	if _, err := LoadJobs("no-such.yaml"); err == nil || !strings.Contains(err.Error(), "read job list") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestLoadJobs_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte("videos: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadJobs(path); err == nil || !strings.Contains(err.Error(), "parse job list") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestHash_StableAndShort(t *testing.T) {
	a, b := hash("/videos/a.mp4"), hash("/videos/a.mp4")
	if a != b {
		t.Fatalf("hash must be deterministic")
	}
	if len(a) != 12 {
		t.Fatalf("hash length = %d, want 12", len(a))
	}
	if hash("/videos/b.mp4") == a {
		t.Fatalf("distinct inputs should not collide")
	}
}
