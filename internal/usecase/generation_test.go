package usecase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ddudnik/clipsight/internal/types"
)

func TestWriteGeneration_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := types.AnalysisResult{
		VideoID:      "v1",
		Generation:   "gen-1",
		DurationS:    45,
		Highlights:   []types.HighlightCandidate{{StartS: 7, EndS: 17, Score: 0.9}},
		CreatedAtUTC: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := writeGeneration(dir, res); err != nil {
		t.Fatalf("write generation: %v", err)
	}
	if !HasGeneration(dir) {
		t.Fatalf("generation not visible after commit")
	}

	loaded, err := LoadGeneration(dir)
	if err != nil {
		t.Fatalf("load generation: %v", err)
	}
	if loaded.VideoID != "v1" || loaded.Generation != "gen-1" || len(loaded.Highlights) != 1 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if !loaded.CreatedAtUTC.Equal(res.CreatedAtUTC) {
		t.Fatalf("timestamp mismatch: %v", loaded.CreatedAtUTC)
	}
}

func TestWriteGeneration_LeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := writeGeneration(dir, types.AnalysisResult{VideoID: "v1"}); err != nil {
		t.Fatalf("write generation: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 || entries[0].Name() != generationFile {
		t.Fatalf("expected only %s, got %v", generationFile, entries)
	}
}

func TestWriteGeneration_Overwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	for _, gen := range []string{"gen-1", "gen-2"} {
		if err := writeGeneration(dir, types.AnalysisResult{VideoID: "v1", Generation: gen}); err != nil {
			t.Fatalf("write %s: %v", gen, err)
		}
	}
	loaded, err := LoadGeneration(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Generation != "gen-2" {
		t.Fatalf("expected the newer generation, got %s", loaded.Generation)
	}
}

func TestHasGeneration_Missing(t *testing.T) {
	if HasGeneration(filepath.Join(t.TempDir(), "empty")) {
		t.Fatalf("missing generation reported as present")
	}
}
