package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ddudnik/clipsight/internal/types"
)

const generationFile = "generation.json"

// writeGeneration commits a full analysis generation atomically: the JSON is
// written to a temp file and renamed into place, so a crash mid-write never
// leaves a partial generation visible.
func writeGeneration(outDir string, res types.AnalysisResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal generation: %w", err)
	}

	tmp, err := os.CreateTemp(outDir, generationFile+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(outDir, generationFile)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// LoadGeneration reads a committed generation back, e.g. for the learner or
// for match-only reruns.
func LoadGeneration(outDir string) (types.AnalysisResult, error) {
	b, err := os.ReadFile(filepath.Join(outDir, generationFile))
	if err != nil {
		return types.AnalysisResult{}, err
	}
	var res types.AnalysisResult
	if err := json.Unmarshal(b, &res); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("decode generation: %w", err)
	}
	return res, nil
}

// HasGeneration reports whether a committed generation already exists, which
// makes the video skippable in batch mode.
func HasGeneration(outDir string) bool {
	_, err := os.Stat(filepath.Join(outDir, generationFile))
	return err == nil
}
