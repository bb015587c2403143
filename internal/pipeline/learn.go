package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ddudnik/clipsight/internal/batch"
	"github.com/ddudnik/clipsight/internal/config"
	"github.com/ddudnik/clipsight/internal/domain/patterns"
	"github.com/ddudnik/clipsight/internal/logging"
	"github.com/ddudnik/clipsight/internal/ports/adapters/sqlite"
	"github.com/ddudnik/clipsight/internal/usecase"
	"gopkg.in/yaml.v3"
)

// jobList is the batch driver's input file.
type jobList struct {
	Videos []struct {
		VideoID string `yaml:"video_id"`
		Input   string `yaml:"input"`
		OutDir  string `yaml:"out_dir"`
	} `yaml:"videos"`
}

// LoadJobs parses a batch job list. Videos without an explicit id get one
// derived from the input path.
func LoadJobs(path string) ([]batch.Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job list: %w", err)
	}
	var list jobList
	if err := yaml.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parse job list %s: %w", path, err)
	}

	jobs := make([]batch.Job, 0, len(list.Videos))
	for _, v := range list.Videos {
		id := v.VideoID
		if id == "" {
			id = hash(v.Input)
		}
		jobs = append(jobs, batch.Job{VideoID: id, InputMP4: v.Input, OutDir: v.OutDir})
	}
	return jobs, nil
}

// labelsFile pairs analyzed videos with their known performance.
type labelsFile struct {
	Labels []struct {
		VideoID     string  `yaml:"video_id"`
		OutDir      string  `yaml:"out_dir"`
		FateScore   float64 `yaml:"fate_score"`
		Retention3s float64 `yaml:"retention_3s"`
	} `yaml:"labels"`
}

// RunLearn aggregates a labeled batch of committed generations into new or
// updated viral patterns. The single-writer discipline holds because learning
// is one process; concurrent matchers read snapshots.
func RunLearn(ctx context.Context, app *config.Config, labelsPath string) error {
	log := logging.WithComponent("learner")

	b, err := os.ReadFile(labelsPath)
	if err != nil {
		return fmt.Errorf("read labels: %w", err)
	}
	var lf labelsFile
	if err := yaml.Unmarshal(b, &lf); err != nil {
		return fmt.Errorf("parse labels %s: %w", labelsPath, err)
	}

	var labeled []patterns.LabeledVideo
	for _, l := range lf.Labels {
		outDir := l.OutDir
		if outDir == "" {
			outDir = filepath.Join(app.OutDir, l.VideoID)
		}
		res, err := usecase.LoadGeneration(outDir)
		if err != nil {
			log.Warn().Str("video_id", l.VideoID).Err(err).Msg("no committed generation, skipping label")
			continue
		}
		profile := patterns.BuildProfile(res.VideoID, res.Words, res.Segments, res.Frames, res.Pacing)
		labeled = append(labeled, patterns.LabeledVideo{
			Profile:     profile,
			FateScore:   l.FateScore,
			Retention3s: l.Retention3s,
		})
	}
	if len(labeled) == 0 {
		log.Info().Msg("nothing to learn from")
		return nil
	}

	store, err := sqlite.Open(app.Library.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, err := store.GetAll(ctx)
	if err != nil {
		return err
	}

	cfg := patterns.LearnConfig{
		MinGroupSize: app.Patterns.MinGroupSize,
		MinAvgFate:   app.Patterns.MinAvgFate,
	}
	updates := patterns.Learn(labeled, existing, cfg)
	for i := range updates {
		if err := store.Upsert(ctx, &updates[i]); err != nil {
			return err
		}
	}
	log.Info().
		Int("labeled_videos", len(labeled)).
		Int("patterns_upserted", len(updates)).
		Msg("learning pass complete")
	return nil
}
