package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ddudnik/clipsight/internal/batch"
	"github.com/ddudnik/clipsight/internal/config"
	"github.com/ddudnik/clipsight/internal/domain/words"
	"github.com/ddudnik/clipsight/internal/logging"
	"github.com/ddudnik/clipsight/internal/ports"
	"github.com/ddudnik/clipsight/internal/ports/adapters/ffmpeg"
	"github.com/ddudnik/clipsight/internal/ports/adapters/sqlite"
	"github.com/ddudnik/clipsight/internal/ports/adapters/upstream"
	"github.com/ddudnik/clipsight/internal/types"
	"github.com/ddudnik/clipsight/internal/usecase"
)

// Validate checks the parts of the configuration every command depends on.
func Validate(app *config.Config) error {
	if app.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0")
	}
	if app.Highlights.MinDurationS <= 0 || app.Highlights.MaxDurationS < app.Highlights.MinDurationS {
		return fmt.Errorf("highlight durations: need 0 < min <= max")
	}
	if err := upstream.ValidateBaseURL("transcription", app.Transcription.BaseURL, app.Transcription.AllowedHosts); err != nil {
		return err
	}
	return upstream.ValidateBaseURL("vision", app.Vision.BaseURL, app.Vision.AllowedHosts)
}

// AnalyzeVideo runs the full pipeline for one local video file.
func AnalyzeVideo(ctx context.Context, app *config.Config, videoID, inputMP4 string, force bool) error {
	if _, err := os.Stat(inputMP4); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if videoID == "" {
		videoID = hash(inputMP4)
	}

	uc, store, err := build(app)
	if err != nil {
		return err
	}
	defer store.Close()

	outDir := filepath.Join(app.OutDir, videoID)
	if !force && usecase.HasGeneration(outDir) {
		log := logging.WithComponent("pipeline")
		log.Info().Str("video_id", videoID).Msg("generation exists, skipping (use --force to re-analyze)")
		return nil
	}

	cacheDir := filepath.Join(app.WorkDir, "runs", videoID)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}

	_, err = uc.Analyze(ctx, usecase.Input{
		VideoID:  videoID,
		InputMP4: inputMP4,
		CacheDir: cacheDir,
		OutDir:   outDir,
	})
	return err
}

// RunBatch fans a job list out over the bounded worker pool and returns the
// success/skip/fail summary. Per-video failures never abort the batch.
func RunBatch(ctx context.Context, app *config.Config, jobs []batch.Job, force bool) (batch.Summary, error) {
	uc, store, err := build(app)
	if err != nil {
		return batch.Summary{}, err
	}
	defer store.Close()

	log := logging.WithComponent("batch")
	pool := batch.NewPool(app.Concurrency, time.Duration(app.VideoTimeoutS*float64(time.Second)), log)

	summary := pool.Run(ctx, jobs, func(jobCtx context.Context, job batch.Job) (batch.Outcome, error) {
		outDir := job.OutDir
		if outDir == "" {
			outDir = filepath.Join(app.OutDir, job.VideoID)
		}
		if !force && usecase.HasGeneration(outDir) {
			return batch.Skipped, nil
		}
		if _, err := os.Stat(job.InputMP4); err != nil {
			return batch.Skipped, fmt.Errorf("%w: %v", types.ErrMalformedInput, err)
		}

		cacheDir := filepath.Join(app.WorkDir, "runs", job.VideoID)
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return batch.Failed, err
		}
		_, err := uc.Analyze(jobCtx, usecase.Input{
			VideoID:  job.VideoID,
			InputMP4: job.InputMP4,
			CacheDir: cacheDir,
			OutDir:   outDir,
		})
		if err != nil {
			if errors.Is(err, types.ErrMalformedInput) {
				return batch.Skipped, err
			}
			return batch.Failed, err
		}
		return batch.Succeeded, nil
	})

	log.Info().
		Int("succeeded", summary.Succeeded).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("batch finished")
	return summary, nil
}

func build(app *config.Config) (usecase.Usecase, *sqlite.Store, error) {
	store, err := sqlite.Open(app.Library.SQLitePath)
	if err != nil {
		return usecase.Usecase{}, nil, err
	}

	params, err := buildParams(app)
	if err != nil {
		store.Close()
		return usecase.Usecase{}, nil, err
	}

	deps := usecase.Deps{
		Video:       ffmpeg.New(app.FFmpeg.FFmpegPath, app.FFmpeg.FFprobePath),
		Transcriber: upstream.NewTranscriber(app.Transcription.BaseURL, app.Transcription.APIKey, app.Transcription.MaxRetries),
		Frames:      upstream.NewVision(app.Vision.BaseURL, app.Vision.APIKey, app.Vision.MaxRetries),
		Store:       store,
		Logger:      logging.WithComponent("usecase"),
	}
	return usecase.New(deps, params), store, nil
}

func buildParams(app *config.Config) (usecase.Params, error) {
	p := usecase.DefaultParams()

	if app.Words.LexiconPath != "" {
		lex, err := words.Load(app.Words.LexiconPath)
		if err != nil {
			return usecase.Params{}, err
		}
		p.Lexicon = lex
	}
	p.Words.GreetingWindowWords = app.Words.GreetingWindowWords
	p.Words.StrategicPauseS = app.Words.StrategicPauseS
	p.Words.SentenceGapS = app.Words.SentenceGapS
	p.Words.SpeakingGapS = app.Words.SpeakingGapS
	p.Words.KeywordMergeGapS = app.Words.KeywordMergeGapS

	p.Frames.CloseUpFaceRatio = app.Frames.CloseUpFaceRatio
	p.Frames.MediumFaceRatio = app.Frames.MediumFaceRatio
	p.Frames.LowMotionThreshold = app.Frames.LowMotionThreshold
	p.Frames.FastMotionThreshold = app.Frames.FastMotionThreshold
	p.Frames.SceneChangeThreshold = app.Frames.SceneChangeThreshold
	p.Frames.TextPresenceRatio = app.Frames.TextPresenceRatio

	p.Audio.BaselineWindowS = app.Audio.BaselineWindowS
	p.Audio.PeakRelThreshold = app.Audio.PeakRelThreshold
	p.Audio.SilenceFloor = app.Audio.SilenceFloor
	p.Audio.MinSilenceS = app.Audio.MinSilenceS
	p.Audio.PeakMergeGapS = app.Audio.PeakMergeGapS

	p.Aggregator.StepS = app.Aggregator.StepS
	p.Aggregator.SceneDecayS = app.Aggregator.SceneDecayS
	p.Aggregator.Weights.Scene = app.Aggregator.SceneWeight
	p.Aggregator.Weights.Audio = app.Aggregator.AudioWeight
	p.Aggregator.Weights.Transcript = app.Aggregator.TranscriptWeight
	p.Aggregator.Weights.Visual = app.Aggregator.VisualWeight

	p.Highlights.MinDurationS = app.Highlights.MinDurationS
	p.Highlights.MaxDurationS = app.Highlights.MaxDurationS
	p.Highlights.ScoreFloor = app.Highlights.ScoreFloor
	p.Highlights.GrowFraction = app.Highlights.GrowFraction
	p.Highlights.MergeGapS = app.Highlights.MergeGapS
	p.Highlights.TopK = app.Highlights.TopK
	p.Highlights.MinSpacingS = app.Highlights.MinSpacingS

	p.Match.MinConfidence = app.Patterns.MinConfidence
	p.Match.MaxMatches = app.Patterns.MaxMatches
	p.Match.HookWeight = app.Patterns.HookWeight
	p.Match.ShotsWeight = app.Patterns.ShotsWeight
	p.Match.PacingWeight = app.Patterns.PacingWeight
	p.Match.CTAWeight = app.Patterns.CTAWeight

	p.SamplingIntervalS = app.Frames.SamplingIntervalS
	p.MaxFrames = app.Frames.MaxFrames
	p.EnvelopeWindowS = app.Audio.EnvelopeWindowS
	return p, nil
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*upstream.Transcriber)(nil)
var _ ports.FrameSampler = (*upstream.Vision)(nil)
var _ ports.PatternStore = (*sqlite.Store)(nil)
