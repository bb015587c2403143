package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ddudnik/clipsight/internal/domain/audiosig"
	"github.com/ddudnik/clipsight/internal/domain/frames"
	"github.com/ddudnik/clipsight/internal/domain/highlights"
	"github.com/ddudnik/clipsight/internal/domain/patterns"
	"github.com/ddudnik/clipsight/internal/domain/segments"
	"github.com/ddudnik/clipsight/internal/domain/timeline"
	"github.com/ddudnik/clipsight/internal/domain/words"
	"github.com/ddudnik/clipsight/internal/ports"
	"github.com/ddudnik/clipsight/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Deps struct {
	Video       ports.VideoTool
	Transcriber ports.Transcriber
	Frames      ports.FrameSampler
	Store       ports.PatternStore
	Logger      zerolog.Logger
}

// Params carries every domain tunable. Pure domain functions receive the
// relevant slice of it; nothing here mutates during a run.
type Params struct {
	Lexicon           words.Lexicon
	Words             words.Config
	Frames            frames.Config
	Audio             audiosig.Config
	Aggregator        timeline.Config
	Highlights        highlights.Config
	Segments          segments.Config
	Match             patterns.MatchConfig
	SamplingIntervalS float64
	MaxFrames         int
	EnvelopeWindowS   float64
}

func DefaultParams() Params {
	return Params{
		Lexicon:           words.DefaultLexicon(),
		Words:             words.DefaultConfig(),
		Frames:            frames.DefaultConfig(),
		Audio:             audiosig.DefaultConfig(),
		Aggregator:        timeline.DefaultConfig(),
		Highlights:        highlights.DefaultConfig(),
		Segments:          segments.DefaultConfig(),
		Match:             patterns.DefaultMatchConfig(),
		SamplingIntervalS: 0.5,
		MaxFrames:         1200,
		EnvelopeWindowS:   0.05,
	}
}

type Usecase struct {
	d Deps
	p Params
}

func New(d Deps, p Params) Usecase { return Usecase{d: d, p: p} }

type Input struct {
	VideoID  string
	InputMP4 string
	CacheDir string
	OutDir   string
}

// Analyze runs the full per-video pipeline: three independent signal branches
// in parallel, a merge into one composite timeline, highlight ranking,
// segment derivation and pattern matching. The result commits atomically; on
// error no partial generation is left visible.
func (u Usecase) Analyze(ctx context.Context, in Input) (types.AnalysisResult, error) {
	log := u.d.Logger.With().Str("video_id", in.VideoID).Logger()

	durationS, err := u.d.Video.ProbeDuration(ctx, in.InputMP4)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("probe duration: %w", err)
	}
	if durationS <= 0 {
		return types.AnalysisResult{}, fmt.Errorf("%w: empty video %s", types.ErrMalformedInput, in.InputMP4)
	}

	wav := filepath.Join(in.CacheDir, "audio.wav")
	wavErr := u.d.Video.ExtractAudioMono16k(ctx, in.InputMP4, wav)
	if wavErr != nil {
		log.Warn().Err(wavErr).Msg("audio extraction failed, transcript and audio branches degrade")
	}

	branches := u.runBranches(ctx, in, wav, wavErr, log)
	if branches.allFailed() {
		return types.AnalysisResult{}, fmt.Errorf("%w: all signal branches failed: %v", types.ErrUpstreamUnavailable, branches.firstErr)
	}

	series := timeline.Aggregate(durationS, branches.words.Words, branches.frames.Frames, branches.audio, u.p.Aggregator)
	ranked := highlights.Rank(series, durationS, u.p.Highlights)
	segs := segments.Derive(branches.words.Words, durationS, u.p.Segments)

	res := types.AnalysisResult{
		VideoID:      in.VideoID,
		Generation:   uuid.New().String(),
		DurationS:    durationS,
		Words:        branches.words.Words,
		Pacing:       branches.words.Pacing,
		Frames:       branches.frames.Frames,
		FrameStats:   branches.frames.Stats,
		AudioEvents:  branches.audio,
		Segments:     segs,
		Highlights:   ranked,
		Degraded:     series.Degraded,
		ShortVideo:   durationS < u.p.Highlights.MinDurationS,
		CreatedAtUTC: time.Now().UTC(),
	}

	res.Matches = u.Match(ctx, res)

	if err := writeGeneration(in.OutDir, res); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("commit generation: %w", err)
	}
	log.Info().
		Str("generation", res.Generation).
		Int("highlights", len(res.Highlights)).
		Int("matches", len(res.Matches)).
		Strs("degraded", res.Degraded).
		Msg("analysis committed")
	return res, nil
}

// Match scores an analysis against the pattern library. An unreachable
// library degrades to no matches rather than failing the analysis.
func (u Usecase) Match(ctx context.Context, res types.AnalysisResult) []types.PatternMatch {
	log := u.d.Logger.With().Str("video_id", res.VideoID).Logger()

	library, err := u.d.Store.GetAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("pattern library unavailable, skipping match")
		return nil
	}

	profile := patterns.BuildProfile(res.VideoID, res.Words, res.Segments, res.Frames, res.Pacing)
	matches := patterns.Match(profile, library, u.p.Match)
	if len(matches) > 0 {
		if err := u.d.Store.ReplaceMatches(ctx, res.VideoID, matches); err != nil {
			log.Warn().Err(err).Msg("persisting matches failed")
		}
	}
	return matches
}

// branchResults carries whatever each signal branch produced. A branch error
// leaves its stream empty; the aggregator renormalizes over the rest.
type branchResults struct {
	words    words.Result
	frames   frames.Result
	audio    []types.AudioEvent
	errs     [3]error
	firstErr error
}

func (b branchResults) allFailed() bool {
	for _, err := range b.errs {
		if err == nil {
			return false
		}
	}
	return true
}

func (u Usecase) runBranches(ctx context.Context, in Input, wav string, wavErr error, log zerolog.Logger) branchResults {
	var res branchResults
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if wavErr != nil {
			res.errs[0] = wavErr
			return
		}
		raw, err := u.d.Transcriber.Transcribe(ctx, wav)
		if err != nil {
			res.errs[0] = err
			log.Warn().Err(err).Msg("transcript branch failed")
			return
		}
		res.words = words.Analyze(raw, u.p.Lexicon, u.p.Words)
	}()

	go func() {
		defer wg.Done()
		raw, err := u.d.Frames.SampleFrames(ctx, in.InputMP4, u.p.SamplingIntervalS, u.p.MaxFrames)
		if err != nil {
			res.errs[1] = err
			log.Warn().Err(err).Msg("frame branch failed")
			return
		}
		res.frames = frames.Analyze(raw, u.p.Frames)
	}()

	go func() {
		defer wg.Done()
		if wavErr != nil {
			res.errs[2] = wavErr
			return
		}
		env, err := u.d.Video.ReadEnvelope(ctx, wav, u.p.EnvelopeWindowS)
		if err != nil {
			res.errs[2] = err
			log.Warn().Err(err).Msg("audio branch failed")
			return
		}
		res.audio = audiosig.Analyze(env, u.p.Audio)
	}()

	wg.Wait()
	for _, err := range res.errs {
		if err != nil {
			res.firstErr = err
			break
		}
	}
	return res
}
