package ports

import (
	"context"

	"github.com/ddudnik/clipsight/internal/types"
)

// VideoTool covers the local ffmpeg-backed operations on the input file.
type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	ProbeDuration(ctx context.Context, inMP4 string) (float64, error)
	// ReadEnvelope samples the extracted WAV into short-window RMS points.
	ReadEnvelope(ctx context.Context, wavPath string, windowS float64) ([]types.EnvelopePoint, error)
}

// Transcriber is the upstream transcription service. Timestamps in the
// returned words are ground truth apart from negative/NaN clamping.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) ([]types.RawWord, error)
}

// FrameSampler is the upstream frame-sampling/vision utility. It demuxes the
// container, samples frames at the interval and tags each with measurements.
type FrameSampler interface {
	SampleFrames(ctx context.Context, inMP4 string, intervalS float64, maxFrames int) ([]types.RawFrame, error)
}

// PatternStore is the pattern library behind a narrow get/upsert contract.
// Single-writer discipline is enforced at this boundary, not via in-process
// locks; readers may observe a slightly stale library.
type PatternStore interface {
	GetAll(ctx context.Context) ([]types.ViralPattern, error)
	GetByID(ctx context.Context, id string) (*types.ViralPattern, error)
	GetByType(ctx context.Context, patternType string) ([]types.ViralPattern, error)
	Upsert(ctx context.Context, p *types.ViralPattern) error
	// ReplaceMatches overwrites the derived matches for one video.
	ReplaceMatches(ctx context.Context, videoID string, matches []types.PatternMatch) error
	GetMatches(ctx context.Context, videoID string) ([]types.PatternMatch, error)
}
