package timeline

import (
	"math"

	"github.com/ddudnik/clipsight/internal/types"
)

type Weights struct {
	Scene      float64
	Audio      float64
	Transcript float64
	Visual     float64
}

type Config struct {
	// StepS is the shared resampling step for the composite timeline.
	StepS float64
	// SceneDecayS is the half-window over which a scene change's influence
	// decays linearly to zero.
	SceneDecayS float64
	Weights     Weights
}

func DefaultConfig() Config {
	return Config{
		StepS:       0.25,
		SceneDecayS: 1.5,
		Weights:     Weights{Scene: 0.3, Audio: 0.25, Transcript: 0.25, Visual: 0.2},
	}
}

// Point is one instant of the composite score curve.
type Point struct {
	TimeS     float64
	Score     float64
	Breakdown types.SignalBreakdown
}

// Series is the merged timeline. Degraded lists the signal streams that were
// absent and renormalized away.
type Series struct {
	Points   []Point
	Degraded []string
}

// Aggregate resamples the three signal streams onto one time axis and scores
// each instant. Pure: inputs are never mutated. Any subset of the streams may
// be empty; weights renormalize over the present ones and the result carries
// no NaNs.
func Aggregate(durationS float64, ws []types.TranscriptWord, fs []types.Frame, audio []types.AudioEvent, cfg Config) Series {
	if cfg.StepS <= 0 {
		cfg.StepS = 0.25
	}
	if durationS <= 0 {
		return Series{Degraded: []string{"transcript", "visual", "audio"}}
	}

	hasTranscript := len(ws) > 0
	hasVisual := len(fs) > 0
	hasAudio := len(audio) > 0

	var degraded []string
	w := cfg.Weights
	if !hasTranscript {
		w.Transcript = 0
		degraded = append(degraded, "transcript")
	}
	if !hasVisual {
		w.Scene = 0
		w.Visual = 0
		degraded = append(degraded, "visual")
	}
	if !hasAudio {
		w.Audio = 0
		degraded = append(degraded, "audio")
	}
	total := w.Scene + w.Audio + w.Transcript + w.Visual
	if total <= 0 {
		// Every stream missing: a flat zero curve, never NaN.
		total = 1
	}

	sceneTimes := sceneChangeTimes(fs)

	steps := int(durationS/cfg.StepS) + 1
	points := make([]Point, 0, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) * cfg.StepS
		b := types.SignalBreakdown{
			Scene:      sceneScore(t, sceneTimes, cfg.SceneDecayS),
			Audio:      audioScore(t, audio, cfg.StepS/2),
			Transcript: transcriptScore(t, ws),
			Visual:     visualScore(t, fs),
		}
		score := (w.Scene*b.Scene + w.Audio*b.Audio + w.Transcript*b.Transcript + w.Visual*b.Visual) / total
		points = append(points, Point{TimeS: t, Score: clamp01(score), Breakdown: b})
	}
	return Series{Points: points, Degraded: degraded}
}

func sceneChangeTimes(fs []types.Frame) []float64 {
	var out []float64
	for _, f := range fs {
		if f.SceneChange {
			out = append(out, f.TimestampS)
		}
	}
	return out
}

// sceneScore is 1.0 at a scene change, decaying linearly to 0 over decayS on
// either side.
func sceneScore(t float64, changes []float64, decayS float64) float64 {
	if decayS <= 0 {
		decayS = 1.5
	}
	best := 0.0
	for _, c := range changes {
		d := math.Abs(t - c)
		if d >= decayS {
			continue
		}
		if s := 1 - d/decayS; s > best {
			best = s
		}
	}
	return best
}

// audioScore is the normalized intensity of a peak at or near t, zero during
// silence and between events. Peak intervals can be narrower than the
// resampling step, so a peak within half a step of t still counts.
func audioScore(t float64, events []types.AudioEvent, tol float64) float64 {
	best := 0.0
	for _, e := range events {
		if e.Kind == types.AudioSilence {
			if t >= e.StartS && t <= e.EndS {
				return 0
			}
			continue
		}
		if t < e.StartS-tol || t > e.EndS+tol {
			continue
		}
		if s := clamp01(e.Intensity); s > best {
			best = s
		}
	}
	return best
}

// transcriptScore is 1.0 inside an emphasis or CTA word span, otherwise a
// baseline from the local sentiment magnitude.
func transcriptScore(t float64, ws []types.TranscriptWord) float64 {
	for _, w := range ws {
		if t < w.StartS || t > w.EndS {
			continue
		}
		if w.IsEmphasis || w.IsCTAKeyword {
			return 1
		}
		return clamp01(math.Abs(w.SentimentScore) * 0.5)
	}
	return 0
}

// visualScore combines face presence, eye contact and low clutter for the
// frame covering t.
func visualScore(t float64, fs []types.Frame) float64 {
	f, ok := frameAt(t, fs)
	if !ok {
		return 0
	}
	s := 0.0
	if f.HasFace {
		s += 0.4
	}
	if f.EyeContact {
		s += 0.3
	}
	s += 0.3 * (1 - clamp01(f.VisualClutterScore))
	return clamp01(s)
}

// frameAt returns the latest frame at or before t.
func frameAt(t float64, fs []types.Frame) (types.Frame, bool) {
	lo, hi := 0, len(fs)-1
	if hi < 0 || fs[0].TimestampS > t {
		return types.Frame{}, false
	}
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if fs[mid].TimestampS <= t {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return fs[lo], true
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
