package audiosig

import (
	"sort"

	"github.com/ddudnik/clipsight/internal/types"
)

type Config struct {
	// BaselineWindowS sizes the rolling average the peak threshold is
	// relative to.
	BaselineWindowS float64
	// PeakRelThreshold is how far above the rolling baseline a local maximum
	// must rise to count as a peak.
	PeakRelThreshold float64
	// SilenceFloor is the absolute RMS below which audio reads as silent.
	SilenceFloor float64
	// MinSilenceS is the shortest reported silence interval.
	MinSilenceS float64
	// PeakMergeGapS merges peaks closer than this; the louder one wins.
	PeakMergeGapS float64
}

func DefaultConfig() Config {
	return Config{
		BaselineWindowS:  3.0,
		PeakRelThreshold: 1.6,
		SilenceFloor:     0.02,
		MinSilenceS:      0.3,
		PeakMergeGapS:    0.5,
	}
}

// Analyze derives peak and silence events from a short-window RMS envelope.
// Peaks and silences are each non-overlapping; output is ordered by start.
func Analyze(env []types.EnvelopePoint, cfg Config) []types.AudioEvent {
	if len(env) == 0 {
		return nil
	}

	peaks := findPeaks(env, cfg)
	peaks = mergePeaks(peaks, cfg.PeakMergeGapS)
	silences := findSilences(env, cfg)

	out := append(peaks, silences...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartS != out[j].StartS {
			return out[i].StartS < out[j].StartS
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

func findPeaks(env []types.EnvelopePoint, cfg Config) []types.AudioEvent {
	maxRMS := 0.0
	for _, p := range env {
		if p.RMS > maxRMS {
			maxRMS = p.RMS
		}
	}
	if maxRMS <= 0 {
		return nil
	}

	var out []types.AudioEvent
	for i := 1; i < len(env)-1; i++ {
		p := env[i]
		if p.RMS < env[i-1].RMS || p.RMS <= env[i+1].RMS {
			continue // not a local maximum
		}
		base := baseline(env, i, cfg.BaselineWindowS)
		if base <= 0 || p.RMS < base*cfg.PeakRelThreshold {
			continue
		}
		// Report the peak as a short interval spanning its neighbors.
		out = append(out, types.AudioEvent{
			StartS:    env[i-1].TimeS,
			EndS:      env[i+1].TimeS,
			Kind:      types.AudioPeak,
			Intensity: p.RMS / maxRMS,
		})
	}
	return out
}

// baseline averages the envelope in a window centered on index i.
func baseline(env []types.EnvelopePoint, i int, windowS float64) float64 {
	center := env[i].TimeS
	sum, n := 0.0, 0
	for _, p := range env {
		if p.TimeS < center-windowS/2 || p.TimeS > center+windowS/2 {
			continue
		}
		sum += p.RMS
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// mergePeaks collapses peaks whose gap is below mergeGapS into the one with
// the higher intensity; ties go to the earlier peak.
func mergePeaks(peaks []types.AudioEvent, mergeGapS float64) []types.AudioEvent {
	if len(peaks) < 2 {
		return peaks
	}
	out := peaks[:1]
	for _, p := range peaks[1:] {
		last := &out[len(out)-1]
		if p.StartS-last.EndS >= mergeGapS {
			out = append(out, p)
			continue
		}
		if p.Intensity > last.Intensity {
			*last = p
		}
	}
	return out
}

func findSilences(env []types.EnvelopePoint, cfg Config) []types.AudioEvent {
	var out []types.AudioEvent
	runStart := -1
	flush := func(endIdx int) {
		if runStart < 0 {
			return
		}
		start := env[runStart].TimeS
		end := env[endIdx].TimeS
		if end-start >= cfg.MinSilenceS {
			out = append(out, types.AudioEvent{StartS: start, EndS: end, Kind: types.AudioSilence})
		}
		runStart = -1
	}

	for i, p := range env {
		if p.RMS < cfg.SilenceFloor {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(env) - 1)
	return out
}
