package audiosig

import (
	"math"
	"testing"

	"github.com/ddudnik/clipsight/internal/types"
)

// flatEnvelope is 10s of speech-level RMS at 0.1s resolution. Index i sits at
// i*0.1 seconds.
func flatEnvelope(rms float64) []types.EnvelopePoint {
	var env []types.EnvelopePoint
	for i := 0; i <= 100; i++ {
		env = append(env, types.EnvelopePoint{TimeS: float64(i) * 0.1, RMS: rms})
	}
	return env
}

func peaksOf(events []types.AudioEvent) []types.AudioEvent {
	var out []types.AudioEvent
	for _, e := range events {
		if e.Kind == types.AudioPeak {
			out = append(out, e)
		}
	}
	return out
}

func TestAnalyze_Empty(t *testing.T) {
	if got := Analyze(nil, DefaultConfig()); got != nil {
		t.Fatalf("expected nil for empty envelope, got %+v", got)
	}
}

func TestAnalyze_NearbyPeaksMerge(t *testing.T) {
	env := flatEnvelope(0.1)
	env[50].RMS = 0.5 // 5.0s
	env[53].RMS = 0.8 // 5.3s, within the merge gap

	peaks := peaksOf(Analyze(env, DefaultConfig()))
	if len(peaks) != 1 {
		t.Fatalf("expected the two nearby peaks to merge into one, got %d: %+v", len(peaks), peaks)
	}
	if peaks[0].Intensity != 1.0 {
		t.Fatalf("merged peak must keep the higher intensity, got %v", peaks[0].Intensity)
	}
}

func TestAnalyze_DistantPeaksKept(t *testing.T) {
	env := flatEnvelope(0.1)
	env[20].RMS = 0.6
	env[70].RMS = 0.8

	peaks := peaksOf(Analyze(env, DefaultConfig()))
	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks, got %d: %+v", len(peaks), peaks)
	}
	if peaks[0].StartS >= peaks[1].StartS {
		t.Fatalf("events not ordered by start: %+v", peaks)
	}
	if peaks[1].Intensity != 1.0 {
		t.Fatalf("loudest peak should normalize to 1.0, got %v", peaks[1].Intensity)
	}
}

func TestAnalyze_Silences(t *testing.T) {
	env := flatEnvelope(0.1)
	for i := 20; i < 25; i++ { // 0.5s dead stretch from 2.0s
		env[i].RMS = 0.0
	}
	env[80].RMS = 0.0 // too short to report

	var silences []types.AudioEvent
	for _, e := range Analyze(env, DefaultConfig()) {
		if e.Kind == types.AudioSilence {
			silences = append(silences, e)
		}
	}
	if len(silences) != 1 {
		t.Fatalf("expected 1 silence, got %d: %+v", len(silences), silences)
	}
	s := silences[0]
	if math.Abs(s.StartS-2.0) > 0.01 || s.EndS-s.StartS < 0.3 {
		t.Fatalf("unexpected silence bounds: %+v", s)
	}
	if s.Intensity != 0 {
		t.Fatalf("silence must carry zero intensity, got %v", s.Intensity)
	}
}

func TestAnalyze_QuietPlateauIsNotAPeak(t *testing.T) {
	// Uniform loudness has no local maxima above the baseline.
	if peaks := peaksOf(Analyze(flatEnvelope(0.3), DefaultConfig())); len(peaks) != 0 {
		t.Fatalf("flat envelope produced peaks: %+v", peaks)
	}
}
