package timeline

import (
	"math"
	"testing"

	"github.com/ddudnik/clipsight/internal/types"
)

func TestAggregate_AllStreamsMissing(t *testing.T) {
	s := Aggregate(10, nil, nil, nil, DefaultConfig())
	if len(s.Degraded) != 3 {
		t.Fatalf("expected 3 degraded streams, got %v", s.Degraded)
	}
	for _, p := range s.Points {
		if p.Score != 0 {
			t.Fatalf("expected flat zero curve, got %v at %v", p.Score, p.TimeS)
		}
	}
}

func TestAggregate_NoNaNUnderAnyDegradation(t *testing.T) {
	words := []types.TranscriptWord{{Text: "go", StartS: 1, EndS: 2, IsEmphasis: true}}
	frames := []types.Frame{{TimestampS: 0, HasFace: true, EyeContact: true}}
	audio := []types.AudioEvent{{StartS: 1, EndS: 2, Kind: types.AudioPeak, Intensity: 0.9}}

	cases := []struct {
		name  string
		ws    []types.TranscriptWord
		fs    []types.Frame
		audio []types.AudioEvent
	}{
		{"all present", words, frames, audio},
		{"no transcript", nil, frames, audio},
		{"no visual", words, nil, audio},
		{"no audio", words, frames, nil},
		{"transcript only", words, nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Aggregate(5, tc.ws, tc.fs, tc.audio, DefaultConfig())
			for _, p := range s.Points {
				if math.IsNaN(p.Score) || p.Score < 0 || p.Score > 1 {
					t.Fatalf("score out of range at %v: %v", p.TimeS, p.Score)
				}
			}
		})
	}
}

func TestAggregate_RenormalizesOverPresentStreams(t *testing.T) {
	// Only the transcript is present, and the word is emphasized. After
	// renormalizing away the missing streams its weight is the whole score.
	words := []types.TranscriptWord{{Text: "never", StartS: 0, EndS: 5, IsEmphasis: true}}
	s := Aggregate(5, words, nil, nil, DefaultConfig())

	if len(s.Degraded) != 2 {
		t.Fatalf("expected visual and audio degraded, got %v", s.Degraded)
	}
	p := s.Points[4] // t=1.0, inside the word
	if p.Score != 1.0 {
		t.Fatalf("expected full score from the only present stream, got %v", p.Score)
	}
}

func TestAggregate_SceneDecay(t *testing.T) {
	frames := []types.Frame{
		{TimestampS: 0},
		{TimestampS: 3.0, SceneChange: true},
	}
	s := Aggregate(6, nil, frames, nil, DefaultConfig())

	at := func(timeS float64) Point {
		for _, p := range s.Points {
			if math.Abs(p.TimeS-timeS) < 1e-9 {
				return p
			}
		}
		t.Fatalf("no point at %v", timeS)
		return Point{}
	}

	if got := at(3.0).Breakdown.Scene; got != 1.0 {
		t.Fatalf("scene score at the cut = %v, want 1.0", got)
	}
	if got := at(3.75).Breakdown.Scene; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("scene score at half decay = %v, want 0.5", got)
	}
	if got := at(4.5).Breakdown.Scene; got != 0 {
		t.Fatalf("scene score past the decay window = %v, want 0", got)
	}
}

func TestAggregate_AudioScore(t *testing.T) {
	audio := []types.AudioEvent{
		{StartS: 1.0, EndS: 1.5, Kind: types.AudioPeak, Intensity: 0.8},
		{StartS: 3.0, EndS: 4.0, Kind: types.AudioSilence},
	}
	s := Aggregate(5, nil, nil, audio, DefaultConfig())

	var inPeak, inSilence, between float64
	for _, p := range s.Points {
		switch {
		case p.TimeS == 1.25:
			inPeak = p.Breakdown.Audio
		case p.TimeS == 3.5:
			inSilence = p.Breakdown.Audio
		case p.TimeS == 2.25:
			between = p.Breakdown.Audio
		}
	}
	if inPeak != 0.8 {
		t.Fatalf("audio score inside peak = %v, want 0.8", inPeak)
	}
	if inSilence != 0 || between != 0 {
		t.Fatalf("audio score should be 0 in silence (%v) and between events (%v)", inSilence, between)
	}
}

func TestAggregate_NarrowPeakBetweenGridPoints(t *testing.T) {
	// A short peak interval can fall entirely between two 0.25s grid points;
	// it must still register on the nearest one.
	audio := []types.AudioEvent{
		{StartS: 7.32, EndS: 7.42, Kind: types.AudioPeak, Intensity: 1.0},
	}
	s := Aggregate(10, nil, nil, audio, DefaultConfig())

	best := 0.0
	for _, p := range s.Points {
		if p.Breakdown.Audio > best {
			best = p.Breakdown.Audio
		}
		if p.Breakdown.Audio > 0 && (p.TimeS < 7.0 || p.TimeS > 7.75) {
			t.Fatalf("peak leaked to a distant grid point %v", p.TimeS)
		}
	}
	if best != 1.0 {
		t.Fatalf("narrow peak invisible on the grid, max audio score = %v", best)
	}
}

func TestAggregate_StepCountAndAxis(t *testing.T) {
	s := Aggregate(10, nil, []types.Frame{{TimestampS: 0}}, nil, DefaultConfig())
	if len(s.Points) != 41 {
		t.Fatalf("expected 41 points for 10s at 0.25s steps, got %d", len(s.Points))
	}
	for i, p := range s.Points {
		want := float64(i) * 0.25
		if math.Abs(p.TimeS-want) > 1e-9 {
			t.Fatalf("point %d at %v, want %v", i, p.TimeS, want)
		}
	}
}
