package patterns

import (
	"strings"

	"github.com/ddudnik/clipsight/internal/types"
)

// VideoProfile is the structural fingerprint matching and learning operate on.
type VideoProfile struct {
	VideoID      string           `json:"video_id"`
	HookType     string           `json:"hook_type"`
	ShotSequence []types.ShotType `json:"shot_sequence"`
	PacingBand   types.PacingBand `json:"pacing_band"`
	CTAType      string           `json:"cta_type"`
}

const (
	HookQuestion  = "question"
	HookPainPoint = "pain_point"
	HookBoldClaim = "bold_claim"
	HookGreeting  = "greeting"
	HookNone      = "none"
)

// maxShotSequence keeps the coarse shot sequence comparable across videos of
// very different lengths.
const maxShotSequence = 8

// BuildProfile derives a video's structural fingerprint from its analysis.
func BuildProfile(videoID string, ws []types.TranscriptWord, segs []types.Segment, frames []types.Frame, pacing types.PacingMetrics) VideoProfile {
	return VideoProfile{
		VideoID:      videoID,
		HookType:     hookType(ws, segs),
		ShotSequence: shotSequence(frames),
		PacingBand:   pacingBand(pacing.WordsPerMinute),
		CTAType:      ctaType(ws),
	}
}

func hookType(ws []types.TranscriptWord, segs []types.Segment) string {
	var hook *types.Segment
	for i := range segs {
		if segs[i].SegmentType == types.SegmentHook {
			hook = &segs[i]
			break
		}
	}
	if hook == nil {
		return HookNone
	}

	hasQuestion, hasPain, hasClaim, hasGreeting := false, false, false, false
	for _, w := range ws {
		if w.StartS > hook.EndS {
			break
		}
		if w.IsQuestion {
			hasQuestion = true
		}
		switch w.SpeechFunction {
		case types.SpeechPainPoint:
			hasPain = true
		case types.SpeechGreeting:
			hasGreeting = true
		}
		if w.IsEmphasis {
			hasClaim = true
		}
	}
	switch {
	case hasQuestion:
		return HookQuestion
	case hasPain:
		return HookPainPoint
	case hasClaim:
		return HookBoldClaim
	case hasGreeting:
		return HookGreeting
	default:
		return HookNone
	}
}

// shotSequence collapses consecutive identical shot types into a coarse,
// bounded sequence.
func shotSequence(frames []types.Frame) []types.ShotType {
	var out []types.ShotType
	for _, f := range frames {
		if n := len(out); n > 0 && out[n-1] == f.ShotType {
			continue
		}
		out = append(out, f.ShotType)
		if len(out) == maxShotSequence {
			break
		}
	}
	return out
}

func pacingBand(wpm float64) types.PacingBand {
	switch {
	case wpm >= 160:
		return types.PacingFast
	case wpm >= 110:
		return types.PacingMedium
	default:
		return types.PacingSlow
	}
}

// ctaType picks the dominant call-to-action category, in a fixed priority
// order so profiles stay deterministic.
var ctaCategories = []struct {
	name     string
	keywords []string
}{
	{"comment", []string{"comment", "dm"}},
	{"follow", []string{"follow", "subscribe", "join", "signup"}},
	{"link", []string{"link", "bio", "download"}},
	{"save", []string{"save", "share", "like"}},
}

func ctaType(ws []types.TranscriptWord) string {
	seen := map[string]struct{}{}
	for _, w := range ws {
		if !w.IsCTAKeyword {
			continue
		}
		norm := strings.Trim(strings.ToLower(w.Text), ".,!?;:'\"")
		seen[norm] = struct{}{}
	}
	if len(seen) == 0 {
		return "none"
	}
	for _, cat := range ctaCategories {
		for _, kw := range cat.keywords {
			if _, ok := seen[kw]; ok {
				return cat.name
			}
		}
	}
	return "other"
}

// Signature keys a profile's structural features for learner idempotence.
func (p VideoProfile) Signature() string {
	parts := []string{p.HookType}
	for _, s := range p.ShotSequence {
		parts = append(parts, string(s))
	}
	parts = append(parts, string(p.PacingBand), p.CTAType)
	return strings.Join(parts, "|")
}
