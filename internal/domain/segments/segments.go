package segments

import (
	"strings"

	"github.com/ddudnik/clipsight/internal/types"
)

type Config struct {
	// HookMaxStartS is how late a hook segment may still begin.
	HookMaxStartS float64
	// HookSpeechS is how much opening speech belongs to the hook.
	HookSpeechS float64
	// CTAMergeGapS merges CTA word runs into one CTA segment.
	CTAMergeGapS float64
}

func DefaultConfig() Config {
	return Config{HookMaxStartS: 1.5, HookSpeechS: 5, CTAMergeGapS: 3}
}

// Derive partitions analyzed words into coarse structural segments. The
// partition need not cover the timeline; at most one hook is produced and it
// must start near t=0.
func Derive(ws []types.TranscriptWord, durationS float64, cfg Config) []types.Segment {
	if len(ws) == 0 {
		return nil
	}

	var out []types.Segment

	hookEnd := 0.0
	afterHook := 0
	if ws[0].StartS <= cfg.HookMaxStartS {
		hi := 0
		for hi < len(ws)-1 && ws[hi+1].EndS-ws[0].StartS <= cfg.HookSpeechS {
			hi++
		}
		out = append(out, build(types.SegmentHook, ws[:hi+1]))
		hookEnd = ws[hi].EndS
		afterHook = hi + 1
	}

	// CTA words inside the hook belong to the hook; only later runs form a
	// CTA segment, keeping the segments disjoint.
	ctaLo, ctaHi := ctaRegion(ws, afterHook, cfg.CTAMergeGapS)

	// Payload: the densest emphasis region between hook and CTA.
	pLo, pHi := payloadRegion(ws, hookEnd, ctaLo)
	if pLo >= 0 {
		if pLo > firstAfter(ws, hookEnd) {
			out = append(out, build(types.SegmentContext, ws[firstAfter(ws, hookEnd):pLo]))
		}
		out = append(out, build(types.SegmentPayload, ws[pLo:pHi+1]))
	}

	if ctaLo >= 0 {
		out = append(out, build(types.SegmentCTA, ws[ctaLo:ctaHi+1]))
		if ctaHi < len(ws)-1 {
			out = append(out, build(types.SegmentOutro, ws[ctaHi+1:]))
		}
	}

	return out
}

// ctaRegion finds the widest run of CTA-tagged words at or after index from,
// merging runs whose gap stays under mergeGapS. Returns -1 indices when no
// CTA words exist there.
func ctaRegion(ws []types.TranscriptWord, from int, mergeGapS float64) (int, int) {
	lo, hi := -1, -1
	for i := from; i < len(ws); i++ {
		w := ws[i]
		if !w.IsCTAKeyword {
			continue
		}
		if lo < 0 {
			lo, hi = i, i
			continue
		}
		if w.StartS-ws[hi].EndS < mergeGapS {
			hi = i
		} else {
			// Later CTA run wins: closing CTAs are the structural one.
			lo, hi = i, i
		}
	}
	return lo, hi
}

// payloadRegion picks the longest run of words between the hook and the CTA
// that contains at least one emphasis word, expanded to sentence-ish bounds.
func payloadRegion(ws []types.TranscriptWord, hookEndS float64, ctaLo int) (int, int) {
	limit := len(ws)
	if ctaLo >= 0 {
		limit = ctaLo
	}
	start := firstAfter(ws, hookEndS)
	if start >= limit {
		return -1, -1
	}

	// Center on the emphasis word with the densest emphasis neighborhood.
	best := -1
	bestDensity := 0
	for i := start; i < limit; i++ {
		if !ws[i].IsEmphasis {
			continue
		}
		d := 0
		for j := maxI(start, i-8); j < minI(limit, i+9); j++ {
			if ws[j].IsEmphasis {
				d++
			}
		}
		if d > bestDensity {
			best, bestDensity = i, d
		}
	}
	if best < 0 {
		return start, limit - 1
	}
	lo := maxI(start, best-12)
	hi := minI(limit-1, best+12)
	return lo, hi
}

func firstAfter(ws []types.TranscriptWord, t float64) int {
	for i, w := range ws {
		if w.StartS >= t {
			return i
		}
	}
	return len(ws)
}

func build(st types.SegmentType, ws []types.TranscriptWord) types.Segment {
	var sb strings.Builder
	sentiment := 0.0
	for i, w := range ws {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.Text)
		sentiment += w.SentimentScore
	}
	if len(ws) > 0 {
		sentiment /= float64(len(ws))
	}
	return types.Segment{
		SegmentType:    st,
		StartS:         ws[0].StartS,
		EndS:           ws[len(ws)-1].EndS,
		TranscriptText: sb.String(),
		SentimentScore: sentiment,
	}
}

func maxI(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minI(a, b int) int {
	if a < b {
		return a
	}
	return b
}
