package patterns

import (
	"sort"

	"github.com/ddudnik/clipsight/internal/types"
)

type MatchConfig struct {
	// MinConfidence drops matches scoring below it.
	MinConfidence float64
	// MaxMatches caps how many matches one video may report.
	MaxMatches int

	HookWeight   float64
	ShotsWeight  float64
	PacingWeight float64
	CTAWeight    float64
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MinConfidence: 0.6,
		MaxMatches:    3,
		HookWeight:    0.35,
		ShotsWeight:   0.3,
		PacingWeight:  0.15,
		CTAWeight:     0.2,
	}
}

// Match scores a video's structural profile against every library pattern.
// Empty library yields no matches, never an error. Ties between equal
// confidences go to the better-evidenced pattern (higher video count).
func Match(profile VideoProfile, library []types.ViralPattern, cfg MatchConfig) []types.PatternMatch {
	if len(library) == 0 {
		return nil
	}
	total := cfg.HookWeight + cfg.ShotsWeight + cfg.PacingWeight + cfg.CTAWeight
	if total <= 0 {
		return nil
	}

	type scored struct {
		m          types.PatternMatch
		videoCount int
	}
	var out []scored
	for _, p := range library {
		confidence, matched := similarity(profile, p.Components, cfg)
		confidence /= total
		if confidence < cfg.MinConfidence {
			continue
		}
		out = append(out, scored{
			m: types.PatternMatch{
				VideoID:           profile.VideoID,
				PatternID:         p.ID,
				MatchConfidence:   confidence,
				MatchedComponents: matched,
			},
			videoCount: p.VideoCount,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].m.MatchConfidence != out[j].m.MatchConfidence {
			return out[i].m.MatchConfidence > out[j].m.MatchConfidence
		}
		if out[i].videoCount != out[j].videoCount {
			return out[i].videoCount > out[j].videoCount
		}
		return out[i].m.PatternID < out[j].m.PatternID
	})
	if cfg.MaxMatches > 0 && len(out) > cfg.MaxMatches {
		out = out[:cfg.MaxMatches]
	}

	matches := make([]types.PatternMatch, 0, len(out))
	for _, s := range out {
		matches = append(matches, s.m)
	}
	return matches
}

// similarity returns the unnormalized weighted score plus the names of the
// components that matched outright.
func similarity(profile VideoProfile, c types.PatternComponents, cfg MatchConfig) (float64, []string) {
	score := 0.0
	var matched []string

	if profile.HookType == c.HookType {
		score += cfg.HookWeight
		matched = append(matched, "hook")
	}

	shotSim := shotSimilarity(profile.ShotSequence, c.ShotSequence)
	score += cfg.ShotsWeight * shotSim
	if shotSim >= 1 {
		matched = append(matched, "shots")
	}

	if profile.PacingBand == c.PacingBand {
		score += cfg.PacingWeight
		matched = append(matched, "pacing")
	}

	if profile.CTAType == c.CTAType {
		score += cfg.CTAWeight
		matched = append(matched, "cta")
	}

	return score, matched
}

// shotSimilarity is 1 minus the normalized edit distance over the coarse
// shot-type sequences.
func shotSimilarity(a, b []types.ShotType) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	return 1 - float64(editDistance(a, b))/float64(n)
}

func editDistance(a, b []types.ShotType) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
