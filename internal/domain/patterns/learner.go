package patterns

import (
	"fmt"
	"sort"

	"github.com/ddudnik/clipsight/internal/types"
	"github.com/google/uuid"
)

// LabeledVideo pairs a structural profile with its known performance.
type LabeledVideo struct {
	Profile     VideoProfile `json:"profile"`
	FateScore   float64      `json:"fate_score"`
	Retention3s float64      `json:"retention_3s"`
}

type LearnConfig struct {
	// MinGroupSize is how many structurally identical videos justify a
	// pattern.
	MinGroupSize int
	// MinAvgFate gates pattern creation on average performance.
	MinAvgFate float64
}

func DefaultLearnConfig() LearnConfig {
	return LearnConfig{MinGroupSize: 5, MinAvgFate: 0.5}
}

// Learn groups a labeled batch by structural signature and returns the
// pattern rows to upsert. Idempotent: videos already counted in an existing
// pattern (tracked by source video id) do not move its rolling averages.
func Learn(batch []LabeledVideo, existing []types.ViralPattern, cfg LearnConfig) []types.ViralPattern {
	if cfg.MinGroupSize <= 0 {
		cfg.MinGroupSize = DefaultLearnConfig().MinGroupSize
	}

	bySig := map[string][]LabeledVideo{}
	var sigs []string
	for _, v := range batch {
		sig := v.Profile.Signature()
		if _, ok := bySig[sig]; !ok {
			sigs = append(sigs, sig)
		}
		bySig[sig] = append(bySig[sig], v)
	}
	sort.Strings(sigs)

	existingBySig := map[string]types.ViralPattern{}
	for _, p := range existing {
		existingBySig[componentsSignature(p.Components)] = p
	}

	var out []types.ViralPattern
	for _, sig := range sigs {
		group := bySig[sig]

		if p, ok := existingBySig[sig]; ok {
			if updated, changed := fold(p, group); changed {
				out = append(out, updated)
			}
			continue
		}

		if len(group) < cfg.MinGroupSize {
			continue
		}
		avgFate, avgRet := averages(group)
		if avgFate < cfg.MinAvgFate {
			continue
		}

		ids := make([]string, 0, len(group))
		for _, v := range group {
			ids = append(ids, v.Profile.VideoID)
		}
		sort.Strings(ids)

		prof := group[0].Profile
		out = append(out, types.ViralPattern{
			ID:              uuid.New().String(),
			Name:            patternName(prof),
			PatternType:     prof.HookType,
			Components:      componentsOf(prof),
			AvgFateScore:    avgFate,
			AvgRetention3s:  avgRet,
			VideoCount:      len(group),
			ConfidenceScore: confidence(len(group), avgFate),
			SourceVideoIDs:  ids,
		})
	}
	return out
}

// fold adds only unseen videos into an existing pattern's rolling averages.
func fold(p types.ViralPattern, group []LabeledVideo) (types.ViralPattern, bool) {
	seen := map[string]struct{}{}
	for _, id := range p.SourceVideoIDs {
		seen[id] = struct{}{}
	}

	changed := false
	for _, v := range group {
		if _, ok := seen[v.Profile.VideoID]; ok {
			continue
		}
		n := float64(p.VideoCount)
		p.AvgFateScore = (p.AvgFateScore*n + v.FateScore) / (n + 1)
		p.AvgRetention3s = (p.AvgRetention3s*n + v.Retention3s) / (n + 1)
		p.VideoCount++
		p.SourceVideoIDs = append(p.SourceVideoIDs, v.Profile.VideoID)
		seen[v.Profile.VideoID] = struct{}{}
		changed = true
	}
	if changed {
		sort.Strings(p.SourceVideoIDs)
		p.ConfidenceScore = confidence(p.VideoCount, p.AvgFateScore)
	}
	return p, changed
}

func averages(group []LabeledVideo) (float64, float64) {
	fate, ret := 0.0, 0.0
	for _, v := range group {
		fate += v.FateScore
		ret += v.Retention3s
	}
	n := float64(len(group))
	return fate / n, ret / n
}

// confidence grows with evidence and performance, capped at 1.
func confidence(videoCount int, avgFate float64) float64 {
	evidence := float64(videoCount) / 20
	if evidence > 1 {
		evidence = 1
	}
	c := 0.5*evidence + 0.5*avgFate
	if c > 1 {
		return 1
	}
	return c
}

func componentsOf(p VideoProfile) types.PatternComponents {
	return types.PatternComponents{
		HookType:     p.HookType,
		ShotSequence: p.ShotSequence,
		PacingBand:   p.PacingBand,
		CTAType:      p.CTAType,
	}
}

func componentsSignature(c types.PatternComponents) string {
	return VideoProfile{
		HookType:     c.HookType,
		ShotSequence: c.ShotSequence,
		PacingBand:   c.PacingBand,
		CTAType:      c.CTAType,
	}.Signature()
}

func patternName(p VideoProfile) string {
	return fmt.Sprintf("%s-%s-%s", p.HookType, p.PacingBand, p.CTAType)
}
