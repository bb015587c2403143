package highlights

import (
	"sort"

	"github.com/ddudnik/clipsight/internal/domain/timeline"
	"github.com/ddudnik/clipsight/internal/types"
)

type Config struct {
	MinDurationS float64
	MaxDurationS float64
	// ScoreFloor is the minimum composite score a local maximum must reach to
	// seed a window.
	ScoreFloor float64
	// GrowFraction keeps growing a window while the score stays above this
	// fraction of the seeding maximum.
	GrowFraction float64
	// MergeGapS merges windows that overlap or sit closer than this.
	MergeGapS float64
	TopK      int
	// MinSpacingS is the minimum distance between selected windows.
	MinSpacingS float64
}

func DefaultConfig() Config {
	return Config{
		MinDurationS: 10,
		MaxDurationS: 60,
		ScoreFloor:   0.25,
		GrowFraction: 0.6,
		MergeGapS:    2,
		TopK:         5,
		MinSpacingS:  60,
	}
}

// Rank turns a composite score curve into the top-K highlight windows.
// Deterministic: the same curve always yields the same window set.
func Rank(series timeline.Series, durationS float64, cfg Config) []types.HighlightCandidate {
	cfg = sanitize(cfg)

	// A video shorter than one viable clip still yields a single whole-video
	// window, flagged rather than failed.
	if durationS > 0 && durationS < cfg.MinDurationS {
		c := types.HighlightCandidate{
			StartS:   0,
			EndS:     durationS,
			Features: []string{"short_video"},
		}
		if len(series.Points) > 0 {
			peak := peakPoint(series.Points)
			c.Score = peak.Score
			c.Breakdown = peak.Breakdown
		}
		return []types.HighlightCandidate{c}
	}
	if len(series.Points) == 0 {
		return nil
	}

	wins := seedWindows(series.Points, durationS, cfg)
	wins = mergeWindows(wins, cfg)
	sortWindows(wins)
	selected := selectSpaced(wins, cfg)

	out := make([]types.HighlightCandidate, 0, len(selected))
	for _, w := range selected {
		out = append(out, types.HighlightCandidate{
			StartS:    w.start,
			EndS:      w.end,
			Score:     w.score,
			Breakdown: w.breakdown,
			Features:  featureTags(w),
		})
	}
	return out
}

type window struct {
	start, end float64
	score      float64
	breakdown  types.SignalBreakdown
}

func peakPoint(points []timeline.Point) timeline.Point {
	best := points[0]
	for _, p := range points[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best
}

// seedWindows grows one window around every local maximum above the floor.
func seedWindows(points []timeline.Point, durationS float64, cfg Config) []window {
	var out []window
	for i := range points {
		if !isLocalMax(points, i) || points[i].Score < cfg.ScoreFloor {
			continue
		}
		out = append(out, grow(points, i, durationS, cfg))
	}
	return out
}

// isLocalMax treats plateaus as a single maximum at their left edge.
func isLocalMax(points []timeline.Point, i int) bool {
	if i > 0 && points[i-1].Score >= points[i].Score {
		return false
	}
	if i < len(points)-1 && points[i+1].Score > points[i].Score {
		return false
	}
	return true
}

func grow(points []timeline.Point, peak int, durationS float64, cfg Config) window {
	threshold := points[peak].Score * cfg.GrowFraction
	lo, hi := peak, peak
	for lo > 0 && points[lo-1].Score >= threshold {
		lo--
	}
	for hi < len(points)-1 && points[hi+1].Score >= threshold {
		hi++
	}

	start, end := points[lo].TimeS, points[hi].TimeS
	peakT := points[peak].TimeS

	// Clip to max duration, keeping the peak inside the window.
	if end-start > cfg.MaxDurationS {
		half := cfg.MaxDurationS / 2
		start, end = peakT-half, peakT+half
		if start < points[lo].TimeS {
			start = points[lo].TimeS
			end = start + cfg.MaxDurationS
		}
		if end > points[hi].TimeS {
			end = points[hi].TimeS
			start = end - cfg.MaxDurationS
		}
	}

	// Pad symmetrically up to min duration, bounded by the video itself.
	if end-start < cfg.MinDurationS {
		pad := (cfg.MinDurationS - (end - start)) / 2
		start -= pad
		end += pad
		if start < 0 {
			end -= start
			start = 0
		}
		if end > durationS {
			start -= end - durationS
			end = durationS
			if start < 0 {
				start = 0
			}
		}
	}

	return window{
		start:     start,
		end:       end,
		score:     points[peak].Score,
		breakdown: points[peak].Breakdown,
	}
}

// mergeWindows folds together windows that overlap or sit within the merge
// gap. The merged score is the max of constituents and the breakdown their
// score-weighted average.
func mergeWindows(wins []window, cfg Config) []window {
	if len(wins) < 2 {
		return wins
	}
	sort.Slice(wins, func(i, j int) bool { return wins[i].start < wins[j].start })

	out := []window{wins[0]}
	for _, w := range wins[1:] {
		last := &out[len(out)-1]
		if w.start-last.end >= cfg.MergeGapS {
			out = append(out, w)
			continue
		}
		merged := window{
			start:     last.start,
			end:       maxF(last.end, w.end),
			score:     maxF(last.score, w.score),
			breakdown: weightedBreakdown(*last, w),
		}
		if merged.end-merged.start > cfg.MaxDurationS {
			merged.end = merged.start + cfg.MaxDurationS
		}
		*last = merged
	}
	return out
}

func weightedBreakdown(a, b window) types.SignalBreakdown {
	total := a.score + b.score
	if total <= 0 {
		return a.breakdown
	}
	wa, wb := a.score/total, b.score/total
	return types.SignalBreakdown{
		Scene:      wa*a.breakdown.Scene + wb*b.breakdown.Scene,
		Audio:      wa*a.breakdown.Audio + wb*b.breakdown.Audio,
		Transcript: wa*a.breakdown.Transcript + wb*b.breakdown.Transcript,
		Visual:     wa*a.breakdown.Visual + wb*b.breakdown.Visual,
	}
}

// sortWindows orders by score descending, then longer duration, then earlier
// start.
func sortWindows(wins []window) {
	sort.Slice(wins, func(i, j int) bool {
		if wins[i].score != wins[j].score {
			return wins[i].score > wins[j].score
		}
		di, dj := wins[i].end-wins[i].start, wins[j].end-wins[j].start
		if di != dj {
			return di > dj
		}
		return wins[i].start < wins[j].start
	})
}

// selectSpaced takes up to TopK windows enforcing the minimum spacing. Fewer
// qualifying windows are returned as-is, never padded.
func selectSpaced(wins []window, cfg Config) []window {
	var out []window
	for _, w := range wins {
		if len(out) == cfg.TopK {
			break
		}
		if tooClose(w, out, cfg.MinSpacingS) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func tooClose(w window, selected []window, minSpacingS float64) bool {
	for _, s := range selected {
		gap := maxF(w.start-s.end, s.start-w.end)
		if gap < minSpacingS {
			return true
		}
	}
	return false
}

// featureTags names which sub-scores dominated a selected window.
func featureTags(w window) []string {
	var tags []string
	if w.breakdown.Audio > 0.7 {
		tags = append(tags, "high_energy")
	}
	if w.breakdown.Transcript > 0.7 {
		tags = append(tags, "strong_hook_words")
	}
	if w.breakdown.Scene > 0.7 {
		tags = append(tags, "scene_rich")
	}
	if w.breakdown.Visual > 0.7 {
		tags = append(tags, "visual_engagement")
	}
	if d := w.end - w.start; d >= 15 && d <= 40 {
		tags = append(tags, "perfect_clip_length")
	}
	return tags
}

func sanitize(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MinDurationS <= 0 {
		cfg.MinDurationS = def.MinDurationS
	}
	if cfg.MaxDurationS <= 0 || cfg.MaxDurationS < cfg.MinDurationS {
		cfg.MaxDurationS = maxF(def.MaxDurationS, cfg.MinDurationS)
	}
	if cfg.GrowFraction <= 0 || cfg.GrowFraction >= 1 {
		cfg.GrowFraction = def.GrowFraction
	}
	if cfg.TopK <= 0 {
		cfg.TopK = def.TopK
	}
	if cfg.MinSpacingS <= 0 {
		cfg.MinSpacingS = cfg.MaxDurationS
	}
	return cfg
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
