package words

import (
	"math"
	"regexp"
	"strings"

	"github.com/ddudnik/clipsight/internal/types"
)

type Config struct {
	// GreetingWindowWords bounds how deep into the transcript a greeting tag
	// can still win.
	GreetingWindowWords int
	// StrategicPauseS marks a word as emphasized when the gap before it is at
	// least this long.
	StrategicPauseS float64
	// SentenceGapS closes a sentence when the inter-word gap reaches it.
	SentenceGapS float64
	// SpeakingGapS excludes gaps of at least this length from speaking time.
	SpeakingGapS float64
	// KeywordMergeGapS merges adjacent CTA/emphasis runs closer than this.
	KeywordMergeGapS float64
}

func DefaultConfig() Config {
	return Config{
		GreetingWindowWords: 12,
		StrategicPauseS:     0.6,
		SentenceGapS:        1.0,
		SpeakingGapS:        1.0,
		KeywordMergeGapS:    1.5,
	}
}

type Result struct {
	Words  []types.TranscriptWord
	Pacing types.PacingMetrics
}

var reNumeric = regexp.MustCompile(`^\d+(?:[\.,]\d+)?[%xk]?$`)

// Analyze classifies every transcribed word and derives pacing metrics.
// Deterministic given a fixed lexicon: same input, same output.
func Analyze(raw []types.RawWord, lex Lexicon, cfg Config) Result {
	if len(raw) == 0 {
		return Result{Pacing: types.PacingMetrics{}}
	}

	greetings := toSet(lex.Greetings)
	painPoints := toSet(lex.PainPoints)
	topics := toSet(lex.Topics)
	ctaIntros := toSet(lex.CTAIntros)
	solutionIntros := toSet(lex.SolutionIntros)
	emphasis := toSet(lex.Emphasis)
	cta := toSet(lex.CTA)
	starters := toSet(lex.QuestionStarters)
	positive := toSet(lex.Positive)
	negative := toSet(lex.Negative)

	// Speech-function rules in priority order. First match wins; greeting only
	// competes inside the opening window.
	type rule struct {
		tag    types.SpeechFunction
		set    map[string]struct{}
		maxIdx int // -1 = no positional bound
	}
	rules := []rule{
		{types.SpeechGreeting, greetings, cfg.GreetingWindowWords},
		{types.SpeechPainPoint, painPoints, -1},
		{types.SpeechCTAIntro, ctaIntros, -1},
		{types.SpeechSolutionIntro, solutionIntros, -1},
		{types.SpeechTopic, topics, -1},
	}

	out := make([]types.TranscriptWord, 0, len(raw))
	for i, rw := range raw {
		start := clampTime(rw.StartS)
		end := clampTime(rw.EndS)
		if end < start {
			end = start
		}
		norm := normalize(rw.Word)

		w := types.TranscriptWord{
			Index:          i,
			Text:           rw.Word,
			StartS:         start,
			EndS:           end,
			SpeechFunction: types.SpeechNone,
		}

		for _, r := range rules {
			if r.maxIdx >= 0 && i >= r.maxIdx {
				continue
			}
			if _, ok := r.set[norm]; ok {
				w.SpeechFunction = r.tag
				break
			}
		}

		if _, ok := cta[norm]; ok {
			w.IsCTAKeyword = true
		}

		if _, ok := emphasis[norm]; ok {
			w.IsEmphasis = true
		} else if reNumeric.MatchString(norm) {
			w.IsEmphasis = true
		} else if i > 0 && start-clampTime(raw[i-1].EndS) >= cfg.StrategicPauseS {
			w.IsEmphasis = true
		}

		if _, ok := positive[norm]; ok {
			w.SentimentScore = 0.7
		} else if _, ok := negative[norm]; ok {
			w.SentimentScore = -0.7
		}
		if w.IsEmphasis && w.SentimentScore != 0 {
			w.SentimentScore = clamp(w.SentimentScore*1.4, -1, 1)
		}
		if emo, ok := lex.Emotions[norm]; ok {
			w.Emotion = emo
		}

		out = append(out, w)
	}

	markQuestions(out, raw, starters, cfg.SentenceGapS)

	return Result{Words: out, Pacing: pacing(out, cfg)}
}

// markQuestions flags every word of a sentence that reads as a question. A
// sentence is bounded by terminal punctuation or a pause of SentenceGapS.
func markQuestions(ws []types.TranscriptWord, raw []types.RawWord, starters map[string]struct{}, gapS float64) {
	begin := 0
	for i := range ws {
		last := i == len(ws)-1
		terminal := hasTerminalPunct(raw[i].Word)
		pauseNext := !last && ws[i+1].StartS-ws[i].EndS >= gapS
		if !terminal && !pauseNext && !last {
			continue
		}

		isQ := strings.HasSuffix(strings.TrimSpace(raw[i].Word), "?")
		if !isQ && !terminal {
			// Transcripts without punctuation: a pause-bounded sentence led by
			// a question starter still reads as a question.
			_, isQ = starters[normalize(raw[begin].Word)]
		}
		if isQ {
			for j := begin; j <= i; j++ {
				ws[j].IsQuestion = true
			}
		}
		begin = i + 1
	}
}

func pacing(ws []types.TranscriptWord, cfg Config) types.PacingMetrics {
	m := types.PacingMetrics{}
	if len(ws) == 0 {
		return m
	}

	speaking := 0.0
	for i, w := range ws {
		speaking += w.EndS - w.StartS
		if i > 0 {
			gap := w.StartS - ws[i-1].EndS
			if gap > 0 && gap < cfg.SpeakingGapS {
				speaking += gap
			}
		}
		if w.IsEmphasis {
			m.EmphasisWordCount++
		}
		if w.IsCTAKeyword {
			m.CTAWordCount++
		}
	}
	if speaking > 0 {
		m.WordsPerMinute = float64(len(ws)) / (speaking / 60)
	}

	m.CTASegments = mergeRuns(ws, cfg.KeywordMergeGapS, func(w types.TranscriptWord) bool { return w.IsCTAKeyword })
	m.EmphasisSegments = mergeRuns(ws, cfg.KeywordMergeGapS, func(w types.TranscriptWord) bool { return w.IsEmphasis })
	return m
}

// mergeRuns collects spans of tagged words, merging runs whose gap is below
// the merge threshold.
func mergeRuns(ws []types.TranscriptWord, mergeGapS float64, tagged func(types.TranscriptWord) bool) []types.Span {
	var out []types.Span
	for _, w := range ws {
		if !tagged(w) {
			continue
		}
		if n := len(out); n > 0 && w.StartS-out[n-1].EndS < mergeGapS {
			if w.EndS > out[n-1].EndS {
				out[n-1].EndS = w.EndS
			}
			continue
		}
		out = append(out, types.Span{StartS: w.StartS, EndS: w.EndS})
	}
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(s, ".,!?;:'\"()[]*")
}

func hasTerminalPunct(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

func clampTime(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
