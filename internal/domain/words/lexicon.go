package words

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon is the versioned word-classification data. It is deliberately plain
// data so product can swap it without a code change.
type Lexicon struct {
	Version          string            `yaml:"version"`
	Greetings        []string          `yaml:"greetings"`
	PainPoints       []string          `yaml:"pain_points"`
	Topics           []string          `yaml:"topics"`
	CTAIntros        []string          `yaml:"cta_intros"`
	SolutionIntros   []string          `yaml:"solution_intros"`
	Emphasis         []string          `yaml:"emphasis"`
	CTA              []string          `yaml:"cta"`
	QuestionStarters []string          `yaml:"question_starters"`
	Positive         []string          `yaml:"positive"`
	Negative         []string          `yaml:"negative"`
	Emotions         map[string]string `yaml:"emotions"`
}

// Load reads a lexicon from a YAML file.
func Load(path string) (Lexicon, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(b, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	return lex, nil
}

// DefaultLexicon is the built-in fallback when no lexicon file is configured.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Version:   "builtin-1",
		Greetings: []string{"hey", "hi", "hello", "welcome", "yo", "whatsup", "everyone", "guys"},
		PainPoints: []string{
			"struggle", "struggling", "problem", "frustrated", "frustrating", "stuck",
			"failing", "tired", "hate", "wasting", "broken", "pain",
		},
		Topics: []string{
			"today", "topic", "about", "show", "explain", "talk", "cover", "learn",
		},
		CTAIntros: []string{
			"before", "make", "dont", "remember", "quick",
		},
		SolutionIntros: []string{
			"solution", "fix", "trick", "secret", "answer", "works", "instead", "heres",
		},
		Emphasis: []string{
			"never", "always", "best", "worst", "huge", "massive", "insane", "crazy",
			"only", "must", "guaranteed", "every", "nobody", "everybody", "free",
			"biggest", "fastest", "easiest", "most", "literally",
		},
		CTA: []string{
			"comment", "follow", "subscribe", "like", "share", "save", "link", "bio",
			"dm", "download", "join", "signup",
		},
		QuestionStarters: []string{
			"what", "why", "how", "when", "where", "who", "which", "can", "should",
			"would", "did", "do", "is", "are",
		},
		Positive: []string{
			"great", "love", "amazing", "awesome", "perfect", "win", "easy", "good",
			"better", "happy", "incredible", "beautiful", "excellent", "simple",
		},
		Negative: []string{
			"bad", "awful", "terrible", "hate", "worst", "fail", "hard", "wrong",
			"broken", "ugly", "annoying", "boring", "painful", "impossible",
		},
		Emotions: map[string]string{
			"love": "joy", "amazing": "joy", "awesome": "joy", "happy": "joy",
			"hate": "anger", "annoying": "anger", "frustrated": "anger",
			"insane": "surprise", "crazy": "surprise", "incredible": "surprise",
			"tired": "sadness", "painful": "sadness",
			"scared": "fear", "dangerous": "fear",
		},
	}
}

func toSet(list []string) map[string]struct{} {
	out := make(map[string]struct{}, len(list))
	for _, w := range list {
		out[w] = struct{}{}
	}
	return out
}
