package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every product-tuned constant in one place. The defaults below
// are starting points; the property tests constrain behavior, not exact values.
type Config struct {
	WorkDir     string `yaml:"work_dir"`
	OutDir      string `yaml:"out_dir"`
	Concurrency int    `yaml:"concurrency"`
	// VideoTimeoutS is the overall per-video pipeline deadline.
	VideoTimeoutS float64 `yaml:"video_timeout_s"`

	Transcription TranscriptionConfig `yaml:"transcription"`
	Vision        VisionConfig        `yaml:"vision"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg"`
	Words         WordsConfig         `yaml:"words"`
	Frames        FramesConfig        `yaml:"frames"`
	Audio         AudioConfig         `yaml:"audio"`
	Aggregator    AggregatorConfig    `yaml:"aggregator"`
	Highlights    HighlightsConfig    `yaml:"highlights"`
	Patterns      PatternsConfig      `yaml:"patterns"`
	Library       LibraryConfig       `yaml:"library"`
}

type TranscriptionConfig struct {
	BaseURL      string   `yaml:"base_url" env:"TRANSCRIBE_BASE_URL"`
	APIKey       string   `yaml:"-" env:"TRANSCRIBE_API_KEY"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	MaxRetries   int      `yaml:"max_retries"`
}

type VisionConfig struct {
	BaseURL      string   `yaml:"base_url" env:"VISION_BASE_URL"`
	APIKey       string   `yaml:"-" env:"VISION_API_KEY"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	MaxRetries   int      `yaml:"max_retries"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type WordsConfig struct {
	LexiconPath         string  `yaml:"lexicon_path"`
	GreetingWindowWords int     `yaml:"greeting_window_words"`
	StrategicPauseS     float64 `yaml:"strategic_pause_s"`
	SentenceGapS        float64 `yaml:"sentence_gap_s"`
	SpeakingGapS        float64 `yaml:"speaking_gap_s"`
	KeywordMergeGapS    float64 `yaml:"keyword_merge_gap_s"`
}

type FramesConfig struct {
	SamplingIntervalS    float64 `yaml:"sampling_interval_s"`
	MaxFrames            int     `yaml:"max_frames"`
	CloseUpFaceRatio     float64 `yaml:"close_up_face_ratio"`
	MediumFaceRatio      float64 `yaml:"medium_face_ratio"`
	LowMotionThreshold   float64 `yaml:"low_motion_threshold"`
	FastMotionThreshold  float64 `yaml:"fast_motion_threshold"`
	SceneChangeThreshold float64 `yaml:"scene_change_threshold"`
	TextPresenceRatio    float64 `yaml:"text_presence_ratio"`
}

type AudioConfig struct {
	EnvelopeWindowS  float64 `yaml:"envelope_window_s"`
	BaselineWindowS  float64 `yaml:"baseline_window_s"`
	PeakRelThreshold float64 `yaml:"peak_rel_threshold"`
	SilenceFloor     float64 `yaml:"silence_floor"`
	MinSilenceS      float64 `yaml:"min_silence_s"`
	PeakMergeGapS    float64 `yaml:"peak_merge_gap_s"`
}

type AggregatorConfig struct {
	StepS            float64 `yaml:"step_s"`
	SceneDecayS      float64 `yaml:"scene_decay_s"`
	SceneWeight      float64 `yaml:"scene_weight"`
	AudioWeight      float64 `yaml:"audio_weight"`
	TranscriptWeight float64 `yaml:"transcript_weight"`
	VisualWeight     float64 `yaml:"visual_weight"`
}

type HighlightsConfig struct {
	MinDurationS float64 `yaml:"min_duration_s"`
	MaxDurationS float64 `yaml:"max_duration_s"`
	ScoreFloor   float64 `yaml:"score_floor"`
	GrowFraction float64 `yaml:"grow_fraction"`
	MergeGapS    float64 `yaml:"merge_gap_s"`
	TopK         int     `yaml:"top_k"`
	MinSpacingS  float64 `yaml:"min_spacing_s"`
}

type PatternsConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
	MaxMatches    int     `yaml:"max_matches"`
	HookWeight    float64 `yaml:"hook_weight"`
	ShotsWeight   float64 `yaml:"shots_weight"`
	PacingWeight  float64 `yaml:"pacing_weight"`
	CTAWeight     float64 `yaml:"cta_weight"`
	MinGroupSize  int     `yaml:"min_group_size"`
	MinAvgFate    float64 `yaml:"min_avg_fate"`
}

type LibraryConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Load reads configuration from path, falling back to well-known locations
// and then to defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Default() *Config {
	return &Config{
		WorkDir:       ".cache",
		OutDir:        "out",
		Concurrency:   10,
		VideoTimeoutS: 900,
		Transcription: TranscriptionConfig{MaxRetries: 3},
		Vision:        VisionConfig{MaxRetries: 3},
		FFmpeg:        FFmpegConfig{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"},
		Words: WordsConfig{
			GreetingWindowWords: 12,
			StrategicPauseS:     0.6,
			SentenceGapS:        1.0,
			SpeakingGapS:        1.0,
			KeywordMergeGapS:    1.5,
		},
		Frames: FramesConfig{
			SamplingIntervalS:    0.5,
			MaxFrames:            1200,
			CloseUpFaceRatio:     0.25,
			MediumFaceRatio:      0.08,
			LowMotionThreshold:   0.15,
			FastMotionThreshold:  0.6,
			SceneChangeThreshold: 0.35,
			TextPresenceRatio:    0.01,
		},
		Audio: AudioConfig{
			EnvelopeWindowS:  0.05,
			BaselineWindowS:  3.0,
			PeakRelThreshold: 1.6,
			SilenceFloor:     0.02,
			MinSilenceS:      0.3,
			PeakMergeGapS:    0.5,
		},
		Aggregator: AggregatorConfig{
			StepS:            0.25,
			SceneDecayS:      1.5,
			SceneWeight:      0.3,
			AudioWeight:      0.25,
			TranscriptWeight: 0.25,
			VisualWeight:     0.2,
		},
		Highlights: HighlightsConfig{
			MinDurationS: 10,
			MaxDurationS: 60,
			ScoreFloor:   0.25,
			GrowFraction: 0.6,
			MergeGapS:    2,
			TopK:         5,
			MinSpacingS:  60,
		},
		Patterns: PatternsConfig{
			MinConfidence: 0.6,
			MaxMatches:    3,
			HookWeight:    0.35,
			ShotsWeight:   0.3,
			PacingWeight:  0.15,
			CTAWeight:     0.2,
			MinGroupSize:  5,
			MinAvgFate:    0.5,
		},
		Library: LibraryConfig{SQLitePath: "patterns.db"},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./clipsight.yaml",
		"./clipsight.yml",
		filepath.Join(os.Getenv("HOME"), ".clipsight", "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
