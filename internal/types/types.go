package types

import "time"

// RawWord is the transcription-service contract: one timestamped word,
// timestamps already clamped to be non-negative by the adapter.
type RawWord struct {
	Word   string  `json:"word"`
	StartS float64 `json:"start_s"`
	EndS   float64 `json:"end_s"`
}

// RawFrame is one sampled frame as measured by the upstream frame/vision
// utility. Classification into shot types etc. happens downstream.
type RawFrame struct {
	FrameNumber     int       `json:"frame_number"`
	TimestampS      float64   `json:"timestamp_s"`
	FaceCount       int       `json:"face_count"`
	LargestFaceArea float64   `json:"largest_face_area"` // fraction of frame area
	EyeContact      bool      `json:"eye_contact"`
	TextAreaRatio   float64   `json:"text_area_ratio"`
	EdgeDensity     float64   `json:"edge_density"`
	ContrastScore   float64   `json:"contrast_score"`
	MotionScore     float64   `json:"motion_score"`
	LumaHistogram   []float64 `json:"luma_histogram"`
	ColorPalette    []string  `json:"color_palette,omitempty"`
}

// EnvelopePoint is one short-window RMS sample of the audio track.
type EnvelopePoint struct {
	TimeS float64 `json:"time_s"`
	RMS   float64 `json:"rms"`
}

type SpeechFunction string

const (
	SpeechNone          SpeechFunction = "none"
	SpeechGreeting      SpeechFunction = "greeting"
	SpeechPainPoint     SpeechFunction = "pain_point"
	SpeechTopic         SpeechFunction = "topic"
	SpeechCTAIntro      SpeechFunction = "cta_intro"
	SpeechSolutionIntro SpeechFunction = "solution_intro"
)

type TranscriptWord struct {
	Index          int            `json:"index"`
	Text           string         `json:"text"`
	StartS         float64        `json:"start_s"`
	EndS           float64        `json:"end_s"`
	IsEmphasis     bool           `json:"is_emphasis"`
	IsCTAKeyword   bool           `json:"is_cta_keyword"`
	IsQuestion     bool           `json:"is_question"`
	SpeechFunction SpeechFunction `json:"speech_function"`
	SentimentScore float64        `json:"sentiment_score"`
	Emotion        string         `json:"emotion,omitempty"`
}

// Span is a closed time interval in seconds.
type Span struct {
	StartS float64 `json:"start_s"`
	EndS   float64 `json:"end_s"`
}

func (s Span) Duration() float64 { return s.EndS - s.StartS }

type PacingMetrics struct {
	WordsPerMinute    float64 `json:"words_per_minute"`
	EmphasisWordCount int     `json:"emphasis_word_count"`
	CTAWordCount      int     `json:"cta_word_count"`
	CTASegments       []Span  `json:"cta_segments,omitempty"`
	EmphasisSegments  []Span  `json:"emphasis_segments,omitempty"`
}

type ShotType string

const (
	ShotCloseUp      ShotType = "close_up"
	ShotMedium       ShotType = "medium"
	ShotWide         ShotType = "wide"
	ShotScreenRecord ShotType = "screen_record"
)

type CameraMotion string

const (
	MotionStatic CameraMotion = "static"
	MotionSlow   CameraMotion = "slow"
	MotionFast   CameraMotion = "fast"
)

type Frame struct {
	FrameNumber        int          `json:"frame_number"`
	TimestampS         float64      `json:"timestamp_s"`
	ShotType           ShotType     `json:"shot_type"`
	CameraMotion       CameraMotion `json:"camera_motion"`
	HasFace            bool         `json:"has_face"`
	FaceCount          int          `json:"face_count"`
	EyeContact         bool         `json:"eye_contact"`
	FaceSizeRatio      float64      `json:"face_size_ratio"`
	HasText            bool         `json:"has_text"`
	TextAreaRatio      float64      `json:"text_area_ratio"`
	VisualClutterScore float64      `json:"visual_clutter_score"`
	ContrastScore      float64      `json:"contrast_score"`
	MotionScore        float64      `json:"motion_score"`
	SceneChange        bool         `json:"scene_change"`
	ColorPalette       []string     `json:"color_palette,omitempty"`
}

// FrameStats aggregates one video's frame sequence.
type FrameStats struct {
	FacePresenceRatio float64          `json:"face_presence_ratio"`
	EyeContactRatio   float64          `json:"eye_contact_ratio"`
	TextPresenceRatio float64          `json:"text_presence_ratio"`
	SceneChangeCount  int              `json:"scene_change_count"`
	ShotDistribution  map[ShotType]int `json:"shot_distribution"`
}

type AudioEventKind string

const (
	AudioPeak    AudioEventKind = "peak"
	AudioSilence AudioEventKind = "silence"
)

type AudioEvent struct {
	StartS    float64        `json:"start_s"`
	EndS      float64        `json:"end_s"`
	Kind      AudioEventKind `json:"kind"`
	Intensity float64        `json:"intensity"`
}

type SegmentType string

const (
	SegmentHook    SegmentType = "hook"
	SegmentContext SegmentType = "context"
	SegmentPayload SegmentType = "payload"
	SegmentCTA     SegmentType = "cta"
	SegmentOutro   SegmentType = "outro"
)

type Segment struct {
	SegmentType    SegmentType `json:"segment_type"`
	StartS         float64     `json:"start_s"`
	EndS           float64     `json:"end_s"`
	TranscriptText string      `json:"transcript_text"`
	SentimentScore float64     `json:"sentiment_score"`
}

// SignalBreakdown reports how much each signal family contributed, each in [0,1].
type SignalBreakdown struct {
	Scene      float64 `json:"scene"`
	Audio      float64 `json:"audio"`
	Transcript float64 `json:"transcript"`
	Visual     float64 `json:"visual"`
}

type HighlightCandidate struct {
	StartS    float64         `json:"start_s"`
	EndS      float64         `json:"end_s"`
	Score     float64         `json:"score"`
	Breakdown SignalBreakdown `json:"signal_breakdown"`
	Features  []string        `json:"features,omitempty"`
}

func (h HighlightCandidate) Duration() float64 { return h.EndS - h.StartS }

type PacingBand string

const (
	PacingSlow   PacingBand = "slow"
	PacingMedium PacingBand = "medium"
	PacingFast   PacingBand = "fast"
)

// PatternComponents is the structural fingerprint a pattern is keyed on.
type PatternComponents struct {
	HookType     string     `json:"hook_type"`
	ShotSequence []ShotType `json:"shot_sequence"`
	PacingBand   PacingBand `json:"pacing_band"`
	CTAType      string     `json:"cta_type"`
}

type ViralPattern struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	PatternType     string            `json:"pattern_type"`
	Components      PatternComponents `json:"components"`
	AvgFateScore    float64           `json:"avg_fate_score"`
	AvgRetention3s  float64           `json:"avg_retention_3s"`
	VideoCount      int               `json:"video_count"`
	ConfidenceScore float64           `json:"confidence_score"`
	// SourceVideoIDs tracks which videos already contributed to the rolling
	// averages so that re-learning the same batch is a no-op.
	SourceVideoIDs []string `json:"source_video_ids,omitempty"`
}

type PatternMatch struct {
	VideoID           string   `json:"video_id"`
	PatternID         string   `json:"pattern_id"`
	MatchConfidence   float64  `json:"match_confidence"`
	MatchedComponents []string `json:"matched_components,omitempty"`
}

// AnalysisResult is one video's full analysis generation. It is written
// atomically: either the whole generation is visible or none of it.
type AnalysisResult struct {
	VideoID      string               `json:"video_id"`
	Generation   string               `json:"generation"`
	DurationS    float64              `json:"duration_s"`
	Words        []TranscriptWord     `json:"words"`
	Pacing       PacingMetrics        `json:"pacing"`
	Frames       []Frame              `json:"frames"`
	FrameStats   FrameStats           `json:"frame_stats"`
	AudioEvents  []AudioEvent         `json:"audio_events"`
	Segments     []Segment            `json:"segments"`
	Highlights   []HighlightCandidate `json:"highlights"`
	Matches      []PatternMatch       `json:"matches,omitempty"`
	Degraded     []string             `json:"degraded_signals,omitempty"`
	ShortVideo   bool                 `json:"short_video,omitempty"`
	CreatedAtUTC time.Time            `json:"created_at_utc"`
}
