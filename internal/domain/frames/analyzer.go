package frames

import (
	"math"

	"github.com/ddudnik/clipsight/internal/types"
)

type Config struct {
	CloseUpFaceRatio float64
	MediumFaceRatio  float64
	// LowMotionThreshold separates screen recordings from wide shots when no
	// face is present.
	LowMotionThreshold  float64
	FastMotionThreshold float64
	// SceneChangeThreshold is the frame-to-frame histogram distance above
	// which a cut is flagged.
	SceneChangeThreshold float64
	// TextPresenceRatio is the minimum text area fraction that counts as
	// on-screen text.
	TextPresenceRatio float64
}

func DefaultConfig() Config {
	return Config{
		CloseUpFaceRatio:     0.25,
		MediumFaceRatio:      0.08,
		LowMotionThreshold:   0.15,
		FastMotionThreshold:  0.6,
		SceneChangeThreshold: 0.35,
		TextPresenceRatio:    0.01,
	}
}

type Result struct {
	Frames []types.Frame
	Stats  types.FrameStats
}

// Analyze classifies raw frame measurements into tagged frames and aggregates
// whole-video visual statistics. Frames arrive strictly ordered by timestamp.
func Analyze(raw []types.RawFrame, cfg Config) Result {
	res := Result{Stats: types.FrameStats{ShotDistribution: map[types.ShotType]int{}}}
	if len(raw) == 0 {
		return res
	}

	res.Frames = make([]types.Frame, 0, len(raw))
	var prevHist []float64
	for i, rf := range raw {
		f := types.Frame{
			FrameNumber:        rf.FrameNumber,
			TimestampS:         rf.TimestampS,
			HasFace:            rf.FaceCount > 0,
			FaceCount:          rf.FaceCount,
			EyeContact:         rf.EyeContact,
			FaceSizeRatio:      rf.LargestFaceArea,
			HasText:            rf.TextAreaRatio >= cfg.TextPresenceRatio,
			TextAreaRatio:      rf.TextAreaRatio,
			VisualClutterScore: clamp01(rf.EdgeDensity),
			ContrastScore:      rf.ContrastScore,
			MotionScore:        rf.MotionScore,
			ColorPalette:       rf.ColorPalette,
		}

		f.ShotType = classifyShot(rf, cfg)
		f.CameraMotion = classifyMotion(rf.MotionScore, cfg)

		// The first frame never flags a scene change: there is no prior frame
		// to cut away from.
		if i > 0 && histDistance(prevHist, rf.LumaHistogram) > cfg.SceneChangeThreshold {
			f.SceneChange = true
			res.Stats.SceneChangeCount++
		}
		prevHist = rf.LumaHistogram

		if f.HasFace {
			res.Stats.FacePresenceRatio++
		}
		if f.EyeContact {
			res.Stats.EyeContactRatio++
		}
		if f.HasText {
			res.Stats.TextPresenceRatio++
		}
		res.Stats.ShotDistribution[f.ShotType]++

		res.Frames = append(res.Frames, f)
	}

	n := float64(len(res.Frames))
	res.Stats.FacePresenceRatio /= n
	res.Stats.EyeContactRatio /= n
	res.Stats.TextPresenceRatio /= n
	return res
}

func classifyShot(rf types.RawFrame, cfg Config) types.ShotType {
	switch {
	case rf.FaceCount > 0 && rf.LargestFaceArea > cfg.CloseUpFaceRatio:
		return types.ShotCloseUp
	case rf.FaceCount > 0 && rf.LargestFaceArea >= cfg.MediumFaceRatio:
		return types.ShotMedium
	case rf.FaceCount == 0 && rf.MotionScore < cfg.LowMotionThreshold:
		return types.ShotScreenRecord
	default:
		return types.ShotWide
	}
}

func classifyMotion(motion float64, cfg Config) types.CameraMotion {
	switch {
	case motion >= cfg.FastMotionThreshold:
		return types.MotionFast
	case motion >= cfg.LowMotionThreshold:
		return types.MotionSlow
	default:
		return types.MotionStatic
	}
}

// histDistance is the L1 distance between two normalized histograms, halved
// so the result stays in [0,1]. Mismatched or missing histograms read as no
// distance rather than a spurious cut.
func histDistance(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / 2
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
