package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ddudnik/clipsight/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMP4,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inMP4 string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inMP4,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

// ReadEnvelope computes short-window RMS points from the extracted WAV. The
// file is the 16-bit mono 16 kHz PCM this adapter itself produced, so a
// minimal RIFF walk is enough; anything else is rejected.
func (a *Adapter) ReadEnvelope(ctx context.Context, wavPath string, windowS float64) ([]types.EnvelopePoint, error) {
	if windowS <= 0 {
		windowS = 0.05
	}
	samples, sampleRate, err := readWavMono16(wavPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}

	win := int(windowS * float64(sampleRate))
	if win < 1 {
		win = 1
	}

	out := make([]types.EnvelopePoint, 0, len(samples)/win+1)
	for off := 0; off < len(samples); off += win {
		end := off + win
		if end > len(samples) {
			end = len(samples)
		}
		sum := 0.0
		for _, s := range samples[off:end] {
			v := float64(s) / 32768
			sum += v * v
		}
		rms := sqrt(sum / float64(end-off))
		out = append(out, types.EnvelopePoint{
			TimeS: float64(off) / float64(sampleRate),
			RMS:   rms,
		})
	}
	return out, nil
}
