package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ddudnik/clipsight/internal/types"
)

// Transcriber calls the upstream transcription service with the extracted
// audio track and returns its word-level timestamps as ground truth.
type Transcriber struct {
	c *client
}

func NewTranscriber(baseURL, apiKey string, maxRetries int) *Transcriber {
	return &Transcriber{c: newClient("transcription", baseURL, apiKey, maxRetries)}
}

func (t *Transcriber) Transcribe(ctx context.Context, wavPath string) ([]types.RawWord, error) {
	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	body, err := t.c.post(ctx, "/v1/transcribe", "audio/wav", audio)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Words []types.RawWord `json:"words"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	// Timestamps are not revalidated beyond clamping negatives/NaNs to 0.
	for i := range resp.Words {
		resp.Words[i].StartS = clampTime(resp.Words[i].StartS)
		resp.Words[i].EndS = clampTime(resp.Words[i].EndS)
	}
	return resp.Words, nil
}

func clampTime(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
