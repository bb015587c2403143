package upstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ddudnik/clipsight/internal/types"
)

// Vision calls the upstream frame-sampling/vision utility, which demuxes the
// video, samples frames at the requested interval and tags each with
// measurements. No demuxing happens in this process.
type Vision struct {
	c *client
}

func NewVision(baseURL, apiKey string, maxRetries int) *Vision {
	return &Vision{c: newClient("vision", baseURL, apiKey, maxRetries)}
}

type sampleRequest struct {
	VideoPath string  `json:"video_path"`
	IntervalS float64 `json:"interval_s"`
	MaxFrames int     `json:"max_frames"`
}

func (v *Vision) SampleFrames(ctx context.Context, inMP4 string, intervalS float64, maxFrames int) ([]types.RawFrame, error) {
	reqBody, err := json.Marshal(sampleRequest{VideoPath: inMP4, IntervalS: intervalS, MaxFrames: maxFrames})
	if err != nil {
		return nil, fmt.Errorf("marshal sample request: %w", err)
	}

	body, err := v.c.post(ctx, "/v1/frames", "application/json", reqBody)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Frames []types.RawFrame `json:"frames"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode vision response: %w", err)
	}

	for i := range resp.Frames {
		resp.Frames[i].TimestampS = clampTime(resp.Frames[i].TimestampS)
	}
	return resp.Frames, nil
}
