package types

import "errors"

// Error kinds for per-video failure isolation. A video failing with one of
// these never aborts sibling videos in a batch run.
var (
	// ErrUpstreamUnavailable marks a transcription/vision service failure
	// after retries were exhausted. The video is reported failed, retryable.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrMalformedInput marks input that could not be clamped or defaulted
	// into shape. The video is skipped with a logged reason.
	ErrMalformedInput = errors.New("malformed input")

	// ErrLibraryUnavailable marks an unreachable pattern store during
	// matching. Matching degrades to an empty match list.
	ErrLibraryUnavailable = errors.New("pattern library unavailable")
)
