package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ddudnik/clipsight/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job is one video supplied by the batch driver.
type Job struct {
	VideoID  string
	InputMP4 string
	OutDir   string
}

// Outcome is one job's terminal state.
type Outcome int

const (
	Succeeded Outcome = iota
	Skipped
	Failed
)

// Summary is the structured success/skip/fail accounting a batch run reports.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
	FailedIDs []string
}

func (s Summary) Total() int { return s.Succeeded + s.Skipped + s.Failed }

// Handler processes one job. Returning Skipped with a nil error counts the
// job as intentionally not processed.
type Handler func(ctx context.Context, job Job) (Outcome, error)

type Pool struct {
	workers      int
	videoTimeout time.Duration
	log          zerolog.Logger
}

func NewPool(workers int, videoTimeout time.Duration, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 10
	}
	return &Pool{workers: workers, videoTimeout: videoTimeout, log: log}
}

// Run fans the jobs out over the bounded worker pool. Each job gets its own
// deadline; failures are isolated and never abort sibling jobs.
func (p *Pool) Run(ctx context.Context, jobs []Job, handle Handler) Summary {
	var (
		mu      sync.Mutex
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if gctx.Err() != nil {
				// The driver was cancelled; remaining jobs count as failed so
				// the summary stays honest about unprocessed work.
				p.record(&mu, &summary, job, Failed, gctx.Err())
				return nil
			}

			jobCtx := gctx
			var cancel context.CancelFunc
			if p.videoTimeout > 0 {
				jobCtx, cancel = context.WithTimeout(gctx, p.videoTimeout)
				defer cancel()
			}

			outcome, err := handle(jobCtx, job)
			p.record(&mu, &summary, job, outcome, err)
			return nil // per-video failures never propagate
		})
	}
	_ = g.Wait()
	return summary
}

func (p *Pool) record(mu *sync.Mutex, summary *Summary, job Job, outcome Outcome, err error) {
	mu.Lock()
	defer mu.Unlock()

	switch outcome {
	case Succeeded:
		summary.Succeeded++
		p.log.Info().Str("video_id", job.VideoID).Msg("video analyzed")
	case Skipped:
		reason := "already analyzed"
		if err != nil {
			reason = err.Error()
		}
		summary.Skipped++
		p.log.Info().Str("video_id", job.VideoID).Str("reason", reason).Msg("video skipped")
	default:
		summary.Failed++
		summary.FailedIDs = append(summary.FailedIDs, job.VideoID)
		evt := p.log.Error().Str("video_id", job.VideoID)
		if errors.Is(err, types.ErrUpstreamUnavailable) {
			evt = evt.Bool("retryable", true)
		}
		evt.Err(err).Msg("video failed")
	}
}
