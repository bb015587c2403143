package batch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func jobs(n int) []Job {
	out := make([]Job, n)
	for i := range out {
		out[i] = Job{VideoID: string(rune('a' + i)), InputMP4: "in.mp4"}
	}
	return out
}

func TestRun_CountsOutcomes(t *testing.T) {
	p := NewPool(4, 0, zerolog.Nop())

	summary := p.Run(context.Background(), jobs(6), func(ctx context.Context, job Job) (Outcome, error) {
		switch job.VideoID {
		case "a", "b":
			return Skipped, nil
		case "c":
			return Failed, errors.New("boom")
		default:
			return Succeeded, nil
		}
	})

	if summary.Succeeded != 3 || summary.Skipped != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Total() != 6 {
		t.Fatalf("total = %d, want 6", summary.Total())
	}
	if len(summary.FailedIDs) != 1 || summary.FailedIDs[0] != "c" {
		t.Fatalf("failed ids = %v", summary.FailedIDs)
	}
}

func TestRun_FailuresDoNotAbortSiblings(t *testing.T) {
	p := NewPool(2, 0, zerolog.Nop())

	var processed atomic.Int32
	summary := p.Run(context.Background(), jobs(8), func(ctx context.Context, job Job) (Outcome, error) {
		processed.Add(1)
		if job.VideoID == "a" {
			return Failed, errors.New("boom")
		}
		return Succeeded, nil
	})

	if got := processed.Load(); got != 8 {
		t.Fatalf("all jobs must run despite failures, processed %d", got)
	}
	if summary.Failed != 1 || summary.Succeeded != 7 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRun_BoundedConcurrency(t *testing.T) {
	const workers = 3
	p := NewPool(workers, 0, zerolog.Nop())

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	summary := p.Run(context.Background(), jobs(12), func(ctx context.Context, job Job) (Outcome, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return Succeeded, nil
	})

	if summary.Succeeded != 12 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if maxInFlight > workers {
		t.Fatalf("concurrency %d exceeded worker limit %d", maxInFlight, workers)
	}
}

func TestRun_PerJobTimeout(t *testing.T) {
	p := NewPool(2, 20*time.Millisecond, zerolog.Nop())

	summary := p.Run(context.Background(), jobs(1), func(ctx context.Context, job Job) (Outcome, error) {
		select {
		case <-ctx.Done():
			return Failed, ctx.Err()
		case <-time.After(time.Second):
			return Succeeded, nil
		}
	})
	if summary.Failed != 1 {
		t.Fatalf("expected the slow job to time out: %+v", summary)
	}
}

func TestRun_CancelledDriver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPool(2, 0, zerolog.Nop())
	summary := p.Run(ctx, jobs(4), func(ctx context.Context, job Job) (Outcome, error) {
		t.Errorf("handler must not run after cancellation")
		return Succeeded, nil
	})

	if summary.Failed != 4 {
		t.Fatalf("cancelled jobs must count as failed: %+v", summary)
	}
	got := append([]string(nil), summary.FailedIDs...)
	sort.Strings(got)
	if len(got) != 4 || got[0] != "a" || got[3] != "d" {
		t.Fatalf("failed ids = %v", got)
	}
}

func TestRun_Empty(t *testing.T) {
	p := NewPool(2, 0, zerolog.Nop())
	summary := p.Run(context.Background(), nil, func(ctx context.Context, job Job) (Outcome, error) {
		return Succeeded, nil
	})
	if summary.Total() != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
