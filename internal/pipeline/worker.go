package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Worker processes a single report job.
type Worker struct {
	opts  Options
	stats *LatencyStats
	log   *slog.Logger
}

func NewWorker(opts Options, stats *LatencyStats, log *slog.Logger) *Worker {
	return &Worker{
		opts:  opts,
		stats: stats,
		log:   log,
	}
}

// Process runs the full report pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	opts := w.opts
	if job.NodeRange != nil {
		opts.NodeRange = *job.NodeRange
	}
	opts.OnPhase = func(p Phase) {
		job.SetStatus(JobStatus(p), string(p))
	}
	opts.OnPhaseDone = func(p Phase, d time.Duration) {
		if w.stats != nil {
			w.stats.Record(p, d)
		}
	}

	start := time.Now()
	res, err := Build(ctx, job.Input(), opts, log)
	if err != nil {
		log.Error("report failed", "error", err)
		job.mu.Lock()
		phase := job.Phase
		job.mu.Unlock()
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}

	job.Complete(res)
	log.Info("report complete",
		"charts", res.Charts,
		"skipped", len(res.RSS.Skipped),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
